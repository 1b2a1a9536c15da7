// Package pricing computes reservation totals. All functions are pure and
// safe for concurrent use.
package pricing

import (
	"fmt"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
)

// MinimumNights is charged even when the stay crosses no calendar-day
// boundary: a same-day booking still occupies the room for one night's worth
// of inventory.
const MinimumNights = 1

// Total prices a stay: nightlyRate * nights plus the sum of all extra
// service lines. Extras order is irrelevant to the result. nights below
// MinimumNights is billed as MinimumNights.
func Total(nightlyRate float64, extras []model.ExtraService, nights int) (float64, error) {
	if nightlyRate < 0 {
		return 0, apperrors.InvalidPricingInput(fmt.Sprintf("nightly rate cannot be negative, got %.2f", nightlyRate))
	}

	if nights < MinimumNights {
		nights = MinimumNights
	}

	total := nightlyRate * float64(nights)
	for i, extra := range extras {
		if extra.UnitPrice < 0 {
			return 0, apperrors.InvalidPricingInput(fmt.Sprintf("extra service %q (index %d) has a negative price", extra.Name, i))
		}
		total += extra.UnitPrice
	}

	return total, nil
}

// ForStay derives the night count from the interval and prices it.
func ForStay(nightlyRate float64, extras []model.ExtraService, stay model.Interval) (float64, error) {
	return Total(nightlyRate, extras, stay.Nights())
}
