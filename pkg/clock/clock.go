package clock

import "time"

// Clock abstracts the current-time source so date-sensitive policies
// (past-date rejection, cancellation-fee tiers, sweep eligibility) stay
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns the wall clock.
func System() Clock {
	return systemClock{}
}

// Fixed returns a clock frozen at t. Intended for tests and tooling.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
