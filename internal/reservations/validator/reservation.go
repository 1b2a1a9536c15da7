package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

// opaque_ref accepts the external identifiers this service never interprets
// (room and guest references). Alphanumerics plus the separators common in
// upstream systems.
var opaqueRefRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,63}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	if err := v.RegisterValidation("opaque_ref", validateOpaqueRef); err != nil {
		log.Fatal("Failed to register 'opaque_ref' validator",
			"error", err,
		)
	}

	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

func validateOpaqueRef(fl validator.FieldLevel) bool {
	return opaqueRefRegex.MatchString(fl.Field().String())
}

func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if reservation.Stay.IsZero() {
		return ValidationErrors{
			ValidationError{
				Field:   "Stay",
				Message: "check_in and check_out are required",
			},
		}
	}

	if !reservation.Stay.CheckOut.After(reservation.Stay.CheckIn) {
		return ValidationErrors{
			ValidationError{
				Field:   "Stay",
				Message: "check_out must be after check_in",
			},
		}
	}

	if reservation.CurrentStatus() != reservation.Status {
		return ValidationErrors{
			ValidationError{
				Field:   "Status",
				Message: "status must equal the last status_history entry",
			},
		}
	}

	return nil
}

func (v *ReservationValidator) ValidateUpdate(update *model.ReservationUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.CheckIn != nil && update.CheckOut != nil {
		if !update.CheckOut.After(*update.CheckIn) {
			return ValidationErrors{
				ValidationError{
					Field:   "CheckOut",
					Message: "check_out must be after check_in",
				},
			}
		}
	}

	return nil
}

func (v *ReservationValidator) ValidateExtra(extra *model.ExtraService) error {
	if err := v.validate.Struct(extra); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "opaque_ref":
			message = fmt.Sprintf("%s must be a valid external reference", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
