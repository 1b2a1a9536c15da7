package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeInvalidInput = "INVALID_INPUT"

	CodeInvalidInterval          = "INVALID_INTERVAL"
	CodeInvalidPricingInput      = "INVALID_PRICING_INPUT"
	CodeRoomNotAvailable         = "ROOM_NOT_AVAILABLE"
	CodePastDateBooking          = "PAST_DATE_BOOKING"
	CodeMaximumStayExceeded      = "MAXIMUM_STAY_EXCEEDED"
	CodeAdvanceBookingLimit      = "ADVANCE_BOOKING_LIMIT_EXCEEDED"
	CodeInvalidStatusTransition  = "INVALID_STATUS_TRANSITION"
	CodeInvalidReservationStatus = "INVALID_RESERVATION_STATUS"
	CodeCannotCancel             = "RESERVATION_CANNOT_BE_CANCELLED"
	CodeExtraServiceNotFound     = "EXTRA_SERVICE_NOT_FOUND"
	CodeStorageUnavailable       = "STORAGE_UNAVAILABLE"
	CodeStorageConflict          = "STORAGE_CONFLICT"
)

// AppError is the single error shape crossing package boundaries. Retryable
// marks transient storage failures the caller may retry; every other kind is
// a definitive answer.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Retryable  bool           `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
	return data
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"resource": resource, "id": id},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
		Retryable:  true,
	}
}

func InvalidInterval(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInterval,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func InvalidPricingInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidPricingInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func RoomNotAvailable(roomID string, checkIn, checkOut string) *AppError {
	return &AppError{
		Code:       CodeRoomNotAvailable,
		Message:    fmt.Sprintf("room %s is not available from %s to %s", roomID, checkIn, checkOut),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"room_id": roomID, "check_in": checkIn, "check_out": checkOut},
	}
}

func PastDateBooking() *AppError {
	return &AppError{
		Code:       CodePastDateBooking,
		Message:    "reservations cannot start in the past",
		HTTPStatus: http.StatusBadRequest,
	}
}

func MaximumStayExceeded(maxNights int) *AppError {
	return &AppError{
		Code:       CodeMaximumStayExceeded,
		Message:    fmt.Sprintf("stay cannot exceed %d nights", maxNights),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"max_nights": maxNights},
	}
}

func AdvanceBookingLimitExceeded(maxDays int) *AppError {
	return &AppError{
		Code:       CodeAdvanceBookingLimit,
		Message:    fmt.Sprintf("reservations cannot be made more than %d days in advance", maxDays),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"max_advance_days": maxDays},
	}
}

func InvalidStatusTransition(current, target string) *AppError {
	return &AppError{
		Code:       CodeInvalidStatusTransition,
		Message:    fmt.Sprintf("cannot change status from '%s' to '%s'", current, target),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"current": current, "target": target},
	}
}

func InvalidReservationStatus(current string) *AppError {
	return &AppError{
		Code:       CodeInvalidReservationStatus,
		Message:    fmt.Sprintf("operation not permitted while reservation is '%s'", current),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"current": current},
	}
}

func CannotCancel(reason string) *AppError {
	return &AppError{
		Code:       CodeCannotCancel,
		Message:    reason,
		HTTPStatus: http.StatusBadRequest,
	}
}

func ExtraServiceNotFound(index int) *AppError {
	return &AppError{
		Code:       CodeExtraServiceNotFound,
		Message:    fmt.Sprintf("extra service at index %d not found", index),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"index": index},
	}
}

func StorageUnavailable(err error) *AppError {
	return &AppError{
		Code:       CodeStorageUnavailable,
		Message:    "storage is temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Retryable:  true,
		Err:        err,
	}
}

func StorageConflict(message string) *AppError {
	return &AppError{
		Code:       CodeStorageConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// IsRetryable reports whether the failure is transient (StorageUnavailable,
// StorageConflict, Timeout) and the operation may be retried by the caller.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
