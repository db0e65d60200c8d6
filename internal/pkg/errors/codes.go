package errors

import "net/http"

// Error code constants. Errors carry code + params; messages stay short and
// English-only, clients decide presentation.

// Appointment error codes.
const (
	CodeAppointmentNotFound  = "APPOINTMENT_NOT_FOUND"
	CodeAppointmentAssigned  = "APPOINTMENT_ALREADY_ASSIGNED"
	CodeAppointmentCompleted = "APPOINTMENT_ALREADY_COMPLETED"
	CodeAppointmentNotReady  = "APPOINTMENT_NOT_CONFIRMED"
	CodePastDate             = "APPOINTMENT_DATE_IN_PAST"
	CodeConcurrentUpdate     = "CONCURRENT_MODIFICATION"
)

// Pet / record error codes.
const (
	CodePetNotFound    = "PET_NOT_FOUND"
	CodePetNotOwned    = "PET_NOT_OWNED"
	CodeClientNoPets   = "CLIENT_HAS_NO_PETS"
	CodeRecordNotFound = "RECORD_NOT_FOUND"
)

// User error codes.
const (
	CodeUserNotFound = "USER_NOT_FOUND"
	CodeEmailExists  = "EMAIL_ALREADY_EXISTS"
)

// Auth error codes.
const (
	CodeAuthFailed         = "INVALID_CREDENTIALS"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTwoFactorRequired  = "2FA_REQUIRED"
	CodeTwoFactorInvalid   = "2FA_CODE_INVALID"
	CodeForbiddenRole      = "FORBIDDEN"
	CodeNotVisible         = "APPOINTMENT_NOT_VISIBLE"
	CodeIncorrectPassword  = "INCORRECT_PASSWORD"
	CodePasswordReqMissing = "PASSWORD_REQUEST_NOT_FOUND"
)

// Validation error codes.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
)

// Downstream failure codes.
const (
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// Convenience constructors using predefined codes.

// ErrAppointmentNotFoundf creates an appointment not found error.
func ErrAppointmentNotFoundf(apptID string) *AppError {
	return &AppError{
		Code:       CodeAppointmentNotFound,
		Message:    "appointment not found",
		HTTPStatus: http.StatusNotFound,
		Params:     map[string]interface{}{"appointment_id": apptID},
	}
}

// ErrAlreadyAssignedf creates the claim-conflict error: the appointment is
// already claimed by another staff member.
func ErrAlreadyAssignedf(apptID string) *AppError {
	return &AppError{
		Code:       CodeAppointmentAssigned,
		Message:    "appointment already assigned to another staff member",
		HTTPStatus: http.StatusConflict,
		Params:     map[string]interface{}{"appointment_id": apptID},
	}
}

// ErrPetNotOwnedf creates the ownership refusal for client pet access.
func ErrPetNotOwnedf(petID string) *AppError {
	return &AppError{
		Code:       CodePetNotOwned,
		Message:    "pet does not belong to the requesting client",
		HTTPStatus: http.StatusForbidden,
		Params:     map[string]interface{}{"pet_id": petID},
	}
}

// ErrStoreUnavailable wraps a persistence failure as a generic server error.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap(err, CodeStoreUnavailable, "persistence store unavailable", http.StatusInternalServerError)
}
