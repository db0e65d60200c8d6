package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(CodeAppointmentNotFound, "appointment not found", http.StatusNotFound),
			want: "APPOINTMENT_NOT_FOUND: appointment not found",
		},
		{
			name: "with wrapped error",
			err:  Wrap(fmt.Errorf("db error"), CodeStoreUnavailable, "persistence store unavailable", http.StatusInternalServerError),
			want: "STORE_UNAVAILABLE: persistence store unavailable: db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(inner, "CODE", "msg", 500)

	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should match inner error")
	}
}

func TestIsAppError(t *testing.T) {
	appErr := ErrAlreadyAssignedf("a-1")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	got, ok := IsAppError(wrapped)
	if !ok {
		t.Fatal("IsAppError should return true for wrapped AppError")
	}
	if got.Code != CodeAppointmentAssigned {
		t.Errorf("Code = %q, want %q", got.Code, CodeAppointmentAssigned)
	}
	if got.HTTPStatus != http.StatusConflict {
		t.Errorf("HTTPStatus = %d, want %d", got.HTTPStatus, http.StatusConflict)
	}
}

func TestConflictDistinctFromForbidden(t *testing.T) {
	// A failed claim must be reported as conflict, not as a generic
	// authorization failure.
	claim := ErrAlreadyAssignedf("a-1")
	owned := ErrPetNotOwnedf("p-1")

	if claim.HTTPStatus == owned.HTTPStatus {
		t.Fatalf("conflict and forbidden share status %d", claim.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
	}{
		{"NotFound", NotFound("NF", "not found"), http.StatusNotFound},
		{"BadRequest", BadRequest("BR", "bad request"), http.StatusBadRequest},
		{"Unauthorized", Unauthorized("UA", "unauthorized"), http.StatusUnauthorized},
		{"Forbidden", Forbidden("FB", "forbidden"), http.StatusForbidden},
		{"Conflict", Conflict("CF", "conflict"), http.StatusConflict},
		{"Internal", Internal("IE", "internal"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}
