// Package usecase provides application use cases.
//
// UseCases are reusable across HTTP, CLI, and cron. Every Execute takes
// the acting identity explicitly; nothing here reads ambient session
// state. Atomic state transitions are delegated to the store's
// conditional operations.
package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/store"
)

// RequestAppointmentInput is a client's visit request for one of their pets.
type RequestAppointmentInput struct {
	PetID  string `json:"pet_id"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Reason string `json:"reason"`
}

// RequestAppointmentOutput returns the created appointment.
type RequestAppointmentOutput struct {
	Appointment *domain.Appointment `json:"appointment"`
}

// RequestAppointmentUseCase creates a Pending appointment owned by the
// requesting client.
type RequestAppointmentUseCase struct {
	appts store.Appointments
	pets  store.Pets
	now   func() time.Time
}

// NewRequestAppointmentUseCase creates the use case.
func NewRequestAppointmentUseCase(appts store.Appointments, pets store.Pets) *RequestAppointmentUseCase {
	return &RequestAppointmentUseCase{appts: appts, pets: pets, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (uc *RequestAppointmentUseCase) WithClock(now func() time.Time) *RequestAppointmentUseCase {
	uc.now = now
	return uc
}

// Execute validates and stores the request. The appointment starts
// Pending and unassigned; staff pick it up from the shared queue.
func (uc *RequestAppointmentUseCase) Execute(ctx context.Context, actor domain.Actor, input RequestAppointmentInput) (*RequestAppointmentOutput, error) {
	if !actor.Role.Can(domain.CapRequestAppointment) {
		return nil, apperrors.Forbidden(apperrors.CodeForbiddenRole, "role may not request appointments")
	}
	if err := domain.ValidateSchedule(input.Date, input.Time); err != nil {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed, err.Error())
	}
	if domain.BeforeDay(input.Date, uc.now()) {
		return nil, apperrors.BadRequest(apperrors.CodePastDate, "appointment date is in the past")
	}
	if input.Reason == "" {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed, "reason is required")
	}

	pet, err := uc.pets.GetByID(ctx, input.PetID)
	if err != nil {
		return nil, apperrors.NotFound(apperrors.CodePetNotFound, "pet not found").
			WithParams(map[string]interface{}{"pet_id": input.PetID})
	}
	if pet.OwnerID != actor.ID {
		return nil, apperrors.ErrPetNotOwnedf(input.PetID)
	}

	a := &domain.Appointment{
		PetID:     pet.ID,
		OwnerID:   actor.ID,
		Date:      input.Date,
		Time:      input.Time,
		Reason:    input.Reason,
		Status:    domain.StatusPending,
		CreatedBy: actor.ID,
	}
	if err := uc.appts.Create(ctx, a); err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	logger.Info("Appointment requested",
		zap.String("appointment_id", a.ID),
		zap.String("pet_id", a.PetID),
		zap.String("owner_id", a.OwnerID),
	)

	return &RequestAppointmentOutput{Appointment: a}, nil
}
