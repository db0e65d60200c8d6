package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"securevet.io/securevet/internal/audit"
	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/store"
)

// ClaimAppointmentInput identifies the appointment to claim.
type ClaimAppointmentInput struct {
	AppointmentID string `json:"appointment_id"`
}

// ClaimAppointmentOutput returns the confirmed appointment.
type ClaimAppointmentOutput struct {
	Appointment *domain.Appointment `json:"appointment"`
}

// ClaimAppointmentUseCase assigns an appointment to the acting staff
// member and confirms it. First claimant wins; admins may take over a
// held appointment.
type ClaimAppointmentUseCase struct {
	appts    store.Appointments
	recorder *audit.Recorder
}

// NewClaimAppointmentUseCase creates the use case.
func NewClaimAppointmentUseCase(appts store.Appointments, recorder *audit.Recorder) *ClaimAppointmentUseCase {
	return &ClaimAppointmentUseCase{appts: appts, recorder: recorder}
}

// Execute performs the claim. Assignment and confirmation happen in one
// conditional store operation, so concurrent claims produce exactly one
// winner; losers get the conflict error.
func (uc *ClaimAppointmentUseCase) Execute(ctx context.Context, actor domain.Actor, input ClaimAppointmentInput) (*ClaimAppointmentOutput, error) {
	if !actor.Role.Can(domain.CapClaimAppointment) {
		return nil, apperrors.Forbidden(apperrors.CodeForbiddenRole, "role may not claim appointments")
	}

	a, err := uc.appts.Claim(ctx, input.AppointmentID, actor.ID, actor.Role.OverridesClaim())
	if err != nil {
		return nil, mapClaimErr(err, input.AppointmentID)
	}

	uc.recorder.RecordActor(ctx, actor, domain.ActionApptAssign,
		fmt.Sprintf("claimed appointment %s", a.ID))

	logger.Info("Appointment claimed",
		zap.String("appointment_id", a.ID),
		zap.String("staff_id", actor.ID),
		zap.Bool("override", actor.Role.OverridesClaim()),
	)

	return &ClaimAppointmentOutput{Appointment: a}, nil
}

// mapClaimErr translates claim/complete store sentinels to API errors.
func mapClaimErr(err error, apptID string) error {
	params := map[string]interface{}{"appointment_id": apptID}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.ErrAppointmentNotFoundf(apptID)
	case errors.Is(err, store.ErrAlreadyAssigned):
		return apperrors.ErrAlreadyAssignedf(apptID)
	case errors.Is(err, store.ErrAlreadyCompleted):
		return apperrors.Conflict(apperrors.CodeAppointmentCompleted,
			"appointment already completed").WithParams(params)
	case errors.Is(err, store.ErrNotConfirmed):
		return apperrors.Conflict(apperrors.CodeAppointmentNotReady,
			"appointment must be confirmed before completion").WithParams(params)
	case errors.Is(err, store.ErrNotAssignee):
		return apperrors.Forbidden(apperrors.CodeForbiddenRole,
			"appointment is assigned to another staff member").WithParams(params)
	case errors.Is(err, store.ErrConcurrentUpdate):
		return apperrors.Conflict(apperrors.CodeConcurrentUpdate,
			"appointment changed concurrently, retry").WithParams(params)
	default:
		return apperrors.ErrStoreUnavailable(err)
	}
}
