package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"securevet.io/securevet/internal/audit"
	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/pkg/fieldcrypt"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/store"
)

// CompleteAppointmentInput identifies the appointment to finish.
type CompleteAppointmentInput struct {
	AppointmentID string `json:"appointment_id"`
}

// CompleteAppointmentOutput returns the closed appointment and its
// synthesized record.
type CompleteAppointmentOutput struct {
	Appointment *domain.Appointment   `json:"appointment"`
	Record      *domain.MedicalRecord `json:"record"`
}

// CompleteAppointmentUseCase moves a confirmed appointment to Done and
// writes its medical record in the same store operation.
type CompleteAppointmentUseCase struct {
	appts    store.Appointments
	keyring  *fieldcrypt.Keyring
	recorder *audit.Recorder
}

// NewCompleteAppointmentUseCase creates the use case.
func NewCompleteAppointmentUseCase(appts store.Appointments, keyring *fieldcrypt.Keyring, recorder *audit.Recorder) *CompleteAppointmentUseCase {
	return &CompleteAppointmentUseCase{appts: appts, keyring: keyring, recorder: recorder}
}

// Execute completes the appointment. The record carries the placeholder
// diagnosis, the visit reason as treatment, and templated notes sealed
// under the active key. Store-level atomicity guarantees exactly one
// record per completed appointment.
func (uc *CompleteAppointmentUseCase) Execute(ctx context.Context, actor domain.Actor, input CompleteAppointmentInput) (*CompleteAppointmentOutput, error) {
	if !actor.Role.Can(domain.CapCompleteAppointment) {
		return nil, apperrors.Forbidden(apperrors.CodeForbiddenRole, "role may not complete appointments")
	}

	a, err := uc.appts.GetByID(ctx, input.AppointmentID)
	if err != nil {
		return nil, mapClaimErr(err, input.AppointmentID)
	}

	notes, err := uc.keyring.Encrypt(domain.AutoRecordNotes(a.Reason))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "encrypt record notes", 500)
	}

	rec := &domain.MedicalRecord{
		PetID:     a.PetID,
		Date:      a.Date,
		Diagnosis: domain.AutoRecordDiagnosis,
		Treatment: a.Reason,
		Notes:     notes,
		CreatedBy: actor.ID,
	}

	done, err := uc.appts.Complete(ctx, input.AppointmentID, actor.ID, actor.Role.OverridesClaim(), rec)
	if err != nil {
		return nil, mapClaimErr(err, input.AppointmentID)
	}

	uc.recorder.RecordActor(ctx, actor, domain.ActionRecordCreateAuto,
		fmt.Sprintf("completed appointment %s, record %s", done.ID, rec.ID))

	logger.Info("Appointment completed",
		zap.String("appointment_id", done.ID),
		zap.String("record_id", rec.ID),
		zap.String("staff_id", actor.ID),
	)

	return &CompleteAppointmentOutput{Appointment: done, Record: rec}, nil
}
