package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"securevet.io/securevet/internal/audit"
	"securevet.io/securevet/internal/domain"
	apperrors "securevet.io/securevet/internal/pkg/errors"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/store"
)

// BookForClientInput is a staff-side booking on a client's behalf.
type BookForClientInput struct {
	ClientID string `json:"client_id"`
	PetID    string `json:"pet_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Reason   string `json:"reason"`
}

// BookForClientOutput returns the created, already-confirmed appointment.
type BookForClientOutput struct {
	Appointment *domain.Appointment `json:"appointment"`
}

// BookForClientUseCase lets staff create an appointment that skips the
// queue: it is born Confirmed and assigned to the booking staff member.
type BookForClientUseCase struct {
	appts    store.Appointments
	pets     store.Pets
	users    store.Users
	recorder *audit.Recorder
	now      func() time.Time
}

// NewBookForClientUseCase creates the use case.
func NewBookForClientUseCase(appts store.Appointments, pets store.Pets, users store.Users, recorder *audit.Recorder) *BookForClientUseCase {
	return &BookForClientUseCase{appts: appts, pets: pets, users: users, recorder: recorder, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (uc *BookForClientUseCase) WithClock(now func() time.Time) *BookForClientUseCase {
	uc.now = now
	return uc
}

// Execute validates the booking: the client must exist, own at least
// one pet, and own the chosen pet; the date must not be in the past.
func (uc *BookForClientUseCase) Execute(ctx context.Context, actor domain.Actor, input BookForClientInput) (*BookForClientOutput, error) {
	if !actor.Role.Can(domain.CapBookForClient) {
		return nil, apperrors.Forbidden(apperrors.CodeForbiddenRole, "role may not book for clients")
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

	client, err := uc.users.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, apperrors.NotFound(apperrors.CodeUserNotFound, "client not found").
			WithParams(map[string]interface{}{"client_id": input.ClientID})
	}
	if client.Role != domain.RoleClient {
		return nil, apperrors.BadRequest(apperrors.CodeValidationFailed, "target user is not a client")
	}

	pets, err := uc.pets.ListByOwner(ctx, client.ID)
	if err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}
	if len(pets) == 0 {
		return nil, apperrors.BadRequest(apperrors.CodeClientNoPets, "client has no registered pets").
			WithParams(map[string]interface{}{"client_id": client.ID})
	}

	var pet *domain.Pet
	for i := range pets {
		if pets[i].ID == input.PetID {
			pet = &pets[i]
			break
		}
	}
	if pet == nil {
		return nil, apperrors.ErrPetNotOwnedf(input.PetID)
	}

	a := &domain.Appointment{
		PetID:      pet.ID,
		OwnerID:    client.ID,
		Date:       input.Date,
		Time:       input.Time,
		Reason:     input.Reason,
		Status:     domain.StatusConfirmed,
		AssignedTo: actor.ID,
		CreatedBy:  actor.ID,
	}
	if err := uc.appts.Create(ctx, a); err != nil {
		return nil, apperrors.ErrStoreUnavailable(err)
	}

	uc.recorder.RecordActor(ctx, actor, domain.ActionApptCreateAuto,
		fmt.Sprintf("booked appointment %s for client %s", a.ID, client.Email))

	logger.Info("Appointment booked for client",
		zap.String("appointment_id", a.ID),
		zap.String("client_id", client.ID),
		zap.String("staff_id", actor.ID),
	)

	return &BookForClientOutput{Appointment: a}, nil
}
