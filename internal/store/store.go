// Package store defines the persistence contracts consumed by the
// services and use cases. Two implementations exist: memory (tests,
// development) and postgres.
package store

import (
	"context"
	"errors"

	"securevet.io/securevet/internal/domain"
)

// Sentinel errors shared by all implementations. Use cases translate
// these into the caller-facing error taxonomy.
var (
	ErrNotFound       = errors.New("store: not found")
	ErrDuplicateEmail = errors.New("store: email already exists")

	// ErrAlreadyAssigned is the claim conflict: the appointment is held
	// by a different staff member.
	ErrAlreadyAssigned = errors.New("store: appointment already assigned")

	// ErrAlreadyCompleted rejects any write to a Done appointment.
	ErrAlreadyCompleted = errors.New("store: appointment already completed")

	// ErrNotConfirmed rejects completing an appointment that was never
	// claimed.
	ErrNotConfirmed = errors.New("store: appointment not confirmed")

	// ErrNotAssignee rejects completion by a staff member other than the
	// one holding the appointment.
	ErrNotAssignee = errors.New("store: appointment assigned to someone else")

	// ErrConcurrentUpdate reports a write that lost to a concurrent
	// modification in a way no more specific sentinel describes.
	ErrConcurrentUpdate = errors.New("store: concurrent modification")
)

// Users stores portal accounts. Delete exists for admin user removal only.
type Users interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}

// Pets stores pets. There is no update or delete; the owner reference is
// immutable after creation.
type Pets interface {
	Create(ctx context.Context, p *domain.Pet) error
	GetByID(ctx context.Context, id string) (*domain.Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Pet, error)
	List(ctx context.Context) ([]domain.Pet, error)
}

// Appointments owns all writes to appointment status and assignment.
// Claim and Complete are single conditional writes, not read-modify-write:
// two racing claimants resolve to exactly one winner inside the store.
type Appointments interface {
	Create(ctx context.Context, a *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	List(ctx context.Context) ([]domain.Appointment, error)

	// Claim confirms the appointment and assigns it to staffID, provided
	// it is not Done and not already held by someone else. override skips
	// the holder check (admin). Returns the updated appointment.
	Claim(ctx context.Context, id, staffID string, override bool) (*domain.Appointment, error)

	// Complete marks a Confirmed appointment Done and appends rec in the
	// same atomic write, provided staffID holds the appointment (or
	// override). Exactly one record is ever created per completion.
	Complete(ctx context.Context, id, staffID string, override bool, rec *domain.MedicalRecord) (*domain.Appointment, error)
}

// Records is append-only.
type Records interface {
	Create(ctx context.Context, r *domain.MedicalRecord) error
	List(ctx context.Context) ([]domain.MedicalRecord, error)
}

// Audit is append-only; List returns newest first.
type Audit interface {
	Append(ctx context.Context, e *domain.AuditEntry) error
	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// PasswordRequests tracks the manual reset workflow.
type PasswordRequests interface {
	Create(ctx context.Context, r *domain.PasswordRequest) error
	ListPending(ctx context.Context) ([]domain.PasswordRequest, error)
	Resolve(ctx context.Context, id string) error
}
