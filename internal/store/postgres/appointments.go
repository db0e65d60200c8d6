package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/store"
)

type apptStore struct {
	pool *pgxpool.Pool
}

const apptColumns = `id, pet_id, owner_id, date, time, reason, status, assigned_to, created_by, created_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var a domain.Appointment
	var status string
	var assigned *string
	err := row.Scan(&a.ID, &a.PetID, &a.OwnerID, &a.Date, &a.Time, &a.Reason,
		&status, &assigned, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	a.Status = domain.AppointmentStatus(status)
	if assigned != nil {
		a.AssignedTo = *assigned
	}
	return &a, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *apptStore) Create(ctx context.Context, a *domain.Appointment) error {
	if a.ID == "" {
		a.ID = newID()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO appointments (id, pet_id, owner_id, date, time, reason, status, assigned_to, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.PetID, a.OwnerID, a.Date, a.Time, a.Reason, string(a.Status), nullable(a.AssignedTo), a.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *apptStore) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

func (s *apptStore) List(ctx context.Context) ([]domain.Appointment, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+apptColumns+` FROM appointments ORDER BY date, time`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Claim assigns the appointment to staffID with a single conditional
// UPDATE, so two concurrent claims cannot both succeed. When the update
// matches no row, a follow-up read distinguishes why.
func (s *apptStore) Claim(ctx context.Context, id, staffID string, override bool) (*domain.Appointment, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $3, assigned_to = $2
		WHERE id = $1
		  AND status <> $4
		  AND ($5 OR assigned_to IS NULL OR assigned_to = $2)`,
		id, staffID, string(domain.StatusConfirmed), string(domain.StatusDone), override,
	)
	if err != nil {
		return nil, fmt.Errorf("claim appointment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, s.claimFailure(ctx, id)
	}
	return s.GetByID(ctx, id)
}

func (s *apptStore) claimFailure(ctx context.Context, id string) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == domain.StatusDone {
		return store.ErrAlreadyCompleted
	}
	if a.Assigned() {
		return store.ErrAlreadyAssigned
	}
	// The row reads as claimable, yet the UPDATE matched nothing: a
	// concurrent write moved it between the two statements.
	return store.ErrConcurrentUpdate
}

// Complete marks the appointment Done and inserts its medical record in
// one transaction. Exactly one record exists per completed appointment.
func (s *apptStore) Complete(ctx context.Context, id, staffID string, override bool, rec *domain.MedicalRecord) (*domain.Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin complete: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $3
		WHERE id = $1
		  AND status = $4
		  AND ($5 OR assigned_to = $2)`,
		id, staffID, string(domain.StatusDone), string(domain.StatusConfirmed), override,
	)
	if err != nil {
		return nil, fmt.Errorf("complete appointment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, s.completeFailure(ctx, id, staffID)
	}

	if rec.ID == "" {
		rec.ID = newID()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO medical_records (id, pet_id, date, diagnosis, treatment, notes_key_id, notes_nonce, notes_ciphertext, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.PetID, rec.Date, rec.Diagnosis, rec.Treatment,
		rec.Notes.KeyID, rec.Notes.Nonce, rec.Notes.Ciphertext, rec.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record for appointment %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit complete: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *apptStore) completeFailure(ctx context.Context, id, staffID string) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case a.Status == domain.StatusDone:
		return store.ErrAlreadyCompleted
	case a.Status == domain.StatusPending:
		return store.ErrNotConfirmed
	case a.AssignedTo != staffID:
		return store.ErrNotAssignee
	}
	return store.ErrConcurrentUpdate
}
