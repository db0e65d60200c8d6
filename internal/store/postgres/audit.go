package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/store"
)

type auditStore struct {
	pool *pgxpool.Pool
}

func (s *auditStore) Append(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = newID()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, user_email, action, details, ts)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.UserEmail, e.Action, e.Details, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *auditStore) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_email, action, details, ts
		FROM audit_logs ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserEmail, &e.Action, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type pwreqStore struct {
	pool *pgxpool.Pool
}

func (s *pwreqStore) Create(ctx context.Context, r *domain.PasswordRequest) error {
	if r.ID == "" {
		r.ID = newID()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO password_requests (id, email, status, request_date)
		VALUES ($1, lower($2), $3, $4)`,
		r.ID, r.Email, string(r.Status), r.RequestDate,
	)
	if err != nil {
		return fmt.Errorf("insert password request: %w", err)
	}
	return nil
}

func (s *pwreqStore) ListPending(ctx context.Context) ([]domain.PasswordRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, email, status, request_date
		FROM password_requests WHERE status = $1 ORDER BY request_date`,
		string(domain.PasswordRequestPending))
	if err != nil {
		return nil, fmt.Errorf("list password requests: %w", err)
	}
	defer rows.Close()

	var out []domain.PasswordRequest
	for rows.Next() {
		var r domain.PasswordRequest
		var status string
		if err := rows.Scan(&r.ID, &r.Email, &status, &r.RequestDate); err != nil {
			return nil, fmt.Errorf("scan password request: %w", err)
		}
		r.Status = domain.PasswordRequestStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *pwreqStore) Resolve(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE password_requests SET status = $2 WHERE id = $1`,
		id, string(domain.PasswordRequestResolved))
	if err != nil {
		return fmt.Errorf("resolve password request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
