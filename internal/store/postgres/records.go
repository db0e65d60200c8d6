package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"securevet.io/securevet/internal/domain"
)

type recordStore struct {
	pool *pgxpool.Pool
}

func (s *recordStore) Create(ctx context.Context, r *domain.MedicalRecord) error {
	if r.ID == "" {
		r.ID = newID()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO medical_records (id, pet_id, date, diagnosis, treatment, notes_key_id, notes_nonce, notes_ciphertext, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.PetID, r.Date, r.Diagnosis, r.Treatment,
		r.Notes.KeyID, r.Notes.Nonce, r.Notes.Ciphertext, r.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *recordStore) List(ctx context.Context) ([]domain.MedicalRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, pet_id, date, diagnosis, treatment, notes_key_id, notes_nonce, notes_ciphertext, created_by, created_at
		FROM medical_records ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []domain.MedicalRecord
	for rows.Next() {
		var r domain.MedicalRecord
		err := rows.Scan(&r.ID, &r.PetID, &r.Date, &r.Diagnosis, &r.Treatment,
			&r.Notes.KeyID, &r.Notes.Nonce, &r.Notes.Ciphertext, &r.CreatedBy, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
