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

type petStore struct {
	pool *pgxpool.Pool
}

const petColumns = `id, owner_id, name, type, breed, age, weight, created_at`

func scanPet(row pgx.Row) (*domain.Pet, error) {
	var p domain.Pet
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Type, &p.Breed, &p.Age, &p.Weight, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("scan pet: %w", err)
	}
	return &p, nil
}

func (s *petStore) Create(ctx context.Context, p *domain.Pet) error {
	if p.ID == "" {
		p.ID = newID()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pets (id, owner_id, name, type, breed, age, weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.OwnerID, p.Name, p.Type, p.Breed, p.Age, p.Weight,
	)
	if err != nil {
		return fmt.Errorf("insert pet: %w", err)
	}
	return nil
}

func (s *petStore) GetByID(ctx context.Context, id string) (*domain.Pet, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	return scanPet(row)
}

func (s *petStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Pet, error) {
	return s.list(ctx, `SELECT `+petColumns+` FROM pets WHERE owner_id = $1 ORDER BY name`, ownerID)
}

func (s *petStore) List(ctx context.Context) ([]domain.Pet, error) {
	return s.list(ctx, `SELECT `+petColumns+` FROM pets ORDER BY name`)
}

func (s *petStore) list(ctx context.Context, query string, args ...any) ([]domain.Pet, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	defer rows.Close()

	var out []domain.Pet
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
