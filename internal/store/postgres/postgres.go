// Package postgres implements the store contracts on PostgreSQL via pgx.
//
// Claim and Complete are expressed as single conditional UPDATEs with a
// rows-affected check; the database arbitrates racing writers.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"securevet.io/securevet/internal/store"
)

// Stores bundles the pgx-backed implementations over one shared pool.
type Stores struct {
	pool *pgxpool.Pool
}

// New creates the store bundle on an existing pool.
func New(pool *pgxpool.Pool) *Stores {
	return &Stores{pool: pool}
}

// Users returns the user store.
func (s *Stores) Users() store.Users { return &userStore{pool: s.pool} }

// Pets returns the pet store.
func (s *Stores) Pets() store.Pets { return &petStore{pool: s.pool} }

// Appointments returns the appointment store.
func (s *Stores) Appointments() store.Appointments { return &apptStore{pool: s.pool} }

// Records returns the medical record store.
func (s *Stores) Records() store.Records { return &recordStore{pool: s.pool} }

// Audit returns the audit store.
func (s *Stores) Audit() store.Audit { return &auditStore{pool: s.pool} }

// PasswordRequests returns the password request store.
func (s *Stores) PasswordRequests() store.PasswordRequests { return &pwreqStore{pool: s.pool} }

// schema is the full DDL. Idempotent; applied by Migrate when
// database.auto_migrate is enabled.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL,
    email              TEXT NOT NULL UNIQUE,
    phone              TEXT NOT NULL DEFAULT '',
    role               TEXT NOT NULL,
    password_hash      TEXT NOT NULL,
    two_factor_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    two_factor_secret  TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pets (
    id         TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL REFERENCES users(id),
    name       TEXT NOT NULL,
    type       TEXT NOT NULL DEFAULT '',
    breed      TEXT NOT NULL DEFAULT '',
    age        INTEGER NOT NULL DEFAULT 0,
    weight     DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS pets_owner_idx ON pets (owner_id);

CREATE TABLE IF NOT EXISTS appointments (
    id          TEXT PRIMARY KEY,
    pet_id      TEXT NOT NULL REFERENCES pets(id),
    owner_id    TEXT NOT NULL REFERENCES users(id),
    date        TEXT NOT NULL,
    time        TEXT NOT NULL,
    reason      TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'Pending',
    assigned_to TEXT NULL REFERENCES users(id),
    created_by  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT pending_unassigned CHECK (
        (status = 'Pending' AND assigned_to IS NULL)
        OR (status <> 'Pending' AND assigned_to IS NOT NULL)
    )
);
CREATE INDEX IF NOT EXISTS appointments_owner_idx ON appointments (owner_id);
CREATE INDEX IF NOT EXISTS appointments_assigned_idx ON appointments (assigned_to);

CREATE TABLE IF NOT EXISTS medical_records (
    id         TEXT PRIMARY KEY,
    pet_id     TEXT NOT NULL REFERENCES pets(id),
    date       TEXT NOT NULL,
    diagnosis  TEXT NOT NULL DEFAULT '',
    treatment  TEXT NOT NULL DEFAULT '',
    notes_key_id     TEXT NOT NULL,
    notes_nonce      TEXT NOT NULL,
    notes_ciphertext TEXT NOT NULL,
    created_by TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS medical_records_pet_idx ON medical_records (pet_id);

CREATE TABLE IF NOT EXISTS audit_logs (
    id         TEXT PRIMARY KEY,
    user_email TEXT NOT NULL,
    action     TEXT NOT NULL,
    details    TEXT NOT NULL DEFAULT '',
    ts         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS audit_logs_ts_idx ON audit_logs (ts DESC);

CREATE TABLE IF NOT EXISTS password_requests (
    id           TEXT PRIMARY KEY,
    email        TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'Pending',
    request_date TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
