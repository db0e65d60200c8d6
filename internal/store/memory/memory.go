// Package memory provides an in-memory store implementation used by tests
// and local development. All entity stores share one mutex so multi-entity
// writes (complete + record) stay atomic.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/store"
)

// DB is the shared in-memory state backing all entity stores.
type DB struct {
	mu sync.Mutex

	users    map[string]domain.User
	pets     map[string]domain.Pet
	appts    map[string]domain.Appointment
	records  []domain.MedicalRecord
	audit    []domain.AuditEntry
	pwreqs   map[string]domain.PasswordRequest
	now      func() time.Time
	failures map[string]error
}

// New creates an empty DB.
func New() *DB {
	return &DB{
		users:    make(map[string]domain.User),
		pets:     make(map[string]domain.Pet),
		appts:    make(map[string]domain.Appointment),
		pwreqs:   make(map[string]domain.PasswordRequest),
		now:      time.Now,
		failures: make(map[string]error),
	}
}

// SetClock overrides the timestamp source (tests).
func (d *DB) SetClock(now func() time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.now = now
}

// FailNext makes the named operation (e.g. "audit.append") return err on
// every subsequent call until cleared with a nil err. Tests only.
func (d *DB) FailNext(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, op)
		return
	}
	d.failures[op] = err
}

func (d *DB) failure(op string) error {
	return d.failures[op]
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Users returns the user store view.
func (d *DB) Users() store.Users { return (*userStore)(d) }

// Pets returns the pet store view.
func (d *DB) Pets() store.Pets { return (*petStore)(d) }

// Appointments returns the appointment store view.
func (d *DB) Appointments() store.Appointments { return (*apptStore)(d) }

// Records returns the medical record store view.
func (d *DB) Records() store.Records { return (*recordStore)(d) }

// Audit returns the audit store view.
func (d *DB) Audit() store.Audit { return (*auditStore)(d) }

// PasswordRequests returns the password request store view.
func (d *DB) PasswordRequests() store.PasswordRequests { return (*pwreqStore)(d) }

// --- users ---

type userStore DB

func (s *userStore) Create(_ context.Context, u *domain.User) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = d.now()
	}
	d.users[u.ID] = *u
	return nil
}

func (s *userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *userStore) List(_ context.Context) ([]domain.User, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *userStore) Update(_ context.Context, u *domain.User) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	d.users[u.ID] = *u
	return nil
}

func (s *userStore) Delete(_ context.Context, id string) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(d.users, id)
	return nil
}

// --- pets ---

type petStore DB

func (s *petStore) Create(_ context.Context, p *domain.Pet) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = d.now()
	}
	d.pets[p.ID] = *p
	return nil
}

func (s *petStore) GetByID(_ context.Context, id string) (*domain.Pet, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *petStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Pet, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []domain.Pet
	for _, p := range d.pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *petStore) List(_ context.Context) ([]domain.Pet, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.Pet, 0, len(d.pets))
	for _, p := range d.pets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- appointments ---

type apptStore DB

func (s *apptStore) Create(_ context.Context, a *domain.Appointment) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	if a.ID == "" {
		a.ID = newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = d.now()
	}
	d.appts[a.ID] = *a
	return nil
}

func (s *apptStore) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.appts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (s *apptStore) List(_ context.Context) ([]domain.Appointment, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.Appointment, 0, len(d.appts))
	for _, a := range d.appts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

// Claim is the atomic conditional update: check and write happen under one
// lock, so two racing claimants resolve to exactly one winner.
func (s *apptStore) Claim(_ context.Context, id, staffID string, override bool) (*domain.Appointment, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.appts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if a.Status == domain.StatusDone {
		return nil, store.ErrAlreadyCompleted
	}
	if !override && a.AssignedTo != "" && a.AssignedTo != staffID {
		return nil, store.ErrAlreadyAssigned
	}

	a.Status = domain.StatusConfirmed
	a.AssignedTo = staffID
	d.appts[id] = a
	return &a, nil
}

func (s *apptStore) Complete(_ context.Context, id, staffID string, override bool, rec *domain.MedicalRecord) (*domain.Appointment, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.appts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	switch a.Status {
	case domain.StatusDone:
		return nil, store.ErrAlreadyCompleted
	case domain.StatusPending:
		return nil, store.ErrNotConfirmed
	}
	if !override && a.AssignedTo != staffID {
		return nil, store.ErrNotAssignee
	}

	a.Status = domain.StatusDone
	d.appts[id] = a

	if rec != nil {
		if rec.ID == "" {
			rec.ID = newID()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = d.now()
		}
		d.records = append(d.records, *rec)
	}
	return &a, nil
}

// --- records ---

type recordStore DB

func (s *recordStore) Create(_ context.Context, r *domain.MedicalRecord) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	if r.ID == "" {
		r.ID = newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = d.now()
	}
	d.records = append(d.records, *r)
	return nil
}

func (s *recordStore) List(_ context.Context) ([]domain.MedicalRecord, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.MedicalRecord, len(d.records))
	copy(out, d.records)
	return out, nil
}

// --- audit ---

type auditStore DB

func (s *auditStore) Append(_ context.Context, e *domain.AuditEntry) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.failure("audit.append"); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	if e.ID == "" {
		e.ID = newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = d.now()
	}
	d.audit = append(d.audit, *e)
	return nil
}

func (s *auditStore) List(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.AuditEntry, len(d.audit))
	copy(out, d.audit)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- password requests ---

type pwreqStore DB

func (s *pwreqStore) Create(_ context.Context, r *domain.PasswordRequest) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	if r.ID == "" {
		r.ID = newID()
	}
	if r.RequestDate.IsZero() {
		r.RequestDate = d.now()
	}
	if r.Status == "" {
		r.Status = domain.PasswordRequestPending
	}
	d.pwreqs[r.ID] = *r
	return nil
}

func (s *pwreqStore) ListPending(_ context.Context) ([]domain.PasswordRequest, error) {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []domain.PasswordRequest
	for _, r := range d.pwreqs {
		if r.Status == domain.PasswordRequestPending {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.Before(out[j].RequestDate) })
	return out, nil
}

func (s *pwreqStore) Resolve(_ context.Context, id string) error {
	d := (*DB)(s)
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.pwreqs[id]
	if !ok {
		return store.ErrNotFound
	}
	r.Status = domain.PasswordRequestResolved
	d.pwreqs[id] = r
	return nil
}

// compile-time checks
var (
	_ store.Users            = (*userStore)(nil)
	_ store.Pets             = (*petStore)(nil)
	_ store.Appointments     = (*apptStore)(nil)
	_ store.Records          = (*recordStore)(nil)
	_ store.Audit            = (*auditStore)(nil)
	_ store.PasswordRequests = (*pwreqStore)(nil)
)
