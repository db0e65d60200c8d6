// Package audit records security-relevant actions to the audit trail.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/store"
)

// Recorder appends entries to the audit trail. Writes happen before the
// triggering operation's success response, but a failed write never
// fails the operation.
type Recorder struct {
	store store.Audit
	now   func() time.Time
}

// NewRecorder creates a Recorder over the given audit store.
func NewRecorder(s store.Audit) *Recorder {
	return &Recorder{store: s, now: time.Now}
}

// SetClock overrides the timestamp source. Tests only.
func (r *Recorder) SetClock(now func() time.Time) {
	r.now = now
}

// Record writes one audit entry. Failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, userEmail, action, details string) {
	e := &domain.AuditEntry{
		UserEmail: userEmail,
		Action:    action,
		Details:   details,
		Timestamp: r.now().UTC(),
	}
	if err := r.store.Append(ctx, e); err != nil {
		logger.Warn("audit log write failed",
			zap.String("action", action),
			zap.String("user", userEmail),
			zap.Error(err),
		)
	}
}

// RecordActor writes an entry attributed to the acting user.
func (r *Recorder) RecordActor(ctx context.Context, actor domain.Actor, action, details string) {
	r.Record(ctx, actor.Email, action, details)
}

// List returns the newest entries, capped at limit.
func (r *Recorder) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return r.store.List(ctx, limit)
}
