package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/store/memory"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestRecorder_WritesEntry(t *testing.T) {
	db := memory.New()
	rec := NewRecorder(db.Audit())
	rec.SetClock(func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	})

	rec.Record(context.Background(), "staff@vet.example", domain.ActionApptAssign, "claimed appointment a1")

	entries, err := rec.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "staff@vet.example", entries[0].UserEmail)
	assert.Equal(t, domain.ActionApptAssign, entries[0].Action)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), entries[0].Timestamp)
}

func TestRecorder_StoreFailureDoesNotPanic(t *testing.T) {
	db := memory.New()
	rec := NewRecorder(db.Audit())

	db.FailNext("audit.append", errors.New("disk full"))

	// Must not panic or propagate the error.
	rec.Record(context.Background(), "staff@vet.example", domain.ActionLogin, "")

	entries, err := rec.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecorder_RecordActor(t *testing.T) {
	db := memory.New()
	rec := NewRecorder(db.Audit())

	actor := domain.Actor{ID: "u1", Email: "admin@vet.example", Role: domain.RoleAdmin}
	rec.RecordActor(context.Background(), actor, domain.ActionUserDelete, "deleted user u9")

	entries, err := rec.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "admin@vet.example", entries[0].UserEmail)
}
