package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_SetHealthy(t *testing.T) {
	h := New()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	h.SetHealthy(Database, "ping ok")

	s, ok := h.Snapshot().Components[Database]
	require.True(t, ok)
	assert.True(t, s.Healthy)
	assert.Equal(t, "ping ok", s.Message)
	assert.Equal(t, fixed, s.LastSuccess)
	assert.NotContains(t, h.Snapshot().Components, "missing")
}

func TestHealth_SetUnhealthy(t *testing.T) {
	h := New()
	h.SetHealthy(AI, "ok")
	h.SetUnhealthy(AI, errors.New("quota exceeded"))

	s, ok := h.Snapshot().Components[AI]
	require.True(t, ok)
	assert.False(t, s.Healthy)
	assert.Equal(t, "quota exceeded", s.LastError)
	assert.False(t, s.LastSuccess.IsZero(), "last success is kept")
}

func TestHealth_Snapshot(t *testing.T) {
	t.Run("non-critical failure is degraded", func(t *testing.T) {
		h := New()
		h.Register(Database, true, nil)
		h.Register(AI, false, nil)
		h.Record(AI, errors.New("timeout"))

		r := h.Snapshot()
		assert.Equal(t, "degraded", r.Status)
		assert.Len(t, r.Components, 2)
	})

	t.Run("critical failure is unhealthy", func(t *testing.T) {
		h := New()
		h.Register(Database, true, nil)
		h.Register(AI, false, nil)
		h.Record(AI, errors.New("timeout"))
		h.Record(Database, errors.New("disk I/O error"))

		assert.Equal(t, "unhealthy", h.Snapshot().Status)
	})

	t.Run("registered components start healthy", func(t *testing.T) {
		h := New()
		h.Register(Catalog, true, nil)
		assert.Equal(t, "ok", h.Snapshot().Status)
		assert.Contains(t, h.Snapshot().Components, Catalog)
	})
}

func TestHealth_Check(t *testing.T) {
	h := New()
	dbErr := errors.New("database is locked")
	calls := 0
	h.Register(Database, true, func(ctx context.Context) error {
		calls++
		if calls > 1 {
			return dbErr
		}
		return nil
	})

	h.Check(context.Background())
	assert.True(t, h.Snapshot().Components[Database].Healthy)

	h.Check(context.Background())
	s := h.Snapshot().Components[Database]
	assert.False(t, s.Healthy)
	assert.Equal(t, dbErr.Error(), s.LastError)
}
