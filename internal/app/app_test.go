package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/cinetrivia/internal/ai"
	"github.com/abdulachik/cinetrivia/internal/config"
	"github.com/abdulachik/cinetrivia/internal/health"
)

type failingProvider struct{ err error }

func (f *failingProvider) Name() string { return "failing" }

func (f *failingProvider) Recommend(context.Context, ai.RecommendInput) (*ai.Recommendation, error) {
	return nil, f.err
}

func (f *failingProvider) FunFact(context.Context, ai.FunFactInput) (*ai.FunFact, error) {
	return nil, f.err
}

func (f *failingProvider) GeneratePoster(context.Context, ai.PosterInput) (*ai.Poster, error) {
	return nil, ai.ErrUnsupported
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:   filepath.Join(t.TempDir(), "app.db"),
		AIProvider:     config.ProviderAnthropic,
		PosterCacheTTL: time.Hour,
		AITimeout:      time.Second,
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("without AI", func(t *testing.T) {
		a, err := New(ctx, testConfig(t))
		require.NoError(t, err)
		defer a.Close()

		assert.Nil(t, a.Provider)
		assert.Greater(t, a.Catalog.Len(), 0)

		a.Health.Check(ctx)
		report := a.Health.Snapshot()
		assert.Equal(t, "ok", report.Status)
		assert.Contains(t, report.Components, health.Database)
		assert.NotContains(t, report.Components, health.AI)
	})

	t.Run("provider failures degrade health", func(t *testing.T) {
		a, err := New(ctx, testConfig(t), WithProvider(&failingProvider{err: errors.New("quota exceeded")}))
		require.NoError(t, err)
		defer a.Close()

		_, err = a.Service.FunFact(ctx, "Inception")
		require.Error(t, err)

		status, ok := a.Health.Snapshot().Components[health.AI]
		require.True(t, ok)
		assert.False(t, status.Healthy)
		assert.Equal(t, "degraded", a.Health.Snapshot().Status)

		// unsupported posters are not a provider failure
		a.Health.SetHealthy(health.AI, "ok")
		movie, err := a.Catalog.Get(1)
		require.NoError(t, err)
		res := a.Service.Poster(ctx, "s1", movie)
		assert.True(t, res.Fallback)
		assert.True(t, a.Health.Snapshot().Components[health.AI].Healthy)
	})

	t.Run("builds configured provider", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AnthropicAPIKey = "test"

		a, err := New(ctx, cfg, WithAI())
		require.NoError(t, err)
		defer a.Close()
		assert.Equal(t, "anthropic", a.Provider.Name())

		srv, err := a.Server()
		require.NoError(t, err)
		assert.NotNil(t, srv.Handler())
	})

	t.Run("bad catalog path", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")

		_, err := New(ctx, cfg)
		assert.Error(t, err)
	})
}

func TestWatchCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("embedded catalog returns immediately", func(t *testing.T) {
		a, err := New(ctx, testConfig(t))
		require.NoError(t, err)
		defer a.Close()

		assert.NoError(t, a.WatchCatalog(ctx))
	})

	t.Run("file catalog reloads until cancelled", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.CatalogPath = filepath.Join(t.TempDir(), "movies.yaml")
		require.NoError(t, os.WriteFile(cfg.CatalogPath, []byte("movies:\n  - {id: 1, title: A}\n"), 0o644))

		a, err := New(ctx, cfg)
		require.NoError(t, err)
		defer a.Close()

		wctx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- a.WatchCatalog(wctx) }()

		require.NoError(t, os.WriteFile(cfg.CatalogPath, []byte("movies:\n  - {id: 1, title: A}\n  - {id: 2, title: B}\n"), 0o644))
		assert.Eventually(t, func() bool { return a.Catalog.Len() == 2 }, 5*time.Second, 20*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop")
		}
	})
}
