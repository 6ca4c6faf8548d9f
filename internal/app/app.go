// Package app wires the CineTrivia components together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abdulachik/cinetrivia/internal/actions"
	"github.com/abdulachik/cinetrivia/internal/ai"
	"github.com/abdulachik/cinetrivia/internal/catalog"
	"github.com/abdulachik/cinetrivia/internal/config"
	"github.com/abdulachik/cinetrivia/internal/db"
	"github.com/abdulachik/cinetrivia/internal/health"
	"github.com/abdulachik/cinetrivia/internal/metrics"
	"github.com/abdulachik/cinetrivia/internal/server"
	"github.com/abdulachik/cinetrivia/internal/supersede"
)

// App is the main application container holding all dependencies.
type App struct {
	Config   *config.Config
	Store    *db.Store
	Catalog  *catalog.Catalog
	Provider ai.Provider // nil unless built with WithAI
	Service  *actions.Service
	Health   *health.Health
	Tracker  *supersede.Tracker
}

// Option customizes New.
type Option func(*options)

type options struct {
	ai       bool
	provider ai.Provider
}

// WithAI builds the provider selected by the configuration.
func WithAI() Option {
	return func(o *options) { o.ai = true }
}

// WithProvider uses p instead of building one from the configuration.
func WithProvider(p ai.Provider) Option {
	return func(o *options) {
		o.ai = true
		o.provider = p
	}
}

// New creates a new application instance with all dependencies wired up.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	metrics.CatalogMovies.Set(float64(cat.Len()))

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	a := &App{
		Config:  cfg,
		Store:   store,
		Catalog: cat,
		Health:  health.New(),
		Tracker: supersede.NewTracker(),
	}

	if o.ai {
		provider := o.provider
		if provider == nil {
			provider, err = ai.NewProvider(ctx, cfg)
			if err != nil {
				store.Close()
				return nil, err
			}
		}
		a.Provider = ai.Instrument(provider)
	}

	a.Service = actions.NewService(actions.Config{
		Provider:        a.Provider,
		Store:           store,
		Catalog:         cat,
		PlaceholderURL:  cfg.PlaceholderPosterURL,
		PosterCacheTTL:  cfg.PosterCacheTTL,
		PosterCacheSize: cfg.PosterCacheSize,
		Timeout:         cfg.AITimeout,
	})

	a.registerHealth()
	return a, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("load embedded catalog: %w", err)
		}
		return cat, nil
	}

	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	slog.Info("catalog loaded", "path", cfg.CatalogPath, "movies", cat.Len())
	return cat, nil
}

func (a *App) registerHealth() {
	a.Health.Register(health.Database, true, func(ctx context.Context) error {
		return a.Store.PingContext(ctx)
	})
	a.Health.Register(health.Catalog, true, func(ctx context.Context) error {
		if a.Catalog.Len() == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	})

	if a.Provider == nil {
		return
	}
	a.Health.Register(health.AI, false, nil)
	ai.Observe(a.Provider, func(op string, err error) {
		// cancellations and missing capabilities say nothing about the provider
		if errors.Is(err, context.Canceled) || errors.Is(err, ai.ErrUnsupported) {
			return
		}
		a.Health.Record(health.AI, err)
	})
}

// Server builds the HTTP server.
func (a *App) Server() (*server.Server, error) {
	return server.New(server.Config{
		Service:            a.Service,
		Health:             a.Health,
		Tracker:            a.Tracker,
		CORSAllowedOrigins: a.Config.CORSAllowedOrigins,
		RateLimitRequests:  a.Config.RateLimitRequests,
		RateLimitWindow:    a.Config.RateLimitWindow,
	})
}

// WatchCatalog reloads the catalog file on change until ctx is cancelled.
// It returns immediately when the embedded catalog is in use.
func (a *App) WatchCatalog(ctx context.Context) error {
	if a.Config.CatalogPath == "" {
		return nil
	}

	w, err := catalog.NewWatcher(catalog.WatcherConfig{
		Catalog: a.Catalog,
		Path:    a.Config.CatalogPath,
		OnReload: metrics.RecordCatalogReload,
	})
	if err != nil {
		return fmt.Errorf("watch catalog: %w", err)
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
