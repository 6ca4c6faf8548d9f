package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abdulachik/cinetrivia/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Serve the catalog pages and JSON API. When CATALOG_PATH is set the
catalog file is reloaded whenever it changes.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(checkServe)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, app.WithAI())
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := a.Server()
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	slog.Info("starting CineTrivia",
		"addr", cfg.HTTPAddr,
		"provider", a.Provider.Name(),
		"movies", a.Catalog.Len(),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, cfg.HTTPAddr) })
	g.Go(func() error { return a.WatchCatalog(ctx) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shut down")
	return nil
}
