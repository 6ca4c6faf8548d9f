package main

import (
	"context"
	"fmt"

	"github.com/abdulachik/cinetrivia/internal/app"
	"github.com/abdulachik/cinetrivia/internal/config"
)

// Checks for loadConfig, from least to most demanding.
var (
	checkBase  = (*config.Config).Validate
	checkAI    = (*config.Config).ValidateForAI
	checkServe = (*config.Config).ValidateForServe
)

// loadConfig reads the environment and runs the given checks in order.
func loadConfig(checks ...func(*config.Config) error) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}
	return cfg, nil
}

// openApp builds the application for a one-shot command. Commands that talk
// to the AI provider pass withAI.
func openApp(ctx context.Context, withAI bool) (*app.App, error) {
	checks := []func(*config.Config) error{checkBase}
	var opts []app.Option
	if withAI {
		checks = append(checks, checkAI)
		opts = append(opts, app.WithAI())
	}

	cfg, err := loadConfig(checks...)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, opts...)
}
