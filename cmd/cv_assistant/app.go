package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/cv-assistant/internal/assistant"
	"github.com/jonathan/cv-assistant/internal/config"
	"github.com/jonathan/cv-assistant/internal/db"
	"github.com/jonathan/cv-assistant/internal/llm"
	"github.com/jonathan/cv-assistant/internal/metrics"
	"github.com/spf13/cobra"
)

// app bundles what every command needs: config, store, client and service.
type app struct {
	cfg    config.Config
	store  db.Store
	client llm.Client
	svc    *assistant.Service
}

// appOptions customizes the service for commands that need more than logging
type appOptions struct {
	notifier assistant.Notifier
	recorder metrics.Recorder
}

// loadConfig resolves configuration: config file, then environment, then flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if rootConfigPath != "" {
		loadedCfg, err := config.LoadConfig(rootConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if rootVerbose {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Loaded config from: %s\n", rootConfigPath)
		}
	}

	// Step 2: Environment overrides the file
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	// Step 3: Explicitly set flags win
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.StorePath = rootStorePath
		cfg.DatabaseURL = ""
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = rootDatabaseURL
		cfg.StorePath = ""
	}
	if flags.Changed("verbose") {
		cfg.Verbose = rootVerbose
	}

	// Step 4: Apply defaults for unset values
	defaults := config.Config{
		OutputDir: ".",
		Port:      config.DefaultPort,
	}
	cfg = cfg.MergeWithDefaults(defaults)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// openApp loads configuration and opens the store and generation client.
// Callers must Close the returned app.
func openApp(ctx context.Context, cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	store, err := db.Open(ctx, db.Options{
		DatabaseURL: cfg.DatabaseURL,
		Path:        cfg.StorePath,
		Ephemeral:   rootEphemeral,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	client := llm.NewClient(llmCfg)

	notifier := opts.notifier
	if notifier == nil {
		notifier = assistant.LogNotifier{}
	}

	svc := assistant.NewService(assistant.Options{
		Store:              store,
		Client:             client,
		Notifier:           notifier,
		Recorder:           opts.recorder,
		Tokens:             llm.NewTokenCounter(),
		FallbackCredential: cfg.APIKey,
	})

	return &app{cfg: cfg, store: store, client: client, svc: svc}, nil
}

// Close releases the client and store
func (a *app) Close() {
	_ = a.client.Close()
	_ = a.store.Close()
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
