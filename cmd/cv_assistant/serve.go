package main

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-assistant/internal/assistant"
	"github.com/jonathan/cv-assistant/internal/fetch"
	"github.com/jonathan/cv-assistant/internal/ingestion"
	"github.com/jonathan/cv-assistant/internal/metrics"
	"github.com/jonathan/cv-assistant/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveUseBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web form",
	Long:  `Start an HTTP server that serves the form page and a JSON API for editing the form and generating output.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080, or PORT)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Render job pages with headless Chrome when needed (requires Chrome)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	events := server.NewBroadcaster()
	a, err := openApp(ctx, cmd, appOptions{
		notifier: assistant.NewMultiNotifier(assistant.LogNotifier{}, events),
		recorder: metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.ListenPort()
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	useBrowser := a.cfg.UseBrowser
	if cmd.Flags().Changed("use-browser") {
		useBrowser = serveUseBrowser
	}
	var renderer fetch.Renderer
	if useBrowser {
		renderer = fetch.NewChromeRenderer(a.cfg.Verbose)
	}

	srv, err := server.New(server.Config{
		Port:    port,
		Service: a.svc,
		Events:  events,
		Importer: &ingestion.JobImporter{
			Fetcher: fetch.NewFetcher(renderer, a.cfg.Verbose),
			Client:  a.client,
			Verbose: a.cfg.Verbose,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
