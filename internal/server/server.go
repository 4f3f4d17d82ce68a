// Package server provides the HTTP presentation layer for the CV assistant:
// the form page, a JSON API over the assistant service and an SSE event stream.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/cv-assistant/internal/assistant"
	"github.com/jonathan/cv-assistant/internal/ingestion"
	"github.com/jonathan/cv-assistant/internal/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static/index.html
var indexHTML []byte

// maxBodyBytes caps request bodies; a pasted résumé fits comfortably
const maxBodyBytes = 2 << 20

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	svc        *assistant.Service
	events     *Broadcaster
	importer   *ingestion.JobImporter
	now        func() time.Time
}

// Config holds server configuration
type Config struct {
	Port     int
	Service  *assistant.Service
	Events   *Broadcaster
	Importer *ingestion.JobImporter
	// Gatherer backs /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
	Clock    func() time.Time
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("server requires an assistant service")
	}

	s := &Server{
		svc:      cfg.Service,
		events:   cfg.Events,
		importer: cfg.Importer,
		now:      cfg.Clock,
	}
	if s.events == nil {
		s.events = NewBroadcaster()
	}
	if s.now == nil {
		s.now = time.Now
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Form state
	mux.HandleFunc("GET /api/form", s.handleGetForm)
	mux.HandleFunc("PUT /api/form", s.handlePutForm)
	mux.HandleFunc("DELETE /api/form", s.handleDeleteForm)
	mux.HandleFunc("PATCH /api/form/{field}", s.handlePatchField)
	mux.HandleFunc("POST /api/form/import-job", s.handleImportJob)

	// Credential
	mux.HandleFunc("GET /api/credential", s.handleGetCredential)
	mux.HandleFunc("PUT /api/credential", s.handlePutCredential)
	mux.HandleFunc("DELETE /api/credential", s.handleDeleteCredential)

	// Generation and result slots
	mux.HandleFunc("POST /api/generate/{mode}", s.handleGenerate)
	mux.HandleFunc("GET /api/results", s.handleListResults)
	mux.HandleFunc("GET /api/results/{mode}", s.handleGetResult)
	mux.HandleFunc("DELETE /api/results/{mode}", s.handleClearResult)
	mux.HandleFunc("GET /api/results/{mode}/download", s.handleDownload)

	// History
	mux.HandleFunc("GET /api/history", s.handleListHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleGetHistory)

	mux.HandleFunc("GET /api/events", s.handleEvents)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.withLogging(s.withCORS(mux)),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: /api/events streams for the life of the page
		IdleTimeout: 60 * time.Second,
	}
	s.httpServer.RegisterOnShutdown(s.events.Close)

	return s, nil
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops accepting requests, disconnects event streams and waits
// for background generations to settle.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.svc.Wait()
	log.Println("[server] stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleIndex serves the form page
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(indexHTML); err != nil {
		log.Printf("[server] failed to write index page: %v", err)
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "model": s.svc.Model()})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFor writes err with its mapped status and reason label
func (s *Server) errorFor(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
	}
	s.jsonResponse(w, status, map[string]string{
		"error":  err.Error(),
		"reason": llm.Reason(err),
	})
}

// decodeJSON decodes a size-limited JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}
