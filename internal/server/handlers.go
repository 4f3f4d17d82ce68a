package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/cv-assistant/internal/assistant"
	"github.com/jonathan/cv-assistant/internal/db"
	"github.com/jonathan/cv-assistant/internal/export"
	"github.com/jonathan/cv-assistant/internal/fetch"
	"github.com/jonathan/cv-assistant/internal/ingestion"
	"github.com/jonathan/cv-assistant/internal/types"
)

// FieldRequest is the body of PATCH /api/form/{field}
type FieldRequest struct {
	Value string `json:"value"`
}

// CredentialRequest is the body of PUT /api/credential
type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

// CredentialStatus reports whether an API key is available. The key itself is never returned.
type CredentialStatus struct {
	Configured bool `json:"configured"`
}

// ImportJobRequest is the body of POST /api/form/import-job
type ImportJobRequest struct {
	URL     string `json:"url"`
	Extract bool   `json:"extract"`
}

// ImportJobResponse reports the imported posting and the updated form
type ImportJobResponse struct {
	Fields    types.FormFields `json:"fields"`
	Platform  string           `json:"platform"`
	Extracted bool             `json:"extracted"`
}

// handleGetForm returns the stored form fields
func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	fields, err := s.svc.Form().Fields(r.Context())
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, fields)
}

// handlePutForm merges a form document over the stored fields
func (s *Server) handlePutForm(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	fields, err := s.svc.Form().Update(r.Context(), func(current *types.FormFields) error {
		merged, err := ingestion.ParseForm(body, *current)
		if err != nil {
			return err
		}
		*current = merged
		return nil
	})
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, fields)
}

// handlePatchField updates one field, the way the page autosaves on input
func (s *Server) handlePatchField(w http.ResponseWriter, r *http.Request) {
	var req FieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFor(w, err)
		return
	}

	form := s.svc.Form()
	if err := form.SetField(r.Context(), r.PathValue("field"), req.Value); err != nil {
		s.errorFor(w, err)
		return
	}
	fields, err := form.Fields(r.Context())
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, fields)
}

// handleDeleteForm empties every field
func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Form().ClearFields(r.Context()); err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.FormFields{})
}

// handleImportJob fills the job fields from a posting URL
func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	if s.importer == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Job import is not configured")
		return
	}

	var req ImportJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFor(w, err)
		return
	}
	if err := fetch.ValidateURL(req.URL); err != nil {
		s.errorFor(w, &ErrValidation{Field: "url", Message: err.Error()})
		return
	}

	ctx := r.Context()
	credential := ""
	if req.Extract {
		var err error
		if credential, err = s.svc.Credential(ctx); err != nil {
			s.errorFor(w, err)
			return
		}
	}

	posting, err := s.importer.Import(ctx, req.URL, credential, req.Extract)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	fields, err := s.svc.Form().Update(ctx, func(current *types.FormFields) error {
		posting.Apply(current)
		return nil
	})
	if err != nil {
		s.errorFor(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, ImportJobResponse{
		Fields:    fields,
		Platform:  posting.Platform,
		Extracted: posting.Extracted,
	})
}

// handleGetCredential reports whether an API key is configured
func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	configured, err := s.svc.CredentialConfigured(r.Context())
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, CredentialStatus{Configured: configured})
}

// handlePutCredential stores a new API key
func (s *Server) handlePutCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorFor(w, err)
		return
	}
	if err := s.svc.SetCredential(r.Context(), req.APIKey); err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, CredentialStatus{Configured: true})
}

// handleDeleteCredential removes the stored API key
func (s *Server) handleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Form().ClearCredential(r.Context()); err != nil {
		s.errorFor(w, err)
		return
	}
	s.handleGetCredential(w, r)
}

// parseMode reads the {mode} path value, writing a 400 when it is unknown
func (s *Server) parseMode(w http.ResponseWriter, r *http.Request) (types.Mode, bool) {
	mode, err := types.ParseMode(r.PathValue("mode"))
	if err != nil {
		s.errorFor(w, &ErrValidation{Field: "mode", Message: err.Error()})
		return "", false
	}
	return mode, true
}

// handleGenerate starts a background generation and returns the InFlight slot
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.parseMode(w, r)
	if !ok {
		return
	}

	result, err := s.svc.Start(r.Context(), mode)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusAccepted, result)
}

// handleListResults returns every result slot
func (s *Server) handleListResults(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.svc.Results())
}

// handleGetResult returns one result slot
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.parseMode(w, r)
	if !ok {
		return
	}
	result, err := s.svc.Result(mode)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleClearResult returns a settled slot to Idle
func (s *Server) handleClearResult(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.parseMode(w, r)
	if !ok {
		return
	}
	result, err := s.svc.Clear(mode)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleDownload sends the generated text as a plain-text attachment
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	mode, ok := s.parseMode(w, r)
	if !ok {
		return
	}
	result, err := s.svc.Result(mode)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if result.Output == nil {
		s.errorFor(w, &ErrNotFound{Resource: mode.Label() + " output"})
		return
	}
	fields, err := s.svc.Form().Fields(r.Context())
	if err != nil {
		s.errorFor(w, err)
		return
	}

	name := export.FileName(mode, fields, s.now())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, result.Output.Text); err != nil {
		log.Printf("[server] failed to write download: %v", err)
		return
	}
	s.svc.Notifier().Notify(assistant.Notification{Kind: assistant.KindSuccess, Message: assistant.MsgFileDownloaded, Mode: mode})
}

// handleListHistory returns recent successful generations, newest first
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := db.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errorFor(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := s.svc.History().ListGenerations(r.Context(), limit)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if records == nil {
		records = []types.GenerationRecord{}
	}
	s.jsonResponse(w, http.StatusOK, records)
}

// handleGetHistory returns one past generation
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorFor(w, &ErrValidation{Field: "id", Message: "invalid generation ID format"})
		return
	}
	rec, err := s.svc.History().GetGeneration(r.Context(), id)
	if err != nil {
		s.errorFor(w, err)
		return
	}
	if rec == nil {
		s.errorFor(w, &ErrNotFound{Resource: "generation"})
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleEvents streams notifications and result changes until the client disconnects
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	events, unsubscribe := s.events.Subscribe()
	defer unsubscribe()

	for _, result := range s.svc.Results() {
		if err := sse.WriteEvent(EventResult, result); err != nil {
			return
		}
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteEvent(ev.Name, ev.Data); err != nil {
				log.Printf("[sse] error writing event: %v", err)
				return
			}
		}
	}
}
