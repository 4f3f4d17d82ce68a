// Package assistant is the presentation core: it owns one result slot per mode,
// drives generation from the stored form and reports progress to a Notifier.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/cv-assistant/internal/db"
	"github.com/jonathan/cv-assistant/internal/llm"
	"github.com/jonathan/cv-assistant/internal/metrics"
	"github.com/jonathan/cv-assistant/internal/prompts"
	"github.com/jonathan/cv-assistant/internal/types"
	"golang.org/x/sync/errgroup"
)

// ErrInFlight is returned when a mode is asked to generate while its previous
// request is still outstanding.
var ErrInFlight = errors.New("a generation for this mode is already in progress")

// ErrInvalidCredential is returned when a blank API key is submitted.
var ErrInvalidCredential = errors.New(MsgInvalidCredential)

// Options configures a Service. Store and Client are required.
type Options struct {
	Store    db.Store
	Client   llm.Client
	Notifier Notifier
	Recorder metrics.Recorder
	Tokens   *llm.TokenCounter
	Clock    func() time.Time
	// FallbackCredential is used when the store holds no API key
	FallbackCredential string
}

// Service coordinates form state, generation and result slots.
type Service struct {
	form               *db.FormStore
	history            db.History
	client             llm.Client
	notifier           Notifier
	recorder           metrics.Recorder
	tokens             *llm.TokenCounter
	now                func() time.Time
	fallbackCredential string

	mu      sync.Mutex
	results map[types.Mode]*types.GenerationResult
	wg      sync.WaitGroup
}

// NewService creates a Service with every slot Idle.
func NewService(opts Options) *Service {
	s := &Service{
		form:               db.NewFormStore(opts.Store),
		history:            opts.Store,
		client:             opts.Client,
		notifier:           opts.Notifier,
		recorder:           opts.Recorder,
		tokens:             opts.Tokens,
		now:                opts.Clock,
		fallbackCredential: strings.TrimSpace(opts.FallbackCredential),
		results:            make(map[types.Mode]*types.GenerationResult),
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{}
	}
	if s.recorder == nil {
		s.recorder = metrics.Nop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, mode := range types.Modes() {
		r := types.NewGenerationResult(mode)
		s.results[mode] = &r
	}
	return s
}

// Form returns the persisted form state.
func (s *Service) Form() *db.FormStore {
	return s.form
}

// History returns the generation history.
func (s *Service) History() db.History {
	return s.history
}

// Notifier returns the notifier progress is reported to.
func (s *Service) Notifier() Notifier {
	return s.notifier
}

// Model returns the configured model name.
func (s *Service) Model() string {
	return s.client.Model()
}

// SetCredential stores a trimmed API key and confirms it to the user.
func (s *Service) SetCredential(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		s.notifier.Notify(Notification{Kind: KindError, Message: MsgInvalidCredential})
		return ErrInvalidCredential
	}
	if err := s.form.SetCredential(ctx, key); err != nil {
		return err
	}
	s.notifier.Notify(Notification{Kind: KindSuccess, Message: MsgCredentialSaved})
	return nil
}

// CredentialConfigured reports whether a stored or fallback API key is available.
func (s *Service) CredentialConfigured(ctx context.Context) (bool, error) {
	credential, err := s.Credential(ctx)
	return credential != "", err
}

// Credential returns the stored API key, falling back to the configured default.
func (s *Service) Credential(ctx context.Context) (string, error) {
	stored, err := s.form.Credential(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	if stored = strings.TrimSpace(stored); stored != "" {
		return stored, nil
	}
	return s.fallbackCredential, nil
}

// Prompt builds the prompt for mode from the stored form and estimates its size.
func (s *Service) Prompt(ctx context.Context, mode types.Mode) (string, int, error) {
	fields, err := s.form.Fields(ctx)
	if err != nil {
		return "", 0, err
	}
	prompt := prompts.BuildPrompt(mode, fields)
	return prompt, s.tokens.CountTokens(prompt), nil
}

// Result returns a snapshot of mode's slot.
func (s *Service) Result(mode types.Mode) (types.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.results[mode]
	if !ok {
		return types.GenerationResult{}, fmt.Errorf("unknown mode %q", mode)
	}
	return *slot, nil
}

// Results returns snapshots of every slot in mode order.
func (s *Service) Results() []types.GenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.GenerationResult, 0, len(s.results))
	for _, mode := range types.Modes() {
		out = append(out, *s.results[mode])
	}
	return out
}

// Clear returns a settled slot to Idle.
func (s *Service) Clear(mode types.Mode) (types.GenerationResult, error) {
	s.mu.Lock()
	slot, ok := s.results[mode]
	if !ok {
		s.mu.Unlock()
		return types.GenerationResult{}, fmt.Errorf("unknown mode %q", mode)
	}
	if err := slot.Reset(); err != nil {
		s.mu.Unlock()
		return *slot, ErrInFlight
	}
	snapshot := *slot
	s.mu.Unlock()

	s.notifier.ResultChanged(snapshot)
	s.notifier.Notify(Notification{Kind: KindSuccess, Message: ClearedMessage(mode), Mode: mode})
	return snapshot, nil
}

// job is a generation that has passed its preconditions and holds the InFlight slot.
type job struct {
	mode       types.Mode
	fields     types.FormFields
	credential string
}

// begin checks the form and credential, then moves mode's slot to InFlight.
// Precondition failures leave the slot untouched.
func (s *Service) begin(ctx context.Context, mode types.Mode) (*job, types.GenerationResult, error) {
	if _, ok := s.results[mode]; !ok {
		return nil, types.GenerationResult{}, fmt.Errorf("unknown mode %q", mode)
	}

	fields, err := s.form.Fields(ctx)
	if err != nil {
		return nil, types.GenerationResult{}, err
	}
	if err := fields.Validate(); err != nil {
		s.notifier.Notify(Notification{Kind: KindError, Message: MsgFillRequiredFields, Mode: mode})
		s.recorder.ObserveGeneration(string(mode), false, llm.ReasonInvalidInput, 0, 0)
		return nil, types.GenerationResult{}, err
	}

	credential, err := s.Credential(ctx)
	if err != nil {
		return nil, types.GenerationResult{}, err
	}
	if credential == "" {
		s.notifier.Notify(Notification{Kind: KindError, Message: MsgConfigureCredential, Mode: mode})
		s.recorder.ObserveGeneration(string(mode), false, llm.ReasonMissingCredential, 0, 0)
		return nil, types.GenerationResult{}, llm.ErrMissingCredential
	}

	s.mu.Lock()
	slot := s.results[mode]
	if err := slot.Start(); err != nil {
		snapshot := *slot
		s.mu.Unlock()
		return nil, snapshot, ErrInFlight
	}
	snapshot := *slot
	s.mu.Unlock()

	s.notifier.ResultChanged(snapshot)
	return &job{mode: mode, fields: fields, credential: credential}, snapshot, nil
}

// run performs the generation call for j and settles its slot.
func (s *Service) run(ctx context.Context, j *job) (types.GenerationResult, error) {
	prompt := prompts.BuildPrompt(j.mode, j.fields)
	promptTokens := s.tokens.CountTokens(prompt)

	start := s.now()
	out, genErr := s.client.Generate(ctx, j.credential, prompt, llm.DefaultGenerationParams())
	if genErr == nil && out == nil {
		genErr = llm.ErrMalformedResponse
	}
	duration := s.now().Sub(start)
	reason := llm.Reason(genErr)

	s.mu.Lock()
	slot := s.results[j.mode]
	if err := slot.Settle(out, genErr, reason); err != nil {
		// Only begin moves a slot to InFlight, and only run settles it
		s.mu.Unlock()
		return types.GenerationResult{}, fmt.Errorf("failed to settle %s: %w", j.mode, err)
	}
	snapshot := *slot
	s.mu.Unlock()

	s.recorder.ObserveGeneration(string(j.mode), genErr == nil, reason, promptTokens, duration)
	s.notifier.ResultChanged(snapshot)

	if genErr != nil {
		return snapshot, genErr
	}

	rec := &types.GenerationRecord{
		Mode:          j.mode,
		CompanyName:   j.fields.CompanyName,
		PositionTitle: j.fields.PositionTitle,
		Model:         s.client.Model(),
		PromptTokens:  promptTokens,
		Text:          out.Text,
		GeneratedAt:   out.GeneratedAt,
	}
	if err := s.history.SaveGeneration(context.WithoutCancel(ctx), rec); err != nil {
		log.Printf("[generate] failed to record history for %s: %v", j.mode, err)
	}
	return snapshot, nil
}

// Generate runs one generation for mode and returns the settled slot.
// A generation failure is both recorded in the slot and returned.
func (s *Service) Generate(ctx context.Context, mode types.Mode) (types.GenerationResult, error) {
	j, snapshot, err := s.begin(ctx, mode)
	if err != nil {
		return snapshot, err
	}
	return s.run(ctx, j)
}

// Start moves mode to InFlight and generates in the background, returning the
// InFlight slot. The background call uses a context detached from ctx's
// cancellation: once started, a generation always settles.
func (s *Service) Start(ctx context.Context, mode types.Mode) (types.GenerationResult, error) {
	j, snapshot, err := s.begin(ctx, mode)
	if err != nil {
		return snapshot, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.run(context.WithoutCancel(ctx), j)
	}()
	return snapshot, nil
}

// Wait blocks until every background generation has settled.
func (s *Service) Wait() {
	s.wg.Wait()
}

// GenerateAll runs every mode concurrently. Each mode settles independently;
// the returned error joins the per-mode failures.
func (s *Service) GenerateAll(ctx context.Context) ([]types.GenerationResult, error) {
	modes := types.Modes()
	results := make([]types.GenerationResult, len(modes))
	errs := make([]error, len(modes))

	var g errgroup.Group
	for i, mode := range modes {
		g.Go(func() error {
			results[i], errs[i] = s.Generate(ctx, mode)
			if errs[i] != nil {
				errs[i] = fmt.Errorf("%s: %w", mode.Label(), errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
