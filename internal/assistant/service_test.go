package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/cv-assistant/internal/db"
	"github.com/jonathan/cv-assistant/internal/llm"
	"github.com/jonathan/cv-assistant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)

// fakeClient answers per prompt prefix and can block until released.
type fakeClient struct {
	mu          sync.Mutex
	calls       []string
	credentials []string
	text        string
	err         error
	release     chan struct{}
	started     chan struct{}
}

func (f *fakeClient) Generate(ctx context.Context, credential, prompt string, params llm.GenerationParams) (*types.GeneratedText, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.credentials = append(f.credentials, credential)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, &llm.TransportError{Message: "canceled", Cause: ctx.Err()}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &types.GeneratedText{Text: f.text, GeneratedAt: fixedTime}, nil
}

func (f *fakeClient) ExtractJSON(context.Context, string, string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeClient) Model() string { return "gemini-test" }
func (f *fakeClient) Close() error  { return nil }

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
	changes       []types.GenerationResult
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recordingNotifier) ResultChanged(result types.GenerationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, result)
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notifications))
	for _, n := range r.notifications {
		out = append(out, n.Message)
	}
	return out
}

type recordingRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingRecorder) ObserveGeneration(_ string, success bool, reason string, _ int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		reason = "ok"
	}
	r.reasons = append(r.reasons, reason)
}

var completeFields = types.FormFields{
	CVContent:       "Jane Doe\nhttps://jane.dev",
	CompanyName:     "Acme Corp",
	PositionTitle:   "Backend Engineer",
	JobRequirements: "Go, Postgres",
	JobDescription:  "Build APIs",
}

type fixture struct {
	svc      *Service
	store    *db.MemoryStore
	client   *fakeClient
	notifier *recordingNotifier
	recorder *recordingRecorder
}

func newFixture(t *testing.T, client *fakeClient, credential string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemoryStore()
	form := db.NewFormStore(store)
	require.NoError(t, form.SetFields(ctx, completeFields))
	if credential != "" {
		require.NoError(t, form.SetCredential(ctx, credential))
	}

	notifier := &recordingNotifier{}
	recorder := &recordingRecorder{}
	svc := NewService(Options{
		Store:    store,
		Client:   client,
		Notifier: notifier,
		Recorder: recorder,
		Tokens:   llm.NewTokenCounter(),
		Clock:    func() time.Time { return fixedTime },
	})
	return &fixture{svc: svc, store: store, client: client, notifier: notifier, recorder: recorder}
}

func TestNewService_SlotsStartIdle(t *testing.T) {
	f := newFixture(t, &fakeClient{}, "key")

	results := f.svc.Results()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, types.StateIdle, r.State)
		assert.Nil(t, r.Output)
	}
}

func TestGenerate_Success(t *testing.T) {
	f := newFixture(t, &fakeClient{text: "Dear Hiring Manager"}, "key")

	result, err := f.svc.Generate(context.Background(), types.ModeCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, types.StateSettled, result.State)
	require.NotNil(t, result.Output)
	assert.Equal(t, "Dear Hiring Manager", result.Output.Text)
	assert.Equal(t, fixedTime, result.Output.GeneratedAt)

	require.Equal(t, 1, f.client.callCount())
	assert.Equal(t, "key", f.client.credentials[0])
	assert.Contains(t, f.client.calls[0], completeFields.CVContent)

	// The other mode is unaffected
	other, err := f.svc.Result(types.ModeResumeUpdate)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, other.State)

	// InFlight then Settled were broadcast
	require.Len(t, f.notifier.changes, 2)
	assert.Equal(t, types.StateInFlight, f.notifier.changes[0].State)
	assert.Equal(t, types.StateSettled, f.notifier.changes[1].State)

	records, err := f.store.ListGenerations(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Corp", records[0].CompanyName)
	assert.Equal(t, "gemini-test", records[0].Model)
	assert.Positive(t, records[0].PromptTokens)

	assert.Equal(t, []string{"ok"}, f.recorder.reasons)
}

func TestGenerate_ProviderErrorSettlesWithMessage(t *testing.T) {
	f := newFixture(t, &fakeClient{err: &llm.ProviderError{StatusCode: 403, Message: "bad key"}}, "key")

	result, err := f.svc.Generate(context.Background(), types.ModeResumeUpdate)
	require.Error(t, err)
	var providerErr *llm.ProviderError
	assert.ErrorAs(t, err, &providerErr)

	assert.Equal(t, types.StateSettled, result.State)
	assert.Nil(t, result.Output)
	assert.Equal(t, "bad key", result.Err)
	assert.Equal(t, llm.ReasonProviderError, result.Reason)

	records, err := f.store.ListGenerations(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records, "failures are not recorded in history")
	assert.Equal(t, []string{llm.ReasonProviderError}, f.recorder.reasons)
}

func TestGenerate_MissingCredential(t *testing.T) {
	f := newFixture(t, &fakeClient{text: "x"}, "")

	result, err := f.svc.Generate(context.Background(), types.ModeCoverLetter)
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
	assert.Zero(t, f.client.callCount())
	assert.Contains(t, f.notifier.messages(), MsgConfigureCredential)

	slot, err := f.svc.Result(types.ModeCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, slot.State, "slot is untouched")
	assert.Equal(t, types.GenerationResult{}, result)
}

func TestGenerate_FallbackCredential(t *testing.T) {
	client := &fakeClient{text: "x"}
	f := newFixture(t, client, "")
	f.svc.fallbackCredential = "env-key"

	_, err := f.svc.Generate(context.Background(), types.ModeCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, []string{"env-key"}, client.credentials)

	// A stored key wins over the fallback
	require.NoError(t, f.svc.Form().SetCredential(context.Background(), "stored-key"))
	_, err = f.svc.Generate(context.Background(), types.ModeCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, "stored-key", client.credentials[1])
}

func TestGenerate_MissingFields(t *testing.T) {
	f := newFixture(t, &fakeClient{text: "x"}, "key")
	require.NoError(t, f.svc.Form().SetField(context.Background(), types.FieldJobDescription, "   "))

	_, err := f.svc.Generate(context.Background(), types.ModeCoverLetter)
	var fieldsErr *types.FieldsError
	require.ErrorAs(t, err, &fieldsErr)
	assert.Equal(t, []string{types.FieldJobDescription}, fieldsErr.Missing)
	assert.Zero(t, f.client.callCount())
	assert.Contains(t, f.notifier.messages(), MsgFillRequiredFields)
	assert.Equal(t, []string{llm.ReasonInvalidInput}, f.recorder.reasons)
}

func TestGenerate_UnknownMode(t *testing.T) {
	f := newFixture(t, &fakeClient{}, "key")

	_, err := f.svc.Generate(context.Background(), types.Mode("poem"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestStart_RejectsSecondRequestWhileInFlight(t *testing.T) {
	client := &fakeClient{text: "letter", release: make(chan struct{}), started: make(chan struct{}, 1)}
	f := newFixture(t, client, "key")
	ctx := context.Background()

	first, err := f.svc.Start(ctx, types.ModeCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, types.StateInFlight, first.State)
	assert.True(t, first.Loading())
	<-client.started

	_, err = f.svc.Start(ctx, types.ModeCoverLetter)
	assert.ErrorIs(t, err, ErrInFlight)

	_, err = f.svc.Clear(types.ModeCoverLetter)
	assert.ErrorIs(t, err, ErrInFlight, "an in-flight slot cannot be cleared")

	close(client.release)
	f.svc.Wait()

	settled, err := f.svc.Result(types.ModeCoverLetter)
	require.NoError(t, err)
	assert.Equal(t, types.StateSettled, settled.State)
	assert.Equal(t, "letter", settled.Output.Text)
	assert.Equal(t, 1, client.callCount())
}

func TestStart_SurvivesCallerCancellation(t *testing.T) {
	client := &fakeClient{text: "letter", release: make(chan struct{}), started: make(chan struct{}, 1)}
	f := newFixture(t, client, "key")

	ctx, cancel := context.WithCancel(context.Background())
	_, err := f.svc.Start(ctx, types.ModeResumeUpdate)
	require.NoError(t, err)
	<-client.started
	cancel()

	close(client.release)
	f.svc.Wait()

	settled, err := f.svc.Result(types.ModeResumeUpdate)
	require.NoError(t, err)
	assert.Equal(t, types.StateSettled, settled.State)
	assert.Empty(t, settled.Err, "the request was not canceled")
}

func TestGenerate_ReinvocationReplacesOutcome(t *testing.T) {
	client := &fakeClient{err: &llm.TransportError{Message: "connection refused"}}
	f := newFixture(t, client, "key")
	ctx := context.Background()

	failed, err := f.svc.Generate(ctx, types.ModeCoverLetter)
	require.Error(t, err)
	assert.Equal(t, llm.ReasonTransportError, failed.Reason)

	client.err = nil
	client.text = "second try"
	ok, err := f.svc.Generate(ctx, types.ModeCoverLetter)
	require.NoError(t, err)
	assert.Empty(t, ok.Err)
	assert.Empty(t, ok.Reason)
	assert.Equal(t, "second try", ok.Output.Text)
}

func TestClear(t *testing.T) {
	f := newFixture(t, &fakeClient{text: "cv"}, "key")
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, types.ModeResumeUpdate)
	require.NoError(t, err)

	cleared, err := f.svc.Clear(types.ModeResumeUpdate)
	require.NoError(t, err)
	assert.Equal(t, types.StateIdle, cleared.State)
	assert.Nil(t, cleared.Output)
	assert.Contains(t, f.notifier.messages(), "CV cleared")
}

func TestGenerateAll(t *testing.T) {
	client := &fakeClient{text: "out"}
	f := newFixture(t, client, "key")

	results, err := f.svc.GenerateAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.ModeCoverLetter, results[0].Mode)
	assert.Equal(t, types.ModeResumeUpdate, results[1].Mode)
	for _, r := range results {
		assert.Equal(t, types.StateSettled, r.State)
	}
	assert.Equal(t, 2, client.callCount())

	// The two prompts are the two templates
	joined := strings.Join(client.calls, "\n")
	assert.Contains(t, joined, completeFields.JobRequirements)
}

func TestGenerateAll_JoinsErrors(t *testing.T) {
	client := &fakeClient{err: &llm.ProviderError{StatusCode: 429, Message: "quota exceeded"}}
	f := newFixture(t, client, "key")

	results, err := f.svc.GenerateAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cover Letter: quota exceeded")
	assert.Contains(t, err.Error(), "Updated CV: quota exceeded")
	for _, r := range results {
		assert.Equal(t, "quota exceeded", r.Err)
	}
}

func TestSetCredential(t *testing.T) {
	f := newFixture(t, &fakeClient{}, "")
	ctx := context.Background()

	configured, err := f.svc.CredentialConfigured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)

	assert.ErrorIs(t, f.svc.SetCredential(ctx, "   "), ErrInvalidCredential)
	assert.Contains(t, f.notifier.messages(), MsgInvalidCredential)

	require.NoError(t, f.svc.SetCredential(ctx, " AIza "))
	assert.Contains(t, f.notifier.messages(), MsgCredentialSaved)

	configured, err = f.svc.CredentialConfigured(ctx)
	require.NoError(t, err)
	assert.True(t, configured)
}

func TestPrompt(t *testing.T) {
	f := newFixture(t, &fakeClient{}, "key")

	prompt, tokens, err := f.svc.Prompt(context.Background(), types.ModeResumeUpdate)
	require.NoError(t, err)
	assert.Contains(t, prompt, completeFields.CVContent)
	assert.Positive(t, tokens)
}
