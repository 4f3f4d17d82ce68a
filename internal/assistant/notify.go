package assistant

import (
	"log"
	"sync"

	"github.com/jonathan/cv-assistant/internal/types"
)

// NotificationKind is the tone of a user-facing message.
type NotificationKind string

// Notification kinds
const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
)

// User-facing messages
const (
	MsgConfigureCredential = "Please configure your API key first"
	MsgFillRequiredFields  = "Please fill in all required fields"
	MsgInvalidCredential   = "Please enter a valid API key"
	MsgCredentialSaved     = "API key saved successfully"
	MsgFileDownloaded      = "File downloaded"
)

// Notification is a short, transient message for the user.
type Notification struct {
	Kind    NotificationKind `json:"type"`
	Message string           `json:"message"`
	Mode    types.Mode       `json:"mode,omitempty"`
}

// Notifier receives user-facing messages and result slot changes.
// Implementations must not block.
type Notifier interface {
	Notify(n Notification)
	ResultChanged(result types.GenerationResult)
}

// LogNotifier writes notifications to the standard logger.
type LogNotifier struct{}

// Notify logs n
func (LogNotifier) Notify(n Notification) {
	log.Printf("[notify] %s: %s", n.Kind, n.Message)
}

// ResultChanged logs the new slot state
func (LogNotifier) ResultChanged(result types.GenerationResult) {
	if result.Err != "" {
		log.Printf("[generate] %s %s: %s (%s)", result.Mode, result.State, result.Err, result.Reason)
		return
	}
	log.Printf("[generate] %s %s", result.Mode, result.State)
}

// MultiNotifier fans out to several notifiers.
type MultiNotifier struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

// NewMultiNotifier returns a notifier that forwards to each of ns
func NewMultiNotifier(ns ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: ns}
}

// Add appends a notifier
func (m *MultiNotifier) Add(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifiers = append(m.notifiers, n)
}

// Notify forwards n
func (m *MultiNotifier) Notify(n Notification) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, notifier := range m.notifiers {
		notifier.Notify(n)
	}
}

// ResultChanged forwards result
func (m *MultiNotifier) ResultChanged(result types.GenerationResult) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, notifier := range m.notifiers {
		notifier.ResultChanged(result)
	}
}

// ClearedMessage is the confirmation shown after an output is cleared.
func ClearedMessage(mode types.Mode) string {
	if mode == types.ModeResumeUpdate {
		return "CV cleared"
	}
	return "Cover letter cleared"
}
