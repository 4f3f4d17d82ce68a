//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GeneratedText is the successful output of one generation call.
type GeneratedText struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// GenerationState is the lifecycle position of a per-mode result slot.
type GenerationState string

const (
	// StateIdle means no output has been requested yet
	StateIdle GenerationState = "idle"
	// StateInFlight means a request is outstanding
	StateInFlight GenerationState = "in_flight"
	// StateSettled means the last request finished with output or an error
	StateSettled GenerationState = "settled"
)

// GenerationResult is the per-mode slot read by the presentation layer.
// Idle -> InFlight -> Settled, and Settled -> InFlight on re-invocation.
type GenerationResult struct {
	Mode   Mode            `json:"mode"`
	State  GenerationState `json:"state"`
	Output *GeneratedText  `json:"data,omitempty"`
	Err    string          `json:"error,omitempty"`
	Reason string          `json:"reason,omitempty"`
}

// TransitionError reports an illegal state change.
type TransitionError struct {
	From GenerationState
	To   GenerationState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid generation state transition: %s -> %s", e.From, e.To)
}

// NewGenerationResult returns an Idle slot for mode.
func NewGenerationResult(mode Mode) GenerationResult {
	return GenerationResult{Mode: mode, State: StateIdle}
}

// Loading reports whether a request is outstanding.
func (r *GenerationResult) Loading() bool {
	return r.State == StateInFlight
}

// Start moves the slot to InFlight and drops the previous outcome.
func (r *GenerationResult) Start() error {
	if r.State == StateInFlight {
		return &TransitionError{From: r.State, To: StateInFlight}
	}
	r.State = StateInFlight
	r.Output = nil
	r.Err = ""
	r.Reason = ""
	return nil
}

// Settle records the outcome of the outstanding request.
// Exactly one of out and err is expected to be set; reason classifies err.
func (r *GenerationResult) Settle(out *GeneratedText, err error, reason string) error {
	if r.State != StateInFlight {
		return &TransitionError{From: r.State, To: StateSettled}
	}
	r.State = StateSettled
	r.Output = out
	if err != nil {
		r.Output = nil
		r.Err = err.Error()
		r.Reason = reason
	}
	return nil
}

// Reset clears a settled slot back to Idle.
func (r *GenerationResult) Reset() error {
	if r.State == StateInFlight {
		return &TransitionError{From: r.State, To: StateIdle}
	}
	*r = NewGenerationResult(r.Mode)
	return nil
}

// GenerationRecord is a persisted successful generation.
type GenerationRecord struct {
	ID            uuid.UUID `json:"id"`
	Mode          Mode      `json:"mode"`
	CompanyName   string    `json:"company_name"`
	PositionTitle string    `json:"position_title"`
	Model         string    `json:"model"`
	PromptTokens  int       `json:"prompt_tokens"`
	Text          string    `json:"text"`
	GeneratedAt   time.Time `json:"generated_at"`
}
