//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationResult_Lifecycle(t *testing.T) {
	r := NewGenerationResult(ModeCoverLetter)
	assert.Equal(t, StateIdle, r.State)
	assert.False(t, r.Loading())

	require.NoError(t, r.Start())
	assert.True(t, r.Loading())

	out := &GeneratedText{Text: "Dear team", GeneratedAt: time.Now()}
	require.NoError(t, r.Settle(out, nil, ""))
	assert.Equal(t, StateSettled, r.State)
	assert.Equal(t, "Dear team", r.Output.Text)
	assert.Empty(t, r.Err)

	// Re-invocation overwrites the previous outcome
	require.NoError(t, r.Start())
	assert.Nil(t, r.Output)
	require.NoError(t, r.Settle(nil, errors.New("bad key"), "provider_error"))
	assert.Nil(t, r.Output)
	assert.Equal(t, "bad key", r.Err)
	assert.Equal(t, "provider_error", r.Reason)
}

func TestGenerationResult_InvalidTransitions(t *testing.T) {
	r := NewGenerationResult(ModeResumeUpdate)

	var transErr *TransitionError
	assert.ErrorAs(t, r.Settle(nil, nil, ""), &transErr)
	assert.Equal(t, StateIdle, transErr.From)

	require.NoError(t, r.Start())
	assert.ErrorAs(t, r.Start(), &transErr)
	assert.ErrorAs(t, r.Reset(), &transErr)
}

func TestGenerationResult_Reset(t *testing.T) {
	r := NewGenerationResult(ModeResumeUpdate)
	require.NoError(t, r.Start())
	require.NoError(t, r.Settle(&GeneratedText{Text: "cv"}, nil, ""))

	require.NoError(t, r.Reset())
	assert.Equal(t, NewGenerationResult(ModeResumeUpdate), r)
}
