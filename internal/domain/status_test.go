package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusAccepted, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusAccepted, StatusRejected, false},
		{StatusAccepted, StatusPending, false},
		{StatusRejected, StatusAccepted, false},
		{StatusRejected, StatusPending, false},
		{StatusCompleted, StatusAccepted, false},
		{StatusCompleted, StatusPending, false},
		{"", StatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to),
			"CanTransition(%s, %s)", tt.from, tt.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAccepted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
}

func TestTransitionTo_Lifecycle(t *testing.T) {
	o := &Order{Status: StatusPending}

	require.NoError(t, o.TransitionTo(StatusAccepted))
	assert.Equal(t, StatusAccepted, o.Status)

	require.NoError(t, o.TransitionTo(StatusCompleted))
	assert.Equal(t, StatusCompleted, o.Status)
}

func TestTransitionTo_Invalid(t *testing.T) {
	o := &Order{Status: StatusPending}

	err := o.TransitionTo(StatusCompleted)
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, KindInvalidStatusTransition, e.Kind)
	// Status untouched on a refused transition.
	assert.Equal(t, StatusPending, o.Status)
}
