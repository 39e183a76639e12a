package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSwapTransition(t *testing.T) {
	cases := []struct {
		from    SwapStatus
		to      SwapStatus
		allowed bool
	}{
		{SwapStatusPending, SwapStatusCollected, true},
		{SwapStatusPending, SwapStatusAbandoned, true},
		{SwapStatusPending, SwapStatusCompleted, false},
		{SwapStatusCollected, SwapStatusReconciliationRequired, true},
		{SwapStatusCollected, SwapStatusAbandoned, false},
		{SwapStatusReconciliationRequired, SwapStatusReconciliationRequired, true},
		{SwapStatusReconciliationRequired, SwapStatusCompensated, true},
		{SwapStatusDeliveryUnknown, SwapStatusCompleted, true},
		{SwapStatusDeliveryUnknown, SwapStatusCompensated, false},
		{SwapStatusCompleted, SwapStatusReconciliationRequired, false},
		{SwapStatusCompensated, SwapStatusCompleted, false},
	}

	for _, tc := range cases {
		err := ValidateSwapTransition(tc.from, tc.to)
		if tc.allowed {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
	}
}

func TestSwapIntentTransitionRecordsStepAndError(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	intent := SwapIntent{ID: "s-1", Status: SwapStatusCollected}

	require.NoError(t, intent.Transition(SwapStatusReconciliationRequired, SwapStepDeliver, errors.New("receiver not registered"), now))
	assert.Equal(t, SwapStatusReconciliationRequired, intent.Status)
	assert.Equal(t, SwapStepDeliver, intent.LastStep)
	require.NotNil(t, intent.LastError)
	assert.Equal(t, "receiver not registered", *intent.LastError)
	assert.Equal(t, now, intent.UpdatedAt)

	require.NoError(t, intent.Transition(SwapStatusCompleted, SwapStepDeliver, nil, now))
	assert.Nil(t, intent.LastError)

	err := intent.Transition(SwapStatusPending, SwapStepIntent, nil, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, SwapStatusCompleted, intent.Status)
}

func TestSwapStatusPredicates(t *testing.T) {
	assert.True(t, SwapStatusCompleted.IsTerminal())
	assert.False(t, SwapStatusReconciliationRequired.IsTerminal())
	assert.True(t, SwapStatusRefundUnknown.IsUnknown())
	assert.False(t, SwapStatusCollected.IsUnknown())
	assert.False(t, SwapStatus("LOST").Valid())
}

func TestRemoteOutcomePrefersUnknown(t *testing.T) {
	wfErr := RemoteOutcome(FailureTransferFailed, "ft_transfer", errors.Join(ErrRemoteUnknown, errors.New("deadline exceeded")))
	assert.Equal(t, FailureRemoteUnknown, wfErr.Kind)

	wfErr = RemoteOutcome(FailureTransferFailed, "ft_transfer", errors.New("rejected"))
	assert.Equal(t, FailureTransferFailed, wfErr.Kind)
	assert.Equal(t, "ft_transfer", wfErr.Step)
}
