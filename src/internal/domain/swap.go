package domain

import (
	"fmt"
	"time"
)

type SwapStatus string

const (
	SwapStatusPending                SwapStatus = "PENDING"
	SwapStatusCollected              SwapStatus = "COLLECTED"
	SwapStatusCompleted              SwapStatus = "COMPLETED"
	SwapStatusAbandoned              SwapStatus = "ABANDONED"
	SwapStatusCollectionUnknown      SwapStatus = "COLLECTION_UNKNOWN"
	SwapStatusReconciliationRequired SwapStatus = "RECONCILIATION_REQUIRED"
	SwapStatusDeliveryUnknown        SwapStatus = "DELIVERY_UNKNOWN"
	SwapStatusCompensated            SwapStatus = "COMPENSATED"
	SwapStatusRefundUnknown          SwapStatus = "REFUND_UNKNOWN"
)

// Swap steps as recorded on the intent and reported in failures.
const (
	SwapStepIntent   = "intent"
	SwapStepGas      = "fund_gas"
	SwapStepCollect  = "collect"
	SwapStepDeliver  = "deliver"
	SwapStepRefund   = "refund"
	SwapStepResolved = "resolve"
)

var swapTransitions = map[SwapStatus][]SwapStatus{
	SwapStatusPending: {
		SwapStatusCollected,
		SwapStatusAbandoned,
		SwapStatusCollectionUnknown,
	},
	SwapStatusCollected: {
		SwapStatusCompleted,
		SwapStatusReconciliationRequired,
		SwapStatusDeliveryUnknown,
	},
	SwapStatusReconciliationRequired: {
		SwapStatusCompleted,
		SwapStatusReconciliationRequired,
		SwapStatusDeliveryUnknown,
		SwapStatusCompensated,
		SwapStatusRefundUnknown,
	},
	SwapStatusCollectionUnknown: {
		SwapStatusReconciliationRequired,
		SwapStatusAbandoned,
	},
	SwapStatusDeliveryUnknown: {
		SwapStatusCompleted,
		SwapStatusReconciliationRequired,
	},
	SwapStatusRefundUnknown: {
		SwapStatusCompensated,
		SwapStatusReconciliationRequired,
	},
}

// ValidateSwapTransition reports ErrInvalidTransition for moves the swap
// state machine does not allow.
func ValidateSwapTransition(current SwapStatus, next SwapStatus) error {
	for _, allowed := range swapTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, next)
}

func (s SwapStatus) Valid() bool {
	switch s {
	case SwapStatusPending, SwapStatusCollected, SwapStatusCompleted, SwapStatusAbandoned,
		SwapStatusCollectionUnknown, SwapStatusReconciliationRequired, SwapStatusDeliveryUnknown,
		SwapStatusCompensated, SwapStatusRefundUnknown:
		return true
	default:
		return false
	}
}

func (s SwapStatus) IsTerminal() bool {
	return s == SwapStatusCompleted || s == SwapStatusAbandoned || s == SwapStatusCompensated
}

// IsUnknown reports whether the last remote call of the swap has an unobserved
// outcome and needs an operator decision.
func (s SwapStatus) IsUnknown() bool {
	return s == SwapStatusCollectionUnknown || s == SwapStatusDeliveryUnknown || s == SwapStatusRefundUnknown
}

// SwapIntent is the durable record of a cross-business swap. The platform
// owes UserAccount either ToAmount of ToBusiness credits or a refund of
// FromAmount of FromBusiness credits while the intent is RECONCILIATION_REQUIRED.
type SwapIntent struct {
	ID           string
	FromBusiness string
	ToBusiness   string
	FromAmount   string
	ToAmount     string
	UserAccount  Identity
	Status       SwapStatus
	LastStep     string
	LastError    *string
	Attempts     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Transition moves the intent to next, recording the step and error that caused it.
func (s *SwapIntent) Transition(next SwapStatus, step string, cause error, now time.Time) error {
	if err := ValidateSwapTransition(s.Status, next); err != nil {
		return err
	}

	s.Status = next
	s.LastStep = step
	if cause != nil {
		msg := cause.Error()
		s.LastError = &msg
	} else {
		s.LastError = nil
	}
	s.UpdatedAt = now
	return nil
}
