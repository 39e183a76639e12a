package services

import (
	"context"
	"errors"
	"time"

	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
	"github.com/api-sage/business-credits/src/internal/metrics"
)

// swapSaga holds the remote steps of a swap and the intent log bookkeeping
// around them. Every state change is written to the log before the next
// remote step runs.
type swapSaga struct {
	ledger   domain.LedgerGateway
	intents  repo_interfaces.SwapIntentRepository
	locks    *IdentityLocks
	settings Settings
	metrics  *metrics.Metrics
	now      func() time.Time
}

func newSwapSaga(
	ledger domain.LedgerGateway,
	intents repo_interfaces.SwapIntentRepository,
	locks *IdentityLocks,
	settings Settings,
	m *metrics.Metrics,
) *swapSaga {
	return &swapSaga{
		ledger:   ledger,
		intents:  intents,
		locks:    locks,
		settings: settings,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// lockParticipants holds every tenant identity a swap mutates.
func (s *swapSaga) lockParticipants(intent domain.SwapIntent) func() {
	return s.locks.Lock(
		intent.UserAccount,
		s.settings.businessAccount(intent.FromBusiness),
		s.settings.businessAccount(intent.ToBusiness),
	)
}

// advance validates and persists a transition. On a log write failure the
// returned error is an IntentLogUnavailable workflow error and the caller must
// stop issuing remote calls.
func (s *swapSaga) advance(ctx context.Context, intent *domain.SwapIntent, next domain.SwapStatus, step string, cause error) error {
	expected := intent.Status
	candidate := *intent
	if err := candidate.Transition(next, step, cause, s.now()); err != nil {
		return &domain.WorkflowError{Kind: domain.FailureInvalidTransition, Step: step, Reference: intent.ID, Err: err}
	}

	saved, err := s.intents.UpdateStatus(detached(ctx), candidate, expected)
	if err != nil {
		logger.Error("swap intent log update failed", err, logger.Fields{
			"swapId":       intent.ID,
			"from":         expected,
			"to":           next,
			"step":         step,
			"fromBusiness": intent.FromBusiness,
			"toBusiness":   intent.ToBusiness,
			"fromAmount":   intent.FromAmount,
			"toAmount":     intent.ToAmount,
			"userAccount":  intent.UserAccount,
		})
		kind := domain.FailureIntentLogUnavailable
		if errors.Is(err, domain.ErrStaleIntent) {
			kind = domain.FailureInvalidTransition
		}
		return &domain.WorkflowError{Kind: kind, Step: step, Recoverable: true, Reference: intent.ID, Err: err}
	}

	*intent = saved
	s.metrics.RecordSwapTransition(string(next))
	logger.Info("swap intent transitioned", logger.Fields{
		"swapId": intent.ID,
		"from":   expected,
		"to":     next,
		"step":   step,
	})
	return nil
}

func (s *swapSaga) fundGas(ctx context.Context, intent domain.SwapIntent) error {
	return callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.SendValue(ctx, s.settings.RootAccount, intent.UserAccount, s.settings.GasReserveAmount)
	})
}

// collect moves the user's fromBusiness credits into platform custody.
func (s *swapSaga) collect(ctx context.Context, intent domain.SwapIntent) error {
	return callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeChange(ctx, domain.ChangeCall{
			Signer:   intent.UserAccount,
			Contract: s.settings.businessAccount(intent.FromBusiness),
			Method:   domain.MethodTransfer,
			Args: map[string]any{
				"receiver_id": s.settings.RootAccount,
				"amount":      intent.FromAmount,
			},
			Gas:     s.settings.CallGas,
			Deposit: transferDeposit,
		})
	})
}

// deliverCredits pays the user toAmount of toBusiness credits out of the
// root account's float, or out of the business treasury when configured.
func (s *swapSaga) deliverCredits(ctx context.Context, intent domain.SwapIntent) error {
	contract := s.settings.businessAccount(intent.ToBusiness)
	signer := s.settings.RootAccount
	if s.settings.PayoutFromBusiness {
		signer = contract
	}

	return callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeChange(ctx, domain.ChangeCall{
			Signer:   signer,
			Contract: contract,
			Method:   domain.MethodTransfer,
			Args: map[string]any{
				"receiver_id": intent.UserAccount,
				"amount":      intent.ToAmount,
			},
			Gas:     s.settings.CallGas,
			Deposit: transferDeposit,
		})
	})
}

// refundCredits returns the collected fromBusiness credits from custody.
func (s *swapSaga) refundCredits(ctx context.Context, intent domain.SwapIntent) error {
	return callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeChange(ctx, domain.ChangeCall{
			Signer:   s.settings.RootAccount,
			Contract: s.settings.businessAccount(intent.FromBusiness),
			Method:   domain.MethodTransfer,
			Args: map[string]any{
				"receiver_id": intent.UserAccount,
				"amount":      intent.FromAmount,
			},
			Gas:     s.settings.CallGas,
			Deposit: transferDeposit,
		})
	})
}

// deliver runs the delivery step for an intent whose credits are in custody
// and records the outcome. It returns a workflow error when the user was not paid.
func (s *swapSaga) deliver(ctx context.Context, intent *domain.SwapIntent) error {
	intent.Attempts++
	err := s.deliverCredits(ctx, *intent)

	switch {
	case err == nil:
		if logErr := s.advance(ctx, intent, domain.SwapStatusCompleted, domain.SwapStepDeliver, nil); logErr != nil {
			return logErr
		}
		return nil
	case errors.Is(err, domain.ErrRemoteUnknown):
		if logErr := s.advance(ctx, intent, domain.SwapStatusDeliveryUnknown, domain.SwapStepDeliver, err); logErr != nil {
			return logErr
		}
		return &domain.WorkflowError{Kind: domain.FailureRemoteUnknown, Step: domain.SwapStepDeliver, Recoverable: true, Reference: intent.ID, Err: err}
	default:
		if logErr := s.advance(ctx, intent, domain.SwapStatusReconciliationRequired, domain.SwapStepDeliver, err); logErr != nil {
			return logErr
		}
		s.metrics.RecordWorkflowOutcome("swap_delivery", string(domain.FailureTransferToUserFailed))
		logger.Error("swap requires reconciliation: platform holds user credits", err, logger.Fields{
			"swapId":       intent.ID,
			"userAccount":  intent.UserAccount,
			"fromBusiness": intent.FromBusiness,
			"fromAmount":   intent.FromAmount,
			"toBusiness":   intent.ToBusiness,
			"toAmount":     intent.ToAmount,
			"attempts":     intent.Attempts,
		})
		return &domain.WorkflowError{Kind: domain.FailureTransferToUserFailed, Step: domain.SwapStepDeliver, Recoverable: true, Reference: intent.ID, Err: err}
	}
}

// refund runs the compensating transfer for an intent whose delivery failed.
func (s *swapSaga) refund(ctx context.Context, intent *domain.SwapIntent) error {
	err := s.refundCredits(ctx, *intent)

	switch {
	case err == nil:
		return s.advance(ctx, intent, domain.SwapStatusCompensated, domain.SwapStepRefund, nil)
	case errors.Is(err, domain.ErrRemoteUnknown):
		if logErr := s.advance(ctx, intent, domain.SwapStatusRefundUnknown, domain.SwapStepRefund, err); logErr != nil {
			return logErr
		}
		return &domain.WorkflowError{Kind: domain.FailureRemoteUnknown, Step: domain.SwapStepRefund, Recoverable: true, Reference: intent.ID, Err: err}
	default:
		if logErr := s.advance(ctx, intent, domain.SwapStatusReconciliationRequired, domain.SwapStepRefund, err); logErr != nil {
			return logErr
		}
		return &domain.WorkflowError{Kind: domain.FailureRefundFailed, Step: domain.SwapStepRefund, Recoverable: true, Reference: intent.ID, Err: err}
	}
}
