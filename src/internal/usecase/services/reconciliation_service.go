package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/commons"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
	"github.com/api-sage/business-credits/src/internal/metrics"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

const sweepBatchSize = 100

// Verify that ReconciliationService implements the service_interfaces.ReconciliationService interface
var _ service_interfaces.ReconciliationService = (*ReconciliationService)(nil)

// SweepOptions bound the automatic delivery retries.
type SweepOptions struct {
	MaxAttempts int
	Concurrency int
}

type ReconciliationService struct {
	saga    *swapSaga
	options SweepOptions
}

func NewReconciliationService(
	ledger domain.LedgerGateway,
	intents repo_interfaces.SwapIntentRepository,
	locks *IdentityLocks,
	settings Settings,
	options SweepOptions,
	m *metrics.Metrics,
) *ReconciliationService {
	if options.MaxAttempts <= 0 {
		options.MaxAttempts = 3
	}
	if options.Concurrency <= 0 {
		options.Concurrency = 1
	}
	return &ReconciliationService{
		saga:    newSwapSaga(ledger, intents, locks, settings, m),
		options: options,
	}
}

func (s *ReconciliationService) GetSwap(ctx context.Context, id string) (commons.Response[models.SwapIntentResponse], error) {
	logger.Info("reconciliation service get swap request", logger.Fields{"swapId": id})

	intent, err := s.load(ctx, id)
	if err != nil {
		return s.fail(err, "Swap lookup failed")
	}

	return commons.SuccessResponse("swap fetched successfully", models.NewSwapIntentResponse(intent)), nil
}

func (s *ReconciliationService) ListSwaps(ctx context.Context, req models.ListSwapsRequest) (commons.Response[[]models.SwapIntentResponse], error) {
	logger.Info("reconciliation service list swaps request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("reconciliation service list swaps validation failed", err, nil)
		return invalidRequest[[]models.SwapIntentResponse](err)
	}

	intents, err := s.saga.intents.List(ctx, req.SwapStatus(), req.EffectiveLimit())
	if err != nil {
		wfErr := &domain.WorkflowError{Kind: domain.FailureIntentLogUnavailable, Step: "list", Err: err}
		logger.Error("reconciliation service list swaps failed", err, nil)
		return commons.WorkflowErrorResponse[[]models.SwapIntentResponse]("Swap lookup failed", wfErr), wfErr
	}

	resp := make([]models.SwapIntentResponse, 0, len(intents))
	for _, intent := range intents {
		resp = append(resp, models.NewSwapIntentResponse(intent))
	}

	logger.Info("reconciliation service list swaps success", logger.Fields{
		"count":  len(resp),
		"status": req.SwapStatus(),
	})

	return commons.SuccessResponse("swaps fetched successfully", resp), nil
}

// RetryDelivery re-attempts the delivery step of a RECONCILIATION_REQUIRED swap.
func (s *ReconciliationService) RetryDelivery(ctx context.Context, id string) (commons.Response[models.SwapIntentResponse], error) {
	logger.Info("reconciliation service retry delivery request", logger.Fields{"swapId": id})

	intent, err := s.retryDelivery(ctx, id)
	if err != nil {
		return s.fail(err, "Token transfer to user failed")
	}

	return commons.SuccessResponse("swap delivered successfully", models.NewSwapIntentResponse(intent)), nil
}

// Refund returns the collected fromBusiness credits to the user instead of
// delivering the toBusiness credits.
func (s *ReconciliationService) Refund(ctx context.Context, id string) (commons.Response[models.SwapIntentResponse], error) {
	logger.Info("reconciliation service refund request", logger.Fields{"swapId": id})

	intent, err := s.withPending(ctx, id, func(intent *domain.SwapIntent) error {
		return s.saga.refund(ctx, intent)
	})
	if err != nil {
		return s.fail(err, "Refund failed")
	}

	s.saga.metrics.RecordWorkflowOutcome("swap_refund", outcomeSuccess)
	return commons.SuccessResponse("swap refunded successfully", models.NewSwapIntentResponse(intent)), nil
}

// Resolve records the operator's finding for a swap whose last remote call has
// an unknown outcome.
func (s *ReconciliationService) Resolve(ctx context.Context, id string, req models.ResolveSwapRequest) (commons.Response[models.SwapIntentResponse], error) {
	logger.Info("reconciliation service resolve request", logger.Fields{
		"swapId":  id,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("reconciliation service resolve validation failed", err, nil)
		return invalidRequest[models.SwapIntentResponse](err)
	}
	landed := *req.Landed

	intent, err := s.load(ctx, id)
	if err != nil {
		return s.fail(err, "Swap lookup failed")
	}

	unlock := s.saga.lockParticipants(intent)
	defer unlock()

	// Re-read under the lock; another request may have moved it.
	intent, err = s.load(ctx, id)
	if err != nil {
		return s.fail(err, "Swap lookup failed")
	}

	next, ok := resolvedStatus(intent.Status, landed)
	if !ok {
		err := fmt.Errorf("%w: %s has no unknown outcome to resolve", domain.ErrInvalidTransition, intent.Status)
		wfErr := &domain.WorkflowError{Kind: domain.FailureInvalidTransition, Step: domain.SwapStepResolved, Reference: intent.ID, Err: err}
		return s.fail(wfErr, "Swap cannot be resolved")
	}

	if err := s.saga.advance(ctx, &intent, next, domain.SwapStepResolved, nil); err != nil {
		return s.fail(err, "Swap could not be recorded")
	}

	logger.Info("reconciliation service resolve success", logger.Fields{
		"swapId": intent.ID,
		"landed": landed,
		"status": intent.Status,
	})

	return commons.SuccessResponse("swap resolved successfully", models.NewSwapIntentResponse(intent)), nil
}

// Sweep retries delivery for RECONCILIATION_REQUIRED swaps that have not used
// up their attempts and returns how many completed. Swaps with an unknown
// outcome are left for an operator.
func (s *ReconciliationService) Sweep(ctx context.Context) (int, error) {
	intents, err := s.saga.intents.List(ctx, domain.SwapStatusReconciliationRequired, sweepBatchSize)
	if err != nil {
		logger.Error("reconciliation sweep list failed", err, nil)
		return 0, err
	}

	var completed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.options.Concurrency)

	for _, intent := range intents {
		if intent.Attempts >= s.options.MaxAttempts {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		id := intent.ID
		g.Go(func() error {
			if _, err := s.retryDelivery(ctx, id); err != nil {
				logger.Warn("reconciliation sweep retry failed", logger.Fields{
					"swapId": id,
					"error":  err.Error(),
				})
				return nil
			}
			completed.Add(1)
			return nil
		})
	}

	_ = g.Wait()

	logger.Info("reconciliation sweep finished", logger.Fields{
		"candidates": len(intents),
		"completed":  completed.Load(),
	})
	return int(completed.Load()), ctx.Err()
}

func (s *ReconciliationService) retryDelivery(ctx context.Context, id string) (domain.SwapIntent, error) {
	intent, err := s.withPending(ctx, id, func(intent *domain.SwapIntent) error {
		return s.saga.deliver(ctx, intent)
	})
	if err != nil {
		return intent, err
	}
	s.saga.metrics.RecordWorkflowOutcome("swap_retry", outcomeSuccess)
	return intent, nil
}

// withPending runs step on the intent while its participants are locked,
// provided it is still RECONCILIATION_REQUIRED.
func (s *ReconciliationService) withPending(ctx context.Context, id string, step func(intent *domain.SwapIntent) error) (domain.SwapIntent, error) {
	intent, err := s.load(ctx, id)
	if err != nil {
		return domain.SwapIntent{}, err
	}

	unlock := s.saga.lockParticipants(intent)
	defer unlock()

	intent, err = s.load(ctx, id)
	if err != nil {
		return domain.SwapIntent{}, err
	}

	if intent.Status != domain.SwapStatusReconciliationRequired {
		err := fmt.Errorf("%w: swap is %s, not %s", domain.ErrInvalidTransition, intent.Status, domain.SwapStatusReconciliationRequired)
		return intent, &domain.WorkflowError{Kind: domain.FailureInvalidTransition, Step: intent.LastStep, Reference: intent.ID, Err: err}
	}

	if err := step(&intent); err != nil {
		return intent, err
	}
	return intent, nil
}

func (s *ReconciliationService) load(ctx context.Context, id string) (domain.SwapIntent, error) {
	if id == "" {
		return domain.SwapIntent{}, &domain.WorkflowError{Kind: domain.FailureInvalidRequest, Step: "validate", Err: errors.New("id is required")}
	}
	// Swap ids are UUIDs; anything else cannot name a logged swap.
	if _, err := uuid.Parse(id); err != nil {
		return domain.SwapIntent{}, &domain.WorkflowError{Kind: domain.FailureSwapNotFound, Step: "lookup", Reference: id, Err: fmt.Errorf("%w: malformed swap id", domain.ErrRecordNotFound)}
	}

	intent, err := s.saga.intents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.SwapIntent{}, &domain.WorkflowError{Kind: domain.FailureSwapNotFound, Step: "lookup", Reference: id, Err: err}
		}
		return domain.SwapIntent{}, &domain.WorkflowError{Kind: domain.FailureIntentLogUnavailable, Step: "lookup", Reference: id, Err: err}
	}
	return intent, nil
}

func (s *ReconciliationService) fail(err error, message string) (commons.Response[models.SwapIntentResponse], error) {
	logger.Error("reconciliation service request failed", err, nil)
	if wfErr, ok := domain.AsWorkflowError(err); ok && wfErr.Kind == domain.FailureSwapNotFound {
		message = "Swap not found"
	}
	return commons.WorkflowErrorResponse[models.SwapIntentResponse](message, err), err
}

func resolvedStatus(current domain.SwapStatus, landed bool) (domain.SwapStatus, bool) {
	if !current.IsUnknown() {
		return "", false
	}
	switch current {
	case domain.SwapStatusCollectionUnknown:
		if landed {
			return domain.SwapStatusReconciliationRequired, true
		}
		return domain.SwapStatusAbandoned, true
	case domain.SwapStatusDeliveryUnknown:
		if landed {
			return domain.SwapStatusCompleted, true
		}
		return domain.SwapStatusReconciliationRequired, true
	case domain.SwapStatusRefundUnknown:
		if landed {
			return domain.SwapStatusCompensated, true
		}
		return domain.SwapStatusReconciliationRequired, true
	default:
		return "", false
	}
}
