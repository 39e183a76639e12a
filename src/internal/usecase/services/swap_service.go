package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/commons"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
	"github.com/api-sage/business-credits/src/internal/metrics"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

// Verify that SwapService implements the service_interfaces.SwapService interface
var _ service_interfaces.SwapService = (*SwapService)(nil)

type SwapService struct {
	saga  *swapSaga
	newID func() string
}

func NewSwapService(
	ledger domain.LedgerGateway,
	intents repo_interfaces.SwapIntentRepository,
	locks *IdentityLocks,
	settings Settings,
	m *metrics.Metrics,
) *SwapService {
	return &SwapService{
		saga:  newSwapSaga(ledger, intents, locks, settings, m),
		newID: uuid.NewString,
	}
}

// SwapCredits exchanges the user's fromBusiness credits for toBusiness credits
// at caller-supplied amounts. The intent is logged before any remote call;
// a failed delivery leaves it RECONCILIATION_REQUIRED for retry or refund.
func (s *SwapService) SwapCredits(ctx context.Context, req models.SwapCreditsRequest) (commons.Response[models.SwapCreditsResponse], error) {
	logger.Info("swap service swap credits request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if !s.saga.settings.SwapsEnabled {
		return featureDisabled[models.SwapCreditsResponse]("swaps")
	}

	if err := req.Validate(); err != nil {
		logger.Error("swap service swap credits validation failed", err, nil)
		return invalidRequest[models.SwapCreditsResponse](err)
	}

	// Amounts go to the ledger in canonical base-unit form ("5e1" becomes "50").
	fromAmount, err := domain.ParseTokenAmount("fromBusinessAmount", req.FromBusinessAmount.String())
	if err != nil {
		return invalidRequest[models.SwapCreditsResponse](err)
	}
	toAmount, err := domain.ParseTokenAmount("toBusinessAmount", req.ToBusinessAmount.String())
	if err != nil {
		return invalidRequest[models.SwapCreditsResponse](err)
	}

	intent := domain.SwapIntent{
		ID:           s.newID(),
		FromBusiness: req.FromBusiness,
		ToBusiness:   req.ToBusiness,
		FromAmount:   fromAmount.String(),
		ToAmount:     toAmount.String(),
		UserAccount:  domain.Identity(req.UserAccount),
		Status:       domain.SwapStatusPending,
		LastStep:     domain.SwapStepIntent,
	}

	unlock := s.saga.lockParticipants(intent)
	defer unlock()

	created, err := s.saga.intents.Create(detached(ctx), intent)
	if err != nil {
		wfErr := &domain.WorkflowError{Kind: domain.FailureIntentLogUnavailable, Step: domain.SwapStepIntent, Err: err}
		return s.fail(wfErr, "Swap could not be recorded")
	}
	intent = created
	s.saga.metrics.RecordSwapTransition(string(domain.SwapStatusPending))

	if err := s.saga.fundGas(ctx, intent); err != nil {
		wfErr := domain.RemoteOutcome(domain.FailureGasFundingFailed, domain.SwapStepGas, err)
		wfErr.Reference = intent.ID
		if logErr := s.saga.advance(ctx, &intent, domain.SwapStatusAbandoned, domain.SwapStepGas, err); logErr != nil {
			return s.fail(logErr, "Swap could not be recorded")
		}
		return s.fail(wfErr, "Gas funding failed")
	}

	if err := s.saga.collect(ctx, intent); err != nil {
		if errors.Is(err, domain.ErrRemoteUnknown) {
			if logErr := s.saga.advance(ctx, &intent, domain.SwapStatusCollectionUnknown, domain.SwapStepCollect, err); logErr != nil {
				return s.fail(logErr, "Swap could not be recorded")
			}
			wfErr := &domain.WorkflowError{Kind: domain.FailureRemoteUnknown, Step: domain.SwapStepCollect, Recoverable: true, Reference: intent.ID, Err: err}
			return s.fail(wfErr, "Token transfer to main account outcome unknown")
		}

		if logErr := s.saga.advance(ctx, &intent, domain.SwapStatusAbandoned, domain.SwapStepCollect, err); logErr != nil {
			return s.fail(logErr, "Swap could not be recorded")
		}
		wfErr := &domain.WorkflowError{Kind: domain.FailureTransferToMainFailed, Step: domain.SwapStepCollect, Reference: intent.ID, Err: err}
		return s.fail(wfErr, "Token transfer to main account failed")
	}

	if logErr := s.saga.advance(ctx, &intent, domain.SwapStatusCollected, domain.SwapStepCollect, nil); logErr != nil {
		return s.fail(logErr, "Swap could not be recorded")
	}

	if err := s.saga.deliver(ctx, &intent); err != nil {
		wfErr, _ := domain.AsWorkflowError(err)
		message := "Token transfer to user failed"
		if wfErr != nil && wfErr.Kind == domain.FailureRemoteUnknown {
			message = "Token transfer to user outcome unknown"
		}
		return s.fail(err, message)
	}

	s.saga.metrics.RecordWorkflowOutcome("swap", outcomeSuccess)
	logger.Info("swap service swap credits success", logger.Fields{
		"swapId":      intent.ID,
		"userAccount": intent.UserAccount,
	})

	return commons.SuccessResponse("credits swapped successfully", models.SwapCreditsResponse{
		FromBusiness:       req.FromBusiness,
		ToBusiness:         req.ToBusiness,
		FromBusinessAmount: intent.FromAmount,
		ToBusinessAmount:   intent.ToAmount,
		UserAccount:        req.UserAccount,
		Success:            true,
		SwapID:             intent.ID,
	}), nil
}

func (s *SwapService) fail(err error, message string) (commons.Response[models.SwapCreditsResponse], error) {
	outcome := "error"
	if wfErr, ok := domain.AsWorkflowError(err); ok {
		outcome = string(wfErr.Kind)
	}
	s.saga.metrics.RecordWorkflowOutcome("swap", outcome)
	logger.Error("swap service swap credits failed", err, nil)
	return commons.WorkflowErrorResponse[models.SwapCreditsResponse](message, err), err
}
