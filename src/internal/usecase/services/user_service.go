package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/commons"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
	"github.com/api-sage/business-credits/src/internal/metrics"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

const (
	StepRegisterUser = "storage_deposit"
	StepReward       = "ft_transfer"
	StepReadBalance  = "ft_balance_of"
)

var errAmountExceedsSupply = errors.New("amount exceeds the token total supply")

// Verify that UserService implements the service_interfaces.UserService interface
var _ service_interfaces.UserService = (*UserService)(nil)

type UserService struct {
	ledger   domain.LedgerGateway
	locks    *IdentityLocks
	settings Settings
	metrics  *metrics.Metrics
}

func NewUserService(ledger domain.LedgerGateway, locks *IdentityLocks, settings Settings, m *metrics.Metrics) *UserService {
	return &UserService{
		ledger:   ledger,
		locks:    locks,
		settings: settings,
		metrics:  m,
	}
}

// CreateUser creates the user's sub-account. Unlike business accounts it gets
// no explicit initial balance.
func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (commons.Response[models.CreateUserResponse], error) {
	logger.Info("user service create user request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("user service create user validation failed", err, nil)
		return invalidRequest[models.CreateUserResponse](err)
	}

	account := domain.DeriveAccountName(req.User, s.settings.RootAccount.String())
	unlock := s.locks.Lock(account)
	defer unlock()

	err := callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.CreateAccount(ctx, account, s.settings.SignerPublicKey, "")
	})
	if err != nil {
		wfErr := domain.RemoteOutcome(domain.FailureAccountExists, StepCreateAccount, err)
		s.metrics.RecordWorkflowOutcome("create_user", string(wfErr.Kind))
		logger.Error("user service create user failed", err, logger.Fields{"account": account})
		return commons.WorkflowErrorResponse[models.CreateUserResponse]("Account already exists", wfErr), wfErr
	}

	s.metrics.RecordWorkflowOutcome("create_user", outcomeSuccess)
	logger.Info("user service create user success", logger.Fields{"account": account})

	return commons.SuccessResponse("user created successfully", models.CreateUserResponse{
		User:    account.String(),
		Created: true,
	}), nil
}

// RegisterUser pays storage for the user on the business token contract so
// the user can hold its credits.
func (s *UserService) RegisterUser(ctx context.Context, req models.RegisterUserRequest) (commons.Response[models.RegisterUserResponse], error) {
	logger.Info("user service register user request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("user service register user validation failed", err, nil)
		return invalidRequest[models.RegisterUserResponse](err)
	}

	business := s.settings.businessAccount(req.BusinessName)
	user := domain.Identity(req.User)
	unlock := s.locks.Lock(business, user)
	defer unlock()

	err := callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeChange(ctx, domain.ChangeCall{
			Signer:   business,
			Contract: business,
			Method:   domain.MethodStorageDeposit,
			Args:     map[string]any{"account_id": user},
			Gas:      s.settings.CallGas,
			Deposit:  s.settings.StorageDepositAmount,
		})
	})
	if err != nil {
		wfErr := domain.RemoteOutcome(domain.FailureOnboardingFailed, StepRegisterUser, err)
		s.metrics.RecordWorkflowOutcome("register_user", string(wfErr.Kind))
		logger.Error("user service register user failed", err, logger.Fields{"business": business, "user": user})
		return commons.WorkflowErrorResponse[models.RegisterUserResponse]("User onboarding failed", wfErr), wfErr
	}

	s.metrics.RecordWorkflowOutcome("register_user", outcomeSuccess)
	logger.Info("user service register user success", logger.Fields{"business": business, "user": user})

	return commons.SuccessResponse("user registered successfully", models.RegisterUserResponse{
		BusinessName: req.BusinessName,
		User:         req.User,
	}), nil
}

// RewardUser transfers credits from the business treasury to the user. The
// amount is checked against the live total supply first.
func (s *UserService) RewardUser(ctx context.Context, req models.RewardUserRequest) (commons.Response[models.RewardUserResponse], error) {
	logger.Info("user service reward user request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if !s.settings.RewardsEnabled {
		return featureDisabled[models.RewardUserResponse]("rewards")
	}

	if err := req.Validate(); err != nil {
		logger.Error("user service reward user validation failed", err, nil)
		return invalidRequest[models.RewardUserResponse](err)
	}

	amount, err := domain.ParseTokenAmount("amount", req.Amount.String())
	if err != nil {
		return invalidRequest[models.RewardUserResponse](err)
	}

	business := s.settings.businessAccount(req.BusinessName)
	user := domain.Identity(req.User)
	unlock := s.locks.Lock(business, user)
	defer unlock()

	var totalSupply string
	err = callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeView(ctx, business, domain.MethodTotalSupply, map[string]any{}, &totalSupply)
	})
	if err != nil {
		return s.rewardFailed(domain.RemoteOutcome(domain.FailureTransferFailed, StepReadTotalSupply, err), business, user)
	}

	supply, err := decimal.NewFromString(totalSupply)
	if err != nil {
		return s.rewardFailed(domain.NewWorkflowError(domain.FailureTransferFailed, StepReadTotalSupply, fmt.Errorf("parse total supply %q: %w", totalSupply, err)), business, user)
	}
	if amount.GreaterThan(supply) {
		return invalidRequest[models.RewardUserResponse](errAmountExceedsSupply)
	}

	err = callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeChange(ctx, domain.ChangeCall{
			Signer:   business,
			Contract: business,
			Method:   domain.MethodTransfer,
			Args: map[string]any{
				"receiver_id": user,
				"amount":      amount.String(),
			},
			Gas:     s.settings.CallGas,
			Deposit: transferDeposit,
		})
	})
	if err != nil {
		return s.rewardFailed(domain.RemoteOutcome(domain.FailureTransferFailed, StepReward, err), business, user)
	}

	s.metrics.RecordWorkflowOutcome("reward", outcomeSuccess)
	logger.Info("user service reward user success", logger.Fields{
		"business": business,
		"user":     user,
		"amount":   amount.String(),
	})

	return commons.SuccessResponse("user rewarded successfully", models.RewardUserResponse{
		BusinessName: req.BusinessName,
		User:         req.User,
		Amount:       amount.String(),
	}), nil
}

// GetBalance reads the user's balance from the business token contract.
func (s *UserService) GetBalance(ctx context.Context, req models.GetBalanceRequest) (commons.Response[models.BalanceResponse], error) {
	logger.Info("user service get balance request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return invalidRequest[models.BalanceResponse](err)
	}

	business := s.settings.businessAccount(req.BusinessName)

	var balance string
	err := callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeView(ctx, business, domain.MethodBalanceOf, map[string]any{"account_id": req.User}, &balance)
	})
	if err != nil {
		wfErr := domain.RemoteOutcome(domain.FailureBalanceUnavailable, StepReadBalance, err)
		logger.Error("user service get balance failed", err, logger.Fields{"business": business, "user": req.User})
		return commons.WorkflowErrorResponse[models.BalanceResponse]("Balance retrieval failed", wfErr), wfErr
	}

	return commons.SuccessResponse("balance fetched successfully", models.BalanceResponse{
		BusinessName: req.BusinessName,
		User:         req.User,
		Balance:      balance,
	}), nil
}

func (s *UserService) rewardFailed(wfErr *domain.WorkflowError, business domain.Identity, user domain.Identity) (commons.Response[models.RewardUserResponse], error) {
	s.metrics.RecordWorkflowOutcome("reward", string(wfErr.Kind))
	logger.Error("user service reward user failed", wfErr.Err, logger.Fields{
		"business": business,
		"user":     user,
		"step":     wfErr.Step,
	})
	return commons.WorkflowErrorResponse[models.RewardUserResponse]("Token transfer failed", wfErr), wfErr
}
