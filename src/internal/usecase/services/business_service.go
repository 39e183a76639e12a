package services

import (
	"context"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/commons"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
	"github.com/api-sage/business-credits/src/internal/metrics"
	"github.com/api-sage/business-credits/src/internal/usecase/service_interfaces"
)

// Provisioning steps, in execution order.
const (
	StepCreateAccount       = "create_account"
	StepDeployContract      = "deploy_contract"
	StepInitToken           = "init_token"
	StepRegisterMainAccount = "register_main_account"
	StepReadTotalSupply     = "ft_total_supply"
)

// Verify that BusinessService implements the service_interfaces.BusinessService interface
var _ service_interfaces.BusinessService = (*BusinessService)(nil)

type BusinessService struct {
	ledger   domain.LedgerGateway
	locks    *IdentityLocks
	settings Settings
	metrics  *metrics.Metrics
}

func NewBusinessService(ledger domain.LedgerGateway, locks *IdentityLocks, settings Settings, m *metrics.Metrics) *BusinessService {
	return &BusinessService{
		ledger:   ledger,
		locks:    locks,
		settings: settings,
		metrics:  m,
	}
}

// CreateBusiness provisions a business sub-account with its own token. Steps
// run strictly in order and the first failure stops the workflow; earlier
// steps are not undone.
func (s *BusinessService) CreateBusiness(ctx context.Context, req models.CreateBusinessRequest) (commons.Response[models.CreateBusinessResponse], error) {
	logger.Info("business service create business request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("business service create business validation failed", err, nil)
		return invalidRequest[models.CreateBusinessResponse](err)
	}

	symbol, err := domain.DeriveSymbol(req.BusinessName)
	if err != nil {
		return invalidRequest[models.CreateBusinessResponse](err)
	}

	account := s.settings.businessAccount(req.BusinessName)
	unlock := s.locks.Lock(account)
	defer unlock()

	fields := logger.Fields{"businessName": req.BusinessName, "account": account}

	err = callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.CreateAccount(ctx, account, s.settings.SignerPublicKey, s.settings.BusinessInitialBalance)
	})
	if err != nil {
		return s.fail(domain.RemoteOutcome(domain.FailureAccountExists, StepCreateAccount, err), "Account already exists", fields)
	}

	err = callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.DeployContract(ctx, account, s.settings.TokenCode)
	})
	if err != nil {
		logger.Warn("business left partially provisioned", fields)
		return s.fail(domain.RemoteOutcome(domain.FailureDeploymentFailed, StepDeployContract, err), "Contract deployment failed", fields)
	}

	err = callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeChange(ctx, domain.ChangeCall{
			Signer:   account,
			Contract: account,
			Method:   domain.MethodInit,
			Args: map[string]any{
				"owner_id":     account,
				"total_supply": s.settings.TokenTotalSupply,
				"metadata": domain.TokenMetadata{
					Spec:     s.settings.TokenSpec,
					Name:     req.BusinessName + " Credits",
					Symbol:   symbol,
					Decimals: s.settings.TokenDecimals,
				},
			},
			Gas: s.settings.CallGas,
		})
	})
	if err != nil {
		logger.Warn("business left partially provisioned", fields)
		return s.fail(domain.RemoteOutcome(domain.FailureTokenInitFailed, StepInitToken, err), "Token creation failed", fields)
	}

	err = callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeChange(ctx, domain.ChangeCall{
			Signer:   account,
			Contract: account,
			Method:   domain.MethodStorageDeposit,
			Args:     map[string]any{"account_id": s.settings.RootAccount},
			Gas:      s.settings.CallGas,
			Deposit:  s.settings.StorageDepositAmount,
		})
	})
	if err != nil {
		logger.Warn("business left partially provisioned", fields)
		return s.fail(domain.RemoteOutcome(domain.FailureMainAccountRegistrationFailed, StepRegisterMainAccount, err), "Main account registration failed", fields)
	}

	s.metrics.RecordWorkflowOutcome("provision", outcomeSuccess)
	logger.Info("business service create business success", logger.Fields{
		"businessName": req.BusinessName,
		"account":      account,
		"symbol":       symbol,
	})

	return commons.SuccessResponse("business created successfully", models.CreateBusinessResponse{
		BusinessName: req.BusinessName,
		SymbolName:   symbol,
	}), nil
}

// GetBusiness reads the business token from the ledger; nothing is cached.
func (s *BusinessService) GetBusiness(ctx context.Context, req models.GetBusinessRequest) (commons.Response[models.BusinessInfoResponse], error) {
	logger.Info("business service get business request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return invalidRequest[models.BusinessInfoResponse](err)
	}

	symbol, err := domain.DeriveSymbol(req.BusinessName)
	if err != nil {
		return invalidRequest[models.BusinessInfoResponse](err)
	}

	account := s.settings.businessAccount(req.BusinessName)

	var totalSupply string
	err = callRemote(ctx, s.settings.CallTimeout, func(ctx context.Context) error {
		return s.ledger.InvokeView(ctx, account, domain.MethodTotalSupply, map[string]any{}, &totalSupply)
	})
	if err != nil {
		wfErr := domain.RemoteOutcome(domain.FailureBusinessUnavailable, StepReadTotalSupply, err)
		logger.Error("business service get business failed", err, logger.Fields{"account": account})
		return commons.WorkflowErrorResponse[models.BusinessInfoResponse]("Business lookup failed", wfErr), wfErr
	}

	business := domain.Business{
		Name:        req.BusinessName,
		Account:     account,
		Symbol:      symbol,
		TotalSupply: totalSupply,
	}
	return commons.SuccessResponse("business fetched successfully", mapBusinessToResponse(business)), nil
}

func mapBusinessToResponse(business domain.Business) models.BusinessInfoResponse {
	return models.BusinessInfoResponse{
		BusinessName: business.Name,
		Account:      business.Account.String(),
		SymbolName:   business.Symbol,
		TotalSupply:  business.TotalSupply,
	}
}

func (s *BusinessService) fail(wfErr *domain.WorkflowError, message string, fields logger.Fields) (commons.Response[models.CreateBusinessResponse], error) {
	s.metrics.RecordWorkflowOutcome("provision", string(wfErr.Kind))
	fields["step"] = wfErr.Step
	fields["kind"] = wfErr.Kind
	logger.Error("business service create business failed", wfErr.Err, fields)
	return commons.WorkflowErrorResponse[models.CreateBusinessResponse](message, wfErr), wfErr
}
