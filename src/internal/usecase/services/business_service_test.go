package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/adapter/ledger/sandbox"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/usecase/services"
)

func TestCreateBusinessProvisionsInOrder(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.business.CreateBusiness(context.Background(), models.CreateBusinessRequest{BusinessName: "acme"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, models.CreateBusinessResponse{BusinessName: "acme", SymbolName: "ACM"}, *resp.Data)

	calls := env.ledger.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, sandbox.OpCreateAccount, calls[0].Operation)
	assert.Equal(t, env.settings.BusinessInitialBalance, calls[0].Amount)
	assert.Equal(t, sandbox.OpDeployContract, calls[1].Operation)
	assert.Equal(t, domain.MethodInit, calls[2].Method)
	assert.Equal(t, domain.MethodStorageDeposit, calls[3].Method)
	assert.Equal(t, rootAccount, calls[3].Args["account_id"])
	for _, call := range calls {
		assert.Equal(t, acmeAccount, call.Contract)
	}

	metadata := env.ledger.TokenMetadata(acmeAccount)
	assert.Equal(t, "ACM", metadata["symbol"])
	assert.Equal(t, "acme Credits", metadata["name"])
	assert.Equal(t, "100000", env.ledger.TokenBalance(acmeAccount, acmeAccount))
}

func TestCreateBusinessRerunFailsAtAccountCreation(t *testing.T) {
	env := newTestEnv(t)
	env.createBusiness(t, "acme")
	before := len(env.ledger.Calls())

	resp, err := env.business.CreateBusiness(context.Background(), models.CreateBusinessRequest{BusinessName: "acme"})
	wfErr := requireWorkflowError(t, err, domain.FailureAccountExists)
	assert.Equal(t, services.StepCreateAccount, wfErr.Step)
	assert.Equal(t, "Account already exists", resp.Message)
	assert.Len(t, env.ledger.Calls(), before+1)
}

func TestCreateBusinessStopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name      string
		failOn    func(sandbox.Call) bool
		kind      domain.FailureKind
		message   string
		callCount int
	}{
		{
			name:      "deploy",
			failOn:    func(c sandbox.Call) bool { return c.Operation == sandbox.OpDeployContract },
			kind:      domain.FailureDeploymentFailed,
			message:   "Contract deployment failed",
			callCount: 2,
		},
		{
			name:      "init",
			failOn:    func(c sandbox.Call) bool { return c.Method == domain.MethodInit },
			kind:      domain.FailureTokenInitFailed,
			message:   "Token creation failed",
			callCount: 3,
		},
		{
			name:      "register main account",
			failOn:    func(c sandbox.Call) bool { return c.Method == domain.MethodStorageDeposit },
			kind:      domain.FailureMainAccountRegistrationFailed,
			message:   "Main account registration failed",
			callCount: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.ledger.FailOn(tt.failOn, errors.New("execution failed"))

			resp, err := env.business.CreateBusiness(context.Background(), models.CreateBusinessRequest{BusinessName: "acme"})
			requireWorkflowError(t, err, tt.kind)
			assert.Equal(t, tt.message, resp.Message)
			assert.Equal(t, []string{"execution failed"}, resp.Errors)
			assert.False(t, resp.Failure.Recoverable)
			assert.Len(t, env.ledger.Calls(), tt.callCount)
		})
	}
}

func TestCreateBusinessRejectsShortName(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.business.CreateBusiness(context.Background(), models.CreateBusinessRequest{BusinessName: "ab"})
	requireWorkflowError(t, err, domain.FailureInvalidRequest)
	assert.False(t, resp.Success)
	assert.Empty(t, env.ledger.Calls())
}

func TestCreateBusinessReportsUnknownOutcomeOnTimeout(t *testing.T) {
	env := newTestEnv(t, func(s *services.Settings) { s.CallTimeout = 20 * time.Millisecond })
	env.ledger.StallOn(func(c sandbox.Call) bool { return c.Operation == sandbox.OpDeployContract })

	resp, err := env.business.CreateBusiness(context.Background(), models.CreateBusinessRequest{BusinessName: "acme"})
	wfErr := requireWorkflowError(t, err, domain.FailureRemoteUnknown)
	assert.Equal(t, services.StepDeployContract, wfErr.Step)
	assert.ErrorIs(t, err, domain.ErrRemoteUnknown)
	assert.Equal(t, domain.FailureRemoteUnknown, resp.Failure.Kind)
}

func TestGetBusinessReadsLiveSupply(t *testing.T) {
	env := newTestEnv(t)
	env.createBusiness(t, "acme")

	resp, err := env.business.GetBusiness(context.Background(), models.GetBusinessRequest{BusinessName: "acme"})
	require.NoError(t, err)
	assert.Equal(t, models.BusinessInfoResponse{
		BusinessName: "acme",
		Account:      acmeAccount.String(),
		SymbolName:   "ACM",
		TotalSupply:  "100000",
	}, *resp.Data)
}

func TestGetBusinessUnknownBusiness(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.business.GetBusiness(context.Background(), models.GetBusinessRequest{BusinessName: "initech"})
	requireWorkflowError(t, err, domain.FailureBusinessUnavailable)
	assert.Equal(t, "Business lookup failed", resp.Message)
}

func TestGetBusinessRejectsShortName(t *testing.T) {
	env := newTestEnv(t)
	before := len(env.ledger.Calls())

	resp, err := env.business.GetBusiness(context.Background(), models.GetBusinessRequest{BusinessName: "ab"})
	requireWorkflowError(t, err, domain.FailureInvalidRequest)
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Len(t, env.ledger.Calls(), before)
}
