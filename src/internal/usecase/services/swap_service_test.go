package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/adapter/ledger/sandbox"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/memory"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/usecase/services"
)

// flakyIntentRepository fails Create or UpdateStatus on demand.
type flakyIntentRepository struct {
	*memory.SwapIntentRepository
	failCreate bool
	failUpdate atomic.Bool
}

func (r *flakyIntentRepository) Create(ctx context.Context, intent domain.SwapIntent) (domain.SwapIntent, error) {
	if r.failCreate {
		return domain.SwapIntent{}, errors.New("database is down")
	}
	return r.SwapIntentRepository.Create(ctx, intent)
}

func (r *flakyIntentRepository) UpdateStatus(ctx context.Context, intent domain.SwapIntent, expected domain.SwapStatus) (domain.SwapIntent, error) {
	if r.failUpdate.Load() {
		return domain.SwapIntent{}, errors.New("database is down")
	}
	return r.SwapIntentRepository.UpdateStatus(ctx, intent, expected)
}

func TestSwapCreditsSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedSwapParticipants(t, true)

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.True(t, resp.Data.Success)
	assert.Equal(t, "50", resp.Data.FromBusinessAmount)
	assert.Equal(t, "40", resp.Data.ToBusinessAmount)
	require.NotEmpty(t, resp.Data.SwapID)

	assert.Equal(t, "50", env.ledger.TokenBalance(acmeAccount, bobAccount))
	assert.Equal(t, "50", env.ledger.TokenBalance(acmeAccount, rootAccount))
	assert.Equal(t, "40", env.ledger.TokenBalance(globexAccount, bobAccount))
	assert.Equal(t, "60", env.ledger.TokenBalance(globexAccount, rootAccount))
	assert.Equal(t, "99900", env.ledger.TokenBalance(globexAccount, globexAccount))
	assert.Equal(t, env.settings.GasReserveAmount, env.ledger.NativeBalance(bobAccount))

	calls := env.ledger.CallsTo(globexAccount)
	delivery := calls[len(calls)-1]
	assert.Equal(t, domain.MethodTransfer, delivery.Method)
	assert.Equal(t, rootAccount, delivery.Signer)

	intent, err := env.intents.GetByID(context.Background(), resp.Data.SwapID)
	require.NoError(t, err)
	assert.Equal(t, domain.SwapStatusCompleted, intent.Status)
	assert.Equal(t, 1, intent.Attempts)
	assert.Nil(t, intent.LastError)
}

func TestSwapCreditsDeliveryFailureRequiresReconciliation(t *testing.T) {
	env := newTestEnv(t)
	env.seedSwapParticipants(t, false)

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	wfErr := requireWorkflowError(t, err, domain.FailureTransferToUserFailed)
	assert.Equal(t, domain.SwapStepDeliver, wfErr.Step)
	assert.True(t, wfErr.Recoverable)
	require.NotEmpty(t, wfErr.Reference)

	assert.False(t, resp.Success)
	assert.Equal(t, "Token transfer to user failed", resp.Message)
	require.NotNil(t, resp.Failure)
	assert.Equal(t, wfErr.Reference, resp.Failure.Reference)
	assert.True(t, resp.Failure.Recoverable)

	intent, err := env.intents.GetByID(context.Background(), wfErr.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.SwapStatusReconciliationRequired, intent.Status)
	assert.Equal(t, "acme", intent.FromBusiness)
	assert.Equal(t, "50", intent.FromAmount)
	assert.Equal(t, "globex", intent.ToBusiness)
	assert.Equal(t, "40", intent.ToAmount)
	assert.Equal(t, bobAccount, intent.UserAccount)
	require.NotNil(t, intent.LastError)

	// The platform holds bob's 50 ACM until the swap is reconciled.
	assert.Equal(t, "50", env.ledger.TokenBalance(acmeAccount, bobAccount))
	assert.Equal(t, "50", env.ledger.TokenBalance(acmeAccount, rootAccount))
	assert.Equal(t, "0", env.ledger.TokenBalance(globexAccount, bobAccount))
}

func TestSwapCreditsCollectionFailureNeverTouchesTargetToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedSwapParticipants(t, true)
	env.ledger.FailOn(isTransferOn(acmeAccount, bobAccount), errors.New("insufficient gas"))
	before := len(env.ledger.CallsTo(globexAccount))

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	wfErr := requireWorkflowError(t, err, domain.FailureTransferToMainFailed)
	assert.Equal(t, "Token transfer to main account failed", resp.Message)
	assert.Len(t, env.ledger.CallsTo(globexAccount), before)

	intent, err := env.intents.GetByID(context.Background(), wfErr.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.SwapStatusAbandoned, intent.Status)
	assert.Equal(t, domain.SwapStepCollect, intent.LastStep)
	assert.Equal(t, "100", env.ledger.TokenBalance(acmeAccount, bobAccount))
}

func TestSwapCreditsGasFundingFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedSwapParticipants(t, true)
	env.ledger.FailOn(func(c sandbox.Call) bool { return c.Operation == sandbox.OpSendValue }, errors.New("root out of funds"))
	before := len(env.ledger.CallsTo(acmeAccount))

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	wfErr := requireWorkflowError(t, err, domain.FailureGasFundingFailed)
	assert.Equal(t, "Gas funding failed", resp.Message)
	assert.Len(t, env.ledger.CallsTo(acmeAccount), before)

	intent, err := env.intents.GetByID(context.Background(), wfErr.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.SwapStatusAbandoned, intent.Status)
}

func TestSwapCreditsCollectionTimeoutIsUnknown(t *testing.T) {
	env := newTestEnv(t, func(s *services.Settings) { s.CallTimeout = 20 * time.Millisecond })
	env.seedSwapParticipants(t, true)
	env.ledger.StallOn(isTransferOn(acmeAccount, bobAccount))

	_, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	wfErr := requireWorkflowError(t, err, domain.FailureRemoteUnknown)
	assert.Equal(t, domain.SwapStepCollect, wfErr.Step)
	assert.True(t, wfErr.Recoverable)

	intent, err := env.intents.GetByID(context.Background(), wfErr.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.SwapStatusCollectionUnknown, intent.Status)
}

func TestSwapCreditsDeliveryTimeoutIsUnknown(t *testing.T) {
	env := newTestEnv(t, func(s *services.Settings) { s.CallTimeout = 20 * time.Millisecond })
	env.seedSwapParticipants(t, true)
	env.ledger.StallOn(isTransferOn(globexAccount, rootAccount))

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	wfErr := requireWorkflowError(t, err, domain.FailureRemoteUnknown)
	assert.Equal(t, domain.SwapStepDeliver, wfErr.Step)
	assert.Equal(t, "Token transfer to user outcome unknown", resp.Message)

	intent, err := env.intents.GetByID(context.Background(), wfErr.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.SwapStatusDeliveryUnknown, intent.Status)
}

func TestSwapCreditsSurvivesClientCancellation(t *testing.T) {
	env := newTestEnv(t)
	env.seedSwapParticipants(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := env.swaps.SwapCredits(ctx, acmeToGlobex("50", "40"))
	require.NoError(t, err)
	assert.True(t, resp.Data.Success)
	assert.Equal(t, "40", env.ledger.TokenBalance(globexAccount, bobAccount))
}

func TestSwapCreditsPlatformFloatTooSmall(t *testing.T) {
	env := newTestEnv(t)
	env.seedSwapParticipants(t, true)

	_, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "150"))
	requireWorkflowError(t, err, domain.FailureTransferToUserFailed)
	assert.ErrorIs(t, err, sandbox.ErrInsufficientBalance)

	calls := env.ledger.CallsTo(globexAccount)
	last := calls[len(calls)-1]
	assert.Equal(t, domain.MethodTransfer, last.Method)
	assert.Equal(t, rootAccount, last.Signer)
	assert.Equal(t, rootFloat, env.ledger.TokenBalance(globexAccount, rootAccount))
}

func TestSwapCreditsBusinessPayout(t *testing.T) {
	env := newTestEnv(t, func(s *services.Settings) { s.PayoutFromBusiness = true })
	env.seedSwapParticipants(t, true)

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	require.NoError(t, err)
	assert.True(t, resp.Data.Success)

	calls := env.ledger.CallsTo(globexAccount)
	last := calls[len(calls)-1]
	assert.Equal(t, domain.MethodTransfer, last.Method)
	assert.Equal(t, globexAccount, last.Signer)
	assert.Equal(t, rootFloat, env.ledger.TokenBalance(globexAccount, rootAccount))
	assert.Equal(t, "99860", env.ledger.TokenBalance(globexAccount, globexAccount))
}

func TestSwapCreditsCanonicalisesAmounts(t *testing.T) {
	env := newTestEnv(t)
	env.seedSwapParticipants(t, true)

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("5e1", "40.0"))
	require.NoError(t, err)
	assert.Equal(t, "50", resp.Data.FromBusinessAmount)
	assert.Equal(t, "40", resp.Data.ToBusinessAmount)

	collect := env.ledger.CallsTo(acmeAccount)
	assert.Equal(t, "50", collect[len(collect)-1].Args["amount"])
	deliver := env.ledger.CallsTo(globexAccount)
	assert.Equal(t, "40", deliver[len(deliver)-1].Args["amount"])

	intent, err := env.intents.GetByID(context.Background(), resp.Data.SwapID)
	require.NoError(t, err)
	assert.Equal(t, "50", intent.FromAmount)
	assert.Equal(t, "40", intent.ToAmount)
}

func TestSwapCreditsLeadingZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	env.seedSwapParticipants(t, true)

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("050", "040"))
	require.NoError(t, err)
	assert.Equal(t, "50", resp.Data.FromBusinessAmount)
	assert.Equal(t, "40", resp.Data.ToBusinessAmount)
}

func TestSwapCreditsIntentLogUnavailable(t *testing.T) {
	repo := &flakyIntentRepository{SwapIntentRepository: memory.NewSwapIntentRepository(), failCreate: true}
	env := newTestEnvWithIntents(t, repo)
	env.seedSwapParticipants(t, true)
	before := len(env.ledger.Calls())

	resp, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	requireWorkflowError(t, err, domain.FailureIntentLogUnavailable)
	assert.Equal(t, "Swap could not be recorded", resp.Message)
	assert.Len(t, env.ledger.Calls(), before)
}

func TestSwapCreditsStopsWhenLogWriteFails(t *testing.T) {
	repo := &flakyIntentRepository{SwapIntentRepository: memory.NewSwapIntentRepository()}
	env := newTestEnvWithIntents(t, repo)
	env.seedSwapParticipants(t, true)
	repo.failUpdate.Store(true)

	_, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	wfErr := requireWorkflowError(t, err, domain.FailureIntentLogUnavailable)
	assert.Equal(t, domain.SwapStepCollect, wfErr.Step)
	assert.NotEmpty(t, wfErr.Reference)

	for _, call := range env.ledger.CallsTo(globexAccount) {
		assert.NotEqual(t, domain.MethodTransfer, call.Method)
	}
}

func TestSwapCreditsValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  models.SwapCreditsRequest
	}{
		{name: "same business", req: models.SwapCreditsRequest{FromBusiness: "acme", ToBusiness: "acme", FromBusinessAmount: "1", ToBusinessAmount: "1", UserAccount: bobAccount.String()}},
		{name: "zero amount", req: acmeToGlobex("0", "40")},
		{name: "fractional amount", req: acmeToGlobex("50", "4.5")},
		{name: "missing user", req: models.SwapCreditsRequest{FromBusiness: "acme", ToBusiness: "globex", FromBusinessAmount: "1", ToBusinessAmount: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.swaps.SwapCredits(context.Background(), tt.req)
			requireWorkflowError(t, err, domain.FailureInvalidRequest)
			assert.Equal(t, "validation failed", resp.Message)
		})
	}
	assert.Empty(t, env.ledger.Calls())
}

func TestSwapCreditsDisabled(t *testing.T) {
	env := newTestEnv(t, func(s *services.Settings) { s.SwapsEnabled = false })

	_, err := env.swaps.SwapCredits(context.Background(), acmeToGlobex("50", "40"))
	requireWorkflowError(t, err, domain.FailureFeatureDisabled)
	assert.Empty(t, env.ledger.Calls())
}
