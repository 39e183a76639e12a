package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/api-sage/business-credits/src/internal/adapter/http/models"
	"github.com/api-sage/business-credits/src/internal/adapter/ledger/sandbox"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/memory"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/metrics"
	"github.com/api-sage/business-credits/src/internal/usecase/services"
)

const (
	rootAccount   domain.Identity = "credeem.testnet"
	acmeAccount   domain.Identity = "acme.credeem.testnet"
	globexAccount domain.Identity = "globex.credeem.testnet"
	bobAccount    domain.Identity = "bob.credeem.testnet"

	rootFloat = "100"
)

type testEnv struct {
	ledger   *sandbox.Ledger
	intents  repo_interfaces.SwapIntentRepository
	settings services.Settings

	business *services.BusinessService
	users    *services.UserService
	swaps    *services.SwapService
	recon    *services.ReconciliationService
}

func testSettings() services.Settings {
	return services.Settings{
		RootAccount:            rootAccount,
		SignerPublicKey:        "ed25519:4wBqpZM9xaSheZzJSMawUKKwhdpChKbZ5eu5ky4Vigw",
		TokenCode:              sandbox.PlaceholderCode,
		TokenTotalSupply:       "100000",
		TokenDecimals:          8,
		TokenSpec:              "ft-1.0.0",
		BusinessInitialBalance: "3000000000000000000000000",
		GasReserveAmount:       "100000000000000000000000",
		StorageDepositAmount:   "1250000000000000000000",
		CallGas:                "300000000000000",
		CallTimeout:            time.Second,
		RewardsEnabled:         true,
		SwapsEnabled:           true,
	}
}

func newTestEnv(t *testing.T, opts ...func(*services.Settings)) *testEnv {
	t.Helper()
	return newTestEnvWithIntents(t, memory.NewSwapIntentRepository(), opts...)
}

func newTestEnvWithIntents(t *testing.T, intents repo_interfaces.SwapIntentRepository, opts ...func(*services.Settings)) *testEnv {
	t.Helper()

	settings := testSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	ledger := sandbox.New(rootAccount, "1000000000000000000000000000")
	locks := services.NewIdentityLocks()
	m := metrics.New()

	return &testEnv{
		ledger:   ledger,
		intents:  intents,
		settings: settings,
		business: services.NewBusinessService(ledger, locks, settings, m),
		users:    services.NewUserService(ledger, locks, settings, m),
		swaps:    services.NewSwapService(ledger, intents, locks, settings, m),
		recon: services.NewReconciliationService(ledger, intents, locks, settings,
			services.SweepOptions{MaxAttempts: 3, Concurrency: 2}, m),
	}
}

func (e *testEnv) createBusiness(t *testing.T, name string) {
	t.Helper()
	_, err := e.business.CreateBusiness(context.Background(), models.CreateBusinessRequest{BusinessName: name})
	require.NoError(t, err)
}

func (e *testEnv) createUser(t *testing.T, name string) {
	t.Helper()
	_, err := e.users.CreateUser(context.Background(), models.CreateUserRequest{User: name})
	require.NoError(t, err)
}

func (e *testEnv) registerUser(t *testing.T, business string, user domain.Identity) {
	t.Helper()
	_, err := e.users.RegisterUser(context.Background(), models.RegisterUserRequest{BusinessName: business, User: user.String()})
	require.NoError(t, err)
}

func (e *testEnv) rewardUser(t *testing.T, business string, user domain.Identity, amount string) {
	t.Helper()
	_, err := e.users.RewardUser(context.Background(), models.RewardUserRequest{
		BusinessName: business,
		User:         user.String(),
		Amount:       models.TokenAmount(amount),
	})
	require.NoError(t, err)
}

// seedSwapParticipants provisions acme and globex, gives bob 100 ACM and
// gives the root account a 100 GLO payout float.
// bob is registered on globex only when registerOnGlobex is set.
func (e *testEnv) seedSwapParticipants(t *testing.T, registerOnGlobex bool) {
	t.Helper()
	e.createBusiness(t, "acme")
	e.createBusiness(t, "globex")
	e.createUser(t, "bob")
	e.registerUser(t, "acme", bobAccount)
	if registerOnGlobex {
		e.registerUser(t, "globex", bobAccount)
	}
	e.rewardUser(t, "acme", bobAccount, "100")
	e.rewardUser(t, "globex", rootAccount, rootFloat)
}

func acmeToGlobex(from, to string) models.SwapCreditsRequest {
	return models.SwapCreditsRequest{
		FromBusiness:       "acme",
		ToBusiness:         "globex",
		FromBusinessAmount: models.TokenAmount(from),
		ToBusinessAmount:   models.TokenAmount(to),
		UserAccount:        bobAccount.String(),
	}
}

func requireWorkflowError(t *testing.T, err error, kind domain.FailureKind) *domain.WorkflowError {
	t.Helper()
	require.Error(t, err)
	wfErr, ok := domain.AsWorkflowError(err)
	require.True(t, ok, "expected a workflow error, got %v", err)
	require.Equal(t, kind, wfErr.Kind)
	return wfErr
}

func isTransferOn(contract domain.Identity, signer domain.Identity) func(sandbox.Call) bool {
	return func(call sandbox.Call) bool {
		return call.Operation == sandbox.OpFunctionCall &&
			call.Method == domain.MethodTransfer &&
			call.Contract == contract &&
			call.Signer == signer
	}
}
