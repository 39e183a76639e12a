package sandbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/business-credits/src/internal/domain"
)

const (
	root domain.Identity = "credeem.testnet"
	acme domain.Identity = "acme.credeem.testnet"
	bob  domain.Identity = "bob.credeem.testnet"
)

func newTokenLedger(t *testing.T) *Ledger {
	t.Helper()
	ctx := context.Background()
	l := New(root, "1000")

	require.NoError(t, l.CreateAccount(ctx, acme, "ed25519:key", "3"))
	require.NoError(t, l.CreateAccount(ctx, bob, "ed25519:key", ""))
	require.NoError(t, l.DeployContract(ctx, acme, PlaceholderCode))
	require.NoError(t, l.InvokeChange(ctx, domain.ChangeCall{
		Signer:   acme,
		Contract: acme,
		Method:   domain.MethodInit,
		Args: map[string]any{
			"owner_id":     acme,
			"total_supply": "100000",
			"metadata":     domain.TokenMetadata{Spec: "ft-1.0.0", Name: "acme Credits", Symbol: "ACM", Decimals: 8},
		},
	}))
	return l
}

func TestCreateAccountRejectsDuplicate(t *testing.T) {
	l := New(root, "0")
	require.NoError(t, l.CreateAccount(context.Background(), acme, "ed25519:key", ""))

	err := l.CreateAccount(context.Background(), acme, "ed25519:key", "")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	l := newTokenLedger(t)

	assert.Equal(t, "ACM", l.TokenMetadata(acme)["symbol"])
	assert.Equal(t, "100000", l.TokenBalance(acme, acme))

	err := l.InvokeChange(ctx, domain.ChangeCall{Signer: acme, Contract: acme, Method: domain.MethodTransfer, Deposit: "1",
		Args: map[string]any{"receiver_id": string(bob), "amount": "100"}})
	assert.ErrorIs(t, err, ErrNotRegistered)

	require.NoError(t, l.InvokeChange(ctx, domain.ChangeCall{Signer: acme, Contract: acme, Method: domain.MethodStorageDeposit,
		Deposit: "1250000000000000000000", Args: map[string]any{"account_id": string(bob)}}))
	require.NoError(t, l.InvokeChange(ctx, domain.ChangeCall{Signer: acme, Contract: acme, Method: domain.MethodTransfer, Deposit: "1",
		Args: map[string]any{"receiver_id": string(bob), "amount": "100"}}))

	var balance string
	require.NoError(t, l.InvokeView(ctx, acme, domain.MethodBalanceOf, map[string]any{"account_id": string(bob)}, &balance))
	assert.Equal(t, "100", balance)

	var supply string
	require.NoError(t, l.InvokeView(ctx, acme, domain.MethodTotalSupply, nil, &supply))
	assert.Equal(t, "100000", supply)
	assert.Equal(t, "99900", l.TokenBalance(acme, acme))
}

func TestTransferRequiresOneYocto(t *testing.T) {
	l := newTokenLedger(t)
	err := l.InvokeChange(context.Background(), domain.ChangeCall{Signer: acme, Contract: acme, Method: domain.MethodTransfer,
		Args: map[string]any{"receiver_id": string(root), "amount": "1"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInitTwiceFails(t *testing.T) {
	l := newTokenLedger(t)
	err := l.InvokeChange(context.Background(), domain.ChangeCall{Signer: acme, Contract: acme, Method: domain.MethodInit,
		Args: map[string]any{"owner_id": string(acme), "total_supply": "1"}})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestSendValueMovesNativeBalance(t *testing.T) {
	l := newTokenLedger(t)
	require.NoError(t, l.SendValue(context.Background(), root, bob, "200"))
	assert.Equal(t, "800", l.NativeBalance(root))
	assert.Equal(t, "200", l.NativeBalance(bob))

	err := l.SendValue(context.Background(), bob, root, "201")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestFailOnLeavesStateUntouched(t *testing.T) {
	l := New(root, "0")
	boom := errors.New("relay rejected")
	l.FailOn(func(c Call) bool { return c.Operation == OpCreateAccount }, boom)

	err := l.CreateAccount(context.Background(), acme, "ed25519:key", "")
	assert.ErrorIs(t, err, boom)
	assert.False(t, l.AccountExists(acme))
	assert.Len(t, l.Calls(), 1)
}

func TestStallOnReportsUnknownOutcome(t *testing.T) {
	l := New(root, "10")
	l.StallOn(func(c Call) bool { return c.Operation == OpSendValue })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.SendValue(ctx, root, root, "1")
	assert.ErrorIs(t, err, domain.ErrRemoteUnknown)
}
