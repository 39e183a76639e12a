package domain

import "context"

// ChangeCall is a state-changing contract invocation signed by Signer.
type ChangeCall struct {
	Signer   Identity
	Contract Identity
	Method   string
	Args     map[string]any
	Gas      string
	Deposit  string
}

// LedgerGateway is the boundary to the remote ledger relay. Implementations
// return an error wrapping ErrRemoteUnknown when a call was submitted but its
// outcome could not be observed.
type LedgerGateway interface {
	CreateAccount(ctx context.Context, name Identity, publicKey string, initialBalance string) error
	DeployContract(ctx context.Context, account Identity, code []byte) error
	InvokeChange(ctx context.Context, call ChangeCall) error
	InvokeView(ctx context.Context, contract Identity, method string, args map[string]any, out any) error
	SendValue(ctx context.Context, from Identity, to Identity, amount string) error
}

// Token contract methods.
const (
	MethodInit           = "new"
	MethodStorageDeposit = "storage_deposit"
	MethodTransfer       = "ft_transfer"
	MethodBalanceOf      = "ft_balance_of"
	MethodTotalSupply    = "ft_total_supply"
)

type TokenMetadata struct {
	Spec     string `json:"spec"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}
