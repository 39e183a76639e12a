// Package sandbox is an in-process ledger that hosts accounts and a
// fungible-token contract per account. It backs LEDGER_DRIVER=sandbox and the
// workflow tests.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/api-sage/business-credits/src/internal/domain"
)

// Operations recorded for each call.
const (
	OpCreateAccount  = "create_account"
	OpDeployContract = "deploy_contract"
	OpFunctionCall   = "function_call"
	OpViewCall       = "view_call"
	OpSendValue      = "send_value"
)

// PlaceholderCode stands in for the token contract when no wasm file is available.
var PlaceholderCode = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

var (
	ErrAccountExists       = errors.New("account already exists")
	ErrAccountNotFound     = errors.New("account does not exist")
	ErrNoContract          = errors.New("contract is not deployed")
	ErrNotInitialized      = errors.New("contract is not initialized")
	ErrAlreadyInitialized  = errors.New("contract is already initialized")
	ErrNotRegistered       = errors.New("account is not registered")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnknownMethod       = errors.New("method not found")
)

// Call is one recorded gateway invocation.
type Call struct {
	Operation string
	Signer    domain.Identity
	Contract  domain.Identity
	Method    string
	Args      map[string]any
	Amount    string
}

// Hook inspects a call before it is applied. A non-nil error fails the call
// without changing state.
type Hook func(ctx context.Context, call Call) error

type token struct {
	owner       domain.Identity
	totalSupply decimal.Decimal
	metadata    map[string]any
	balances    map[domain.Identity]decimal.Decimal
}

type account struct {
	balance   decimal.Decimal
	publicKey string
	code      []byte
	token     *token
}

var _ domain.LedgerGateway = (*Ledger)(nil)

type Ledger struct {
	mu       sync.Mutex
	accounts map[domain.Identity]*account
	calls    []Call
	hooks    []Hook
}

// New returns a ledger holding only the root account with rootBalance.
func New(root domain.Identity, rootBalance string) *Ledger {
	balance, err := decimal.NewFromString(rootBalance)
	if err != nil {
		balance = decimal.Zero
	}
	return &Ledger{
		accounts: map[domain.Identity]*account{
			root: {balance: balance},
		},
	}
}

func (l *Ledger) AddHook(hook Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, hook)
}

// FailOn makes every call matching match fail with err.
func (l *Ledger) FailOn(match func(Call) bool, err error) {
	l.AddHook(func(_ context.Context, call Call) error {
		if match(call) {
			return err
		}
		return nil
	})
}

// StallOn makes calls matching match block until their context ends, then
// report an unknown outcome the way a relay timeout would.
func (l *Ledger) StallOn(match func(Call) bool) {
	l.AddHook(func(ctx context.Context, call Call) error {
		if !match(call) {
			return nil
		}
		<-ctx.Done()
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnknown, ctx.Err())
	})
}

func (l *Ledger) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Call, len(l.calls))
	copy(out, l.calls)
	return out
}

// CallsTo returns the recorded calls that targeted contract.
func (l *Ledger) CallsTo(contract domain.Identity) []Call {
	var out []Call
	for _, call := range l.Calls() {
		if call.Contract == contract {
			out = append(out, call)
		}
	}
	return out
}

func (l *Ledger) AccountExists(name domain.Identity) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.accounts[name]
	return ok
}

func (l *Ledger) NativeBalance(name domain.Identity) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[name]
	if !ok {
		return "0"
	}
	return acc.balance.String()
}

// TokenBalance returns holder's balance on contract, or "0" when unknown.
func (l *Ledger) TokenBalance(contract domain.Identity, holder domain.Identity) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[contract]
	if !ok || acc.token == nil {
		return "0"
	}
	return acc.token.balances[holder].String()
}

// TokenMetadata returns the metadata the token on contract was initialized with.
func (l *Ledger) TokenMetadata(contract domain.Identity) map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	acc, ok := l.accounts[contract]
	if !ok || acc.token == nil {
		return nil
	}
	return acc.token.metadata
}

func (l *Ledger) CreateAccount(ctx context.Context, name domain.Identity, publicKey string, initialBalance string) error {
	call := Call{Operation: OpCreateAccount, Contract: name, Amount: initialBalance}
	if err := l.begin(ctx, call); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[name]; ok {
		return fmt.Errorf("create %s: %w", name, ErrAccountExists)
	}
	balance := decimal.Zero
	if initialBalance != "" {
		parsed, err := decimal.NewFromString(initialBalance)
		if err != nil {
			return fmt.Errorf("create %s: initial balance: %w", name, ErrInvalidArgument)
		}
		balance = parsed
	}
	l.accounts[name] = &account{balance: balance, publicKey: publicKey}
	return nil
}

func (l *Ledger) DeployContract(ctx context.Context, accountName domain.Identity, code []byte) error {
	call := Call{Operation: OpDeployContract, Signer: accountName, Contract: accountName}
	if err := l.begin(ctx, call); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[accountName]
	if !ok {
		return fmt.Errorf("deploy to %s: %w", accountName, ErrAccountNotFound)
	}
	if len(code) == 0 {
		return fmt.Errorf("deploy to %s: empty code: %w", accountName, ErrInvalidArgument)
	}
	acc.code = append([]byte(nil), code...)
	acc.token = nil
	return nil
}

func (l *Ledger) InvokeChange(ctx context.Context, change domain.ChangeCall) error {
	call := Call{
		Operation: OpFunctionCall,
		Signer:    change.Signer,
		Contract:  change.Contract,
		Method:    change.Method,
		Args:      change.Args,
		Amount:    change.Deposit,
	}
	if err := l.begin(ctx, call); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[change.Signer]; !ok {
		return fmt.Errorf("signer %s: %w", change.Signer, ErrAccountNotFound)
	}
	contract, err := l.contractLocked(change.Contract)
	if err != nil {
		return err
	}

	switch change.Method {
	case domain.MethodInit:
		return initToken(contract, change.Args)
	case domain.MethodStorageDeposit:
		return storageDeposit(contract, change)
	case domain.MethodTransfer:
		return transfer(contract, change)
	default:
		return fmt.Errorf("%s on %s: %w", change.Method, change.Contract, ErrUnknownMethod)
	}
}

func (l *Ledger) InvokeView(ctx context.Context, contractName domain.Identity, method string, args map[string]any, out any) error {
	call := Call{Operation: OpViewCall, Contract: contractName, Method: method, Args: args}
	if err := l.begin(ctx, call); err != nil {
		return err
	}

	l.mu.Lock()
	contract, err := l.contractLocked(contractName)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if contract.token == nil {
		l.mu.Unlock()
		return fmt.Errorf("%s on %s: %w", method, contractName, ErrNotInitialized)
	}

	var result any
	switch method {
	case domain.MethodBalanceOf:
		holder := domain.Identity(stringArg(args, "account_id"))
		result = contract.token.balances[holder].String()
	case domain.MethodTotalSupply:
		result = contract.token.totalSupply.String()
	default:
		l.mu.Unlock()
		return fmt.Errorf("%s on %s: %w", method, contractName, ErrUnknownMethod)
	}
	l.mu.Unlock()

	if out == nil {
		return nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (l *Ledger) SendValue(ctx context.Context, from domain.Identity, to domain.Identity, amount string) error {
	call := Call{Operation: OpSendValue, Signer: from, Contract: to, Amount: amount}
	if err := l.begin(ctx, call); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sender, ok := l.accounts[from]
	if !ok {
		return fmt.Errorf("sender %s: %w", from, ErrAccountNotFound)
	}
	receiver, ok := l.accounts[to]
	if !ok {
		return fmt.Errorf("receiver %s: %w", to, ErrAccountNotFound)
	}
	value, err := decimal.NewFromString(amount)
	if err != nil || !value.IsPositive() {
		return fmt.Errorf("send value %q: %w", amount, ErrInvalidArgument)
	}
	if sender.balance.LessThan(value) {
		return fmt.Errorf("send value from %s: %w", from, ErrInsufficientBalance)
	}

	sender.balance = sender.balance.Sub(value)
	receiver.balance = receiver.balance.Add(value)
	return nil
}

// begin records the call and runs the hooks outside the state lock so a
// stalled hook does not block other callers.
func (l *Ledger) begin(ctx context.Context, call Call) error {
	l.mu.Lock()
	l.calls = append(l.calls, call)
	hooks := make([]Hook, len(l.hooks))
	copy(hooks, l.hooks)
	l.mu.Unlock()

	for _, hook := range hooks {
		if err := hook(ctx, call); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ledger call not submitted: %w", err)
	}
	return nil
}

func (l *Ledger) contractLocked(name domain.Identity) (*account, error) {
	acc, ok := l.accounts[name]
	if !ok {
		return nil, fmt.Errorf("contract %s: %w", name, ErrAccountNotFound)
	}
	if len(acc.code) == 0 {
		return nil, fmt.Errorf("contract %s: %w", name, ErrNoContract)
	}
	return acc, nil
}

func initToken(contract *account, args map[string]any) error {
	if contract.token != nil {
		return ErrAlreadyInitialized
	}

	owner := domain.Identity(stringArg(args, "owner_id"))
	if owner == "" {
		return fmt.Errorf("owner_id: %w", ErrInvalidArgument)
	}
	supply, err := decimal.NewFromString(stringArg(args, "total_supply"))
	if err != nil || supply.IsNegative() || !supply.IsInteger() {
		return fmt.Errorf("total_supply: %w", ErrInvalidArgument)
	}
	metadata, _ := args["metadata"].(map[string]any)
	if metadata == nil {
		if raw, err := json.Marshal(args["metadata"]); err == nil {
			_ = json.Unmarshal(raw, &metadata)
		}
	}

	contract.token = &token{
		owner:       owner,
		totalSupply: supply,
		metadata:    metadata,
		balances:    map[domain.Identity]decimal.Decimal{owner: supply},
	}
	return nil
}

func storageDeposit(contract *account, change domain.ChangeCall) error {
	if contract.token == nil {
		return ErrNotInitialized
	}
	deposit, err := decimal.NewFromString(change.Deposit)
	if err != nil || !deposit.IsPositive() {
		return fmt.Errorf("storage_deposit requires an attached deposit: %w", ErrInvalidArgument)
	}

	holder := domain.Identity(stringArg(change.Args, "account_id"))
	if holder == "" {
		holder = change.Signer
	}
	if _, ok := contract.token.balances[holder]; !ok {
		contract.token.balances[holder] = decimal.Zero
	}
	return nil
}

func transfer(contract *account, change domain.ChangeCall) error {
	if contract.token == nil {
		return ErrNotInitialized
	}
	if change.Deposit != "1" {
		return fmt.Errorf("ft_transfer requires exactly 1 yoctoNEAR attached: %w", ErrInvalidArgument)
	}

	receiver := domain.Identity(stringArg(change.Args, "receiver_id"))
	if receiver == "" || receiver == change.Signer {
		return fmt.Errorf("receiver_id: %w", ErrInvalidArgument)
	}
	amount, err := decimal.NewFromString(stringArg(change.Args, "amount"))
	if err != nil || !amount.IsPositive() || !amount.IsInteger() {
		return fmt.Errorf("amount: %w", ErrInvalidArgument)
	}

	senderBalance, ok := contract.token.balances[change.Signer]
	if !ok {
		return fmt.Errorf("sender %s: %w", change.Signer, ErrNotRegistered)
	}
	receiverBalance, ok := contract.token.balances[receiver]
	if !ok {
		return fmt.Errorf("receiver %s: %w", receiver, ErrNotRegistered)
	}
	if senderBalance.LessThan(amount) {
		return fmt.Errorf("sender %s: %w", change.Signer, ErrInsufficientBalance)
	}

	contract.token.balances[change.Signer] = senderBalance.Sub(amount)
	contract.token.balances[receiver] = receiverBalance.Add(amount)
	return nil
}

func stringArg(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case domain.Identity:
		return string(typed)
	default:
		return fmt.Sprint(typed)
	}
}
