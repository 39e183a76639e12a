package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/api-sage/business-credits/src/internal/domain"
)

// Relay methods. The relay holds the signing keys for every account created
// under the platform public key and submits transactions on their behalf.
const (
	methodCreateAccount  = "account_create"
	methodDeployContract = "contract_deploy"
	methodFunctionCall   = "function_call"
	methodViewCall       = "view_call"
	methodTransfer       = "transfer"
)

// timeoutErrorName is reported by the relay when a transaction was submitted
// but did not reach finality before the relay gave up waiting.
const timeoutErrorName = "TIMEOUT_ERROR"

var _ domain.LedgerGateway = (*Client)(nil)

type Config struct {
	URL     string
	Timeout time.Duration
}

// Client is a JSON-RPC 2.0 client for the signing relay.
type Client struct {
	url        string
	httpClient *http.Client
	nextID     atomic.Int64
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url: strings.TrimSpace(cfg.URL),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

func (c *Client) CreateAccount(ctx context.Context, name domain.Identity, publicKey string, initialBalance string) error {
	params := map[string]any{
		"name":      name,
		"publicKey": publicKey,
	}
	if initialBalance != "" {
		params["initialBalance"] = initialBalance
	}
	return c.call(ctx, methodCreateAccount, params, nil)
}

func (c *Client) DeployContract(ctx context.Context, account domain.Identity, code []byte) error {
	params := map[string]any{
		"account": account,
		"code":    base64.StdEncoding.EncodeToString(code),
	}
	return c.call(ctx, methodDeployContract, params, nil)
}

func (c *Client) InvokeChange(ctx context.Context, call domain.ChangeCall) error {
	params := map[string]any{
		"signer":   call.Signer,
		"contract": call.Contract,
		"method":   call.Method,
		"args":     call.Args,
		"gas":      call.Gas,
		"deposit":  call.Deposit,
	}
	return c.call(ctx, methodFunctionCall, params, nil)
}

func (c *Client) InvokeView(ctx context.Context, contract domain.Identity, method string, args map[string]any, out any) error {
	params := map[string]any{
		"contract": contract,
		"method":   method,
		"args":     args,
	}
	return c.call(ctx, methodViewCall, params, out)
}

func (c *Client) SendValue(ctx context.Context, from domain.Identity, to domain.Identity, amount string) error {
	params := map[string]any{
		"from":   from,
		"to":     to,
		"amount": amount,
	}
	return c.call(ctx, methodTransfer, params, nil)
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	if c == nil || c.httpClient == nil || c.url == "" {
		return fmt.Errorf("ledger rpc: client not configured")
	}

	id := c.nextID.Add(1)
	buf, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("ledger rpc: encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("ledger rpc: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if neverSent(err) {
			return fmt.Errorf("ledger rpc: %s not delivered: %w", method, err)
		}
		return fmt.Errorf("%w: ledger rpc %s: %v", domain.ErrRemoteUnknown, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: ledger rpc %s: read response: %v", domain.ErrRemoteUnknown, method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: ledger rpc %s: status %d", domain.ErrRemoteUnknown, method, resp.StatusCode)
		}
		if resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("ledger rpc: %s rejected with status %d", method, resp.StatusCode)
		}
		return fmt.Errorf("%w: ledger rpc %s: decode response: %v", domain.ErrRemoteUnknown, method, err)
	}

	if rpcResp.Error != nil {
		if rpcResp.Error.Name == timeoutErrorName {
			return fmt.Errorf("%w: ledger rpc %s: %s", domain.ErrRemoteUnknown, method, rpcResp.Error.Message)
		}
		return fmt.Errorf("ledger rpc: %s error %d %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ledger rpc: %s unexpected status %d", method, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if len(rpcResp.Result) == 0 {
		return fmt.Errorf("ledger rpc: %s empty result", method)
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("ledger rpc: %s decode result: %w", method, err)
	}
	return nil
}

// neverSent reports transport failures that happened before the request left
// this process, so the relay cannot have acted on it.
func neverSent(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
