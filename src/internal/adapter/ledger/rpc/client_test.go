package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/business-credits/src/internal/domain"
)

type relayStub struct {
	t       *testing.T
	handler func(req rpcRequest) (any, *rpcError)
	got     []rpcRequest
}

func (s *relayStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))
	s.got = append(s.got, req)

	result, rpcErr := s.handler(req)
	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func TestClientInvokeChangeSendsCall(t *testing.T) {
	stub := &relayStub{t: t, handler: func(rpcRequest) (any, *rpcError) { return map[string]any{"txHash": "abc"}, nil }}
	server := httptest.NewServer(stub)
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	err := client.InvokeChange(context.Background(), domain.ChangeCall{
		Signer:   "acme.credeem.testnet",
		Contract: "acme.credeem.testnet",
		Method:   domain.MethodTransfer,
		Args:     map[string]any{"receiver_id": "bob.credeem.testnet", "amount": "100"},
		Gas:      "300000000000000",
		Deposit:  "1",
	})
	require.NoError(t, err)

	require.Len(t, stub.got, 1)
	assert.Equal(t, methodFunctionCall, stub.got[0].Method)
	assert.Equal(t, "2.0", stub.got[0].JSONRPC)
	params, ok := stub.got[0].Params.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ft_transfer", params["method"])
	assert.Equal(t, "1", params["deposit"])
}

func TestClientInvokeViewDecodesResult(t *testing.T) {
	stub := &relayStub{t: t, handler: func(rpcRequest) (any, *rpcError) { return "100", nil }}
	server := httptest.NewServer(stub)
	defer server.Close()

	var balance string
	err := NewClient(Config{URL: server.URL}).InvokeView(context.Background(), "acme.credeem.testnet", domain.MethodBalanceOf, map[string]any{"account_id": "bob.credeem.testnet"}, &balance)
	require.NoError(t, err)
	assert.Equal(t, "100", balance)
}

func TestClientRPCErrorIsDefinite(t *testing.T) {
	stub := &relayStub{t: t, handler: func(rpcRequest) (any, *rpcError) {
		return nil, &rpcError{Code: -32000, Name: "HANDLER_ERROR", Message: "account already exists"}
	}}
	server := httptest.NewServer(stub)
	defer server.Close()

	err := NewClient(Config{URL: server.URL}).CreateAccount(context.Background(), "acme.credeem.testnet", "ed25519:key", "3")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRemoteUnknown)
	assert.Contains(t, err.Error(), "account already exists")
}

func TestClientRelayTimeoutIsUnknown(t *testing.T) {
	stub := &relayStub{t: t, handler: func(rpcRequest) (any, *rpcError) {
		return nil, &rpcError{Code: -32000, Name: timeoutErrorName, Message: "transaction not finalized"}
	}}
	server := httptest.NewServer(stub)
	defer server.Close()

	err := NewClient(Config{URL: server.URL}).SendValue(context.Background(), "credeem.testnet", "bob.credeem.testnet", "1")
	assert.ErrorIs(t, err, domain.ErrRemoteUnknown)
}

func TestClientDeadlineIsUnknown(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewClient(Config{URL: server.URL}).DeployContract(ctx, "acme.credeem.testnet", []byte{0x00, 0x61, 0x73, 0x6d})
	assert.ErrorIs(t, err, domain.ErrRemoteUnknown)
}

func TestClientUnreachableRelayIsDefinite(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := NewClient(Config{URL: url}).SendValue(context.Background(), "credeem.testnet", "bob.credeem.testnet", "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRemoteUnknown)
}

func TestClientGatewayErrorIsUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timed out", http.StatusGatewayTimeout)
	}))
	defer server.Close()

	err := NewClient(Config{URL: server.URL}).SendValue(context.Background(), "credeem.testnet", "bob.credeem.testnet", "1")
	assert.ErrorIs(t, err, domain.ErrRemoteUnknown)
}
