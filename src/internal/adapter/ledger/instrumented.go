package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
	"github.com/api-sage/business-credits/src/internal/metrics"
)

const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultUnknown  = "unknown"
)

var _ domain.LedgerGateway = (*Instrumented)(nil)

// Instrumented logs and measures every call made through the wrapped gateway.
type Instrumented struct {
	next    domain.LedgerGateway
	metrics *metrics.Metrics
}

func NewInstrumented(next domain.LedgerGateway, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (g *Instrumented) CreateAccount(ctx context.Context, name domain.Identity, publicKey string, initialBalance string) error {
	start := time.Now()
	err := g.next.CreateAccount(ctx, name, publicKey, initialBalance)
	g.observe("create_account", start, err, logger.Fields{"account": name})
	return err
}

func (g *Instrumented) DeployContract(ctx context.Context, account domain.Identity, code []byte) error {
	start := time.Now()
	err := g.next.DeployContract(ctx, account, code)
	g.observe("deploy_contract", start, err, logger.Fields{"account": account, "codeBytes": len(code)})
	return err
}

func (g *Instrumented) InvokeChange(ctx context.Context, call domain.ChangeCall) error {
	start := time.Now()
	err := g.next.InvokeChange(ctx, call)
	g.observe(call.Method, start, err, logger.Fields{
		"signer":   call.Signer,
		"contract": call.Contract,
		"args":     logger.SanitizePayload(call.Args),
	})
	return err
}

func (g *Instrumented) InvokeView(ctx context.Context, contract domain.Identity, method string, args map[string]any, out any) error {
	start := time.Now()
	err := g.next.InvokeView(ctx, contract, method, args, out)
	g.observe(method, start, err, logger.Fields{"contract": contract})
	return err
}

func (g *Instrumented) SendValue(ctx context.Context, from domain.Identity, to domain.Identity, amount string) error {
	start := time.Now()
	err := g.next.SendValue(ctx, from, to, amount)
	g.observe("send_value", start, err, logger.Fields{"from": from, "to": to, "amount": amount})
	return err
}

func (g *Instrumented) observe(operation string, start time.Time, err error, fields logger.Fields) {
	elapsed := time.Since(start)
	fields["operation"] = operation
	fields["durationMs"] = elapsed.Milliseconds()

	switch {
	case err == nil:
		g.metrics.ObserveLedgerCall(operation, resultOK, elapsed)
		logger.Info("ledger call succeeded", fields)
	case errors.Is(err, domain.ErrRemoteUnknown):
		g.metrics.ObserveLedgerCall(operation, resultUnknown, elapsed)
		logger.Error("ledger call outcome unknown", err, fields)
	default:
		g.metrics.ObserveLedgerCall(operation, resultRejected, elapsed)
		logger.Warn("ledger call rejected", fields)
	}
}
