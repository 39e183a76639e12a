package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/api-sage/business-credits/src/internal/logger"
)

type sweepRunner interface {
	Sweep(ctx context.Context) (int, error)
}

// ReconciliationSweeper runs Sweep on a cron schedule. A run that is still in
// progress when the next one is due causes that next run to be skipped.
type ReconciliationSweeper struct {
	cron    *cron.Cron
	runner  sweepRunner
	timeout time.Duration
}

// NewReconciliationSweeper accepts a five-field cron spec or a descriptor such
// as "@every 5m". timeout bounds a single run.
func NewReconciliationSweeper(schedule string, runner sweepRunner, timeout time.Duration) (*ReconciliationSweeper, error) {
	cronLogger := cronLogAdapter{}
	s := &ReconciliationSweeper{
		cron:    cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		runner:  runner,
		timeout: timeout,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *ReconciliationSweeper) Start() {
	logger.Info("reconciliation sweeper started", nil)
	s.cron.Start()
}

// Stop prevents further runs and waits for a running sweep or ctx, whichever ends first.
func (s *ReconciliationSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	logger.Info("reconciliation sweeper stopped", nil)
}

func (s *ReconciliationSweeper) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	completed, err := s.runner.Sweep(ctx)
	if err != nil {
		logger.Error("reconciliation sweeper run failed", err, logger.Fields{"completed": completed})
		return
	}
	logger.Info("reconciliation sweeper run finished", logger.Fields{"completed": completed})
}

// cronLogAdapter sends cron's own diagnostics through the service logger.
type cronLogAdapter struct{}

func (cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	logger.Info("cron "+msg, keyValueFields(keysAndValues))
}

func (cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron "+msg, err, keyValueFields(keysAndValues))
}

func keyValueFields(keysAndValues []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
