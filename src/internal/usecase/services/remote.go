package services

import (
	"context"
	"time"
)

const defaultCallTimeout = 15 * time.Second

// callRemote runs fn under its own deadline. The parent's cancellation is
// dropped so a disconnecting client cannot abandon a workflow between steps.
func callRemote(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	return fn(callCtx)
}

// detached returns a context for intent log writes that outlives the request.
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
