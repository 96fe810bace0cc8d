package blockchain

import (
	"context"
	"errors"
	"github.com/txsociety/tonkit/pkg/cell"
	"github.com/txsociety/tonkit/pkg/core"
	"github.com/txsociety/tonkit/pkg/metrics"
	"github.com/txsociety/tonkit/pkg/retry"
	"log/slog"
)

var errNoStack = errors.New("get-method returned no stack")

type executor interface {
	RunGetMethod(ctx context.Context, addr core.Address, method string, params Stack, block *core.BlockIDExt) (Stack, error)
}

// Caller runs get-methods with a bounded retry.
type Caller struct {
	executor executor
	policy   retry.Policy
	metrics  *metrics.Metrics
}

func NewCaller(e executor, policy retry.Policy, m *metrics.Metrics) *Caller {
	if policy.Retryable == nil {
		policy.Retryable = IsRetryable
	}
	return &Caller{executor: e, policy: policy, metrics: m}
}

// IsRetryable reports false for errors that repeat on every attempt.
func IsRetryable(err error) bool {
	switch {
	case errors.Is(err, cell.ErrCodec),
		errors.Is(err, core.ErrInvalidResponseShape),
		errors.Is(err, core.ErrValidation),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// Call invokes method on addr. A nil block runs against the latest known state.
func (c *Caller) Call(ctx context.Context, addr core.Address, method string, params Stack, block *core.BlockIDExt) (Stack, error) {
	stack, err := retry.Do(ctx, c.policy, func(ctx context.Context) (Stack, error) {
		c.metrics.IncCallAttempt(method)
		stack, err := c.executor.RunGetMethod(ctx, addr, method, params, block)
		if err != nil {
			return nil, err
		}
		if stack == nil {
			return nil, errNoStack
		}
		return stack, nil
	})
	if err != nil {
		c.metrics.IncCallFailure(method)
		slog.Warn("get-method call failed", "method", method, "address", addr.ToRaw(), "error", err)
		return nil, err
	}
	return stack, nil
}
