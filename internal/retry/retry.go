package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Policy controls how often and how patiently an operation is retried.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Retrier re-invokes a failing operation with exponential backoff.
//
// Attempt i (0-based) that fails with attempts left waits BaseDelay * 2^i
// before the next try. Every error is treated as retryable, there is no
// jitter, and the final error is returned exactly as the operation produced
// it so callers can still match it with errors.Is / errors.As.
type Retrier struct {
	policy Policy
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func New(policy Policy, logger *zap.Logger) *Retrier {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &Retrier{
		policy: policy,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Policy returns the effective policy.
func (r *Retrier) Policy() Policy {
	return r.policy
}

// Run executes op until it succeeds or the attempts are used up.
func (r *Retrier) Run(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < r.policy.Attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == r.policy.Attempts-1 {
			break
		}

		delay := r.Delay(attempt)
		r.logger.Warn("remote call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", r.policy.Attempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return err
		}
	}
	return err
}

// Delay is the wait after the given 0-based failed attempt.
func (r *Retrier) Delay(attempt int) time.Duration {
	return r.policy.BaseDelay * time.Duration(1<<attempt)
}

// Value is Run for operations that produce a result.
func Value[T any](ctx context.Context, r *Retrier, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Run(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
