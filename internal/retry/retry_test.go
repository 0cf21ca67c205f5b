package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRetrier records the requested waits instead of sleeping.
func newTestRetrier(attempts int, base time.Duration) (*Retrier, *[]time.Duration) {
	waits := &[]time.Duration{}
	r := New(Policy{Attempts: attempts, BaseDelay: base}, zap.NewNop())
	r.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return r, waits
}

func TestRun_SucceedsAfterNMinusOneFailures(t *testing.T) {
	r, waits := newTestRetrier(4, 100*time.Millisecond)

	calls := 0
	got, err := Value(context.Background(), r, func(ctx context.Context) (string, error) {
		calls++
		if calls < 4 {
			return "", fmt.Errorf("transient %d", calls)
		}
		return "rows", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "rows", got)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}, *waits)
}

func TestRun_PropagatesFinalErrorUnchanged(t *testing.T) {
	r, waits := newTestRetrier(3, 10*time.Millisecond)
	final := errors.New("quota exceeded")

	calls := 0
	err := r.Run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 3 {
			return final
		}
		return errors.New("earlier failure")
	})

	assert.Same(t, final, err)
	assert.Equal(t, 3, calls)

	var total time.Duration
	for _, w := range *waits {
		total += w
	}
	// sum(base * 2^i for i in 0..N-2)
	assert.Equal(t, 30*time.Millisecond, total)
}

func TestRun_NoWaitOnFirstSuccess(t *testing.T) {
	r, waits := newTestRetrier(3, time.Second)

	err := r.Run(context.Background(), func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	assert.Empty(t, *waits)
}

func TestNew_AttemptsAtLeastOne(t *testing.T) {
	r, _ := newTestRetrier(0, time.Second)
	assert.Equal(t, 1, r.Policy().Attempts)

	calls := 0
	_ = r.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})
	assert.Equal(t, 1, calls)
}

func TestRun_CancelledWaitReturnsLastError(t *testing.T) {
	r := New(Policy{Attempts: 5, BaseDelay: time.Hour}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	boom := errors.New("boom")
	calls := 0
	err := r.Run(ctx, func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestRun_RealSleepApproximatesBackoff(t *testing.T) {
	r := New(Policy{Attempts: 3, BaseDelay: 5 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	_ = r.Run(context.Background(), func(ctx context.Context) error {
		return errors.New("always")
	})

	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
