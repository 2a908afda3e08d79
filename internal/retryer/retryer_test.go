package retryer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/fedora-bot/internal/boterr"
)

func TestRetriesTransientErrorsUpToMaxTries(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	r := New(WithMaxTries(3), WithBackoffInitialInterval(time.Millisecond))

	var cnt int
	err := r.Run(context.Background(), func(context.Context) error {
		cnt++
		return boterr.NewTransientAnytimeError(errors.New("503"))
	})

	require.Error(t, err)
	assert.True(t, boterr.IsTransient(err))
	assert.Equal(t, 3, cnt)
}

func TestNonTransientErrorsAreNotRetried(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	r := New(WithBackoffInitialInterval(time.Millisecond))

	var cnt int
	err := r.Run(context.Background(), func(context.Context) error {
		cnt++
		return errors.New("404")
	})

	require.Error(t, err)
	assert.Equal(t, 1, cnt)
}

func TestSucceedsAfterRetry(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	r := New(WithBackoffInitialInterval(time.Millisecond))

	var cnt int
	err := r.Run(context.Background(), func(context.Context) error {
		cnt++
		if cnt == 1 {
			return boterr.NewTransientAnytimeError(errors.New("502"))
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, cnt)
}

func TestRetryAfterTooFarInTheFutureFailsImmediately(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	r := New()

	var cnt int
	err := r.Run(context.Background(), func(context.Context) error {
		cnt++
		return boterr.NewTransientError(errors.New("rate limited"), time.Now().Add(time.Hour))
	})

	require.Error(t, err)
	assert.Equal(t, 1, cnt)
}

func TestBackoffInterval(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	r := New(WithMaxTries(4), WithBackoffInitialInterval(50*time.Millisecond))

	var retryTimes []time.Time

	err := r.Run(context.Background(), func(context.Context) error {
		retryTimes = append(retryTimes, time.Now())
		return boterr.NewTransientAnytimeError(errors.New("err"))
	})
	require.Error(t, err)

	require.Len(t, retryTimes, 4)
	for i := 1; i < len(retryTimes); i++ {
		d := retryTimes[i].Sub(retryTimes[i-1])
		require.GreaterOrEqualf(t, d, minInterval(r),
			"time between retry %d and %d is %s, expected >=%s",
			i-1, i, d, minInterval(r),
		)
	}
}

func TestCancelledContextAbortsRetries(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	r := New(WithMaxTries(100), WithBackoffInitialInterval(time.Second))

	ctx, cancelFn := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancelFn()

	err := r.Run(ctx, func(context.Context) error {
		return boterr.NewTransientAnytimeError(errors.New("err"))
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func minInterval(retryer *Retryer) time.Duration {
	return time.Duration(math.Floor(float64(retryer.backoffInitialInterval) * (1 - retryer.backoffRandomizationFactor)))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
