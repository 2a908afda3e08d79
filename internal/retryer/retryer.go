// Package retryer runs operations repeatedly while they fail with a
// boterr.TransientError.
package retryer

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/simplesurance/fedora-bot/internal/boterr"
	"github.com/simplesurance/fedora-bot/internal/logfields"
)

const (
	DefMaxTries               = 3
	DefBackoffInitialInterval = 100 * time.Millisecond
	// DefMaxWait is the longest time the retryer waits for a single
	// retry. Operations that can only be retried later fail.
	DefMaxWait = time.Minute
)

// Retryer executes a function repeatedly until it was successful, it
// failed with a non-transient error or the maximum number of tries was
// reached.
type Retryer struct {
	logger *zap.Logger

	maxTries                   uint
	maxWait                    time.Duration
	backoffInitialInterval     time.Duration
	backoffRandomizationFactor float64
}

type Option func(*Retryer)

func WithMaxTries(n uint) Option {
	return func(r *Retryer) {
		r.maxTries = n
	}
}

func WithBackoffInitialInterval(d time.Duration) Option {
	return func(r *Retryer) {
		r.backoffInitialInterval = d
	}
}

func New(opts ...Option) *Retryer {
	r := Retryer{
		logger:                     zap.L().Named("retryer"),
		maxTries:                   DefMaxTries,
		maxWait:                    DefMaxWait,
		backoffInitialInterval:     DefBackoffInitialInterval,
		backoffRandomizationFactor: backoff.DefaultRandomizationFactor,
	}

	for _, opt := range opts {
		opt(&r)
	}

	return &r
}

// Run executes fn until it was successful, it returned an error that does
// not wrap boterr.TransientError, the maximum number of tries was reached or
// ctx was cancelled.
// The error of the last execution is returned.
func (r *Retryer) Run(ctx context.Context, fn func(context.Context) error, logF ...zap.Field) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.backoffInitialInterval
	bo.RandomizationFactor = r.backoffRandomizationFactor
	bo.MaxElapsedTime = 0
	bo.Reset()

	logger := r.logger.With(logF...)

	for tryCnt := uint(1); ; tryCnt++ {
		err := fn(ctx)
		if err == nil {
			if tryCnt > 1 {
				logger.Debug(
					"operation succeeded after retrying",
					logfields.Event("retry_succeeded"),
					zap.Uint("try_count", tryCnt),
				)
			}

			return nil
		}

		var transientErr *boterr.TransientError
		if !errors.As(err, &transientErr) {
			return err
		}

		if tryCnt >= r.maxTries {
			logger.Debug(
				"giving up retrying, max. tries reached",
				logfields.Event("retry_max_tries_reached"),
				zap.Uint("try_count", tryCnt),
				zap.Error(err),
			)

			return err
		}

		var retryIn time.Duration
		if transientErr.After.IsZero() {
			retryIn = bo.NextBackOff()
		} else {
			retryIn = time.Until(transientErr.After)
			if retryIn < 0 {
				retryIn = bo.NextBackOff()
			}
		}

		if retryIn > r.maxWait {
			logger.Debug(
				"giving up retrying, earliest retry time is too far away",
				logfields.Event("retry_after_too_late"),
				zap.Time("earliest_allowed_retry", transientErr.After),
				zap.Error(err),
			)

			return err
		}

		logger.Debug(
			"operation failed, retry scheduled",
			logfields.Event("retry_scheduled"),
			zap.Uint("try_count", tryCnt),
			zap.Duration("retry_in", retryIn),
			zap.Error(err),
		)

		timer := time.NewTimer(retryIn)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case <-timer.C:
		}
	}
}
