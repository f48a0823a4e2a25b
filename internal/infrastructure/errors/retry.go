package errors

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"readerdesk/internal/infrastructure/logging"
)

// Policy controls how an operation is retried
type Policy struct {
	Attempts int           // total attempts, including the first
	Delay    time.Duration // wait before the second attempt
	MaxDelay time.Duration
	Factor   float64     // growth of the wait per attempt
	Codes    []ErrorCode // codes worth retrying; others fail immediately
}

// DefaultPolicy retries busy and timed out operations with exponential backoff
func DefaultPolicy() Policy {
	return Policy{
		Attempts: 3,
		Delay:    100 * time.Millisecond,
		MaxDelay: 5 * time.Second,
		Factor:   2,
		Codes:    []ErrorCode{ErrCodeBusy, ErrCodeTimeout},
	}
}

// QuickPolicy suits fast local operations such as config file writes
func QuickPolicy() Policy {
	return Policy{
		Attempts: 3,
		Delay:    50 * time.Millisecond,
		MaxDelay: 500 * time.Millisecond,
		Factor:   2,
		Codes:    []ErrorCode{ErrCodeBusy},
	}
}

var retryLogger atomic.Pointer[logging.Logger]

// SetDefaultRetryLogger routes retry messages to logger
func SetDefaultRetryLogger(logger logging.Logger) {
	if logger == nil {
		retryLogger.Store(nil)
		return
	}
	retryLogger.Store(&logger)
}

func logRetry(msg string, fields ...interface{}) {
	if l := retryLogger.Load(); l != nil {
		(*l).Warn(msg, append(fields, "component", "retry")...)
	}
}

func (p Policy) retryable(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.IsRetryable() && slices.Contains(p.Codes, appErr.Code)
}

// wait returns the delay after the given zero-based attempt
func (p Policy) wait(attempt int) time.Duration {
	d := float64(p.Delay)
	for range attempt {
		d *= p.Factor
	}
	return min(time.Duration(d), p.MaxDelay)
}

// Retry runs op until it succeeds, fails with an error the policy does not
// retry, runs out of attempts or ctx is done.
func Retry(ctx context.Context, name string, p Policy, op func() error) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	var err error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if err = op(); err == nil {
			if attempt > 0 {
				logRetry("Operation succeeded after retry", "operation", name, "attempts", attempt+1)
			}
			return nil
		}
		if !p.retryable(err) {
			return err
		}
		if attempt == p.Attempts-1 {
			break
		}

		delay := p.wait(attempt)
		logRetry("Operation failed, retrying", "operation", name,
			"attempt", attempt+1, "max_attempts", p.Attempts, "delay", delay.String(), "error", err.Error())

		select {
		case <-ctx.Done():
			return fmt.Errorf("operation '%s' cancelled during retry: %w", name, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("operation '%s' failed after %d attempts: %w", name, p.Attempts, err)
}

// RetryQuick retries op with QuickPolicy
func RetryQuick(ctx context.Context, name string, op func() error) error {
	return Retry(ctx, name, QuickPolicy(), op)
}
