package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability"
)

// DefaultMaxRetries is the retry budget used when none is configured: three attempts in total.
const DefaultMaxRetries = 2

const previewLength = 200

// RetryFunc re-invokes the model with the same prompt pair and returns the raw text.
type RetryFunc func() (string, error)

// AttemptObserver is notified after every normalize/validate attempt.
type AttemptObserver interface {
	ObserveAttempt(kind domain.SchemaKind, attempt int, err error)
}

// Option configures a Run call.
type Option func(*runOptions)

type runOptions struct {
	observer AttemptObserver
}

// WithObserver reports each attempt to o.
func WithObserver(o AttemptObserver) Option {
	return func(opts *runOptions) {
		opts.observer = o
	}
}

// Run normalizes and validates initial, calling retry for fresh text after each
// failed attempt until maxRetries retries have been spent.
//
// Only extraction, parse and validation failures consume the budget. Any error
// returned by retry aborts the run as-is. When the budget is exhausted Run
// returns a *domain.RetryExhaustedError wrapping the last attempt's error.
func Run[T any](
	ctx context.Context,
	kind domain.SchemaKind,
	initial string,
	retry RetryFunc,
	maxRetries int,
	opts ...Option,
) (T, error) {
	var zero T

	options := runOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if maxRetries < 0 || retry == nil {
		maxRetries = 0
	}

	logger := observability.FromContext(ctx).With(observability.String("schema", kind.String()))

	text := initial
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Info("retrying model call", observability.Int("attempt", attempt+1))

			next, err := retry()
			if err != nil {
				return zero, fmt.Errorf("retry attempt %d: %w", attempt+1, err)
			}
			text = next
		}

		value, err := tryOnce[T](kind, text)
		if options.observer != nil {
			options.observer.ObserveAttempt(kind, attempt, err)
		}

		if err == nil {
			logger.Info("validation successful", observability.Int("attempt", attempt+1))
			return value, nil
		}

		if !retryable(err) {
			return zero, err
		}

		lastErr = err
		logger.Warn("attempt failed",
			observability.Int("attempt", attempt+1),
			observability.Error(err),
			observability.String("response_preview", observability.Preview(text, previewLength)),
		)
	}

	return zero, &domain.RetryExhaustedError{
		Kind:     kind,
		Attempts: maxRetries + 1,
		Last:     lastErr,
	}
}

func tryOnce[T any](kind domain.SchemaKind, text string) (T, error) {
	candidate, err := Normalize(text)
	if err != nil {
		var zero T
		return zero, err
	}
	return ValidateAs[T](kind, candidate)
}

// retryable reports whether err is model output noise rather than a fault.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrExtraction) ||
		errors.Is(err, domain.ErrParse) ||
		errors.Is(err, domain.ErrValidation)
}
