// Package retry runs outbound calls with a bounded number of attempts.
//
// Callers classify each failure as retryable or fatal. Retryable failures
// are retried with a linear backoff until the attempt budget is spent;
// fatal failures return immediately.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// Outcome classifies the result of one attempt.
type Outcome int

const (
	// Ok means the attempt succeeded.
	Ok Outcome = iota

	// Retryable means the attempt failed transiently (timeout, 429, 5xx).
	Retryable

	// Fatal means the attempt failed permanently (other 4xx, bad input).
	Fatal
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Retryable:
		return "retryable"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Policy bounds retries.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// Backoff is the linear step: the wait before attempt n+1 is Backoff*n.
	Backoff time.Duration
}

// DefaultPolicy is three attempts with a 500ms linear step.
var DefaultPolicy = Policy{Attempts: 3, Backoff: 500 * time.Millisecond}

// Func is one attempt. It returns the outcome and the error for that attempt.
type Func func(ctx context.Context) (Outcome, error)

// Do runs fn until it returns Ok or Fatal, or the attempts are exhausted.
// Exhaustion wraps the last error with domain.ErrRetriesExhausted.
func Do(ctx context.Context, p Policy, op string, fn Func) error {
	if p.Attempts < 1 {
		p.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		outcome, err := fn(ctx)
		switch outcome {
		case Ok:
			return nil
		case Fatal:
			return err
		}

		lastErr = err
		if attempt == p.Attempts {
			break
		}

		wait := p.Backoff * time.Duration(attempt)
		logger.Debug("%s: attempt %d/%d failed, retrying in %s: %v", op, attempt, p.Attempts, wait, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrRetriesExhausted, lastErr)
}

// ClassifyStatus maps an HTTP status code to an outcome.
func ClassifyStatus(status int) Outcome {
	switch {
	case status >= 200 && status < 300:
		return Ok
	case status == http.StatusTooManyRequests, status >= 500:
		return Retryable
	default:
		return Fatal
	}
}

// ClassifyError maps a transport error to an outcome. Context cancellation
// is fatal; anything else on the wire is assumed transient.
func ClassifyError(err error) Outcome {
	if err == nil {
		return Ok
	}
	if errors.Is(err, context.Canceled) {
		return Fatal
	}
	return Retryable
}
