// Package resilience wraps model and index adapters with per-call timeouts,
// bounded retries with exponential backoff, and optional rate limiting.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/prepkit/internal/adapters/driven/httpjson"
	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/logger"
)

// MaxBackoff caps the delay between attempts.
const MaxBackoff = 5 * time.Second

// Policy describes how one boundary is protected.
// The zero value calls through once with no timeout.
type Policy struct {
	// Name labels log lines, e.g. "llm" or "index".
	Name string

	// Timeout bounds a single attempt. Zero means no per-attempt timeout.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BackoffBase is the delay before the first retry.
	BackoffBase time.Duration

	// Limiter throttles attempts when set.
	Limiter *rate.Limiter
}

// NewLimiter returns a token bucket allowing perSecond calls with a burst of one,
// or nil when perSecond is not positive.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Backoff returns the delay before retry number attempt (0-based):
// base << attempt, capped at MaxBackoff.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt > 16 {
		return MaxBackoff
	}
	d := base << attempt
	if d > MaxBackoff || d <= 0 {
		return MaxBackoff
	}
	return d
}

// Retryable reports whether err may succeed on another attempt.
// Caller cancellation and conditions that another attempt cannot change are final,
// including client errors from a provider other than 408 and 429.
func Retryable(err error) bool {
	var se *httpjson.StatusError
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, domain.ErrIndexUnavailable),
		errors.Is(err, domain.ErrDimensionMismatch),
		errors.Is(err, domain.ErrInvalidInput):
		return false
	case errors.As(err, &se):
		return se.Status < 400 || se.Status >= 500 ||
			se.Status == http.StatusRequestTimeout || se.Status == http.StatusTooManyRequests
	default:
		return true
	}
}

// Do runs fn under the policy. Each attempt gets its own timeout; the
// parent context bounds the whole call including backoff sleeps.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if p.Limiter != nil {
			if werr := p.Limiter.Wait(ctx); werr != nil {
				if err != nil {
					return err
				}
				return werr
			}
		}

		err = p.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !Retryable(err) || attempt >= p.MaxRetries {
			return err
		}

		delay := Backoff(p.BackoffBase, attempt)
		logger.Debug("%s: attempt %d failed, retrying in %s: %v", p.Name, attempt+1, delay, err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
	}
}

func (p Policy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return fn(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	err := fn(actx)
	if err != nil && actx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return fmt.Errorf("%s: timed out after %s: %w", p.Name, p.Timeout, err)
	}
	return err
}

// Policies holds one Policy per protected boundary.
type Policies struct {
	LLM       Policy
	Embedding Policy
	Rerank    Policy
	Index     Policy
}

// FromSettings derives the boundary policies from resilience settings.
// Reranking shares the embedding timeout and is never retried: a failed
// rerank degrades to retrieval order instead.
func FromSettings(s domain.ResilienceSettings) Policies {
	return Policies{
		LLM: Policy{
			Name:        "llm",
			Timeout:     s.LLMTimeout,
			MaxRetries:  s.MaxRetries,
			BackoffBase: s.BackoffBase,
			Limiter:     NewLimiter(s.LLMRatePerSecond),
		},
		Embedding: Policy{
			Name:        "embedding",
			Timeout:     s.EmbedTimeout,
			MaxRetries:  s.MaxRetries,
			BackoffBase: s.BackoffBase,
		},
		Rerank: Policy{
			Name:    "rerank",
			Timeout: s.EmbedTimeout,
		},
		Index: Policy{
			Name:        "index",
			Timeout:     s.IndexTimeout,
			MaxRetries:  s.MaxRetries,
			BackoffBase: s.BackoffBase,
		},
	}
}
