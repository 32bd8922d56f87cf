// Package policy holds the pure decision logic that bounds an agent run:
// retry/backoff for individual operations and step/time budgets for the
// plan->execute loop.
package policy

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RetryPolicy configures exponential backoff for a retried operation.
// Attempt numbers start at 1.
type RetryPolicy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	ExponentialBase float64
	MaxDelay        time.Duration
}

// DefaultRetryPolicy mirrors the runtime defaults: three attempts, one
// second base delay, doubling, capped at ten seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		ExponentialBase: 2.0,
		MaxDelay:        10 * time.Second,
	}
}

// Delay returns the backoff delay before the retry following the given
// attempt: BaseDelay * ExponentialBase^(attempt-1), capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.ExponentialBase, float64(attempt-1)))
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// ExecutionPolicy bounds the agent loop. Both checks are advisory: the
// orchestrator stops iterating when one fails and returns the best answer
// obtained so far.
type ExecutionPolicy struct {
	MaxSteps         int
	MaxExecutionTime time.Duration
}

// DefaultExecutionPolicy allows ten steps within one minute.
func DefaultExecutionPolicy() ExecutionPolicy {
	return ExecutionPolicy{MaxSteps: 10, MaxExecutionTime: time.Minute}
}

// CheckStepLimit reports whether the given step is still within budget.
func (p ExecutionPolicy) CheckStepLimit(step int) bool {
	return step <= p.MaxSteps
}

// CheckTimeLimit reports whether the elapsed time since start is still
// within budget.
func (p ExecutionPolicy) CheckTimeLimit(start time.Time) bool {
	return time.Since(start) <= p.MaxExecutionTime
}

// Manager bundles the two policies and drives retried operations.
type Manager struct {
	Retry     RetryPolicy
	Execution ExecutionPolicy
}

// NewManager creates a Manager with the given retry policy and the default
// execution policy.
func NewManager(retry RetryPolicy) *Manager {
	return &Manager{Retry: retry, Execution: DefaultExecutionPolicy()}
}

// WithRetry invokes op up to MaxAttempts times, sleeping Delay(attempt)
// between failures. The sleep aborts if ctx is cancelled. On exhaustion the
// returned error embeds the attempt count and the context label.
func (m *Manager) WithRetry(ctx context.Context, op func() (any, error), label string) (any, error) {
	attempts := m.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := op()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Retry.Delay(attempt)):
		}
	}

	return nil, fmt.Errorf("operation failed after %d attempts (context: %s): %w", attempts, label, lastErr)
}

// CheckStepLimit forwards to the execution policy.
func (m *Manager) CheckStepLimit(step int) bool {
	return m.Execution.CheckStepLimit(step)
}

// CheckTimeLimit forwards to the execution policy.
func (m *Manager) CheckTimeLimit(start time.Time) bool {
	return m.Execution.CheckTimeLimit(start)
}
