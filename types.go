package loom

import (
	"time"

	"github.com/threadworks/loom/internal/policy"
)

// Request holds a single question as it moves through the pipeline. It is
// created at the start of Answer and immutable once sanitized.
type Request struct {
	ID        string `json:"id"`
	Raw       string `json:"raw"`
	Sanitized string `json:"sanitized"`
}

// Invocation is a concrete request to run one capability with specific
// arguments. It is owned by a single plan step; retries reuse the value but
// run under a fresh attempt.
type Invocation struct {
	Capability    string         `json:"capability"`
	Args          map[string]any `json:"args"`
	CorrelationID string         `json:"correlation_id,omitempty"`
}

// PlanResult is the interpreted form of whatever the reasoning component
// returned: either a capability invocation or a final answer value. Exactly
// one variant is populated.
type PlanResult struct {
	Invocation *Invocation
	Answer     any
}

// IsInvocation reports whether the plan requests a capability call.
func (p PlanResult) IsInvocation() bool {
	return p.Invocation != nil
}

// FinalAnswer builds a PlanResult carrying a direct answer value.
func FinalAnswer(v any) PlanResult {
	return PlanResult{Answer: v}
}

// InvocationResult builds a PlanResult carrying a capability invocation.
func InvocationResult(inv Invocation) PlanResult {
	return PlanResult{Invocation: &inv}
}

// Outcome is the uniform result of running a capability. Exactly one of
// Value and Err is set. Code carries the error kind on failure so the
// orchestrator can make retry decisions without matching on message text.
type Outcome struct {
	CorrelationID string `json:"correlation_id"`
	Value         any    `json:"value,omitempty"`
	Err           string `json:"error,omitempty"`
	Code          string `json:"code,omitempty"`
}

// Failed reports whether the outcome carries an error.
func (o Outcome) Failed() bool {
	return o.Err != ""
}

// SuccessOutcome wraps a capability return value.
func SuccessOutcome(correlationID string, value any) Outcome {
	return Outcome{CorrelationID: correlationID, Value: value}
}

// ErrorOutcome wraps a capability failure.
func ErrorOutcome(correlationID string, err error) Outcome {
	return Outcome{
		CorrelationID: correlationID,
		Err:           err.Error(),
		Code:          ErrorCode(err),
	}
}

// Config holds the configuration options for the runtime.
type Config struct {
	// Maximum sanitized input length; longer input is truncated.
	MaxInputLength int

	// Maximum plan->execute rounds per request. The default of 1 keeps the
	// orchestrator single-shot; higher values re-plan until the execution
	// policy budget runs out.
	MaxIterations int

	// Retry policy applied to capability execution. MaxAttempts of 1 means
	// no retry, which is the default since most capability failures are
	// deterministic.
	ToolRetry policy.RetryPolicy

	// Step/time budget consulted between iterations.
	Execution policy.ExecutionPolicy

	// Cache plan candidates keyed by sanitized question.
	EnablePlanCache bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxInputLength: 10000,
		MaxIterations:  1,
		ToolRetry: policy.RetryPolicy{
			MaxAttempts:     1,
			BaseDelay:       time.Second,
			ExponentialBase: 2.0,
			MaxDelay:        10 * time.Second,
		},
		Execution: policy.ExecutionPolicy{
			MaxSteps:         10,
			MaxExecutionTime: time.Minute,
		},
		EnablePlanCache: false,
	}
}
