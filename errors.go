package loom

import (
	"errors"
	"fmt"
)

// Error codes for specific failure types
const (
	ErrCodeEmptyInput          = "EMPTY_INPUT"
	ErrCodeReasoning           = "REASONING_FAILURE"
	ErrCodeInvalidName         = "INVALID_CAPABILITY_NAME"
	ErrCodeNotFound            = "CAPABILITY_NOT_FOUND"
	ErrCodeCapabilityExecution = "CAPABILITY_EXECUTION_FAILURE"
	ErrCodeSerialization       = "SERIALIZATION_FAILURE"
	ErrCodeCancelled           = "CANCELLED"
	ErrCodePolicyExhausted     = "POLICY_EXHAUSTED"
	ErrCodeConfiguration       = "CONFIGURATION_ERROR"
	ErrCodeCache               = "CACHE_ERROR"
)

// AgentError is the error type used throughout the runtime. It carries a
// machine-readable code, the pipeline stage where the failure occurred, and
// the underlying cause if any.
type AgentError struct {
	Code    string
	Stage   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Stage, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Stage, e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error, allowing error chaining.
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// NewError creates a new AgentError.
func NewError(code, stage, message string, cause error) *AgentError {
	return &AgentError{
		Code:    code,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode extracts the AgentError code from err, or "" if err is not an
// AgentError.
func ErrorCode(err error) string {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Specific error constructors

func NewEmptyInputError(stage string) *AgentError {
	return NewError(ErrCodeEmptyInput, stage, "input is empty after sanitization", nil)
}

func NewReasoningError(cause error) *AgentError {
	return NewError(ErrCodeReasoning, "planning", "reasoning component call failed", cause)
}

func NewInvalidNameError(stage, name string) *AgentError {
	return NewError(ErrCodeInvalidName, stage, fmt.Sprintf("invalid capability name %q", name), nil)
}

func NewNotFoundError(stage, name string, available []string) *AgentError {
	return NewError(ErrCodeNotFound, stage,
		fmt.Sprintf("capability %q not found (available: %v)", name, available), nil)
}

func NewCapabilityExecutionError(stage, name string, cause error) *AgentError {
	return NewError(ErrCodeCapabilityExecution, stage,
		fmt.Sprintf("execution failed for capability %q", name), cause)
}

func NewSerializationError(stage string, cause error) *AgentError {
	return NewError(ErrCodeSerialization, stage, "failed to serialize result", cause)
}

func NewCancelledError(stage string, cause error) *AgentError {
	msg := "execution cancelled"
	if cause != nil && cause.Error() != "" && cause.Error() != "context canceled" {
		msg = fmt.Sprintf("execution cancelled: %v", cause)
	}
	return NewError(ErrCodeCancelled, stage, msg, cause)
}

func NewPolicyExhaustedError(stage string, attempts int, label string, cause error) *AgentError {
	return NewError(ErrCodePolicyExhausted, stage,
		fmt.Sprintf("operation failed after %d attempts (context: %s)", attempts, label), cause)
}

func NewConfigurationError(message string, cause error) *AgentError {
	return NewError(ErrCodeConfiguration, "initialization", message, cause)
}

func NewCacheError(stage, operation string, cause error) *AgentError {
	return NewError(ErrCodeCache, stage, fmt.Sprintf("cache operation %q failed", operation), cause)
}

// IsAgentError reports whether err is (or wraps) an AgentError.
func IsAgentError(err error) bool {
	var ae *AgentError
	return errors.As(err, &ae)
}
