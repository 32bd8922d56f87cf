// Package executor turns capability invocations into uniform outcomes. It is
// the only place capability code runs, so argument-name validation, lookup,
// timing spans, and panic containment all live here.
package executor

import (
	"context"
	"fmt"

	loom "github.com/threadworks/loom"
	"github.com/threadworks/loom/internal/guard"
	"github.com/threadworks/loom/internal/telemetry"
)

// CapabilityExecutor resolves invocations against a registry and runs them.
type CapabilityExecutor struct {
	registry *loom.Registry
	sink     telemetry.Telemetry
}

// New creates an executor over the given registry, reporting into sink.
func New(registry *loom.Registry, sink telemetry.Telemetry) *CapabilityExecutor {
	return &CapabilityExecutor{registry: registry, sink: sink}
}

// Execute runs one invocation and returns a uniform Outcome. It never
// returns through a panic: capability panics become execution failures.
func (e *CapabilityExecutor) Execute(ctx context.Context, inv loom.Invocation) loom.Outcome {
	if !guard.ValidName(inv.Capability) {
		return loom.ErrorOutcome(inv.CorrelationID,
			loom.NewInvalidNameError("execution", inv.Capability))
	}

	capability, err := e.registry.Get(inv.Capability)
	if err != nil {
		return loom.ErrorOutcome(inv.CorrelationID, err)
	}

	if err := ctx.Err(); err != nil {
		return loom.ErrorOutcome(inv.CorrelationID,
			loom.NewCancelledError("execution", err))
	}

	spanID := telemetry.SpanStart(e.sink, "capability_execution", map[string]any{
		"capability":     inv.Capability,
		"correlation_id": inv.CorrelationID,
	})

	value, execErr := e.invoke(ctx, capability, inv.Args)
	telemetry.SpanEnd(e.sink, spanID, value, execErr)

	if execErr != nil {
		return loom.ErrorOutcome(inv.CorrelationID,
			loom.NewCapabilityExecutionError("execution", inv.Capability, execErr))
	}
	return loom.SuccessOutcome(inv.CorrelationID, value)
}

// invoke runs the capability, converting panics into errors.
func (e *CapabilityExecutor) invoke(ctx context.Context, c loom.Capability, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("capability panicked: %v", r)
		}
	}()
	return c.Execute(ctx, args)
}
