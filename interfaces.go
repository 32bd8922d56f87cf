package loom

import "context"

// Planner is the reasoning component. Given sanitized input it returns a
// plan candidate: either a structured map containing at least a capability
// name (plus an optional argument map), or free text carrying the answer
// directly.
type Planner interface {
	Plan(ctx context.Context, input string) (any, error)
}

// Capability represents a named, invocable unit of functionality with a
// declared argument schema.
type Capability interface {
	// Name returns the capability's unique identifier.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Execute runs the capability with resolved arguments.
	Execute(ctx context.Context, args map[string]any) (any, error)

	// Schema returns a structured description of the capability: name,
	// description, and parameter names/types/required flags. Used for
	// introspection; not enforced at call time by the core.
	Schema() map[string]any
}

// Executor turns an invocation into a uniform Outcome. The concrete
// implementation lives in internal/executor and is injected at composition
// time.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) Outcome
}

// Cache stores plan candidates keyed by sanitized question.
type Cache interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
}
