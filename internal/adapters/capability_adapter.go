// Package adapters bridges external components into the runtime: plain Go
// functions become capabilities, and reasoning backends (a Genkit flow or
// the keyword stand-in) become planners.
package adapters

import (
	"context"
	"fmt"
)

// GoCapability adapts a plain Go function to the loom.Capability interface.
type GoCapability struct {
	fn          func(ctx context.Context, args map[string]any) (any, error)
	schema      map[string]any
	name        string
	description string
	validator   func(map[string]any) error
}

// CapabilityOption configures a GoCapability.
type CapabilityOption func(*GoCapability)

// WithDescription sets the capability's description.
func WithDescription(description string) CapabilityOption {
	return func(c *GoCapability) {
		c.description = description
		c.schema["description"] = description
	}
}

// WithParameters records the parameter names and their descriptions in the
// schema, for planner prompts.
func WithParameters(parameters map[string]string) CapabilityOption {
	return func(c *GoCapability) {
		c.schema["parameters"] = parameters
	}
}

// WithReturns records the return value description in the schema.
func WithReturns(returns string) CapabilityOption {
	return func(c *GoCapability) {
		c.schema["returns"] = returns
	}
}

// WithExamples adds usage examples to the schema.
func WithExamples(examples []string) CapabilityOption {
	return func(c *GoCapability) {
		c.schema["examples"] = examples
	}
}

// WithValidator sets a custom argument validator, replacing the default
// non-nil check.
func WithValidator(validator func(map[string]any) error) CapabilityOption {
	return func(c *GoCapability) {
		c.validator = validator
	}
}

// NewGoCapability wraps fn as a capability with the given name.
func NewGoCapability(
	name string,
	fn func(ctx context.Context, args map[string]any) (any, error),
	options ...CapabilityOption) *GoCapability {

	c := &GoCapability{
		fn:     fn,
		name:   name,
		schema: map[string]any{"name": name},
		validator: func(args map[string]any) error {
			if args == nil {
				return fmt.Errorf("arguments cannot be nil")
			}
			return nil
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Name implements loom.Capability.
func (c *GoCapability) Name() string {
	return c.name
}

// Description implements loom.Capability.
func (c *GoCapability) Description() string {
	return c.description
}

// Schema implements loom.Capability.
func (c *GoCapability) Schema() map[string]any {
	return c.schema
}

// Execute implements loom.Capability. Arguments are validated before the
// wrapped function runs.
func (c *GoCapability) Execute(ctx context.Context, args map[string]any) (any, error) {
	if c.fn == nil {
		return nil, fmt.Errorf("capability function is nil")
	}
	if c.validator != nil {
		if err := c.validator(args); err != nil {
			return nil, fmt.Errorf("argument validation failed for %s: %w", c.name, err)
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return c.fn(ctx, args)
}
