// Package loom provides a minimal agent orchestration runtime: it sanitizes
// a question, asks a pluggable reasoning component for a plan, runs the
// planned capability under retry and budget policies, and normalizes the
// result into answer text. The top-level Answer call never fails; every
// failure mode folds into the returned string.
package loom

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/threadworks/loom/internal/policy"
	"github.com/threadworks/loom/internal/telemetry"
)

// Runtime is the main entry point. It wires the reasoning component, the
// capability registry, the executor, and the surrounding policies into a
// single Answer pipeline.
type Runtime struct {
	planner  Planner
	executor Executor
	registry *Registry
	cache    Cache
	sink     telemetry.Telemetry

	policies *policy.Manager
	config   Config
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithConfig sets the runtime configuration.
func WithConfig(config Config) Option {
	return func(r *Runtime) {
		r.config = config
	}
}

// WithPlanner sets the reasoning component.
func WithPlanner(planner Planner) Option {
	return func(r *Runtime) {
		r.planner = planner
	}
}

// WithExecutor sets the capability executor.
func WithExecutor(executor Executor) Option {
	return func(r *Runtime) {
		r.executor = executor
	}
}

// WithRegistry sets the capability registry.
func WithRegistry(registry *Registry) Option {
	return func(r *Runtime) {
		r.registry = registry
	}
}

// WithTelemetry sets the telemetry sink.
func WithTelemetry(sink telemetry.Telemetry) Option {
	return func(r *Runtime) {
		r.sink = sink
	}
}

// WithCache sets the plan cache. It is consulted only when the configuration
// enables plan caching.
func WithCache(cache Cache) Option {
	return func(r *Runtime) {
		r.cache = cache
	}
}

// New creates a Runtime with the provided options. A planner and a non-empty
// registry are required; the executor defaults to the registry-backed one
// installed by cmd wiring, so it is required too.
func New(options ...Option) (*Runtime, error) {
	rt := &Runtime{
		config: DefaultConfig(),
		sink:   telemetry.Noop{},
	}

	for _, option := range options {
		option(rt)
	}

	if rt.planner == nil {
		return nil, NewConfigurationError("planner is required", nil)
	}
	if rt.executor == nil {
		return nil, NewConfigurationError("executor is required", nil)
	}
	if rt.registry == nil || rt.registry.Len() == 0 {
		return nil, NewConfigurationError("at least one capability is required", nil)
	}
	if rt.config.MaxInputLength <= 0 {
		return nil, NewConfigurationError(
			fmt.Sprintf("max input length must be positive, got %d", rt.config.MaxInputLength), nil)
	}
	if rt.config.MaxIterations < 1 {
		rt.config.MaxIterations = 1
	}
	if rt.config.EnablePlanCache && rt.cache == nil {
		return nil, NewConfigurationError("plan cache enabled but no cache provided", nil)
	}

	rt.policies = policy.NewManager(rt.config.ToolRetry)
	rt.policies.Execution = rt.config.Execution

	return rt, nil
}

// Registry returns the capability registry, for registering capabilities
// after construction.
func (r *Runtime) Registry() *Registry {
	return r.registry
}

// Answer runs one question through the full pipeline and returns the answer
// text. It never returns an error: sanitization failures, planner failures,
// capability failures, and cancellation all surface as "Error: ..." text.
func (r *Runtime) Answer(ctx context.Context, question string) string {
	pCtx := NewProcessContext(Request{
		ID:  uuid.New().String(),
		Raw: question,
	})

	answer, err := newProcessStateMachine(r).Execute(ctx, pCtx)
	if err != nil {
		// Only machine-level defects reach here; keep the contract anyway.
		log.Printf("state machine defect for request %s: %v", pCtx.Request.ID, err)
		return "Error: " + err.Error()
	}
	return answer
}

// AnswerAll answers questions concurrently, bounded by limit goroutines
// (unbounded when limit <= 0). The result slice is index-aligned with the
// questions; per the Answer contract no entry can be missing.
func (r *Runtime) AnswerAll(ctx context.Context, questions []string, limit int) []string {
	answers := make([]string, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, q := range questions {
		g.Go(func() error {
			answers[i] = r.Answer(gctx, q)
			return nil
		})
	}
	_ = g.Wait()
	return answers
}

// cachedPlan looks up a plan candidate for the sanitized input. Cache
// failures only disable the hit; they never affect the answer path.
func (r *Runtime) cachedPlan(ctx context.Context, key string) (any, bool) {
	if !r.config.EnablePlanCache || r.cache == nil {
		return nil, false
	}
	candidate, err := r.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	return candidate, true
}

// storePlan records a plan candidate for the sanitized input, best-effort.
func (r *Runtime) storePlan(ctx context.Context, key string, candidate any) {
	if !r.config.EnablePlanCache || r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, candidate); err != nil {
		log.Printf("plan cache write failed: %v", err)
	}
}
