package loom

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/threadworks/loom/internal/guard"
	"github.com/threadworks/loom/internal/telemetry"
)

// newProcessStateMachine builds the full answer pipeline as a state machine.
func newProcessStateMachine(rt *Runtime) *StateMachine {
	sm := NewStateMachine(rt.sink)

	sm.RegisterTransition(StateReceived, createReceivedTransition(rt))
	sm.RegisterTransition(StatePlanning, createPlanningTransition(rt))
	sm.RegisterTransition(StateExecuting, createExecutingTransition(rt))
	sm.RegisterTransition(StateValidating, createValidatingTransition(rt))
	sm.RegisterTransition(StateErrored, createErroredTransition(rt))

	return sm
}

// createReceivedTransition sanitizes the raw question.
func createReceivedTransition(rt *Runtime) StateTransition {
	return func(ctx context.Context, sink telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		sanitized, err := guard.Sanitize(pCtx.Request.Raw, rt.config.MaxInputLength)
		if err != nil {
			pCtx.SetError(NewEmptyInputError(string(StateReceived)), string(StateReceived))
			return StateErrored, nil
		}
		pCtx.Request.Sanitized = sanitized

		telemetry.Log(sink, telemetry.EventQuestionReceived, map[string]any{
			"request_id": pCtx.Request.ID,
			"length":     len(sanitized),
		})
		return StatePlanning, nil
	}
}

// createPlanningTransition obtains a plan candidate from the reasoning
// component and interprets it.
func createPlanningTransition(rt *Runtime) StateTransition {
	return func(ctx context.Context, sink telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		input := pCtx.Request.Sanitized
		if len(pCtx.Steps) > 0 {
			// Re-planning round: let the planner see what the last capability
			// produced.
			last := pCtx.Steps[len(pCtx.Steps)-1]
			input = fmt.Sprintf("%s\nPrevious result: %s", input, FormatOutput(last.Value))
		}

		telemetry.Log(sink, telemetry.EventPlanStarted, map[string]any{
			"request_id": pCtx.Request.ID,
			"iteration":  pCtx.Iteration,
		})

		candidate, cached := rt.cachedPlan(ctx, input)
		if !cached {
			var err error
			candidate, err = rt.planner.Plan(ctx, input)
			if err != nil {
				telemetry.Log(sink, telemetry.EventPlanFailure, map[string]any{
					"request_id": pCtx.Request.ID,
					"error":      err.Error(),
				})
				pCtx.SetError(NewReasoningError(err), string(StatePlanning))
				return StateErrored, nil
			}
			rt.storePlan(ctx, input, candidate)
		}
		pCtx.PlanCandidate = candidate
		pCtx.Plan = Interpret(candidate)

		telemetry.Log(sink, telemetry.EventPlanGenerated, map[string]any{
			"request_id":    pCtx.Request.ID,
			"is_invocation": pCtx.Plan.IsInvocation(),
			"cached":        cached,
		})

		if pCtx.Plan.IsInvocation() {
			return StateExecuting, nil
		}
		pCtx.Answer = pCtx.Plan.Answer
		return StateValidating, nil
	}
}

// createExecutingTransition runs the planned capability under the retry and
// execution policies.
func createExecutingTransition(rt *Runtime) StateTransition {
	return func(ctx context.Context, sink telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		pCtx.StepCount++

		// Budget checks are advisory: an exhausted budget validates the best
		// answer so far instead of failing the request.
		if !rt.policies.CheckStepLimit(pCtx.StepCount) {
			log.Printf("step budget reached for request %s after %d steps", pCtx.Request.ID, pCtx.StepCount-1)
			return StateValidating, nil
		}
		if !rt.policies.CheckTimeLimit(pCtx.StartTime) {
			log.Printf("time budget reached for request %s after %v", pCtx.Request.ID, pCtx.Elapsed())
			return StateValidating, nil
		}

		inv := *pCtx.Plan.Invocation
		if inv.CorrelationID == "" {
			inv.CorrelationID = pCtx.Request.ID
		}

		outcome, err := rt.runInvocation(ctx, sink, pCtx, inv)
		if err != nil {
			telemetry.Log(sink, telemetry.EventCapabilityFailure, map[string]any{
				"request_id": pCtx.Request.ID,
				"capability": inv.Capability,
				"error":      err.Error(),
			})
			pCtx.SetError(err, string(StateExecuting))
			return StateErrored, nil
		}
		pCtx.Steps = append(pCtx.Steps, outcome)
		if outcome.Failed() {
			// Not-found text is the answer for this step.
			pCtx.Answer = outcome.Err
			return StateValidating, nil
		}
		pCtx.Answer = outcome.Value

		telemetry.Log(sink, telemetry.EventCapabilityExecuted, map[string]any{
			"request_id": pCtx.Request.ID,
			"capability": inv.Capability,
		})

		pCtx.Iteration++
		if pCtx.Iteration < rt.config.MaxIterations {
			return StatePlanning, nil
		}
		return StateValidating, nil
	}
}

// runInvocation executes one invocation, retrying under the configured
// policy. Single-attempt configurations skip the retry wrapper so failures
// keep their original message. A not-found outcome is returned as-is: it can
// never succeed on retry, and its message becomes the answer.
func (rt *Runtime) runInvocation(ctx context.Context, sink telemetry.Telemetry, pCtx *ProcessContext, inv Invocation) (Outcome, error) {
	if rt.config.ToolRetry.MaxAttempts <= 1 {
		out := rt.executor.Execute(ctx, inv)
		if out.Failed() && out.Code != ErrCodeNotFound {
			return Outcome{}, errors.New(out.Err)
		}
		return out, nil
	}

	result, err := rt.policies.WithRetry(ctx, func() (any, error) {
		out := rt.executor.Execute(ctx, inv)
		if !out.Failed() || out.Code == ErrCodeNotFound {
			return out, nil
		}
		telemetry.Log(sink, telemetry.EventCapabilityRetry, map[string]any{
			"request_id": pCtx.Request.ID,
			"capability": inv.Capability,
			"error":      out.Err,
		})
		return nil, errors.New(out.Err)
	}, inv.Capability)
	if err != nil {
		return Outcome{}, err
	}
	return result.(Outcome), nil
}

// createValidatingTransition normalizes the answer value into output text.
func createValidatingTransition(rt *Runtime) StateTransition {
	return func(ctx context.Context, sink telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		pCtx.FinalAnswer = FormatOutput(pCtx.Answer)

		telemetry.Log(sink, telemetry.EventAnswerValidated, map[string]any{
			"request_id": pCtx.Request.ID,
			"length":     len(pCtx.FinalAnswer),
			"steps":      len(pCtx.Steps),
		})
		return StateDone, nil
	}
}

// createErroredTransition folds the recorded failure into the answer text, so
// the caller always receives a string.
func createErroredTransition(rt *Runtime) StateTransition {
	return func(ctx context.Context, sink telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		msg := "unknown error"
		if pCtx.LastError != nil {
			msg = pCtx.LastError.Error()
		}
		pCtx.FinalAnswer = "Error: " + msg

		telemetry.Log(sink, telemetry.EventError, map[string]any{
			"request_id": pCtx.Request.ID,
			"stage":      pCtx.ErrorStage,
			"error":      msg,
		})
		return StateDone, nil
	}
}
