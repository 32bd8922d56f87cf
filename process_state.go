package loom

import (
	"context"
	"fmt"
	"time"

	"github.com/threadworks/loom/internal/telemetry"
)

// ProcessState identifies a stage of the answer pipeline.
type ProcessState string

const (
	// StateReceived is the entry state: raw input awaiting sanitization.
	StateReceived ProcessState = "received"
	// StatePlanning asks the reasoning component for a plan candidate.
	StatePlanning ProcessState = "planning"
	// StateExecuting runs the capability named by the current plan.
	StateExecuting ProcessState = "executing"
	// StateValidating normalizes the answer value into output text.
	StateValidating ProcessState = "validating"
	// StateErrored converts a recorded failure into error text. It is
	// absorbing for the pipeline but not terminal: its transition still
	// runs so the caller always gets an answer string.
	StateErrored ProcessState = "errored"
	// StateDone is the single terminal state.
	StateDone ProcessState = "done"
)

// ProcessContext carries a single request through the state machine. It acts
// as the tape: transitions read and write it, the machine only moves the head.
type ProcessContext struct {
	Request Request

	// Intermediate results
	PlanCandidate any
	Plan          PlanResult
	Steps         []Outcome
	Answer        any
	FinalAnswer   string

	// Iteration bookkeeping
	Iteration int
	StepCount int

	// Error handling
	LastError  error
	ErrorStage string

	// State management
	CurrentState    ProcessState
	StartTime       time.Time
	EndTime         time.Time
	StateStartTimes map[ProcessState]time.Time
}

// NewProcessContext creates a process context for a raw question.
func NewProcessContext(req Request) *ProcessContext {
	return &ProcessContext{
		Request:         req,
		CurrentState:    StateReceived,
		StartTime:       time.Now(),
		StateStartTimes: map[ProcessState]time.Time{StateReceived: time.Now()},
	}
}

// IsTerminal reports whether the machine has finished. Only done is terminal;
// errored still has work to do (producing the error text).
func (pc *ProcessContext) IsTerminal() bool {
	return pc.CurrentState == StateDone
}

// SetError records a failure and moves the machine to the errored state. The
// errored transition turns the failure into the returned answer text.
func (pc *ProcessContext) SetError(err error, stage string) {
	pc.LastError = err
	pc.ErrorStage = stage
	pc.CurrentState = StateErrored
	pc.StateStartTimes[StateErrored] = time.Now()
}

// Complete marks the process done and stamps the end time.
func (pc *ProcessContext) Complete() {
	pc.CurrentState = StateDone
	pc.EndTime = time.Now()
	pc.StateStartTimes[StateDone] = pc.EndTime
}

// Elapsed returns the total duration of the process so far.
func (pc *ProcessContext) Elapsed() time.Duration {
	if pc.CurrentState == StateDone {
		return pc.EndTime.Sub(pc.StartTime)
	}
	return time.Since(pc.StartTime)
}

// StateTransition advances the machine by one state. It returns the next
// state; returning an error without calling SetError moves the machine to
// errored with the current state as the failing stage.
type StateTransition func(ctx context.Context, sink telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error)

// StateMachine drives a ProcessContext through registered transitions.
type StateMachine struct {
	transitions map[ProcessState]StateTransition
	sink        telemetry.Telemetry
}

// NewStateMachine creates a state machine reporting into sink.
func NewStateMachine(sink telemetry.Telemetry) *StateMachine {
	return &StateMachine{
		transitions: make(map[ProcessState]StateTransition),
		sink:        sink,
	}
}

// RegisterTransition registers the transition function for a state.
func (sm *StateMachine) RegisterTransition(state ProcessState, transition StateTransition) {
	sm.transitions[state] = transition
}

// Execute runs the machine until the done state and returns the final answer
// text. Failures are folded into the answer by the errored transition, so the
// returned error reports only machine-level defects (a state with no
// registered transition).
func (sm *StateMachine) Execute(ctx context.Context, pCtx *ProcessContext) (string, error) {
	for !pCtx.IsTerminal() {
		// Cancellation folds into the errored path like any other failure.
		// The errored and done states finish without further blocking work,
		// so they run even under a dead context.
		if pCtx.CurrentState != StateErrored {
			select {
			case <-ctx.Done():
				telemetry.Log(sm.sink, telemetry.EventProcessingCancelled, map[string]any{
					"request_id": pCtx.Request.ID,
					"state":      string(pCtx.CurrentState),
				})
				pCtx.SetError(NewCancelledError(string(pCtx.CurrentState), ctx.Err()), string(pCtx.CurrentState))
				continue
			default:
			}
		}

		transition, exists := sm.transitions[pCtx.CurrentState]
		if !exists {
			err := fmt.Errorf("no transition defined for state: %s", pCtx.CurrentState)
			pCtx.SetError(err, string(pCtx.CurrentState))
			return "", err
		}

		nextState, err := transition(ctx, sm.sink, pCtx)
		if err != nil {
			// Transitions normally call SetError themselves; this is the
			// backstop for ones that just return the failure.
			if pCtx.CurrentState != StateErrored {
				pCtx.SetError(err, string(pCtx.CurrentState))
			} else {
				// A failing errored transition cannot be folded again.
				pCtx.LastError = err
				pCtx.Complete()
			}
			continue
		}

		pCtx.CurrentState = nextState
		pCtx.StateStartTimes[nextState] = time.Now()
		if nextState == StateDone {
			pCtx.EndTime = time.Now()
		}
	}

	return pCtx.FinalAnswer, nil
}
