package loom

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/threadworks/loom/internal/telemetry"
)

func TestStateMachine_RunsToDone(t *testing.T) {
	sm := NewStateMachine(telemetry.Noop{})
	var visited []ProcessState

	sm.RegisterTransition(StateReceived, func(_ context.Context, _ telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		visited = append(visited, StateReceived)
		return StateValidating, nil
	})
	sm.RegisterTransition(StateValidating, func(_ context.Context, _ telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		visited = append(visited, StateValidating)
		pCtx.FinalAnswer = "ok"
		return StateDone, nil
	})

	answer, err := sm.Execute(context.Background(), NewProcessContext(Request{ID: "r", Raw: "q"}))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if answer != "ok" {
		t.Errorf("expected ok, got %q", answer)
	}
	if len(visited) != 2 {
		t.Errorf("expected 2 transitions, got %v", visited)
	}
}

func TestStateMachine_ErroredTransitionStillRuns(t *testing.T) {
	sm := NewStateMachine(telemetry.Noop{})

	sm.RegisterTransition(StateReceived, func(_ context.Context, _ telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		return StateReceived, errors.New("boom")
	})
	sm.RegisterTransition(StateErrored, func(_ context.Context, _ telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		pCtx.FinalAnswer = "Error: " + pCtx.LastError.Error()
		return StateDone, nil
	})

	answer, err := sm.Execute(context.Background(), NewProcessContext(Request{ID: "r", Raw: "q"}))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(answer, "Error:") || !strings.Contains(answer, "boom") {
		t.Errorf("expected folded error text, got %q", answer)
	}
}

func TestStateMachine_MissingTransitionIsDefect(t *testing.T) {
	sm := NewStateMachine(telemetry.Noop{})

	_, err := sm.Execute(context.Background(), NewProcessContext(Request{ID: "r", Raw: "q"}))
	if err == nil {
		t.Fatal("expected error for missing transition")
	}
	if !strings.Contains(err.Error(), string(StateReceived)) {
		t.Errorf("expected state named in error, got: %v", err)
	}
}

func TestProcessContext_Terminality(t *testing.T) {
	pCtx := NewProcessContext(Request{ID: "r", Raw: "q"})

	if pCtx.IsTerminal() {
		t.Error("fresh context must not be terminal")
	}

	pCtx.SetError(errors.New("x"), "received")
	if pCtx.IsTerminal() {
		t.Error("errored context must not be terminal; its transition still runs")
	}
	if pCtx.CurrentState != StateErrored {
		t.Errorf("expected errored state, got %s", pCtx.CurrentState)
	}

	pCtx.Complete()
	if !pCtx.IsTerminal() {
		t.Error("done context must be terminal")
	}
	if pCtx.Elapsed() < 0 {
		t.Error("elapsed time must be non-negative")
	}
}

func TestStateMachine_CancellationFoldsIntoErrored(t *testing.T) {
	sm := NewStateMachine(telemetry.Noop{})

	sm.RegisterTransition(StateReceived, func(_ context.Context, _ telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		t.Fatal("transition should not run under cancelled context")
		return StateDone, nil
	})
	sm.RegisterTransition(StateErrored, func(_ context.Context, _ telemetry.Telemetry, pCtx *ProcessContext) (ProcessState, error) {
		pCtx.FinalAnswer = "Error: " + pCtx.LastError.Error()
		return StateDone, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	answer, err := sm.Execute(ctx, NewProcessContext(Request{ID: "r", Raw: "q"}))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(answer, "Error:") {
		t.Errorf("expected cancellation folded into answer, got %q", answer)
	}
}
