// Package telemetry provides the observability port the orchestrator emits
// into, plus the concrete sinks shipped with the runtime. Emission is always
// best-effort: a failing sink must never affect the answer path.
package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Standard event names emitted by the runtime.
const (
	EventQuestionReceived    = "question_received"
	EventPlanStarted         = "plan_generation_started"
	EventPlanGenerated       = "plan_generation_success"
	EventPlanFailure         = "plan_generation_failure"
	EventCapabilityExecuted  = "capability_execution_success"
	EventCapabilityFailure   = "capability_execution_failure"
	EventCapabilityRetry     = "capability_execution_retry"
	EventAnswerValidated     = "answer_validated"
	EventProcessingCancelled = "processing_cancelled"
	EventError               = "error"
)

// Telemetry is the sink the orchestrator reports into. All calls are
// fire-and-forget from the caller's perspective.
type Telemetry interface {
	// LogEvent records a named event with arbitrary data.
	LogEvent(name string, data map[string]any)

	// StartSpan opens a named timing interval and returns its ID.
	StartSpan(name string, attrs map[string]any) string

	// EndSpan closes a span, recording the result or error, and returns
	// the span duration.
	EndSpan(spanID string, result any, err error) time.Duration
}

// Log emits an event through t, swallowing panics and nil sinks. The
// orchestrator and executor route all emission through these helpers so a
// misbehaving sink cannot break a request.
func Log(t Telemetry, name string, data map[string]any) {
	if t == nil {
		return
	}
	defer func() { _ = recover() }()
	t.LogEvent(name, data)
}

// SpanStart opens a span through t, swallowing panics and nil sinks.
func SpanStart(t Telemetry, name string, attrs map[string]any) string {
	if t == nil {
		return ""
	}
	defer func() { _ = recover() }()
	return t.StartSpan(name, attrs)
}

// SpanEnd closes a span through t, swallowing panics and nil sinks.
func SpanEnd(t Telemetry, spanID string, result any, err error) time.Duration {
	if t == nil {
		return 0
	}
	defer func() { _ = recover() }()
	return t.EndSpan(spanID, result, err)
}

// Noop discards everything.
type Noop struct{}

func (Noop) LogEvent(string, map[string]any)       {}
func (Noop) StartSpan(string, map[string]any) string { return "" }
func (Noop) EndSpan(string, any, error) time.Duration { return 0 }

type span struct {
	name  string
	start time.Time
}

// LogSink writes events and spans to the standard logger.
type LogSink struct {
	mu    sync.Mutex
	spans map[string]span
}

// NewLogSink creates a telemetry sink backed by the standard logger.
func NewLogSink() *LogSink {
	return &LogSink{spans: make(map[string]span)}
}

// LogEvent implements Telemetry.
func (s *LogSink) LogEvent(name string, data map[string]any) {
	log.Printf("TELEMETRY: %s %v", name, data)
}

// StartSpan implements Telemetry.
func (s *LogSink) StartSpan(name string, attrs map[string]any) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.spans[id] = span{name: name, start: time.Now()}
	s.mu.Unlock()
	log.Printf("TELEMETRY: span started (name: %s, id: %s, attrs: %v)", name, id, attrs)
	return id
}

// EndSpan implements Telemetry.
func (s *LogSink) EndSpan(spanID string, result any, err error) time.Duration {
	s.mu.Lock()
	sp, ok := s.spans[spanID]
	if ok {
		delete(s.spans, spanID)
	}
	s.mu.Unlock()
	if !ok {
		return 0
	}

	duration := time.Since(sp.start)
	if err != nil {
		log.Printf("TELEMETRY: span failed (name: %s, duration: %v, error: %v)", sp.name, duration, err)
	} else {
		log.Printf("TELEMETRY: span completed (name: %s, duration: %v)", sp.name, duration)
	}
	return duration
}
