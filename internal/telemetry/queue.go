package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// Event is a telemetry event as delivered to queue subscribers.
type Event struct {
	Name      string
	Data      map[string]any
	Timestamp time.Time
}

// Handler receives events from the queue.
type Handler func(Event)

// Queue is an asynchronous telemetry sink. Events are funneled through a
// bounded channel and dispatched to subscribers by a bounded worker pool, so
// slow subscribers serialize behind the queue rather than behind the request.
// Span timing is tracked synchronously; span open/close are also delivered
// as events.
type Queue struct {
	events chan Event
	done   chan struct{}

	mu          sync.RWMutex
	subscribers map[string]Handler
	spans       map[string]span
	closed      bool

	workers    *pool.Pool
	dispatchWG sync.WaitGroup
}

// QueueOption configures a Queue.
type QueueOption func(*queueConfig)

type queueConfig struct {
	bufferSize  int
	workerCount int
}

// WithBufferSize sets the event channel buffer size.
func WithBufferSize(size int) QueueOption {
	return func(c *queueConfig) {
		c.bufferSize = size
	}
}

// WithWorkerCount sets the number of concurrent dispatch workers.
func WithWorkerCount(count int) QueueOption {
	return func(c *queueConfig) {
		c.workerCount = count
	}
}

// NewQueue creates a started telemetry queue.
func NewQueue(options ...QueueOption) *Queue {
	cfg := queueConfig{bufferSize: 100, workerCount: 5}
	for _, option := range options {
		option(&cfg)
	}

	q := &Queue{
		events:      make(chan Event, cfg.bufferSize),
		done:        make(chan struct{}),
		subscribers: make(map[string]Handler),
		spans:       make(map[string]span),
		workers:     pool.New().WithMaxGoroutines(cfg.workerCount),
	}

	q.dispatchWG.Add(1)
	go q.dispatchLoop()

	return q
}

func (q *Queue) dispatchLoop() {
	defer q.dispatchWG.Done()
	for ev := range q.events {
		q.workers.Go(func() {
			q.dispatch(ev)
		})
	}
}

func (q *Queue) dispatch(ev Event) {
	q.mu.RLock()
	handlers := make([]Handler, 0, len(q.subscribers))
	for _, h := range q.subscribers {
		handlers = append(handlers, h)
	}
	q.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() { _ = recover() }()
			h(ev)
		}()
	}
}

// Subscribe registers a handler for all events and returns a subscription ID.
func (q *Queue) Subscribe(handler Handler) (string, error) {
	if handler == nil {
		return "", fmt.Errorf("handler cannot be nil")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", fmt.Errorf("telemetry queue is closed")
	}

	id := uuid.New().String()
	q.subscribers[id] = handler
	return id, nil
}

// Unsubscribe removes a subscription by ID.
func (q *Queue) Unsubscribe(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.subscribers, id)
}

// enqueue delivers an event unless the queue is closed or the buffer is
// full. Dropping on a full buffer keeps the answer path non-blocking. The
// read lock is held across the send: Close flips closed under the write
// lock before closing the channel, so no send can race the close.
func (q *Queue) enqueue(ev Event) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}

	select {
	case q.events <- ev:
	default:
	}
}

// LogEvent implements Telemetry.
func (q *Queue) LogEvent(name string, data map[string]any) {
	q.enqueue(Event{Name: name, Data: data, Timestamp: time.Now()})
}

// StartSpan implements Telemetry.
func (q *Queue) StartSpan(name string, attrs map[string]any) string {
	id := uuid.New().String()
	q.mu.Lock()
	q.spans[id] = span{name: name, start: time.Now()}
	q.mu.Unlock()

	q.enqueue(Event{
		Name:      "span_started",
		Data:      map[string]any{"span": name, "span_id": id, "attrs": attrs},
		Timestamp: time.Now(),
	})
	return id
}

// EndSpan implements Telemetry.
func (q *Queue) EndSpan(spanID string, result any, err error) time.Duration {
	q.mu.Lock()
	sp, ok := q.spans[spanID]
	if ok {
		delete(q.spans, spanID)
	}
	q.mu.Unlock()
	if !ok {
		return 0
	}

	duration := time.Since(sp.start)
	data := map[string]any{
		"span":        sp.name,
		"span_id":     spanID,
		"duration_ms": duration.Milliseconds(),
	}
	if err != nil {
		data["error"] = err.Error()
	} else if result != nil {
		data["result"] = fmt.Sprintf("%.100v", result)
	}
	q.enqueue(Event{Name: "span_ended", Data: data, Timestamp: time.Now()})
	return duration
}

// Close stops accepting events, drains the buffer, and waits for in-flight
// handlers.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	close(q.events)
	q.dispatchWG.Wait()
	q.workers.Wait()
	return nil
}
