// Package analytics provides a fire-and-forget event emitter for submission
// funnel events. Emission never blocks a caller and a full buffer drops the
// event rather than back-pressuring the request path.
package analytics

import (
	"sync"
	"time"

	"github.com/nartaq/forms-service/internal/pkg/logger"
)

// Event is a named analytics event with free-form properties.
type Event struct {
	Name       string                 `json:"name"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// Sink receives drained events. The logger-backed sink is the default;
// a real collector can be swapped in without touching callers.
type Sink interface {
	Record(ev Event)
}

// LogSink writes events to the structured log. Good enough for the current
// traffic; dashboards read them from the log pipeline.
type LogSink struct{}

func (LogSink) Record(ev Event) {
	logger.Info("analytics event", "event", ev.Name, "properties", ev.Properties)
}

// Emitter buffers events on a channel and drains them on one goroutine.
type Emitter struct {
	ch        chan Event
	sink      Sink
	dropped   int64
	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewEmitter starts the drain goroutine. bufferSize <= 0 falls back to 256.
func NewEmitter(sink Sink, bufferSize int) *Emitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	e := &Emitter{
		ch:   make(chan Event, bufferSize),
		sink: sink,
		done: make(chan struct{}),
	}
	go e.drain()
	return e
}

// Emit enqueues an event. Never blocks: a full buffer drops the event and
// counts the drop.
func (e *Emitter) Emit(event string, props map[string]interface{}) {
	select {
	case e.ch <- Event{Name: event, Properties: props, OccurredAt: time.Now()}:
	default:
		e.mu.Lock()
		e.dropped++
		e.mu.Unlock()
	}
}

// Dropped reports how many events were discarded due to a full buffer.
func (e *Emitter) Dropped() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Close flushes buffered events and stops the drain goroutine.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() {
		close(e.ch)
		<-e.done
	})
}

func (e *Emitter) drain() {
	defer close(e.done)
	for ev := range e.ch {
		e.sink.Record(ev)
	}
}
