package analytics

import (
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (s *recordingSink) Record(ev Event) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestEmitterDeliversEvents(t *testing.T) {
	sink := &recordingSink{}
	em := NewEmitter(sink, 16)

	em.Emit("newsletter_subscribed", map[string]interface{}{"source": "homepage"})
	em.Emit("investor_application_submitted", nil)
	em.Close()

	if sink.count() != 2 {
		t.Fatalf("delivered = %d, want 2", sink.count())
	}
	if sink.events[0].Name != "newsletter_subscribed" {
		t.Errorf("first event = %q", sink.events[0].Name)
	}
	if sink.events[0].OccurredAt.IsZero() {
		t.Error("event timestamp not set")
	}
}

func TestEmitNeverBlocksOnFullBuffer(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	em := NewEmitter(sink, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			em.Emit("ev", nil)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}

	if em.Dropped() == 0 {
		t.Error("expected drops with a blocked sink and buffer of 1")
	}
	close(sink.block)
	em.Close()
}

func TestCloseIsIdempotent(t *testing.T) {
	em := NewEmitter(&recordingSink{}, 4)
	em.Emit("ev", nil)
	em.Close()
	em.Close()
}
