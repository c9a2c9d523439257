// pkg/event/event_test.go
package event

import (
	"sync"
	"testing"
)

// TestNewEventBus tests the creation of a new event bus
func TestNewEventBus_Creation_ReturnsInitializedBus(t *testing.T) {
	bus := NewEventBus()

	if bus == nil {
		t.Fatal("NewEventBus() returned nil")
	}
	if bus.handlers == nil {
		t.Error("handlers map not initialized")
	}
	if bus.nextID != 0 {
		t.Errorf("expected nextID to be 0, got %d", bus.nextID)
	}
}

func TestBaseEvent_GetType_ReturnsCorrectType(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    any
	}{
		{"BodyCreated event", BodyCreated, "simulator"},
		{"BodyRemoved event", BodyRemoved, 42},
		{"BodyCollision event", BodyCollision, nil},
		{"BodyResting event", BodyResting, struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &BaseEvent{EventType: tt.eventType, Source: tt.source}
			if event.GetType() != tt.eventType {
				t.Errorf("GetType() = %v, want %v", event.GetType(), tt.eventType)
			}
			if event.GetSource() != tt.source {
				t.Errorf("GetSource() = %v, want %v", event.GetSource(), tt.source)
			}
		})
	}
}

func TestBusSubscribe_MultipleHandlers_UniqueIDs(t *testing.T) {
	bus := NewEventBus()

	first := bus.Subscribe(BodyCreated, func(Event) {})
	second := bus.Subscribe(BodyCreated, func(Event) {})
	third := bus.Subscribe(BodyRemoved, func(Event) {})

	if first == second || second == third || first == third {
		t.Errorf("expected unique subscription IDs, got %d %d %d", first, second, third)
	}
	if len(bus.handlers[BodyCreated]) != 2 {
		t.Errorf("expected 2 BodyCreated handlers, got %d", len(bus.handlers[BodyCreated]))
	}
	if len(bus.handlers[BodyRemoved]) != 1 {
		t.Errorf("expected 1 BodyRemoved handler, got %d", len(bus.handlers[BodyRemoved]))
	}
}

func TestBusPublish_WithSubscribers_CallsHandlersInOrder(t *testing.T) {
	bus := NewEventBus()
	var order []int

	bus.Subscribe(BodyCollision, func(Event) { order = append(order, 1) })
	bus.Subscribe(BodyCollision, func(Event) { order = append(order, 2) })
	bus.Subscribe(BodyCreated, func(Event) { order = append(order, 99) })

	bus.Publish(NewCollisionEvent(nil, 0, 1, 0, 1, 0.5))

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("handlers called as %v, want [1 2]", order)
	}
}

func TestBusPublish_NoSubscribers_NoPanic(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(NewBodyEvent(BodyResting, nil, 3, 1))
}

func TestBusUnsubscribe_ValidSubscription_RemovesHandler(t *testing.T) {
	bus := NewEventBus()
	calls := 0

	id := bus.Subscribe(BodyRemoved, func(Event) { calls++ })
	keep := bus.Subscribe(BodyRemoved, func(Event) { calls += 10 })

	if !bus.Unsubscribe(BodyRemoved, id) {
		t.Fatal("Unsubscribe() returned false for a live subscription")
	}
	if bus.Unsubscribe(BodyRemoved, id) {
		t.Error("second Unsubscribe() returned true")
	}
	if bus.Unsubscribe(BodyCreated, keep) {
		t.Error("Unsubscribe() with the wrong event type returned true")
	}

	bus.Publish(NewBodyEvent(BodyRemoved, nil, 0, 0))
	if calls != 10 {
		t.Errorf("expected only the remaining handler to run, calls = %d", calls)
	}
}

func TestBusSubscribe_ConcurrentAccess_ThreadSafe(t *testing.T) {
	bus := NewEventBus()
	var wg sync.WaitGroup
	var mu sync.Mutex
	received := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := bus.Subscribe(BodyCreated, func(Event) {
				mu.Lock()
				received++
				mu.Unlock()
			})
			bus.Publish(NewBodyEvent(BodyCreated, nil, 0, 0))
			bus.Unsubscribe(BodyCreated, id)
		}()
	}
	wg.Wait()

	if received == 0 {
		t.Error("expected at least one delivery")
	}
	if n := len(bus.handlers[BodyCreated]); n != 0 {
		t.Errorf("expected all handlers removed, %d left", n)
	}
}

func TestNewBodyEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	event := NewBodyEvent(BodyResting, "scene", 7, 2)

	if event.GetType() != BodyResting {
		t.Errorf("GetType() = %v, want %v", event.GetType(), BodyResting)
	}
	if event.GetSource() != "scene" {
		t.Errorf("GetSource() = %v, want scene", event.GetSource())
	}
	if event.BodyIndex != 7 || event.BodyGeneration != 2 {
		t.Errorf("body = %d.%d, want 7.2", event.BodyIndex, event.BodyGeneration)
	}
}

func TestNewCollisionEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	event := NewCollisionEvent("simulator", 1, 4, -1, 0, 0.25)

	if event.GetType() != BodyCollision {
		t.Errorf("GetType() = %v, want %v", event.GetType(), BodyCollision)
	}
	if event.BodyA != 1 || event.BodyB != 4 {
		t.Errorf("bodies = %d,%d, want 1,4", event.BodyA, event.BodyB)
	}
	if event.NormalX != -1 || event.NormalY != 0 || event.Depth != 0.25 {
		t.Errorf("normal = (%v,%v) depth %v", event.NormalX, event.NormalY, event.Depth)
	}
}

func TestEventTypes_Constants_AllDistinct(t *testing.T) {
	types := []Type{BodyCreated, BodyRemoved, BodyCollision, BodyResting}
	seen := make(map[Type]bool)
	for _, typ := range types {
		if typ == "" {
			t.Error("empty event type constant")
		}
		if seen[typ] {
			t.Errorf("duplicate event type %q", typ)
		}
		seen[typ] = true
	}
}
