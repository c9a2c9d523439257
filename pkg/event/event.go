// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	BodyCreated   Type = "body_created"
	BodyRemoved   Type = "body_removed"
	BodyCollision Type = "body_collision"
	BodyResting   Type = "body_resting"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() any
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    any
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() any {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// SubscriptionID identifies a registered handler
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	handler Handler
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]subscription
	nextID   SubscriptionID
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscription),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: b.nextID, handler: handler})
	return b.nextID
}

// Unsubscribe removes a handler registered with Subscribe
func (b *Bus) Unsubscribe(eventType Type, id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// BodyEvent reports a body entering or leaving the simulation, or coming to rest
type BodyEvent struct {
	BaseEvent
	BodyIndex      uint32
	BodyGeneration uint32
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source any, index, generation uint32) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		BodyIndex:      index,
		BodyGeneration: generation,
	}
}

// CollisionEvent contains information about a body pair in contact
type CollisionEvent struct {
	BaseEvent
	BodyA   uint32
	BodyB   uint32
	NormalX float32
	NormalY float32
	Depth   float32
}

// NewCollisionEvent creates a new collision event. Bodies are slot indices.
func NewCollisionEvent(source any, bodyA, bodyB uint32, normalX, normalY, depth float32) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: BodyCollision,
			Source:    source,
		},
		BodyA:   bodyA,
		BodyB:   bodyB,
		NormalX: normalX,
		NormalY: normalY,
		Depth:   depth,
	}
}
