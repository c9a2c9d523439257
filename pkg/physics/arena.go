// pkg/physics/arena.go
package physics

import (
	"errors"
	"fmt"
)

// ErrUnknownBody is returned when a handle does not name a live body
var ErrUnknownBody = errors.New("unknown body")

// ErrSameBody is returned when a two-body operation gets one body twice
var ErrSameBody = errors.New("constraint needs two distinct bodies")

// BodyHandle identifies a body in a BodySet. The generation makes handles
// to removed bodies stale even after their slot is reused.
type BodyHandle struct {
	Index      uint32
	Generation uint32
}

// String implements fmt.Stringer
func (h BodyHandle) String() string {
	return fmt.Sprintf("body(%d.%d)", h.Index, h.Generation)
}

type bodySlot struct {
	body       RigidBody
	generation uint32
	alive      bool
}

// BodySet is a slot map of rigid bodies
type BodySet struct {
	slots []bodySlot
	free  []uint32
	count int
}

// NewBodySet creates an empty body set
func NewBodySet() *BodySet {
	return &BodySet{}
}

// Len returns the number of live bodies
func (s *BodySet) Len() int {
	return s.count
}

// Insert stores a body and returns its handle
func (s *BodySet) Insert(body RigidBody) BodyHandle {
	s.count++
	if n := len(s.free); n > 0 {
		index := s.free[n-1]
		s.free = s.free[:n-1]
		slot := &s.slots[index]
		slot.body = body
		slot.alive = true
		return BodyHandle{Index: index, Generation: slot.generation}
	}
	s.slots = append(s.slots, bodySlot{body: body, alive: true})
	return BodyHandle{Index: uint32(len(s.slots) - 1)}
}

// Remove deletes the body behind h
func (s *BodySet) Remove(h BodyHandle) error {
	if _, ok := s.Get(h); !ok {
		return fmt.Errorf("remove %s: %w", h, ErrUnknownBody)
	}
	slot := &s.slots[h.Index]
	slot.alive = false
	slot.generation++
	slot.body = RigidBody{}
	s.free = append(s.free, h.Index)
	s.count--
	return nil
}

// Get returns the body behind h
func (s *BodySet) Get(h BodyHandle) (*RigidBody, bool) {
	if int(h.Index) >= len(s.slots) {
		return nil, false
	}
	slot := &s.slots[h.Index]
	if !slot.alive || slot.generation != h.Generation {
		return nil, false
	}
	return &slot.body, true
}

// Contains reports whether h names a live body
func (s *BodySet) Contains(h BodyHandle) bool {
	_, ok := s.Get(h)
	return ok
}

// Pair returns two distinct bodies at once. Asking for the same slot twice
// is a caller bug and panics; stale handles return false.
func (s *BodySet) Pair(a, b BodyHandle) (*RigidBody, *RigidBody, bool) {
	if a.Index == b.Index {
		panic(fmt.Sprintf("physics: %v: %s and %s", ErrSameBody, a, b))
	}
	first, ok := s.Get(a)
	if !ok {
		return nil, nil, false
	}
	second, ok := s.Get(b)
	if !ok {
		return nil, nil, false
	}
	return first, second, true
}

// handleAt returns the current handle of the live slot at index
func (s *BodySet) handleAt(index uint32) (BodyHandle, bool) {
	if int(index) >= len(s.slots) || !s.slots[index].alive {
		return BodyHandle{}, false
	}
	return BodyHandle{Index: index, Generation: s.slots[index].generation}, true
}

// Each calls fn for every live body in slot order. Stop early by returning false.
func (s *BodySet) Each(fn func(h BodyHandle, body *RigidBody) bool) {
	for i := range s.slots {
		slot := &s.slots[i]
		if !slot.alive {
			continue
		}
		if !fn(BodyHandle{Index: uint32(i), Generation: slot.generation}, &slot.body) {
			return
		}
	}
}
