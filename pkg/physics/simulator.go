// pkg/physics/simulator.go
package physics

import (
	"context"
	"errors"
	"fmt"

	"github.com/opd-ai/go-xpbd/pkg/event"
	"github.com/opd-ai/go-xpbd/pkg/logging"
)

// ErrUnknownConstraint is returned for constraint handles that are not registered
var ErrUnknownConstraint = errors.New("unknown constraint")

// ErrNonFinite is returned by CheckFinite when a body state holds NaN or Inf
var ErrNonFinite = errors.New("non-finite body state")

// ConstraintHandle identifies a persistent constraint
type ConstraintHandle uint64

// Options configures a Simulator
type Options struct {
	Gravity               Vector2D
	Substeps              int
	Damping               float32
	PenetrationCompliance float32
	Grid                  GridConfig

	// Logger and Bus are optional.
	Logger *logging.Logger
	Bus    *event.Bus
}

// DefaultOptions returns a world of 1024x1024 units with downward gravity
func DefaultOptions() Options {
	return Options{
		Gravity:               Vector2D{X: 0, Y: -9.81},
		Substeps:              8,
		Damping:               0.998,
		PenetrationCompliance: 1e-6,
		Grid:                  GridConfig{Width: 1024, Height: 1024, Step: 32, Bucket: 16},
	}
}

// BodyDef describes a body to create
type BodyDef struct {
	Position        Vector2D
	Rotation        float32 // radians
	Velocity        Vector2D
	AngularVelocity float32
	Mass            float32 // <= 0 makes the body static
	Shape           Rectangle
	// Bodies sharing a non-zero group never collide with each other.
	Group uint32
}

// BodyState is a read-only snapshot of a body for renderers
type BodyState struct {
	Handle   BodyHandle
	Position Vector2D
	Rotation float32
	Vertices [4]Vector2D
	Bounds   AABR
	Static   bool
}

// Contact is a collision found during the last step
type Contact struct {
	A        BodyHandle
	B        BodyHandle
	Response CollisionResponse
}

type constraintEntry struct {
	handle     ConstraintHandle
	constraint Constraint
}

// Simulator drives the XPBD pipeline: integrate, broad phase, narrow phase,
// constraint solve and velocity update, once per sub-step.
//
// A Simulator is not safe for concurrent use.
type Simulator struct {
	opts   Options
	bodies *BodySet
	groups map[uint32]uint32 // slot index -> collision group
	grid   *SpatialGrid

	constraints    []constraintEntry
	nextConstraint ConstraintHandle
	transient      []*PenetrationConstraint
	contacts       []Contact

	logger *logging.Logger
	bus    *event.Bus
	steps  uint64
}

// NewSimulator creates a simulator. It panics on malformed grid dimensions;
// validate user-supplied configuration beforehand.
func NewSimulator(opts Options) *Simulator {
	if opts.Substeps < 1 {
		opts.Substeps = 1
	}
	if opts.Damping <= 0 || opts.Damping > 1 {
		opts.Damping = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Simulator{
		opts:   opts,
		bodies: NewBodySet(),
		groups: make(map[uint32]uint32),
		grid:   NewSpatialGrid(opts.Grid),
		logger: logger.With("component", "simulator"),
		bus:    opts.Bus,
	}
}

// Options returns the simulator configuration
func (s *Simulator) Options() Options {
	return s.opts
}

// BodySet returns the underlying body collection
func (s *Simulator) BodySet() *BodySet {
	return s.bodies
}

// StepCount returns the number of full steps taken
func (s *Simulator) StepCount() uint64 {
	return s.steps
}

// AddBody creates a body and returns its handle
func (s *Simulator) AddBody(def BodyDef) BodyHandle {
	body := NewRigidBody(def.Position, def.Mass, def.Shape)
	body.SetRotation(FromRadians(def.Rotation))
	if !body.IsStatic() {
		body.Velocity = def.Velocity
		body.AngularVelocity = def.AngularVelocity
	}
	h := s.bodies.Insert(body)
	if def.Group != 0 {
		s.groups[h.Index] = def.Group
	} else {
		delete(s.groups, h.Index)
	}

	s.logger.Debug(context.Background(), "body added",
		"body", h.String(),
		"position", def.Position,
		"mass", def.Mass,
		"static", body.IsStatic(),
	)
	s.publish(event.NewBodyEvent(event.BodyCreated, s, h.Index, h.Generation))
	return h
}

// RemoveBody deletes a body and every persistent constraint attached to it
func (s *Simulator) RemoveBody(h BodyHandle) error {
	if err := s.bodies.Remove(h); err != nil {
		return err
	}
	delete(s.groups, h.Index)

	kept := s.constraints[:0]
	pruned := 0
	for _, entry := range s.constraints {
		if entry.constraint.Involves(h) {
			pruned++
			continue
		}
		kept = append(kept, entry)
	}
	clear(s.constraints[len(kept):])
	s.constraints = kept

	s.logger.Debug(context.Background(), "body removed",
		"body", h.String(),
		"constraints_pruned", pruned,
	)
	s.publish(event.NewBodyEvent(event.BodyRemoved, s, h.Index, h.Generation))
	return nil
}

// AddConstraint registers a persistent constraint
func (s *Simulator) AddConstraint(c Constraint) ConstraintHandle {
	s.nextConstraint++
	s.constraints = append(s.constraints, constraintEntry{handle: s.nextConstraint, constraint: c})
	return s.nextConstraint
}

// AddDistanceConstraint links two bodies with a distance constraint
func (s *Simulator) AddDistanceConstraint(a, b BodyHandle, def DistanceDef) (ConstraintHandle, error) {
	for _, h := range []BodyHandle{a, b} {
		if !s.bodies.Contains(h) {
			return 0, fmt.Errorf("distance constraint: %s: %w", h, ErrUnknownBody)
		}
	}
	c, err := NewDistanceConstraint(a, b, def)
	if err != nil {
		return 0, err
	}
	return s.AddConstraint(c), nil
}

// AddGroundConstraint keeps h above the ground line at height
func (s *Simulator) AddGroundConstraint(h BodyHandle, height, compliance float32) (ConstraintHandle, error) {
	if !s.bodies.Contains(h) {
		return 0, fmt.Errorf("ground constraint: %s: %w", h, ErrUnknownBody)
	}
	return s.AddConstraint(NewGroundConstraint(h, height, compliance)), nil
}

// RemoveConstraint unregisters a persistent constraint
func (s *Simulator) RemoveConstraint(handle ConstraintHandle) error {
	for i, entry := range s.constraints {
		if entry.handle == handle {
			s.constraints = append(s.constraints[:i], s.constraints[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove constraint %d: %w", handle, ErrUnknownConstraint)
}

// Constraint returns a registered persistent constraint
func (s *Simulator) Constraint(handle ConstraintHandle) (Constraint, error) {
	for _, entry := range s.constraints {
		if entry.handle == handle {
			return entry.constraint, nil
		}
	}
	return nil, fmt.Errorf("constraint %d: %w", handle, ErrUnknownConstraint)
}

// ConstraintCount returns the number of persistent constraints
func (s *Simulator) ConstraintCount() int {
	return len(s.constraints)
}

// BodyCount returns the number of live bodies
func (s *Simulator) BodyCount() int {
	return s.bodies.Len()
}

func (s *Simulator) body(h BodyHandle) (*RigidBody, error) {
	b, ok := s.bodies.Get(h)
	if !ok {
		return nil, fmt.Errorf("%s: %w", h, ErrUnknownBody)
	}
	return b, nil
}

// AddForce accumulates an external force on h until the end of the next step
func (s *Simulator) AddForce(h BodyHandle, force Vector2D) error {
	b, err := s.body(h)
	if err != nil {
		return err
	}
	b.ExternalForce = b.ExternalForce.Add(force)
	return nil
}

// AddTorque accumulates an external torque on h until the end of the next step
func (s *Simulator) AddTorque(h BodyHandle, torque float32) error {
	b, err := s.body(h)
	if err != nil {
		return err
	}
	b.ExternalTorque += torque
	return nil
}

// SetPosition teleports h without inducing velocity
func (s *Simulator) SetPosition(h BodyHandle, pos Vector2D) error {
	b, err := s.body(h)
	if err != nil {
		return err
	}
	b.SetPosition(pos)
	return nil
}

// SetVelocity overrides the linear velocity of h, e.g. to launch a projectile
func (s *Simulator) SetVelocity(h BodyHandle, v Vector2D) error {
	b, err := s.body(h)
	if err != nil {
		return err
	}
	if !b.IsStatic() {
		b.Velocity = v
	}
	return nil
}

// Position returns the world position of h
func (s *Simulator) Position(h BodyHandle) (Vector2D, error) {
	b, err := s.body(h)
	if err != nil {
		return Vector2D{}, err
	}
	return b.Position, nil
}

// Rotation returns the orientation of h in radians
func (s *Simulator) Rotation(h BodyHandle) (float32, error) {
	b, err := s.body(h)
	if err != nil {
		return 0, err
	}
	return b.Rotation.Radians(), nil
}

// Velocity returns the linear velocity of h
func (s *Simulator) Velocity(h BodyHandle) (Vector2D, error) {
	b, err := s.body(h)
	if err != nil {
		return Vector2D{}, err
	}
	return b.Velocity, nil
}

// AABR returns the world bounding rectangle of h
func (s *Simulator) AABR(h BodyHandle) (AABR, error) {
	b, err := s.body(h)
	if err != nil {
		return AABR{}, err
	}
	return b.AABR(), nil
}

// Bodies returns a snapshot of every live body in slot order
func (s *Simulator) Bodies() []BodyState {
	states := make([]BodyState, 0, s.bodies.Len())
	s.bodies.Each(func(h BodyHandle, b *RigidBody) bool {
		states = append(states, BodyState{
			Handle:   h,
			Position: b.Position,
			Rotation: b.Rotation.Radians(),
			Vertices: b.Shape.Vertices(b.Position, b.Rotation),
			Bounds:   b.AABR(),
			Static:   b.IsStatic(),
		})
		return true
	})
	return states
}

// Contacts returns the collisions found during the last step, one per pair
func (s *Simulator) Contacts() []Contact {
	return append([]Contact(nil), s.contacts...)
}

// CheckFinite reports the first body whose state is NaN or infinite
func (s *Simulator) CheckFinite() error {
	var err error
	s.bodies.Each(func(h BodyHandle, b *RigidBody) bool {
		if !b.Position.IsFinite() || !b.Velocity.IsFinite() || !b.Rotation.Dir().IsFinite() {
			err = fmt.Errorf("%s: %w", h, ErrNonFinite)
			return false
		}
		return true
	})
	return err
}

// Step advances the world by dt using the configured sub-step count
func (s *Simulator) Step(dt float32) {
	s.StepN(dt, s.opts.Substeps)
}

// StepN advances the world by dt split into substeps sub-steps. The whole
// sequence runs to completion; persistent constraint multipliers are reset
// once here, not per sub-step.
func (s *Simulator) StepN(dt float32, substeps int) {
	if dt <= 0 {
		return
	}
	if substeps < 1 {
		substeps = 1
	}
	h := dt / float32(substeps)

	for _, entry := range s.constraints {
		entry.constraint.ResetLambda()
	}
	s.contacts = s.contacts[:0]
	reported := make(map[Pair]struct{})

	pairCount := 0
	for i := 0; i < substeps; i++ {
		s.integrate(h)
		pairs := s.broadPhase()
		pairCount += len(pairs)
		s.narrowPhase(pairs, reported)
		s.solveConstraints(h)
		s.updateVelocities(h)
	}

	s.bodies.Each(func(_ BodyHandle, b *RigidBody) bool {
		b.ClearForces()
		return true
	})
	s.steps++

	for _, c := range s.contacts {
		s.publish(event.NewCollisionEvent(s, c.A.Index, c.B.Index,
			c.Response.Normal.X, c.Response.Normal.Y, c.Response.Depth))
	}
	s.logger.Debug(context.Background(), "step finished",
		"step", s.steps,
		"dt", dt,
		"substeps", substeps,
		"bodies", s.bodies.Len(),
		"candidate_pairs", pairCount,
		"contacts", len(s.contacts),
	)
}

func (s *Simulator) integrate(dt float32) {
	s.bodies.Each(func(_ BodyHandle, b *RigidBody) bool {
		b.Integrate(dt, s.opts.Gravity)
		return true
	})
}

// broadPhase buckets every body's bounding box and returns candidate pairs of
// slot indices. Boxes are clamped into the grid; bodies entirely outside the
// grid take no part in collisions.
func (s *Simulator) broadPhase() []Pair {
	width := float32(s.opts.Grid.Width)
	height := float32(s.opts.Grid.Height)
	s.bodies.Each(func(h BodyHandle, b *RigidBody) bool {
		box := b.AABR()
		if box.Max.X < 0 || box.Max.Y < 0 || box.Min.X >= width || box.Min.Y >= height {
			return true
		}
		lo := Vector2D{X: clamp(box.Min.X, 0, width-1), Y: clamp(box.Min.Y, 0, height-1)}
		hi := Vector2D{X: clamp(box.Max.X, 0, width-1), Y: clamp(box.Max.Y, 0, height-1)}
		s.grid.StoreAABB(lo, hi.Sub(lo), h.Index)
		return true
	})
	if dropped := s.grid.Dropped(); dropped > 0 {
		s.logger.Warn(context.Background(), "grid bucket overflow",
			"dropped", dropped,
			"bucket", s.opts.Grid.Bucket,
		)
	}
	return s.grid.Flush()
}

// narrowPhase runs SAT on every candidate pair and turns overlaps into
// penetration constraints for this sub-step.
func (s *Simulator) narrowPhase(pairs []Pair, reported map[Pair]struct{}) {
	clear(s.transient)
	s.transient = s.transient[:0]
	for _, p := range pairs {
		if g := s.groups[p.A]; g != 0 && g == s.groups[p.B] {
			continue
		}
		ha, okA := s.bodies.handleAt(p.A)
		hb, okB := s.bodies.handleAt(p.B)
		if !okA || !okB {
			continue
		}
		a, b, ok := s.bodies.Pair(ha, hb)
		if !ok || (a.IsStatic() && b.IsStatic()) {
			continue
		}
		response, hit := a.Shape.Collide(a.Position, a.Rotation, b.Shape, b.Position, b.Rotation)
		if !hit {
			continue
		}
		s.transient = append(s.transient,
			NewPenetrationConstraint(ha, hb, a.Position, b.Position, response, s.opts.PenetrationCompliance))
		if _, seen := reported[p]; !seen {
			reported[p] = struct{}{}
			s.contacts = append(s.contacts, Contact{A: ha, B: hb, Response: response})
		}
	}
}

// solveConstraints runs one pass over persistent constraints in registration
// order, then over this sub-step's penetration constraints.
func (s *Simulator) solveConstraints(dt float32) {
	for _, entry := range s.constraints {
		entry.constraint.Solve(s.bodies, dt)
	}
	for _, c := range s.transient {
		c.Solve(s.bodies, dt)
	}
}

func (s *Simulator) updateVelocities(dt float32) {
	s.bodies.Each(func(_ BodyHandle, b *RigidBody) bool {
		b.Solve(s.opts.Damping, dt)
		return true
	})
}

func (s *Simulator) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
