// pkg/scene/system.go
package scene

import (
	"context"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-xpbd/pkg/config"
	"github.com/opd-ai/go-xpbd/pkg/event"
	"github.com/opd-ai/go-xpbd/pkg/logging"
	"github.com/opd-ai/go-xpbd/pkg/physics"
)

// PhysicsPriority places the physics system ahead of render systems
const PhysicsPriority = 100

// BodyComponent links an entity to a simulator body
type BodyComponent struct {
	Handle physics.BodyHandle
	// DespawnWhenResting removes the entity once it has stayed below the
	// resting speed for the configured timeout.
	DespawnWhenResting bool

	restingFor float32
}

// GetBodyComponent returns the component itself
func (c *BodyComponent) GetBodyComponent() *BodyComponent {
	return c
}

type bodyEntity struct {
	*ecs.BasicEntity
	*BodyComponent
}

// PhysicsSystem steps a Simulator as part of an ecs.World and keeps one
// body per entity.
type PhysicsSystem struct {
	world    *ecs.World
	sim      *physics.Simulator
	resting  config.RestingConfig
	logger   *logging.Logger
	entities []bodyEntity

	paused    bool
	despawned int
}

// NewPhysicsSystem wraps sim. A nil logger discards output.
func NewPhysicsSystem(sim *physics.Simulator, resting config.RestingConfig, logger *logging.Logger) *PhysicsSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PhysicsSystem{
		sim:     sim,
		resting: resting,
		logger:  logger.With("component", "physics_system"),
	}
}

// New implements ecs.Initializer
func (s *PhysicsSystem) New(w *ecs.World) {
	s.world = w
}

// Priority implements ecs.Prioritizer
func (s *PhysicsSystem) Priority() int {
	return PhysicsPriority
}

// Simulator returns the wrapped simulator
func (s *PhysicsSystem) Simulator() *physics.Simulator {
	return s.sim
}

// Len returns the number of tracked entities
func (s *PhysicsSystem) Len() int {
	return len(s.entities)
}

// Despawned returns how many entities were removed for resting
func (s *PhysicsSystem) Despawned() int {
	return s.despawned
}

// SetPaused stops or resumes stepping in Update
func (s *PhysicsSystem) SetPaused(paused bool) {
	s.paused = paused
}

// Paused reports whether Update is currently a no-op
func (s *PhysicsSystem) Paused() bool {
	return s.paused
}

// Add tracks an entity whose body already exists in the simulator
func (s *PhysicsSystem) Add(basic *ecs.BasicEntity, body *BodyComponent) {
	s.entities = append(s.entities, bodyEntity{basic, body})
}

// Spawn creates a body from def together with a new entity and tracks it
func (s *PhysicsSystem) Spawn(def physics.BodyDef, despawnWhenResting bool) (*ecs.BasicEntity, *BodyComponent) {
	basic := ecs.NewBasic()
	body := &BodyComponent{
		Handle:             s.sim.AddBody(def),
		DespawnWhenResting: despawnWhenResting,
	}
	s.Add(&basic, body)
	return &basic, body
}

// Body returns the component of the entity with the given id
func (s *PhysicsSystem) Body(id uint64) (*BodyComponent, bool) {
	for _, e := range s.entities {
		if e.ID() == id {
			return e.BodyComponent, true
		}
	}
	return nil, false
}

// Remove implements ecs.System. The entity's body leaves the simulator too.
func (s *PhysicsSystem) Remove(basic ecs.BasicEntity) {
	for i, e := range s.entities {
		if e.ID() != basic.ID() {
			continue
		}
		if err := s.sim.RemoveBody(e.Handle); err != nil {
			s.logger.Warn(context.Background(), "entity body already gone",
				"entity", basic.ID(),
				"error", err.Error(),
			)
		}
		s.entities = append(s.entities[:i], s.entities[i+1:]...)
		return
	}
}

// Update implements ecs.System: one full simulator step, then resting checks
func (s *PhysicsSystem) Update(dt float32) {
	if dt <= 0 || s.paused {
		return
	}
	s.sim.Step(dt)

	var rested []ecs.BasicEntity
	for _, e := range s.entities {
		if !e.DespawnWhenResting {
			continue
		}
		v, err := s.sim.Velocity(e.Handle)
		if err != nil {
			continue
		}
		if v.Length() > s.resting.Speed {
			e.restingFor = 0
			continue
		}
		e.restingFor += dt
		if e.restingFor >= s.resting.Timeout {
			rested = append(rested, *e.BasicEntity)
		}
	}

	for _, basic := range rested {
		s.despawn(basic)
	}
}

func (s *PhysicsSystem) despawn(basic ecs.BasicEntity) {
	body, ok := s.Body(basic.ID())
	if !ok {
		return
	}
	handle := body.Handle

	if s.world != nil {
		s.world.RemoveEntity(basic)
	} else {
		s.Remove(basic)
	}
	s.despawned++

	s.logger.Debug(context.Background(), "resting body despawned",
		"entity", basic.ID(),
		"body", handle.String(),
	)
	if bus := s.sim.Options().Bus; bus != nil {
		bus.Publish(event.NewBodyEvent(event.BodyResting, s, handle.Index, handle.Generation))
	}
}
