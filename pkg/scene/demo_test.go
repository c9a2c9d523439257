package scene

import (
	"testing"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-xpbd/pkg/config"
	"github.com/opd-ai/go-xpbd/pkg/physics"
)

func buildDemo(t *testing.T, cfg *config.WorldConfig) (*ecs.World, *PhysicsSystem, *Demo) {
	t.Helper()
	sys := NewPhysicsSystem(physics.NewSimulator(cfg.SimulatorOptions()), cfg.Resting, nil)
	world := &ecs.World{}
	world.AddSystem(sys)

	demo, err := BuildDemo(sys, cfg)
	if err != nil {
		t.Fatalf("BuildDemo() error = %v", err)
	}
	return world, sys, demo
}

func TestBuildDemo_Layout(t *testing.T) {
	_, sys, demo := buildDemo(t, config.DefaultConfig())
	sim := sys.Simulator()

	wantBodies := 1 + CrateCount + 1 + RopeLinks + 1
	if sim.BodyCount() != wantBodies || sys.Len() != wantBodies {
		t.Errorf("BodyCount() = %d, Len() = %d, want %d", sim.BodyCount(), sys.Len(), wantBodies)
	}
	dynamic := CrateCount + RopeLinks + 1
	if got := len(demo.Dynamic()); got != dynamic {
		t.Errorf("Dynamic() returned %d handles, want %d", got, dynamic)
	}
	if want := RopeLinks + dynamic; sim.ConstraintCount() != want {
		t.Errorf("ConstraintCount() = %d, want %d", sim.ConstraintCount(), want)
	}

	v, err := sim.Velocity(demo.Projectile)
	if err != nil {
		t.Fatalf("Velocity() error = %v", err)
	}
	if v.X <= 0 || v.Y <= 0 {
		t.Errorf("projectile velocity %v should point up and to the right", v)
	}

	statics := 0
	for _, state := range sim.Bodies() {
		if state.Static {
			statics++
		}
	}
	if statics != 2 {
		t.Errorf("found %d static bodies, want ground and anchor", statics)
	}
}

func TestBuildDemo_RunsStable(t *testing.T) {
	cfg := config.DefaultConfig()
	world, sys, demo := buildDemo(t, cfg)
	sim := sys.Simulator()

	for frame := 0; frame < 240; frame++ {
		world.Update(1.0 / 60)
		if err := sim.CheckFinite(); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
	}

	for _, h := range demo.Crates {
		box, err := sim.AABR(h)
		if err != nil {
			t.Fatalf("AABR(%v) error = %v", h, err)
		}
		if box.Min.Y < cfg.Physics.GroundHeight-1 {
			t.Errorf("crate %v sank below the ground: %+v", h, box)
		}
	}

	anchor, _ := sim.Position(demo.Anchor)
	last, _ := sim.Position(demo.Rope[len(demo.Rope)-1])
	if last.Y >= anchor.Y {
		t.Errorf("rope end %v did not swing below anchor %v", last, anchor)
	}
	if reach := anchor.Distance(last); reach > RopeLinks*RopeLinkSpacing*1.1 {
		t.Errorf("rope stretched to %v", reach)
	}
}

func TestBuildDemo_RejectsBadGround(t *testing.T) {
	for _, height := range []float32{0, 4, 900} {
		cfg := config.DefaultConfig()
		cfg.Physics.GroundHeight = height
		sys := NewPhysicsSystem(physics.NewSimulator(cfg.SimulatorOptions()), cfg.Resting, nil)
		if _, err := BuildDemo(sys, cfg); err == nil {
			t.Errorf("BuildDemo() with ground height %v returned nil error", height)
		}
	}
}

func TestDemo_Fire(t *testing.T) {
	cfg := config.DefaultConfig()
	_, sys, demo := buildDemo(t, cfg)
	sim := sys.Simulator()
	bodies, constraints := sim.BodyCount(), sim.ConstraintCount()

	h, err := demo.Fire(sys, cfg)
	if err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	if sim.BodyCount() != bodies+1 || sim.ConstraintCount() != constraints+1 {
		t.Errorf("BodyCount() = %d, ConstraintCount() = %d, want %d and %d",
			sim.BodyCount(), sim.ConstraintCount(), bodies+1, constraints+1)
	}
	pos, err := sim.Position(h)
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	if pos != demo.LaunchPoint {
		t.Errorf("projectile at %v, want %v", pos, demo.LaunchPoint)
	}
}
