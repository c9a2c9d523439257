// pkg/scene/demo.go
package scene

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/opd-ai/go-xpbd/pkg/config"
	"github.com/opd-ai/go-xpbd/pkg/physics"
)

// Demo layout constants, in world units
const (
	SlabThickness   = 16
	CrateSize       = 20
	CrateCount      = 5
	CrateGap        = 0.5
	RopeLinks       = 8
	RopeLinkSpacing = 10
	ProjectileSpeed = 80
	ProjectileSize  = 6

	// ropeGroup keeps neighbouring rope links from colliding with each other.
	ropeGroup = 1
)

// Demo holds the handles of the demonstration level
type Demo struct {
	Ground     physics.BodyHandle
	Crates     []physics.BodyHandle
	Anchor     physics.BodyHandle
	Rope       []physics.BodyHandle
	Projectile physics.BodyHandle

	LaunchPoint physics.Vector2D
	Target      physics.Vector2D
}

// Dynamic returns every non-static body of the demo
func (d *Demo) Dynamic() []physics.BodyHandle {
	handles := make([]physics.BodyHandle, 0, len(d.Crates)+len(d.Rope)+1)
	handles = append(handles, d.Crates...)
	handles = append(handles, d.Rope...)
	return append(handles, d.Projectile)
}

// BuildDemo lays out a ground slab, a crate tower, a rope hanging from a
// static anchor and a projectile fired at the base of the tower.
func BuildDemo(sys *PhysicsSystem, cfg *config.WorldConfig) (*Demo, error) {
	sim := sys.Simulator()
	grid := sim.Options().Grid
	width := float32(grid.Width)
	height := float32(grid.Height)
	ground := cfg.Physics.GroundHeight
	if ground < SlabThickness || ground >= height/2 {
		return nil, fmt.Errorf("ground height %v outside [%d, %v)", ground, SlabThickness, height/2)
	}

	demo := &Demo{}
	_, slab := sys.Spawn(physics.BodyDef{
		Position: physics.Vec(width/2, ground-SlabThickness/2),
		Shape:    physics.NewRectangle(width*0.9, SlabThickness),
	}, false)
	demo.Ground = slab.Handle

	towerX := width * 0.6
	for i := 0; i < CrateCount; i++ {
		y := ground + CrateSize/2 + CrateGap + float32(i)*(CrateSize+CrateGap)
		_, crate := sys.Spawn(physics.BodyDef{
			Position: physics.Vec(towerX, y),
			Mass:     1,
			Shape:    physics.NewRectangle(CrateSize, CrateSize),
		}, false)
		demo.Crates = append(demo.Crates, crate.Handle)
	}

	anchorPos := physics.Vec(width*0.3, height*0.7)
	_, anchor := sys.Spawn(physics.BodyDef{
		Position: anchorPos,
		Shape:    physics.NewRectangle(4, 4),
		Group:    ropeGroup,
	}, false)
	demo.Anchor = anchor.Handle

	previous := anchor.Handle
	for i := 1; i <= RopeLinks; i++ {
		_, link := sys.Spawn(physics.BodyDef{
			// The rope starts horizontal so it swings down.
			Position: anchorPos.Add(physics.Vec(float32(i)*RopeLinkSpacing, 0)),
			Mass:     0.5,
			Shape:    physics.NewRectangle(6, 3),
			Group:    ropeGroup,
		}, false)
		if _, err := sim.AddDistanceConstraint(previous, link.Handle, physics.DistanceDef{
			RestDistance: RopeLinkSpacing,
			Compliance:   cfg.Compliance.Distance,
		}); err != nil {
			return nil, fmt.Errorf("rope link %d: %w", i, err)
		}
		demo.Rope = append(demo.Rope, link.Handle)
		previous = link.Handle
	}

	demo.LaunchPoint = physics.Vec(width*0.1, ground+ProjectileSize)
	demo.Target = physics.Vec(towerX-CrateSize/2, ground+CrateSize/2)
	demo.Projectile = spawnProjectile(sys, cfg, demo.LaunchPoint, demo.Target)

	for _, h := range demo.Dynamic() {
		if _, err := sim.AddGroundConstraint(h, ground, cfg.Compliance.Ground); err != nil {
			return nil, fmt.Errorf("ground line: %w", err)
		}
	}

	return demo, nil
}

// Fire launches another projectile at the tower. It despawns once resting.
func (d *Demo) Fire(sys *PhysicsSystem, cfg *config.WorldConfig) (physics.BodyHandle, error) {
	h := spawnProjectile(sys, cfg, d.LaunchPoint, d.Target)
	if _, err := sys.Simulator().AddGroundConstraint(h, cfg.Physics.GroundHeight, cfg.Compliance.Ground); err != nil {
		return physics.BodyHandle{}, fmt.Errorf("ground line: %w", err)
	}
	return h, nil
}

func spawnProjectile(sys *PhysicsSystem, cfg *config.WorldConfig, from, to physics.Vector2D) physics.BodyHandle {
	g := math32.Abs(cfg.Physics.GravityY)
	velocity, ok := physics.LaunchVelocity(from, to, ProjectileSpeed, g, physics.LowArc)
	if !ok {
		// Out of reach: fire at 45 degrees and let it fall short.
		velocity = physics.FromDegrees(45).Dir().Scale(ProjectileSpeed)
	}
	_, projectile := sys.Spawn(physics.BodyDef{
		Position: from,
		Velocity: velocity,
		Mass:     2,
		Shape:    physics.NewRectangle(ProjectileSize, ProjectileSize),
	}, true)
	return projectile.Handle
}
