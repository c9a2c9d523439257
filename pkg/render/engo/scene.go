// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-xpbd/pkg/config"
	"github.com/opd-ai/go-xpbd/pkg/event"
	"github.com/opd-ai/go-xpbd/pkg/logging"
	"github.com/opd-ai/go-xpbd/pkg/physics"
	"github.com/opd-ai/go-xpbd/pkg/render"
	"github.com/opd-ai/go-xpbd/pkg/scene"
)

// Title is the window title prefix
const Title = "XPBD Sandbox"

// drawPriority runs the draw system after physics and before rendering
const drawPriority = scene.PhysicsPriority - 1

// drawSystem copies simulator state into render entities once per frame
type drawSystem struct {
	renderer render.Renderer
	sim      *physics.Simulator
}

func (d *drawSystem) Priority() int { return drawPriority }

func (d *drawSystem) Remove(ecs.BasicEntity) {}

func (d *drawSystem) Update(float32) { render.Draw(d.renderer, d.sim) }

// SandboxScene runs the demo level in an engo window
type SandboxScene struct {
	cfg    *config.WorldConfig
	bus    *event.Bus
	logger *logging.Logger

	width  float32
	height float32

	physics *scene.PhysicsSystem
	demo    *scene.Demo
}

// NewSandboxScene creates a scene for a window of width x height pixels.
// bus and logger are optional.
func NewSandboxScene(cfg *config.WorldConfig, bus *event.Bus, logger *logging.Logger, width, height int) *SandboxScene {
	if logger == nil {
		logger = logging.Discard()
	}
	return &SandboxScene{
		cfg:    cfg,
		bus:    bus,
		logger: logger.With("component", "sandbox_scene"),
		width:  float32(width),
		height: float32(height),
	}
}

// Type implements engo.Scene
func (s *SandboxScene) Type() string {
	return "SandboxScene"
}

// Preload implements engo.Scene. The sandbox draws plain shapes only.
func (s *SandboxScene) Preload() {}

// Setup implements engo.Scene
func (s *SandboxScene) Setup(u engo.Updater) {
	world := u.(*ecs.World)
	common.SetBackground(color.RGBA{16, 16, 24, 255})
	RegisterControls()

	opts := s.cfg.SimulatorOptions()
	opts.Logger = s.logger
	opts.Bus = s.bus
	sim := physics.NewSimulator(opts)

	s.physics = scene.NewPhysicsSystem(sim, s.cfg.Resting, s.logger)
	world.AddSystem(s.physics)

	demo, err := scene.BuildDemo(s.physics, s.cfg)
	if err != nil {
		// Validated configs always fit the demo; anything else is a bug.
		panic("sandbox: " + err.Error())
	}
	s.demo = demo

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	camera := NewCamera(float32(opts.Grid.Width), float32(opts.Grid.Height), s.width, s.height)
	cameraSystem := NewCameraSystem(camera, sim)
	cameraSystem.Follow(demo.Projectile)

	world.AddSystem(&drawSystem{renderer: NewBodyRenderer(renderSystem, camera), sim: sim})
	world.AddSystem(cameraSystem)
	world.AddSystem(NewInputSystem(s.physics, demo, s.cfg, cameraSystem, s.logger))
	world.AddSystem(NewHUDSystem(s.physics, Title))

	s.logger.Info(context.Background(), "sandbox scene ready",
		"bodies", sim.BodyCount(),
		"constraints", sim.ConstraintCount(),
	)
}

// Exit implements engo.Exiter
func (s *SandboxScene) Exit() {
	if s.physics == nil {
		return
	}
	s.logger.Info(context.Background(), "sandbox closed",
		"steps", s.physics.Simulator().StepCount(),
		"despawned", s.physics.Despawned(),
	)
	engo.Exit()
}

// Run opens a window and blocks until it is closed
func Run(s *SandboxScene, fullscreen bool) {
	engo.Run(engo.RunOptions{
		Title:      Title,
		Width:      int(s.width),
		Height:     int(s.height),
		Fullscreen: fullscreen,
		VSync:      true,
	}, s)
}
