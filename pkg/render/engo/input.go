// pkg/render/engo/input.go
package engo

import (
	"context"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-xpbd/pkg/config"
	"github.com/opd-ai/go-xpbd/pkg/logging"
	"github.com/opd-ai/go-xpbd/pkg/scene"
)

// Button names registered by RegisterControls
const (
	ButtonPause     = "pause"
	ButtonStep      = "step"
	ButtonFire      = "fire"
	ButtonZoomIn    = "zoomIn"
	ButtonZoomOut   = "zoomOut"
	ButtonResetView = "resetView"
)

// StepSeconds is the time advanced by one manual step while paused
const StepSeconds = 1.0 / 60

// RegisterControls binds the sandbox keys
func RegisterControls() {
	engo.Input.RegisterButton(ButtonPause, engo.KeyP)
	engo.Input.RegisterButton(ButtonStep, engo.KeyN)
	engo.Input.RegisterButton(ButtonFire, engo.KeySpace)
	engo.Input.RegisterButton(ButtonZoomIn, engo.KeyEquals)
	engo.Input.RegisterButton(ButtonZoomOut, engo.KeyDash)
	engo.Input.RegisterButton(ButtonResetView, engo.KeyZero)
}

// InputSystem pauses, steps and fires projectiles from the keyboard
type InputSystem struct {
	sys    *scene.PhysicsSystem
	demo   *scene.Demo
	cfg    *config.WorldConfig
	camera *CameraSystem
	logger *logging.Logger
}

// NewInputSystem creates an input system. camera may be nil.
func NewInputSystem(sys *scene.PhysicsSystem, demo *scene.Demo, cfg *config.WorldConfig, camera *CameraSystem, logger *logging.Logger) *InputSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &InputSystem{
		sys:    sys,
		demo:   demo,
		cfg:    cfg,
		camera: camera,
		logger: logger.With("component", "input"),
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(ecs.BasicEntity) {}

// Update polls the bound buttons
func (is *InputSystem) Update(float32) {
	if engo.Input.Button(ButtonPause).JustPressed() {
		is.togglePause()
	}
	if engo.Input.Button(ButtonStep).JustPressed() {
		is.step()
	}
	if engo.Input.Button(ButtonFire).JustPressed() {
		is.fire()
	}
}

func (is *InputSystem) togglePause() {
	is.sys.SetPaused(!is.sys.Paused())
	is.logger.Info(context.Background(), "pause toggled", "paused", is.sys.Paused())
}

// step advances a paused simulation by one frame
func (is *InputSystem) step() {
	if !is.sys.Paused() {
		return
	}
	is.sys.Simulator().Step(StepSeconds)
}

func (is *InputSystem) fire() {
	h, err := is.demo.Fire(is.sys, is.cfg)
	if err != nil {
		is.logger.Error(context.Background(), "fire failed", err)
		return
	}
	is.logger.Info(context.Background(), "projectile fired", "body", h.String())
	if is.camera != nil {
		is.camera.Follow(h)
	}
}
