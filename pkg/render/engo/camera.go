// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-xpbd/pkg/physics"
)

// Camera maps world coordinates (Y up) to screen pixels (Y down)
type Camera struct {
	screen physics.Vector2D

	center physics.Vector2D
	zoom   float32 // pixels per world unit

	minZoom float32
	maxZoom float32
}

// NewCamera centers a world of the given size on the screen and picks the
// largest zoom at which all of it is visible.
func NewCamera(worldWidth, worldHeight, screenWidth, screenHeight float32) *Camera {
	fit := min(screenWidth/worldWidth, screenHeight/worldHeight)
	return &Camera{
		screen:  physics.Vec(screenWidth, screenHeight),
		center:  physics.Vec(worldWidth/2, worldHeight/2),
		zoom:    fit,
		minZoom: fit / 4,
		maxZoom: fit * 16,
	}
}

// Center returns the world point shown in the middle of the screen
func (c *Camera) Center() physics.Vector2D {
	return c.center
}

// SetCenter moves the camera
func (c *Camera) SetCenter(pos physics.Vector2D) {
	c.center = pos
}

// Zoom returns the current zoom level
func (c *Camera) Zoom() float32 {
	return c.zoom
}

// SetZoom sets the zoom level, clamped to the camera's limits
func (c *Camera) SetZoom(zoom float32) {
	c.zoom = min(max(zoom, c.minZoom), c.maxZoom)
}

// ToScreen converts a world position to screen pixels
func (c *Camera) ToScreen(pos physics.Vector2D) engo.Point {
	return engo.Point{
		X: c.screen.X/2 + (pos.X-c.center.X)*c.zoom,
		Y: c.screen.Y/2 - (pos.Y-c.center.Y)*c.zoom,
	}
}

// ToWorld converts screen pixels back to a world position
func (c *Camera) ToWorld(p engo.Point) physics.Vector2D {
	return physics.Vec(
		c.center.X+(p.X-c.screen.X/2)/c.zoom,
		c.center.Y-(p.Y-c.screen.Y/2)/c.zoom,
	)
}

// CameraSystem handles zoom keys and optionally follows a body
type CameraSystem struct {
	camera *Camera
	home   Camera
	sim    *physics.Simulator

	target      physics.BodyHandle
	targetSet   bool
	followSpeed float32
}

// NewCameraSystem creates a camera system driving camera
func NewCameraSystem(camera *Camera, sim *physics.Simulator) *CameraSystem {
	return &CameraSystem{
		camera:      camera,
		home:        *camera,
		sim:         sim,
		followSpeed: 2,
	}
}

// Follow makes the camera track h until it disappears
func (cs *CameraSystem) Follow(h physics.BodyHandle) {
	cs.target = h
	cs.targetSet = true
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(ecs.BasicEntity) {}

// Update handles zoom input and moves toward the followed body
func (cs *CameraSystem) Update(dt float32) {
	if engo.Input.Button(ButtonZoomIn).Down() {
		cs.camera.SetZoom(cs.camera.Zoom() * 1.02)
	}
	if engo.Input.Button(ButtonZoomOut).Down() {
		cs.camera.SetZoom(cs.camera.Zoom() * 0.98)
	}
	if engo.Input.Button(ButtonResetView).JustPressed() {
		*cs.camera = cs.home
		cs.targetSet = false
	}
	cs.follow(dt)
}

// follow eases the camera toward the target body. Once the body is gone the
// camera drifts back to its starting view.
func (cs *CameraSystem) follow(dt float32) {
	goal := cs.home.center
	if cs.targetSet {
		pos, err := cs.sim.Position(cs.target)
		if err != nil {
			cs.targetSet = false
		} else {
			goal = pos
		}
	}

	t := min(cs.followSpeed*dt, 1)
	center := cs.camera.Center()
	cs.camera.SetCenter(center.Add(goal.Sub(center).Scale(t)))
}
