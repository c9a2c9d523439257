package engo

import (
	"testing"

	"github.com/EngoEngine/engo"
	"github.com/chewxy/math32"

	"github.com/opd-ai/go-xpbd/pkg/physics"
)

const tolerance = 1e-3

func near(a, b float32) bool {
	return math32.Abs(a-b) <= tolerance
}

func TestNewCamera_FitsWorld(t *testing.T) {
	tests := []struct {
		name     string
		world    [2]float32
		screen   [2]float32
		wantZoom float32
	}{
		{"square", [2]float32{1000, 1000}, [2]float32{500, 500}, 0.5},
		{"wide screen", [2]float32{1024, 1024}, [2]float32{1024, 768}, 0.75},
		{"tall screen", [2]float32{100, 50}, [2]float32{200, 400}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera(tt.world[0], tt.world[1], tt.screen[0], tt.screen[1])
			if !near(c.Zoom(), tt.wantZoom) {
				t.Errorf("Zoom() = %v, want %v", c.Zoom(), tt.wantZoom)
			}
			if want := physics.Vec(tt.world[0]/2, tt.world[1]/2); c.Center() != want {
				t.Errorf("Center() = %v, want %v", c.Center(), want)
			}
		})
	}
}

func TestCamera_ToScreen(t *testing.T) {
	c := NewCamera(1000, 1000, 500, 500)

	tests := []struct {
		name string
		pos  physics.Vector2D
		want engo.Point
	}{
		{"center", physics.Vec(500, 500), engo.Point{X: 250, Y: 250}},
		{"world origin is bottom-left", physics.Vec(0, 0), engo.Point{X: 0, Y: 500}},
		{"top-right", physics.Vec(1000, 1000), engo.Point{X: 500, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ToScreen(tt.pos)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
				t.Errorf("ToScreen(%v) = %v, want %v", tt.pos, got, tt.want)
			}
			back := c.ToWorld(got)
			if !near(back.X, tt.pos.X) || !near(back.Y, tt.pos.Y) {
				t.Errorf("ToWorld(%v) = %v, want %v", got, back, tt.pos)
			}
		})
	}
}

func TestCamera_SetZoomClamps(t *testing.T) {
	c := NewCamera(1000, 1000, 500, 500)

	tests := []struct {
		zoom float32
		want float32
	}{
		{1, 1},
		{100, 8},
		{0.01, 0.125},
	}
	for _, tt := range tests {
		c.SetZoom(tt.zoom)
		if c.Zoom() != tt.want {
			t.Errorf("SetZoom(%v) gave %v, want %v", tt.zoom, c.Zoom(), tt.want)
		}
	}
}

func TestCameraSystem_Follow(t *testing.T) {
	opts := physics.DefaultOptions()
	opts.Gravity = physics.Vector2D{}
	sim := physics.NewSimulator(opts)
	h := sim.AddBody(physics.BodyDef{Position: physics.Vec(100, 100), Mass: 1, Shape: physics.NewRectangle(2, 2)})

	camera := NewCamera(1000, 1000, 500, 500)
	cs := NewCameraSystem(camera, sim)
	cs.Follow(h)

	cs.follow(0.25)
	if got := camera.Center(); !near(got.X, 300) || !near(got.Y, 300) {
		t.Errorf("after half a step center = %v, want (300, 300)", got)
	}

	cs.follow(1)
	if got := camera.Center(); !near(got.X, 100) || !near(got.Y, 100) {
		t.Errorf("center = %v, want the body at (100, 100)", got)
	}

	if err := sim.RemoveBody(h); err != nil {
		t.Fatal(err)
	}
	cs.follow(1)
	if got := camera.Center(); !near(got.X, 500) || !near(got.Y, 500) {
		t.Errorf("center = %v, want home (500, 500) once the body is gone", got)
	}
	if cs.targetSet {
		t.Error("target still set after the body was removed")
	}
}
