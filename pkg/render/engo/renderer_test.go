package engo

import (
	"testing"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"
	"github.com/chewxy/math32"

	"github.com/opd-ai/go-xpbd/pkg/physics"
)

type fakeTarget struct {
	added   int
	removed []uint64
}

func (f *fakeTarget) Add(*ecs.BasicEntity, *common.RenderComponent, *common.SpaceComponent) {
	f.added++
}

func (f *fakeTarget) Remove(basic ecs.BasicEntity) {
	f.removed = append(f.removed, basic.ID())
}

func bodyState(index uint32, pos physics.Vector2D, radians float32) physics.BodyState {
	shape := physics.NewRectangle(4, 2)
	return physics.BodyState{
		Handle:   physics.BodyHandle{Index: index},
		Position: pos,
		Rotation: radians,
		Vertices: shape.Vertices(pos, physics.FromRadians(radians)),
	}
}

func TestBodyRenderer_Place(t *testing.T) {
	// Zoom 2: world (x, y) maps to screen (2x, 200-2y).
	r := NewBodyRenderer(&fakeTarget{}, NewCamera(100, 100, 200, 200))

	tests := []struct {
		name    string
		radians float32
		wantX   float32
		wantY   float32
		wantRot float32
	}{
		{"axis aligned", 0, 16, 158, 0},
		{"quarter turn", math32.Pi / 2, 18, 164, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space := r.place(bodyState(0, physics.Vec(10, 20), tt.radians))
			if !near(space.Position.X, tt.wantX) || !near(space.Position.Y, tt.wantY) {
				t.Errorf("Position = %v, want (%v, %v)", space.Position, tt.wantX, tt.wantY)
			}
			if !near(space.Width, 8) || !near(space.Height, 4) {
				t.Errorf("size = %vx%v, want 8x4", space.Width, space.Height)
			}
			if !near(space.Rotation, tt.wantRot) {
				t.Errorf("Rotation = %v, want %v", space.Rotation, tt.wantRot)
			}
		})
	}
}

func TestBodyRenderer_EntityLifecycle(t *testing.T) {
	target := &fakeTarget{}
	r := NewBodyRenderer(target, NewCamera(100, 100, 200, 200))
	a := bodyState(0, physics.Vec(10, 10), 0)
	b := bodyState(1, physics.Vec(30, 10), 0)
	b.Static = true

	r.Clear()
	r.RenderBody(a)
	r.RenderBody(b)
	r.Present()
	if r.Len() != 2 || target.added != 2 {
		t.Fatalf("Len() = %d, added = %d, want 2 and 2", r.Len(), target.added)
	}
	if got := r.bodies[b.Handle].render.Color; got != StaticColor {
		t.Errorf("static body color = %v, want %v", got, StaticColor)
	}
	removedID := r.bodies[b.Handle].basic.ID()

	// Re-rendering an existing body reuses its entity.
	r.Clear()
	r.RenderBody(a)
	r.Present()
	if r.Len() != 1 || target.added != 2 {
		t.Errorf("Len() = %d, added = %d, want 1 and 2", r.Len(), target.added)
	}
	if len(target.removed) != 1 || target.removed[0] != removedID {
		t.Errorf("removed = %v, want [%d]", target.removed, removedID)
	}
}

func TestBodyRenderer_ContactMarkers(t *testing.T) {
	target := &fakeTarget{}
	r := NewBodyRenderer(target, NewCamera(100, 100, 200, 200))
	contact := physics.Contact{Response: physics.CollisionResponse{Contact: physics.Vec(50, 50)}}

	r.Clear()
	r.RenderContact(contact)
	r.RenderContact(contact)
	r.Present()
	if len(r.markers) != 2 || target.added != 2 {
		t.Fatalf("markers = %d, added = %d, want 2 and 2", len(r.markers), target.added)
	}
	if pos := r.markers[0].space.Position; !near(pos.X, 98) || !near(pos.Y, 98) {
		t.Errorf("marker at %v, want centered on (100, 100)", pos)
	}

	r.Clear()
	r.RenderContact(contact)
	r.Present()
	if target.added != 2 {
		t.Errorf("added = %d, markers should be reused", target.added)
	}
	if r.markers[0].render.Hidden || !r.markers[1].render.Hidden {
		t.Errorf("hidden = %v, %v, want false, true", r.markers[0].render.Hidden, r.markers[1].render.Hidden)
	}
}
