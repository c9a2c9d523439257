// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"github.com/chewxy/math32"

	"github.com/opd-ai/go-xpbd/pkg/physics"
)

// Colors used for bodies and contact markers
var (
	StaticColor  = color.RGBA{128, 128, 128, 255}
	DynamicColor = color.RGBA{230, 180, 60, 255}
	ContactColor = color.RGBA{220, 40, 40, 255}
)

// ContactMarkerSize is the side of a contact marker in pixels
const ContactMarkerSize = 4

// RenderTarget is the part of common.RenderSystem the renderer needs
type RenderTarget interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

type sprite struct {
	basic  ecs.BasicEntity
	render *common.RenderComponent
	space  *common.SpaceComponent
	seen   bool
}

// BodyRenderer keeps one render entity per simulator body. Bodies that are
// not drawn between Clear and Present lose their entity.
type BodyRenderer struct {
	target RenderTarget
	camera *Camera

	bodies  map[physics.BodyHandle]*sprite
	markers []*sprite
	used    int
}

// NewBodyRenderer creates a renderer adding entities to target
func NewBodyRenderer(target RenderTarget, camera *Camera) *BodyRenderer {
	return &BodyRenderer{
		target: target,
		camera: camera,
		bodies: make(map[physics.BodyHandle]*sprite),
	}
}

// Len returns the number of body entities
func (r *BodyRenderer) Len() int {
	return len(r.bodies)
}

func (r *BodyRenderer) newSprite(c color.Color) *sprite {
	s := &sprite{
		basic: ecs.NewBasic(),
		render: &common.RenderComponent{
			Drawable: common.Rectangle{BorderWidth: 1, BorderColor: c},
			Color:    c,
		},
		space: &common.SpaceComponent{},
	}
	r.target.Add(&s.basic, s.render, s.space)
	return s
}

// Clear implements render.Renderer
func (r *BodyRenderer) Clear() {
	for _, s := range r.bodies {
		s.seen = false
	}
	r.used = 0
}

// RenderBody implements render.Renderer
func (r *BodyRenderer) RenderBody(body physics.BodyState) {
	s, ok := r.bodies[body.Handle]
	if !ok {
		c := DynamicColor
		if body.Static {
			c = StaticColor
		}
		s = r.newSprite(c)
		r.bodies[body.Handle] = s
	}
	s.seen = true
	*s.space = r.place(body)
}

// place computes the space component of a body. Engo rotates a sprite
// clockwise around its top-left corner, which is vertex 3 in world space.
func (r *BodyRenderer) place(body physics.BodyState) common.SpaceComponent {
	v := body.Vertices
	zoom := r.camera.Zoom()
	rotation := math32.Mod(-body.Rotation*180/math32.Pi, 360)
	if rotation < 0 {
		rotation += 360
	}
	return common.SpaceComponent{
		Position: r.camera.ToScreen(v[3]),
		Width:    v[1].Distance(v[0]) * zoom,
		Height:   v[3].Distance(v[0]) * zoom,
		Rotation: rotation,
	}
}

// RenderContact implements render.Renderer
func (r *BodyRenderer) RenderContact(contact physics.Contact) {
	if r.used == len(r.markers) {
		r.markers = append(r.markers, r.newSprite(ContactColor))
	}
	m := r.markers[r.used]
	r.used++

	p := r.camera.ToScreen(contact.Response.Contact)
	*m.space = common.SpaceComponent{
		Position: engo.Point{X: p.X - ContactMarkerSize/2, Y: p.Y - ContactMarkerSize/2},
		Width:    ContactMarkerSize,
		Height:   ContactMarkerSize,
	}
	m.render.Hidden = false
}

// Present implements render.Renderer
func (r *BodyRenderer) Present() {
	for h, s := range r.bodies {
		if !s.seen {
			r.target.Remove(s.basic)
			delete(r.bodies, h)
		}
	}
	for _, m := range r.markers[r.used:] {
		m.render.Hidden = true
	}
}
