// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-xpbd/pkg/logging"
	"github.com/opd-ai/go-xpbd/pkg/physics"
)

// Renderer draws snapshots of a simulator
type Renderer interface {
	Clear()
	RenderBody(body physics.BodyState)
	RenderContact(contact physics.Contact)
	Present()
}

// Draw renders one frame: every live body, then the contacts of the last step
func Draw(r Renderer, sim *physics.Simulator) {
	r.Clear()
	for _, body := range sim.Bodies() {
		r.RenderBody(body)
	}
	for _, contact := range sim.Contacts() {
		r.RenderContact(contact)
	}
	r.Present()
}

// NullRenderer draws nothing and logs each call at debug level.
type NullRenderer struct {
	logger *logging.Logger
	frames int
}

// NewNullRenderer creates a NullRenderer. A nil logger logs to stdout.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{
		logger: logger.With("component", "null_renderer"),
	}
}

// Frames returns the number of presented frames
func (d *NullRenderer) Frames() int {
	return d.frames
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "clear")
}

// RenderBody implements Renderer.
func (d *NullRenderer) RenderBody(body physics.BodyState) {
	d.logger.Debug(context.Background(), "render body",
		"body", body.Handle.String(),
		"x", body.Position.X,
		"y", body.Position.Y,
		"rotation", body.Rotation,
		"static", body.Static,
	)
}

// RenderContact implements Renderer.
func (d *NullRenderer) RenderContact(contact physics.Contact) {
	d.logger.Debug(context.Background(), "render contact",
		"a", contact.A.String(),
		"b", contact.B.String(),
		"depth", contact.Response.Depth,
	)
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.frames++
	d.logger.Debug(context.Background(), "present", "frame", d.frames)
}
