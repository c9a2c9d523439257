package render

import (
	"io"
	"strings"

	"github.com/chewxy/math32"

	"github.com/opd-ai/go-xpbd/pkg/physics"
)

// Glyphs used by TerminalRenderer
const (
	StaticGlyph  = '#'
	DynamicGlyph = 'o'
	ContactGlyph = '*'
)

// TerminalRenderer draws body outlines as ASCII art. World Y points up, so
// the bottom row of the frame shows the lowest world cells.
type TerminalRenderer struct {
	out    io.Writer
	width  int
	height int
	buffer [][]rune
	scale  float32 // world units per cell
	origin physics.Vector2D
	ansi   bool
	err    error
}

// NewTerminalRenderer creates a renderer of width x height cells, each
// covering scale world units, writing frames to out.
func NewTerminalRenderer(out io.Writer, width, height int, scale float32) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}
	if scale <= 0 {
		scale = 1
	}

	r := &TerminalRenderer{
		out:    out,
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
	r.Clear()
	return r
}

// SetOrigin sets the world point shown in the bottom-left cell
func (r *TerminalRenderer) SetOrigin(pos physics.Vector2D) {
	r.origin = pos
}

// SetANSI makes Present clear the terminal before each frame
func (r *TerminalRenderer) SetANSI(enabled bool) {
	r.ansi = enabled
}

// Err returns the first write error, if any
func (r *TerminalRenderer) Err() error {
	return r.err
}

func (r *TerminalRenderer) worldToCell(pos physics.Vector2D) (int, int) {
	x := int(math32.Floor((pos.X - r.origin.X) / r.scale))
	y := int(math32.Floor((pos.Y - r.origin.Y) / r.scale))
	return x, r.height - 1 - y
}

func (r *TerminalRenderer) plot(x, y int, glyph rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = glyph
	}
}

// line draws a Bresenham line between two cells
func (r *TerminalRenderer) line(x0, y0, x1, y1 int, glyph rune) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		r.plot(x0, y0, glyph)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// RenderBody implements Renderer
func (r *TerminalRenderer) RenderBody(body physics.BodyState) {
	glyph := DynamicGlyph
	if body.Static {
		glyph = StaticGlyph
	}
	for i, v := range body.Vertices {
		next := body.Vertices[(i+1)%len(body.Vertices)]
		x0, y0 := r.worldToCell(v)
		x1, y1 := r.worldToCell(next)
		r.line(x0, y0, x1, y1, glyph)
	}
}

// RenderContact implements Renderer
func (r *TerminalRenderer) RenderContact(contact physics.Contact) {
	x, y := r.worldToCell(contact.Response.Contact)
	r.plot(x, y, ContactGlyph)
}

// Present implements Renderer. The frame is written in a single call.
func (r *TerminalRenderer) Present() {
	var b strings.Builder
	if r.ansi {
		b.WriteString("\033[H\033[2J")
	}

	border := "+" + strings.Repeat("-", r.width) + "+\n"
	b.WriteString(border)
	for y := range r.buffer {
		b.WriteByte('|')
		b.WriteString(string(r.buffer[y]))
		b.WriteString("|\n")
	}
	b.WriteString(border)

	if _, err := io.WriteString(r.out, b.String()); err != nil && r.err == nil {
		r.err = err
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
