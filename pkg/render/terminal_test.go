package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/opd-ai/go-xpbd/pkg/physics"
)

func squareState(static bool) physics.BodyState {
	return physics.BodyState{
		Position: physics.Vec(4.5, 2.5),
		Vertices: [4]physics.Vector2D{
			{X: 3.5, Y: 1.5}, {X: 5.5, Y: 1.5}, {X: 5.5, Y: 3.5}, {X: 3.5, Y: 3.5},
		},
		Static: static,
	}
}

func TestNewTerminalRenderer(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		height    int
		scale     float32
		wantScale float32
	}{
		{"small", 10, 5, 1, 1},
		{"terminal", 80, 24, 12.8, 12.8},
		{"non-positive scale", 4, 4, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTerminalRenderer(&bytes.Buffer{}, tt.width, tt.height, tt.scale)

			if r.scale != tt.wantScale {
				t.Errorf("scale = %v, want %v", r.scale, tt.wantScale)
			}
			if len(r.buffer) != tt.height {
				t.Fatalf("buffer has %d rows, want %d", len(r.buffer), tt.height)
			}
			for i, row := range r.buffer {
				if len(row) != tt.width {
					t.Errorf("row %d has %d cells, want %d", i, len(row), tt.width)
				}
				if strings.TrimSpace(string(row)) != "" {
					t.Errorf("row %d is not blank: %q", i, string(row))
				}
			}
		})
	}
}

func TestTerminalRenderer_WorldToCell(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 10, 5, 2)
	r.SetOrigin(physics.Vec(100, 50))

	tests := []struct {
		name  string
		pos   physics.Vector2D
		wantX int
		wantY int
	}{
		{"origin is bottom-left", physics.Vec(100, 50), 0, 4},
		{"inside first cell", physics.Vec(101.9, 51.9), 0, 4},
		{"up and right", physics.Vec(104, 56), 2, 1},
		{"below origin", physics.Vec(99, 49), -1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := r.worldToCell(tt.pos)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("worldToCell(%v) = (%d, %d), want (%d, %d)", tt.pos, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestTerminalRenderer_Frame(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, 10, 5, 1)

	r.Clear()
	r.RenderBody(squareState(true))
	r.RenderContact(physics.Contact{Response: physics.CollisionResponse{Contact: physics.Vec(0.2, 0.2)}})
	r.Present()

	want := strings.Join([]string{
		"+----------+",
		"|          |",
		"|   ###    |",
		"|   # #    |",
		"|   ###    |",
		"|*         |",
		"+----------+",
	}, "\n") + "\n"
	if out.String() != want {
		t.Errorf("frame =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestTerminalRenderer_DynamicGlyphAndClear(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, 10, 5, 1)

	r.RenderBody(squareState(false))
	if r.buffer[1][3] != DynamicGlyph {
		t.Errorf("cell (3, 1) = %q, want %q", r.buffer[1][3], DynamicGlyph)
	}

	r.Clear()
	for y, row := range r.buffer {
		if strings.TrimSpace(string(row)) != "" {
			t.Errorf("row %d not cleared: %q", y, string(row))
		}
	}
}

func TestTerminalRenderer_ClipsOutsideBodies(t *testing.T) {
	r := NewTerminalRenderer(&bytes.Buffer{}, 8, 4, 1)
	huge := physics.BodyState{
		Vertices: [4]physics.Vector2D{
			{X: -50, Y: -50}, {X: 50, Y: -50}, {X: 50, Y: 50}, {X: -50, Y: 50},
		},
	}
	far := physics.BodyState{
		Vertices: [4]physics.Vector2D{
			{X: 500, Y: 500}, {X: 502, Y: 500}, {X: 502, Y: 502}, {X: 500, Y: 502},
		},
	}

	r.RenderBody(huge)
	r.RenderBody(far)
	r.RenderContact(physics.Contact{Response: physics.CollisionResponse{Contact: physics.Vec(-1, 2)}})

	for y, row := range r.buffer {
		if strings.TrimSpace(string(row)) != "" {
			t.Errorf("row %d should be empty, got %q", y, string(row))
		}
	}
}

func TestTerminalRenderer_ANSI(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, 2, 1, 1)
	r.SetANSI(true)
	r.Present()

	if !strings.HasPrefix(out.String(), "\033[H\033[2J") {
		t.Errorf("frame %q does not start with the clear sequence", out.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestTerminalRenderer_WriteError(t *testing.T) {
	r := NewTerminalRenderer(failingWriter{}, 2, 2, 1)
	if r.Err() != nil {
		t.Fatalf("Err() = %v before any frame", r.Err())
	}

	r.Present()
	r.Present()

	if r.Err() == nil || r.Err().Error() != "closed" {
		t.Errorf("Err() = %v, want closed", r.Err())
	}
}
