// pkg/physics/spatial.go
package physics

import (
	"fmt"

	"github.com/chewxy/math32"
)

// MinGridStep is the smallest accepted bucket edge length.
const MinGridStep = 4

// GridConfig holds the spatial grid dimensions. Width and Height must be
// multiples of Step; Bucket is the capacity of each cell.
type GridConfig struct {
	Width  int
	Height int
	Step   int
	Bucket int
}

// Validate reports malformed grid dimensions
func (c GridConfig) Validate() error {
	switch {
	case c.Step < MinGridStep:
		return fmt.Errorf("grid step %d below minimum %d", c.Step, MinGridStep)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("grid size %dx%d must be positive", c.Width, c.Height)
	case c.Width%c.Step != 0:
		return fmt.Errorf("grid width %d is not a multiple of step %d", c.Width, c.Step)
	case c.Height%c.Step != 0:
		return fmt.Errorf("grid height %d is not a multiple of step %d", c.Height, c.Step)
	case c.Bucket < 1:
		return fmt.Errorf("grid bucket capacity %d must be at least 1", c.Bucket)
	}
	return nil
}

// Pair is an unordered pair of ids, stored with A < B
type Pair struct {
	A uint32
	B uint32
}

func makePair(a, b uint32) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// SpatialGrid is a fixed-bucket spatial hash over [0, Width) x [0, Height).
//
// Each cell holds at most Bucket ids; further inserts into a full cell are
// dropped. The grid is filled with StoreEntity/StoreAABB and drained by
// Flush once per broad-phase pass.
type SpatialGrid struct {
	config  GridConfig
	columns int
	rows    int
	step    float32
	cells   [][]uint32
	seen    map[Pair]struct{}
	dropped int
}

// NewSpatialGrid allocates a grid. It panics on malformed dimensions since
// those are fixed at start-up by the caller.
func NewSpatialGrid(config GridConfig) *SpatialGrid {
	if err := config.Validate(); err != nil {
		panic("physics: " + err.Error())
	}
	columns := config.Width / config.Step
	rows := config.Height / config.Step
	cells := make([][]uint32, columns*rows)
	for i := range cells {
		cells[i] = make([]uint32, 0, config.Bucket)
	}
	return &SpatialGrid{
		config:  config,
		columns: columns,
		rows:    rows,
		step:    float32(config.Step),
		cells:   cells,
		seen:    make(map[Pair]struct{}),
	}
}

// Config returns the grid dimensions
func (g *SpatialGrid) Config() GridConfig {
	return g.config
}

// Dropped returns how many inserts were discarded because a cell was full
// since the last Flush.
func (g *SpatialGrid) Dropped() int {
	return g.dropped
}

// cell converts world coordinates to a column and row, panicking when the
// position lies outside the grid.
func (g *SpatialGrid) cell(x, y float32) (int, int) {
	if !(x >= 0 && x < float32(g.config.Width) && y >= 0 && y < float32(g.config.Height)) {
		panic(fmt.Sprintf("physics: grid position (%g, %g) out of range [0,%d)x[0,%d)",
			x, y, g.config.Width, g.config.Height))
	}
	col := int(math32.Floor(x / g.step))
	row := int(math32.Floor(y / g.step))
	// Guard against x/step rounding up to columns for x just below Width.
	return min(col, g.columns-1), min(row, g.rows-1)
}

func (g *SpatialGrid) insert(index int, id uint32) {
	bucket := g.cells[index]
	for _, existing := range bucket {
		if existing == id {
			return
		}
	}
	if len(bucket) == cap(bucket) {
		g.dropped++
		return
	}
	g.cells[index] = append(bucket, id)
}

// StoreEntity inserts id into the cell containing pos
func (g *SpatialGrid) StoreEntity(pos Vector2D, id uint32) {
	col, row := g.cell(pos.X, pos.Y)
	g.insert(col+row*g.columns, id)
}

// StoreAABB inserts id into every cell overlapped by the box starting at
// pos (its minimum corner) with the given size. Both ends are inclusive.
func (g *SpatialGrid) StoreAABB(pos, size Vector2D, id uint32) {
	xStart, yStart := g.cell(pos.X, pos.Y)
	xEnd, yEnd := g.cell(pos.X+size.X, pos.Y+size.Y)
	for y := yStart; y <= yEnd; y++ {
		for x := xStart; x <= xEnd; x++ {
			g.insert(x+y*g.columns, id)
		}
	}
}

// Flush drains every cell and returns each unordered pair of ids that shared
// at least one cell. Pairs appear once, in discovery order.
func (g *SpatialGrid) Flush() []Pair {
	var pairs []Pair
	for i, bucket := range g.cells {
		for a := 0; a < len(bucket); a++ {
			for b := a + 1; b < len(bucket); b++ {
				if bucket[a] == bucket[b] {
					continue
				}
				p := makePair(bucket[a], bucket[b])
				if _, ok := g.seen[p]; ok {
					continue
				}
				g.seen[p] = struct{}{}
				pairs = append(pairs, p)
			}
		}
		g.cells[i] = bucket[:0]
	}
	clear(g.seen)
	g.dropped = 0
	return pairs
}
