// pkg/physics/rectangle.go
package physics

import "github.com/chewxy/math32"

// Rectangle is an oriented box described by its half size. Position and
// rotation are supplied by the caller at query time.
type Rectangle struct {
	HalfSize Vector2D
}

// NewRectangle creates a rectangle from its full width and height.
// Negative dimensions are folded to their absolute value.
func NewRectangle(width, height float32) Rectangle {
	return Rectangle{HalfSize: Vector2D{X: math32.Abs(width) / 2, Y: math32.Abs(height) / 2}}
}

// AABR is an axis-aligned bounding rectangle
type AABR struct {
	Min Vector2D
	Max Vector2D
}

// Size returns the full width and height of the bounding rectangle
func (a AABR) Size() Vector2D {
	return a.Max.Sub(a.Min)
}

// Center returns the midpoint of the bounding rectangle
func (a AABR) Center() Vector2D {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Overlaps reports whether two bounding rectangles intersect (touching counts)
func (a AABR) Overlaps(other AABR) bool {
	return a.Min.X <= other.Max.X && other.Min.X <= a.Max.X &&
		a.Min.Y <= other.Max.Y && other.Min.Y <= a.Max.Y
}

// HalfExtents returns the half size of the axis-aligned box enclosing the
// rectangle at the given rotation.
func (r Rectangle) HalfExtents(rot Rotation) Vector2D {
	c := math32.Abs(rot.cos)
	s := math32.Abs(rot.sin)
	return Vector2D{
		X: c*r.HalfSize.X + s*r.HalfSize.Y,
		Y: s*r.HalfSize.X + c*r.HalfSize.Y,
	}
}

// AABR returns the axis-aligned bounding rectangle at pos and rot
func (r Rectangle) AABR(pos Vector2D, rot Rotation) AABR {
	half := r.HalfExtents(rot)
	return AABR{Min: pos.Sub(half), Max: pos.Add(half)}
}

// Vertices returns the four world-space corners, counter-clockwise
// starting at the bottom-left corner of the unrotated box.
func (r Rectangle) Vertices(pos Vector2D, rot Rotation) [4]Vector2D {
	hx, hy := r.HalfSize.X, r.HalfSize.Y
	// Each corner is rot applied to (+-hx, +-hy).
	ax := Vector2D{X: hx * rot.cos, Y: hx * rot.sin}
	ay := Vector2D{X: -hy * rot.sin, Y: hy * rot.cos}
	return [4]Vector2D{
		pos.Sub(ax).Sub(ay),
		pos.Add(ax).Sub(ay),
		pos.Add(ax).Add(ay),
		pos.Sub(ax).Add(ay),
	}
}

// NormalAxes returns the two separating axes of the rectangle. Opposite edges
// share an axis, so two are enough.
func (r Rectangle) NormalAxes(rot Rotation) [2]Vector2D {
	dir := rot.Dir()
	return [2]Vector2D{dir, dir.Perp()}
}

// inertia returns the moment of inertia of a solid box of the given mass
func (r Rectangle) inertia(mass float32) float32 {
	w := 2 * r.HalfSize.X
	h := 2 * r.HalfSize.Y
	return mass * (w*w + h*h) / 12
}
