// pkg/physics/vector.go
package physics

import (
	"log/slog"

	"github.com/chewxy/math32"
)

// Vector2D represents a 2D vector with x and y components
type Vector2D struct {
	X float32
	Y float32
}

// Vec builds a Vector2D from its components
func Vec(x, y float32) Vector2D {
	return Vector2D{X: x, Y: y}
}

// Up is the world "up" axis. Y grows upwards.
var Up = Vector2D{X: 0, Y: 1}

// Add returns the sum of two vectors
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Sub returns the difference between two vectors
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{
		X: v.X - other.X,
		Y: v.Y - other.Y,
	}
}

// Scale multiplies the vector by a scalar value
func (v Vector2D) Scale(factor float32) Vector2D {
	return Vector2D{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

// Neg returns the opposite vector
func (v Vector2D) Neg() Vector2D {
	return Vector2D{X: -v.X, Y: -v.Y}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared returns magnitude squared (optimization for comparisons)
func (v Vector2D) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

// NormalizeOr returns a unit vector in the same direction, or fallback when
// the vector is too short to normalize.
func (v Vector2D) NormalizeOr(fallback Vector2D) Vector2D {
	length := v.Length()
	if length <= epsilon || math32.IsNaN(length) || math32.IsInf(length, 0) {
		return fallback
	}
	return Vector2D{
		X: v.X / length,
		Y: v.Y / length,
	}
}

// Normalize returns a unit vector in the same direction, or the zero vector
func (v Vector2D) Normalize() Vector2D {
	return v.NormalizeOr(Vector2D{})
}

// Distance returns the distance between two vectors
func (v Vector2D) Distance(other Vector2D) float32 {
	return v.Sub(other).Length()
}

// Dot returns the dot product of two vectors
func (v Vector2D) Dot(other Vector2D) float32 {
	return v.X*other.X + v.Y*other.Y
}

// PerpDot returns the 2D cross product (z component of v x other)
func (v Vector2D) PerpDot(other Vector2D) float32 {
	return v.X*other.Y - v.Y*other.X
}

// Perp returns v rotated by +90 degrees
func (v Vector2D) Perp() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

// Abs returns the component-wise absolute value
func (v Vector2D) Abs() Vector2D {
	return Vector2D{X: math32.Abs(v.X), Y: math32.Abs(v.Y)}
}

// IsFinite reports whether both components are neither NaN nor infinite
func (v Vector2D) IsFinite() bool {
	return !math32.IsNaN(v.X) && !math32.IsNaN(v.Y) &&
		!math32.IsInf(v.X, 0) && !math32.IsInf(v.Y, 0)
}

// LogValue implements slog.LogValuer
func (v Vector2D) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("x", float64(v.X)),
		slog.Float64("y", float64(v.Y)),
	)
}

// epsilon is the shortest length treated as a usable direction.
const epsilon = 1e-6
