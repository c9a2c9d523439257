// pkg/physics/rotation.go
package physics

import "github.com/chewxy/math32"

const (
	degToRad = math32.Pi / 180
	radToDeg = 180 / math32.Pi
)

// Rotation stores an orientation as a cosine/sine pair instead of a raw angle.
// Composition goes through the angle-addition identities, so repeated
// increments never wrap around at +-pi.
type Rotation struct {
	cos float32
	sin float32
}

// IdentityRotation is the zero angle.
var IdentityRotation = Rotation{cos: 1, sin: 0}

// FromRadians builds a rotation from an angle in radians
func FromRadians(radians float32) Rotation {
	return Rotation{cos: math32.Cos(radians), sin: math32.Sin(radians)}
}

// FromDegrees builds a rotation from an angle in degrees
func FromDegrees(degrees float32) Rotation {
	return FromRadians(degrees * degToRad)
}

// Cos returns the cosine of the rotation angle
func (r Rotation) Cos() float32 { return r.cos }

// Sin returns the sine of the rotation angle
func (r Rotation) Sin() float32 { return r.sin }

// Radians returns the angle in (-pi, pi]
func (r Rotation) Radians() float32 {
	return math32.Atan2(r.sin, r.cos)
}

// Degrees returns the angle in (-180, 180]
func (r Rotation) Degrees() float32 {
	return r.Radians() * radToDeg
}

// Dir returns the unit vector the rotation points at
func (r Rotation) Dir() Vector2D {
	return Vector2D{X: r.cos, Y: r.sin}
}

// Rotate rotates a point around the origin
func (r Rotation) Rotate(p Vector2D) Vector2D {
	return Vector2D{
		X: p.X*r.cos - p.Y*r.sin,
		Y: p.X*r.sin + p.Y*r.cos,
	}
}

// Add composes two rotations (a + b)
func (r Rotation) Add(other Rotation) Rotation {
	return Rotation{
		cos: r.cos*other.cos - r.sin*other.sin,
		sin: r.sin*other.cos + r.cos*other.sin,
	}.renormalize()
}

// Sub returns the rotation r - other
func (r Rotation) Sub(other Rotation) Rotation {
	return Rotation{
		cos: r.cos*other.cos + r.sin*other.sin,
		sin: r.sin*other.cos - r.cos*other.sin,
	}.renormalize()
}

// AddAngle adds a raw angle in radians. Negative angles are applied as a
// subtraction of the positive angle.
func (r Rotation) AddAngle(radians float32) Rotation {
	if radians < 0 {
		return r.Sub(FromRadians(-radians))
	}
	return r.Add(FromRadians(radians))
}

// SubAngle subtracts a raw angle in radians
func (r Rotation) SubAngle(radians float32) Rotation {
	return r.AddAngle(-radians)
}

// Neg returns the inverse rotation
func (r Rotation) Neg() Rotation {
	return Rotation{cos: r.cos, sin: -r.sin}
}

// renormalize keeps cos^2 + sin^2 at 1 so rounding error does not grow
// with the number of compositions.
func (r Rotation) renormalize() Rotation {
	n := math32.Sqrt(r.cos*r.cos + r.sin*r.sin)
	if n <= epsilon || math32.IsNaN(n) {
		return IdentityRotation
	}
	return Rotation{cos: r.cos / n, sin: r.sin / n}
}
