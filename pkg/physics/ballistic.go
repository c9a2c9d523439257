// pkg/physics/ballistic.go
package physics

import "github.com/chewxy/math32"

// Arc selects one of the two launch angles that reach a target
type Arc int

const (
	// LowArc is the flatter, faster trajectory.
	LowArc Arc = iota
	// HighArc is the lobbed trajectory.
	HighArc
)

// LaunchVelocity returns the initial velocity that carries a projectile
// fired at speed from `from` to `to` under a downward gravity of magnitude g.
// It returns false when the target is out of range at that speed.
func LaunchVelocity(from, to Vector2D, speed, g float32, arc Arc) (Vector2D, bool) {
	if speed <= 0 {
		return Vector2D{}, false
	}
	d := to.Sub(from)
	if g <= 0 {
		return d.NormalizeOr(Vector2D{X: 1}).Scale(speed), true
	}

	dx := math32.Abs(d.X)
	v2 := speed * speed
	discriminant := v2*v2 - g*(g*dx*dx+2*d.Y*v2)
	if discriminant < 0 {
		return Vector2D{}, false
	}
	if dx <= epsilon {
		// Straight up or down: only reachable upwards if the apex clears dy.
		if d.Y > 0 {
			return Vector2D{Y: speed}, true
		}
		return Vector2D{Y: -speed}, true
	}

	root := math32.Sqrt(discriminant)
	tangent := (v2 - root) / (g * dx)
	if arc == HighArc {
		tangent = (v2 + root) / (g * dx)
	}
	angle := math32.Atan(tangent)
	velocity := Vector2D{X: speed * math32.Cos(angle), Y: speed * math32.Sin(angle)}
	if d.X < 0 {
		velocity.X = -velocity.X
	}
	return velocity, true
}

// FlightTime returns how long a projectile launched with velocity takes to
// cover the horizontal distance dx. It returns false for vertical shots.
func FlightTime(velocity Vector2D, dx float32) (float32, bool) {
	if math32.Abs(velocity.X) <= epsilon {
		return 0, false
	}
	t := dx / velocity.X
	return t, t >= 0
}
