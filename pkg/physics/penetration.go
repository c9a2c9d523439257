// pkg/physics/penetration.go
package physics

// PenetrationConstraint pushes two overlapping bodies apart along the MTV of
// a CollisionResponse. It lives for a single sub-step.
type PenetrationConstraint struct {
	positional
	A        BodyHandle
	B        BodyHandle
	response CollisionResponse
	ra       Vector2D
	rb       Vector2D
}

// NewPenetrationConstraint builds the constraint from a narrow-phase result
// for a (the shape the MTV moves) and b. The attachment offsets are taken
// at the current body positions.
func NewPenetrationConstraint(a, b BodyHandle, posA, posB Vector2D, response CollisionResponse, compliance float32) *PenetrationConstraint {
	return &PenetrationConstraint{
		positional: positional{compliance: compliance},
		A:          a,
		B:          b,
		response:   response,
		ra:         response.Contact.Sub(posA),
		rb:         response.Contact.Sub(posB),
	}
}

// Response returns the collision the constraint resolves
func (c *PenetrationConstraint) Response() CollisionResponse {
	return c.response
}

// Involves implements Constraint
func (c *PenetrationConstraint) Involves(h BodyHandle) bool {
	return c.A == h || c.B == h
}

// Solve implements Constraint
func (c *PenetrationConstraint) Solve(bodies *BodySet, dt float32) {
	a, b, ok := bodies.Pair(c.A, c.B)
	if !ok {
		return
	}
	magnitude := c.response.MTV.Length()
	if magnitude == 0 {
		return
	}
	gradient := c.response.MTV.Neg().NormalizeOr(Up.Neg())
	c.solve(a, b, c.ra, c.rb, gradient, magnitude, dt)
}
