// pkg/physics/ground.go
package physics

// GroundConstraint keeps a body above a horizontal ground line. It is
// one-sided: a body above the line is left alone.
type GroundConstraint struct {
	positional
	Body   BodyHandle
	Height float32
}

// NewGroundConstraint creates a ground line at height for body
func NewGroundConstraint(body BodyHandle, height, compliance float32) *GroundConstraint {
	return &GroundConstraint{
		positional: positional{compliance: compliance},
		Body:       body,
		Height:     height,
	}
}

// Involves implements Constraint
func (c *GroundConstraint) Involves(h BodyHandle) bool {
	return c.Body == h
}

// Solve implements Constraint. The lowest vertex of the body is the contact
// point; for a zero-size shape that is the body position.
func (c *GroundConstraint) Solve(bodies *BodySet, dt float32) {
	body, ok := bodies.Get(c.Body)
	if !ok {
		return
	}
	lowest := body.Position
	for i, v := range body.Shape.Vertices(body.Position, body.Rotation) {
		if i == 0 || v.Y < lowest.Y {
			lowest = v
		}
	}
	magnitude := lowest.Y - c.Height
	if magnitude >= 0 {
		return
	}
	c.solve(body, nil, lowest.Sub(body.Position), Vector2D{}, Up, magnitude, dt)
}
