// pkg/physics/distance.go
package physics

import "fmt"

// DistanceDef describes a distance constraint between two anchors given in
// each body's local frame.
type DistanceDef struct {
	AnchorA      Vector2D
	AnchorB      Vector2D
	RestDistance float32
	Compliance   float32
}

// DistanceConstraint keeps two attachment points at a fixed distance
type DistanceConstraint struct {
	positional
	A   BodyHandle
	B   BodyHandle
	def DistanceDef
}

// NewDistanceConstraint links a and b. The two handles must differ.
func NewDistanceConstraint(a, b BodyHandle, def DistanceDef) (*DistanceConstraint, error) {
	if a.Index == b.Index {
		return nil, fmt.Errorf("distance constraint %s-%s: %w", a, b, ErrSameBody)
	}
	return &DistanceConstraint{
		positional: positional{compliance: def.Compliance},
		A:          a,
		B:          b,
		def:        def,
	}, nil
}

// RestDistance returns the target distance
func (c *DistanceConstraint) RestDistance() float32 {
	return c.def.RestDistance
}

// Involves implements Constraint
func (c *DistanceConstraint) Involves(h BodyHandle) bool {
	return c.A == h || c.B == h
}

// Solve implements Constraint
func (c *DistanceConstraint) Solve(bodies *BodySet, dt float32) {
	a, b, ok := bodies.Pair(c.A, c.B)
	if !ok {
		return
	}
	ra := a.Rotation.Rotate(c.def.AnchorA)
	rb := b.Rotation.Rotate(c.def.AnchorB)
	delta := a.Position.Add(ra).Sub(b.Position.Add(rb))

	// Coincident anchors have no direction; push apart along x.
	gradient := delta.NormalizeOr(Vector2D{X: 1})
	magnitude := delta.Length() - c.def.RestDistance
	c.solve(a, b, ra, rb, gradient, magnitude, dt)
}
