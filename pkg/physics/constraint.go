// pkg/physics/constraint.go
package physics

// Constraint is a positional constraint solved with XPBD.
//
// The Lagrange multiplier accumulated by Solve must be reset with
// ResetLambda at the start of every full step, not every sub-step.
type Constraint interface {
	// Solve applies one XPBD correction to the bodies of the constraint.
	Solve(bodies *BodySet, dt float32)
	// ResetLambda zeroes the accumulated multiplier.
	ResetLambda()
	// Lambda returns the accumulated multiplier.
	Lambda() float32
	// Involves reports whether the constraint references h.
	Involves(h BodyHandle) bool
}

// positional carries the state shared by every concrete constraint
type positional struct {
	compliance float32
	lambda     float32
}

func (p *positional) ResetLambda()    { p.lambda = 0 }
func (p *positional) Lambda() float32 { return p.lambda }

// Compliance returns the inverse stiffness of the constraint
func (p *positional) Compliance() float32 { return p.compliance }

// solve runs the generic XPBD update for a constraint with error magnitude
// along gradient. The gradient points in the direction that increases the
// error for a; b, when present, is pushed the opposite way. ra and rb are
// the world-space offsets of the attachment points from each center.
func (p *positional) solve(a, b *RigidBody, ra, rb, gradient Vector2D, magnitude, dt float32) {
	if dt <= 0 {
		return
	}
	inverseMass := a.InverseMass
	if b != nil {
		inverseMass += b.InverseMass
	}
	if inverseMass == 0 {
		return
	}

	alpha := p.compliance / (dt * dt)
	w := a.generalizedInverseMass(ra, gradient)
	if b != nil {
		w += b.generalizedInverseMass(rb, gradient)
	}
	if w+alpha <= 0 {
		return
	}

	deltaLambda := (-magnitude - alpha*p.lambda) / (w + alpha)
	p.lambda += deltaLambda
	impulse := gradient.Scale(deltaLambda)

	a.ApplyForce(impulse.Scale(a.InverseMass))
	a.ApplyRotationalForce(a.InverseInertia * ra.PerpDot(impulse))
	if b != nil {
		b.ApplyForce(impulse.Scale(-b.InverseMass))
		b.ApplyRotationalForce(-b.InverseInertia * rb.PerpDot(impulse))
	}
}
