// pkg/physics/rigidbody.go
package physics

// RigidBody holds the dynamic state of a single body.
//
// An InverseMass of 0 marks a static body: integration, constraint
// corrections and velocity updates all leave it untouched.
type RigidBody struct {
	Position        Vector2D
	PrevPosition    Vector2D
	Velocity        Vector2D
	Rotation        Rotation
	PrevRotation    Rotation
	AngularVelocity float32

	InverseMass    float32
	InverseInertia float32

	ExternalForce  Vector2D
	ExternalTorque float32

	Shape Rectangle
}

// NewRigidBody creates a body at pos. A mass <= 0 makes it static.
func NewRigidBody(pos Vector2D, mass float32, shape Rectangle) RigidBody {
	body := RigidBody{
		Position:     pos,
		PrevPosition: pos,
		Rotation:     IdentityRotation,
		PrevRotation: IdentityRotation,
		Shape:        shape,
	}
	if mass > 0 {
		body.InverseMass = 1 / mass
		if inertia := shape.inertia(mass); inertia > 0 {
			body.InverseInertia = 1 / inertia
		}
	}
	return body
}

// IsStatic reports whether the body is immovable
func (b *RigidBody) IsStatic() bool {
	return b.InverseMass == 0
}

// Integrate advances the body by dt with semi-implicit Euler: the external
// force and gravity update the velocity, then the velocity moves the body.
func (b *RigidBody) Integrate(dt float32, gravity Vector2D) {
	if b.IsStatic() {
		return
	}
	b.PrevPosition = b.Position
	b.PrevRotation = b.Rotation

	acceleration := gravity.Add(b.ExternalForce.Scale(b.InverseMass))
	b.Velocity = b.Velocity.Add(acceleration.Scale(dt))
	b.Position = b.Position.Add(b.Velocity.Scale(dt))

	b.AngularVelocity += b.ExternalTorque * b.InverseInertia * dt
	b.Rotation = b.Rotation.AddAngle(b.AngularVelocity * dt)
}

// Solve derives the velocities from the position and rotation change of the
// sub-step. Velocities are outputs of the position solve, not state.
func (b *RigidBody) Solve(damping, dt float32) {
	if b.IsStatic() || dt <= 0 {
		return
	}
	b.Velocity = b.Position.Sub(b.PrevPosition).Scale(damping / dt)
	b.AngularVelocity = b.Rotation.Sub(b.PrevRotation).Radians() * damping / dt
}

// ApplyForce nudges the position by delta. Constraints express their
// corrections this way.
func (b *RigidBody) ApplyForce(delta Vector2D) {
	if b.IsStatic() {
		return
	}
	b.Position = b.Position.Add(delta)
}

// ApplyRotationalForce nudges the rotation by radians
func (b *RigidBody) ApplyRotationalForce(radians float32) {
	if b.IsStatic() || radians == 0 {
		return
	}
	b.Rotation = b.Rotation.AddAngle(radians)
}

// SetPosition teleports the body. The previous position moves with it so
// the teleport does not show up as velocity.
func (b *RigidBody) SetPosition(pos Vector2D) {
	b.Position = pos
	b.PrevPosition = pos
}

// SetRotation sets the orientation without inducing angular velocity
func (b *RigidBody) SetRotation(rot Rotation) {
	b.Rotation = rot
	b.PrevRotation = rot
}

// ClearForces resets the external force and torque accumulators
func (b *RigidBody) ClearForces() {
	b.ExternalForce = Vector2D{}
	b.ExternalTorque = 0
}

// AABR returns the world bounding rectangle of the body
func (b *RigidBody) AABR() AABR {
	return b.Shape.AABR(b.Position, b.Rotation)
}

// generalizedInverseMass returns the inverse mass seen by a correction along
// n applied at offset r from the center of mass.
func (b *RigidBody) generalizedInverseMass(r, n Vector2D) float32 {
	rn := r.PerpDot(n)
	return b.InverseMass + b.InverseInertia*rn*rn
}
