// pkg/physics/collision.go
package physics

import "github.com/chewxy/math32"

// CollisionResponse describes an overlap found by the narrow phase.
//
// MTV is the minimum translation vector: moving the first shape by MTV
// separates the pair. Contact is the world-space point of deepest
// penetration, taken from the vertices of the second shape.
type CollisionResponse struct {
	MTV     Vector2D
	Normal  Vector2D // unit axis of the MTV, set even when Depth is 0
	Depth   float32
	Contact Vector2D
}

// Projection is the [Min, Max] interval of a shape projected onto an axis
type Projection struct {
	Min float32
	Max float32
}

// Separated reports whether two intervals do not touch
func (p Projection) Separated(other Projection) bool {
	return p.Max < other.Min || other.Max < p.Min
}

// Overlap returns the length of the shared part of two intervals
func (p Projection) Overlap(other Projection) float32 {
	return math32.Min(p.Max, other.Max) - math32.Max(p.Min, other.Min)
}

func project(vertices [4]Vector2D, axis Vector2D) Projection {
	p := Projection{Min: vertices[0].Dot(axis), Max: vertices[0].Dot(axis)}
	for _, v := range vertices[1:] {
		d := v.Dot(axis)
		if d < p.Min {
			p.Min = d
		}
		if d > p.Max {
			p.Max = d
		}
	}
	return p
}

// Collide runs the separating axis test between r (at pos, rot) and other
// (at otherPos, otherRot). It returns false as soon as one axis separates the
// shapes. Touching shapes (zero overlap) are reported as colliding.
func (r Rectangle) Collide(pos Vector2D, rot Rotation, other Rectangle, otherPos Vector2D, otherRot Rotation) (CollisionResponse, bool) {
	va := r.Vertices(pos, rot)
	vb := other.Vertices(otherPos, otherRot)

	axesA := r.NormalAxes(rot)
	axesB := other.NormalAxes(otherRot)
	axes := [4]Vector2D{axesA[0], axesA[1], axesB[0], axesB[1]}

	smallest := math32.Inf(1)
	var mtvAxis Vector2D
	for _, axis := range axes {
		pa := project(va, axis)
		pb := project(vb, axis)
		if pa.Separated(pb) {
			return CollisionResponse{}, false
		}
		overlap := pa.Overlap(pb)
		if overlap < smallest {
			smallest = overlap
			mtvAxis = axis
			// Push r away from other: flip the axis when r sits on its lower side.
			if pa.Max < pb.Max || (pa.Max == pb.Max && pa.Min < pb.Min) {
				mtvAxis = axis.Neg()
			}
		}
	}

	mtv := mtvAxis.Scale(smallest)
	return CollisionResponse{
		MTV:     mtv,
		Normal:  mtvAxis,
		Depth:   smallest,
		Contact: deepestVertex(vb, mtvAxis),
	}, true
}

// deepestVertex returns the vertex furthest along dir.
func deepestVertex(vertices [4]Vector2D, dir Vector2D) Vector2D {
	best := vertices[0]
	bestDot := best.Dot(dir)
	for _, v := range vertices[1:] {
		if d := v.Dot(dir); d > bestDot {
			best, bestDot = v, d
		}
	}
	return best
}
