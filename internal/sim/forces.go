package sim

import "github.com/onnwee/forcemap/internal/geom"

// forceClamp bounds each repulsion component so that two nearly
// coincident bodies cannot blow up the integration step.
const forceClamp = 1e5

// RepelForce returns the repulsive force acting on self due to other:
// magnitude k*|m1*m2|/r^2 directed away from other, clamped
// component-wise to +-1e5. Exactly coincident bodies yield zero; the
// tree's epsilon-merge makes that case rare, and jitter is left to
// callers that want it.
func RepelForce(k float64, self, other Body) geom.Vec2 {
	dir := other.Pos.Sub(self.Pos)
	r2 := dir.LengthSquared()
	if r2 == 0 {
		return geom.Zero
	}
	m := self.Mass * other.Mass
	if m < 0 {
		m = -m
	}
	f := -k * m / r2
	return dir.Normalized().Scale(f).Clamp(forceClamp)
}

// SpringForce returns the Hookean force for a spring between a and b:
// -stiffness*(|d|-neutral) times the a->b unit vector. The
// returned vector is subtracted from a's accumulator and added to b's,
// so a spring longer than its neutral length pulls the endpoints
// together and a shorter one pushes them apart. Zero-length edges
// produce zero force via safe normalization.
func SpringForce(stiffness, neutral float64, a, b Body) geom.Vec2 {
	dir := b.Pos.Sub(a.Pos)
	mag := stiffness * (dir.Length() - neutral)
	return dir.Normalized().Scale(-mag)
}

// CenterGravity returns the force pulling a body toward the origin,
// proportional to its mass and its distance from the center.
func CenterGravity(k float64, b Body) geom.Vec2 {
	return b.Pos.Scale(-k * b.Mass)
}
