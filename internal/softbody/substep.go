package softbody

import "github.com/go-gl/mathgl/mgl32"

// Params configures one simulation run. Immutable for the run; swap the
// whole struct between runs.
type Params struct {
	// Dt is the substep timestep. Callers wanting larger frame steps call
	// Substep several times with a smaller Dt.
	Dt float32
	// Acceleration is the external acceleration applied to every particle,
	// typically gravity.
	Acceleration mgl32.Vec3
	// ParticleMass is the uniform per-particle mass.
	ParticleMass float32
	// ShapeCompliance is the inverse stiffness of shape matching; 0 is rigid.
	ShapeCompliance float32
	// ShapeDamping is the fraction of non-rigid relative velocity removed per
	// second; damping*dt is clamped to 1.
	ShapeDamping float32
	// StictionFactor is the tangential slip allowed before a contact slides,
	// relative to penetration depth.
	StictionFactor float32
}

// DefaultParams returns a stable starting configuration for a unit-sized
// body at 90 Hz substeps.
func DefaultParams() Params {
	return Params{
		Dt:              1.0 / 90.0,
		Acceleration:    mgl32.Vec3{0, -9.8, 0},
		ParticleMass:    1,
		ShapeCompliance: 0.0001,
		ShapeDamping:    0.1,
		StictionFactor:  0.5,
	}
}

// Substep advances the simulation by one XPBD substep. Stage order is fixed;
// each stage depends on the previous:
//
//  1. apply external acceleration to velocities
//  2. predict positions (pre-step positions kept for velocity reconstruction)
//  3. distance constraints
//  4. shape matching
//  5. collision resolution (runs after shape matching so colliders win final
//     placement)
//  6. velocity reconstruction from the position delta
//  7. shape-matching damping on the reconstructed velocities
//  8. commit
//
// points and velocities must be the same length and must not alias; the
// caller owns both for the duration of the call.
func Substep(w *World, velocities, points []mgl32.Vec3, constraints []ShapeConstraint, params *Params) {
	dt := params.Dt
	invMass := 1 / params.ParticleMass

	for i := range velocities {
		velocities[i] = velocities[i].Add(params.Acceleration.Mul(dt))
	}

	if cap(w.prev) < len(points) {
		w.prev = make([]mgl32.Vec3, len(points))
	}
	w.prev = w.prev[:len(points)]
	copy(w.prev, points)

	// points now holds the predicted positions; w.prev keeps the pre-step
	// state until velocities are rebuilt.
	for i := range points {
		points[i] = points[i].Add(velocities[i].Mul(dt))
	}

	SolveDistanceConstraints(points, w.Distance, invMass, dt)
	SolveShapeConstraints(points, constraints, params.ShapeCompliance, invMass, dt)
	ResolveCollisions(w.Bodies, points, params.StictionFactor)

	for i := range velocities {
		velocities[i] = points[i].Sub(w.prev[i]).Mul(1 / dt)
	}

	DampShapeConstraints(velocities, points, constraints, params.ShapeDamping, dt)
}
