package softbody

import "github.com/go-gl/mathgl/mgl32"

// DistanceConstraint holds two particles at a fixed separation. Used for
// optional reinforcement (edge cables, pinning runs of particles together)
// on top of the shape-matching cells.
type DistanceConstraint struct {
	I, J       int
	Rest       float32
	Compliance float32
}

// SolveDistanceConstraints projects each pair back toward its rest
// separation with the XPBD compliant correction. Coincident particles are
// skipped: there is no direction to correct along.
func SolveDistanceConstraints(pointsNext []mgl32.Vec3, constraints []DistanceConstraint, invMass, dt float32) {
	for _, con := range constraints {
		d := pointsNext[con.J].Sub(pointsNext[con.I])
		dist := d.Len()
		if dist < 1e-8 {
			continue
		}
		c := dist - con.Rest
		denom := 2*invMass + con.Compliance/(dt*dt)
		if denom <= 0 {
			continue
		}
		lambda := -c / denom
		corr := d.Mul(lambda * invMass / dist)
		pointsNext[con.I] = pointsNext[con.I].Sub(corr)
		pointsNext[con.J] = pointsNext[con.J].Add(corr)
	}
}
