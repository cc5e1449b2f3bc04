package softbody

import "github.com/go-gl/mathgl/mgl32"

// ShapeConstraint ties the 8 particles of one grid cell to a rigid rest
// shape. TemplateShape holds the construction pose relative to the cell
// centroid (entries sum to zero); aqqInv is the precomputed inverse of the
// template's second-moment matrix. Rotation is the best-fit rotation found
// last substep, kept as the warm-start seed for the next extraction. It is
// the only mutable field after construction.
type ShapeConstraint struct {
	PointIndices  [8]int
	TemplateShape [8]mgl32.Vec3
	aqqInv        mgl32.Mat3
	Rotation      mgl32.Quat
}

// centroid returns the mean position of the constraint's particles.
func (c *ShapeConstraint) centroid(points []mgl32.Vec3) mgl32.Vec3 {
	var sum mgl32.Vec3
	for _, idx := range c.PointIndices {
		sum = sum.Add(points[idx])
	}
	return sum.Mul(1.0 / 8.0)
}

// SolveShapeConstraints pulls every cell's particles toward the best-fit
// rigid placement of its rest shape. The correction is the compliant XPBD
// form, scaled by invMass / (invMass + compliance/dt²); zero compliance
// snaps particles all the way to their goals.
func SolveShapeConstraints(pointsNext []mgl32.Vec3, constraints []ShapeConstraint, compliance, invMass, dt float32) {
	scale := float32(1)
	if compliance > 0 {
		scale = invMass / (invMass + compliance/(dt*dt))
	}

	for ci := range constraints {
		con := &constraints[ci]
		centroid := con.centroid(pointsNext)

		var apq mgl32.Mat3
		for i, idx := range con.PointIndices {
			p := pointsNext[idx].Sub(centroid)
			apq = apq.Add(outer(p, con.TemplateShape[i]))
		}

		con.Rotation = ExtractRotation(apq.Mul3(con.aqqInv), con.Rotation)

		for i, idx := range con.PointIndices {
			goal := centroid.Add(con.Rotation.Rotate(con.TemplateShape[i]))
			delta := goal.Sub(pointsNext[idx])
			pointsNext[idx] = pointsNext[idx].Add(delta.Mul(scale))
		}
	}
}

// DampShapeConstraints blends each cluster's particle velocities toward the
// velocity field of the equivalent rigid body: mean velocity plus ω×r, with
// ω recovered from the cluster's angular momentum and point-mass inertia
// tensor. Only the non-rigid residual is removed, so net linear and angular
// motion pass through untouched. The blend fraction is damping*dt clamped
// to 1.
func DampShapeConstraints(velocities, pointsNext []mgl32.Vec3, constraints []ShapeConstraint, damping, dt float32) {
	if damping <= 0 {
		return
	}
	blend := damping * dt
	if blend > 1 {
		blend = 1
	}

	for ci := range constraints {
		con := &constraints[ci]
		centroid := con.centroid(pointsNext)

		var meanVel mgl32.Vec3
		for _, idx := range con.PointIndices {
			meanVel = meanVel.Add(velocities[idx])
		}
		meanVel = meanVel.Mul(1.0 / 8.0)

		var angMom mgl32.Vec3
		var inertia mgl32.Mat3
		for _, idx := range con.PointIndices {
			r := pointsNext[idx].Sub(centroid)
			angMom = angMom.Add(r.Cross(velocities[idx].Sub(meanVel)))
			inertia = inertia.Add(mgl32.Ident3().Mul(r.Dot(r)).Sub(outer(r, r)))
		}
		omega := inertia.Inv().Mul3x1(angMom)

		for _, idx := range con.PointIndices {
			r := pointsNext[idx].Sub(centroid)
			vbar := meanVel.Add(omega.Cross(r))
			velocities[idx] = velocities[idx].Add(vbar.Sub(velocities[idx]).Mul(blend))
		}
	}
}
