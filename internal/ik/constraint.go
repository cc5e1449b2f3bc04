package ik

import "github.com/go-gl/mathgl/mgl32"

// ConstraintKind tags the Constraint union.
type ConstraintKind int

const (
	KindAnchor ConstraintKind = iota
	KindSpherical
	KindDistance
	KindAngularCardan
	KindCompliantSpherical
	KindCompliantFixedAngle
	KindCompliantHinge
)

// Constraint is one entry of the solver's constraint stack, a tagged union
// over the kinds above. Nodes are referenced by NodeID only. Compliance
// follows the same inverse-stiffness convention as shape matching: 0 is
// rigid, larger is softer; each solver pass scales corrections by
// 1/(1+compliance).
type Constraint struct {
	Kind ConstraintKind
	A, B NodeID

	// Anchor
	TargetPos mgl32.Vec3
	TargetRot mgl32.Quat
	Strength  float32

	// Spherical / hinge attach points in each node's local frame.
	OffsetA, OffsetB mgl32.Vec3

	// Distance
	Rest float32

	// AngularCardan / hinge axes in each node's local frame.
	AxisA, AxisB mgl32.Vec3

	// CompliantFixedAngle: desired rotation of B relative to A.
	RestRot mgl32.Quat

	Compliance float32
}

// Anchor pins a node toward a fixed world pose, blended by strength (0..1).
func Anchor(n NodeID, pos mgl32.Vec3, rot mgl32.Quat, strength float32) Constraint {
	return Constraint{Kind: KindAnchor, A: n, TargetPos: pos, TargetRot: rot, Strength: strength}
}

// Spherical makes two nodes share a point, given in each node's local frame.
func Spherical(a, b NodeID, offsetA, offsetB mgl32.Vec3) Constraint {
	return Constraint{Kind: KindSpherical, A: a, B: b, OffsetA: offsetA, OffsetB: offsetB}
}

// Distance holds two node origins at a fixed separation.
func Distance(a, b NodeID, rest float32) Constraint {
	return Constraint{Kind: KindDistance, A: a, B: b, Rest: rest}
}

// AngularCardan aligns one local axis of each node; pair with Spherical for
// a full hinge.
func AngularCardan(a, b NodeID, axisA, axisB mgl32.Vec3) Constraint {
	return Constraint{Kind: KindAngularCardan, A: a, B: b, AxisA: axisA, AxisB: axisB}
}

// CompliantSpherical is Spherical with softness.
func CompliantSpherical(a, b NodeID, offsetA, offsetB mgl32.Vec3, compliance float32) Constraint {
	return Constraint{Kind: KindCompliantSpherical, A: a, B: b, OffsetA: offsetA, OffsetB: offsetB, Compliance: compliance}
}

// CompliantFixedAngle softly holds B's rotation at restRot relative to A.
func CompliantFixedAngle(a, b NodeID, restRot mgl32.Quat, compliance float32) Constraint {
	return Constraint{Kind: KindCompliantFixedAngle, A: a, B: b, RestRot: restRot, Compliance: compliance}
}

// CompliantHinge combines a soft shared point with soft axis alignment.
func CompliantHinge(a, b NodeID, offsetA, offsetB, axisA, axisB mgl32.Vec3, compliance float32) Constraint {
	return Constraint{
		Kind: KindCompliantHinge, A: a, B: b,
		OffsetA: offsetA, OffsetB: offsetB,
		AxisA: axisA, AxisB: axisB,
		Compliance: compliance,
	}
}

// movableWeight is the solve weight of a node: inputs are authoritative and
// never move, everything else has unit weight.
func movableWeight(n NodeID) float32 {
	if n.IsInput() {
		return 0
	}
	return 1
}

func (c *Constraint) stiffness() float32 {
	return 1 / (1 + c.Compliance)
}

// apply runs one relaxation pass of the constraint against the state.
func (c *Constraint) apply(s *State) {
	switch c.Kind {
	case KindAnchor:
		if c.Strength <= 0 || movableWeight(c.A) == 0 {
			return
		}
		i := c.A
		s.NodePositions[i] = s.NodePositions[i].Add(c.TargetPos.Sub(s.NodePositions[i]).Mul(c.Strength))
		s.NodeRotations[i] = mgl32.QuatSlerp(s.NodeRotations[i], c.TargetRot, c.Strength).Normalize()

	case KindSpherical, KindCompliantSpherical:
		c.applyShared(s)

	case KindDistance:
		wa, wb := movableWeight(c.A), movableWeight(c.B)
		if wa+wb == 0 {
			return
		}
		d := s.NodePositions[c.B].Sub(s.NodePositions[c.A])
		dist := d.Len()
		if dist < 1e-8 {
			return
		}
		corr := d.Mul((dist - c.Rest) / dist / (wa + wb) * c.stiffness())
		s.NodePositions[c.A] = s.NodePositions[c.A].Add(corr.Mul(wa))
		s.NodePositions[c.B] = s.NodePositions[c.B].Sub(corr.Mul(wb))

	case KindAngularCardan:
		c.applyAxes(s)

	case KindCompliantFixedAngle:
		stiff := c.stiffness()
		if movableWeight(c.B) > 0 {
			target := s.NodeRotations[c.A].Mul(c.RestRot).Normalize()
			s.NodeRotations[c.B] = mgl32.QuatSlerp(s.NodeRotations[c.B], target, stiff).Normalize()
		} else if movableWeight(c.A) > 0 {
			target := s.NodeRotations[c.B].Mul(c.RestRot.Inverse()).Normalize()
			s.NodeRotations[c.A] = mgl32.QuatSlerp(s.NodeRotations[c.A], target, stiff).Normalize()
		}

	case KindCompliantHinge:
		c.applyShared(s)
		c.applyAxes(s)
	}
}

// applyShared moves both nodes so their local attach points meet, split by
// movable weight and scaled by stiffness.
func (c *Constraint) applyShared(s *State) {
	wa, wb := movableWeight(c.A), movableWeight(c.B)
	if wa+wb == 0 {
		return
	}
	pa := s.NodePositions[c.A].Add(s.NodeRotations[c.A].Rotate(c.OffsetA))
	pb := s.NodePositions[c.B].Add(s.NodeRotations[c.B].Rotate(c.OffsetB))
	corr := pb.Sub(pa).Mul(c.stiffness() / (wa + wb))
	s.NodePositions[c.A] = s.NodePositions[c.A].Add(corr.Mul(wa))
	s.NodePositions[c.B] = s.NodePositions[c.B].Sub(corr.Mul(wb))
}

// applyAxes rotates both nodes so their designated local axes align, split
// by movable weight.
func (c *Constraint) applyAxes(s *State) {
	wa, wb := movableWeight(c.A), movableWeight(c.B)
	if wa+wb == 0 {
		return
	}
	axisA := s.NodeRotations[c.A].Rotate(c.AxisA)
	axisB := s.NodeRotations[c.B].Rotate(c.AxisB)
	if axisA.Len() < 1e-8 || axisB.Len() < 1e-8 {
		return
	}
	full := mgl32.QuatBetweenVectors(axisA, axisB)
	stiff := c.stiffness()
	ident := mgl32.QuatIdent()
	if wa > 0 {
		turn := mgl32.QuatSlerp(ident, full, stiff*wa/(wa+wb))
		s.NodeRotations[c.A] = turn.Mul(s.NodeRotations[c.A]).Normalize()
	}
	if wb > 0 {
		turn := mgl32.QuatSlerp(ident, full.Inverse(), stiff*wb/(wa+wb))
		s.NodeRotations[c.B] = turn.Mul(s.NodeRotations[c.B]).Normalize()
	}
}
