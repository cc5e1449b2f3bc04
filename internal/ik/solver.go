package ik

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"softrig/internal/collider"
)

// ErrNonFiniteInput is returned when any tracked pose or thumbstick carries
// a NaN or infinity. The solver has no recovery path for bad samples, so it
// rejects them at the boundary instead of silently corrupting the pose.
var ErrNonFiniteInput = errors.New("ik: non-finite tracking input")

// BodyScale reports the proportions the solve used, for consumers sizing
// visual proxies.
type BodyScale struct {
	ShoulderWidth float32
	HipWidth      float32
	SternumHeight float32
	HipHeight     float32
}

// Solver holds the iteration count and the body-proportion tunables. All
// lengths are meters. Proportions are tuning, not structure: change them
// freely, the constraint stack adapts.
type Solver struct {
	// Iterations is the number of relaxation passes over the constraint
	// stack per Solve call. Convergence is "good enough in N passes";
	// raise it if limbs visibly lag their anchors.
	Iterations int

	HeadOffset    mgl32.Vec3 // HMD pose → head center, in HMD-local frame
	NeckDrop      float32    // head center → neck root
	TorsoLength   float32    // sternum → hip line
	ShoulderWidth float32
	HipWidth      float32

	UpperArmLength float32
	ForearmLength  float32
	ThighLength    float32
	ShinLength     float32

	WristFromGrip mgl32.Vec3 // grip pose → wrist joint, in grip-local frame
	StanceWidth   float32
	FootHeight    float32

	// ReachBias scales how far stick influence pushes the kick/punch hints.
	ReachBias float32
}

func NewSolver() *Solver {
	return &Solver{
		Iterations:     8,
		HeadOffset:     mgl32.Vec3{0, -0.08, 0.05},
		NeckDrop:       0.12,
		TorsoLength:    0.48,
		ShoulderWidth:  0.38,
		HipWidth:       0.30,
		UpperArmLength: 0.28,
		ForearmLength:  0.26,
		ThighLength:    0.42,
		ShinLength:     0.40,
		WristFromGrip:  mgl32.Vec3{0, -0.03, 0.09},
		StanceWidth:    0.34,
		FootHeight:     0.06,
		ReachBias:      0.6,
	}
}

var (
	worldUp      = mgl32.Vec3{0, 1, 0}
	localForward = mgl32.Vec3{0, 0, -1}
)

// Solve derives the full-body pose from the tracked head and hand poses and
// the two thumbstick deflections, writing every node's position and rotation
// into state. Input nodes are copied from the tracked poses and never moved
// by the constraint pass. Returns the proportions used, or
// ErrNonFiniteInput if any input fails the finite-value precondition.
func (sv *Solver) Solve(hmd, leftGrip, leftAim, rightGrip, rightAim collider.Transform,
	leftStick, rightStick mgl32.Vec2, state *State) (BodyScale, error) {

	for _, xf := range []collider.Transform{hmd, leftGrip, leftAim, rightGrip, rightAim} {
		if !finiteTransform(xf) {
			return BodyScale{}, ErrNonFiniteInput
		}
	}
	if !finiteVec2(leftStick) || !finiteVec2(rightStick) {
		return BodyScale{}, ErrNonFiniteInput
	}

	// Inputs are authoritative.
	setNode(state, NodeHmd, hmd.Position, hmd.Rotation)
	setNode(state, NodeLeftGrip, leftGrip.Position, leftGrip.Rotation)
	setNode(state, NodeLeftAim, leftAim.Position, leftAim.Rotation)
	setNode(state, NodeRightGrip, rightGrip.Position, rightGrip.Rotation)
	setNode(state, NodeRightAim, rightAim.Position, rightAim.Rotation)

	heading := yawHeading(hmd.Rotation)
	forward := heading.Rotate(localForward)
	right := forward.Cross(worldUp)

	// Head chain, straight off the HMD.
	headPos := hmd.Apply(sv.HeadOffset)
	neckPos := headPos.Sub(worldUp.Mul(sv.NeckDrop))
	sternumPos := neckPos.Sub(worldUp.Mul(0.06))
	torsoPos := sternumPos.Sub(worldUp.Mul(sv.TorsoLength / 2))
	pelvisPos := sternumPos.Sub(worldUp.Mul(sv.TorsoLength))

	balancePos := pelvisPos.Add(state.BalanceOffset)
	basePos := mgl32.Vec3{balancePos.X(), 0, balancePos.Z()}

	// Wrists hang off the grips at a fixed local offset; palms ride the
	// grip pose directly.
	leftWrist := leftGrip.Apply(sv.WristFromGrip)
	rightWrist := rightGrip.Apply(sv.WristFromGrip)

	leftInf := influenceFromStick(leftStick)
	rightInf := influenceFromStick(rightStick)

	leftFootTarget, leftFootRot, leftPlantStrength := sv.footTarget(
		state, basePos, forward, right.Mul(-1), heading, leftInf, state.LeftFootInStage, LeftPlanted)
	rightFootTarget, rightFootRot, rightPlantStrength := sv.footTarget(
		state, basePos, forward, right, heading, rightInf, state.RightFootInStage, RightPlanted)

	// Helper nodes.
	setNode(state, NodeNeckRoot, neckPos, heading)
	setNode(state, NodeLeftWrist, leftWrist, leftGrip.Rotation)
	setNode(state, NodeRightWrist, rightWrist, rightGrip.Rotation)
	setNode(state, NodeBase, basePos, heading)
	setNode(state, NodeBalancePoint, balancePos, heading)
	setNode(state, NodeLeftFootTarget, leftFootTarget, leftFootRot)
	setNode(state, NodeRightFootTarget, rightFootTarget, rightFootRot)

	// Direct body placements and seeds for the iterated segments.
	setNode(state, NodeHead, headPos, hmd.Rotation)
	setNode(state, NodeTorso, torsoPos, heading)
	setNode(state, NodePelvis, pelvisPos, heading)
	setNode(state, NodeLeftPalm, leftGrip.Position, leftGrip.Rotation)
	setNode(state, NodeRightPalm, rightGrip.Position, rightGrip.Rotation)

	leftShoulder := sternumPos.Add(right.Mul(-sv.ShoulderWidth / 2))
	rightShoulder := sternumPos.Add(right.Mul(sv.ShoulderWidth / 2))
	leftHip := pelvisPos.Add(right.Mul(-sv.HipWidth / 2))
	rightHip := pelvisPos.Add(right.Mul(sv.HipWidth / 2))

	leftElbow := sv.elbowSeed(leftShoulder, leftWrist, forward, right.Mul(-1), leftInf)
	rightElbow := sv.elbowSeed(rightShoulder, rightWrist, forward, right, rightInf)
	leftKnee := sv.kneeSeed(leftHip, leftFootTarget, forward)
	rightKnee := sv.kneeSeed(rightHip, rightFootTarget, forward)

	setNode(state, NodeLeftUpperArm, leftShoulder, segmentRotation(leftShoulder, leftElbow))
	setNode(state, NodeLeftForearm, leftElbow, segmentRotation(leftElbow, leftWrist))
	setNode(state, NodeRightUpperArm, rightShoulder, segmentRotation(rightShoulder, rightElbow))
	setNode(state, NodeRightForearm, rightElbow, segmentRotation(rightElbow, rightWrist))
	setNode(state, NodeLeftThigh, leftHip, segmentRotation(leftHip, leftKnee))
	setNode(state, NodeLeftShin, leftKnee, segmentRotation(leftKnee, leftFootTarget))
	setNode(state, NodeRightThigh, rightHip, segmentRotation(rightHip, rightKnee))
	setNode(state, NodeRightShin, rightKnee, segmentRotation(rightKnee, rightFootTarget))
	setNode(state, NodeLeftFoot, leftFootTarget, leftFootRot)
	setNode(state, NodeRightFoot, rightFootTarget, rightFootRot)

	stack := sv.buildStack(state, heading,
		leftElbow, rightElbow, leftKnee, rightKnee,
		leftFootTarget, leftFootRot, leftPlantStrength,
		rightFootTarget, rightFootRot, rightPlantStrength)

	for pass := 0; pass < sv.Iterations; pass++ {
		for i := range stack {
			stack[i].apply(state)
		}
	}

	// Final segment orientations follow the solved joint positions.
	refreshSegmentRotations(state)

	return BodyScale{
		ShoulderWidth: sv.ShoulderWidth,
		HipWidth:      sv.HipWidth,
		SternumHeight: sternumPos.Y(),
		HipHeight:     pelvisPos.Y(),
	}, nil
}

// buildStack assembles the per-call constraint stack. Soft structural
// constraints come first and full-strength anchors last, so each pass ends
// with the authoritative targets re-pinned exactly.
func (sv *Solver) buildStack(state *State, heading mgl32.Quat,
	leftElbow, rightElbow, leftKnee, rightKnee mgl32.Vec3,
	leftFootTarget mgl32.Vec3, leftFootRot mgl32.Quat, leftPlantStrength float32,
	rightFootTarget mgl32.Vec3, rightFootRot mgl32.Quat, rightPlantStrength float32) []Constraint {

	halfTorso := sv.TorsoLength / 2
	lat := mgl32.Vec3{1, 0, 0}

	stack := []Constraint{
		// Spine.
		Spherical(NodeNeckRoot, NodeTorso, mgl32.Vec3{}, mgl32.Vec3{0, halfTorso + 0.06, 0}),
		CompliantSpherical(NodeTorso, NodePelvis, mgl32.Vec3{0, -halfTorso, 0}, mgl32.Vec3{}, 0.2),
		CompliantFixedAngle(NodeTorso, NodePelvis, mgl32.QuatIdent(), 0.5),
		Distance(NodeTorso, NodePelvis, halfTorso),

		// Left arm.
		CompliantSpherical(NodeTorso, NodeLeftUpperArm,
			mgl32.Vec3{-sv.ShoulderWidth / 2, halfTorso, 0}, mgl32.Vec3{}, 0.1),
		Distance(NodeLeftUpperArm, NodeLeftForearm, sv.UpperArmLength),
		Distance(NodeLeftForearm, NodeLeftWrist, sv.ForearmLength),
		CompliantHinge(NodeLeftUpperArm, NodeLeftForearm,
			mgl32.Vec3{0, -sv.UpperArmLength, 0}, mgl32.Vec3{}, lat, lat, 0.4),
		Anchor(NodeLeftForearm, leftElbow, segmentRotation(leftElbow, state.NodePositions[NodeLeftWrist]), 0.25),

		// Right arm.
		CompliantSpherical(NodeTorso, NodeRightUpperArm,
			mgl32.Vec3{sv.ShoulderWidth / 2, halfTorso, 0}, mgl32.Vec3{}, 0.1),
		Distance(NodeRightUpperArm, NodeRightForearm, sv.UpperArmLength),
		Distance(NodeRightForearm, NodeRightWrist, sv.ForearmLength),
		CompliantHinge(NodeRightUpperArm, NodeRightForearm,
			mgl32.Vec3{0, -sv.UpperArmLength, 0}, mgl32.Vec3{}, lat, lat, 0.4),
		Anchor(NodeRightForearm, rightElbow, segmentRotation(rightElbow, state.NodePositions[NodeRightWrist]), 0.25),

		// Left leg.
		CompliantSpherical(NodePelvis, NodeLeftThigh,
			mgl32.Vec3{-sv.HipWidth / 2, 0, 0}, mgl32.Vec3{}, 0.05),
		Distance(NodeLeftThigh, NodeLeftShin, sv.ThighLength),
		Distance(NodeLeftShin, NodeLeftFoot, sv.ShinLength),
		AngularCardan(NodeLeftThigh, NodeLeftShin, lat, lat),
		Anchor(NodeLeftShin, leftKnee, segmentRotation(leftKnee, leftFootTarget), 0.25),

		// Right leg.
		CompliantSpherical(NodePelvis, NodeRightThigh,
			mgl32.Vec3{sv.HipWidth / 2, 0, 0}, mgl32.Vec3{}, 0.05),
		Distance(NodeRightThigh, NodeRightShin, sv.ThighLength),
		Distance(NodeRightShin, NodeRightFoot, sv.ShinLength),
		AngularCardan(NodeRightThigh, NodeRightShin, lat, lat),
		Anchor(NodeRightShin, rightKnee, segmentRotation(rightKnee, rightFootTarget), 0.25),

		// Authoritative anchors, applied last each pass.
		Anchor(NodeHead, state.NodePositions[NodeHead], state.NodeRotations[NodeHead], 1),
		Anchor(NodeNeckRoot, state.NodePositions[NodeNeckRoot], heading, 1),
		Anchor(NodeLeftWrist, state.NodePositions[NodeLeftWrist], state.NodeRotations[NodeLeftWrist], 1),
		Anchor(NodeRightWrist, state.NodePositions[NodeRightWrist], state.NodeRotations[NodeRightWrist], 1),
		Anchor(NodeLeftFoot, leftFootTarget, leftFootRot, leftPlantStrength),
		Anchor(NodeRightFoot, rightFootTarget, rightFootRot, rightPlantStrength),
	}
	return stack
}

// footTarget picks where a foot wants to be this frame. A locked in-stage
// pose wins outright; otherwise the foot stands under its hip, pushed by the
// stick's kick influence. The anchor strength rises to exact when the foot
// carries the weight.
func (sv *Solver) footTarget(state *State, basePos, forward, outward mgl32.Vec3,
	heading mgl32.Quat, inf StickInfluence, locked *collider.Transform,
	planted WeightDistribution) (mgl32.Vec3, mgl32.Quat, float32) {

	if locked != nil {
		strength := float32(0.9)
		if state.WeightDistribution == planted {
			strength = 1
		}
		return locked.Position, locked.Rotation, strength
	}

	legLen := sv.ThighLength + sv.ShinLength
	target := basePos.Add(outward.Mul(sv.StanceWidth / 2))
	target[1] = sv.FootHeight

	// Kick influence lifts and extends; stomp influence keeps the foot
	// under the body and pinned to the ground.
	kick := inf.FootForward * sv.ReachBias
	target = target.Add(forward.Mul(kick * legLen * 0.7))
	target[1] += kick * legLen * 0.45
	target = target.Sub(outward.Mul(inf.FootDown * sv.StanceWidth * 0.2))

	strength := float32(0.85)
	if state.WeightDistribution == planted {
		strength = 1
	}
	return target, heading, strength
}

// elbowSeed places the elbow hint for a two-bone arm. The neutral hint pulls
// the elbow down and slightly behind the shoulder line; punch influence
// straightens the arm forward, guard influence flares the elbow out and up.
func (sv *Solver) elbowSeed(shoulder, wrist, forward, outward mgl32.Vec3, inf StickInfluence) mgl32.Vec3 {
	hint := worldUp.Mul(-1).Add(forward.Mul(-0.4)).Add(outward.Mul(0.3))
	hint = hint.Add(forward.Mul(inf.HandForward * 0.8))
	hint = hint.Add(outward.Mul(inf.HandUp * 0.9)).Add(worldUp.Mul(inf.HandUp * 0.6))
	return solveTwoBone(shoulder, wrist, sv.UpperArmLength, sv.ForearmLength, hint)
}

// kneeSeed places the knee hint for a two-bone leg; knees bend forward.
func (sv *Solver) kneeSeed(hip, foot, forward mgl32.Vec3) mgl32.Vec3 {
	return solveTwoBone(hip, foot, sv.ThighLength, sv.ShinLength, forward)
}

// solveTwoBone returns the middle joint of a two-segment chain from root to
// target, bending toward hint. The root-target distance is clamped into the
// reachable annulus first.
func solveTwoBone(root, target mgl32.Vec3, l1, l2 float32, hint mgl32.Vec3) mgl32.Vec3 {
	d := target.Sub(root)
	dist := d.Len()
	minDist := math32.Abs(l1-l2) + 1e-4
	maxDist := l1 + l2 - 1e-4
	if dist < 1e-6 {
		d = worldUp.Mul(-1)
		dist = 1
	}
	dir := d.Mul(1 / dist)
	if dist < minDist {
		dist = minDist
	}
	if dist > maxDist {
		dist = maxDist
	}

	a := (l1*l1 - l2*l2 + dist*dist) / (2 * dist)
	h := math32.Sqrt(math32.Max(l1*l1-a*a, 0))

	perp := hint.Sub(dir.Mul(dir.Dot(hint)))
	if perp.Len() < 1e-6 {
		perp = worldUp.Cross(dir)
		if perp.Len() < 1e-6 {
			perp = mgl32.Vec3{1, 0, 0}
		}
	}
	return root.Add(dir.Mul(a)).Add(perp.Normalize().Mul(h))
}

// segmentRotation orients a proxy modeled pointing down (-Y) along the
// segment from joint a to joint b.
func segmentRotation(a, b mgl32.Vec3) mgl32.Quat {
	d := b.Sub(a)
	if d.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatBetweenVectors(mgl32.Vec3{0, -1, 0}, d).Normalize()
}

// refreshSegmentRotations recomputes limb orientations from the solved joint
// positions so proxies line up even where the angular constraints were soft.
func refreshSegmentRotations(state *State) {
	pairs := [...][3]NodeID{
		{NodeLeftUpperArm, NodeLeftUpperArm, NodeLeftForearm},
		{NodeLeftForearm, NodeLeftForearm, NodeLeftWrist},
		{NodeRightUpperArm, NodeRightUpperArm, NodeRightForearm},
		{NodeRightForearm, NodeRightForearm, NodeRightWrist},
		{NodeLeftThigh, NodeLeftThigh, NodeLeftShin},
		{NodeLeftShin, NodeLeftShin, NodeLeftFoot},
		{NodeRightThigh, NodeRightThigh, NodeRightShin},
		{NodeRightShin, NodeRightShin, NodeRightFoot},
	}
	for _, p := range pairs {
		state.NodeRotations[p[0]] = segmentRotation(
			state.NodePositions[p[1]], state.NodePositions[p[2]])
	}
}

func setNode(state *State, n NodeID, pos mgl32.Vec3, rot mgl32.Quat) {
	state.NodePositions[n] = pos
	state.NodeRotations[n] = rot
}

// yawHeading strips pitch and roll, keeping only the horizontal facing.
func yawHeading(q mgl32.Quat) mgl32.Quat {
	forward := q.Rotate(localForward)
	flat := mgl32.Vec3{forward.X(), 0, forward.Z()}
	if flat.Len() < 1e-4 {
		// Looking straight up or down: fall back to the roll axis.
		up := q.Rotate(worldUp)
		flat = mgl32.Vec3{up.X(), 0, up.Z()}
		if flat.Len() < 1e-4 {
			return mgl32.QuatIdent()
		}
	}
	return mgl32.QuatBetweenVectors(localForward, flat.Normalize()).Normalize()
}

func finiteTransform(t collider.Transform) bool {
	return finiteVec3(t.Position) && finiteQuat(t.Rotation)
}

func finiteVec3(v mgl32.Vec3) bool {
	return finite(v.X()) && finite(v.Y()) && finite(v.Z())
}

func finiteVec2(v mgl32.Vec2) bool {
	return finite(v.X()) && finite(v.Y())
}

func finiteQuat(q mgl32.Quat) bool {
	return finite(q.W) && finiteVec3(q.V)
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
