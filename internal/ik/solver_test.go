package ik

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"softrig/internal/collider"
)

func neutralInputs() (hmd, lg, la, rg, ra collider.Transform) {
	hmd = collider.Transform{Position: mgl32.Vec3{0, 1.7, 0}, Rotation: mgl32.QuatIdent()}
	lg = collider.Transform{Position: mgl32.Vec3{-0.3, 1.0, -0.3}, Rotation: mgl32.QuatIdent()}
	la = lg
	rg = collider.Transform{Position: mgl32.Vec3{0.3, 1.0, -0.3}, Rotation: mgl32.QuatIdent()}
	ra = rg
	return
}

func solveNeutral(t *testing.T, state *State) BodyScale {
	t.Helper()
	sv := NewSolver()
	hmd, lg, la, rg, ra := neutralInputs()
	scale, err := sv.Solve(hmd, lg, la, rg, ra, mgl32.Vec2{}, mgl32.Vec2{}, state)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return scale
}

// Inputs are authoritative: the solved HMD node carries the input head pose
// exactly, untouched by the constraint pass.
func TestInputAnchorFidelity(t *testing.T) {
	state := NewState()
	hmd, _, _, _, _ := neutralInputs()
	solveNeutral(t, state)

	if state.NodePositions[NodeHmd] != hmd.Position {
		t.Errorf("Hmd position = %v, want input %v exactly", state.NodePositions[NodeHmd], hmd.Position)
	}
	if state.NodeRotations[NodeHmd] != hmd.Rotation {
		t.Errorf("Hmd rotation = %v, want input %v exactly", state.NodeRotations[NodeHmd], hmd.Rotation)
	}
}

func TestSolveWritesEveryNode(t *testing.T) {
	state := NewState()
	solveNeutral(t, state)

	for _, n := range AllNodes() {
		q := state.NodeRotations[n]
		norm := q.Len()
		if norm < 0.99 || norm > 1.01 {
			t.Errorf("node %v rotation not unit length: %v", n, norm)
		}
		for _, f := range []float32{
			state.NodePositions[n].X(), state.NodePositions[n].Y(), state.NodePositions[n].Z(),
		} {
			if math.IsNaN(float64(f)) {
				t.Fatalf("node %v position has NaN", n)
			}
		}
	}
}

func TestSolveRejectsNonFiniteInput(t *testing.T) {
	sv := NewSolver()
	state := NewState()
	hmd, lg, la, rg, ra := neutralInputs()

	bad := hmd
	bad.Position[1] = float32(math.NaN())
	if _, err := sv.Solve(bad, lg, la, rg, ra, mgl32.Vec2{}, mgl32.Vec2{}, state); err != ErrNonFiniteInput {
		t.Errorf("NaN position: err = %v, want ErrNonFiniteInput", err)
	}

	badStick := mgl32.Vec2{float32(math.Inf(1)), 0}
	if _, err := sv.Solve(hmd, lg, la, rg, ra, badStick, mgl32.Vec2{}, state); err != ErrNonFiniteInput {
		t.Errorf("Inf stick: err = %v, want ErrNonFiniteInput", err)
	}
}

// Body layout sanity for a neutral stance: head above torso above pelvis,
// feet near the ground, wrists at the grips.
func TestNeutralPoseLayout(t *testing.T) {
	state := NewState()
	scale := solveNeutral(t, state)

	headY := state.NodePositions[NodeHead].Y()
	torsoY := state.NodePositions[NodeTorso].Y()
	pelvisY := state.NodePositions[NodePelvis].Y()
	if !(headY > torsoY && torsoY > pelvisY) {
		t.Errorf("spine out of order: head %v, torso %v, pelvis %v", headY, torsoY, pelvisY)
	}

	for _, n := range []NodeID{NodeLeftFoot, NodeRightFoot} {
		if y := state.NodePositions[n].Y(); y < -0.01 || y > 0.3 {
			t.Errorf("%v at height %v, want near the ground", n, y)
		}
	}

	if state.NodePositions[NodeLeftFoot].X() >= state.NodePositions[NodeRightFoot].X() {
		t.Error("left foot should be left of right foot in a neutral stance")
	}

	if scale.SternumHeight <= scale.HipHeight {
		t.Errorf("sternum height %v should exceed hip height %v", scale.SternumHeight, scale.HipHeight)
	}
	if scale.ShoulderWidth <= 0 || scale.HipWidth <= 0 {
		t.Errorf("widths must be positive: %+v", scale)
	}
}

// Arm chains respect segment lengths after the solve.
func TestArmSegmentLengths(t *testing.T) {
	sv := NewSolver()
	state := NewState()
	hmd, lg, la, rg, ra := neutralInputs()
	if _, err := sv.Solve(hmd, lg, la, rg, ra, mgl32.Vec2{}, mgl32.Vec2{}, state); err != nil {
		t.Fatal(err)
	}

	upper := state.NodePositions[NodeLeftForearm].Sub(state.NodePositions[NodeLeftUpperArm]).Len()
	fore := state.NodePositions[NodeLeftWrist].Sub(state.NodePositions[NodeLeftForearm]).Len()
	if d := upper - sv.UpperArmLength; d > 0.05 || d < -0.05 {
		t.Errorf("upper arm length %v, want %v", upper, sv.UpperArmLength)
	}
	if d := fore - sv.ForearmLength; d > 0.05 || d < -0.05 {
		t.Errorf("forearm length %v, want %v", fore, sv.ForearmLength)
	}
}

// A locked in-stage foot holds its world position across solves regardless
// of head motion.
func TestPlantedFootHoldsPosition(t *testing.T) {
	sv := NewSolver()
	state := NewState()
	hmd, lg, la, rg, ra := neutralInputs()

	if _, err := sv.Solve(hmd, lg, la, rg, ra, mgl32.Vec2{}, mgl32.Vec2{}, state); err != nil {
		t.Fatal(err)
	}
	state.PlantLeftFoot()
	planted := state.LeftFootInStage.Position

	// Walk the head half a meter sideways.
	hmd.Position = hmd.Position.Add(mgl32.Vec3{0.5, 0, 0})
	lg.Position = lg.Position.Add(mgl32.Vec3{0.5, 0, 0})
	rg.Position = rg.Position.Add(mgl32.Vec3{0.5, 0, 0})
	if _, err := sv.Solve(hmd, lg, lg, rg, rg, mgl32.Vec2{}, mgl32.Vec2{}, state); err != nil {
		t.Fatal(err)
	}

	if !vec3Near(state.NodePositions[NodeLeftFoot], planted, 1e-3) {
		t.Errorf("planted foot moved to %v, want %v", state.NodePositions[NodeLeftFoot], planted)
	}
	// The free foot follows the body.
	if state.NodePositions[NodeRightFoot].X() < 0.2 {
		t.Errorf("free foot should follow the body, at %v", state.NodePositions[NodeRightFoot])
	}
}

// Forward stick influence extends the foot target forward of the neutral
// stance.
func TestKickInfluenceMovesFootTarget(t *testing.T) {
	sv := NewSolver()
	neutral := NewState()
	kicking := NewState()
	hmd, lg, la, rg, ra := neutralInputs()

	if _, err := sv.Solve(hmd, lg, la, rg, ra, mgl32.Vec2{}, mgl32.Vec2{}, neutral); err != nil {
		t.Fatal(err)
	}
	if _, err := sv.Solve(hmd, lg, la, rg, ra, mgl32.Vec2{0, 1}, mgl32.Vec2{}, kicking); err != nil {
		t.Fatal(err)
	}

	// Heading is identity, so forward is -Z.
	neutralZ := neutral.NodePositions[NodeLeftFootTarget].Z()
	kickZ := kicking.NodePositions[NodeLeftFootTarget].Z()
	if kickZ >= neutralZ-0.05 {
		t.Errorf("kick target z %v should be well forward of neutral %v", kickZ, neutralZ)
	}
	kickY := kicking.NodePositions[NodeLeftFootTarget].Y()
	if kickY <= neutral.NodePositions[NodeLeftFootTarget].Y() {
		t.Error("kick target should lift off the ground")
	}
	// The other leg is untouched by the left stick.
	if !vec3Near(kicking.NodePositions[NodeRightFootTarget],
		neutral.NodePositions[NodeRightFootTarget], 1e-3) {
		t.Error("right foot target should not react to the left stick")
	}
}

// Turning the head yaws the whole stance.
func TestHeadingFollowsHmdYaw(t *testing.T) {
	sv := NewSolver()
	state := NewState()
	hmd, lg, la, rg, ra := neutralInputs()
	hmd.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	if _, err := sv.Solve(hmd, lg, la, rg, ra, mgl32.Vec2{}, mgl32.Vec2{}, state); err != nil {
		t.Fatal(err)
	}

	// After a 90° yaw, the feet separate along Z instead of X.
	dz := state.NodePositions[NodeLeftFootTarget].Z() - state.NodePositions[NodeRightFootTarget].Z()
	dx := state.NodePositions[NodeLeftFootTarget].X() - state.NodePositions[NodeRightFootTarget].X()
	if abs32(dz) < abs32(dx) {
		t.Errorf("stance did not follow yaw: dx %v, dz %v", dx, dz)
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
