package ik

import (
	"github.com/go-gl/mathgl/mgl32"

	"softrig/internal/collider"
)

// WeightDistribution says which foot, if any, currently carries the body.
type WeightDistribution int

const (
	SharedWeight WeightDistribution = iota
	LeftPlanted
	RightPlanted
)

func (w WeightDistribution) String() string {
	switch w {
	case SharedWeight:
		return "SharedWeight"
	case LeftPlanted:
		return "LeftPlanted"
	case RightPlanted:
		return "RightPlanted"
	}
	return "Unknown"
}

// State is the mutable pose state for one player session. Node positions and
// rotations are rewritten on every Solve call. The foot-in-stage targets and
// weight distribution belong to an external stepping policy: when a foot
// target is non-nil that foot is held at the stored stage pose regardless of
// headset motion.
type State struct {
	NodePositions [NodeCount]mgl32.Vec3
	NodeRotations [NodeCount]mgl32.Quat

	LeftFootInStage  *collider.Transform
	RightFootInStage *collider.Transform

	WeightDistribution WeightDistribution
	BalanceOffset      mgl32.Vec3
}

func NewState() *State {
	s := &State{}
	for i := range s.NodeRotations {
		s.NodeRotations[i] = mgl32.QuatIdent()
	}
	return s
}

// PlantLeftFoot locks the left foot at its current solved pose.
func (s *State) PlantLeftFoot() {
	s.LeftFootInStage = collider.NewTransform(
		s.NodePositions[NodeLeftFoot], s.NodeRotations[NodeLeftFoot])
	s.WeightDistribution = LeftPlanted
}

// PlantRightFoot locks the right foot at its current solved pose.
func (s *State) PlantRightFoot() {
	s.RightFootInStage = collider.NewTransform(
		s.NodePositions[NodeRightFoot], s.NodeRotations[NodeRightFoot])
	s.WeightDistribution = RightPlanted
}

// ReleaseFeet clears both locked targets and returns to shared weight.
func (s *State) ReleaseFeet() {
	s.LeftFootInStage = nil
	s.RightFootInStage = nil
	s.WeightDistribution = SharedWeight
}
