// Package ik derives a full humanoid pose from three tracked points: the
// headset and two hand controllers. A fixed graph of named skeletal
// landmarks is pulled into shape by a stack of positional and angular
// constraints, iterated a bounded number of passes per solve.
package ik

// NodeID names one skeletal landmark. The enumeration is closed: every
// consumer (model mapping, snapshot serialization, the solver itself)
// handles all NodeCount variants, checked by tests against the tables below.
type NodeID int

const (
	// Inputs: driven directly by tracked poses, never solved.
	NodeHmd NodeID = iota
	NodeLeftGrip
	NodeLeftAim
	NodeRightGrip
	NodeRightAim

	// Helpers: derived anchors the constraint stack hangs from.
	NodeNeckRoot
	NodeLeftWrist
	NodeRightWrist
	NodeBase
	NodeBalancePoint
	NodeLeftFootTarget
	NodeRightFootTarget

	// Body: renderable segments.
	NodeHead
	NodeTorso
	NodePelvis
	NodeLeftPalm
	NodeRightPalm
	NodeLeftUpperArm
	NodeLeftForearm
	NodeRightUpperArm
	NodeRightForearm
	NodeLeftThigh
	NodeLeftShin
	NodeRightThigh
	NodeRightShin
	NodeLeftFoot
	NodeRightFoot

	NodeCount
)

var nodeNames = [NodeCount]string{
	NodeHmd:             "Hmd",
	NodeLeftGrip:        "LeftGrip",
	NodeLeftAim:         "LeftAim",
	NodeRightGrip:       "RightGrip",
	NodeRightAim:        "RightAim",
	NodeNeckRoot:        "NeckRoot",
	NodeLeftWrist:       "LeftWrist",
	NodeRightWrist:      "RightWrist",
	NodeBase:            "Base",
	NodeBalancePoint:    "BalancePoint",
	NodeLeftFootTarget:  "LeftFootTarget",
	NodeRightFootTarget: "RightFootTarget",
	NodeHead:            "Head",
	NodeTorso:           "Torso",
	NodePelvis:          "Pelvis",
	NodeLeftPalm:        "LeftPalm",
	NodeRightPalm:       "RightPalm",
	NodeLeftUpperArm:    "LeftUpperArm",
	NodeLeftForearm:     "LeftForearm",
	NodeRightUpperArm:   "RightUpperArm",
	NodeRightForearm:    "RightForearm",
	NodeLeftThigh:       "LeftThigh",
	NodeLeftShin:        "LeftShin",
	NodeRightThigh:      "RightThigh",
	NodeRightShin:       "RightShin",
	NodeLeftFoot:        "LeftFoot",
	NodeRightFoot:       "RightFoot",
}

func (n NodeID) String() string {
	if n < 0 || n >= NodeCount {
		return "InvalidNode"
	}
	return nodeNames[n]
}

// nodeFromName is the inverse of String, used by snapshot loading.
func nodeFromName(name string) (NodeID, bool) {
	for id, n := range nodeNames {
		if n == name {
			return NodeID(id), true
		}
	}
	return 0, false
}

// IsInput reports whether the node is driven directly by tracked poses.
// Input nodes are immovable during the constraint solve.
func (n NodeID) IsInput() bool {
	return n >= NodeHmd && n <= NodeRightAim
}

// IsHelper reports whether the node is a derived anchor.
func (n NodeID) IsHelper() bool {
	return n >= NodeNeckRoot && n <= NodeRightFootTarget
}

// IsBody reports whether the node is a renderable segment.
func (n NodeID) IsBody() bool {
	return n >= NodeHead && n <= NodeRightFoot
}

// ModelName maps each Body node to its visual proxy model. Inputs and
// helpers have no proxy and map to the empty string. Every variant appears
// here; the length check against NodeCount is enforced by tests.
func (n NodeID) ModelName() string {
	switch n {
	case NodeHead:
		return "proxy/head"
	case NodeTorso:
		return "proxy/torso"
	case NodePelvis:
		return "proxy/pelvis"
	case NodeLeftPalm:
		return "proxy/palm_left"
	case NodeRightPalm:
		return "proxy/palm_right"
	case NodeLeftUpperArm:
		return "proxy/upper_arm_left"
	case NodeLeftForearm:
		return "proxy/forearm_left"
	case NodeRightUpperArm:
		return "proxy/upper_arm_right"
	case NodeRightForearm:
		return "proxy/forearm_right"
	case NodeLeftThigh:
		return "proxy/thigh_left"
	case NodeLeftShin:
		return "proxy/shin_left"
	case NodeRightThigh:
		return "proxy/thigh_right"
	case NodeRightShin:
		return "proxy/shin_right"
	case NodeLeftFoot:
		return "proxy/foot_left"
	case NodeRightFoot:
		return "proxy/foot_right"
	case NodeHmd, NodeLeftGrip, NodeLeftAim, NodeRightGrip, NodeRightAim,
		NodeNeckRoot, NodeLeftWrist, NodeRightWrist, NodeBase, NodeBalancePoint,
		NodeLeftFootTarget, NodeRightFootTarget:
		return ""
	}
	return ""
}

// AllNodes returns every NodeID in declaration order.
func AllNodes() []NodeID {
	nodes := make([]NodeID, NodeCount)
	for i := range nodes {
		nodes[i] = NodeID(i)
	}
	return nodes
}
