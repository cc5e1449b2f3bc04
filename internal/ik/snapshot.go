package ik

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// --- JSON types ---

type snapshotFile struct {
	Nodes map[string]nodePoseDef `json:"nodes"`
}

type nodePoseDef struct {
	Position [3]float32 `json:"position"`
	Rotation [4]float32 `json:"rotation"` // x y z w
}

// SaveSnapshot writes every node's pose to a human-readable JSON file. The
// snapshot is a debug artifact: dump a pose on demand, reload it later to
// regression-test the solver against a known configuration.
func SaveSnapshot(path string, state *State) error {
	file := snapshotFile{Nodes: make(map[string]nodePoseDef, NodeCount)}
	for _, n := range AllNodes() {
		p := state.NodePositions[n]
		q := state.NodeRotations[n]
		file.Nodes[n.String()] = nodePoseDef{
			Position: [3]float32{p.X(), p.Y(), p.Z()},
			Rotation: [4]float32{q.X(), q.Y(), q.Z(), q.W},
		}
	}

	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSnapshot reads a snapshot back into a fresh State. Unknown node names
// and missing nodes are both errors: the enumeration is closed, so a
// mismatch means the snapshot came from an incompatible build.
func LoadSnapshot(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}

	state := NewState()
	seen := 0
	for name, def := range file.Nodes {
		id, ok := nodeFromName(name)
		if !ok {
			return nil, fmt.Errorf("snapshot %s: unknown node %q", path, name)
		}
		state.NodePositions[id] = mgl32.Vec3{def.Position[0], def.Position[1], def.Position[2]}
		state.NodeRotations[id] = mgl32.Quat{
			W: def.Rotation[3],
			V: mgl32.Vec3{def.Rotation[0], def.Rotation[1], def.Rotation[2]},
		}
		seen++
	}
	if seen != int(NodeCount) {
		return nil, fmt.Errorf("snapshot %s: %d nodes, want %d", path, seen, NodeCount)
	}
	return state, nil
}
