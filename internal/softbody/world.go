package softbody

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"
)

// World holds everything the substep needs besides the particle arrays: the
// collider bodies with their persistent contact state, optional distance
// constraints, and a scratch buffer for pre-step positions. Callers own the
// particle arrays; at most one Substep may be in flight per World.
type World struct {
	Bodies   []*ColliderBody
	Distance []DistanceConstraint

	prev []mgl32.Vec3
}

func NewWorld() *World {
	return &World{}
}

// AddBody registers a collider body. Its contact array must be sized for the
// particle count the world will be stepped with.
func (w *World) AddBody(b *ColliderBody) {
	w.Bodies = append(w.Bodies, b)
	log.Printf("Softbody: collider added (%d total)", len(w.Bodies))
}

func (w *World) RemoveBody(b *ColliderBody) {
	for i, body := range w.Bodies {
		if body == b {
			w.Bodies = append(w.Bodies[:i], w.Bodies[i+1:]...)
			return
		}
	}
}

// KineticEnergy sums ½·m·|v|² over the particle set. Diagnostic only.
func KineticEnergy(velocities []mgl32.Vec3, mass float32) float32 {
	var sum float32
	for _, v := range velocities {
		sum += v.Dot(v)
	}
	return 0.5 * mass * sum
}
