package softbody

import (
	"github.com/go-gl/mathgl/mgl32"

	"softrig/internal/collider"
)

// ContactState classifies a persistent particle contact.
type ContactState int

const (
	// ContactNew marks a contact created this resolution pass.
	ContactNew ContactState = iota
	// ContactSticking means the particle held its stored contact point.
	ContactSticking
	// ContactSliding means the particle slipped along the surface, bounded by
	// the stiction threshold.
	ContactSliding
)

func (s ContactState) String() string {
	switch s {
	case ContactNew:
		return "New"
	case ContactSticking:
		return "Sticking"
	case ContactSliding:
		return "Sliding"
	}
	return "Unknown"
}

// Contact is the persistent per-particle record against one collider body.
// PointInLocal lives in the collider's local frame so a moving collider
// carries its contacts with it. Active is cleared the moment the particle
// leaves the shape, so a re-entering particle always starts a fresh contact.
type Contact struct {
	PointInLocal mgl32.Vec3
	State        ContactState
	Active       bool
}

// ColliderBody pairs a collider shape and its world pose with the per-particle
// contact array. A nil Transform means the shape sits at the world origin.
type ColliderBody struct {
	Shape     collider.Shape
	Transform *collider.Transform
	Contacts  []Contact
}

func NewColliderBody(shape collider.Shape, xf *collider.Transform, particleCount int) *ColliderBody {
	return &ColliderBody{
		Shape:     shape,
		Transform: xf,
		Contacts:  make([]Contact, particleCount),
	}
}

// ResolveCollisions projects every penetrating particle out of every collider
// body. A particle with a live contact either sticks (snaps exactly back to
// the stored contact point, zero slip) or slides: the stored point advances
// toward the new projection by exactly stictionFactor × penetration depth,
// then re-projects onto the surface so curved shapes stay watertight. Plain
// linear pass per body; the intended scale is one soft body against a
// handful of colliders.
func ResolveCollisions(bodies []*ColliderBody, pointsNext []mgl32.Vec3, stictionFactor float32) {
	for _, body := range bodies {
		for i := range pointsNext {
			local := body.Transform.ApplyInverse(pointsNext[i])
			inside, proj := body.Shape.ProjectPoint(local)
			con := &body.Contacts[i]

			if !inside {
				con.Active = false
				continue
			}

			if !con.Active {
				con.Active = true
				con.State = ContactNew
				con.PointInLocal = proj
			} else {
				penetration := local.Sub(proj).Len()
				drift := proj.Sub(con.PointInLocal)
				maxSlip := stictionFactor * penetration
				if dist := drift.Len(); dist > maxSlip {
					moved := con.PointInLocal.Add(drift.Mul(maxSlip / dist))
					_, moved = body.Shape.ProjectPoint(moved)
					con.PointInLocal = moved
					con.State = ContactSliding
				} else {
					con.State = ContactSticking
				}
			}

			pointsNext[i] = body.Transform.Apply(con.PointInLocal)
		}
	}
}
