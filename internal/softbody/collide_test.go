package softbody

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"softrig/internal/collider"
)

// A particle predicted inside a static ball must land exactly on its
// surface after one resolution pass.
func TestCollisionContainment(t *testing.T) {
	const radius = 1.0
	body := NewColliderBody(collider.NewBall(radius), nil, 1)
	points := []mgl32.Vec3{{0.4, 0.2, 0}}

	ResolveCollisions([]*ColliderBody{body}, points, 0.5)

	if d := points[0].Len(); math32.Abs(d-radius) > 1e-5 {
		t.Errorf("particle at distance %v from center, want %v", d, radius)
	}
	if body.Contacts[0].State != ContactNew {
		t.Errorf("contact state = %v, want New", body.Contacts[0].State)
	}
}

// Drift within the stiction threshold snaps the particle back to the stored
// contact exactly: the zero-slip branch.
func TestStictionSticks(t *testing.T) {
	body := NewColliderBody(collider.NewBall(1), nil, 1)
	bodies := []*ColliderBody{body}

	// First pass establishes the contact.
	points := []mgl32.Vec3{{0, 0.9, 0}}
	ResolveCollisions(bodies, points, 0.5)
	stored := body.Contacts[0].PointInLocal

	// Second pass: deep penetration, tiny tangential drift. Threshold is
	// stiction * penetration = 0.5 * 0.5 = 0.25, drift is ~0.05.
	points[0] = mgl32.Vec3{0.05, 0.5, 0}
	ResolveCollisions(bodies, points, 0.5)

	if body.Contacts[0].State != ContactSticking {
		t.Errorf("contact state = %v, want Sticking", body.Contacts[0].State)
	}
	if points[0] != stored {
		t.Errorf("resolved point %v, want stored contact %v exactly", points[0], stored)
	}
}

// Drift beyond the threshold slides the stored contact by exactly the
// threshold distance, re-projected onto the surface.
func TestStictionSlides(t *testing.T) {
	const stiction = 0.5
	body := NewColliderBody(collider.NewBall(1), nil, 1)
	bodies := []*ColliderBody{body}

	points := []mgl32.Vec3{{0, 0.9, 0}}
	ResolveCollisions(bodies, points, stiction)
	stored := body.Contacts[0].PointInLocal

	// Large tangential move at fixed depth.
	points[0] = mgl32.Vec3{0.8, 0.3, 0}
	ResolveCollisions(bodies, points, stiction)

	if body.Contacts[0].State != ContactSliding {
		t.Errorf("contact state = %v, want Sliding", body.Contacts[0].State)
	}
	// Still on the surface.
	if d := points[0].Len(); math32.Abs(d-1) > 1e-5 {
		t.Errorf("slid point at distance %v from center, want 1", d)
	}
	// The slip is bounded: no further than the raw drift, and well short of
	// the new projection.
	local := mgl32.Vec3{0.8, 0.3, 0}
	_, rawProj := body.Shape.ProjectPoint(local)
	slip := points[0].Sub(stored).Len()
	fullDrift := rawProj.Sub(stored).Len()
	if slip >= fullDrift {
		t.Errorf("slip %v should be less than the full drift %v", slip, fullDrift)
	}
	if slip == 0 {
		t.Error("sliding contact should have moved")
	}
}

// Leaving the collider clears the contact, so re-entry starts fresh as New.
func TestContactClearedOnExit(t *testing.T) {
	body := NewColliderBody(collider.NewBall(1), nil, 1)
	bodies := []*ColliderBody{body}

	points := []mgl32.Vec3{{0, 0.5, 0}}
	ResolveCollisions(bodies, points, 0.5)
	if !body.Contacts[0].Active {
		t.Fatal("contact should be active after penetration")
	}

	points[0] = mgl32.Vec3{0, 3, 0}
	ResolveCollisions(bodies, points, 0.5)
	if body.Contacts[0].Active {
		t.Error("contact should be cleared once the particle leaves")
	}

	points[0] = mgl32.Vec3{0.5, 0, 0}
	ResolveCollisions(bodies, points, 0.5)
	if body.Contacts[0].State != ContactNew {
		t.Errorf("re-entry contact state = %v, want New", body.Contacts[0].State)
	}
}

// Contacts live in the collider's local frame, so a transformed collider
// resolves identically to an untransformed one in its own frame.
func TestCollisionThroughTransform(t *testing.T) {
	xf := collider.NewTransform(
		mgl32.Vec3{5, 1, -2},
		mgl32.QuatRotate(0.6, mgl32.Vec3{0, 1, 0}),
	)
	body := NewColliderBody(collider.NewBall(1), xf, 1)

	// World point 0.5 above the ball center, inside.
	points := []mgl32.Vec3{xf.Apply(mgl32.Vec3{0, 0.5, 0})}
	ResolveCollisions([]*ColliderBody{body}, points, 0.5)

	local := xf.ApplyInverse(points[0])
	if d := local.Len(); math32.Abs(d-1) > 1e-5 {
		t.Errorf("resolved local point at distance %v from center, want 1", d)
	}
}

func TestFloorKeepsParticlesAbove(t *testing.T) {
	body := NewColliderBody(collider.NewFloor(0), nil, 3)
	points := []mgl32.Vec3{{0, -0.2, 0}, {1, 0.3, 1}, {-2, -0.01, 4}}

	ResolveCollisions([]*ColliderBody{body}, points, 0.5)

	for i, p := range points {
		if p.Y() < -1e-5 {
			t.Errorf("particle %d below floor: %v", i, p)
		}
	}
	if points[1] != (mgl32.Vec3{1, 0.3, 1}) {
		t.Error("particle above the floor should be untouched")
	}
}
