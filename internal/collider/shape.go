// Package collider provides the shape query surface the soft-body solver
// projects particles against. Shapes work entirely in their own local frame;
// placement in the world is a Transform concern.
package collider

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Shape answers the one question collision resolution needs: is this local
// point inside, and where is the nearest point on the surface. The surface
// point is valid for points on either side of the boundary.
type Shape interface {
	ProjectPoint(p mgl32.Vec3) (inside bool, surface mgl32.Vec3)
}

// Ball is a sphere of the given radius centered on the local origin.
type Ball struct {
	Radius float32
}

func NewBall(radius float32) *Ball {
	return &Ball{Radius: radius}
}

func (b *Ball) ProjectPoint(p mgl32.Vec3) (bool, mgl32.Vec3) {
	dist := p.Len()
	if dist < 1e-8 {
		// Exactly at the center there is no preferred direction; pick a fixed
		// surface point rather than dividing by zero.
		return true, mgl32.Vec3{0, b.Radius, 0}
	}
	surface := p.Mul(b.Radius / dist)
	return dist < b.Radius, surface
}

// Cuboid is an axis-aligned box in its local frame, extending HalfSize in
// each direction from the origin. Rotation comes from the owning Transform.
type Cuboid struct {
	HalfSize mgl32.Vec3
}

func NewCuboid(size mgl32.Vec3) *Cuboid {
	return &Cuboid{HalfSize: size.Mul(0.5)}
}

func (c *Cuboid) ProjectPoint(p mgl32.Vec3) (bool, mgl32.Vec3) {
	h := c.HalfSize
	inside := math32.Abs(p.X()) < h.X() && math32.Abs(p.Y()) < h.Y() && math32.Abs(p.Z()) < h.Z()

	if !inside {
		// Outside: clamping each axis lands on the nearest face, edge or corner.
		return false, mgl32.Vec3{
			clamp(p.X(), -h.X(), h.X()),
			clamp(p.Y(), -h.Y(), h.Y()),
			clamp(p.Z(), -h.Z(), h.Z()),
		}
	}

	// Inside: push out along the axis with the smallest distance to a face.
	surface := p
	best := h.X() - math32.Abs(p.X())
	axis := 0
	if d := h.Y() - math32.Abs(p.Y()); d < best {
		best = d
		axis = 1
	}
	if d := h.Z() - math32.Abs(p.Z()); d < best {
		axis = 2
	}
	surface[axis] = math32.Copysign(h[axis], p[axis])
	return true, surface
}

// HalfSpace is the region behind a plane: every point p with
// dot(p, Normal) < Offset is inside. Normal must be unit length.
type HalfSpace struct {
	Normal mgl32.Vec3
	Offset float32
}

// NewFloor returns a half-space whose surface is the horizontal plane y = height.
func NewFloor(height float32) *HalfSpace {
	return &HalfSpace{Normal: mgl32.Vec3{0, 1, 0}, Offset: height}
}

func (h *HalfSpace) ProjectPoint(p mgl32.Vec3) (bool, mgl32.Vec3) {
	d := p.Dot(h.Normal) - h.Offset
	surface := p.Sub(h.Normal.Mul(d))
	return d < 0, surface
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
