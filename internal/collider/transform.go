package collider

import "github.com/go-gl/mathgl/mgl32"

// Transform is a rigid pose: rotation then translation. A nil *Transform is
// treated as identity wherever one is accepted.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func NewTransform(position mgl32.Vec3, rotation mgl32.Quat) *Transform {
	return &Transform{Position: position, Rotation: rotation}
}

// IdentityTransform returns a fresh identity pose.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// Apply maps a local-frame point into the world frame.
func (t *Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	if t == nil {
		return p
	}
	return t.Rotation.Rotate(p).Add(t.Position)
}

// ApplyInverse maps a world-frame point into the local frame.
func (t *Transform) ApplyInverse(p mgl32.Vec3) mgl32.Vec3 {
	if t == nil {
		return p
	}
	return t.Rotation.Inverse().Rotate(p.Sub(t.Position))
}

// ApplyDir rotates a direction without translating it.
func (t *Transform) ApplyDir(d mgl32.Vec3) mgl32.Vec3 {
	if t == nil {
		return d
	}
	return t.Rotation.Rotate(d)
}
