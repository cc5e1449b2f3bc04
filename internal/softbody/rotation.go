package softbody

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/mat"
)

const (
	// Iteration cap and convergence tolerance for the warm-started extraction.
	// With a seed from the previous substep one or two iterations usually
	// suffice; a cold identity seed converges well inside the cap.
	maxRotationIters = 32
	rotationTol      = 1e-6
)

// outer returns the outer product a ⊗ b (entry i,j = a_i * b_j).
func outer(a, b mgl32.Vec3) mgl32.Mat3 {
	return mgl32.Mat3FromCols(a.Mul(b.X()), a.Mul(b.Y()), a.Mul(b.Z()))
}

// quatFromMat3 converts a pure rotation matrix to a unit quaternion.
func quatFromMat3(m mgl32.Mat3) mgl32.Quat {
	return mgl32.Mat4ToQuat(m.Mat4()).Normalize()
}

// ExtractRotationSVD computes the rotational part of f by one-shot polar
// decomposition: SVD with the singular values replaced by [1, 1, sign(det)],
// which strips scale and shear and rejects reflections. It depends on no
// cached state, so it serves as the cold-start and as the reference the
// iterative path is tested against.
func ExtractRotationSVD(f mgl32.Mat3) mgl32.Quat {
	a := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			a.Set(r, c, float64(f.At(r, c)))
		}
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return mgl32.QuatIdent()
	}
	var u, v, rot mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	rot.Mul(&u, v.T())
	if mat.Det(&rot) < 0 {
		// Reflection: flip the axis of the smallest singular value.
		for r := 0; r < 3; r++ {
			u.Set(r, 2, -u.At(r, 2))
		}
		rot.Mul(&u, v.T())
	}

	var out mgl32.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.Set(r, c, float32(rot.At(r, c)))
		}
	}
	return quatFromMat3(out)
}

// ExtractRotation refines the rotation seed toward the rotational part of f
// by the iterative angular-step method. Seeding with the previous substep's
// result makes this much cheaper than the SVD path while converging to the
// same rotation for well-conditioned input.
func ExtractRotation(f mgl32.Mat3, seed mgl32.Quat) mgl32.Quat {
	q := seed.Normalize()
	for iter := 0; iter < maxRotationIters; iter++ {
		r := q.Mat4().Mat3()
		num := r.Col(0).Cross(f.Col(0)).
			Add(r.Col(1).Cross(f.Col(1))).
			Add(r.Col(2).Cross(f.Col(2)))
		den := math32.Abs(r.Col(0).Dot(f.Col(0))+r.Col(1).Dot(f.Col(1))+r.Col(2).Dot(f.Col(2))) + 1e-9
		omega := num.Mul(1 / den)
		angle := omega.Len()
		if angle < rotationTol {
			break
		}
		q = mgl32.QuatRotate(angle, omega.Mul(1/angle)).Mul(q).Normalize()
	}
	return q
}
