// Package softbody implements a particle soft-body simulation: particles on a
// regular grid held together by shape-matching constraints, stepped with an
// XPBD substep loop and resolved against collider shapes through persistent
// stick/slide contacts.
package softbody

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// pointIndex maps grid coordinates to the flat particle index. X varies
// fastest, matching the layout CreatePoints emits.
func pointIndex(x, y, z, nx, ny int) int {
	return x + nx*(y+ny*z)
}

// CreatePoints lays out nx*ny*nz particles on a regular grid filling a box of
// the given size around center. Each axis needs at least 2 points so every
// cell has volume.
func CreatePoints(center, size mgl32.Vec3, nx, ny, nz int) []mgl32.Vec3 {
	points := make([]mgl32.Vec3, 0, nx*ny*nz)
	min := center.Sub(size.Mul(0.5))
	step := mgl32.Vec3{
		size.X() / float32(nx-1),
		size.Y() / float32(ny-1),
		size.Z() / float32(nz-1),
	}
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				points = append(points, mgl32.Vec3{
					min.X() + float32(x)*step.X(),
					min.Y() + float32(y)*step.Y(),
					min.Z() + float32(z)*step.Z(),
				})
			}
		}
	}
	return points
}

// CreateShapeConstraints builds one shape-matching constraint per 2x2x2 cell
// of the grid. The construction pose becomes the rest shape: each constraint
// stores its particles' positions relative to the cell centroid plus the
// inverse second-moment matrix of that template. A degenerate cell (zero
// volume, non-invertible second moment) is a setup error and fails here, not
// at simulate time.
func CreateShapeConstraints(points []mgl32.Vec3, nx, ny, nz int) ([]ShapeConstraint, error) {
	if nx < 2 || ny < 2 || nz < 2 {
		return nil, fmt.Errorf("softbody: grid needs at least 2 points per axis, got %dx%dx%d", nx, ny, nz)
	}
	if len(points) != nx*ny*nz {
		return nil, fmt.Errorf("softbody: grid %dx%dx%d needs %d points, got %d", nx, ny, nz, nx*ny*nz, len(points))
	}

	constraints := make([]ShapeConstraint, 0, (nx-1)*(ny-1)*(nz-1))
	for z := 0; z < nz-1; z++ {
		for y := 0; y < ny-1; y++ {
			for x := 0; x < nx-1; x++ {
				var con ShapeConstraint
				k := 0
				for dz := 0; dz <= 1; dz++ {
					for dy := 0; dy <= 1; dy++ {
						for dx := 0; dx <= 1; dx++ {
							con.PointIndices[k] = pointIndex(x+dx, y+dy, z+dz, nx, ny)
							k++
						}
					}
				}

				var centroid mgl32.Vec3
				for _, idx := range con.PointIndices {
					centroid = centroid.Add(points[idx])
				}
				centroid = centroid.Mul(1.0 / 8.0)

				var aqq mgl32.Mat3
				for i, idx := range con.PointIndices {
					q := points[idx].Sub(centroid)
					con.TemplateShape[i] = q
					aqq = aqq.Add(outer(q, q))
				}

				det := aqq.Det()
				if math32.Abs(det) < 1e-12 {
					return nil, fmt.Errorf("softbody: degenerate cell at (%d,%d,%d): second-moment determinant %g", x, y, z, det)
				}
				con.aqqInv = aqq.Inv()
				con.Rotation = mgl32.QuatIdent()
				constraints = append(constraints, con)
			}
		}
	}
	return constraints, nil
}
