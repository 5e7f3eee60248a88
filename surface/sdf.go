package surface

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultMeshCells is the marching cubes resolution along the longest axis
// used by the SDF generators when cells <= 0.
const DefaultMeshCells = 64

// SDFSphere tessellates a sphere of the given radius centered at the origin.
func SDFSphere(radius float64, cells int) (*Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdf sphere: %w", err)
	}
	return FromSDF("sphere", s, cells), nil
}

// SDFBox tessellates a box of the given size centered at the origin.
func SDFBox(x, y, z float64, cells int) (*Mesh, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdf box: %w", err)
	}
	return FromSDF("box", s, cells), nil
}

// SDFCylinder tessellates a z-aligned cylinder centered at the origin.
func SDFCylinder(height, radius float64, cells int) (*Mesh, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdf cylinder: %w", err)
	}
	return FromSDF("cylinder", s, cells), nil
}

// FromSDF converts an sdfx solid into a welded triangle mesh using uniform
// marching cubes.
func FromSDF(name string, s sdf.SDF3, cells int) *Mesh {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	b := newBuilder(name)
	for _, tri := range triangles {
		var p [3]r3.Vec
		for j := 0; j < 3; j++ {
			v := tri[j]
			p[j] = r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
		}
		b.triangle(p[0], p[1], p[2])
	}
	return b.mesh
}
