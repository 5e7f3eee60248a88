package utils

import (
	"fmt"

	"github.com/voxelsplace/polyvox/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// SurfaceKinds lists the shapes RunGenSurface understands with their size
// arguments.
var SurfaceKinds = map[string]string{
	"sphere":   "radius",
	"box":      "x y z",
	"cylinder": "height radius",
	"uvsphere": "radius [stacks slices]",
	"cuboid":   "xmin ymin zmin xmax ymax zmax",
}

// GenSurface builds a test surface. sphere, box and cylinder are centered on
// the origin and tessellated by marching cubes with the given cell count;
// uvsphere and cuboid are exact analytic meshes.
func GenSurface(kind string, size []float64, cells int) (*surface.Mesh, error) {
	need := func(n ...int) error {
		for _, c := range n {
			if len(size) == c {
				return nil
			}
		}
		return fmt.Errorf("%s needs %s, got %d values", kind, SurfaceKinds[kind], len(size))
	}
	switch kind {
	case "sphere":
		if err := need(1); err != nil {
			return nil, err
		}
		return surface.SDFSphere(size[0], cells)
	case "box":
		if err := need(3); err != nil {
			return nil, err
		}
		return surface.SDFBox(size[0], size[1], size[2], cells)
	case "cylinder":
		if err := need(2); err != nil {
			return nil, err
		}
		return surface.SDFCylinder(size[0], size[1], cells)
	case "uvsphere":
		if err := need(1, 3); err != nil {
			return nil, err
		}
		stacks, slices := 16, 32
		if len(size) == 3 {
			stacks, slices = int(size[1]), int(size[2])
		}
		return surface.UVSphere(r3.Vec{}, size[0], stacks, slices)
	case "cuboid":
		if err := need(6); err != nil {
			return nil, err
		}
		lo := r3.Vec{X: size[0], Y: size[1], Z: size[2]}
		hi := r3.Vec{X: size[3], Y: size[4], Z: size[5]}
		if lo.X >= hi.X || lo.Y >= hi.Y || lo.Z >= hi.Z {
			return nil, fmt.Errorf("cuboid minimum %v must be below maximum %v", lo, hi)
		}
		return surface.Cuboid(lo, hi), nil
	}
	return nil, fmt.Errorf("unknown surface kind %q", kind)
}

// RunGenSurface generates a surface and saves it as .stl or .glb.
func RunGenSurface(kind string, size []float64, cells int, outPath string) error {
	m, err := GenSurface(kind, size, cells)
	if err != nil {
		return err
	}
	if err := surface.Save(outPath, m); err != nil {
		return err
	}
	fmt.Printf("Surface saved to %s (%d points, %d triangles)\n", outPath, m.NumPoints(), m.TriangleCount())
	return nil
}
