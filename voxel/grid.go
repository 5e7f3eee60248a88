package voxel

import (
	"math"

	"github.com/voxelsplace/polyvox/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxVoxels caps the size of a single volume buffer.
const MaxVoxels = 1 << 31

// GridSpec is the geometry of a regular voxel grid. Voxel (i,j,k) samples the
// world point Origin + (i,j,k)*Spacing; the extent is [0,Dims-1] per axis.
type GridSpec struct {
	Spacing [3]float64
	Dims    [3]int
	Origin  [3]float64
}

// NewGridSpec derives the grid covering b at the given uniform spacing:
// Dims[a] = ceil(span(a)/spacing). The origin follows mode.
func NewGridSpec(b surface.Bounds, spacing float64, mode OriginMode) (GridSpec, error) {
	if math.IsNaN(spacing) || math.IsInf(spacing, 0) || spacing <= 0 {
		return GridSpec{}, configErrorf("spacing", "must be a positive number, got %g", spacing)
	}
	var g GridSpec
	total := 1.0
	for a := 0; a < 3; a++ {
		n := math.Ceil(b.Span(a) / spacing)
		if math.IsNaN(n) || n < 1 {
			return GridSpec{}, configErrorf("bounds", "%s range [%g, %g] gives %g voxels at spacing %g",
				axisNames[a], b.Min(a), b.Max(a), n, spacing)
		}
		total *= n
		if total > MaxVoxels {
			return GridSpec{}, configErrorf("bounds", "grid exceeds %d voxels at spacing %g", MaxVoxels, spacing)
		}
		g.Dims[a] = int(n)
		g.Spacing[a] = spacing
		if mode == OriginBoundsMin {
			g.Origin[a] = b.Min(a)
		}
	}
	return g, nil
}

// Extent returns the inclusive index ranges as imin,imax,jmin,jmax,kmin,kmax.
func (g GridSpec) Extent() [6]int {
	return [6]int{0, g.Dims[0] - 1, 0, g.Dims[1] - 1, 0, g.Dims[2] - 1}
}

// NumVoxels returns Dims[0]*Dims[1]*Dims[2].
func (g GridSpec) NumVoxels() int {
	return g.Dims[0] * g.Dims[1] * g.Dims[2]
}

// Index returns the buffer offset of voxel (i,j,k); x varies fastest.
func (g GridSpec) Index(i, j, k int) int {
	return i + g.Dims[0]*(j+g.Dims[1]*k)
}

// InGrid reports whether (i,j,k) lies inside the extent.
func (g GridSpec) InGrid(i, j, k int) bool {
	return i >= 0 && j >= 0 && k >= 0 && i < g.Dims[0] && j < g.Dims[1] && k < g.Dims[2]
}

// Coord returns the world position sampled by voxel (i,j,k).
func (g GridSpec) Coord(i, j, k int) r3.Vec {
	return r3.Vec{
		X: g.Origin[0] + float64(i)*g.Spacing[0],
		Y: g.Origin[1] + float64(j)*g.Spacing[1],
		Z: g.Origin[2] + float64(k)*g.Spacing[2],
	}
}

// Bounds returns the world box spanned by the voxel sample points.
func (g GridSpec) Bounds() surface.Bounds {
	var b surface.Bounds
	for a := 0; a < 3; a++ {
		b[2*a] = g.Origin[a]
		b[2*a+1] = g.Origin[a] + float64(g.Dims[a]-1)*g.Spacing[a]
	}
	return b
}
