// Package surface holds polygonal surface meshes and the readers, writers and
// generators that produce them. The voxelizer only depends on the Surface
// interface, so any backend that can enumerate points and faces will do.
package surface

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrFormat is returned (wrapped) by readers when the input is malformed.
var ErrFormat = errors.New("surface: malformed input")

// Surface is a read-only polygonal surface.
// Polygons are sequences of point indices; a closed 2-manifold is assumed
// but never checked.
type Surface interface {
	NumPoints() int
	Point(i int) r3.Vec
	NumPolygons() int
	Polygon(i int) []int
	Bounds() Bounds
}

// Bounds is an axis-aligned box stored as xmin,xmax,ymin,ymax,zmin,zmax.
type Bounds [6]float64

// Min returns the lower bound along axis (0=x, 1=y, 2=z).
func (b Bounds) Min(axis int) float64 { return b[2*axis] }

// Max returns the upper bound along axis.
func (b Bounds) Max(axis int) float64 { return b[2*axis+1] }

// Span returns Max(axis)-Min(axis).
func (b Bounds) Span(axis int) float64 { return b[2*axis+1] - b[2*axis] }

// Contains reports whether o lies entirely within b.
func (b Bounds) Contains(o Bounds) bool {
	for a := 0; a < 3; a++ {
		if o.Min(a) < b.Min(a) || o.Max(a) > b.Max(a) {
			return false
		}
	}
	return true
}

// BoundsOf computes the bounds of a point set. The zero box is returned for
// an empty set.
func BoundsOf(points []r3.Vec) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, p := range points {
		b.extend(p)
	}
	return b
}

func (b *Bounds) extend(p r3.Vec) {
	if p.X < b[0] {
		b[0] = p.X
	}
	if p.X > b[1] {
		b[1] = p.X
	}
	if p.Y < b[2] {
		b[2] = p.Y
	}
	if p.Y > b[3] {
		b[3] = p.Y
	}
	if p.Z < b[4] {
		b[4] = p.Z
	}
	if p.Z > b[5] {
		b[5] = p.Z
	}
}
