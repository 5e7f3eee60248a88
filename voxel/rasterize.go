package voxel

import (
	"math"
	"slices"
	"time"

	"github.com/voxelsplace/polyvox/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// crossing is one intersection of a row's ray (travelling +x) with the
// surface.
type crossing struct {
	x     float64
	enter bool // triangle faces -x, so an outward surface is entered here
	poly  int
	tri   int
}

// rayTri is a fan triangle projected onto the (y,z) plane, wound so its
// projected area is positive, with the block of rows it may cover.
type rayTri struct {
	p     [3]r3.Vec
	enter bool
	poly  int
	jlo   int
	jhi   int
	klo   int
	khi   int
}

// Rasterize classifies every (j,k) row of g against s. Each row casts a ray
// along +x through y = Origin.y + j*Spacing.y, z = Origin.z + k*Spacing.z;
// its crossings with the surface are sorted by x, ties broken by polygon and
// triangle index, and consumed pairwise: [1st,2nd) inside, [3rd,4th)
// inside, and so on. A voxel is inside when its sample x falls in such a
// half-open interval.
//
// Rays through shared edges and vertices are resolved with a fixed ownership
// rule, so each sheet of the surface is crossed exactly once and silhouette
// grazes cross zero or two times. Triangles seen edge-on by the ray are
// skipped; their neighbours carry the crossing.
func Rasterize(s surface.Surface, g GridSpec) *Stencil {
	start := time.Now()
	st := newStencil(g)
	ny, nz := g.Dims[1], g.Dims[2]

	var tris []rayTri
	buckets := make([][]int32, ny*nz)
	surface.Triangles(s, func(poly int, a, b, c r3.Vec) {
		area := (b.Y-a.Y)*(c.Z-a.Z) - (b.Z-a.Z)*(c.Y-a.Y)
		if area == 0 || math.IsNaN(area) {
			return
		}
		t := rayTri{p: [3]r3.Vec{a, b, c}, poly: poly}
		if area < 0 {
			// normal has a negative x component
			t.p[1], t.p[2] = c, b
			t.enter = true
		}
		ymin, ymax := minmax3(a.Y, b.Y, c.Y)
		zmin, zmax := minmax3(a.Z, b.Z, c.Z)
		t.jlo, t.jhi = rowRange(ymin, ymax, g.Origin[1], g.Spacing[1], ny)
		t.klo, t.khi = rowRange(zmin, zmax, g.Origin[2], g.Spacing[2], nz)
		if t.jlo > t.jhi || t.klo > t.khi {
			return
		}
		id := int32(len(tris))
		tris = append(tris, t)
		for k := t.klo; k <= t.khi; k++ {
			for j := t.jlo; j <= t.jhi; j++ {
				r := j + ny*k
				buckets[r] = append(buckets[r], id)
			}
		}
	})

	var events []crossing
	for k := 0; k < nz; k++ {
		z := g.Origin[2] + float64(k)*g.Spacing[2]
		for j := 0; j < ny; j++ {
			r := j + ny*k
			if len(buckets[r]) == 0 {
				continue
			}
			y := g.Origin[1] + float64(j)*g.Spacing[1]
			events = events[:0]
			for _, id := range buckets[r] {
				t := &tris[id]
				if x, ok := t.intersect(y, z); ok {
					events = append(events, crossing{x: x, enter: t.enter, poly: t.poly, tri: int(id)})
				}
			}
			st.fillRow(r, events)
		}
	}

	Logger().Debug("rasterized surface",
		"triangles", len(tris), "inside", st.Len(), "oddRows", st.OddRows, "inwardSpans", st.InwardSpans, "elapsed", time.Since(start))
	return st
}

func (st *Stencil) fillRow(r int, events []crossing) {
	slices.SortFunc(events, func(a, b crossing) int {
		switch {
		case a.x < b.x:
			return -1
		case a.x > b.x:
			return 1
		case a.enter != b.enter:
			// entries first, so a tangent graze pairs as enter/exit
			if a.enter {
				return -1
			}
			return 1
		case a.poly != b.poly:
			return a.poly - b.poly
		}
		return a.tri - b.tri
	})
	if len(events)%2 != 0 {
		st.OddRows++
		events = events[:len(events)-1]
	}
	g := st.Grid
	nx := g.Dims[0]
	for e := 0; e+1 < len(events); e += 2 {
		lo := firstSampleAtOrAfter(events[e].x, g.Origin[0], g.Spacing[0], nx)
		hi := firstSampleAtOrAfter(events[e+1].x, g.Origin[0], g.Spacing[0], nx) - 1
		if !events[e].enter && events[e+1].enter {
			st.InwardSpans++
		}
		if lo <= hi {
			st.addSpan(r, lo, hi)
		}
	}
}

// intersect reports whether the ray at (y,z) crosses t and where.
func (t *rayTri) intersect(y, z float64) (float64, bool) {
	var w [3]float64
	for i := 0; i < 3; i++ {
		a, b := t.p[(i+1)%3], t.p[(i+2)%3]
		e, du, dv := edgeFunc(a, b, y, z)
		if e < 0 {
			return 0, false
		}
		// On the edge: owned iff the point nudged by (eps, eps^2) is inside.
		if e == 0 && !(dv < 0 || (dv == 0 && du > 0)) {
			return 0, false
		}
		w[i] = e
	}
	sum := w[0] + w[1] + w[2]
	if sum <= 0 {
		return 0, false
	}
	return (w[0]*t.p[0].X + w[1]*t.p[1].X + w[2]*t.p[2].X) / sum, true
}

// edgeFunc evaluates the signed area of (a, b, point) in the (y,z) plane,
// positive when the point lies left of a->b. The two endpoints are put in a
// fixed order before evaluating so that triangles sharing the edge get
// exactly opposite values. du,dv is the direction a->b.
func edgeFunc(a, b r3.Vec, y, z float64) (e, du, dv float64) {
	du, dv = b.Y-a.Y, b.Z-a.Z
	p, q, flip := a, b, false
	if b.Y < a.Y || (b.Y == a.Y && b.Z < a.Z) {
		p, q, flip = b, a, true
	}
	e = (q.Y-p.Y)*(z-p.Z) - (q.Z-p.Z)*(y-p.Y)
	if flip {
		e = -e
	}
	return e, du, dv
}

// rowRange returns the rows whose coordinate may fall in [lo,hi], padded by
// one row each way; the exact test happens in intersect.
func rowRange(lo, hi, origin, spacing float64, n int) (int, int) {
	a := math.Floor((lo-origin)/spacing) - 1
	b := math.Ceil((hi-origin)/spacing) + 1
	if math.IsNaN(a) || math.IsNaN(b) {
		return 1, 0
	}
	a = math.Max(a, 0)
	b = math.Min(b, float64(n-1))
	if a > b {
		return 1, 0
	}
	return int(a), int(b)
}

// firstSampleAtOrAfter returns the smallest index i in [0,n] with
// origin + i*spacing >= x, evaluating the sample positions the same way
// GridSpec.Coord does.
func firstSampleAtOrAfter(x, origin, spacing float64, n int) int {
	f := math.Ceil((x - origin) / spacing)
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	i := n
	if f < float64(n) {
		i = int(f)
	}
	for i > 0 && origin+float64(i-1)*spacing >= x {
		i--
	}
	for i < n && origin+float64(i)*spacing < x {
		i++
	}
	return i
}

func minmax3(a, b, c float64) (float64, float64) {
	return math.Min(a, math.Min(b, c)), math.Max(a, math.Max(b, c))
}
