package surface

import "gonum.org/v1/gonum/spatial/r3"

// Mesh is an in-memory polygonal surface.
type Mesh struct {
	Points   []r3.Vec
	Polygons [][]int
	Name     string
}

var _ Surface = (*Mesh)(nil)

func (m *Mesh) NumPoints() int      { return len(m.Points) }
func (m *Mesh) Point(i int) r3.Vec  { return m.Points[i] }
func (m *Mesh) NumPolygons() int    { return len(m.Polygons) }
func (m *Mesh) Polygon(i int) []int { return m.Polygons[i] }
func (m *Mesh) Bounds() Bounds      { return BoundsOf(m.Points) }
func (m *Mesh) IsEmpty() bool       { return len(m.Points) == 0 || len(m.Polygons) == 0 }

// TriangleCount returns the number of triangles after fan triangulation.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, p := range m.Polygons {
		if len(p) >= 3 {
			n += len(p) - 2
		}
	}
	return n
}

// Triangles calls fn for every fan triangle of s along with the index of the
// polygon it came from. Polygons with fewer than three points are skipped.
func Triangles(s Surface, fn func(poly int, a, b, c r3.Vec)) {
	for i := 0; i < s.NumPolygons(); i++ {
		p := s.Polygon(i)
		if len(p) < 3 {
			continue
		}
		a := s.Point(p[0])
		for k := 1; k+1 < len(p); k++ {
			fn(i, a, s.Point(p[k]), s.Point(p[k+1]))
		}
	}
}

// builder welds bit-identical positions into shared points so that triangle
// soups (STL, unindexed glTF) come out as connected meshes.
type builder struct {
	mesh  *Mesh
	index map[r3.Vec]int
}

func newBuilder(name string) *builder {
	return &builder{mesh: &Mesh{Name: name}, index: make(map[r3.Vec]int)}
}

func (b *builder) point(p r3.Vec) int {
	if i, ok := b.index[p]; ok {
		return i
	}
	i := len(b.mesh.Points)
	b.mesh.Points = append(b.mesh.Points, p)
	b.index[p] = i
	return i
}

func (b *builder) triangle(p0, p1, p2 r3.Vec) {
	b.mesh.Polygons = append(b.mesh.Polygons, []int{b.point(p0), b.point(p1), b.point(p2)})
}
