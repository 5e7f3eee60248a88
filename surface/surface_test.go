package surface

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const asciiTetra = `solid tetra
facet normal 0 0 -1
 outer loop
  vertex 0 0 0
  vertex 0 1 0
  vertex 1 0 0
 endloop
endfacet
facet normal 0 -1 0
 outer loop
  vertex 0 0 0
  vertex 1 0 0
  vertex 0 0 1
 endloop
endfacet
facet normal -1 0 0
 outer loop
  vertex 0 0 0
  vertex 0 0 1
  vertex 0 1 0
 endloop
endfacet
facet normal 1 1 1
 outer loop
  vertex 1 0 0
  vertex 0 1 0
  vertex 0 0 1
 endloop
endfacet
endsolid tetra
`

func TestDecodeASCIISTLWelds(t *testing.T) {
	m, err := DecodeSTL(strings.NewReader(asciiTetra))
	require.NoError(t, err)
	assert.Equal(t, "tetra", m.Name)
	assert.Equal(t, 4, m.NumPoints())
	assert.Equal(t, 4, m.NumPolygons())
	assert.Equal(t, Bounds{0, 1, 0, 1, 0, 1}, m.Bounds())
}

func TestSTLRoundTrip(t *testing.T) {
	src := Cuboid(r3.Vec{X: -1, Y: 0, Z: 2}, r3.Vec{X: 3, Y: 1, Z: 4})
	var buf bytes.Buffer
	require.NoError(t, EncodeSTL(&buf, src))
	assert.Equal(t, stlHeaderLen+4+12*stlRecordLen, buf.Len())

	m, err := DecodeSTL(&buf)
	require.NoError(t, err)
	assert.Equal(t, "cuboid", m.Name)
	assert.Equal(t, 8, m.NumPoints())
	assert.Equal(t, 12, m.NumPolygons())
	assert.Equal(t, src.Bounds(), m.Bounds())
}

func TestBinarySTLStartingWithSolid(t *testing.T) {
	src := &Mesh{Name: "solid but binary", Points: []r3.Vec{{}, {X: 1}, {Y: 1}}, Polygons: [][]int{{0, 1, 2}}}
	var buf bytes.Buffer
	require.NoError(t, EncodeSTL(&buf, src))
	m, err := DecodeSTL(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumPoints())
	assert.Equal(t, 1, m.NumPolygons())
}

func TestDecodeSTLErrors(t *testing.T) {
	cases := map[string]string{
		"short binary":   "abc",
		"short vertex":   "solid x\nfacet normal 0 0 1\nouter loop\nvertex 1 2\n",
		"bad number":     "solid x\nouter loop\nvertex 1 2 q\n",
		"two vertices":   "solid x\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\n",
		"truncated body": string(append(make([]byte, stlHeaderLen), 5, 0, 0, 0)),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSTL(strings.NewReader(in))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecodeOBJ(t *testing.T) {
	in := `# a square pyramid
o pyramid
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0.5 0.5 1
vt 0 0
vn 0 0 1
f 1/1/1 4/1/1 3/1/1 2/1/1
f 1//1 2//1 5//1
f -4 -3 -1
f 3 4 5
f 4 1 -1
`
	m, err := DecodeOBJ(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "pyramid", m.Name)
	assert.Equal(t, 5, m.NumPoints())
	require.Equal(t, 5, m.NumPolygons())
	assert.Equal(t, []int{0, 3, 2, 1}, m.Polygon(0))
	assert.Equal(t, []int{1, 2, 4}, m.Polygon(2))
	assert.Equal(t, []int{3, 0, 4}, m.Polygon(4))
	assert.Equal(t, 6, m.TriangleCount())
}

func TestDecodeOBJErrors(t *testing.T) {
	cases := map[string]string{
		"short vertex": "v 1 2\n",
		"bad vertex":   "v 1 2 x\n",
		"zero index":   "v 0 0 0\nf 0 1 1\n",
		"out of range": "v 0 0 0\nf 1 2 3\n",
		"bad index":    "v 0 0 0\nf a b c\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOBJ(strings.NewReader(in))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

const vtkHeader = "# vtk DataFile Version 3.0\nsurface\nASCII\nDATASET POLYDATA\n"

func TestDecodeVTK(t *testing.T) {
	in := vtkHeader + `POINTS 5 float
0 0 0 1 0 0
1 1 0 0 1 0
0.5 0.5 1
VERTICES 1 2
1 4
POLYGONS 1 5
4 0 3 2 1
TRIANGLE_STRIPS 1 6
5 0 1 4 2 3
POINT_DATA 5
SCALARS s float
LOOKUP_TABLE default
0 0 0 0 0
`
	m, err := DecodeVTK(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "surface", m.Name)
	assert.Equal(t, 5, m.NumPoints())
	require.Equal(t, 4, m.NumPolygons())
	assert.Equal(t, []int{0, 3, 2, 1}, m.Polygon(0))
	assert.Equal(t, []int{0, 1, 4}, m.Polygon(1))
	assert.Equal(t, []int{4, 1, 2}, m.Polygon(2))
	assert.Equal(t, []int{4, 2, 3}, m.Polygon(3))
	assert.Equal(t, Bounds{0, 1, 0, 1, 0, 1}, m.Bounds())
}

func TestDecodeVTKErrors(t *testing.T) {
	cases := map[string]string{
		"not vtk":         "hello\nworld\nASCII\nDATASET POLYDATA\n",
		"binary":          "# vtk DataFile Version 3.0\nx\nBINARY\nDATASET POLYDATA\n",
		"not polydata":    "# vtk DataFile Version 3.0\nx\nASCII\nDATASET UNSTRUCTURED_GRID\n",
		"truncated":       vtkHeader + "POINTS 2 float\n0 0 0\n",
		"bad number":      vtkHeader + "POINTS 1 float\n0 zero 0\n",
		"bad reference":   vtkHeader + "POINTS 3 float\n0 0 0 1 0 0 0 1 0\nPOLYGONS 1 4\n3 0 1 7\n",
		"negative points": vtkHeader + "POINTS -1 float\n",
		"negative cells":  vtkHeader + "POINTS 3 float\n0 0 0 1 0 0 0 1 0\nPOLYGONS -1 0\n",
		"negative size":   vtkHeader + "POINTS 3 float\n0 0 0 1 0 0 0 1 0\nPOLYGONS 1 -4\n3 0 1 2\n",
		"negative cell":   vtkHeader + "POINTS 3 float\n0 0 0 1 0 0 0 1 0\nPOLYGONS 1 4\n-3 0 1 2\n",
		"huge points":     vtkHeader + "POINTS 1000000000000 float\n0 0 0\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeVTK(strings.NewReader(in))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestGLBRoundTrip(t *testing.T) {
	src := Cuboid(r3.Vec{X: 0, Y: 0, Z: 0}, r3.Vec{X: 2, Y: 3, Z: 4})
	var buf bytes.Buffer
	require.NoError(t, EncodeGLB(&buf, src))

	m, err := DecodeGLTF(&buf)
	require.NoError(t, err)
	assert.Equal(t, "cuboid", m.Name)
	assert.Equal(t, 8, m.NumPoints())
	assert.Equal(t, 12, m.NumPolygons())
	assert.Equal(t, src.Bounds(), m.Bounds())

	_, err = DecodeGLTF(strings.NewReader("not gltf"))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	src := Cuboid(r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 2, Y: 2, Z: 2})
	for _, name := range []string{"box.stl", "box.glb"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, src))
			m, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 12, m.NumPolygons())
			assert.Equal(t, src.Bounds(), m.Bounds())
		})
	}
	for _, name := range []string{"box.obj", "box.vtk"} {
		assert.Error(t, Save(filepath.Join(dir, name), src))
		assert.NoFileExists(t, filepath.Join(dir, name))
	}
	_, err := Load(filepath.Join(dir, "missing.stl"))
	assert.Error(t, err)
	_, err = Load(filepath.Join(dir, "box.ply"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.stl": FormatSTL, "dir/b.OBJ": FormatOBJ, "c.vtk": FormatVTK, "d.gltf": FormatGLTF, "e.GLB": FormatGLB,
	} {
		f, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, f, path)
	}
	_, err := FormatFromPath("noext")
	assert.Error(t, err)
}

func TestUVSphereBoundsAreExact(t *testing.T) {
	c := r3.Vec{X: 1, Y: -2, Z: 3}
	m, err := UVSphere(c, 2, 8, 16)
	require.NoError(t, err)
	assert.Equal(t, Bounds{-1, 3, -4, 0, 1, 5}, m.Bounds())
	assert.Equal(t, 2+7*16, m.NumPoints())
	assert.Equal(t, 2*16+6*16, m.NumPolygons())

	_, err = UVSphere(c, 0, 8, 16)
	assert.Error(t, err)
	_, err = UVSphere(c, 1, 1, 16)
	assert.Error(t, err)
}

func TestCuboidIsOutward(t *testing.T) {
	m := Cuboid(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
	center := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	Triangles(m, func(poly int, a, b, c r3.Vec) {
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		assert.Greater(t, r3.Dot(n, r3.Sub(a, center)), 0.0, "polygon %d faces inward", poly)
	})
}

func TestSDFGenerators(t *testing.T) {
	sphere, err := SDFSphere(1, 16)
	require.NoError(t, err)
	box, err := SDFBox(1, 2, 3, 16)
	require.NoError(t, err)
	cyl, err := SDFCylinder(2, 0.5, 16)
	require.NoError(t, err)
	for name, m := range map[string]*Mesh{"sphere": sphere, "box": box, "cylinder": cyl} {
		assert.False(t, m.IsEmpty(), name)
		b := m.Bounds()
		for a := 0; a < 3; a++ {
			assert.Less(t, b.Min(a), 0.0, name)
			assert.Greater(t, b.Max(a), 0.0, name)
		}
	}
	_, err = SDFSphere(-1, 16)
	assert.Error(t, err)
}

func TestBounds(t *testing.T) {
	assert.Equal(t, Bounds{}, BoundsOf(nil))
	b := BoundsOf([]r3.Vec{{X: 1, Y: 2, Z: 3}, {X: -1, Y: 5, Z: 0}})
	assert.Equal(t, Bounds{-1, 1, 2, 5, 0, 3}, b)
	assert.Equal(t, 2.0, b.Span(0))
	assert.True(t, b.Contains(Bounds{0, 1, 2, 3, 1, 2}))
	assert.False(t, b.Contains(Bounds{0, 2, 2, 3, 1, 2}))
}
