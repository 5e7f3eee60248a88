package surface

import (
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"gonum.org/v1/gonum/spatial/r3"
)

// DecodeGLTF reads a glTF document (binary GLB or JSON with embedded
// buffers) and merges the TRIANGLES primitives of all its meshes.
func DecodeGLTF(r io.Reader) (*Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("%w: gltf: %v", ErrFormat, err)
	}
	return FromGLTF(doc)
}

// LoadGLTF opens a .gltf or .glb file; external buffers are resolved
// relative to the file.
func LoadGLTF(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: gltf: %v", ErrFormat, err)
	}
	return FromGLTF(doc)
}

// FromGLTF converts the triangle primitives of doc into a Mesh. Node
// transforms are not applied: positions are taken in mesh space.
func FromGLTF(doc *gltf.Document) (*Mesh, error) {
	m := &Mesh{}
	for mi, gm := range doc.Meshes {
		if m.Name == "" {
			m.Name = gm.Name
		}
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			if int(posIdx) >= len(doc.Accessors) {
				return nil, fmt.Errorf("%w: gltf mesh %d primitive %d: bad POSITION accessor %d", ErrFormat, mi, pi, posIdx)
			}
			pos, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("%w: gltf mesh %d primitive %d: %v", ErrFormat, mi, pi, err)
			}
			var idx []uint32
			if prim.Indices != nil {
				if int(*prim.Indices) >= len(doc.Accessors) {
					return nil, fmt.Errorf("%w: gltf mesh %d primitive %d: bad indices accessor", ErrFormat, mi, pi)
				}
				idx, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("%w: gltf mesh %d primitive %d: %v", ErrFormat, mi, pi, err)
				}
			} else {
				idx = make([]uint32, len(pos))
				for i := range idx {
					idx[i] = uint32(i)
				}
			}

			base := len(m.Points)
			for _, p := range pos {
				m.Points = append(m.Points, r3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])})
			}
			for i := 0; i+2 < len(idx); i += 3 {
				a, b, c := int(idx[i]), int(idx[i+1]), int(idx[i+2])
				if a >= len(pos) || b >= len(pos) || c >= len(pos) {
					return nil, fmt.Errorf("%w: gltf mesh %d primitive %d: index out of range", ErrFormat, mi, pi)
				}
				m.Polygons = append(m.Polygons, []int{base + a, base + b, base + c})
			}
		}
	}
	return m, nil
}

// EncodeGLB writes s as a binary glTF holding one mesh with one triangle
// primitive.
func EncodeGLB(w io.Writer, s Surface) error {
	positions := make([][3]float32, s.NumPoints())
	for i := range positions {
		p := s.Point(i)
		positions[i] = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
	}
	var indices []uint32
	for i := 0; i < s.NumPolygons(); i++ {
		p := s.Polygon(i)
		for k := 1; k+1 < len(p); k++ {
			indices = append(indices, uint32(p[0]), uint32(p[k]), uint32(p[k+1]))
		}
	}

	name := "surface"
	if m, ok := s.(*Mesh); ok && m.Name != "" {
		name = m.Name
	}
	doc := gltf.NewDocument()
	doc.Asset.Generator = "polyvox"
	posAccessor := modeler.WritePosition(doc, positions)
	indicesAccessor := modeler.WriteIndices(doc, indices)
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{gltf.POSITION: uint32(posAccessor)},
		Indices:    gltf.Index(uint32(indicesAccessor)),
	}
	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}
