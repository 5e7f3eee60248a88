package vopl

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type Vertex struct {
	Position [3]float32
	Color    uint8
}

// Mesh is an indexed triangle list, two triangles per greedy quad.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// QuadCount returns the number of merged faces.
func (m *Mesh) QuadCount() int { return len(m.Indices) / 6 }

// Palette maps voxel values to preview colors; values past the end wrap.
var Palette = []string{
	"#00000000", "#d9d9d9", "#e07b39", "#3f88c5", "#44af69",
	"#f2c14e", "#8e5572", "#3b3b58", "#c5283d", "#8fbfe0",
}

// ColorOf returns the palette entry for value.
func ColorOf(value uint8) string {
	return Palette[int(value)%len(Palette)]
}

// ParseHexColor parses #rrggbb or #rrggbbaa into linear 0..1 components.
func ParseHexColor(hex string) ([4]float32, error) {
	if len(hex) == 0 || hex[0] != '#' || (len(hex) != 7 && len(hex) != 9) {
		return [4]float32{}, fmt.Errorf("invalid hex color %q", hex)
	}
	rgba := [4]float32{0, 0, 0, 1}
	for i := 0; 1+2*i < len(hex); i++ {
		c, err := strconv.ParseUint(hex[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return [4]float32{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		rgba[i] = float32(c) / 255
	}
	return rgba, nil
}

// EncodeGLB returns BuildGLTF's document as binary glTF.
func EncodeGLB(m *Mesh, color string) ([]byte, error) {
	doc, err := BuildGLTF(m, color)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// BuildGLTF converts m into a glTF document with flat normals and per-vertex
// colors taken from color, or from the palette when color is empty.
func BuildGLTF(m *Mesh, color string) (*gltf.Document, error) {
	if len(m.Indices) == 0 {
		return nil, fmt.Errorf("mesh has no faces")
	}
	positions := make([][3]float32, len(m.Vertices))
	colors := make([][4]float32, len(m.Vertices))
	hasAlpha := false
	for i, v := range m.Vertices {
		positions[i] = v.Position
		hex := color
		if hex == "" {
			hex = ColorOf(v.Color)
		}
		rgba, err := ParseHexColor(hex)
		if err != nil {
			return nil, err
		}
		colors[i] = rgba
		if rgba[3] < 1.0 {
			hasAlpha = true
		}
	}

	// flat normals per face; quads do not share vertices
	normals := make([][3]float32, len(positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		v0, v1, v2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		vec1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		vec2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			vec1[1]*vec2[2] - vec1[2]*vec2[1],
			vec1[2]*vec2[0] - vec1[0]*vec2[2],
			vec1[0]*vec2[1] - vec1[1]*vec2[0],
		}
		length := float32(math.Sqrt(float64(cross[0]*cross[0] + cross[1]*cross[1] + cross[2]*cross[2])))
		if length > 0 {
			cross[0] /= length
			cross[1] /= length
			cross[2] /= length
		}
		normals[v0] = cross
		normals[v1] = cross
		normals[v2] = cross
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "polyvox volume preview"
	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, m.Indices)
	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
			gltf.COLOR_0:  uint32(colorAccessor),
		},
		Indices:  gltf.Index(uint32(indicesAccessor)),
		Material: gltf.Index(0),
	}
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float32{1, 1, 1, 1},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	material := &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}
	if hasAlpha {
		material.AlphaMode = gltf.AlphaBlend
	}
	doc.Materials = []*gltf.Material{material}
	doc.Meshes = []*gltf.Mesh{{Name: "VolumeMesh", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}
