package vopl

import "github.com/voxelsplace/polyvox/voxel"

type dirSpec struct {
	normal [3]float32
	u, v   int
	du, dv [3]int
}

var directions = []dirSpec{
	{[3]float32{1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{-1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, -1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 0, 1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
	{[3]float32{0, 0, -1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
}

// solidGrid answers whether a voxel of the image equals the meshed value.
// Voxels outside the image count as empty.
type solidGrid struct {
	dims  [3]int
	data  []byte
	value uint8
}

func (s *solidGrid) solid(x, y, z int) bool {
	if x < 0 || x >= s.dims[0] || y < 0 || y >= s.dims[1] || z < 0 || z >= s.dims[2] {
		return false
	}
	return s.data[x+s.dims[0]*(y+s.dims[1]*z)] == s.value
}

// cellToWorld maps a voxel cell corner to world coordinates. Voxel i covers
// [i-0.5, i+0.5] in index space around its sample point.
type cellToWorld struct {
	origin, spacing [3]float64
}

func (c cellToWorld) apply(p [3]int) [3]float32 {
	var w [3]float32
	for a := range w {
		w[a] = float32(c.origin[a] + (float64(p[a])-0.5)*c.spacing[a])
	}
	return w
}

func addQuad(mesh *Mesh, xf cellToWorld, dir dirSpec, start [3]int, w, h int, color uint8, perp int) {
	var base [3]int
	base[perp] = start[0]
	if dir.normal[perp] > 0 {
		base[perp]++
	}
	base[dir.u] = start[1]
	base[dir.v] = start[2]

	corner := func(hu, wv int) Vertex {
		p := base
		for a := range p {
			p[a] += dir.du[a]*hu + dir.dv[a]*wv
		}
		return Vertex{Position: xf.apply(p), Color: color}
	}
	verts := [4]Vertex{corner(0, 0), corner(h, 0), corner(h, w), corner(0, w)}

	swap := (dir.normal[perp] < 0) != (perp == 1)
	if swap {
		verts[1], verts[3] = verts[3], verts[1]
	}

	baseIdx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, baseIdx, baseIdx+1, baseIdx+2, baseIdx, baseIdx+2, baseIdx+3)
}

// GenerateMesh builds the boundary surface of all voxels of img equal to
// value, merging coplanar faces into maximal rectangles. Positions are in
// world units: each voxel is a box of one spacing centered on its sample
// point.
func GenerateMesh(img voxel.Image, value uint8) *Mesh {
	grid := &solidGrid{dims: imageDims(img), data: img.Voxels(), value: value}
	xf := cellToWorld{origin: img.Origin(), spacing: img.Spacing()}
	mesh := &Mesh{}
	dims := grid.dims

	for _, dir := range directions {
		perp := 3 - dir.u - dir.v
		nu, nv := dims[dir.u], dims[dir.v]
		mask := make([]bool, nu*nv)
		visited := make([]bool, nu*nv)

		for p := 0; p < dims[perp]; p++ {
			clear(mask)
			clear(visited)
			for u := 0; u < nu; u++ {
				for v := 0; v < nv; v++ {
					var pos [3]int
					pos[dir.u] = u
					pos[dir.v] = v
					pos[perp] = p
					if !grid.solid(pos[0], pos[1], pos[2]) {
						continue
					}
					adj := pos
					if dir.normal[perp] < 0 {
						adj[perp] = p - 1
					} else {
						adj[perp] = p + 1
					}
					mask[u*nv+v] = !grid.solid(adj[0], adj[1], adj[2])
				}
			}

			for u := 0; u < nu; u++ {
				for v := 0; v < nv; {
					if !mask[u*nv+v] || visited[u*nv+v] {
						v++
						continue
					}
					width := 1
					for w := v + 1; w < nv && mask[u*nv+w] && !visited[u*nv+w]; w++ {
						width++
					}
					height := 1
				grow:
					for hu := u + 1; hu < nu; hu++ {
						for w := v; w < v+width; w++ {
							if !mask[hu*nv+w] || visited[hu*nv+w] {
								break grow
							}
						}
						height++
					}
					for hu := u; hu < u+height; hu++ {
						for hv := v; hv < v+width; hv++ {
							visited[hu*nv+hv] = true
						}
					}
					addQuad(mesh, xf, dir, [3]int{p, u, v}, width, height, value, perp)
					v += width
				}
			}
		}
	}
	return mesh
}
