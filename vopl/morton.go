package vopl

import (
	"cmp"
	"slices"
)

func expand3(v uint32) uint32 {
	v = (v | (v << 16)) & 0x030000FF
	v = (v | (v << 8)) & 0x0300F00F
	v = (v | (v << 4)) & 0x030C30C3
	v = (v | (v << 2)) & 0x09249249
	return v
}

func morton3D(x, y, z uint32) uint32 {
	return expand3(x) | (expand3(y) << 1) | (expand3(z) << 2)
}

// mortonOrder[rank] is the y-z-x linear index of the voxel at that Morton
// rank inside a chunk. Payloads store voxels in this order.
var mortonOrder = buildMortonOrder()

func buildMortonOrder() []int {
	type kv struct {
		key uint32
		i   int
	}
	idx := make([]kv, 0, chunkVoxels)
	i := 0
	for y := range Height {
		for z := range Depth {
			for x := range Width {
				idx = append(idx, kv{morton3D(uint32(x), uint32(y), uint32(z)), i})
				i++
			}
		}
	}
	slices.SortStableFunc(idx, func(a, b kv) int { return cmp.Compare(a.key, b.key) })
	order := make([]int, chunkVoxels)
	for i := range idx {
		order[i] = idx[i].i
	}
	return order
}

func flatten(grid *VoxelGrid) []uint8 {
	lin := make([]uint8, chunkVoxels)
	p := 0
	for y := range Height {
		for z := range Depth {
			for x := range Width {
				lin[p] = grid[y][x][z]
				p++
			}
		}
	}
	stream := make([]uint8, chunkVoxels)
	for rank, i := range mortonOrder {
		stream[rank] = lin[i]
	}
	return stream
}

func applyOrder(grid *VoxelGrid, stream []uint8) {
	lin := make([]uint8, len(stream))
	for rank, i := range mortonOrder {
		lin[i] = stream[rank]
	}
	p := 0
	for y := range Height {
		for z := range Depth {
			for x := range Width {
				grid[y][x][z] = lin[p]
				p++
			}
		}
	}
}

// Morton3D64 interleaves the low 21 bits of x, y and z. Pack entries are
// ordered by the Morton code of their chunk coordinates so that neighbouring
// chunks sit next to each other in the content stream.
func Morton3D64(x, y, z uint32) uint64 {
	return part1By2(uint64(x)) |
		(part1By2(uint64(y)) << 1) |
		(part1By2(uint64(z)) << 2)
}

func part1By2(x uint64) uint64 {
	x &= 0x1fffff
	x = (x | (x << 32)) & 0x1f00000000ffff
	x = (x | (x << 16)) & 0x1f0000ff0000ff
	x = (x | (x << 8)) & 0x100f00f00f00f00f
	x = (x | (x << 4)) & 0x10c30c30c30c30c3
	x = (x | (x << 2)) & 0x1249249249249249
	return x
}
