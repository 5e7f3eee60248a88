package vopl

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

const (
	Height = 16
	Width  = 16
	Depth  = 16

	chunkVoxels = Width * Height * Depth
)

// VoxelGrid[y][x][z]
type VoxelGrid [Height][Width][Depth]uint8

// IsEmpty reports whether every voxel is zero.
func (g *VoxelGrid) IsEmpty() bool {
	for y := range Height {
		for x := range Width {
			for z := range Depth {
				if g[y][x][z] != 0 {
					return false
				}
			}
		}
	}
	return true
}

// MaxValue returns the largest voxel value.
func (g *VoxelGrid) MaxValue() uint8 {
	var m uint8
	for y := range Height {
		for x := range Width {
			for z := range Depth {
				m = max(m, g[y][x][z])
			}
		}
	}
	return m
}

// BPPFor returns the bits needed to store values up to maxValue, at least 1.
func BPPFor(maxValue uint8) uint8 {
	return uint8(max(1, bits.Len8(maxValue)))
}

// Chunk is one 16^3 block of a volume. X, Y and Z are chunk coordinates:
// the chunk covers voxels [16*X, 16*X+16) and so on.
type Chunk struct {
	X, Y, Z int
	Grid    *VoxelGrid
}

// Name returns the pack entry name of the chunk.
func (c Chunk) Name() string {
	return fmt.Sprintf("%d_%d_%d.vopl", c.X, c.Y, c.Z)
}

// ParseChunkName is the inverse of Chunk.Name.
func ParseChunkName(name string) (x, y, z int, err error) {
	base, ok := strings.CutSuffix(name, ".vopl")
	parts := strings.Split(base, "_")
	if !ok || len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("bad chunk entry name %q", name)
	}
	var c [3]int
	for i, p := range parts {
		c[i], err = strconv.Atoi(p)
		if err != nil || c[i] < 0 {
			return 0, 0, 0, fmt.Errorf("bad chunk entry name %q", name)
		}
	}
	return c[0], c[1], c[2], nil
}
