package voxel

import (
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
)

// Image is the read side of a volume as consumed by writers: grid geometry
// plus a flat byte per voxel, x varying fastest.
type Image interface {
	Spacing() [3]float64
	Origin() [3]float64
	Extent() [6]int
	Voxels() []byte
}

// Volume is a dense single-byte scalar grid.
type Volume struct {
	Grid    GridSpec
	Scalars []uint8
}

var _ Image = (*Volume)(nil)

// NewVolume allocates a zeroed buffer for g.
func NewVolume(g GridSpec) *Volume {
	return &Volume{Grid: g, Scalars: make([]uint8, g.NumVoxels())}
}

// FromImage copies any Image into a Volume.
func FromImage(img Image) (*Volume, error) {
	if v, ok := img.(*Volume); ok {
		return &Volume{Grid: v.Grid, Scalars: append([]uint8(nil), v.Scalars...)}, nil
	}
	ext := img.Extent()
	g := GridSpec{Spacing: img.Spacing(), Origin: img.Origin()}
	for a := 0; a < 3; a++ {
		g.Dims[a] = ext[2*a+1] - ext[2*a] + 1
		if g.Dims[a] < 1 {
			return nil, fmt.Errorf("image extent %v is empty on axis %s", ext, axisNames[a])
		}
	}
	data := img.Voxels()
	if len(data) != g.NumVoxels() {
		return nil, fmt.Errorf("image has %d voxels, extent %v needs %d", len(data), ext, g.NumVoxels())
	}
	return &Volume{Grid: g, Scalars: append([]uint8(nil), data...)}, nil
}

func (v *Volume) Spacing() [3]float64 { return v.Grid.Spacing }
func (v *Volume) Origin() [3]float64  { return v.Grid.Origin }
func (v *Volume) Extent() [6]int      { return v.Grid.Extent() }
func (v *Volume) Voxels() []byte      { return v.Scalars }

// At returns the value of voxel (i,j,k).
func (v *Volume) At(i, j, k int) uint8 {
	return v.Scalars[v.Grid.Index(i, j, k)]
}

// Set stores val at voxel (i,j,k).
func (v *Volume) Set(i, j, k int, val uint8) {
	v.Scalars[v.Grid.Index(i, j, k)] = val
}

// Count returns how many voxels hold val.
func (v *Volume) Count(val uint8) int {
	n := 0
	for _, s := range v.Scalars {
		if s == val {
			n++
		}
	}
	return n
}

// Digest hashes the dimensions and scalars; equal digests mean identical
// voxel content for practical purposes.
func (v *Volume) Digest() uint64 {
	d := xxhash.New()
	fmt.Fprintf(d, "%d %d %d;", v.Grid.Dims[0], v.Grid.Dims[1], v.Grid.Dims[2])
	_, _ = d.Write(v.Scalars)
	return d.Sum64()
}
