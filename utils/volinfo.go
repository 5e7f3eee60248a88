package utils

import (
	"fmt"
	"io"
	"slices"

	"github.com/voxelsplace/polyvox/metaimage"
)

// RunVolInfo prints the geometry of a MetaImage volume and a histogram of
// its values.
func RunVolInfo(path string, w io.Writer) error {
	v, err := metaimage.ReadFile(path)
	if err != nil {
		return err
	}
	g := v.Grid
	b := g.Bounds()
	fmt.Fprintf(w, "file:     %s\n", path)
	fmt.Fprintf(w, "dims:     %d x %d x %d (%d voxels)\n", g.Dims[0], g.Dims[1], g.Dims[2], g.NumVoxels())
	fmt.Fprintf(w, "spacing:  %g %g %g\n", g.Spacing[0], g.Spacing[1], g.Spacing[2])
	fmt.Fprintf(w, "origin:   %g %g %g\n", g.Origin[0], g.Origin[1], g.Origin[2])
	fmt.Fprintf(w, "samples:  [%g, %g] x [%g, %g] x [%g, %g]\n", b[0], b[1], b[2], b[3], b[4], b[5])

	var hist [256]int
	for _, s := range v.Scalars {
		hist[s]++
	}
	var values []int
	for val, n := range hist {
		if n > 0 {
			values = append(values, val)
		}
	}
	slices.Sort(values)
	for _, val := range values {
		fmt.Fprintf(w, "value %3d: %d\n", val, hist[val])
	}
	fmt.Fprintf(w, "digest:   %016x\n", v.Digest())
	return nil
}
