package voxel

import "fmt"

// Composite applies st to a volume that was filled with the foreground
// value: voxels outside the stencil are overwritten with background. With
// reverse set the voxels inside the stencil are overwritten instead, giving
// the exact complement. Only the overwritten voxels are touched.
func Composite(v *Volume, st *Stencil, background uint8, reverse bool) error {
	if v.Grid.Dims != st.Grid.Dims {
		return fmt.Errorf("stencil dims %v do not match volume dims %v", st.Grid.Dims, v.Grid.Dims)
	}
	nx, ny, nz := v.Grid.Dims[0], v.Grid.Dims[1], v.Grid.Dims[2]
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			off := v.Grid.Index(0, j, k)
			row := v.Scalars[off : off+nx]
			spans := st.Spans(j, k)
			if reverse {
				for _, sp := range spans {
					fillRun(row[sp.Lo:sp.Hi+1], background)
				}
				continue
			}
			next := 0
			for _, sp := range spans {
				fillRun(row[next:sp.Lo], background)
				next = sp.Hi + 1
			}
			fillRun(row[next:], background)
		}
	}
	return nil
}

func fillRun(run []uint8, val uint8) {
	for i := range run {
		run[i] = val
	}
}
