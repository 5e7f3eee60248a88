package voxel

// Fill sets every voxel of v to value.
func Fill(v *Volume, value uint8) {
	if len(v.Scalars) == 0 {
		return
	}
	v.Scalars[0] = value
	for n := 1; n < len(v.Scalars); n *= 2 {
		copy(v.Scalars[n:], v.Scalars[:n])
	}
}
