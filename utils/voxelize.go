package utils

import (
	"fmt"
	"time"

	"github.com/voxelsplace/polyvox/metaimage"
	"github.com/voxelsplace/polyvox/surface"
	"github.com/voxelsplace/polyvox/voxel"
)

// DefaultOutput is the volume written when no output path is given.
const DefaultOutput = "new.mhd"

// VoxelizeJob describes one voxelize run.
type VoxelizeJob struct {
	Input    string
	Output   string
	Config   voxel.Config
	Compress bool
}

// RunVoxelize loads the input surface, voxelizes it and writes the volume as
// MetaImage. Bounds warnings go to the voxel logger and are returned with
// the result.
func RunVoxelize(job VoxelizeJob) (*voxel.Result, error) {
	if err := job.Config.Validate(); err != nil {
		return nil, err
	}
	if job.Output == "" {
		job.Output = DefaultOutput
	}
	s, err := surface.Load(job.Input)
	if err != nil {
		return nil, err
	}
	if s.IsEmpty() {
		voxel.Logger().Warn("surface has no polygons", "input", job.Input)
	}
	fmt.Printf("Loaded %s: %d points, %d polygons\n", job.Input, s.NumPoints(), s.NumPolygons())

	res, err := voxel.Voxelize(s, job.Config)
	if err != nil {
		return nil, err
	}
	d := res.Volume.Grid.Dims
	fmt.Printf("Volume dimensions: %d x %d x %d (%d voxels)\n", d[0], d[1], d[2], res.Volume.Grid.NumVoxels())

	start := time.Now()
	if err := metaimage.WriteFile(job.Output, res.Volume, metaimage.Options{Compress: job.Compress}); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", job.Output, err)
	}
	fmt.Printf("Volume saved to %s (%d ms)\n", job.Output, time.Since(start).Milliseconds())
	return res, nil
}
