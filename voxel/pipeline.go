package voxel

import (
	"time"

	"github.com/voxelsplace/polyvox/surface"
)

// Result is the outcome of Voxelize.
type Result struct {
	Volume *Volume
	// Actual is the surface's own bounds, Requested the region voxelized.
	Actual    surface.Bounds
	Requested surface.Bounds
	Warnings  []BoundsWarning
	Stencil   *Stencil
}

// Voxelize turns a closed surface into a binary volume:
// resolve bounds, build the grid, fill it with the foreground value,
// rasterize the surface into a stencil and composite the background.
// Configuration errors are returned before anything is allocated. Surfaces
// that are not closed give an unspecified but deterministic result.
func Voxelize(s surface.Surface, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	actual := s.Bounds()
	requested, warnings, err := ResolveBounds(actual, cfg.Bounds)
	if err != nil {
		return nil, err
	}
	grid, err := NewGridSpec(requested, cfg.Spacing, cfg.Origin)
	if err != nil {
		return nil, err
	}
	Logger().Debug("grid",
		"dims", grid.Dims, "spacing", grid.Spacing, "origin", grid.Origin, "voxels", grid.NumVoxels())

	vol := NewVolume(grid)
	Fill(vol, cfg.Foreground)
	st := Rasterize(s, grid)
	if err := Composite(vol, st, cfg.Background, cfg.Reverse); err != nil {
		return nil, err
	}

	Logger().Info("voxelized surface",
		"dims", grid.Dims,
		"voxels", grid.NumVoxels(),
		"foreground", vol.Count(cfg.Foreground),
		"reverse", cfg.Reverse,
		"digest", vol.Digest(),
		"elapsed", time.Since(start))

	return &Result{
		Volume:    vol,
		Actual:    actual,
		Requested: requested,
		Warnings:  warnings,
		Stencil:   st,
	}, nil
}
