package voxel

import (
	"fmt"
	"math"
	"slices"
)

// OriginMode selects the world position of voxel index (0,0,0).
type OriginMode int

const (
	// OriginZero pins the origin at the coordinate-space zero regardless of
	// the bounds. This is the default and matches the volumes produced by
	// earlier versions of the tool; downstream consumers rely on it.
	OriginZero OriginMode = iota
	// OriginBoundsMin puts the origin at the minimum corner of the requested
	// bounds, so the grid samples the bounded region.
	OriginBoundsMin
)

func (m OriginMode) String() string {
	switch m {
	case OriginZero:
		return "zero"
	case OriginBoundsMin:
		return "bounds"
	}
	return fmt.Sprintf("OriginMode(%d)", int(m))
}

// ParseOriginMode accepts "zero" or "bounds".
func ParseOriginMode(s string) (OriginMode, error) {
	switch s {
	case "", "zero":
		return OriginZero, nil
	case "bounds", "min":
		return OriginBoundsMin, nil
	}
	return 0, configErrorf("origin", "unknown origin mode %q (want zero or bounds)", s)
}

// Config is the immutable set of voxelization settings. Build it once and
// pass it by value; the With* helpers return modified copies.
type Config struct {
	// Spacing is the voxel edge length, applied to all three axes.
	Spacing float64
	// Bounds overrides the voxelization region as xmin,xmax,ymin,ymax,zmin,zmax.
	// Empty means the surface's own bounds.
	Bounds []float64
	// Reverse swaps foreground and background in the result.
	Reverse    bool
	Foreground uint8
	Background uint8
	Origin     OriginMode
}

const (
	DefaultSpacing    = 0.5
	DefaultForeground = 1
	DefaultBackground = 0
)

// DefaultConfig returns spacing 0.5, automatic bounds, foreground 1,
// background 0, zero origin.
func DefaultConfig() Config {
	return Config{
		Spacing:    DefaultSpacing,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
		Origin:     OriginZero,
	}
}

// WithBounds returns a copy of c using the given overrides.
func (c Config) WithBounds(b ...float64) Config {
	c.Bounds = slices.Clone(b)
	return c
}

// WithSpacing returns a copy of c with the given spacing.
func (c Config) WithSpacing(s float64) Config {
	c.Spacing = s
	return c
}

// WithReverse returns a copy of c with the reverse flag set to r.
func (c Config) WithReverse(r bool) Config {
	c.Reverse = r
	return c
}

// Validate checks everything that can be checked without the surface.
func (c Config) Validate() error {
	if math.IsNaN(c.Spacing) || math.IsInf(c.Spacing, 0) || c.Spacing <= 0 {
		return configErrorf("spacing", "must be a positive number, got %g", c.Spacing)
	}
	if n := len(c.Bounds); n != 0 && n != 6 {
		return configErrorf("bounds", "need exactly 6 values (xmin xmax ymin ymax zmin zmax), got %d", n)
	}
	for i, v := range c.Bounds {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErrorf("bounds", "value %d is not finite", i)
		}
	}
	if c.Foreground == c.Background {
		return configErrorf("values", "foreground and background are both %d", c.Foreground)
	}
	if c.Origin != OriginZero && c.Origin != OriginBoundsMin {
		return configErrorf("origin", "unknown mode %d", int(c.Origin))
	}
	return nil
}
