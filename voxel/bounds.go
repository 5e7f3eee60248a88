package voxel

import (
	"fmt"

	"github.com/voxelsplace/polyvox/surface"
)

var axisNames = [3]string{"x", "y", "z"}

// Side tells which end of an axis a BoundsWarning concerns.
type Side int

const (
	SideMin Side = iota
	SideMax
)

func (s Side) String() string {
	if s == SideMin {
		return "minimum"
	}
	return "maximum"
}

// BoundsWarning records that the surface extends past the requested region
// on one side of one axis. The surface is clipped there; it is not an error.
type BoundsWarning struct {
	Axis      int
	Side      Side
	Actual    float64
	Requested float64
}

func (w BoundsWarning) String() string {
	rel := "less than"
	if w.Side == SideMax {
		rel = "greater than"
	}
	return fmt.Sprintf("%s %s coordinate %g is %s requested bound %g",
		w.Side, axisNames[w.Axis], w.Actual, rel, w.Requested)
}

// ResolveBounds returns the region to voxelize: actual when overrides is
// empty, otherwise the six overrides in xmin,xmax,ymin,ymax,zmin,zmax order.
// Every side where actual reaches past the requested region yields a warning,
// which is also logged.
func ResolveBounds(actual surface.Bounds, overrides []float64) (surface.Bounds, []BoundsWarning, error) {
	switch len(overrides) {
	case 0:
		Logger().Debug("bounds automatically determined", "bounds", actual)
		return actual, nil, nil
	case 6:
	default:
		return surface.Bounds{}, nil, configErrorf("bounds", "need exactly 6 values (xmin xmax ymin ymax zmin zmax), got %d", len(overrides))
	}

	var req surface.Bounds
	copy(req[:], overrides)

	var warnings []BoundsWarning
	for a := 0; a < 3; a++ {
		if actual.Min(a) < req.Min(a) {
			warnings = append(warnings, BoundsWarning{Axis: a, Side: SideMin, Actual: actual.Min(a), Requested: req.Min(a)})
		}
	}
	for a := 0; a < 3; a++ {
		if actual.Max(a) > req.Max(a) {
			warnings = append(warnings, BoundsWarning{Axis: a, Side: SideMax, Actual: actual.Max(a), Requested: req.Max(a)})
		}
	}
	for _, w := range warnings {
		Logger().Warn("surface extends past requested bounds",
			"axis", axisNames[w.Axis], "side", w.Side.String(), "actual", w.Actual, "requested", w.Requested)
	}
	return req, warnings, nil
}
