// Package config loads voxelization settings from a TOML file. Settings left
// out of the file keep the values they already had, so a file only needs to
// name what it changes.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/voxelsplace/polyvox/voxel"
)

// File mirrors the keys accepted in a settings file.
//
//	output     = "new.mhd"
//	spacing    = 0.5
//	bounds     = [0, 10, 0, 10, 0, 10]
//	reverse    = false
//	foreground = 1
//	background = 0
//	origin     = "zero"   # or "bounds"
//	compress   = true
type File struct {
	Output     string    `toml:"output"`
	Spacing    *float64  `toml:"spacing"`
	Bounds     []float64 `toml:"bounds"`
	Reverse    *bool     `toml:"reverse"`
	Foreground *int      `toml:"foreground"`
	Background *int      `toml:"background"`
	Origin     string    `toml:"origin"`
	Compress   *bool     `toml:"compress"`
}

// Load reads a settings file.
func Load(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	f, err := Decode(bufio.NewReader(fp))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses settings from r. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	f := &File{}
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(f); err != nil {
		return nil, fmt.Errorf("%w: %v", voxel.ErrConfig, err)
	}
	return f, nil
}

// Apply returns cfg with every setting present in f applied on top.
func (f *File) Apply(cfg voxel.Config) (voxel.Config, error) {
	if f.Spacing != nil {
		cfg.Spacing = *f.Spacing
	}
	if f.Bounds != nil {
		cfg = cfg.WithBounds(f.Bounds...)
	}
	if f.Reverse != nil {
		cfg.Reverse = *f.Reverse
	}
	if f.Foreground != nil {
		v, err := byteValue("foreground", *f.Foreground)
		if err != nil {
			return cfg, err
		}
		cfg.Foreground = v
	}
	if f.Background != nil {
		v, err := byteValue("background", *f.Background)
		if err != nil {
			return cfg, err
		}
		cfg.Background = v
	}
	if f.Origin != "" {
		m, err := voxel.ParseOriginMode(f.Origin)
		if err != nil {
			return cfg, err
		}
		cfg.Origin = m
	}
	return cfg, nil
}

func byteValue(field string, v int) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, &voxel.ConfigError{Field: field, Msg: fmt.Sprintf("%d does not fit in a byte", v)}
	}
	return uint8(v), nil
}
