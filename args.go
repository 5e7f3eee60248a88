//go:build !(js && wasm)

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/voxelsplace/polyvox/config"
	"github.com/voxelsplace/polyvox/utils"
	"github.com/voxelsplace/polyvox/vopl"
	"github.com/voxelsplace/polyvox/voxel"
)

var errTooManyArgs = errors.New("too many arguments")

// parseVoxelizeArgs resolves a voxelize job from defaults, an optional TOML
// file and the command line, in increasing precedence. Positionals are
// <input> [output] [spacing] [xmin xmax ymin ymax zmin zmax].
func parseVoxelizeArgs(args []string) (utils.VoxelizeJob, bool, error) {
	fs := flag.NewFlagSet("voxelize", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfgPath := fs.String("config", "", "TOML settings file")
	reverse := fs.Bool("reverse", false, "swap foreground and background")
	fg := fs.Int("fg", voxel.DefaultForeground, "foreground value")
	bg := fs.Int("bg", voxel.DefaultBackground, "background value")
	origin := fs.String("origin", "zero", "voxel origin: zero or bounds")
	raw := fs.Bool("raw", false, "write uncompressed voxel data")
	verbose := fs.Bool("v", false, "debug logging")

	job := utils.VoxelizeJob{Config: voxel.DefaultConfig(), Compress: true}
	if err := fs.Parse(args); err != nil {
		return job, false, fmt.Errorf("%w: %v", voxel.ErrConfig, err)
	}
	pos := fs.Args()
	switch {
	case len(pos) == 0:
		return job, false, &voxel.ConfigError{Field: "input", Msg: "missing input surface"}
	case len(pos) > 9:
		return job, false, fmt.Errorf("%w: %w", voxel.ErrConfig, errTooManyArgs)
	}

	if *cfgPath != "" {
		f, err := config.Load(*cfgPath)
		if err != nil {
			return job, false, err
		}
		if job.Config, err = f.Apply(job.Config); err != nil {
			return job, false, err
		}
		job.Output = f.Output
		if f.Compress != nil {
			job.Compress = *f.Compress
		}
	}

	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "reverse":
			job.Config.Reverse = *reverse
		case "fg":
			job.Config.Foreground, err = flagByte("fg", *fg)
		case "bg":
			job.Config.Background, err = flagByte("bg", *bg)
		case "origin":
			job.Config.Origin, err = voxel.ParseOriginMode(*origin)
		case "raw":
			job.Compress = !*raw
		}
	})
	if err != nil {
		return job, false, err
	}

	job.Input = pos[0]
	if len(pos) > 1 {
		job.Output = pos[1]
	}
	if len(pos) > 2 {
		s, err := strconv.ParseFloat(pos[2], 64)
		if err != nil {
			return job, false, &voxel.ConfigError{Field: "spacing", Msg: fmt.Sprintf("cannot parse %q", pos[2])}
		}
		job.Config.Spacing = s
	}
	if len(pos) > 3 {
		b := pos[3:]
		if len(b) != 6 {
			return job, false, &voxel.ConfigError{Field: "bounds", Msg: fmt.Sprintf("need exactly 6 values, got %d", len(b))}
		}
		vals := make([]float64, 6)
		for i, s := range b {
			if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
				return job, false, &voxel.ConfigError{Field: "bounds", Msg: fmt.Sprintf("cannot parse %q", s)}
			}
		}
		job.Config = job.Config.WithBounds(vals...)
	}
	if job.Output == "" {
		job.Output = utils.DefaultOutput
	}
	return job, *verbose, job.Config.Validate()
}

func flagByte(name string, v int) (uint8, error) {
	if v < 0 || v > 255 {
		return 0, &voxel.ConfigError{Field: name, Msg: fmt.Sprintf("%d does not fit in a byte", v)}
	}
	return uint8(v), nil
}

func parseMeshArgs(cmd string, args []string) (in, out string, value uint8, color string, err error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	v := fs.Int("value", voxel.DefaultForeground, "voxel value to mesh")
	c := fs.String("color", "", "mesh color as #rrggbb (default: palette color of the value)")
	if err = fs.Parse(args); err != nil {
		return
	}
	if fs.NArg() != 2 {
		err = fmt.Errorf("%s needs an input and an output path", cmd)
		return
	}
	if value, err = flagByte("value", *v); err != nil {
		return
	}
	return fs.Arg(0), fs.Arg(1), value, *c, nil
}

func parseVolumePackArgs(args []string) (in, out string, opts vopl.PackOptions, err error) {
	fs := flag.NewFlagSet("vol2voplpack", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	layout := fs.String("layout", "cdc", "pack layout: raw or cdc")
	comp := fs.String("comp", "zstd", "pack compression: none, zlib or zstd")
	if err = fs.Parse(args); err != nil {
		return
	}
	if fs.NArg() != 2 {
		err = errors.New("vol2voplpack needs an input and an output path")
		return
	}
	if opts.Layout, err = vopl.ParsePackLayout(*layout); err != nil {
		return
	}
	if opts.Compression, err = vopl.ParsePackCompression(*comp); err != nil {
		return
	}
	return fs.Arg(0), fs.Arg(1), opts, nil
}

func parsePackToVolumeArgs(args []string) (in, out string, compress bool, err error) {
	fs := flag.NewFlagSet("voplpack2vol", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	raw := fs.Bool("raw", false, "write uncompressed voxel data")
	if err = fs.Parse(args); err != nil {
		return
	}
	if fs.NArg() != 2 {
		err = errors.New("voplpack2vol needs an input and an output path")
		return
	}
	return fs.Arg(0), fs.Arg(1), !*raw, nil
}

type genSurfaceArgs struct {
	kind   string
	size   []float64
	cells  int
	output string
}

func parseGenSurfaceArgs(args []string) (genSurfaceArgs, error) {
	var g genSurfaceArgs
	fs := flag.NewFlagSet("gensurface", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&g.cells, "cells", 0, "marching cubes cells along the longest axis")
	if err := fs.Parse(args); err != nil {
		return g, err
	}
	pos := fs.Args()
	if len(pos) < 3 {
		return g, errors.New("gensurface needs a kind, sizes and an output path")
	}
	g.kind, g.output = pos[0], pos[len(pos)-1]
	for _, s := range pos[1 : len(pos)-1] {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return g, fmt.Errorf("bad size %q: %w", s, err)
		}
		g.size = append(g.size, f)
	}
	return g, nil
}
