//go:build !(js && wasm)

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/voxelsplace/polyvox/utils"
	"github.com/voxelsplace/polyvox/vopl"
	"github.com/voxelsplace/polyvox/voxel"
)

func usage() {
	fmt.Println("Usage: polyvox <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  voxelize [flags] input.(stl|obj|vtk|gltf|glb) [output.mhd] [spacing] [xmin xmax ymin ymax zmin zmax]")
	fmt.Println("        flags: -config file.toml -reverse -fg N -bg N -origin zero|bounds -raw -v")
	fmt.Println("  vol2glb [-value N] [-color #rrggbb] input.(mhd|mha) output.glb   (greedy mesh of one value)")
	fmt.Println("  vol2voplpack [-layout raw|cdc] [-comp none|zlib|zstd] input.(mhd|mha) output.voplpack")
	fmt.Println("  vol2vopl input.(mhd|mha) output_dir                               (write non-empty chunks as .vopl files)")
	fmt.Println("  voplpack2vol [-raw] input.voplpack output.(mhd|mha)               (rebuild volume from a .voplpack)")
	fmt.Println("  voplpack2glb [-value N] [-color #rrggbb] input.voplpack output.glb")
	fmt.Println("  voplpack2vopl input.voplpack output_dir                           (unpack chunks into .vopl files)")
	fmt.Println("  gensurface [-cells N] sphere|box|cylinder|uvsphere|cuboid <size...> output.(stl|glb)")
	fmt.Println("  volinfo input.(mhd|mha)")
}

func fail(err error) {
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	args := os.Args[2:]
	var err error
	switch os.Args[1] {
	case "voxelize":
		var job utils.VoxelizeJob
		var verbose bool
		job, verbose, err = parseVoxelizeArgs(args)
		if err != nil {
			break
		}
		setupLogging(verbose)
		_, err = utils.RunVoxelize(job)
	case "vol2glb", "voplpack2glb":
		var in, out, color string
		var value uint8
		in, out, value, color, err = parseMeshArgs(os.Args[1], args)
		if err != nil {
			break
		}
		if os.Args[1] == "vol2glb" {
			err = utils.RunVolume2GLB(in, out, value, color)
		} else {
			err = utils.RunVOPLPack2GLB(in, out, value, color)
		}
	case "vol2voplpack":
		var in, out string
		var opts vopl.PackOptions
		in, out, opts, err = parseVolumePackArgs(args)
		if err != nil {
			break
		}
		err = utils.RunVolume2VOPLPack(in, out, opts)
	case "vol2vopl":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = utils.RunVolume2VOPL(args[0], args[1])
	case "voplpack2vol":
		var in, out string
		var compress bool
		in, out, compress, err = parsePackToVolumeArgs(args)
		if err != nil {
			break
		}
		err = utils.RunVOPLPack2Volume(in, out, compress)
	case "voplpack2vopl":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = utils.UnpackToDir(args[0], args[1])
	case "gensurface":
		var g genSurfaceArgs
		g, err = parseGenSurfaceArgs(args)
		if err != nil {
			break
		}
		err = utils.RunGenSurface(g.kind, g.size, g.cells, g.output)
	case "volinfo":
		if len(args) != 1 {
			usage()
			os.Exit(1)
		}
		err = utils.RunVolInfo(args[0], os.Stdout)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}

	fmt.Println("Operation completed!")
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	voxel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
