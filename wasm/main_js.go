//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/polyvox/api"
	"github.com/voxelsplace/polyvox/surface"
	"github.com/voxelsplace/polyvox/voxel"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	uint8arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(uint8arr, b)
	return uint8arr
}

// voxelize(meshBytes, format, spacing[, reverse]) returns .mha bytes.
func voxelize(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return js.ValueOf("missing mesh bytes, format or spacing")
	}
	cfg := voxel.DefaultConfig().WithSpacing(args[2].Float())
	if len(args) > 3 {
		cfg = cfg.WithReverse(args[3].Bool())
	}
	out, warnings, err := api.VoxelizeBytes(bytesFromJS(args[0]), surface.Format(args[1].String()), cfg)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	for _, w := range warnings {
		js.Global().Get("console").Call("warn", w.String())
	}
	return bytesToJS(out)
}

// vol2glb(mhaBytes[, value[, color]]) returns .glb bytes.
func vol2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing volume bytes")
	}
	value := uint8(voxel.DefaultForeground)
	if len(args) > 1 {
		value = uint8(args[1].Int())
	}
	color := ""
	if len(args) > 2 {
		color = args[2].String()
	}
	out, err := api.VolumeToGLB(bytesFromJS(args[0]), value, color)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func vol2voplpack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing volume bytes")
	}
	out, err := api.VolumeToVOPLPack(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func voplpack2vol(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	out, err := api.VOPLPackToVolume(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func main() {
	js.Global().Set("voxelize", js.FuncOf(voxelize))
	js.Global().Set("vol2glb", js.FuncOf(vol2glb))
	js.Global().Set("vol2voplpack", js.FuncOf(vol2voplpack))
	js.Global().Set("voplpack2vol", js.FuncOf(voplpack2vol))
	select {}
}
