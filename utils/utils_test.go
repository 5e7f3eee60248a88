package utils

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxelsplace/polyvox/metaimage"
	"github.com/voxelsplace/polyvox/vopl"
	"github.com/voxelsplace/polyvox/voxel"
)

// voxelizeCube writes a cuboid [2.5,6.5]^3 surface and voxelizes it into
// [0,10]^3 at spacing 1, which puts indices 3..6 on every axis inside.
func voxelizeCube(t *testing.T, dir string) string {
	t.Helper()
	stl := filepath.Join(dir, "cube.stl")
	if err := RunGenSurface("cuboid", []float64{2.5, 2.5, 2.5, 6.5, 6.5, 6.5}, 0, stl); err != nil {
		t.Fatalf("RunGenSurface failed: %v", err)
	}
	out := filepath.Join(dir, "cube.mhd")
	cfg := voxel.DefaultConfig().WithSpacing(1).WithBounds(0, 10, 0, 10, 0, 10)
	res, err := RunVoxelize(VoxelizeJob{Input: stl, Output: out, Config: cfg, Compress: true})
	if err != nil {
		t.Fatalf("RunVoxelize failed: %v", err)
	}
	if got := res.Volume.Count(1); got != 64 {
		t.Fatalf("expected 64 foreground voxels, got %d", got)
	}
	return out
}

func TestVoxelizeWritesVolume(t *testing.T) {
	dir := t.TempDir()
	out := voxelizeCube(t, dir)
	if _, err := os.Stat(filepath.Join(dir, "cube.zraw")); err != nil {
		t.Fatalf("expected data file next to header: %v", err)
	}
	v, err := metaimage.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if v.Grid.Dims != [3]int{10, 10, 10} {
		t.Fatalf("unexpected dims %v", v.Grid.Dims)
	}
	for _, idx := range [][3]int{{3, 3, 3}, {6, 6, 6}, {4, 5, 6}} {
		if v.At(idx[0], idx[1], idx[2]) != 1 {
			t.Fatalf("voxel %v should be inside", idx)
		}
	}
	for _, idx := range [][3]int{{2, 3, 3}, {7, 6, 6}, {0, 0, 0}} {
		if v.At(idx[0], idx[1], idx[2]) != 0 {
			t.Fatalf("voxel %v should be outside", idx)
		}
	}
}

func TestVoxelizeDefaultOutput(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := RunGenSurface("uvsphere", []float64{1}, 0, "s.stl"); err != nil {
		t.Fatalf("RunGenSurface failed: %v", err)
	}
	if _, err := RunVoxelize(VoxelizeJob{Input: "s.stl", Config: voxel.DefaultConfig()}); err != nil {
		t.Fatalf("RunVoxelize failed: %v", err)
	}
	if _, err := os.Stat(DefaultOutput); err != nil {
		t.Fatalf("expected %s: %v", DefaultOutput, err)
	}
}

type countingHandler struct {
	warns int
}

func (h *countingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *countingHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Level == slog.LevelWarn {
		h.warns++
	}
	return nil
}
func (h *countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *countingHandler) WithGroup(string) slog.Handler      { return h }

// captureStdout returns what fn printed to os.Stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout := os.Stdout
	os.Stdout = w
	done := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		done <- b
	}()
	fn()
	os.Stdout = stdout
	w.Close()
	return string(<-done)
}

func TestVoxelizeReportsBoundsWarningsOnce(t *testing.T) {
	dir := t.TempDir()
	stl := filepath.Join(dir, "box.stl")
	if err := RunGenSurface("cuboid", []float64{0, 0, 0, 10, 10, 10}, 0, stl); err != nil {
		t.Fatal(err)
	}
	h := &countingHandler{}
	voxel.SetLogger(slog.New(h))
	defer voxel.SetLogger(nil)

	cfg := voxel.DefaultConfig().WithSpacing(1).WithBounds(2, 8, 0, 10, 0, 10)
	var res *voxel.Result
	var err error
	out := captureStdout(t, func() {
		res, err = RunVoxelize(VoxelizeJob{Input: stl, Output: filepath.Join(dir, "box.mha"), Config: cfg})
	})
	if err != nil {
		t.Fatalf("RunVoxelize failed: %v", err)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("got %d warnings, want 2", len(res.Warnings))
	}
	if h.warns != 2 {
		t.Fatalf("logged %d warnings, want 2", h.warns)
	}
	if strings.Contains(out, "Warning") || strings.Contains(out, "requested bound") {
		t.Fatalf("warnings also printed to stdout:\n%s", out)
	}
}

func TestVoxelizeErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := RunVoxelize(VoxelizeJob{Input: filepath.Join(dir, "missing.stl"), Config: voxel.DefaultConfig()}); err == nil {
		t.Fatalf("expected error for missing input")
	}
	bad := voxel.DefaultConfig().WithSpacing(-1)
	if _, err := RunVoxelize(VoxelizeJob{Input: "whatever.stl", Config: bad}); err == nil {
		t.Fatalf("expected configuration error")
	}
}

func TestVolumePackRoundTrip(t *testing.T) {
	dir := t.TempDir()
	vol := voxelizeCube(t, dir)
	pack := filepath.Join(dir, "cube.voplpack")
	opts := vopl.PackOptions{Layout: vopl.LayoutRaw, Compression: vopl.PackCompNone}
	if err := RunVolume2VOPLPack(vol, pack, opts); err != nil {
		t.Fatalf("RunVolume2VOPLPack failed: %v", err)
	}
	back := filepath.Join(dir, "back.mha")
	if err := RunVOPLPack2Volume(pack, back, false); err != nil {
		t.Fatalf("RunVOPLPack2Volume failed: %v", err)
	}
	a, err := metaimage.ReadFile(vol)
	if err != nil {
		t.Fatal(err)
	}
	b, err := metaimage.ReadFile(back)
	if err != nil {
		t.Fatal(err)
	}
	if a.Grid != b.Grid {
		t.Fatalf("grid mismatch: %+v vs %+v", a.Grid, b.Grid)
	}
	if !bytes.Equal(a.Scalars, b.Scalars) {
		t.Fatalf("voxels differ after pack round trip")
	}
}

func TestUnpackToDir(t *testing.T) {
	dir := t.TempDir()
	vol := voxelizeCube(t, dir)
	pack := filepath.Join(dir, "cube.voplpack")
	if err := RunVolume2VOPLPack(vol, pack, vopl.DefaultPackOptions()); err != nil {
		t.Fatalf("RunVolume2VOPLPack failed: %v", err)
	}
	out := filepath.Join(dir, "chunks")
	if err := UnpackToDir(pack, out); err != nil {
		t.Fatalf("UnpackToDir failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(out, "0_0_0.vopl"))
	if err != nil {
		t.Fatalf("expected chunk 0_0_0.vopl: %v", err)
	}
	g, err := vopl.DecodeChunk(data)
	if err != nil {
		t.Fatalf("DecodeChunk failed: %v", err)
	}
	// chunk grids are indexed [y][x][z]
	if g[3][3][3] != 1 || g[2][3][3] != 0 {
		t.Fatalf("unexpected chunk contents")
	}
	if _, err := os.Stat(filepath.Join(out, vopl.ManifestEntry)); err == nil {
		t.Fatalf("manifest should not be unpacked")
	}
}

func TestUnpackToDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	var g vopl.VoxelGrid
	g[0][0][0] = 1
	file := vopl.EncodeChunk(&g, 1)
	hdr, payload, err := vopl.ParseVOPLHeaderFromBytes(file)
	if err != nil {
		t.Fatal(err)
	}
	enc := file[5] // encoding byte follows magic and version
	p := &vopl.Pack{Header: hdr, Entries: []vopl.PackEntry{
		{Name: "0_0_0.vopl", Enc: enc, Payload: payload},
		{Name: "../escape.vopl", Enc: enc, Payload: payload},
	}}
	data, err := p.Marshal(vopl.PackCompNone)
	if err != nil {
		t.Fatal(err)
	}
	packPath := filepath.Join(dir, "bad.voplpack")
	if err := os.WriteFile(packPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "chunks")
	if err := UnpackToDir(packPath, out); err == nil {
		t.Fatalf("expected error for a bad chunk name")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("output directory should not be created, stat err %v", err)
	}
}

func TestVolume2VOPL(t *testing.T) {
	dir := t.TempDir()
	vol := voxelizeCube(t, dir)
	out := filepath.Join(dir, "chunks")
	if err := RunVolume2VOPL(vol, out); err != nil {
		t.Fatalf("RunVolume2VOPL failed: %v", err)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "0_0_0.vopl" {
		t.Fatalf("unexpected chunk files %v", entries)
	}
	data, err := os.ReadFile(filepath.Join(out, "0_0_0.vopl"))
	if err != nil {
		t.Fatal(err)
	}
	g, err := vopl.DecodeChunk(data)
	if err != nil {
		t.Fatalf("DecodeChunk failed: %v", err)
	}
	if g[3][3][3] != 1 || g[3][2][3] != 0 {
		t.Fatalf("unexpected chunk contents")
	}
}

func TestVolume2GLB(t *testing.T) {
	dir := t.TempDir()
	vol := voxelizeCube(t, dir)
	glb := filepath.Join(dir, "cube.glb")
	if err := RunVolume2GLB(vol, glb, 1, "#336699"); err != nil {
		t.Fatalf("RunVolume2GLB failed: %v", err)
	}
	data, err := os.ReadFile(glb)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 12 || string(data[:4]) != "glTF" {
		t.Fatalf("output is not a binary glTF")
	}
	if err := RunVolume2GLB(vol, glb, 42, ""); err == nil {
		t.Fatalf("expected error for a value with no voxels")
	}

	pack := filepath.Join(dir, "cube.voplpack")
	if err := RunVolume2VOPLPack(vol, pack, vopl.DefaultPackOptions()); err != nil {
		t.Fatal(err)
	}
	if err := RunVOPLPack2GLB(pack, filepath.Join(dir, "pack.glb"), 1, ""); err != nil {
		t.Fatalf("RunVOPLPack2GLB failed: %v", err)
	}
}

func TestGenSurface(t *testing.T) {
	cases := []struct {
		kind string
		size []float64
	}{
		{"sphere", []float64{1}},
		{"box", []float64{1, 2, 3}},
		{"cylinder", []float64{2, 0.5}},
		{"uvsphere", []float64{1}},
		{"uvsphere", []float64{1, 4, 8}},
		{"cuboid", []float64{0, 0, 0, 1, 1, 1}},
	}
	for _, c := range cases {
		t.Run(c.kind, func(t *testing.T) {
			m, err := GenSurface(c.kind, c.size, 16)
			if err != nil {
				t.Fatalf("GenSurface failed: %v", err)
			}
			if m.IsEmpty() {
				t.Fatalf("generated surface is empty")
			}
		})
	}

	bad := []struct {
		kind string
		size []float64
	}{
		{"torus", []float64{1}},
		{"sphere", nil},
		{"box", []float64{1, 2}},
		{"uvsphere", []float64{1, 2}},
		{"cuboid", []float64{1, 0, 0, 0, 1, 1}},
	}
	for _, c := range bad {
		if _, err := GenSurface(c.kind, c.size, 16); err == nil {
			t.Fatalf("expected error for %s %v", c.kind, c.size)
		}
	}
}

func TestVolInfo(t *testing.T) {
	dir := t.TempDir()
	vol := voxelizeCube(t, dir)
	var buf bytes.Buffer
	if err := RunVolInfo(vol, &buf); err != nil {
		t.Fatalf("RunVolInfo failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"dims:     10 x 10 x 10 (1000 voxels)", "value   0: 936", "value   1: 64", "digest:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("volinfo output missing %q:\n%s", want, out)
		}
	}
}
