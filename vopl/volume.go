package vopl

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/voxelsplace/polyvox/voxel"
)

const (
	// ManifestEntry names the pack entry holding the volume geometry.
	ManifestEntry = "grid"
	manifestEnc   = 0xFF
)

// SplitVolume cuts img into 16^3 chunks, x varying fastest, then y, then z.
// Edge chunks are zero-padded.
func SplitVolume(img voxel.Image) []Chunk {
	dims := imageDims(img)
	data := img.Voxels()
	var n [3]int
	for a := range n {
		n[a] = (dims[a] + Width - 1) / Width
	}
	chunks := make([]Chunk, 0, n[0]*n[1]*n[2])
	for cz := 0; cz < n[2]; cz++ {
		for cy := 0; cy < n[1]; cy++ {
			for cx := 0; cx < n[0]; cx++ {
				grid := new(VoxelGrid)
				for z := 0; z < Depth && cz*Depth+z < dims[2]; z++ {
					for y := 0; y < Height && cy*Height+y < dims[1]; y++ {
						row := ((cz*Depth+z)*dims[1] + cy*Height + y) * dims[0]
						for x := 0; x < Width && cx*Width+x < dims[0]; x++ {
							grid[y][x][z] = data[row+cx*Width+x]
						}
					}
				}
				chunks = append(chunks, Chunk{X: cx, Y: cy, Z: cz, Grid: grid})
			}
		}
	}
	return chunks
}

// PackOptions selects the container layout and codec of a volume pack.
type PackOptions struct {
	Layout      PackLayout
	Compression PackCompression
}

// DefaultPackOptions returns the CDC layout with zstd compression.
func DefaultPackOptions() PackOptions {
	return PackOptions{Layout: LayoutCDC, Compression: PackCompZstd}
}

// ParsePackLayout accepts "raw" or "cdc".
func ParsePackLayout(s string) (PackLayout, error) {
	switch s {
	case "raw":
		return LayoutRaw, nil
	case "cdc":
		return LayoutCDC, nil
	}
	return 0, fmt.Errorf("unknown pack layout %q (want raw or cdc)", s)
}

// ParsePackCompression accepts "none", "zlib" or "zstd".
func ParsePackCompression(s string) (PackCompression, error) {
	switch s {
	case "none":
		return PackCompNone, nil
	case "zlib":
		return PackCompZlib, nil
	case "zstd":
		return PackCompZstd, nil
	}
	return 0, fmt.Errorf("unknown pack compression %q (want none, zlib or zstd)", s)
}

// EncodeVolumePack packs img with DefaultPackOptions.
func EncodeVolumePack(img voxel.Image) ([]byte, error) {
	return EncodeVolumePackWith(img, DefaultPackOptions())
}

// EncodeVolumePackWith packs img into a .voplpack: a geometry manifest entry
// plus one entry per non-empty chunk. All chunks share the bits per voxel
// needed by the largest value in the volume.
func EncodeVolumePackWith(img voxel.Image, opts PackOptions) ([]byte, error) {
	chunks, bpp := nonEmptyChunks(img)
	slices.SortFunc(chunks, func(a, b Chunk) int {
		ma := Morton3D64(uint32(a.X), uint32(a.Y), uint32(a.Z))
		mb := Morton3D64(uint32(b.X), uint32(b.Y), uint32(b.Z))
		switch {
		case ma < mb:
			return -1
		case ma > mb:
			return 1
		}
		return 0
	})

	entries := make([]PackEntry, len(chunks)+1)
	entries[0] = PackEntry{Name: ManifestEntry, Enc: manifestEnc, Payload: encodeManifest(img)}
	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enc := bestEncoding(c.Grid, bpp)
			entries[i+1] = PackEntry{Name: c.Name(), Enc: uint8(enc.encoding), Payload: enc.payload}
		}()
	}
	wg.Wait()

	pack := &Pack{Header: headerForBPP(bpp), Entries: entries}
	if opts.Layout == LayoutRaw {
		return pack.Marshal(opts.Compression)
	}
	return pack.MarshalEx(opts.Layout, opts.Compression)
}

// EncodeVolumeChunks encodes every non-empty chunk of img as a standalone
// .vopl file, keyed by chunk name.
func EncodeVolumeChunks(img voxel.Image) map[string][]byte {
	chunks, bpp := nonEmptyChunks(img)
	out := make(map[string][]byte, len(chunks))
	for _, c := range chunks {
		out[c.Name()] = EncodeChunk(c.Grid, bpp)
	}
	return out
}

func nonEmptyChunks(img voxel.Image) ([]Chunk, uint8) {
	var chunks []Chunk
	var maxVal uint8
	for _, c := range SplitVolume(img) {
		if c.Grid.IsEmpty() {
			continue
		}
		maxVal = max(maxVal, c.Grid.MaxValue())
		chunks = append(chunks, c)
	}
	return chunks, BPPFor(maxVal)
}

// DecodeVolumePack rebuilds the volume stored by EncodeVolumePack. Voxels of
// chunks missing from the pack are zero.
func DecodeVolumePack(data []byte) (*voxel.Volume, error) {
	pack, _, err := UnmarshalPack(data)
	if err != nil {
		return nil, err
	}
	h := pack.Header
	if h.W != Width || h.H != Height || h.D != Depth {
		return nil, fmt.Errorf("chunk size %dx%dx%d is not supported", h.W, h.H, h.D)
	}
	if h.BPP < 1 || h.BPP > 8 {
		return nil, fmt.Errorf("bits per voxel %d out of range", h.BPP)
	}

	var grid *voxel.GridSpec
	for _, e := range pack.Entries {
		if e.Name == ManifestEntry {
			g, err := decodeManifest(e.Payload)
			if err != nil {
				return nil, err
			}
			grid = &g
			break
		}
	}
	if grid == nil {
		return nil, fmt.Errorf("pack has no %q entry", ManifestEntry)
	}
	vol := voxel.NewVolume(*grid)
	dims := grid.Dims

	for _, e := range pack.Entries {
		if e.Name == ManifestEntry {
			continue
		}
		cx, cy, cz, err := ParseChunkName(e.Name)
		if err != nil {
			return nil, err
		}
		if cx*Width >= dims[0] || cy*Height >= dims[1] || cz*Depth >= dims[2] {
			return nil, fmt.Errorf("chunk %s lies outside the %v grid", e.Name, dims)
		}
		g, err := decodePayload(e.Enc, h.BPP, e.Payload)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", e.Name, err)
		}
		for z := 0; z < Depth && cz*Depth+z < dims[2]; z++ {
			for y := 0; y < Height && cy*Height+y < dims[1]; y++ {
				for x := 0; x < Width && cx*Width+x < dims[0]; x++ {
					vol.Set(cx*Width+x, cy*Height+y, cz*Depth+z, g[y][x][z])
				}
			}
		}
	}
	return vol, nil
}

func imageDims(img voxel.Image) [3]int {
	ext := img.Extent()
	return [3]int{ext[1] - ext[0] + 1, ext[3] - ext[2] + 1, ext[5] - ext[4] + 1}
}

// encodeManifest writes the dims as uvarints followed by spacing and origin
// as little-endian float64s.
func encodeManifest(img voxel.Image) []byte {
	var b []byte
	for _, d := range imageDims(img) {
		b = writeUVarint(b, uint32(d))
	}
	for _, v := range img.Spacing() {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	for _, v := range img.Origin() {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b
}

func decodeManifest(b []byte) (voxel.GridSpec, error) {
	var g voxel.GridSpec
	pos := 0
	total := 1.0
	for a := range g.Dims {
		d, err := readUVarint(b, &pos)
		if err != nil {
			return g, fmt.Errorf("grid manifest: %w", err)
		}
		if d == 0 {
			return g, fmt.Errorf("grid manifest: empty %s axis", [3]string{"x", "y", "z"}[a])
		}
		g.Dims[a] = int(d)
		total *= float64(d)
	}
	if total > voxel.MaxVoxels {
		return g, fmt.Errorf("grid manifest: %v exceeds %d voxels", g.Dims, voxel.MaxVoxels)
	}
	if len(b)-pos != 6*8 {
		return g, fmt.Errorf("grid manifest: %d trailing bytes, want 48", len(b)-pos)
	}
	for a := range g.Spacing {
		g.Spacing[a] = math.Float64frombits(binary.LittleEndian.Uint64(b[pos:]))
		pos += 8
	}
	for a := range g.Origin {
		g.Origin[a] = math.Float64frombits(binary.LittleEndian.Uint64(b[pos:]))
		pos += 8
	}
	return g, nil
}
