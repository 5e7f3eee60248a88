// Package api exposes the conversions as byte-in, byte-out calls for callers
// without a filesystem, such as the WASM build. Volumes travel as single-file
// MetaImage (.mha) bytes.
package api

import (
	"bytes"
	"fmt"

	"github.com/voxelsplace/polyvox/metaimage"
	"github.com/voxelsplace/polyvox/surface"
	"github.com/voxelsplace/polyvox/vopl"
	"github.com/voxelsplace/polyvox/voxel"
)

// VoxelizeBytes decodes a surface of the given format, voxelizes it with cfg
// and returns the volume as compressed .mha bytes along with any bounds
// warnings.
func VoxelizeBytes(mesh []byte, format surface.Format, cfg voxel.Config) ([]byte, []voxel.BoundsWarning, error) {
	s, err := surface.Decode(bytes.NewReader(mesh), format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read surface: %w", err)
	}
	res, err := voxel.Voxelize(s, cfg)
	if err != nil {
		return nil, nil, err
	}
	var out bytes.Buffer
	if err := metaimage.Encode(&out, res.Volume, metaimage.DefaultOptions()); err != nil {
		return nil, nil, err
	}
	return out.Bytes(), res.Warnings, nil
}

// VolumeToGLB meshes the voxels of an .mha volume equal to value and returns
// a .glb. An empty color uses the value's palette color.
func VolumeToGLB(mha []byte, value uint8, color string) ([]byte, error) {
	v, err := metaimage.Decode(bytes.NewReader(mha), "")
	if err != nil {
		return nil, err
	}
	return vopl.EncodeGLB(vopl.GenerateMesh(v, value), color)
}

// VolumeToVOPLPack converts an .mha volume into a chunked .voplpack.
func VolumeToVOPLPack(mha []byte) ([]byte, error) {
	v, err := metaimage.Decode(bytes.NewReader(mha), "")
	if err != nil {
		return nil, err
	}
	return vopl.EncodeVolumePack(v)
}

// VOPLPackToVolume converts a .voplpack produced by VolumeToVOPLPack back to
// .mha bytes.
func VOPLPackToVolume(pack []byte) ([]byte, error) {
	v, err := vopl.DecodeVolumePack(pack)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := metaimage.Encode(&out, v, metaimage.DefaultOptions()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
