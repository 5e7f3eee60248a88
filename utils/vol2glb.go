package utils

import (
	"fmt"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/voxelsplace/polyvox/metaimage"
	"github.com/voxelsplace/polyvox/vopl"
	"github.com/voxelsplace/polyvox/voxel"
)

// RunVolume2GLB meshes the voxels of a MetaImage volume equal to value and
// saves the preview as .glb.
func RunVolume2GLB(inPath, outPath string, value uint8, color string) error {
	v, err := metaimage.ReadFile(inPath)
	if err != nil {
		return err
	}
	return saveVolumeGLB(v, outPath, value, color)
}

// RunVOPLPack2GLB does the same for a volume stored as .voplpack.
func RunVOPLPack2GLB(inPath, outPath string, value uint8, color string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	v, err := vopl.DecodeVolumePack(data)
	if err != nil {
		return err
	}
	return saveVolumeGLB(v, outPath, value, color)
}

func saveVolumeGLB(v *voxel.Volume, outPath string, value uint8, color string) error {
	mesh := vopl.GenerateMesh(v, value)
	if mesh.QuadCount() == 0 {
		return fmt.Errorf("no voxels with value %d", value)
	}
	doc, err := vopl.BuildGLTF(mesh, color)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, outPath); err != nil {
		return err
	}
	fmt.Printf("Mesh saved to %s (%d quads)\n", outPath, mesh.QuadCount())
	return nil
}
