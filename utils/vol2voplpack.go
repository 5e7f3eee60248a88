package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voxelsplace/polyvox/metaimage"
	"github.com/voxelsplace/polyvox/vopl"
)

// RunVolume2VOPLPack converts a MetaImage volume into a chunked .voplpack
// with the given layout and compression.
func RunVolume2VOPLPack(inPath, outPath string, opts vopl.PackOptions) error {
	v, err := metaimage.ReadFile(inPath)
	if err != nil {
		return err
	}
	start := time.Now()
	data, err := vopl.EncodeVolumePackWith(v, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Compression (vol2voplpack) took %d ms\n", time.Since(start).Milliseconds())
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Pack saved to %s (%d bytes, %d voxels)\n", outPath, len(data), v.Grid.NumVoxels())
	return nil
}

// RunVOPLPack2Volume converts a .voplpack back into a MetaImage volume.
func RunVOPLPack2Volume(inPath, outPath string, compress bool) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	v, err := vopl.DecodeVolumePack(data)
	if err != nil {
		return err
	}
	if err := metaimage.WriteFile(outPath, v, metaimage.Options{Compress: compress}); err != nil {
		return err
	}
	fmt.Printf("Volume saved to %s\n", outPath)
	return nil
}

// UnpackToDir writes every chunk of a .voplpack into outputDir as a
// standalone .vopl file. The geometry manifest is skipped.
func UnpackToDir(packFile, outputDir string) error {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return err
	}
	pack, _, err := vopl.UnmarshalPack(data)
	if err != nil {
		return err
	}
	var chunks []vopl.PackEntry
	for _, e := range pack.Entries {
		if e.Name == vopl.ManifestEntry {
			continue
		}
		if _, _, _, err := vopl.ParseChunkName(e.Name); err != nil {
			return err
		}
		chunks = append(chunks, e)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(chunks))
	for _, e := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			voplBytes := vopl.BuildVOPLFromHeaderAndPayload(pack.Header, e.Enc, e.Payload)
			if err := os.WriteFile(filepath.Join(outputDir, e.Name), voplBytes, 0o644); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return err
	}
	fmt.Printf("%d chunks written to %s\n", len(chunks), outputDir)
	return nil
}

// RunVolume2VOPL writes every non-empty 16^3 chunk of a MetaImage volume into
// outputDir as a standalone .vopl file.
func RunVolume2VOPL(inPath, outputDir string) error {
	v, err := metaimage.ReadFile(inPath)
	if err != nil {
		return err
	}
	files := vopl.EncodeVolumeChunks(v)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(outputDir, name), data, 0o644); err != nil {
			return err
		}
	}
	fmt.Printf("%d chunks written to %s\n", len(files), outputDir)
	return nil
}
