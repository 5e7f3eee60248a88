package metaimage

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/voxelsplace/polyvox/voxel"
)

// Options controls how images are written.
type Options struct {
	// Compress stores the data zlib-compressed (.zraw next to a .mhd).
	Compress bool
}

// DefaultOptions compresses the data.
func DefaultOptions() Options {
	return Options{Compress: true}
}

// WriteFile writes img to path. A .mha path gets a single file with the data
// appended to the header; any other path gets the header plus a data file
// named after it with a .zraw or .raw extension.
func WriteFile(path string, img voxel.Image, opts Options) error {
	data, err := encodeData(img, opts.Compress)
	if err != nil {
		return err
	}
	h := headerFor(img, opts.Compress, int64(len(data)))

	if strings.EqualFold(filepath.Ext(path), ".mha") {
		h.ElementDataFile = Local
		var buf bytes.Buffer
		if err := h.Write(&buf); err != nil {
			return err
		}
		buf.Write(data)
		return os.WriteFile(path, buf.Bytes(), 0o644)
	}

	ext := ".raw"
	if opts.Compress {
		ext = ".zraw"
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	h.ElementDataFile = base + ext
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), h.ElementDataFile), data, 0o644); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.Write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Encode writes img to w as a single-file (.mha) image.
func Encode(w io.Writer, img voxel.Image, opts Options) error {
	data, err := encodeData(img, opts.Compress)
	if err != nil {
		return err
	}
	h := headerFor(img, opts.Compress, int64(len(data)))
	h.ElementDataFile = Local
	if err := h.Write(w); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadFile loads a .mhd or .mha image.
func ReadFile(path string) (*voxel.Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := Decode(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Decode reads an image from r. External data files are resolved relative to
// dir.
func Decode(r io.Reader, dir string) (*voxel.Volume, error) {
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	var src io.Reader = br
	if h.ElementDataFile != Local {
		f, err := os.Open(filepath.Join(dir, h.ElementDataFile))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = bufio.NewReader(f)
	}
	if h.Compressed {
		if h.CompressedDataSize > 0 {
			src = io.LimitReader(src, h.CompressedDataSize)
		}
		zr, err := zlib.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("element data: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	g := voxel.GridSpec{
		Dims:    h.DimSize,
		Spacing: h.ElementSpacing,
		Origin:  h.Offset,
	}
	if float64(h.DimSize[0])*float64(h.DimSize[1])*float64(h.DimSize[2]) > voxel.MaxVoxels {
		return nil, fmt.Errorf("%w: %v voxels exceed %d", ErrHeader, h.DimSize, voxel.MaxVoxels)
	}
	v := voxel.NewVolume(g)
	if _, err := io.ReadFull(src, v.Scalars); err != nil {
		return nil, fmt.Errorf("element data: %w", err)
	}
	return v, nil
}

func headerFor(img voxel.Image, compressed bool, size int64) *Header {
	ext := img.Extent()
	h := &Header{
		ElementSpacing: img.Spacing(),
		Offset:         img.Origin(),
		Compressed:     compressed,
	}
	if compressed {
		h.CompressedDataSize = size
	}
	for a := 0; a < 3; a++ {
		h.DimSize[a] = ext[2*a+1] - ext[2*a] + 1
	}
	return h
}

func encodeData(img voxel.Image, compress bool) ([]byte, error) {
	data := img.Voxels()
	if !compress {
		return data, nil
	}
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
