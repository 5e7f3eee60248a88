package surface

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format names a supported surface file format.
type Format string

const (
	FormatSTL  Format = "stl"
	FormatOBJ  Format = "obj"
	FormatVTK  Format = "vtk"
	FormatGLTF Format = "gltf"
	FormatGLB  Format = "glb"
)

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch f := Format(ext); f {
	case FormatSTL, FormatOBJ, FormatVTK, FormatGLTF, FormatGLB:
		return f, nil
	}
	return "", fmt.Errorf("unsupported surface format %q", filepath.Ext(path))
}

// Decode reads a surface of the given format from r.
func Decode(r io.Reader, f Format) (*Mesh, error) {
	switch f {
	case FormatSTL:
		return DecodeSTL(r)
	case FormatOBJ:
		return DecodeOBJ(r)
	case FormatVTK:
		return DecodeVTK(r)
	case FormatGLTF, FormatGLB:
		return DecodeGLTF(r)
	}
	return nil, fmt.Errorf("unsupported surface format %q", f)
}

// Load reads a surface file, choosing the reader by extension.
func Load(path string) (*Mesh, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if f == FormatGLTF || f == FormatGLB {
		return LoadGLTF(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := Decode(bufio.NewReader(file), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Save writes s to path as binary STL or GLB depending on the extension.
func Save(path string, s Surface) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f != FormatSTL && f != FormatGLB {
		return fmt.Errorf("cannot write surface format %q", f)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if f == FormatSTL {
		err = EncodeSTL(w, s)
	} else {
		err = EncodeGLB(w, s)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}
