// Package metaimage reads and writes 3D single-byte volumes in the MetaImage
// format: a text header (.mhd) next to a raw or zlib-compressed data file, or
// header and data in one file (.mha).
package metaimage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrHeader is returned (wrapped) when a header is malformed or describes
// data this package does not handle.
var ErrHeader = errors.New("metaimage: malformed header")

// Local is the ElementDataFile value of a single-file image.
const Local = "LOCAL"

const elementType = "MET_UCHAR"

// Header holds the fields of a MetaImage header that matter for a 3D
// MET_UCHAR volume.
type Header struct {
	DimSize            [3]int
	ElementSpacing     [3]float64
	Offset             [3]float64
	Compressed         bool
	CompressedDataSize int64
	ElementDataFile    string
}

// NumVoxels returns the element count described by DimSize.
func (h *Header) NumVoxels() int {
	return h.DimSize[0] * h.DimSize[1] * h.DimSize[2]
}

// Write emits the header. Keys come out in the order other MetaImage tools
// write them; ElementDataFile is always last.
func (h *Header) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ObjectType = Image")
	fmt.Fprintln(bw, "NDims = 3")
	fmt.Fprintln(bw, "BinaryData = True")
	fmt.Fprintln(bw, "BinaryDataByteOrderMSB = False")
	fmt.Fprintf(bw, "CompressedData = %s\n", boolString(h.Compressed))
	if h.Compressed {
		fmt.Fprintf(bw, "CompressedDataSize = %d\n", h.CompressedDataSize)
	}
	fmt.Fprintln(bw, "TransformMatrix = 1 0 0 0 1 0 0 0 1")
	fmt.Fprintf(bw, "Offset = %s\n", floats(h.Offset))
	fmt.Fprintln(bw, "CenterOfRotation = 0 0 0")
	fmt.Fprintln(bw, "AnatomicalOrientation = RAI")
	fmt.Fprintf(bw, "ElementSpacing = %s\n", floats(h.ElementSpacing))
	fmt.Fprintf(bw, "DimSize = %d %d %d\n", h.DimSize[0], h.DimSize[1], h.DimSize[2])
	fmt.Fprintf(bw, "ElementType = %s\n", elementType)
	fmt.Fprintf(bw, "ElementDataFile = %s\n", h.ElementDataFile)
	return bw.Flush()
}

// ReadHeader parses header lines up to and including ElementDataFile. The
// reader is left positioned at the first byte after that line, which is
// where LOCAL data starts.
func ReadHeader(r *bufio.Reader) (*Header, error) {
	h := &Header{}
	seen := map[string]bool{}
	for {
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return nil, fmt.Errorf("%w: missing ElementDataFile", ErrHeader)
			}
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %q has no '='", ErrHeader, line)
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		seen[key] = true
		if err := h.set(key, value); err != nil {
			return nil, err
		}
		if key == "ElementDataFile" {
			break
		}
	}
	if !seen["DimSize"] {
		return nil, fmt.Errorf("%w: missing DimSize", ErrHeader)
	}
	if !seen["ElementSpacing"] {
		h.ElementSpacing = [3]float64{1, 1, 1}
	}
	return h, nil
}

func (h *Header) set(key, value string) error {
	switch key {
	case "ObjectType":
		if value != "Image" {
			return fmt.Errorf("%w: ObjectType %s", ErrHeader, value)
		}
	case "NDims":
		if value != "3" {
			return fmt.Errorf("%w: only 3 dimensions are supported, got %s", ErrHeader, value)
		}
	case "BinaryData":
		if !parseBool(value) {
			return fmt.Errorf("%w: ASCII data is not supported", ErrHeader)
		}
	case "BinaryDataByteOrderMSB", "ElementByteOrderMSB":
		// single-byte elements have no byte order
	case "CompressedData":
		h.Compressed = parseBool(value)
	case "CompressedDataSize":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: CompressedDataSize %q", ErrHeader, value)
		}
		h.CompressedDataSize = n
	case "DimSize":
		var d [3]int
		if err := scan3(value, func(i int, s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return fmt.Errorf("bad size %q", s)
			}
			d[i] = n
			return nil
		}); err != nil {
			return fmt.Errorf("%w: DimSize: %v", ErrHeader, err)
		}
		h.DimSize = d
	case "ElementSpacing", "ElementSize":
		v, err := parseFloats(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrHeader, key, err)
		}
		for _, s := range v {
			if !(s > 0) || math.IsInf(s, 0) {
				return fmt.Errorf("%w: %s must be positive, got %s", ErrHeader, key, value)
			}
		}
		h.ElementSpacing = v
	case "Offset", "Origin", "Position":
		v, err := parseFloats(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrHeader, key, err)
		}
		h.Offset = v
	case "ElementType":
		if value != elementType {
			return fmt.Errorf("%w: element type %s is not supported (want %s)", ErrHeader, value, elementType)
		}
	case "ElementNumberOfChannels":
		if value != "1" {
			return fmt.Errorf("%w: %s channels are not supported", ErrHeader, value)
		}
	case "ElementDataFile":
		if value == "" || strings.HasPrefix(value, "LIST") || strings.Contains(value, "%") {
			return fmt.Errorf("%w: ElementDataFile %q is not supported", ErrHeader, value)
		}
		if value != Local && !filepath.IsLocal(value) {
			return fmt.Errorf("%w: ElementDataFile %q must be a relative path inside the header's directory", ErrHeader, value)
		}
		h.ElementDataFile = value
	}
	return nil
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true") || s == "1"
}

func floats(v [3]float64) string {
	parts := make([]string, 3)
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func parseFloats(value string) ([3]float64, error) {
	var v [3]float64
	err := scan3(value, func(i int, s string) error {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		v[i] = f
		return nil
	})
	return v, err
}

func scan3(value string, fn func(i int, s string) error) error {
	fields := strings.Fields(value)
	if len(fields) != 3 {
		return fmt.Errorf("need 3 values, got %d", len(fields))
	}
	for i, s := range fields {
		if err := fn(i, s); err != nil {
			return err
		}
	}
	return nil
}
