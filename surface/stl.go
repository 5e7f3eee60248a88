package surface

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderLen = 80
	stlRecordLen = 50
)

var le = binary.LittleEndian

// DecodeSTL reads a binary or ASCII STL stream. Identical vertex positions
// are welded into shared points.
func DecodeSTL(r io.Reader) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if isASCIISTL(data) {
		return decodeASCIISTL(data)
	}
	return decodeBinarySTL(data)
}

// Many binary exporters also start their header with "solid", so the size
// implied by the triangle count decides.
func isASCIISTL(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("solid")) {
		return false
	}
	if len(data) >= stlHeaderLen+4 {
		n := le.Uint32(data[stlHeaderLen:])
		if uint64(len(data)) == stlHeaderLen+4+uint64(n)*stlRecordLen {
			return false
		}
	}
	return true
}

func decodeBinarySTL(data []byte) (*Mesh, error) {
	if len(data) < stlHeaderLen+4 {
		return nil, fmt.Errorf("%w: stl too short (%d bytes)", ErrFormat, len(data))
	}
	name := strings.TrimRight(string(bytes.TrimRight(data[:stlHeaderLen], "\x00")), " ")
	n := int(le.Uint32(data[stlHeaderLen:]))
	body := data[stlHeaderLen+4:]
	if len(body) < n*stlRecordLen {
		return nil, fmt.Errorf("%w: stl declares %d triangles, has room for %d", ErrFormat, n, len(body)/stlRecordLen)
	}
	b := newBuilder(name)
	var v [3]r3.Vec
	for t := 0; t < n; t++ {
		rec := body[t*stlRecordLen:]
		for k := range v {
			// skip the 12-byte normal
			off := 12 + 12*k
			v[k] = r3.Vec{
				X: float64(math.Float32frombits(le.Uint32(rec[off:]))),
				Y: float64(math.Float32frombits(le.Uint32(rec[off+4:]))),
				Z: float64(math.Float32frombits(le.Uint32(rec[off+8:]))),
			}
		}
		b.triangle(v[0], v[1], v[2])
	}
	return b.mesh, nil
}

func decodeASCIISTL(data []byte) (*Mesh, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	var b *builder
	var facet []r3.Vec
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			b = newBuilder(strings.Join(fields[1:], " "))
		case "outer":
			facet = facet[:0]
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: stl line %d: vertex needs 3 coordinates", ErrFormat, line)
			}
			p, err := parseVec(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: stl line %d: %v", ErrFormat, line, err)
			}
			facet = append(facet, p)
		case "endloop":
			if b == nil {
				return nil, fmt.Errorf("%w: stl line %d: facet outside solid", ErrFormat, line)
			}
			if len(facet) != 3 {
				return nil, fmt.Errorf("%w: stl line %d: facet has %d vertices", ErrFormat, line, len(facet))
			}
			b.triangle(facet[0], facet[1], facet[2])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: stl has no solid", ErrFormat)
	}
	return b.mesh, nil
}

// EncodeSTL writes s as binary STL, fan-triangulating its polygons.
func EncodeSTL(w io.Writer, s Surface) error {
	var header [stlHeaderLen]byte
	name := "polyvox"
	if m, ok := s.(*Mesh); ok && m.Name != "" {
		name = m.Name
	}
	copy(header[:], name)

	var body bytes.Buffer
	n := 0
	Triangles(s, func(_ int, a, b, c r3.Vec) {
		var rec [stlRecordLen]byte
		nv := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		if l := r3.Norm(nv); l > 0 {
			nv = r3.Scale(1/l, nv)
		}
		for k, p := range [4]r3.Vec{nv, a, b, c} {
			off := 12 * k
			le.PutUint32(rec[off:], math.Float32bits(float32(p.X)))
			le.PutUint32(rec[off+4:], math.Float32bits(float32(p.Y)))
			le.PutUint32(rec[off+8:], math.Float32bits(float32(p.Z)))
		}
		body.Write(rec[:])
		n++
	})

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(w, le, uint32(n)); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

func parseVec(f []string) (r3.Vec, error) {
	var c [3]float64
	for i := range c {
		v, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return r3.Vec{}, err
		}
		c[i] = v
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}
