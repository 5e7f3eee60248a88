package surface

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DecodeOBJ reads the geometry of a Wavefront OBJ stream: "v" and "f"
// statements. Texture and normal references in faces are ignored, negative
// indices count back from the last vertex.
func DecodeOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "o":
			if m.Name == "" && len(fields) > 1 {
				m.Name = fields[1]
			}
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: obj line %d: vertex needs 3 coordinates", ErrFormat, line)
			}
			p, err := parseVec(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: obj line %d: %v", ErrFormat, line, err)
			}
			m.Points = append(m.Points, p)
		case "f":
			poly := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := objIndex(ref, len(m.Points))
				if err != nil {
					return nil, fmt.Errorf("%w: obj line %d: %v", ErrFormat, line, err)
				}
				poly = append(poly, idx)
			}
			if len(poly) >= 3 {
				m.Polygons = append(m.Polygons, poly)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func objIndex(ref string, n int) (int, error) {
	if k := strings.IndexByte(ref, '/'); k >= 0 {
		ref = ref[:k]
	}
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += n
	default:
		return 0, fmt.Errorf("face index 0")
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("face index %s out of range (%d vertices)", ref, n)
	}
	return i, nil
}
