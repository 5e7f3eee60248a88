package surface

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// DecodeVTK reads a legacy ASCII VTK file holding a POLYDATA dataset.
// POINTS, POLYGONS and TRIANGLE_STRIPS are used; VERTICES, LINES and any
// attribute data are skipped.
func DecodeVTK(r io.Reader) (*Mesh, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)

	// header: version line, title, format, dataset
	var head []string
	for len(head) < 4 && sc.Scan() {
		l := strings.TrimSpace(sc.Text())
		if l == "" && len(head) != 1 {
			continue
		}
		head = append(head, l)
	}
	if len(head) < 4 || !strings.HasPrefix(head[0], "# vtk DataFile") {
		return nil, fmt.Errorf("%w: not a legacy vtk file", ErrFormat)
	}
	if !strings.EqualFold(head[2], "ASCII") {
		return nil, fmt.Errorf("%w: vtk format %q not supported", ErrFormat, head[2])
	}
	if f := strings.Fields(head[3]); len(f) != 2 || !strings.EqualFold(f[1], "POLYDATA") {
		return nil, fmt.Errorf("%w: vtk dataset %q is not POLYDATA", ErrFormat, head[3])
	}

	tok := &tokens{sc: sc}
	m := &Mesh{Name: head[1]}
	for {
		kw, ok := tok.next()
		if !ok {
			break
		}
		switch strings.ToUpper(kw) {
		case "POINTS":
			n, err := tok.nextCount()
			if err != nil {
				return nil, err
			}
			tok.next() // data type
			m.Points = make([]r3.Vec, 0, min(n, maxPrealloc))
			for i := 0; i < n; i++ {
				var c [3]float64
				for k := range c {
					if c[k], err = tok.nextFloat(); err != nil {
						return nil, err
					}
				}
				m.Points = append(m.Points, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
			}
		case "POLYGONS", "TRIANGLE_STRIPS", "VERTICES", "LINES":
			cells, err := tok.cells()
			if err != nil {
				return nil, err
			}
			switch strings.ToUpper(kw) {
			case "POLYGONS":
				m.Polygons = append(m.Polygons, cells...)
			case "TRIANGLE_STRIPS":
				for _, s := range cells {
					m.Polygons = append(m.Polygons, stripTriangles(s)...)
				}
			}
		case "POINT_DATA", "CELL_DATA":
			// attributes follow; geometry is complete
			return m, checkIndices(m)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, checkIndices(m)
}

// stripTriangles alternates winding so every triangle keeps the strip's
// orientation.
func stripTriangles(s []int) [][]int {
	var out [][]int
	for i := 0; i+2 < len(s); i++ {
		if i%2 == 0 {
			out = append(out, []int{s[i], s[i+1], s[i+2]})
		} else {
			out = append(out, []int{s[i+1], s[i], s[i+2]})
		}
	}
	return out
}

func checkIndices(m *Mesh) error {
	for i, p := range m.Polygons {
		for _, idx := range p {
			if idx < 0 || idx >= len(m.Points) {
				return fmt.Errorf("%w: vtk polygon %d references point %d of %d", ErrFormat, i, idx, len(m.Points))
			}
		}
	}
	return nil
}

// maxPrealloc caps allocations sized from declared counts; longer lists
// grow as their values are read.
const maxPrealloc = 1 << 16

type tokens struct {
	sc   *bufio.Scanner
	line []string
}

func (t *tokens) next() (string, bool) {
	for len(t.line) == 0 {
		if !t.sc.Scan() {
			return "", false
		}
		t.line = strings.Fields(t.sc.Text())
	}
	s := t.line[0]
	t.line = t.line[1:]
	return s, true
}

func (t *tokens) nextInt() (int, error) {
	s, ok := t.next()
	if !ok {
		return 0, fmt.Errorf("%w: vtk truncated", ErrFormat)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: vtk: %v", ErrFormat, err)
	}
	return n, nil
}

func (t *tokens) nextFloat() (float64, error) {
	s, ok := t.next()
	if !ok {
		return 0, fmt.Errorf("%w: vtk truncated", ErrFormat)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: vtk: %v", ErrFormat, err)
	}
	return f, nil
}

// nextCount reads a non-negative element count.
func (t *tokens) nextCount() (int, error) {
	n, err := t.nextInt()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: vtk: negative count %d", ErrFormat, n)
	}
	return n, nil
}

// cells reads "n size" followed by n count-prefixed index lists.
func (t *tokens) cells() ([][]int, error) {
	n, err := t.nextCount()
	if err != nil {
		return nil, err
	}
	if _, err := t.nextCount(); err != nil {
		return nil, err
	}
	out := make([][]int, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		k, err := t.nextCount()
		if err != nil {
			return nil, err
		}
		c := make([]int, 0, min(k, maxPrealloc))
		for j := 0; j < k; j++ {
			idx, err := t.nextInt()
			if err != nil {
				return nil, err
			}
			c = append(c, idx)
		}
		out = append(out, c)
	}
	return out, nil
}
