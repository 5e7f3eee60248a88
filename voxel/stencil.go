package voxel

import "sort"

// Span is an inclusive run [Lo, Hi] of x indices inside the surface.
type Span struct {
	Lo, Hi int
}

// Stencil holds, for every (j,k) row of a grid, the sorted disjoint spans of
// voxels inside the surface.
type Stencil struct {
	Grid GridSpec
	rows [][]Span

	// OddRows counts rows whose crossing count was odd, which only happens
	// for surfaces that are not closed. The unmatched crossing is dropped.
	OddRows int
	// InwardSpans counts inside intervals bounded by an exit-facing crossing
	// on the left and an entry-facing one on the right: a sign of inward
	// facing polygons. Classification uses parity only and is unaffected.
	InwardSpans int
}

func newStencil(g GridSpec) *Stencil {
	return &Stencil{Grid: g, rows: make([][]Span, g.Dims[1]*g.Dims[2])}
}

// Spans returns the inside spans of row (j,k). The slice must not be
// modified.
func (s *Stencil) Spans(j, k int) []Span {
	return s.rows[j+s.Grid.Dims[1]*k]
}

// Contains reports whether voxel (i,j,k) is inside.
func (s *Stencil) Contains(i, j, k int) bool {
	if !s.Grid.InGrid(i, j, k) {
		return false
	}
	row := s.Spans(j, k)
	n := sort.Search(len(row), func(x int) bool { return row[x].Hi >= i })
	return n < len(row) && row[n].Lo <= i
}

// Len returns the number of inside voxels.
func (s *Stencil) Len() int {
	n := 0
	for _, row := range s.rows {
		for _, sp := range row {
			n += sp.Hi - sp.Lo + 1
		}
	}
	return n
}

// Equal reports whether s and o describe the same grid and spans.
func (s *Stencil) Equal(o *Stencil) bool {
	if s.Grid != o.Grid || len(s.rows) != len(o.rows) {
		return false
	}
	for r := range s.rows {
		a, b := s.rows[r], o.rows[r]
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// addSpan appends [lo,hi] to row r, merging with the previous span when they
// touch. Spans arrive in increasing order.
func (s *Stencil) addSpan(r, lo, hi int) {
	row := s.rows[r]
	if n := len(row); n > 0 && row[n-1].Hi+1 >= lo {
		if hi > row[n-1].Hi {
			row[n-1].Hi = hi
		}
		return
	}
	s.rows[r] = append(row, Span{Lo: lo, Hi: hi})
}
