package surface

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Cuboid returns the closed, outward-oriented quad mesh of an axis-aligned
// box. Point i has corner bits x=i&1, y=i&2, z=i&4.
func Cuboid(min, max r3.Vec) *Mesh {
	m := &Mesh{Name: "cuboid", Points: make([]r3.Vec, 8)}
	for i := range m.Points {
		p := min
		if i&1 != 0 {
			p.X = max.X
		}
		if i&2 != 0 {
			p.Y = max.Y
		}
		if i&4 != 0 {
			p.Z = max.Z
		}
		m.Points[i] = p
	}
	m.Polygons = [][]int{
		{0, 4, 6, 2}, // -x
		{1, 3, 7, 5}, // +x
		{0, 1, 5, 4}, // -y
		{2, 6, 7, 3}, // +y
		{0, 2, 3, 1}, // -z
		{4, 5, 7, 6}, // +z
	}
	return m
}

// UVSphere returns a closed, outward-oriented latitude/longitude sphere.
// Bands are quads and the caps are triangle fans. With an even stack count
// and a slice count divisible by four the extreme points lie exactly on the
// sphere's bounding box.
func UVSphere(center r3.Vec, radius float64, stacks, slices int) (*Mesh, error) {
	if radius <= 0 || stacks < 2 || slices < 3 {
		return nil, fmt.Errorf("uv sphere: need radius > 0, stacks >= 2, slices >= 3 (got %g, %d, %d)", radius, stacks, slices)
	}
	m := &Mesh{Name: "sphere"}
	m.Points = append(m.Points, r3.Add(center, r3.Vec{Z: radius}))
	for i := 1; i < stacks; i++ {
		z, rxy := circle(i, 2*stacks)
		for k := 0; k < slices; k++ {
			cp, sp := circle(k, slices)
			m.Points = append(m.Points, r3.Add(center, r3.Vec{
				X: radius * rxy * cp,
				Y: radius * rxy * sp,
				Z: radius * z,
			}))
		}
	}
	south := len(m.Points)
	m.Points = append(m.Points, r3.Add(center, r3.Vec{Z: -radius}))

	ring := func(i, k int) int { return 1 + (i-1)*slices + k%slices }
	for k := 0; k < slices; k++ {
		m.Polygons = append(m.Polygons, []int{0, ring(1, k), ring(1, k+1)})
	}
	for i := 1; i+1 < stacks; i++ {
		for k := 0; k < slices; k++ {
			m.Polygons = append(m.Polygons, []int{ring(i, k), ring(i+1, k), ring(i+1, k+1), ring(i, k+1)})
		}
	}
	for k := 0; k < slices; k++ {
		m.Polygons = append(m.Polygons, []int{south, ring(stacks-1, k+1), ring(stacks-1, k)})
	}
	return m, nil
}

// circle returns cos and sin of 2*pi*k/n, exact at quarter turns.
func circle(k, n int) (c, s float64) {
	k %= n
	if (4*k)%n == 0 {
		switch 4 * k / n {
		case 0:
			return 1, 0
		case 1:
			return 0, 1
		case 2:
			return -1, 0
		case 3:
			return 0, -1
		}
	}
	a := 2 * math.Pi * float64(k) / float64(n)
	return math.Cos(a), math.Sin(a)
}
