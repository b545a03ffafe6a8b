// Package grid describes Cartesian computational domains for
// finite-difference discretisation. A Spec is an immutable value:
// construct it once, validate it, and pass it by value to assembly,
// load building, and solving.
package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a domain cannot be discretised
// (dimension count outside 1..3, too few points along an active axis,
// non-positive extent).
var ErrInvalidConfig = errors.New("grid: invalid configuration")

// Boundary selects the boundary condition applied on every face of the
// domain.
type Boundary int

const (
	Dirichlet Boundary = iota // out-of-range neighbors dropped (zero boundary value)
	Neumann                   // out-of-range neighbors mirrored back onto the grid
	Periodic                  // out-of-range neighbors wrapped modulo the axis extent
)

func (b Boundary) String() string {
	switch b {
	case Dirichlet:
		return "dirichlet"
	case Neumann:
		return "neumann"
	case Periodic:
		return "periodic"
	}
	return fmt.Sprintf("boundary(%d)", int(b))
}

// ParseBoundary maps a config tag to a Boundary kind.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "dirichlet", "":
		return Dirichlet, nil
	case "neumann":
		return Neumann, nil
	case "periodic":
		return Periodic, nil
	}
	return 0, fmt.Errorf("%w: unknown boundary %q", ErrInvalidConfig, s)
}

// Spec describes the computational domain. Entries of Lengths and Shape
// at index >= Dims are ignored.
type Spec struct {
	Dims     int
	Lengths  [3]float64
	Shape    [3]int
	Boundary Boundary
}

// Validate checks that the spec describes a usable domain. All other
// methods assume a validated spec.
func (s Spec) Validate() error {
	if s.Dims < 1 || s.Dims > 3 {
		return fmt.Errorf("%w: dims must be 1, 2, or 3, got %d", ErrInvalidConfig, s.Dims)
	}
	for i := 0; i < s.Dims; i++ {
		if s.Shape[i] < 2 {
			return fmt.Errorf("%w: axis %d needs at least 2 points, got %d", ErrInvalidConfig, i, s.Shape[i])
		}
		if s.Lengths[i] <= 0 {
			return fmt.Errorf("%w: axis %d length must be positive, got %g", ErrInvalidConfig, i, s.Lengths[i])
		}
	}
	return nil
}

// Size is the number of grid nodes, multiplying only over active axes.
func (s Spec) Size() int {
	n := 1
	for i := 0; i < s.Dims; i++ {
		n *= s.Shape[i]
	}
	return n
}

// Spacing returns the node spacing h = L/(n-1) along the given axis.
func (s Spec) Spacing(axis int) float64 {
	return s.Lengths[axis] / float64(s.Shape[axis]-1)
}

// Flatten maps a multi-index to a row-major linear index. The last
// active axis varies fastest.
func (s Spec) Flatten(idx [3]int) int {
	linear := 0
	for i := 0; i < s.Dims; i++ {
		linear = linear*s.Shape[i] + idx[i]
	}
	return linear
}

// Unflatten is the inverse of Flatten. Entries at index >= Dims are zero.
func (s Spec) Unflatten(linear int) [3]int {
	var idx [3]int
	for i := s.Dims - 1; i >= 0; i-- {
		idx[i] = linear % s.Shape[i]
		linear /= s.Shape[i]
	}
	return idx
}

// Axes returns the node coordinates along each active axis, from 0 to
// the axis length inclusive.
func (s Spec) Axes() [][]float64 {
	axes := make([][]float64, s.Dims)
	for i := 0; i < s.Dims; i++ {
		h := s.Spacing(i)
		ax := make([]float64, s.Shape[i])
		for j := range ax {
			ax[j] = float64(j) * h
		}
		ax[len(ax)-1] = s.Lengths[i] // exact endpoint
		axes[i] = ax
	}
	return axes
}

func (s Spec) String() string {
	switch s.Dims {
	case 1:
		return fmt.Sprintf("grid 1D %d %s", s.Shape[0], s.Boundary)
	case 2:
		return fmt.Sprintf("grid 2D %dx%d %s", s.Shape[0], s.Shape[1], s.Boundary)
	default:
		return fmt.Sprintf("grid 3D %dx%dx%d %s", s.Shape[0], s.Shape[1], s.Shape[2], s.Boundary)
	}
}
