package operator

import (
	"fmt"

	"github.com/edp1096/toy-helmholtz/pkg/grid"
)

// Stencil selects the finite-difference approximation of the Laplacian.
// The set is closed: each kind carries fixed per-axis offsets and
// weights, so every (stencil, boundary) combination stays testable.
type Stencil int

const (
	// StencilStar is the second-order central stencil, 2*dims+1 points
	// (3-point in 1D, 5-point in 2D, 7-point in 3D).
	StencilStar Stencil = iota
	// StencilWideStar is the fourth-order central stencil, 4*dims+1
	// points (5-point in 1D, 9-point in 2D, 13-point in 3D).
	StencilWideStar
)

var starWeights = []float64{1, -2, 1}
var wideStarWeights = []float64{-1.0 / 12.0, 4.0 / 3.0, -5.0 / 2.0, 4.0 / 3.0, -1.0 / 12.0}

// HalfWidth is the largest neighbor offset along one axis.
func (s Stencil) HalfWidth() int {
	if s == StencilWideStar {
		return 2
	}
	return 1
}

// AxisWeights returns the 1D second-derivative weights, to be scaled by
// 1/h² per axis. Offsets run from -HalfWidth to +HalfWidth; the row sums
// to zero.
func (s Stencil) AxisWeights() []float64 {
	if s == StencilWideStar {
		return wideStarWeights
	}
	return starWeights
}

// Points is the number of nodes the stencil touches in the given
// dimension count.
func (s Stencil) Points(dims int) int {
	return 2*dims*s.HalfWidth() + 1
}

func (s Stencil) String() string {
	switch s {
	case StencilStar:
		return "star"
	case StencilWideStar:
		return "wide-star"
	}
	return fmt.Sprintf("stencil(%d)", int(s))
}

// ParseStencil maps a config tag to a stencil kind. Point-count aliases
// ("3-point".."13-point") are accepted alongside the canonical names.
func ParseStencil(tag string) (Stencil, error) {
	switch tag {
	case "star", "", "3-point", "5-point", "7-point":
		return StencilStar, nil
	case "wide-star", "9-point", "13-point":
		return StencilWideStar, nil
	}
	return 0, fmt.Errorf("%w: unknown stencil %q", grid.ErrInvalidConfig, tag)
}
