// Package operator assembles the finite-difference Helmholtz operator
// over a Cartesian grid as a sparse complex matrix.
//
// Rows encode A = Δ_h − ω²I with row-major node ordering: at second
// order the diagonal accumulates −2/hᵢ² per active axis minus ω², and
// symmetric neighbors receive +1/hᵢ². The Helmholtz system
// −Δu − ω²u = f is then A·u = −f. Out-of-range neighbors follow the
// grid's boundary kind: Dirichlet drops them, Neumann mirrors them back
// across the face (folding the weight where the mirror lands), periodic
// wraps them modulo the axis extent.
package operator

import (
	"fmt"
	"sort"

	"github.com/edp1096/toy-helmholtz/pkg/grid"
)

// Operator is a square sparse matrix over complex128 in CSR form.
// It is immutable once assembled.
type Operator struct {
	size    int
	rowPtr  []int
	cols    []int
	vals    []complex128
	spec    grid.Spec
	stencil Stencil
	omega   complex128
}

// Assemble builds the discrete operator Δ_h − ω²I for the given grid
// and stencil. Complex omega models damped or absorbing configurations.
// Returns grid.ErrInvalidConfig if the spec is unusable or the grid is
// too small for the stencil along any active axis.
func Assemble(spec grid.Spec, stencil Stencil, omega complex128) (*Operator, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	hw := stencil.HalfWidth()
	for i := 0; i < spec.Dims; i++ {
		if need := 2*hw + 1; spec.Shape[i] < need {
			return nil, fmt.Errorf("%w: %s stencil needs %d points along axis %d, grid has %d",
				grid.ErrInvalidConfig, stencil, need, i, spec.Shape[i])
		}
	}

	n := spec.Size()
	weights := stencil.AxisWeights()
	op := &Operator{
		size:    n,
		rowPtr:  make([]int, n+1),
		spec:    spec,
		stencil: stencil,
		omega:   omega,
	}

	row := make(map[int]complex128, stencil.Points(spec.Dims))
	rowCols := make([]int, 0, stencil.Points(spec.Dims))
	for idx := 0; idx < n; idx++ {
		clear(row)
		midx := spec.Unflatten(idx)
		row[idx] = -omega * omega

		for axis := 0; axis < spec.Dims; axis++ {
			h := spec.Spacing(axis)
			invH2 := complex(1.0/(h*h), 0)
			extent := spec.Shape[axis]
			row[idx] += complex(weights[hw], 0) * invH2

			for off := -hw; off <= hw; off++ {
				if off == 0 {
					continue
				}
				coef := complex(weights[hw+off], 0) * invH2
				j := midx[axis] + off
				switch spec.Boundary {
				case grid.Dirichlet:
					if j < 0 || j >= extent {
						continue
					}
				case grid.Neumann:
					if j < 0 {
						j = -j - 1
					} else if j >= extent {
						j = 2*extent - 1 - j
					}
				case grid.Periodic:
					j = ((j % extent) + extent) % extent
				}
				nidx := midx
				nidx[axis] = j
				row[spec.Flatten(nidx)] += coef
			}
		}

		rowCols = rowCols[:0]
		for col := range row {
			rowCols = append(rowCols, col)
		}
		sort.Ints(rowCols)
		for _, col := range rowCols {
			op.cols = append(op.cols, col)
			op.vals = append(op.vals, row[col])
		}
		op.rowPtr[idx+1] = len(op.cols)
	}

	return op, nil
}

// Size is the number of rows (and columns).
func (op *Operator) Size() int { return op.size }

// NNZ is the number of stored entries.
func (op *Operator) NNZ() int { return len(op.vals) }

// Grid returns the spec the operator was assembled for.
func (op *Operator) Grid() grid.Spec { return op.spec }

// Stencil returns the stencil kind used for assembly.
func (op *Operator) Stencil() Stencil { return op.stencil }

// Omega returns the angular frequency used for assembly.
func (op *Operator) Omega() complex128 { return op.omega }

// At returns the entry at (i, j), zero if not stored.
func (op *Operator) At(i, j int) complex128 {
	lo, hi := op.rowPtr[i], op.rowPtr[i+1]
	k := lo + sort.SearchInts(op.cols[lo:hi], j)
	if k < hi && op.cols[k] == j {
		return op.vals[k]
	}
	return 0
}

// Row returns the stored columns and values of row i. The returned
// slices alias the operator's storage and must not be modified.
func (op *Operator) Row(i int) ([]int, []complex128) {
	lo, hi := op.rowPtr[i], op.rowPtr[i+1]
	return op.cols[lo:hi], op.vals[lo:hi]
}

// MatVec computes dst = A·x. dst and x must both have length Size and
// must not alias.
func (op *Operator) MatVec(dst, x []complex128) {
	for i := 0; i < op.size; i++ {
		var sum complex128
		for k := op.rowPtr[i]; k < op.rowPtr[i+1]; k++ {
			sum += op.vals[k] * x[op.cols[k]]
		}
		dst[i] = sum
	}
}
