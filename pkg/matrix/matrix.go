// Package matrix bridges assembled Helmholtz operators to the sparse
// LU solver in github.com/edp1096/sparse. GMRES is the primary solver;
// the direct path here serves small systems and cross-checking.
package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"

	"github.com/edp1096/toy-helmholtz/pkg/operator"
)

// SystemMatrix wraps a complex sparse matrix plus its right-hand-side
// buffers. Indices on the public surface are 0-based; the underlying
// library is 1-based.
type SystemMatrix struct {
	Size    int
	matrix  *sparse.Matrix
	rhs     []float64
	rhsImag []float64
	config  *sparse.Configuration
}

// New creates an empty complex system of the given size.
func New(size int) (*SystemMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 true,
		SeparatedComplexVectors: true,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	return &SystemMatrix{
		Size:    size,
		matrix:  mat,
		rhs:     make([]float64, size+1), // 1-based indexing
		rhsImag: make([]float64, size+1),
		config:  config,
	}, nil
}

// FromOperator loads every stored entry of an assembled operator.
func FromOperator(op *operator.Operator) (*SystemMatrix, error) {
	m, err := New(op.Size())
	if err != nil {
		return nil, err
	}
	for i := 0; i < op.Size(); i++ {
		cols, vals := op.Row(i)
		for k, j := range cols {
			m.AddElement(i, j, vals[k])
		}
	}
	return m, nil
}

// AddElement accumulates value at (i, j).
func (m *SystemMatrix) AddElement(i, j int, value complex128) {
	if i < 0 || j < 0 || i >= m.Size || j >= m.Size {
		return
	}
	element := m.matrix.GetElement(int64(i+1), int64(j+1))
	element.Real += real(value)
	element.Imag += imag(value)
}

// Solve factors the matrix and solves for the given right-hand side.
// Factorization is repeated per call; this path targets small systems.
func (m *SystemMatrix) Solve(b []complex128) ([]complex128, error) {
	if len(b) != m.Size {
		return nil, fmt.Errorf("matrix size %d, rhs length %d", m.Size, len(b))
	}
	for i, v := range b {
		m.rhs[i+1] = real(v)
		m.rhsImag[i+1] = imag(v)
	}

	err := m.matrix.Factor()
	if err != nil {
		return nil, fmt.Errorf("matrix factorization failed: %v", err)
	}

	solution, solutionImag, err := m.matrix.SolveComplex(m.rhs, m.rhsImag)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %v", err)
	}

	x := make([]complex128, m.Size)
	for i := range x {
		x[i] = complex(solution[i+1], solutionImag[i+1])
	}
	return x, nil
}

// Clear zeroes the matrix and both right-hand-side buffers.
func (m *SystemMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
		m.rhsImag[i] = 0
	}
}

// Destroy releases the underlying sparse storage.
func (m *SystemMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
