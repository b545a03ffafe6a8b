package experiment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-helmholtz/pkg/experiment"
	"github.com/edp1096/toy-helmholtz/pkg/grid"
	"github.com/edp1096/toy-helmholtz/pkg/load"
	"github.com/edp1096/toy-helmholtz/pkg/operator"
	"github.com/edp1096/toy-helmholtz/pkg/solver"
)

func TestOmegaRangeLinear(t *testing.T) {
	values, err := experiment.OmegaRange{Start: 1, Stop: 5, Points: 5, Scale: "lin"}.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, values)
}

func TestOmegaRangeDecade(t *testing.T) {
	values, err := experiment.OmegaRange{Start: 1, Stop: 100, Points: 3, Scale: "dec"}.Values()
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.InDelta(t, 1, values[0], 1e-9)
	assert.InDelta(t, 10, values[1], 1e-9)
	assert.InDelta(t, 100, values[2], 1e-9)

	_, err = experiment.OmegaRange{Start: 0, Stop: 100, Points: 3, Scale: "dec"}.Values()
	require.ErrorIs(t, err, grid.ErrInvalidConfig)
}

func TestOmegaRangeSinglePoint(t *testing.T) {
	values, err := experiment.OmegaRange{Start: 7, Stop: 99, Points: 1}.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, values)

	_, err = experiment.OmegaRange{Points: 0}.Values()
	require.ErrorIs(t, err, grid.ErrInvalidConfig)
}

func smallSweep() *experiment.Sweep {
	return &experiment.Sweep{
		Grids: []grid.Spec{
			{Dims: 1, Lengths: [3]float64{1}, Shape: [3]int{9}, Boundary: grid.Dirichlet},
			{Dims: 2, Lengths: [3]float64{1, 1}, Shape: [3]int{5, 5}, Boundary: grid.Dirichlet},
		},
		Omegas:   []complex128{0, complex(2, 0)},
		Stencils: []operator.Stencil{operator.StencilStar},
		Loads: []load.Source{
			load.PointSource{Location: [3]float64{0.5, 0.5}, Amplitude: 1},
			load.RandomSource{Seed: 42, Amplitude: 1},
		},
		Method:  experiment.MethodGMRES,
		Options: solver.Options{Tol: 1e-9, MaxIter: -1},
	}
}

func TestCasesCrossProduct(t *testing.T) {
	cases := smallSweep().Cases()
	assert.Len(t, cases, 2*2*1*2)
	// Grids vary outermost, loads innermost.
	assert.Equal(t, 1, cases[0].Grid.Dims)
	assert.Equal(t, "point", cases[0].Load.Name())
	assert.Equal(t, "random", cases[1].Load.Name())
	assert.Equal(t, 2, cases[len(cases)-1].Grid.Dims)
}

func TestRunRecordsEveryCase(t *testing.T) {
	s := smallSweep()
	hookCalls := 0
	s.Hook = func(c experiment.Case, rec *experiment.Record) {
		hookCalls++
		require.NotNil(t, rec.Result)
	}

	records, err := s.Run(nil)
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, 8, hookCalls)

	for i, rec := range records {
		require.NotNil(t, rec.Result, "case %d", i)
		assert.NoError(t, rec.Err, "case %d", i)
		assert.True(t, rec.Result.Converged, "case %d", i)
		assert.Equal(t, rec.Case.Grid.Size(), len(rec.Result.Solution), "case %d", i)
		assert.NotEmpty(t, rec.Result.Residuals, "case %d", i)
	}
}

func TestRunRecordsSolverConditions(t *testing.T) {
	s := smallSweep()
	s.Options = solver.Options{Tol: 1e-14, MaxIter: 2}

	records, err := s.Run(nil)
	require.NoError(t, err)
	for _, rec := range records {
		require.ErrorIs(t, rec.Err, solver.ErrDidNotConverge)
		require.NotNil(t, rec.Result)
		assert.Len(t, rec.Result.Residuals, 2)
	}
}

func TestRunRejectsEmptySweep(t *testing.T) {
	s := smallSweep()
	s.Loads = nil
	_, err := s.Run(nil)
	require.ErrorIs(t, err, grid.ErrInvalidConfig)
}

func TestRunRejectsUnknownMethod(t *testing.T) {
	s := smallSweep()
	s.Method = "cholesky"
	_, err := s.Run(nil)
	require.ErrorIs(t, err, grid.ErrInvalidConfig)
}

func TestRunPropagatesAssemblyError(t *testing.T) {
	s := smallSweep()
	s.Stencils = []operator.Stencil{operator.StencilWideStar}
	s.Grids = []grid.Spec{{Dims: 1, Lengths: [3]float64{1}, Shape: [3]int{3}, Boundary: grid.Dirichlet}}
	_, err := s.Run(nil)
	require.ErrorIs(t, err, grid.ErrInvalidConfig)
}

func TestRunDirectMethod(t *testing.T) {
	s := smallSweep()
	s.Method = experiment.MethodDirect
	s.Grids = s.Grids[:1]

	records, err := s.Run(nil)
	require.NoError(t, err)
	for i, rec := range records {
		require.NoError(t, rec.Err, "case %d", i)
		require.True(t, rec.Result.Converged)
		require.Len(t, rec.Result.Residuals, 1)
		assert.Less(t, rec.Result.Residuals[0], 1e-8, "case %d", i)
	}
}

// Direct LU and GMRES agree on the same assembled system.
func TestDirectMatchesGMRES(t *testing.T) {
	s := smallSweep()
	s.Grids = []grid.Spec{{Dims: 2, Lengths: [3]float64{1, 1}, Shape: [3]int{6, 6}, Boundary: grid.Dirichlet}}
	s.Omegas = []complex128{complex(3, 0)}
	s.Loads = []load.Source{load.RandomSource{Seed: 11, Amplitude: 1}}

	gmresRecords, err := s.Run(nil)
	require.NoError(t, err)
	s.Method = experiment.MethodDirect
	directRecords, err := s.Run(nil)
	require.NoError(t, err)

	gx := gmresRecords[0].Result.Solution
	dx := directRecords[0].Result.Solution
	require.Len(t, dx, len(gx))
	for i := range gx {
		assert.InDelta(t, real(gx[i]), real(dx[i]), 1e-6, "entry %d", i)
		assert.InDelta(t, imag(gx[i]), imag(dx[i]), 1e-6, "entry %d", i)
	}
}
