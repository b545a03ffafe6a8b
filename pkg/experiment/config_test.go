package experiment_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-helmholtz/pkg/experiment"
	"github.com/edp1096/toy-helmholtz/pkg/grid"
	"github.com/edp1096/toy-helmholtz/pkg/operator"
)

const sweepYAML = `
grids:
  - dims: 1
    shape: [9]
    lengths: [1.0]
    boundary: dirichlet
  - shape: [5, 5]
    lengths: [1.0, 2.0]
    boundary: periodic
omegas:
  start: 1.0
  stop: 3.0
  points: 3
  scale: lin
stencils: [star, wide-star]
loads:
  - kind: point
    location: [0.5]
    amplitude: 1.0
  - kind: random
    seed: 42
solver:
  method: gmres
  restart: 10
  tol: 1e-9
  max_iter: 500
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	s, err := experiment.LoadConfig(writeConfig(t, sweepYAML))
	require.NoError(t, err)

	require.Len(t, s.Grids, 2)
	assert.Equal(t, 1, s.Grids[0].Dims)
	assert.Equal(t, grid.Dirichlet, s.Grids[0].Boundary)
	// Dims defaults to the shape length.
	assert.Equal(t, 2, s.Grids[1].Dims)
	assert.Equal(t, grid.Periodic, s.Grids[1].Boundary)
	assert.Equal(t, 2.0, s.Grids[1].Lengths[1])

	require.Len(t, s.Omegas, 3)
	assert.Equal(t, complex(2.0, 0), s.Omegas[1])

	assert.Equal(t, []operator.Stencil{operator.StencilStar, operator.StencilWideStar}, s.Stencils)

	require.Len(t, s.Loads, 2)
	assert.Equal(t, "point", s.Loads[0].Name())
	assert.Equal(t, "random", s.Loads[1].Name())

	assert.Equal(t, experiment.MethodGMRES, s.Method)
	assert.Equal(t, 10, s.Options.Restart)
	assert.Equal(t, 1e-9, s.Options.Tol)
	assert.Equal(t, 500, s.Options.MaxIter)
}

func TestLoadConfigDefaults(t *testing.T) {
	s, err := experiment.LoadConfig(writeConfig(t, `
grids:
  - shape: [5]
loads:
  - kind: random
`))
	require.NoError(t, err)

	assert.Equal(t, 1.0, s.Grids[0].Lengths[0]) // unit domain by default
	assert.Equal(t, []complex128{0}, s.Omegas)
	assert.Equal(t, []operator.Stencil{operator.StencilStar}, s.Stencils)
	assert.Equal(t, experiment.MethodGMRES, s.Method)
	assert.Greater(t, s.Options.Tol, 0.0)
	// Unset max_iter defers to the solver's system-size default.
	assert.Equal(t, -1, s.Options.MaxIter)
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"NoGrids", "loads: [{kind: random}]"},
		{"NoLoads", "grids: [{shape: [5]}]"},
		{"BadBoundary", "grids: [{shape: [5], boundary: absorbing}]\nloads: [{kind: random}]"},
		{"BadStencil", "grids: [{shape: [5]}]\nstencils: [hex]\nloads: [{kind: random}]"},
		{"BadLoadKind", "grids: [{shape: [5]}]\nloads: [{kind: warp}]"},
		{"BadMethod", "grids: [{shape: [5]}]\nloads: [{kind: random}]\nsolver: {method: jacobi}"},
		{"TinyGrid", "grids: [{shape: [1]}]\nloads: [{kind: random}]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := experiment.LoadConfig(writeConfig(t, tc.body))
			require.ErrorIs(t, err, grid.ErrInvalidConfig)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := experiment.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestConfigSweepRuns(t *testing.T) {
	s, err := experiment.LoadConfig(writeConfig(t, sweepYAML))
	require.NoError(t, err)

	records, err := s.Run(nil)
	require.NoError(t, err)
	// 2 grids x 3 omegas x 2 stencils x 2 loads.
	assert.Len(t, records, 24)
}
