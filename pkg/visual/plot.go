// Package visual renders GMRES convergence histories and solution
// fields to PNG files.
package visual

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/toy-helmholtz/pkg/grid"
)

// ErrUnsupportedDim is returned for field plots of 3D grids.
var ErrUnsupportedDim = errors.New("visual: field plots support 1D and 2D grids only")

// residualFloor keeps exactly-converged entries visible on a log axis.
const residualFloor = 1e-16

// SaveResiduals writes a semilog plot of the per-iteration relative
// residual norms.
func SaveResiduals(residuals []float64, path string) error {
	if len(residuals) == 0 {
		return fmt.Errorf("visual: no residual history to plot")
	}

	pts := make(plotter.XYs, len(residuals))
	for i, r := range residuals {
		if r < residualFloor {
			r = residualFloor
		}
		pts[i].X = float64(i + 1)
		pts[i].Y = r
	}

	p := plot.New()
	p.Title.Text = "GMRES convergence"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Relative residual"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("visual: building residual line: %w", err)
	}
	p.Add(line, plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// SaveField writes the real part of the solution: a line plot in 1D, a
// heatmap in 2D.
func SaveField(field []complex128, spec grid.Spec, path string) error {
	switch spec.Dims {
	case 1:
		return saveField1D(field, spec, path)
	case 2:
		return saveField2D(field, spec, path)
	}
	return ErrUnsupportedDim
}

func saveField1D(field []complex128, spec grid.Spec, path string) error {
	axes := spec.Axes()
	pts := make(plotter.XYs, len(field))
	for i, v := range field {
		pts[i].X = axes[0][i]
		pts[i].Y = real(v)
	}

	p := plot.New()
	p.Title.Text = "Solution field"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "Re(u)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("visual: building field line: %w", err)
	}
	p.Add(line, plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func saveField2D(field []complex128, spec grid.Spec, path string) error {
	hm := plotter.NewHeatMap(fieldGrid{field: field, spec: spec}, palette.Heat(32, 1))

	p := plot.New()
	p.Title.Text = "Solution field, Re(u)"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(hm)

	return p.Save(6*vg.Inch, 5*vg.Inch, path)
}

// fieldGrid adapts a flattened row-major field to plotter.GridXYZ.
type fieldGrid struct {
	field []complex128
	spec  grid.Spec
}

func (g fieldGrid) Dims() (int, int) { return g.spec.Shape[0], g.spec.Shape[1] }

func (g fieldGrid) Z(c, r int) float64 {
	return real(g.field[g.spec.Flatten([3]int{c, r, 0})])
}

func (g fieldGrid) X(c int) float64 { return float64(c) * g.spec.Spacing(0) }

func (g fieldGrid) Y(r int) float64 { return float64(r) * g.spec.Spacing(1) }
