package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-helmholtz/internal/consts"
	"github.com/edp1096/toy-helmholtz/pkg/grid"
	"github.com/edp1096/toy-helmholtz/pkg/load"
	"github.com/edp1096/toy-helmholtz/pkg/operator"
	"github.com/edp1096/toy-helmholtz/pkg/solver"
)

// Config is the YAML form of a sweep.
type Config struct {
	Grids    []GridConfig  `yaml:"grids"`
	Omegas   OmegaConfig   `yaml:"omegas"`
	Stencils []string      `yaml:"stencils"`
	Loads    []load.Params `yaml:"loads"`
	Solver   SolverConfig  `yaml:"solver"`
}

// GridConfig holds one domain description.
type GridConfig struct {
	Dims     int       `yaml:"dims"`
	Shape    []int     `yaml:"shape"`
	Lengths  []float64 `yaml:"lengths"`
	Boundary string    `yaml:"boundary"` // dirichlet, neumann, periodic (default: dirichlet)
}

// OmegaConfig holds either explicit frequency values or a range.
// Values wins when both are present.
type OmegaConfig struct {
	Values []float64 `yaml:"values"`
	Start  float64   `yaml:"start"`
	Stop   float64   `yaml:"stop"`
	Points int       `yaml:"points"`
	Scale  string    `yaml:"scale"` // lin, dec (default: lin)
}

// SolverConfig holds solver selection and GMRES knobs.
type SolverConfig struct {
	Method  string  `yaml:"method"` // gmres, direct (default: gmres)
	Restart int     `yaml:"restart"`
	Tol     float64 `yaml:"tol"`
	MaxIter int     `yaml:"max_iter"` // 0 = system size
}

// LoadConfig reads and validates a sweep config file.
func LoadConfig(path string) (*Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg.Sweep()
}

// Sweep converts the config into a runnable sweep, validating every
// part.
func (c *Config) Sweep() (*Sweep, error) {
	if len(c.Grids) == 0 {
		return nil, fmt.Errorf("%w: config needs at least one grid", grid.ErrInvalidConfig)
	}
	if len(c.Loads) == 0 {
		return nil, fmt.Errorf("%w: config needs at least one load", grid.ErrInvalidConfig)
	}

	s := &Sweep{}
	for i, gc := range c.Grids {
		spec, err := gc.Spec()
		if err != nil {
			return nil, fmt.Errorf("grids[%d]: %w", i, err)
		}
		s.Grids = append(s.Grids, spec)
	}

	omegas, err := c.Omegas.values()
	if err != nil {
		return nil, err
	}
	for _, w := range omegas {
		s.Omegas = append(s.Omegas, complex(w, 0))
	}

	if len(c.Stencils) == 0 {
		s.Stencils = []operator.Stencil{operator.StencilStar}
	}
	for i, tag := range c.Stencils {
		st, err := operator.ParseStencil(tag)
		if err != nil {
			return nil, fmt.Errorf("stencils[%d]: %w", i, err)
		}
		s.Stencils = append(s.Stencils, st)
	}

	for i, lp := range c.Loads {
		src, err := load.New(lp)
		if err != nil {
			return nil, fmt.Errorf("loads[%d]: %w", i, err)
		}
		s.Loads = append(s.Loads, src)
	}

	switch c.Solver.Method {
	case "", "gmres":
		s.Method = MethodGMRES
	case "direct":
		s.Method = MethodDirect
	default:
		return nil, fmt.Errorf("%w: solver.method must be gmres or direct, got %q", grid.ErrInvalidConfig, c.Solver.Method)
	}
	s.Options = solver.Options{
		Restart: c.Solver.Restart,
		Tol:     c.Solver.Tol,
		MaxIter: c.Solver.MaxIter,
	}
	if s.Options.Tol <= 0 {
		s.Options.Tol = consts.DefaultTol
	}
	if s.Options.MaxIter == 0 {
		s.Options.MaxIter = -1 // solver reads negative as "system size"
	}
	return s, nil
}

// Spec converts one grid entry, applying defaults and validation.
func (gc GridConfig) Spec() (grid.Spec, error) {
	boundary, err := grid.ParseBoundary(gc.Boundary)
	if err != nil {
		return grid.Spec{}, err
	}
	dims := gc.Dims
	if dims == 0 {
		dims = len(gc.Shape)
	}
	spec := grid.Spec{Dims: dims, Boundary: boundary}
	copy(spec.Shape[:], gc.Shape)
	copy(spec.Lengths[:], gc.Lengths)
	for i := 0; i < dims && i < 3; i++ {
		if spec.Lengths[i] == 0 {
			spec.Lengths[i] = 1.0
		}
	}
	if err := spec.Validate(); err != nil {
		return grid.Spec{}, err
	}
	return spec, nil
}

func (oc OmegaConfig) values() ([]float64, error) {
	if len(oc.Values) > 0 {
		return oc.Values, nil
	}
	if oc.Points == 0 && oc.Start == 0 && oc.Stop == 0 {
		return []float64{0}, nil // unspecified: pure Laplace problem
	}
	r := OmegaRange{Start: oc.Start, Stop: oc.Stop, Points: oc.Points, Scale: oc.Scale}
	return r.Values()
}
