// Package load builds right-hand-side vectors for Helmholtz solves from
// declarative source descriptions: a point impulse, a complex plane
// wave, or a seeded random field. Builders only depend on grid geometry
// and their own parameters, never on the assembled operator.
package load

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/edp1096/toy-helmholtz/pkg/grid"
)

// Source builds a dense complex load vector of length spec.Size().
type Source interface {
	Name() string
	Build(spec grid.Spec) ([]complex128, error)
}

// Build is a convenience wrapper validating the spec before dispatching
// to the source.
func Build(src Source, spec grid.Spec) ([]complex128, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return src.Build(spec)
}

// PointSource places a single impulse at the node nearest to Location
// (physical coordinates, clamped to the domain).
type PointSource struct {
	Location  [3]float64
	Amplitude float64
}

func (p PointSource) Name() string { return "point" }

func (p PointSource) Build(spec grid.Spec) ([]complex128, error) {
	var idx [3]int
	for i := 0; i < spec.Dims; i++ {
		lattice := p.Location[i] / spec.Spacing(i)
		j := int(math.Round(lattice))
		if j < 0 {
			j = 0
		}
		if j > spec.Shape[i]-1 {
			j = spec.Shape[i] - 1
		}
		idx[i] = j
	}
	rhs := make([]complex128, spec.Size())
	rhs[spec.Flatten(idx)] = complex(p.Amplitude, 0)
	return rhs, nil
}

// PlaneWave fills the grid with exp(i·(k·(d̂·x) + φ)) for the normalized
// direction d̂. A zero direction over the active axes is invalid.
type PlaneWave struct {
	Direction  [3]float64
	Wavenumber float64
	Phase      float64
}

func (p PlaneWave) Name() string { return "plane-wave" }

func (p PlaneWave) Build(spec grid.Spec) ([]complex128, error) {
	var norm float64
	for i := 0; i < spec.Dims; i++ {
		norm += p.Direction[i] * p.Direction[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("%w: plane wave direction must be non-zero", grid.ErrInvalidConfig)
	}
	k := p.Wavenumber
	if k == 0 {
		k = 1
	}

	axes := spec.Axes()
	rhs := make([]complex128, spec.Size())
	for linear := range rhs {
		idx := spec.Unflatten(linear)
		var phase float64
		for i := 0; i < spec.Dims; i++ {
			phase += axes[i][idx[i]] * p.Direction[i] / norm
		}
		rhs[linear] = cmplx.Exp(complex(0, k*phase+p.Phase))
	}
	return rhs, nil
}

// RandomSource draws a standard-normal field scaled by Amplitude. The
// same seed always reproduces the same vector.
type RandomSource struct {
	Seed      int64
	Amplitude float64
}

func (r RandomSource) Name() string { return "random" }

func (r RandomSource) Build(spec grid.Spec) ([]complex128, error) {
	amp := r.Amplitude
	if amp == 0 {
		amp = 1
	}
	rng := rand.New(rand.NewSource(r.Seed))
	rhs := make([]complex128, spec.Size())
	for i := range rhs {
		rhs[i] = complex(amp*rng.NormFloat64(), 0)
	}
	return rhs, nil
}
