package load

import (
	"fmt"
	"sort"

	"github.com/edp1096/toy-helmholtz/pkg/grid"
)

// Params is the declarative description of a source, as it appears in
// sweep configuration files. Fields irrelevant to a kind are ignored by
// its builder.
type Params struct {
	Kind       string    `yaml:"kind"`
	Location   []float64 `yaml:"location"`
	Amplitude  float64   `yaml:"amplitude"`
	Direction  []float64 `yaml:"direction"`
	Wavenumber float64   `yaml:"wavenumber"`
	Phase      float64   `yaml:"phase"`
	Seed       int64     `yaml:"seed"`
}

// Builder constructs a Source from its declarative parameters.
type Builder func(Params) (Source, error)

var builders = map[string]Builder{}

// Register adds a builder for a source kind. The built-in kinds
// ("point", "plane-wave", "random") register themselves; additional
// kinds may be registered by callers before configs are parsed.
func Register(kind string, b Builder) {
	builders[kind] = b
}

// Kinds lists the registered source kinds, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(builders))
	for k := range builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New dispatches on p.Kind to the registered builder.
func New(p Params) (Source, error) {
	b, ok := builders[p.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown load kind %q (registered: %v)", grid.ErrInvalidConfig, p.Kind, Kinds())
	}
	return b(p)
}

func vec3(v []float64) [3]float64 {
	var out [3]float64
	copy(out[:], v)
	return out
}

func init() {
	Register("point", func(p Params) (Source, error) {
		amp := p.Amplitude
		if amp == 0 {
			amp = 1
		}
		return PointSource{Location: vec3(p.Location), Amplitude: amp}, nil
	})
	Register("plane-wave", func(p Params) (Source, error) {
		return PlaneWave{Direction: vec3(p.Direction), Wavenumber: p.Wavenumber, Phase: p.Phase}, nil
	})
	Register("random", func(p Params) (Source, error) {
		return RandomSource{Seed: p.Seed, Amplitude: p.Amplitude}, nil
	})
}
