package opt

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/cwbudde/circlepack/internal/pack"
)

// Resolver algorithm names
const (
	ResolverIterative = "iterative-scaling"
	ResolverLP        = "lp-exact"
)

// Global search strategy names
const (
	SearchAnnealing = "annealing"
	SearchGenetic   = "genetic"
	SearchShake     = "shake"
	SearchRelax     = "force-relaxation"
	SearchMayfly    = "mayfly"
)

// Config is the full tuning surface of the engine. The zero value is not
// usable; start from DefaultConfig or Load. Strategies listed in Search
// run sequentially on the same state, each inheriting the best packing
// found by its predecessors.
type Config struct {
	Seed     int64    `toml:"seed"`
	Layout   string   `toml:"layout"`
	Resolver string   `toml:"resolver"` // iterative-scaling | lp-exact
	Search   []string `toml:"search"`
	Restarts int      `toml:"restarts"`

	IterationBudget  int `toml:"iteration_budget"`
	GenerationBudget int `toml:"generation_budget"`
	RefineIterations int `toml:"refine_iterations"`

	StepSize      float64 `toml:"step_size"`
	TempStart     float64 `toml:"temp_start"`
	TempEnd       float64 `toml:"temp_end"`
	TempSchedule  string  `toml:"temp_schedule"` // linear | geometric
	MutationScale float64 `toml:"mutation_scale"`
	MutationDecay float64 `toml:"mutation_decay"`

	BoundaryMargin   float64 `toml:"boundary_margin"`
	ClampMargin      float64 `toml:"clamp_margin"`
	DegenerateShrink float64 `toml:"degenerate_shrink"`
	Tolerance        float64 `toml:"tolerance"`
	ResolverPasses   int     `toml:"resolver_passes"`

	PopSize       int     `toml:"pop_size"`
	Elites        int     `toml:"elites"`
	CrossoverRate float64 `toml:"crossover_rate"`
	PolishEvery   int     `toml:"polish_every"`

	ShakeSubset    int     `toml:"shake_subset"`
	MinImprovement float64 `toml:"min_improvement"`

	// InitialCenters, when non-nil, replaces the layout generator for the
	// first restart (length 2n). Used to resume from a checkpointed best
	// packing.
	InitialCenters []float64 `toml:"-"`

	// Progress is invoked from the run's own goroutine; it must be fast
	// and must not block.
	Progress Progress `toml:"-"`

	// OnImprove receives every new best packing. With Restarts > 1 it is
	// called concurrently from independent restart goroutines.
	OnImprove ImproveFunc `toml:"-"`
}

// DefaultConfig returns the tuning used when nothing is overridden.
// The shrink and tolerance constants are deliberately configuration, not
// literals in the loops; observed workloads vary them widely.
func DefaultConfig() Config {
	return Config{
		Seed:     0,
		Layout:   "hybrid",
		Resolver: ResolverIterative,
		Search:   []string{SearchAnnealing, SearchRelax},
		Restarts: 1,

		IterationBudget:  4000,
		GenerationBudget: 60,
		RefineIterations: 150,

		StepSize:      0.02,
		TempStart:     0.08,
		TempEnd:       0.004,
		TempSchedule:  "linear",
		MutationScale: 0.045,
		MutationDecay: 0.1,

		BoundaryMargin:   0,
		ClampMargin:      0.01,
		DegenerateShrink: 0.88,
		Tolerance:        1e-9,
		ResolverPasses:   8,

		PopSize:       32,
		Elites:        6,
		CrossoverRate: 0.45,
		PolishEvery:   3,

		ShakeSubset:    3,
		MinImprovement: 1e-6,
	}
}

// Load reads TOML overrides from path on top of the defaults
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks names and numeric ranges
func (c *Config) Validate() error {
	if _, err := pack.Layout(c.Layout); err != nil {
		return err
	}
	switch c.Resolver {
	case ResolverIterative, ResolverLP:
	default:
		return fmt.Errorf("unknown resolver %q", c.Resolver)
	}
	for _, name := range c.Search {
		switch name {
		case SearchAnnealing, SearchGenetic, SearchShake, SearchRelax, SearchMayfly:
		default:
			return fmt.Errorf("unknown search strategy %q", name)
		}
	}
	switch c.TempSchedule {
	case "linear", "geometric":
	default:
		return fmt.Errorf("unknown temperature schedule %q", c.TempSchedule)
	}
	if c.TempStart <= 0 || c.TempEnd <= 0 || c.TempEnd > c.TempStart {
		return fmt.Errorf("temperature schedule must satisfy 0 < temp_end <= temp_start")
	}
	if c.DegenerateShrink <= 0 || c.DegenerateShrink >= 1 {
		return fmt.Errorf("degenerate_shrink must be in (0,1)")
	}
	if c.ClampMargin < 0 || c.ClampMargin >= 0.5 {
		return fmt.Errorf("clamp_margin must be in [0, 0.5)")
	}
	if c.BoundaryMargin < 0 {
		return fmt.Errorf("boundary_margin must be >= 0")
	}
	if c.PopSize < 2 || c.Elites < 1 || c.Elites >= c.PopSize {
		return fmt.Errorf("population must satisfy 1 <= elites < pop_size")
	}
	if c.Restarts < 0 {
		return fmt.Errorf("restarts must be >= 0")
	}
	return nil
}
