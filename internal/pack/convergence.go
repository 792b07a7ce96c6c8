package pack

import "math"

// ConvergenceConfig defines parameters for detecting optimization convergence
type ConvergenceConfig struct {
	// Enabled controls whether convergence detection is active
	Enabled bool

	// Patience is the number of consecutive updates with no significant
	// improvement before the tracked loop is declared converged
	Patience int

	// Threshold is the minimum absolute improvement in the objective
	// required to count as progress
	Threshold float64
}

// DefaultConvergenceConfig returns sensible defaults for convergence detection
func DefaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		Enabled:   true,
		Patience:  5,
		Threshold: 1e-7,
	}
}

// DisabledConvergenceConfig returns a config with convergence detection disabled
func DisabledConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{Enabled: false}
}

// ConvergenceTracker watches a maximized objective and detects when
// consecutive iterations stop producing meaningful improvement
type ConvergenceTracker struct {
	config     ConvergenceConfig
	bestSum    float64
	staleCount int
	updates    int
}

// NewConvergenceTracker creates a tracker with the given config
func NewConvergenceTracker(config ConvergenceConfig) *ConvergenceTracker {
	return &ConvergenceTracker{
		config:  config,
		bestSum: math.Inf(-1),
	}
}

// Update records a new objective value and returns true once Patience
// consecutive updates have failed to improve the best by Threshold
func (c *ConvergenceTracker) Update(sum float64) bool {
	if !c.config.Enabled {
		return false
	}
	c.updates++

	if sum > c.bestSum+c.config.Threshold {
		c.bestSum = sum
		c.staleCount = 0
		return false
	}
	if sum > c.bestSum {
		c.bestSum = sum
	}
	c.staleCount++
	return c.staleCount >= c.config.Patience
}

// Best returns the best objective value seen so far
func (c *ConvergenceTracker) Best() float64 {
	return c.bestSum
}

// Updates returns the number of recorded updates
func (c *ConvergenceTracker) Updates() int {
	return c.updates
}
