package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvergenceTrackerDetectsStall(t *testing.T) {
	tracker := NewConvergenceTracker(ConvergenceConfig{
		Enabled:   true,
		Patience:  3,
		Threshold: 1e-7,
	})

	assert.False(t, tracker.Update(1.0))
	assert.False(t, tracker.Update(1.1))
	assert.False(t, tracker.Update(1.2))

	// Three stale updates in a row trip the patience budget.
	assert.False(t, tracker.Update(1.2))
	assert.False(t, tracker.Update(1.2))
	assert.True(t, tracker.Update(1.2))

	assert.InDelta(t, 1.2, tracker.Best(), 1e-12)
	assert.Equal(t, 6, tracker.Updates())
}

func TestConvergenceTrackerImprovementResetsPatience(t *testing.T) {
	tracker := NewConvergenceTracker(ConvergenceConfig{
		Enabled:   true,
		Patience:  2,
		Threshold: 1e-7,
	})

	assert.False(t, tracker.Update(1.0))
	assert.False(t, tracker.Update(1.0))
	assert.False(t, tracker.Update(2.0)) // reset
	assert.False(t, tracker.Update(2.0))
	assert.True(t, tracker.Update(2.0))
}

func TestConvergenceTrackerSubThresholdGainIsStale(t *testing.T) {
	tracker := NewConvergenceTracker(ConvergenceConfig{
		Enabled:   true,
		Patience:  2,
		Threshold: 1e-3,
	})

	assert.False(t, tracker.Update(1.0))
	assert.False(t, tracker.Update(1.0001))
	assert.True(t, tracker.Update(1.0002))

	// Tiny gains still move the recorded best.
	assert.InDelta(t, 1.0002, tracker.Best(), 1e-12)
}

func TestConvergenceTrackerDisabled(t *testing.T) {
	tracker := NewConvergenceTracker(DisabledConvergenceConfig())
	for i := 0; i < 100; i++ {
		assert.False(t, tracker.Update(1.0))
	}
}
