package store

import (
	"fmt"
	"time"
)

// JobConfig is the persisted slice of a packing job's configuration,
// kept alongside the checkpoint so resumed jobs can be validated for
// compatibility. It mirrors the engine config fields that change the
// meaning of a saved packing.
type JobConfig struct {
	N                  int      `json:"n"`
	Seed               int64    `json:"seed"`
	Layout             string   `json:"layout"`
	Resolver           string   `json:"resolver"`
	Search             []string `json:"search"`
	IterationBudget    int      `json:"iterationBudget"`
	GenerationBudget   int      `json:"generationBudget"`
	Restarts           int      `json:"restarts,omitempty"`
	CheckpointInterval int      `json:"checkpointInterval,omitempty"` // seconds between checkpoints, 0 = disabled
}

// Checkpoint is a saved best-so-far packing that a later run can resume
// from. Only the best centers, radii and sum are persisted; strategy
// internals (populations, temperature position) are rebuilt on resume, so
// a resumed run diverges from an uninterrupted one but its best sum can
// never regress below the checkpointed value.
type Checkpoint struct {
	JobID     string    `json:"jobId"`
	Centers   []float64 `json:"centers"` // flat x0,y0,x1,y1,...
	Radii     []float64 `json:"radii"`
	BestSum   float64   `json:"bestSum"`
	Evals     int       `json:"evals"`
	Timestamp time.Time `json:"timestamp"`
	Config    JobConfig `json:"config"`
}

// CheckpointInfo is checkpoint metadata without the packing arrays, for
// cheap listings.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	BestSum   float64   `json:"bestSum"`
	Evals     int       `json:"evals"`
	Timestamp time.Time `json:"timestamp"`
	N         int       `json:"n"`
	Layout    string    `json:"layout"`
	Resolver  string    `json:"resolver"`
}

// NewCheckpoint builds a checkpoint from runtime job state
func NewCheckpoint(jobID string, centers, radii []float64, bestSum float64, evals int, config JobConfig) *Checkpoint {
	return &Checkpoint{
		JobID:     jobID,
		Centers:   centers,
		Radii:     radii,
		BestSum:   bestSum,
		Evals:     evals,
		Timestamp: time.Now(),
		Config:    config,
	}
}

// ToInfo strips the packing arrays
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		BestSum:   c.BestSum,
		Evals:     c.Evals,
		Timestamp: c.Timestamp,
		N:         c.Config.N,
		Layout:    c.Config.Layout,
		Resolver:  c.Config.Resolver,
	}
}

// Validate checks that the checkpoint is internally consistent
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if c.Config.N <= 0 {
		return &ValidationError{Field: "Config.N", Reason: "must be positive"}
	}
	if len(c.Radii) != c.Config.N {
		return &ValidationError{Field: "Radii", Reason: fmt.Sprintf("expected %d radii, got %d", c.Config.N, len(c.Radii))}
	}
	if len(c.Centers) != 2*c.Config.N {
		return &ValidationError{Field: "Centers", Reason: fmt.Sprintf("expected %d coordinates, got %d", 2*c.Config.N, len(c.Centers))}
	}
	if c.BestSum < 0 {
		return &ValidationError{Field: "BestSum", Reason: "cannot be negative"}
	}
	if c.Evals < 0 {
		return &ValidationError{Field: "Evals", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	return nil
}

// IsCompatible reports whether this checkpoint can seed a run with the
// given config. Circle count and resolver must match; budgets and seeds
// may differ.
func (c *Checkpoint) IsCompatible(config JobConfig) error {
	if c.Config.N != config.N {
		return &CompatibilityError{Field: "N", Expected: fmt.Sprintf("%d", c.Config.N), Actual: fmt.Sprintf("%d", config.N)}
	}
	if c.Config.Resolver != config.Resolver {
		return &CompatibilityError{Field: "Resolver", Expected: c.Config.Resolver, Actual: config.Resolver}
	}
	return nil
}

// ValidationError reports an invalid checkpoint field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// CompatibilityError reports a checkpoint/config mismatch on resume
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
