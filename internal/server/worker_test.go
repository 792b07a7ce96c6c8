package server

import (
	"context"
	"testing"

	"github.com/cwbudde/circlepack/internal/pack"
	"github.com/cwbudde/circlepack/internal/store"
)

func smallJobConfig(n int) JobConfig {
	return JobConfig{
		N:                n,
		Seed:             42,
		Layout:           "hybrid",
		Resolver:         "iterative-scaling",
		Search:           []string{"force-relaxation"},
		IterationBudget:  100,
		GenerationBudget: 2,
	}
}

func TestRunJobCompletes(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(smallJobConfig(4))

	if err := runJob(context.Background(), jm, nil, job.ID, nil); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	got, _ := jm.GetJob(job.ID)
	if got.State != StateCompleted {
		t.Fatalf("State = %q, want %q", got.State, StateCompleted)
	}
	if got.BestSum <= 0 {
		t.Errorf("BestSum = %v, want > 0", got.BestSum)
	}
	if len(got.Centers) != 8 || len(got.Radii) != 4 {
		t.Errorf("result shapes: centers=%d radii=%d", len(got.Centers), len(got.Radii))
	}
	if !pack.Feasible(got.Centers, got.Radii, 1e-6) {
		t.Error("completed job packing is infeasible")
	}
	if got.EndTime == nil {
		t.Error("EndTime not set")
	}
}

func TestRunJobSavesFinalCheckpoint(t *testing.T) {
	jm := NewJobManager()
	fs, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	job := jm.CreateJob(smallJobConfig(3))

	if err := runJob(context.Background(), jm, fs, job.ID, nil); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	checkpoint, err := fs.LoadCheckpoint(job.ID)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if err := checkpoint.Validate(); err != nil {
		t.Errorf("final checkpoint invalid: %v", err)
	}
	got, _ := jm.GetJob(job.ID)
	if checkpoint.BestSum != got.BestSum {
		t.Errorf("checkpoint sum %v != job sum %v", checkpoint.BestSum, got.BestSum)
	}
}

func TestRunJobFailsOnBadConfig(t *testing.T) {
	jm := NewJobManager()
	config := smallJobConfig(4)
	config.Resolver = "exact"
	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, nil, job.ID, nil); err == nil {
		t.Fatal("runJob should fail with unknown resolver")
	}

	got, _ := jm.GetJob(job.ID)
	if got.State != StateFailed {
		t.Errorf("State = %q, want %q", got.State, StateFailed)
	}
	if got.Error == "" {
		t.Error("failed job has no error message")
	}
}

func TestRunJobUnknownID(t *testing.T) {
	jm := NewJobManager()
	if err := runJob(context.Background(), jm, nil, "missing", nil); err == nil {
		t.Fatal("runJob should fail for unknown job")
	}
}

func TestRunJobWithInitialCenters(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(smallJobConfig(2))

	seed := []float64{0.25, 0.25, 0.75, 0.75}
	if err := runJob(context.Background(), jm, nil, job.ID, seed); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	got, _ := jm.GetJob(job.ID)
	if got.State != StateCompleted {
		t.Fatalf("State = %q, want %q", got.State, StateCompleted)
	}
	// Two circles seeded on the diagonal resolve to at least the seeded
	// packing's sum.
	if got.BestSum < 0.49 {
		t.Errorf("BestSum = %v, want >= 0.49", got.BestSum)
	}
}

func TestToEngineConfigDefaults(t *testing.T) {
	cfg := toEngineConfig(JobConfig{N: 5, Seed: 7})

	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	// Unset fields fall back to engine defaults.
	if cfg.Layout == "" || cfg.Resolver == "" || len(cfg.Search) == 0 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	cfg = toEngineConfig(smallJobConfig(5))
	if cfg.IterationBudget != 100 || cfg.GenerationBudget != 2 {
		t.Errorf("budgets not carried: %+v", cfg)
	}
}
