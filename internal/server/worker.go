package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/circlepack/internal/opt"
	"github.com/cwbudde/circlepack/internal/store"
)

// runJob executes a packing optimization job in the background. When
// checkpointStore is non-nil and the job has CheckpointInterval > 0,
// periodic checkpoints of the best packing are saved. initialCenters,
// when non-nil, seeds the run (resume path).
func runJob(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, initialCenters []float64) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
		j.StartTime = time.Now()
	}); err != nil {
		return err
	}

	slog.Info("starting job", "job_id", jobID, "n", job.Config.N, "search", job.Config.Search)

	cfg := toEngineConfig(job.Config)
	cfg.InitialCenters = initialCenters

	cfg.Progress = func(phase string, step int, bestSum float64, evals int) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Phase = phase
			j.BestSum = bestSum
			j.Evals = evals
		})
	}
	cfg.OnImprove = func(centers, radii []float64, sum float64, evals int) {
		jm.UpdateJob(jobID, func(j *Job) {
			if sum > j.BestSum || len(j.Centers) == 0 {
				j.Centers = centers
				j.Radii = radii
				j.BestSum = sum
			}
		})
	}

	start := time.Now()

	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	checkpointDone := make(chan struct{})
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	} else {
		close(checkpointDone)
	}

	result, err := opt.Optimize(job.Config.N, cfg)
	close(progressDone)
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		close(checkpointDone)
	}
	elapsed := time.Since(start)

	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	// Cancellation is observed at phase boundaries only; a cancel that
	// lands mid-run takes effect once the engine returns.
	if ctx.Err() != nil {
		markJobCancelled(jm, jobID)
		return ctx.Err()
	}

	endTime := time.Now()
	if err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Centers = result.Centers
		j.Radii = result.Radii
		j.BestSum = result.Sum
		j.Evals = result.Evals
		j.Phase = opt.PhaseDone
		j.EndTime = &endTime
	}); err != nil {
		return err
	}

	eps := float64(result.Evals) / elapsed.Seconds()
	slog.Info("job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"best_sum", result.Sum,
		"evals", result.Evals,
		"evals_per_second", eps,
	)

	if checkpointStore != nil {
		checkpoint := store.NewCheckpoint(jobID, result.Centers, result.Radii, result.Sum, result.Evals, job.Config)
		if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
			slog.Error("failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Phase:     opt.PhaseDone,
		Evals:     result.Evals,
		BestSum:   result.Sum,
		EPS:       eps,
		Timestamp: time.Now(),
	})
	return nil
}

// toEngineConfig maps the persisted job config onto engine defaults
func toEngineConfig(jc JobConfig) opt.Config {
	cfg := opt.DefaultConfig()
	cfg.Seed = jc.Seed
	if jc.Layout != "" {
		cfg.Layout = jc.Layout
	}
	if jc.Resolver != "" {
		cfg.Resolver = jc.Resolver
	}
	if len(jc.Search) > 0 {
		cfg.Search = jc.Search
	}
	if jc.IterationBudget > 0 {
		cfg.IterationBudget = jc.IterationBudget
	}
	if jc.GenerationBudget > 0 {
		cfg.GenerationBudget = jc.GenerationBudget
	}
	if jc.Restarts > 0 {
		cfg.Restarts = jc.Restarts
	}
	return cfg
}

// monitorProgress periodically broadcasts progress events while a job runs
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}
			elapsed := time.Since(startTime).Seconds()
			var eps float64
			if elapsed > 0 {
				eps = float64(job.Evals) / elapsed
			}
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     job.State,
				Phase:     job.Phase,
				Evals:     job.Evals,
				BestSum:   job.BestSum,
				EPS:       eps,
				Timestamp: time.Now(),
			})
		}
	}
}

// monitorCheckpoints periodically saves the job's best packing
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore store.Store, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	ticker := time.NewTicker(time.Duration(job.Config.CheckpointInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists || len(job.Centers) == 0 {
				continue
			}
			checkpoint := store.NewCheckpoint(jobID, job.Centers, job.Radii, job.BestSum, job.Evals, job.Config)
			if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
				slog.Error("failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("job cancelled", "job_id", jobID)
}
