package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/circlepack/internal/opt"
	"github.com/cwbudde/circlepack/internal/store"
)

var (
	resumeDataDir string
	resumeOutPath string
	resumeIters   int
	resumeGens    int
)

var resumeCmd = &cobra.Command{
	Use:   "resume <job-id>",
	Short: "Resume optimization from a saved checkpoint",
	Long: `Loads a checkpoint saved by a previous run or server job and continues
optimization from its best layout, preserving the original job configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Directory for job checkpoints")
	resumeCmd.Flags().StringVar(&resumeOutPath, "out", "packing.json", "Output JSON path")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 0, "Override iteration budget")
	resumeCmd.Flags().IntVar(&resumeGens, "generations", 0, "Override generation budget")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return err
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("invalid checkpoint: %w", err)
	}

	cfg := opt.DefaultConfig()
	cfg.Seed = checkpoint.Config.Seed
	if checkpoint.Config.Layout != "" {
		cfg.Layout = checkpoint.Config.Layout
	}
	if checkpoint.Config.Resolver != "" {
		cfg.Resolver = checkpoint.Config.Resolver
	}
	if len(checkpoint.Config.Search) > 0 {
		cfg.Search = checkpoint.Config.Search
	}
	if checkpoint.Config.IterationBudget > 0 {
		cfg.IterationBudget = checkpoint.Config.IterationBudget
	}
	if checkpoint.Config.GenerationBudget > 0 {
		cfg.GenerationBudget = checkpoint.Config.GenerationBudget
	}
	if resumeIters > 0 {
		cfg.IterationBudget = resumeIters
	}
	if resumeGens > 0 {
		cfg.GenerationBudget = resumeGens
	}
	cfg.Restarts = 1
	cfg.InitialCenters = checkpoint.Centers

	slog.Info("resuming optimization",
		"job_id", jobID,
		"n", checkpoint.Config.N,
		"checkpoint_sum", checkpoint.BestSum,
	)

	start := time.Now()
	result, err := opt.Optimize(checkpoint.Config.N, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if result.Sum > checkpoint.BestSum {
		updated := store.NewCheckpoint(jobID, result.Centers, result.Radii,
			result.Sum, checkpoint.Evals+result.Evals, checkpoint.Config)
		if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
			slog.Warn("failed to save updated checkpoint", "error", err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(resumeOutPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	slog.Info("resume complete",
		"elapsed", elapsed,
		"sum", result.Sum,
		"previous_sum", checkpoint.BestSum,
		"improved", result.Sum > checkpoint.BestSum,
	)

	fmt.Printf("Wrote %s (sum: %.6f, checkpoint was %.6f)\n", resumeOutPath, result.Sum, checkpoint.BestSum)
	return nil
}
