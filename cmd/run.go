package main

import (
	"encoding/json"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/circlepack/internal/opt"
	"github.com/cwbudde/circlepack/internal/render"
	"github.com/cwbudde/circlepack/internal/store"
)

var (
	runN          int
	runSeed       int64
	runLayout     string
	runResolver   string
	runSearch     []string
	runIters      int
	runGens       int
	runRestarts   int
	runStep       float64
	runTempStart  float64
	runTempEnd    float64
	runSchedule   string
	runMargin     float64
	runConfigPath string
	runOutPath    string
	runPNGPath    string
	runTrace      bool
	runDataDir    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run single-shot packing optimization",
	Long:  `Runs a packing optimization and writes the resulting centers, radii and sum as JSON.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().IntVar(&runN, "n", 26, "Number of circles")
	runCmd.Flags().Int64Var(&runSeed, "seed", 42, "Random seed")
	runCmd.Flags().StringVar(&runLayout, "layout", "hybrid", "Initial layout: uniform, grid, rings, hex, hybrid")
	runCmd.Flags().StringVar(&runResolver, "resolver", opt.ResolverIterative, "Radius resolver: iterative-scaling, lp-exact")
	runCmd.Flags().StringSliceVar(&runSearch, "search", nil, "Global search strategies, run in order (annealing, genetic, shake, force-relaxation, mayfly)")
	runCmd.Flags().IntVar(&runIters, "iters", 0, "Iteration budget per phase")
	runCmd.Flags().IntVar(&runGens, "generations", 0, "Generation budget per phase")
	runCmd.Flags().IntVar(&runRestarts, "restarts", 1, "Independent seeded restarts (run in parallel)")
	runCmd.Flags().Float64Var(&runStep, "step", 0, "Refiner step size")
	runCmd.Flags().Float64Var(&runTempStart, "temp-start", 0, "Annealing start temperature")
	runCmd.Flags().Float64Var(&runTempEnd, "temp-end", 0, "Annealing end temperature")
	runCmd.Flags().StringVar(&runSchedule, "temp-schedule", "", "Temperature schedule: linear, geometric")
	runCmd.Flags().Float64Var(&runMargin, "margin", 0, "Boundary margin (clearance from edges and between circles)")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "TOML config file (flags override)")
	runCmd.Flags().StringVar(&runOutPath, "out", "packing.json", "Output JSON path")
	runCmd.Flags().StringVar(&runPNGPath, "png", "", "Optional output PNG path")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "Record the improvement history as JSONL")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "./data", "Directory for trace output")

	rootCmd.AddCommand(runCmd)
}

func buildRunConfig(cmd *cobra.Command) (opt.Config, error) {
	cfg := opt.DefaultConfig()
	if runConfigPath != "" {
		loaded, err := opt.Load(runConfigPath)
		if err != nil {
			return opt.Config{}, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("seed") || runConfigPath == "" {
		cfg.Seed = runSeed
	}
	if cmd.Flags().Changed("layout") || runConfigPath == "" {
		cfg.Layout = runLayout
	}
	if cmd.Flags().Changed("resolver") || runConfigPath == "" {
		cfg.Resolver = runResolver
	}
	if len(runSearch) > 0 {
		cfg.Search = runSearch
	}
	if runIters > 0 {
		cfg.IterationBudget = runIters
	}
	if runGens > 0 {
		cfg.GenerationBudget = runGens
	}
	if runRestarts > 0 {
		cfg.Restarts = runRestarts
	}
	if runStep > 0 {
		cfg.StepSize = runStep
	}
	if runTempStart > 0 {
		cfg.TempStart = runTempStart
	}
	if runTempEnd > 0 {
		cfg.TempEnd = runTempEnd
	}
	if runSchedule != "" {
		cfg.TempSchedule = runSchedule
	}
	if cmd.Flags().Changed("margin") {
		cfg.BoundaryMargin = runMargin
	}
	return cfg, nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}

	var traceWriter *store.TraceWriter
	if runTrace {
		jobID := uuid.New().String()
		traceWriter, err = store.NewTraceWriter(runDataDir, jobID, false)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer traceWriter.Close()

		cfg.OnImprove = func(centers, radii []float64, sum float64, evals int) {
			traceWriter.Write(store.TraceEntry{
				Evals:     evals,
				BestSum:   sum,
				Timestamp: time.Now(),
			})
		}
		slog.Info("tracing improvements", "path", traceWriter.Path(), "job_id", jobID)
	}

	slog.Info("starting optimization",
		"n", runN,
		"layout", cfg.Layout,
		"resolver", cfg.Resolver,
		"search", cfg.Search,
		"restarts", cfg.Restarts,
	)

	start := time.Now()
	result, err := opt.Optimize(runN, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := os.WriteFile(runOutPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if runPNGPath != "" {
		img := render.Packing(result.Centers, result.Radii, 512)
		f, err := os.Create(runPNGPath)
		if err != nil {
			return fmt.Errorf("failed to create PNG: %w", err)
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
	}

	eps := float64(result.Evals) / elapsed.Seconds()
	slog.Info("optimization complete",
		"elapsed", elapsed,
		"sum", result.Sum,
		"evals", result.Evals,
		"evals_per_second", fmt.Sprintf("%.0f", eps),
	)

	fmt.Printf("Wrote %s (sum: %.6f, %.0f evals/sec)\n", runOutPath, result.Sum, eps)
	return nil
}
