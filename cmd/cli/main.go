package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"postpulse/adapters/table"
	"postpulse/app"
	"postpulse/domain/core"
	"postpulse/domain/run"
	"postpulse/domain/timeline"
	"postpulse/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// trainColumns is the column set the training pipeline requires;
// delta_views/delta_reposts are optional (only consulted for a post's
// first bucket).
var trainColumns = []string{"post_id", "bucket_ts", "age_minutes", "views", "reposts"}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "postpulse-cli",
		Short: "Post-diffusion model training and metrics consistency checks",
	}

	rootCmd.AddCommand(
		newTrainCmd(),
		newValidateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTrainCmd() *cobra.Command {
	var csvPath, outPath string
	var k int
	var alpha float64

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit exposure and repost diffusion models from a metrics CSV",
		Long: `Fit ridge-regularized diffusion models for per-bucket exposure and
repost deltas, sweeping the exponential decay rate over a fixed
log-spaced grid and keeping the lowest held-out RMSE per target.

The parameter artifact JSON is always printed to stdout; --out
additionally writes it to disk together with a run manifest.

Example: postpulse-cli train --csv data/metrics.csv --k 6 --alpha 1.0 --out artifacts/diffusion_params.json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(csvPath, outPath, k, alpha)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Path to the metrics CSV (required)")
	cmd.Flags().IntVar(&k, "k", 0, "Number of lagged repost-delta features (required, > 0)")
	cmd.Flags().Float64Var(&alpha, "alpha", math.NaN(), "Ridge regularization strength (required, >= 0)")
	cmd.Flags().StringVar(&outPath, "out", "", "Optional path for the JSON parameter artifact")

	return cmd
}

func runTrain(csvPath, outPath string, k int, alpha float64) error {
	if csvPath == "" {
		return fmt.Errorf("--csv is required: %w", core.ErrInvalidInput)
	}
	if k <= 0 {
		return fmt.Errorf("--k must be a positive integer, got %d: %w", k, core.ErrInvalidInput)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) || alpha < 0 {
		return fmt.Errorf("--alpha must be a non-negative number: %w", core.ErrInvalidInput)
	}

	tbl, err := table.ReadFile(csvPath)
	if err != nil {
		return err
	}
	if err := tbl.RequireColumns(trainColumns...); err != nil {
		return err
	}
	if len(tbl.Rows) == 0 {
		return core.ErrEmptyTable
	}

	series, err := timeline.BuildSeries(tbl)
	if err != nil {
		return err
	}

	trainer := app.NewTrainerService()
	params, err := trainer.TrainAll(series, k, alpha)
	if err != nil {
		return err
	}

	artifact, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode parameter artifact: %w", err)
	}
	fmt.Println(string(artifact))

	if outPath == "" {
		return nil
	}
	// A bare filename lands in the configured artifact directory.
	if filepath.Dir(outPath) == "." {
		outPath = filepath.Join(config.Load().ArtifactDir, outPath)
	}
	return writeArtifact(csvPath, outPath, k, alpha, artifact)
}

// writeArtifact persists the parameter JSON plus a run manifest tying the
// artifact to the exact input bytes it was trained from.
func writeArtifact(csvPath, outPath string, k int, alpha float64, artifact []byte) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outPath, artifact, 0644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", outPath, err)
	}

	input, err := os.ReadFile(csvPath)
	if err != nil {
		return fmt.Errorf("failed to re-read input for manifest: %w", err)
	}
	manifest := run.NewManifest(csvPath, input, k, alpha, artifact)
	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run manifest: %w", err)
	}
	manifestPath := outPath + ".manifest.json"
	if err := os.WriteFile(manifestPath, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write run manifest %s: %w", manifestPath, err)
	}
	return nil
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [csv-path]",
		Short: "Cross-check derived metrics columns against raw counters",
		Long: `Re-derive virality score, delta engagement rate and per-bucket deltas
from raw cumulative counters and cross-check them against the CSV's own
derived columns. Also flags monotonicity violations and reach-lift
anomalies (view spikes with zero reposts).

Mismatches are reported, never fatal; the command fails only on
malformed or missing input.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Load().SampleCSV
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(path)
		},
	}
	return cmd
}

func runValidate(path string) error {
	tbl, err := table.ReadFile(path)
	if err != nil {
		return err
	}
	if err := tbl.RequireColumns(app.ValidatorColumns...); err != nil {
		return err
	}
	if len(tbl.Rows) == 0 {
		return core.ErrEmptyTable
	}

	validator := app.NewValidatorService()
	report, err := validator.Validate(tbl)
	if err != nil {
		return err
	}
	report.Render(os.Stdout)
	return nil
}
