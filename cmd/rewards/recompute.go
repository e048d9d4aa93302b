package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joacominatel/rewards/internal/application"
	"github.com/joacominatel/rewards/internal/infrastructure/api"
	"github.com/joacominatel/rewards/internal/infrastructure/config"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

func init() {
	recomputeCmd.Flags().StringArrayVar(&recomputeUsers, "user", nil, "User id to recompute (repeatable, default all active users)")
	recomputeCmd.Flags().IntVar(&recomputeLimit, "limit", 0, "Maximum number of users to recompute (0 = no limit)")
	recomputeCmd.Flags().StringVar(&recomputeFormat, "format", "json", "Output format: json or csv")
	rootCmd.AddCommand(recomputeCmd)
}

var (
	recomputeUsers  []string
	recomputeLimit  int
	recomputeFormat string
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute reward breakdowns and print them",
	Long: `Recompute reward breakdowns and print them to stdout.
Exits non-zero when any user could not be recomputed.`,
	RunE: runRecompute,
}

// recomputeReport is the json output of the recompute command.
type recomputeReport struct {
	Processed  int                       `json:"processed"`
	DurationMs int64                     `json:"duration_ms"`
	Results    any                       `json:"results"`
	Failures   []application.UserFailure `json:"failures"`
}

func runRecompute(cmd *cobra.Command, args []string) error {
	if recomputeFormat != "json" && recomputeFormat != "csv" {
		return fmt.Errorf("unknown format %q, want json or csv", recomputeFormat)
	}
	if recomputeLimit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	cfg, err := config.LoadRewardsOnly()
	if err != nil {
		return err
	}

	// stdout carries the report, logs go to stderr
	logger := logging.NewWithWriter(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	output, err := eng.useCase.ExecuteAll(ctx, application.ComputeAllInput{
		UserIDs: recomputeUsers,
		Limit:   recomputeLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch recomputeFormat {
	case "csv":
		err = api.WriteCSV(out, output.Results)
	default:
		report := recomputeReport{
			Processed:  output.Processed(),
			DurationMs: output.Duration.Milliseconds(),
			Results:    output.Results,
			Failures:   output.Failures,
		}
		if report.Failures == nil {
			report.Failures = []application.UserFailure{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(report)
	}
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if n := len(output.Failures); n > 0 {
		return fmt.Errorf("%d of %d users failed", n, output.Processed())
	}
	return nil
}
