package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joacominatel/rewards/internal/application"
	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/config"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

func init() {
	verifyRatesCmd.Flags().StringVar(&verifyRatesFile, "file", "", "TOML snapshot of the live crediting rates")
	_ = verifyRatesCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(verifyRatesCmd)
}

var verifyRatesFile string

var verifyRatesCmd = &cobra.Command{
	Use:   "verify-rates",
	Short: "Compare the engine rate table with a live rate snapshot",
	Long: `Compare the engine rate table with a snapshot of the live crediting rates.
Prints the comparison and exits non-zero when any field differs.`,
	RunE: runVerifyRates,
}

func runVerifyRates(cmd *cobra.Command, args []string) error {
	logger := logging.NewWithWriter(os.Stderr, logging.ParseLevel(os.Getenv("LOG_LEVEL")))

	useCase := application.NewVerifyRatesUseCase(
		domain.DefaultRateTable(),
		config.RateFile{Path: verifyRatesFile},
		logger,
	)

	output, verifyErr := useCase.Execute(cmd.Context())
	if output == nil {
		return verifyErr
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return verifyErr
}
