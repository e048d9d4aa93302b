package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/logging"
)

// ErrRatesDiverged is returned when the live rate table disagrees with the engine's.
var ErrRatesDiverged = errors.New("rate tables diverged")

// RateSource loads the rate table the live crediting triggers use.
type RateSource interface {
	LoadLiveRates(ctx context.Context) (domain.RateTable, string, error)
}

// VerifyRatesOutput lists every field where the tables disagree.
type VerifyRatesOutput struct {
	Source     string                `json:"source"`
	Expected   domain.RateTable      `json:"expected"`
	Live       domain.RateTable      `json:"live"`
	Mismatches []domain.RateMismatch `json:"mismatches"`
}

// InSync returns true if both tables are identical.
func (o *VerifyRatesOutput) InSync() bool {
	return len(o.Mismatches) == 0
}

// VerifyRatesUseCase compares the engine's rate table with the live one.
// the two tables are maintained by hand in different places.
type VerifyRatesUseCase struct {
	expected domain.RateTable
	source   RateSource
	logger   *logging.Logger
}

// NewVerifyRatesUseCase creates a new VerifyRatesUseCase.
func NewVerifyRatesUseCase(expected domain.RateTable, source RateSource, logger *logging.Logger) *VerifyRatesUseCase {
	return &VerifyRatesUseCase{
		expected: expected,
		source:   source,
		logger:   logger.WithComponent("verify_rates"),
	}
}

// Execute loads the live table and compares it field by field.
// returns the comparison together with ErrRatesDiverged when they differ.
func (uc *VerifyRatesUseCase) Execute(ctx context.Context) (*VerifyRatesOutput, error) {
	live, source, err := uc.source.LoadLiveRates(ctx)
	if err != nil {
		uc.logger.Error("rate verification failed: loading live rates",
			"error", err.Error(),
		)
		return nil, fmt.Errorf("loading live rates: %w", err)
	}

	output := &VerifyRatesOutput{
		Source:     source,
		Expected:   uc.expected,
		Live:       live,
		Mismatches: uc.expected.Compare(live),
	}

	if output.InSync() {
		uc.logger.Info("rate tables in sync",
			"source", source,
			"outcome", "in_sync",
		)
		return output, nil
	}

	for _, m := range output.Mismatches {
		uc.logger.Warn("rate table mismatch",
			"source", source,
			"field", m.Field,
			"expected", m.Want,
			"live", m.Got,
		)
	}
	uc.logger.Warn("rate tables diverged",
		"source", source,
		"mismatches", len(output.Mismatches),
		"outcome", "diverged",
	)

	return output, fmt.Errorf("%w: %d field(s) differ", ErrRatesDiverged, len(output.Mismatches))
}
