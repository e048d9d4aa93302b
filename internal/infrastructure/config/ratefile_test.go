package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/rewards/internal/domain"
)

func TestLoadRateSnapshot_MatchesDefaultTable(t *testing.T) {
	snapshot, err := LoadRateSnapshot("testdata/live_rates.toml")
	require.NoError(t, err)

	assert.Equal(t, "award_points triggers", snapshot.Source)
	assert.Empty(t, domain.DefaultRateTable().Compare(snapshot.Table()))
	assert.Equal(t, domain.DefaultRateTable(), snapshot.Table())
}

func TestLoadRateSnapshot_ReportsDrift(t *testing.T) {
	snapshot, err := LoadRateSnapshot("testdata/drifted_rates.toml")
	require.NoError(t, err)

	mismatches := domain.DefaultRateTable().Compare(snapshot.Table())
	require.Len(t, mismatches, 1)
	assert.Equal(t, domain.RateMismatch{Field: "comment.daily_quota", Want: 50, Got: 100}, mismatches[0])
}

func TestLoadRateSnapshot_RejectsUnknownKeys(t *testing.T) {
	_, err := LoadRateSnapshot("testdata/unknown_key.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post.max_per_week")
}

func TestLoadRateSnapshot_MissingFile(t *testing.T) {
	_, err := LoadRateSnapshot("testdata/nope.toml")
	require.Error(t, err)
}

func TestRateFile_LoadLiveRates(t *testing.T) {
	table, source, err := RateFile{Path: "testdata/unknown_key.toml"}.LoadLiveRates(context.Background())
	require.Error(t, err)
	assert.Empty(t, source)
	assert.Equal(t, domain.RateTable{}, table)

	table, source, err = RateFile{Path: "testdata/live_rates.toml"}.LoadLiveRates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "award_points triggers", source)
	assert.Equal(t, domain.DefaultRateTable(), table)
}
