package config

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/joacominatel/rewards/internal/domain"
)

// RateSnapshot is a rate table exported from the live crediting triggers.
// the file mirrors the trigger constants so they can be diffed against
// domain.DefaultRateTable without a database round trip.
type RateSnapshot struct {
	Source string `toml:"source"`

	Post       rateEntry `toml:"post"`
	Like       rateEntry `toml:"like"`
	Comment    rateEntry `toml:"comment"`
	Share      rateEntry `toml:"share"`
	Friendship rateEntry `toml:"friendship"`
	Livestream rateEntry `toml:"livestream"`

	Bonuses struct {
		Welcome int64 `toml:"welcome"`
		Wallet  int64 `toml:"wallet"`
	} `toml:"bonuses"`

	DailyCap int64 `toml:"daily_cap"`
}

type rateEntry struct {
	Reward     int64 `toml:"reward"`
	DailyQuota int   `toml:"daily_quota"`
}

func (e rateEntry) rate() domain.CategoryRate {
	return domain.CategoryRate{Reward: domain.Points(e.Reward), DailyQuota: e.DailyQuota}
}

// Table converts the snapshot to a domain rate table.
func (s RateSnapshot) Table() domain.RateTable {
	return domain.RateTable{
		QualityPost:  s.Post.rate(),
		Like:         s.Like.rate(),
		Comment:      s.Comment.rate(),
		Share:        s.Share.rate(),
		Friendship:   s.Friendship.rate(),
		Livestream:   s.Livestream.rate(),
		WelcomeBonus: domain.Points(s.Bonuses.Welcome),
		WalletBonus:  domain.Points(s.Bonuses.Wallet),
		DailyCap:     domain.Points(s.DailyCap),
	}
}

// LoadRateSnapshot decodes a toml rate snapshot.
// unknown keys are rejected so a renamed field cannot silently read as zero.
func LoadRateSnapshot(path string) (*RateSnapshot, error) {
	var snapshot RateSnapshot
	meta, err := toml.DecodeFile(path, &snapshot)
	if err != nil {
		return nil, fmt.Errorf("decoding rate snapshot %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("rate snapshot %s: unknown key %q", path, undecoded[0].String())
	}
	return &snapshot, nil
}

// RateFile serves a snapshot file as the live rate table.
type RateFile struct {
	Path string
}

// LoadLiveRates decodes the file and returns its table and declared source.
func (f RateFile) LoadLiveRates(_ context.Context) (domain.RateTable, string, error) {
	snapshot, err := LoadRateSnapshot(f.Path)
	if err != nil {
		return domain.RateTable{}, "", err
	}
	source := snapshot.Source
	if source == "" {
		source = f.Path
	}
	return snapshot.Table(), source, nil
}
