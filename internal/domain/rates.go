package domain

// reward rates and daily quotas.
// the live crediting triggers carry their own copy of this table; the two
// must stay identical. see RateTable.Compare and the rate snapshot tests.
const (
	RewardQualityPost Points = 10_000
	QuotaQualityPost         = 10

	RewardLike Points = 1_000
	QuotaLike         = 50

	RewardComment Points = 2_000
	QuotaComment         = 50

	RewardShare Points = 10_000
	QuotaShare         = 5

	RewardFriendship Points = 10_000
	QuotaFriendship         = 10

	RewardLivestream Points = 10_000
	QuotaLivestream         = 5

	WelcomeBonus Points = 50_000
	WalletBonus  Points = 50_000

	// DailyCap bounds recurring rewards per local day. bonuses are not capped.
	DailyCap Points = 500_000
)

// CategoryRate is the reward per unit and the daily quota of one category.
type CategoryRate struct {
	Reward     Points `json:"reward"`
	DailyQuota int    `json:"daily_quota"`
}

// RateTable is the complete reward configuration.
type RateTable struct {
	QualityPost CategoryRate `json:"post"`
	Like        CategoryRate `json:"like"`
	Comment     CategoryRate `json:"comment"`
	Share       CategoryRate `json:"share"`
	Friendship  CategoryRate `json:"friendship"`
	Livestream  CategoryRate `json:"livestream"`

	WelcomeBonus Points `json:"welcome_bonus"`
	WalletBonus  Points `json:"wallet_bonus"`
	DailyCap     Points `json:"daily_cap"`
}

// DefaultRateTable returns the production table.
func DefaultRateTable() RateTable {
	return RateTable{
		QualityPost:  CategoryRate{Reward: RewardQualityPost, DailyQuota: QuotaQualityPost},
		Like:         CategoryRate{Reward: RewardLike, DailyQuota: QuotaLike},
		Comment:      CategoryRate{Reward: RewardComment, DailyQuota: QuotaComment},
		Share:        CategoryRate{Reward: RewardShare, DailyQuota: QuotaShare},
		Friendship:   CategoryRate{Reward: RewardFriendship, DailyQuota: QuotaFriendship},
		Livestream:   CategoryRate{Reward: RewardLivestream, DailyQuota: QuotaLivestream},
		WelcomeBonus: WelcomeBonus,
		WalletBonus:  WalletBonus,
		DailyCap:     DailyCap,
	}
}

// ForCategory returns the rate of a category.
// unknown categories get a zero rate, which rewards nothing.
func (t RateTable) ForCategory(c Category) CategoryRate {
	switch c {
	case CategoryPost:
		return t.QualityPost
	case CategoryLike:
		return t.Like
	case CategoryComment:
		return t.Comment
	case CategoryShare:
		return t.Share
	case CategoryFriendship:
		return t.Friendship
	case CategoryLivestream:
		return t.Livestream
	}
	return CategoryRate{}
}

// RateMismatch describes one field where two rate tables disagree.
type RateMismatch struct {
	Field string `json:"field"`
	Want  int64  `json:"want"`
	Got   int64  `json:"got"`
}

// Compare lists every field where other differs from t.
// t is treated as the expected table. an empty result means identical.
func (t RateTable) Compare(other RateTable) []RateMismatch {
	var mismatches []RateMismatch

	check := func(field string, want, got int64) {
		if want != got {
			mismatches = append(mismatches, RateMismatch{Field: field, Want: want, Got: got})
		}
	}

	for _, c := range Categories() {
		want, got := t.ForCategory(c), other.ForCategory(c)
		check(c.String()+".reward", want.Reward.Int64(), got.Reward.Int64())
		check(c.String()+".daily_quota", int64(want.DailyQuota), int64(got.DailyQuota))
	}
	check("welcome_bonus", t.WelcomeBonus.Int64(), other.WelcomeBonus.Int64())
	check("wallet_bonus", t.WalletBonus.Int64(), other.WalletBonus.Int64())
	check("daily_cap", t.DailyCap.Int64(), other.DailyCap.Int64())

	return mismatches
}
