package api

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/joacominatel/rewards/internal/application"
	"github.com/joacominatel/rewards/internal/domain"
	"github.com/joacominatel/rewards/internal/infrastructure/cache"
)

// maxTopLimit bounds the totals ranking page size.
const maxTopLimit = 100

// RewardComputer is the use case surface the handler needs.
type RewardComputer interface {
	Execute(ctx context.Context, input application.ComputeRewardsInput) (*application.ComputeRewardsOutput, error)
	ExecuteAll(ctx context.Context, input application.ComputeAllInput) (*application.ComputeAllOutput, error)
	Rates() domain.RateTable
}

// TotalsRanker lists the highest recomputed totals.
type TotalsRanker interface {
	TopTotals(ctx context.Context, limit, offset int64) ([]cache.RankedUser, error)
}

// RewardHandler handles reward report HTTP requests.
type RewardHandler struct {
	computer RewardComputer
	ranker   TotalsRanker
}

// NewRewardHandler creates a new RewardHandler.
// ranker may be nil when redis is disabled.
func NewRewardHandler(computer RewardComputer, ranker TotalsRanker) *RewardHandler {
	return &RewardHandler{
		computer: computer,
		ranker:   ranker,
	}
}

// RegisterRoutes registers the reward routes on the given group.
func (h *RewardHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/users/:id/rewards", h.GetUserRewards)
	g.POST("/rewards/recompute", h.Recompute)
	g.GET("/rewards/export.csv", h.ExportCSV)
	g.GET("/rewards/rates", h.GetRates)
	if h.ranker != nil {
		g.GET("/rewards/top", h.GetTopTotals)
	}
}

// UserRewardsResponse is the response for a single user report.
type UserRewardsResponse struct {
	domain.RewardBreakdown
	FromCache bool `json:"from_cache"`
}

// RecomputeRequest is the request body for batch recomputation.
type RecomputeRequest struct {
	UserIDs []string `json:"user_ids,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// RecomputeResponse is the response for batch recomputation.
type RecomputeResponse struct {
	Processed  int                       `json:"processed"`
	Succeeded  int                       `json:"succeeded"`
	Failed     int                       `json:"failed"`
	DurationMs int64                     `json:"duration_ms"`
	Failures   []application.UserFailure `json:"failures"`
	Results    []domain.RewardBreakdown  `json:"results,omitempty"`
}

// GetUserRewards handles GET /api/v1/users/:id/rewards
// returns the recomputed breakdown. ?fresh=true bypasses the cache.
func (h *RewardHandler) GetUserRewards(c echo.Context) error {
	fresh, _ := strconv.ParseBool(c.QueryParam("fresh"))

	output, err := h.computer.Execute(c.Request().Context(), application.ComputeRewardsInput{
		UserID: c.Param("id"),
		Fresh:  fresh,
	})
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, UserRewardsResponse{
		RewardBreakdown: output.Breakdown,
		FromCache:       output.FromCache,
	})
}

// Recompute handles POST /api/v1/rewards/recompute
// recomputes the listed users, or the directory's users when none are listed.
// per-user results are only returned for an explicit list.
func (h *RewardHandler) Recompute(c echo.Context) error {
	var req RecomputeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Limit < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must not be negative")
	}

	output, err := h.computer.ExecuteAll(c.Request().Context(), application.ComputeAllInput{
		UserIDs: req.UserIDs,
		Limit:   req.Limit,
	})
	if err != nil {
		return mapDomainError(err)
	}

	resp := RecomputeResponse{
		Processed:  output.Processed(),
		Succeeded:  len(output.Results),
		Failed:     len(output.Failures),
		DurationMs: output.Duration.Milliseconds(),
		Failures:   output.Failures,
	}
	if resp.Failures == nil {
		resp.Failures = []application.UserFailure{}
	}
	if len(req.UserIDs) > 0 {
		resp.Results = output.Results
	}

	return c.JSON(http.StatusOK, resp)
}

// csvHeader is the column order of the export.
var csvHeader = []string{
	"user_id",
	"posts", "likes", "comments", "shares", "friendships", "livestreams",
	"recurring_total", "welcome_bonus", "wallet_bonus", "total",
	"live_balance", "discrepancy",
	"dropped_malformed_timestamp", "dropped_invalid_actor", "dropped_below_quality", "dropped_invalid_livestream", "dropped_invalid_record",
}

// ExportCSV handles GET /api/v1/rewards/export.csv
// recomputes a batch and streams it as csv. ?user_id= may repeat; ?limit= bounds
// the directory listing. failed users are counted in the X-Failed-Users header.
func (h *RewardHandler) ExportCSV(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	output, err := h.computer.ExecuteAll(c.Request().Context(), application.ComputeAllInput{
		UserIDs: c.QueryParams()["user_id"],
		Limit:   limit,
	})
	if err != nil {
		return mapDomainError(err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="rewards.csv"`)
	res.Header().Set("X-Failed-Users", strconv.Itoa(len(output.Failures)))
	res.WriteHeader(http.StatusOK)

	return WriteCSV(res, output.Results)
}

// WriteCSV encodes breakdowns as csv, one row per user after a header row.
func WriteCSV(out io.Writer, breakdowns []domain.RewardBreakdown) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range breakdowns {
		if err := w.Write(csvRow(b)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func csvRow(b domain.RewardBreakdown) []string {
	itoa := strconv.Itoa
	points := func(p domain.Points) string { return strconv.FormatInt(p.Int64(), 10) }
	optional := func(p *domain.Points) string {
		if p == nil {
			return ""
		}
		return points(*p)
	}

	return []string{
		b.UserID,
		itoa(b.Counts.Posts), itoa(b.Counts.Likes), itoa(b.Counts.Comments),
		itoa(b.Counts.Shares), itoa(b.Counts.Friendships), itoa(b.Counts.Livestreams),
		points(b.RecurringTotal), points(b.WelcomeBonus), points(b.WalletBonus), points(b.Total),
		optional(b.LiveBalance), optional(b.Discrepancy),
		itoa(b.Dropped.MalformedTimestamp), itoa(b.Dropped.InvalidActor),
		itoa(b.Dropped.BelowQuality), itoa(b.Dropped.InvalidLivestream), itoa(b.Dropped.InvalidRecord),
	}
}

// GetRates handles GET /api/v1/rewards/rates
// returns the rate table the engine computes with.
func (h *RewardHandler) GetRates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.computer.Rates())
}

// GetTopTotals handles GET /api/v1/rewards/top
// returns the highest recomputed totals from the redis ranking.
func (h *RewardHandler) GetTopTotals(c echo.Context) error {
	limit := int64(10)
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxTopLimit)
	}

	ranked, err := h.ranker.TopTotals(c.Request().Context(), limit, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "ranking unavailable").SetInternal(err)
	}
	if ranked == nil {
		ranked = []cache.RankedUser{}
	}

	return c.JSON(http.StatusOK, ranked)
}
