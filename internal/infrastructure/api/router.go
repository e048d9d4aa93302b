package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joacominatel/rewards/internal/infrastructure/logging"
	"github.com/joacominatel/rewards/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for route registration.
type RouterConfig struct {
	Computer        RewardComputer
	Ranker          TotalsRanker
	Validator       TokenValidator
	ReadinessChecks map[string]ReadinessCheck
	Logger          *logging.Logger
	Metrics         *metrics.Metrics
}

// RegisterRoutes sets up all API routes on the server.
// follows RESTful conventions and groups routes logically.
func RegisterRoutes(e *echo.Echo, config RouterConfig) {
	// prometheus metrics endpoint (no auth, standard scraping path)
	if config.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
			config.Metrics.Registry,
			promhttp.HandlerOpts{
				Registry:          config.Metrics.Registry,
				EnableOpenMetrics: true,
			},
		)))

		// apply metrics middleware to all routes
		e.Use(metrics.Middleware(config.Metrics))
	}

	// health endpoints (no auth required)
	RegisterHealthRoutes(e, config.ReadinessChecks)

	// api v1 group, every report endpoint is admin only
	v1 := e.Group("/api/v1")
	v1.Use(AdminAuthMiddleware(AuthConfig{Validator: config.Validator}))

	rewardHandler := NewRewardHandler(config.Computer, config.Ranker)
	rewardHandler.RegisterRoutes(v1)

	config.Logger.Info("api routes registered",
		"version", "v1",
		"health_endpoints", []string{"/health", "/ready"},
		"metrics_enabled", config.Metrics != nil,
		"ranking_enabled", config.Ranker != nil,
		"api_prefix", "/api/v1",
	)
}
