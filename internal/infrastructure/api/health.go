package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const serviceName = "rewards"

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ReadinessCheck probes one dependency.
type ReadinessCheck func(ctx context.Context) error

// RegisterHealthRoutes registers health check endpoints.
// these are public and don't require authentication.
func RegisterHealthRoutes(e *echo.Echo, checks map[string]ReadinessCheck) {
	e.GET("/health", healthHandler)
	e.GET("/ready", readyHandler(checks))
}

// healthHandler returns the basic health status.
// used for liveness probes.
func healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
	})
}

// readyHandler runs every dependency check.
// used for readiness probes; any failing check returns 503.
func readyHandler(checks map[string]ReadinessCheck) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := HealthResponse{
			Status:  "ready",
			Service: serviceName,
			Checks:  make(map[string]string, len(checks)),
		}
		code := http.StatusOK

		for name, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
			err := check(ctx)
			cancel()

			if err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "not_ready"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		return c.JSON(code, resp)
	}
}
