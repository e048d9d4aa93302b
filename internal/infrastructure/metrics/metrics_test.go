package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordUserComputed("computed")
	m.RecordUserComputed("computed")
	m.RecordUserComputed("failed")
	m.RecordEventsDropped("malformed_timestamp", 3)
	m.RecordEventsDropped("below_quality", 0)
	m.RecordDiscrepancy()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UsersComputedTotal.WithLabelValues("computed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsersComputedTotal.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsDroppedTotal.WithLabelValues("malformed_timestamp")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.EventsDroppedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiscrepanciesTotal))
}

func TestMiddleware_RecordsRoutePatternAndErrorStatus(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(Middleware(m))
	e.GET("/api/v1/users/:id/rewards", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/abc/rewards", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))

	// touching the expected series must not create a second one
	m.HTTPRequestDuration.WithLabelValues(http.MethodGet, "/api/v1/users/:id/rewards", "404")
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}
