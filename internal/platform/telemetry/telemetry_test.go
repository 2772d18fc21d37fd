package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveMutation(t *testing.T) {
	m := New()
	m.ObserveMutation("reassign", "ok")
	m.ObserveMutation("reassign", "ok")
	m.ObserveMutation("move", "double_booking")

	if got := testutil.ToFloat64(m.mutationsTotal.WithLabelValues("reassign", "ok")); got != 2 {
		t.Fatalf("expected 2 ok reassigns, got %v", got)
	}
	if got := testutil.ToFloat64(m.mutationsTotal.WithLabelValues("move", "double_booking")); got != 1 {
		t.Fatalf("expected 1 double_booking move, got %v", got)
	}
}

func TestObserveExpansion(t *testing.T) {
	m := New()
	m.ObserveExpansion(4, 1, 2)

	if got := testutil.ToFloat64(m.expansionVisits.WithLabelValues("created")); got != 4 {
		t.Fatalf("expected 4 created, got %v", got)
	}
	if got := testutil.ToFloat64(m.expansionVisits.WithLabelValues("skipped")); got != 1 {
		t.Fatalf("expected 1 skipped, got %v", got)
	}
	if got := testutil.ToFloat64(m.expansionVisits.WithLabelValues("failed")); got != 2 {
		t.Fatalf("expected 2 failed, got %v", got)
	}
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/v1/visits/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/visits/v-1", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/visits/:id", "200"))
	if got != 3 {
		t.Fatalf("expected 3 requests recorded, got %v", got)
	}
}

func TestMiddlewareUsesErrorStatus(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "conflict")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/boom", "409"))
	if got != 1 {
		t.Fatalf("expected conflict status to be recorded, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveUpstreamError()

	e := echo.New()
	e.GET("/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "houkan_upstream_errors_total 1") {
		t.Fatalf("expected upstream error counter in exposition, body:\n%s", rec.Body.String())
	}
}
