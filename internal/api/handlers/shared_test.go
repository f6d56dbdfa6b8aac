package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("Failed to parse test date %q: %v", value, err)
	}
	return parsed
}

// withURLParam attaches a chi URL parameter to a request that already
// carries query parameters.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// TestParseDateRange tests the shared window parsing used by every history
// endpoint. This is an internal test (package handlers, not handlers_test)
// because parseDateRange is unexported.
func TestParseDateRange(t *testing.T) {
	t.Run("parses explicit dates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start_date=2024-01-01&end_date=2024-02-01", nil)

		startDate, endDate, err := parseDateRange(req)
		if err != nil {
			t.Fatalf("parseDateRange() returned unexpected error: %v", err)
		}

		if !startDate.Equal(date(t, "2024-01-01")) {
			t.Errorf("Expected start 2024-01-01, got %s", startDate)
		}
		if !endDate.Equal(date(t, "2024-02-01")) {
			t.Errorf("Expected end 2024-02-01, got %s", endDate)
		}
	})

	t.Run("accepts RFC3339 timestamps", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start_date=2024-01-01T00:00:00Z&end_date=2024-02-01T12:30:00Z", nil)

		_, endDate, err := parseDateRange(req)
		if err != nil {
			t.Fatalf("parseDateRange() returned unexpected error: %v", err)
		}
		if endDate.Day() != 1 || endDate.Hour() != 12 {
			t.Errorf("Expected the full timestamp to survive parsing, got %s", endDate)
		}
	})

	t.Run("missing end_date defaults to today", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start_date=2024-01-01", nil)

		_, endDate, err := parseDateRange(req)
		if err != nil {
			t.Fatalf("parseDateRange() returned unexpected error: %v", err)
		}

		now := time.Now().UTC()
		if endDate.Year() != now.Year() || endDate.YearDay() != now.YearDay() {
			t.Errorf("Expected end date today, got %s", endDate)
		}
	})

	t.Run("missing start_date defaults to thirty days before the end", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?end_date=2024-02-01", nil)

		startDate, _, err := parseDateRange(req)
		if err != nil {
			t.Fatalf("parseDateRange() returned unexpected error: %v", err)
		}
		if !startDate.Equal(date(t, "2024-01-02")) {
			t.Errorf("Expected start 2024-01-02, got %s", startDate)
		}
	})

	t.Run("rejects a start after the end", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start_date=2024-03-01&end_date=2024-02-01", nil)

		if _, _, err := parseDateRange(req); err == nil {
			t.Error("Expected an error for an inverted window")
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?start_date=January+1st", nil)

		if _, _, err := parseDateRange(req); err == nil {
			t.Error("Expected an error for a malformed date")
		}
	})
}
