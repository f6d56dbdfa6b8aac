package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/service"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/testutil"
)

func TestSystemHandler_Health(t *testing.T) {
	t.Run("returns healthy when the database responds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(service.NewSystemService(db))

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response HealthResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Status != "healthy" {
			t.Errorf("Expected status healthy, got %s", response.Status)
		}
		if response.Database != "connected" {
			t.Errorf("Expected database connected, got %s", response.Database)
		}
	})

	t.Run("returns 503 when the database is down", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(service.NewSystemService(db))
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}

		var response HealthResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Status != "unhealthy" {
			t.Errorf("Expected status unhealthy, got %s", response.Status)
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewSystemHandler(service.NewSystemService(db))

	req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
	w := httptest.NewRecorder()

	handler.Version(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response VersionResponse
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&response)

	if response.Version == "" {
		t.Error("Expected a non-empty version")
	}
}
