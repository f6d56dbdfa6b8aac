package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/service"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/testutil"
)

func TestSettingHandler_SetEODToken(t *testing.T) {
	setupHandler := func(t *testing.T) (*SettingHandler, *service.SettingService) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		settingService := testutil.NewTestSettingService(t, db)
		return NewSettingHandler(settingService, nil), settingService
	}

	t.Run("stores the token encrypted and round-trips it", func(t *testing.T) {
		handler, settingService := setupHandler(t)

		body := bytes.NewBufferString(`{"token":"demo-api-token"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/settings/eod-token", body)
		w := httptest.NewRecorder()

		handler.SetEODToken(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}

		token, err := settingService.EODToken()
		if err != nil {
			t.Fatalf("EODToken() returned unexpected error: %v", err)
		}
		if token != "demo-api-token" {
			t.Errorf("Expected the stored token to decrypt to demo-api-token, got %q", token)
		}

		// The value at rest must not be the plaintext token.
		stored, err := settingService.GetSetting("eod_api_token")
		if err != nil {
			t.Fatalf("GetSetting() returned unexpected error: %v", err)
		}
		if stored.Value == "demo-api-token" {
			t.Error("Expected the stored value to be encrypted")
		}
	})

	t.Run("returns 400 for an empty token", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := bytes.NewBufferString(`{"token":"  "}`)
		req := httptest.NewRequest(http.MethodPut, "/api/settings/eod-token", body)
		w := httptest.NewRecorder()

		handler.SetEODToken(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
