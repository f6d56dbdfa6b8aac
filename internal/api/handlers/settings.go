package handlers

import (
	"net/http"
	"strings"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/request"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/response"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/service"
)

// SettingHandler handles HTTP requests for system settings and the manual
// price refresh trigger.
type SettingHandler struct {
	settingService *service.SettingService
	priceService   *service.PriceService
}

// NewSettingHandler creates a new SettingHandler with the provided service dependencies.
func NewSettingHandler(settingService *service.SettingService, priceService *service.PriceService) *SettingHandler {
	return &SettingHandler{
		settingService: settingService,
		priceService:   priceService,
	}
}

// SetEODToken handles PUT requests to store the EODHD API token. The token
// is encrypted before it is written to the database.
//
// Endpoint: PUT /api/settings/eod-token
// Request Body: SetEODTokenRequest (token)
// Response: 204 No Content
// Error: 400 Bad Request if the token is empty
// Error: 500 Internal Server Error if storing fails
func (h *SettingHandler) SetEODToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetEODTokenRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.Token) == "" {
		response.RespondError(w, http.StatusBadRequest, "token is required", "")
		return
	}

	if err := h.settingService.SetEODToken(req.Token); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to store token", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RefreshPrices handles POST requests to trigger an immediate price and
// exchange-rate refresh, outside the scheduled run.
//
// Endpoint: POST /api/settings/refresh-prices
// Response: 202 Accepted
// Error: 500 Internal Server Error if the refresh fails
func (h *SettingHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	if err := h.priceService.RefreshPrices(r.Context()); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to refresh prices", err.Error())
		return
	}
	if err := h.priceService.RefreshExchangeRates(r.Context()); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to refresh exchange rates", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}
