package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/response"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/service"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/timeseries"
)

// PositionHandler handles HTTP requests for position endpoints, including
// the reconstructed history series.
type PositionHandler struct {
	accountService     *service.AccountService
	transactionService *service.TransactionService
	historyService     *service.PositionHistoryService
}

// NewPositionHandler creates a new PositionHandler with the provided service dependencies.
func NewPositionHandler(
	accountService *service.AccountService,
	transactionService *service.TransactionService,
	historyService *service.PositionHistoryService,
) *PositionHandler {
	return &PositionHandler{
		accountService:     accountService,
		transactionService: transactionService,
		historyService:     historyService,
	}
}

// GetPosition handles GET requests to retrieve a single position with its
// asset and currency details.
//
// Endpoint: GET /api/position/{uuid}
// Response: 200 OK with PositionDetail
// Error: 404 Not Found if position not found
// Error: 500 Internal Server Error if retrieval fails
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	positionID := chi.URLParam(r, "uuid")

	position, err := h.accountService.GetPosition(positionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPositionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPositionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve position", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, position)
}

// PositionTransactions handles GET requests to retrieve the transaction log
// of a position, newest first.
//
// Endpoint: GET /api/position/{uuid}/transactions
// Response: 200 OK with array of Transaction
// Error: 500 Internal Server Error if retrieval fails
func (h *PositionHandler) PositionTransactions(w http.ResponseWriter, r *http.Request) {
	positionID := chi.URLParam(r, "uuid")

	transactions, err := h.transactionService.GetTransactionsForPosition(positionID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve transactions", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// PositionLots handles GET requests to retrieve the tax lots of a position.
//
// Endpoint: GET /api/position/{uuid}/lots
// Response: 200 OK with array of Lot
// Error: 500 Internal Server Error if retrieval fails
func (h *PositionHandler) PositionLots(w http.ResponseWriter, r *http.Request) {
	positionID := chi.URLParam(r, "uuid")

	lots, err := h.transactionService.GetLotsForPosition(positionID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve lots", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}

// HistoryPointResponse is one day of a reconstructed history series.
type HistoryPointResponse struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// QuantityHistory handles GET requests for the daily quantity series of a position.
//
// Endpoint: GET /api/position/{uuid}/history/quantity?start_date=&end_date=
// Response: 200 OK with array of HistoryPointResponse, newest first
// Error: 400 Bad Request if the window is invalid or ends before the latest transaction
// Error: 404 Not Found if position not found
// Error: 500 Internal Server Error if reconstruction fails
func (h *PositionHandler) QuantityHistory(w http.ResponseWriter, r *http.Request) {
	h.respondHistory(w, r, h.historyService.QuantityHistory)
}

// ValueHistory handles GET requests for the daily market value series of a
// position in the asset's currency.
//
// Endpoint: GET /api/position/{uuid}/history/value?start_date=&end_date=
// Response: 200 OK with array of HistoryPointResponse, newest first
func (h *PositionHandler) ValueHistory(w http.ResponseWriter, r *http.Request) {
	h.respondHistory(w, r, h.historyService.ValueHistory)
}

// ValueHistoryInAccountCurrency handles GET requests for the daily market
// value series of a position converted to the account currency.
//
// Endpoint: GET /api/position/{uuid}/history/value-account-currency?start_date=&end_date=
// Response: 200 OK with array of HistoryPointResponse, newest first
// Error: 400 Bad Request if no exchange rate data exists for the currency pair
func (h *PositionHandler) ValueHistoryInAccountCurrency(w http.ResponseWriter, r *http.Request) {
	h.respondHistory(w, r, h.historyService.ValueHistoryInAccountCurrency)
}

func (h *PositionHandler) respondHistory(
	w http.ResponseWriter,
	r *http.Request,
	reconstruct func(positionID string, from, to time.Time) ([]timeseries.Point, error),
) {
	positionID := chi.URLParam(r, "uuid")

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	points, err := reconstruct(positionID, startDate, endDate)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPositionNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPositionNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrHistoryWindowTooEarly),
			errors.Is(err, apperrors.ErrExchangeRateNotFound):
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to reconstruct history", err.Error())
		}
		return
	}

	history := make([]HistoryPointResponse, 0, len(points))
	for _, p := range points {
		history = append(history, HistoryPointResponse{
			Date:  p.Date.Format(timeseries.DateFormat),
			Value: p.Value,
		})
	}
	response.RespondJSON(w, http.StatusOK, history)
}
