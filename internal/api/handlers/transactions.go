package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/request"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/response"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/service"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// CreateTransaction handles POST requests to record a new buy or sell.
// The position quantity, account balance and tax lots are updated in the
// same database transaction as the new record.
//
// Endpoint: POST /api/transaction
// Request Body: CreateTransactionRequest
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation fails or the sell exceeds the held quantity
// Error: 404 Not Found if the position does not exist
// Error: 500 Internal Server Error if creation fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	executedAt, err := validation.ParseExecutionTime(req.ExecutedAt)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid executedAt", err.Error())
		return
	}

	transaction := model.Transaction{
		PositionID:             req.PositionID,
		ExecutedAt:             executedAt,
		Quantity:               req.Quantity,
		Price:                  req.Price,
		TransactionCosts:       req.TransactionCosts,
		LocalValue:             req.LocalValue,
		ValueInAccountCurrency: req.ValueInAccountCurrency,
		TotalInAccountCurrency: req.TotalInAccountCurrency,
		OrderID:                req.OrderID,
	}
	if err := h.transactionService.CreateTransaction(r.Context(), &transaction); err != nil {
		respondTransactionError(w, err, "failed to create transaction")
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// CorrectTransaction handles PUT requests to replace the mutable fields of
// an existing record and reconcile every derived figure.
//
// Endpoint: PUT /api/transaction/{uuid}
// Request Body: CorrectTransactionRequest
// Response: 200 OK with Transaction
// Error: 400 Bad Request if validation fails or the corrected log oversells
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if the correction fails
func (h *TransactionHandler) CorrectTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CorrectTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCorrectTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	executedAt, err := validation.ParseExecutionTime(req.ExecutedAt)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid executedAt", err.Error())
		return
	}

	transaction := model.Transaction{
		ID:                     transactionID,
		ExecutedAt:             executedAt,
		Quantity:               req.Quantity,
		Price:                  req.Price,
		TransactionCosts:       req.TransactionCosts,
		LocalValue:             req.LocalValue,
		ValueInAccountCurrency: req.ValueInAccountCurrency,
		TotalInAccountCurrency: req.TotalInAccountCurrency,
	}
	if err := h.transactionService.CorrectTransaction(r.Context(), &transaction); err != nil {
		respondTransactionError(w, err, "failed to correct transaction")
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove a single record.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if deletion fails
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	if err := h.transactionService.DeleteTransaction(r.Context(), transactionID); err != nil {
		respondTransactionError(w, err, "failed to delete transaction")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// DeleteTransactions handles DELETE requests to remove a batch of records
// atomically.
//
// Endpoint: DELETE /api/transaction
// Request Body: DeleteTransactionsRequest (ids)
// Response: 204 No Content
// Error: 400 Bad Request if the ID list is empty or malformed
// Error: 404 Not Found if any transaction is missing
// Error: 500 Internal Server Error if deletion fails
func (h *TransactionHandler) DeleteTransactions(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.DeleteTransactionsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUUIDs(req.IDs); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.transactionService.DeleteTransactions(r.Context(), req.IDs); err != nil {
		respondTransactionError(w, err, "failed to delete transactions")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

func respondTransactionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrPositionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPositionNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrSoldBeforeBought),
		errors.Is(err, apperrors.ErrZeroQuantity),
		errors.Is(err, apperrors.ErrExchangeRateNotFound):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback, err.Error())
	}
}
