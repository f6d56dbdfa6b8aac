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

// AccountHandler handles HTTP requests for account endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the accountService.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependency.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// Accounts handles GET requests to retrieve all accounts.
//
// Endpoint: GET /api/account
// Response: 200 OK with array of Account
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) Accounts(w http.ResponseWriter, _ *http.Request) {
	accounts, err := h.accountService.GetAccounts()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve accounts", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, accounts)
}

// GetAccount handles GET requests to retrieve a single account by ID.
//
// Endpoint: GET /api/account/{uuid}
// Response: 200 OK with Account
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	account, err := h.accountService.GetAccount(accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// CreateAccount handles POST requests to create a new account.
//
// Endpoint: POST /api/account
// Request Body: CreateAccountRequest (nickname, description, currency)
// Response: 201 Created with Account
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateAccountRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateAccount(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	account := model.Account{
		Nickname:    req.Nickname,
		Description: req.Description,
		Currency:    req.Currency,
	}
	if err := h.accountService.CreateAccount(&account); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create account", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, account)
}

// AccountPositions handles GET requests to retrieve all positions of an account.
//
// Endpoint: GET /api/account/{uuid}/positions
// Response: 200 OK with array of PositionDetail
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) AccountPositions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	positions, err := h.accountService.GetPositions(accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve positions", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}

// OpenPosition handles POST requests to open a position of an account in an asset.
// Opening is idempotent: an existing position for the same account and asset
// is returned unchanged.
//
// Endpoint: POST /api/position
// Request Body: OpenPositionRequest (accountId, assetId)
// Response: 201 Created with Position
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the account does not exist
// Error: 500 Internal Server Error if creation fails
func (h *AccountHandler) OpenPosition(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.OpenPositionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateOpenPosition(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	position, err := h.accountService.OpenPosition(req.AccountID, req.AssetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to open position", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, position)
}
