package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/service"
)

// AccountHandler handles HTTP requests for account, funds, portfolio, and
// order-listing endpoints.
type AccountHandler struct {
	accountSvc   *service.AccountService
	portfolioSvc *service.PortfolioService
	orderSvc     *service.OrderService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	accountSvc *service.AccountService,
	portfolioSvc *service.PortfolioService,
	orderSvc *service.OrderService,
) *AccountHandler {
	return &AccountHandler{
		accountSvc:   accountSvc,
		portfolioSvc: portfolioSvc,
		orderSvc:     orderSvc,
	}
}

// openAccountRequest is the JSON request body for POST /accounts.
type openAccountRequest struct {
	UserID         int64            `json:"user_id"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
}

// accountResponse is the JSON representation of an account.
type accountResponse struct {
	UserID    int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
	CreatedAt string          `json:"created_at"`
}

// adjustFundsRequest is the JSON request body for POST /accounts/{user_id}/funds.
type adjustFundsRequest struct {
	Action string          `json:"action"`
	Amount decimal.Decimal `json:"amount"`
}

// fundsResponse is the JSON response after a funds adjustment.
type fundsResponse struct {
	UserID  int64           `json:"user_id"`
	Action  string          `json:"action"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// OpenAccount handles POST /accounts.
func (h *AccountHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	initial := decimal.Zero
	if req.InitialBalance != nil {
		initial = *req.InitialBalance
	}

	account, err := h.accountSvc.OpenAccount(req.UserID, initial)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildAccountResponse(account))
}

// GetAccount handles GET /accounts/{user_id}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	account, err := h.accountSvc.GetAccount(userID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildAccountResponse(account))
}

// AdjustFunds handles POST /accounts/{user_id}/funds.
func (h *AccountHandler) AdjustFunds(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req adjustFundsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	balance, err := h.accountSvc.AdjustFunds(userID, req.Action, req.Amount)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, fundsResponse{
		UserID:  userID,
		Action:  req.Action,
		Amount:  req.Amount,
		Balance: balance,
	})
}

// GetPortfolio handles GET /accounts/{user_id}/portfolio.
func (h *AccountHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.portfolioSvc.GetSummary(userID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

// listOrdersResponse is the JSON response for GET /accounts/{user_id}/orders.
type listOrdersResponse struct {
	Orders []orderResponse `json:"orders"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Total  int             `json:"total"`
}

// ListOrders handles GET /accounts/{user_id}/orders with optional status,
// page, and limit query parameters.
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var status *domain.OrderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.OrderStatus(s)
		status = &st
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "page must be an integer")
			return
		}
		page = v
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be an integer")
			return
		}
		limit = v
	}

	orders, total, err := h.orderSvc.ListOrders(userID, status, page, limit)
	if err != nil {
		mapOrderError(w, err)
		return
	}

	resp := listOrdersResponse{
		Orders: make([]orderResponse, len(orders)),
		Page:   page,
		Limit:  limit,
		Total:  total,
	}
	for i, o := range orders {
		resp.Orders[i] = buildOrderResponse(o)
	}

	WriteJSON(w, http.StatusOK, resp)
}

func buildAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		UserID:    a.UserID,
		Balance:   a.Balance,
		Reserved:  a.Reserved,
		Available: a.Available(),
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// parseUserID extracts and validates the user_id path parameter. On failure
// it writes the error response and returns false.
func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "user_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "user_id must be a positive integer")
		return 0, false
	}
	return id, true
}

// mapAccountError maps domain errors to HTTP responses for account endpoints.
func mapAccountError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		WriteError(w, http.StatusConflict, "user_already_exists", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusConflict, "insufficient_funds", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
