package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/service"
)

// PropertyHandler handles HTTP requests for catalog and market-data
// endpoints.
type PropertyHandler struct {
	propertySvc *service.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(propertySvc *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertySvc: propertySvc}
}

// ListProperties handles GET /properties.
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"properties": h.propertySvc.ListProperties(),
	})
}

// GetProperty handles GET /properties/{property_id}.
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := parsePropertyID(w, r)
	if !ok {
		return
	}

	p, err := h.propertySvc.GetProperty(propertyID)
	if err != nil {
		mapPropertyError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, p)
}

// depthResponse is the JSON response for GET /properties/{property_id}/depth.
type depthResponse struct {
	PropertyID int64                `json:"property_id"`
	Side       string               `json:"side"`
	Depth      []service.DepthEntry `json:"depth"`
}

// GetDepth handles GET /properties/{property_id}/depth?side=buy|sell.
func (h *PropertyHandler) GetDepth(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := parsePropertyID(w, r)
	if !ok {
		return
	}
	side := r.URL.Query().Get("side")

	depth, err := h.propertySvc.GetDepth(propertyID, domain.OrderSide(side))
	if err != nil {
		mapPropertyError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, depthResponse{
		PropertyID: propertyID,
		Side:       side,
		Depth:      depth,
	})
}

// ListTrades handles GET /properties/{property_id}/trades.
func (h *PropertyHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := parsePropertyID(w, r)
	if !ok {
		return
	}

	trades, err := h.propertySvc.ListTrades(propertyID)
	if err != nil {
		mapPropertyError(w, err)
		return
	}

	out := make([]tradeResponse, len(trades))
	for i, t := range trades {
		out[i] = tradeResponse{
			TradeID:    t.TradeID,
			Price:      t.Price,
			Quantity:   t.Quantity,
			ExecutedAt: t.ExecutedAt.UTC().Format(time.RFC3339),
		}
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"property_id": propertyID,
		"trades":      out,
	})
}

// parsePropertyID extracts and validates the property_id path parameter.
func parsePropertyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "property_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "property_id must be a positive integer")
		return 0, false
	}
	return id, true
}

// mapPropertyError maps domain errors to HTTP responses for property
// endpoints.
func mapPropertyError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	if errors.Is(err, domain.ErrPropertyNotFound) {
		WriteError(w, http.StatusNotFound, "property_not_found", err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
