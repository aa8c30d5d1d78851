package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/propex/propex/internal/domain"
	"github.com/propex/propex/internal/service"
)

// WatchlistHandler handles HTTP requests for watchlist endpoints.
type WatchlistHandler struct {
	watchlistSvc *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistSvc *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{watchlistSvc: watchlistSvc}
}

// addWatchlistRequest is the JSON request body for
// POST /accounts/{user_id}/watchlist.
type addWatchlistRequest struct {
	PropertyID int64 `json:"property_id"`
}

// Add handles POST /accounts/{user_id}/watchlist.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req addWatchlistRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	created, err := h.watchlistSvc.Add(userID, req.PropertyID)
	if err != nil {
		mapWatchlistError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, map[string]any{
		"user_id":     userID,
		"property_id": req.PropertyID,
		"watched":     true,
	})
}

// Remove handles DELETE /accounts/{user_id}/watchlist/{property_id}.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	propertyID, err := strconv.ParseInt(chi.URLParam(r, "property_id"), 10, 64)
	if err != nil || propertyID <= 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "property_id must be a positive integer")
		return
	}

	removed, err := h.watchlistSvc.Remove(userID, propertyID)
	if err != nil {
		mapWatchlistError(w, err)
		return
	}
	if !removed {
		WriteError(w, http.StatusNotFound, "not_watched", "property is not on the watchlist")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":     userID,
		"property_id": propertyID,
		"watched":     false,
	})
}

// List handles GET /accounts/{user_id}/watchlist.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	properties, err := h.watchlistSvc.List(userID)
	if err != nil {
		mapWatchlistError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":    userID,
		"properties": properties,
	})
}

// mapWatchlistError maps domain errors to HTTP responses for watchlist
// endpoints.
func mapWatchlistError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, domain.ErrPropertyNotFound):
		WriteError(w, http.StatusNotFound, "property_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
