package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kovaleads/marketplace/internal/infra/http/middleware"
	"github.com/kovaleads/marketplace/internal/usecase"
)

type MarketplaceHandler struct {
	Browse *usecase.BrowseUseCase
}

func NewMarketplaceHandler(browse *usecase.BrowseUseCase) *MarketplaceHandler {
	return &MarketplaceHandler{Browse: browse}
}

// HandleStates lists per-state availability. Optional ?states=CA,TX filter.
func (h *MarketplaceHandler) HandleStates(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())

	var states []string
	if raw := r.URL.Query().Get("states"); raw != "" {
		states = strings.Split(raw, ",")
	}

	rows, err := h.Browse.StateAvailability(r.Context(), buyer, states)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// HandleBuckets breaks one state down by age bucket.
func (h *MarketplaceHandler) HandleBuckets(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())
	state := chi.URLParam(r, "state")

	rows, err := h.Browse.BucketAvailability(r.Context(), buyer, state)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
