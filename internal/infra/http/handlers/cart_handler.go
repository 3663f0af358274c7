package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kovaleads/marketplace/internal/infra/http/middleware"
	"github.com/kovaleads/marketplace/internal/usecase"
)

type CartHandler struct {
	Cart *usecase.CartUseCase
}

func NewCartHandler(cart *usecase.CartUseCase) *CartHandler {
	return &CartHandler{Cart: cart}
}

func (h *CartHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())

	items, err := h.Cart.ListItems(r.Context(), buyer.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())

	var input usecase.AddToCartInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	if err := h.Cart.AddItem(r.Context(), buyer, input); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *CartHandler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())
	lineID := chi.URLParam(r, "lineId")

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	if err := h.Cart.UpdateQuantity(r.Context(), buyer.ID, lineID, input.Quantity); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())
	lineID := chi.URLParam(r, "lineId")

	if err := h.Cart.RemoveItem(r.Context(), buyer.ID, lineID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
