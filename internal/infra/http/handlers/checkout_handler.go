package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kovaleads/marketplace/internal/infra/http/middleware"
	"github.com/kovaleads/marketplace/internal/usecase"
)

type CheckoutHandler struct {
	Reserve  *usecase.ReserveLeadsUseCase
	Checkout *usecase.CreateCheckoutUseCase
}

func NewCheckoutHandler(reserve *usecase.ReserveLeadsUseCase, checkout *usecase.CreateCheckoutUseCase) *CheckoutHandler {
	return &CheckoutHandler{Reserve: reserve, Checkout: checkout}
}

// HandleReserve claims inventory for the given cart lines. All-or-nothing:
// a partial claim is rolled back and reported as unavailable.
func (h *CheckoutHandler) HandleReserve(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())

	var input struct {
		CartLineIDs []string `json:"cart_line_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	reserved, err := h.Reserve.Execute(r.Context(), buyer, input.CartLineIDs)
	if err != nil {
		middleware.RecordReservation("failed")
		respondError(w, err)
		return
	}

	middleware.RecordReservation("reserved")
	respondJSON(w, http.StatusOK, map[string]any{"reserved": reserved})
}

// HandleCreate turns reserved lines into a pending order and a hosted
// payment page.
func (h *CheckoutHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())

	var input usecase.CreateCheckoutInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	output, err := h.Checkout.Execute(r.Context(), buyer, input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, output)
}
