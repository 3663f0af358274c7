package handlers

import (
	"net/http"

	"github.com/kovaleads/marketplace/internal/infra/http/middleware"
	"github.com/kovaleads/marketplace/internal/usecase"
)

type StockHandler struct {
	VerifyStock *usecase.VerifyStockUseCase
}

func NewStockHandler(verifyStock *usecase.VerifyStockUseCase) *StockHandler {
	return &StockHandler{VerifyStock: verifyStock}
}

// HandleVerify returns the live availability for every line in the buyer's
// cart, keyed by cart-line id.
func (h *StockHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	buyer := middleware.BuyerFromContext(r.Context())

	result, err := h.VerifyStock.Execute(r.Context(), buyer)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
