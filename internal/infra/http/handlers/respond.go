package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kovaleads/marketplace/internal/usecase"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps the usecase error taxonomy onto status codes. NoContent
// deliberately carries no body; internal errors log the cause and hide it.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case usecase.IsNoContent(err):
		w.WriteHeader(http.StatusNoContent)
	case usecase.IsBadRequest(err):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case usecase.IsForbidden(err):
		respondJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case usecase.IsConflict(err):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		log.Printf("❌ internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
