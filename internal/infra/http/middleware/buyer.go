package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/kovaleads/marketplace/internal/entity"
)

type contextKey string

const buyerKey contextKey = "buyer"

// BuyerContext reads the buyer profile the upstream auth gateway injects as
// a base64 JSON header. Requests without it never reach the marketplace
// handlers.
func BuyerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-Context")
		if raw == "" {
			http.Error(w, "missing user context", http.StatusForbidden)
			return
		}

		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			http.Error(w, "malformed user context", http.StatusForbidden)
			return
		}

		var buyer entity.Buyer
		if err := json.Unmarshal(decoded, &buyer); err != nil || buyer.ID == "" {
			http.Error(w, "malformed user context", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), buyerKey, &buyer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BuyerFromContext returns the buyer set by BuyerContext, or nil.
func BuyerFromContext(ctx context.Context) *entity.Buyer {
	buyer, _ := ctx.Value(buyerKey).(*entity.Buyer)
	return buyer
}
