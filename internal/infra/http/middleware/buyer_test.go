package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuyerContextRejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a buyer")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/cart", nil)
	BuyerContext(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBuyerContextRejectsMalformedHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a bad buyer header")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("X-User-Context", "not base64 json")
	BuyerContext(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBuyerContextParsesProfile(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte(
		`{"id":"buyer-1","name":"Jordan Smith","email":"jordan@agency.test","stripe_customer_id":"cus_123","lead_agent_ids":[42]}`,
	))

	var seen bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buyer := BuyerFromContext(r.Context())
		assert.NotNil(t, buyer)
		assert.Equal(t, "buyer-1", buyer.ID)
		assert.Equal(t, []int64{42}, buyer.LeadAgentIDs)
		seen = true
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("X-User-Context", payload)
	BuyerContext(next).ServeHTTP(rec, req)

	assert.True(t, seen)
	assert.Equal(t, http.StatusOK, rec.Code)
}
