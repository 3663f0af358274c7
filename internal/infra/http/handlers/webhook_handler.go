package handlers

import (
	"io"
	"log"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/kovaleads/marketplace/internal/infra/http/middleware"
	"github.com/kovaleads/marketplace/internal/infra/integration/stripepay"
	"github.com/kovaleads/marketplace/internal/usecase"
)

// maxWebhookBody caps the payload read, per Stripe's own recommendation.
const maxWebhookBody = 65536

type WebhookHandler struct {
	Stripe   *stripepay.Client
	Finalize *usecase.FinalizeCheckoutUseCase
}

func NewWebhookHandler(client *stripepay.Client, finalize *usecase.FinalizeCheckoutUseCase) *WebhookHandler {
	return &WebhookHandler{Stripe: client, Finalize: finalize}
}

// Handle processes payment events. It always answers 200 once the signature
// checks out: fulfillment problems page the operator instead of triggering
// provider retries.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	event, err := h.Stripe.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Printf("❌ webhook signature rejected: %v", err)
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		pi, err := stripepay.ParsePaymentIntent(event)
		if err != nil {
			log.Printf("❌ %v", err)
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := h.Finalize.HandlePaymentSucceeded(r.Context(), paymentEvent(event.ID, pi)); err != nil {
			middleware.RecordFinalization("failed")
			log.Printf("❌ finalize failed for %s: %v", pi.ID, err)
		} else {
			middleware.RecordFinalization("succeeded")
		}

	case "payment_intent.payment_failed":
		pi, err := stripepay.ParsePaymentIntent(event)
		if err != nil {
			log.Printf("❌ %v", err)
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := h.Finalize.HandlePaymentFailed(r.Context(), paymentEvent(event.ID, pi)); err != nil {
			log.Printf("❌ payment-failed handling for %s: %v", pi.ID, err)
		}

	case "payment_intent.created":
		// Informational only.

	default:
		log.Printf("ignoring webhook event type %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

func paymentEvent(eventID string, pi *stripe.PaymentIntent) usecase.PaymentEvent {
	ev := usecase.PaymentEvent{
		EventID:             eventID,
		PaymentIntentID:     pi.ID,
		AmountCents:         pi.Amount,
		AmountReceivedCents: pi.AmountReceived,
		Status:              string(pi.Status),
	}
	if pi.Customer != nil {
		ev.CustomerID = pi.Customer.ID
	}
	if pm := pi.PaymentMethod; pm != nil {
		ev.PaymentMethod = string(pm.Type)
		if pm.Card != nil {
			ev.CardBrand = string(pm.Card.Brand)
			ev.CardLast4 = pm.Card.Last4
			ev.CardExpMonth = pm.Card.ExpMonth
			ev.CardExpYear = pm.Card.ExpYear
		}
	}
	return ev
}
