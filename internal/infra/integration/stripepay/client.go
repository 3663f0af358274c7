package stripepay

import (
	"context"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Client wraps the Stripe API for checkout-session creation and webhook
// verification.
type Client struct {
	webhookSecret string
}

func NewClient(apiKey, webhookSecret string) *Client {
	stripe.Key = apiKey
	return &Client{webhookSecret: webhookSecret}
}

// CreateCheckoutSession opens a hosted payment page for the order total.
// payment_intent is expanded so the caller can stamp it on the order before
// the buyer even reaches the page.
func (c *Client) CreateCheckoutSession(_ context.Context, input CheckoutSessionInput) (*CheckoutSessionOutput, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(input.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(input.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Marketplace leads"),
						Description: stripe.String(input.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
	}
	params.AddExpand("payment_intent")

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripepay: create checkout session: %w", err)
	}

	out := &CheckoutSessionOutput{
		SessionID: s.ID,
		URL:       s.URL,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out, nil
}

// ParseEvent verifies the webhook signature and returns the event.
func (c *Client) ParseEvent(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, c.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("stripepay: webhook signature verification failed: %w", err)
	}
	return event, nil
}

// ParsePaymentIntent decodes the payment intent carried by a
// payment_intent.* event.
func ParsePaymentIntent(event stripe.Event) (*stripe.PaymentIntent, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripepay: parse payment intent event: %w", err)
	}
	return &pi, nil
}
