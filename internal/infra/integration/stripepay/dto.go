package stripepay

// CheckoutSessionInput creates one hosted checkout session charging the full
// order total as a single line item.
type CheckoutSessionInput struct {
	CustomerID  string
	Description string
	AmountCents int64
	SuccessURL  string
	CancelURL   string
}

// CheckoutSessionOutput is the hosted page plus the payment intent the
// webhook will later settle against.
type CheckoutSessionOutput struct {
	SessionID       string
	PaymentIntentID string
	URL             string
}
