package usecase

import (
	"strconv"
	"time"
)

// PricingDetail is the marketplace pricing tier a cart line points at.
type PricingDetail struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       int    `json:"category"`
	SourceID       int    `json:"source_id"`
	Month          int    `json:"month"`
	Completed      bool   `json:"completed"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// AddToCartInput either creates a line or overwrites the quantity of the
// existing line for the same state and tier.
type AddToCartInput struct {
	PricingID string `json:"pricing_id"`
	State     string `json:"state"`
	Quantity  int    `json:"quantity"`
}

// CartItemOutput is one active cart line with its tier detail.
type CartItemOutput struct {
	ID             string `json:"id"`
	State          string `json:"state"`
	Quantity       int    `json:"quantity"`
	PricingID      string `json:"pricing_id"`
	Category       int    `json:"category"`
	SourceID       int    `json:"source_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Completed      bool   `json:"completed"`
	Month          int    `json:"month"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// ReservedLine reports one successfully reserved cart line.
type ReservedLine struct {
	CartLineID string `json:"id"`
	PricingID  string `json:"pricing_id"`
	BatchID    string `json:"reservation_batch_id"`
}

// CreateCheckoutInput starts a checkout for previously reserved lines.
// Items maps cart-line id to the reservation batch id returned by the
// reserve call.
type CreateCheckoutInput struct {
	Items            map[string]string `json:"items"`
	TotalAmountCents int64             `json:"total_amount_cents"`
	SuccessURL       string            `json:"success_url"`
	CancelURL        string            `json:"cancel_url"`
}

// CreateCheckoutOutput carries the hosted payment page and invoice number.
type CreateCheckoutOutput struct {
	OrderID       string `json:"order_id"`
	SessionID     string `json:"session_id"`
	CheckoutURL   string `json:"checkout_url"`
	InvoiceNumber string `json:"invoice_number"`
}

// InvoiceItem is one line of the order's invoice snapshot.
type InvoiceItem struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	State          string `json:"state"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

// InvoiceSnapshot is persisted as the order's invoice_data payload.
type InvoiceSnapshot struct {
	From           CompanyAddress    `json:"from"`
	BillTo         InvoiceBillTo     `json:"bill_to"`
	PurchaseDate   string            `json:"purchase_date"`
	CommissionPct  float64           `json:"commission_pct"`
	Items          []InvoiceItem     `json:"items"`
	SubtotalCents  int64             `json:"subtotal_cents"`
	TotalCents     int64             `json:"total_cents"`
	InvoiceNumber  string            `json:"invoice_number"`
	PaymentDetails map[string]string `json:"payment_details"`
}

type CompanyAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type InvoiceBillTo struct {
	Name       string `json:"name"`
	AgencyName string `json:"agency_name,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
}

// ReservationContext is the cache payload that lets the payment webhook find
// its way back to the pending checkout. Keyed by customer id and charged
// amount because that is all the payment event carries.
type ReservationContext struct {
	OrderID      string `json:"order_id"`
	CampaignName string `json:"campaign_name"`
	Buyer        BuyerContext `json:"buyer"`
	// Lines maps cart-line id -> reservation batch id.
	Lines map[string]string `json:"lines"`
}

// BuyerContext is the buyer snapshot embedded in the reservation context;
// the webhook has no authenticated user to read it from.
type BuyerContext struct {
	ID             string                      `json:"id"`
	Name           string                      `json:"name"`
	Email          string                      `json:"email"`
	AgencyName     string                      `json:"agency_name,omitempty"`
	LeadAgentIDs   []int64                     `json:"lead_agent_ids"`
	AgentsBySource map[string]map[string]int64 `json:"agents_by_source,omitempty"`
}

// PaymentEvent is the distilled payment-succeeded/failed webhook payload.
type PaymentEvent struct {
	EventID             string
	PaymentIntentID     string
	CustomerID          string
	AmountCents         int64
	AmountReceivedCents int64
	Status              string
	CardBrand           string
	CardLast4           string
	CardExpMonth        int64
	CardExpYear         int64
	PaymentMethod       string
}

// StateAvailability is one row of the state-wise availability view.
type StateAvailability struct {
	State      string `json:"state"`
	Completed  int    `json:"completed,omitempty"`
	Incomplete int    `json:"incomplete,omitempty"`
}

// BucketAvailability is one row of the per-state bucket breakdown.
type BucketAvailability struct {
	Month      int `json:"month"`
	Completed  int `json:"completed,omitempty"`
	Incomplete int `json:"incomplete,omitempty"`
}

// StockResult maps cart-line id to its currently available lead count.
type StockResult map[string]int

// mpOrderKey builds the reservation-context cache key. The charged amount is
// part of the key on purpose: the webhook only carries customer and amount.
func mpOrderKey(stripeCustomerID string, amountCents int64) string {
	return "mp_order_" + stripeCustomerID + "_" + strconv.FormatInt(amountCents, 10)
}

func reserveCartKey(pricingID, batchID string) string {
	return "reserve_cart_" + pricingID + "_" + batchID
}

func stripeEventKey(eventID string) string {
	return "stripe_event_" + eventID
}

// today truncates an instant to its date, which is what purchase-date
// columns store.
func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
