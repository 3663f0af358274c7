package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order is one marketplace payment: created pending at checkout-session
// creation, finalized by the payment webhook.
type Order struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	CampaignName string `json:"campaign_name"`

	SubtotalCents       int64 `json:"subtotal_cents"`
	TotalCents          int64 `json:"total_cents"`
	AmountReceivedCents int64 `json:"amount_received_cents"`

	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	PaymentStatus   string `json:"payment_status"` // pending, succeeded, failed

	LocalPurchaseDate time.Time `json:"local_purchase_date"`
	InvoiceID         int64     `json:"invoice_id"` // sequence behind INV-<yyyymmdd>-<id>
	InvoiceData       []byte    `json:"invoice_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewOrder creates a pending order for a buyer.
func NewOrder(userID, campaignName string, subtotalCents, totalCents int64, purchaseDate time.Time) *Order {
	return &Order{
		ID:                uuid.New().String(),
		UserID:            userID,
		CampaignName:      campaignName,
		SubtotalCents:     subtotalCents,
		TotalCents:        totalCents,
		PaymentStatus:     "pending",
		LocalPurchaseDate: purchaseDate,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

// InvoiceNumber renders the invoice identifier stamped on the snapshot.
func (o *Order) InvoiceNumber() string {
	return fmt.Sprintf("INV-%s-%d", o.LocalPurchaseDate.Format("20060102"), o.InvoiceID)
}
