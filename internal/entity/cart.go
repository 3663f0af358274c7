package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CartLine is one buyer-selected purchase intent: a pricing tier (state,
// age bucket, completed flag, source) plus a quantity. Lines are deactivated
// when converted into an order, never deleted.
type CartLine struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	PricingID string `json:"pricing_id"`

	// Denormalized pricing-tier attributes, copied from the pricing detail
	// at add-to-cart time.
	State          string `json:"state"`
	Month          int    `json:"month"` // age bucket key, 0 = fresh upload
	Completed      bool   `json:"completed"`
	SourceID       int    `json:"source_id"`
	Category       int    `json:"category"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	UnitPriceCents int64  `json:"unit_price_cents"`

	Quantity int     `json:"quantity"`
	IsActive bool    `json:"is_active"`
	OrderID  *string `json:"order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCartLine creates a cart line with basic validations.
func NewCartLine(userID, pricingID, state string, quantity int) (*CartLine, error) {
	if userID == "" {
		return nil, errors.New("user_id is required")
	}
	if pricingID == "" {
		return nil, errors.New("pricing_id is required")
	}
	if state == "" {
		return nil, errors.New("state is required")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}
	return &CartLine{
		ID:        uuid.New().String(),
		UserID:    userID,
		PricingID: pricingID,
		State:     state,
		Quantity:  quantity,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// Subtotal is the line subtotal in cents.
func (c *CartLine) Subtotal() int64 {
	return c.UnitPriceCents * int64(c.Quantity)
}
