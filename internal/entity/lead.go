package entity

import (
	"time"
)

// Lead is one sellable unit of mortgage contact data, keyed by the
// mortgage identifier assigned at campaign upload time.
type Lead struct {
	MortgageID string  `json:"mortgage_id"`
	FullName   string  `json:"full_name"`
	FirstName  string  `json:"first_name,omitempty"`
	LastName   string  `json:"last_name,omitempty"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Zip        string  `json:"zip"`
	LenderName string  `json:"lender_name,omitempty"`
	LoanAmount float64 `json:"loan_amount,omitempty"`

	SourceID int `json:"source_id"`

	// Marketplace state. is_in_checkout, reservation_batch_id and
	// reserved_by are always set and cleared together.
	CanSell               bool       `json:"can_sell"`
	DisabledInMarketplace bool       `json:"disabled_in_marketplace"`
	IsInCheckout          bool       `json:"is_in_checkout"`
	ReservationBatchID    *string    `json:"reservation_batch_id,omitempty"`
	ReservedBy            *string    `json:"reserved_by,omitempty"`
	LastPurchasedDate     *time.Time `json:"last_purchased_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeadResponse holds the IVR call outcome for a lead. One per lead once a
// call occurs; the call timestamp drives the marketplace age buckets and the
// completed flag drives the pricing tier split.
type LeadResponse struct {
	ID         int64     `json:"id"`
	MortgageID string    `json:"mortgage_id"`
	Completed  bool      `json:"completed"`
	CallInAt   time.Time `json:"call_in_at"`
}
