package entity

import "time"

// Lead status codes for assignee records. A purchased lead always starts
// at LeadStatusNew; later status changes are a separate workflow.
const (
	LeadStatusNew  = 1
	LeadStatusSold = 7
)

// Assignee permanently binds a Lead to the sales agent who owns it.
// Marketplace purchases additionally record the buying user, the purchase
// date and the cart line the sale came from.
type Assignee struct {
	ID              int64      `json:"id"`
	MortgageID      string     `json:"mortgage_id"`
	AgentID         int64      `json:"agent_id"`
	LeadStatus      int        `json:"lead_status"`
	PurchasedUserID *string    `json:"purchased_user_id,omitempty"`
	PurchasedDate   *time.Time `json:"purchased_date,omitempty"`
	CartLineID      *string    `json:"cart_line_id,omitempty"`
	CampaignName    string     `json:"campaign_name,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewAssignee builds a marketplace-sale assignment row.
func NewAssignee(mortgageID string, agentID int64, buyerID, cartLineID, campaignName string, purchasedDate time.Time) *Assignee {
	return &Assignee{
		MortgageID:      mortgageID,
		AgentID:         agentID,
		LeadStatus:      LeadStatusNew,
		PurchasedUserID: &buyerID,
		PurchasedDate:   &purchasedDate,
		CartLineID:      &cartLineID,
		CampaignName:    campaignName,
		CreatedAt:       time.Now(),
	}
}
