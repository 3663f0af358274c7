package entity

// Buyer is the authenticated marketplace user as handed down by the upstream
// auth gateway. Token issuance and validation happen before requests reach
// this service; we only consume the resolved profile.
type Buyer struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
	AgencyName       string `json:"agency_name,omitempty"`
	StripeCustomerID string `json:"stripe_customer_id"`

	// LeadAgentIDs are the buyer's own lead-handling agents. Leads already
	// assigned to one of them are never offered back for sale.
	LeadAgentIDs []int64 `json:"lead_agent_ids"`

	// AgentsBySource routes purchased leads to a destination agent:
	// source id -> category id -> agent id. Falls back to the first entry
	// of LeadAgentIDs when no route matches.
	AgentsBySource map[string]map[string]int64 `json:"agents_by_source,omitempty"`
}

// RouteAgent picks the destination agent for a purchased cart line.
// Returns 0 when the buyer has no lead-handling agent at all.
func (b *Buyer) RouteAgent(sourceID, category string) int64 {
	if byCat, ok := b.AgentsBySource[sourceID]; ok {
		if agentID, ok := byCat[category]; ok && agentID != 0 {
			return agentID
		}
	}
	if len(b.LeadAgentIDs) > 0 {
		return b.LeadAgentIDs[0]
	}
	return 0
}
