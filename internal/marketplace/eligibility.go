// Package marketplace holds the sale-eligibility rules shared by the stock
// verifier, the reservation engine and the availability views. Keeping the
// predicate in one place is what guarantees that a stock count never promises
// more leads than a reservation can actually claim.
package marketplace

import (
	"fmt"
	"strings"
	"time"
)

// RepurchaseCooldownDays blocks reselling a lead within 30 days of its last
// purchase.
const RepurchaseCooldownDays = 30

// ReservationTTL is how long a checkout reservation holds its leads before
// the delayed release reclaims them (the original flow used a 1020 second
// countdown).
const ReservationTTL = 17 * time.Minute

// MailingCategory is the only lead category sold through this flow.
const MailingCategory = 1

// AgeBucket is one marketplace pricing-tier age range, in days since the
// lead's IVR call.
type AgeBucket struct {
	Name     string
	StartDay int
	EndDay   int
}

// AgeBuckets maps the pricing-detail month key to its age range. Month 0 is
// the fresh-upload tier and is not sold through the reservation flow.
var AgeBuckets = map[int]AgeBucket{
	1: {Name: "1+ month (1-2 months)", StartDay: 30, EndDay: 60},
	2: {Name: "2+ month (2-3 months)", StartDay: 60, EndDay: 90},
	3: {Name: "3+ month (3-6 months)", StartDay: 90, EndDay: 180},
	6: {Name: "6+ month (6-9 months)", StartDay: 180, EndDay: 270},
	9: {Name: "9+ month (9-24 months)", StartDay: 270, EndDay: 730},
}

// Window returns the half-open call-time interval [from, to) a response must
// fall in to belong to this bucket at the given instant.
func (b AgeBucket) Window(now time.Time) (from, to time.Time) {
	return now.AddDate(0, 0, -b.EndDay), now.AddDate(0, 0, -b.StartDay)
}

// Sellable reports whether a bucket key names a tier this flow can reserve.
func Sellable(month int) bool {
	_, ok := AgeBuckets[month]
	return ok
}

// Filter describes one cart line's eligibility criteria plus the buyer
// context needed for the ownership carve-outs.
type Filter struct {
	BuyerID   string
	AgentIDs  []int64 // the buyer's own lead-handling agents
	State     string
	Completed bool
	SourceID  int
	Month     int
	Now       time.Time
}

// Where builds the SQL predicate for the filter against leads l joined with
// lead_responses r. Placeholders start at $argOffset+1; returns the fragment
// and its arguments. Both the COUNT and the claiming UPDATE run this exact
// fragment.
func (f Filter) Where(argOffset int) (string, []any, error) {
	bucket, ok := AgeBuckets[f.Month]
	if !ok {
		return "", nil, fmt.Errorf("month %d is not a sellable age bucket", f.Month)
	}
	from, to := bucket.Window(f.Now)
	cooldown := f.Now.AddDate(0, 0, -RepurchaseCooldownDays)

	args := []any{from, to, f.State, f.Completed, f.SourceID, cooldown, f.BuyerID}
	var sb strings.Builder
	n := func() int { return argOffset + len(args) }

	sb.WriteString(fmt.Sprintf("r.call_in_at >= $%d AND r.call_in_at < $%d", argOffset+1, argOffset+2))
	sb.WriteString(fmt.Sprintf(" AND l.state = $%d", argOffset+3))
	sb.WriteString(fmt.Sprintf(" AND r.completed = $%d", argOffset+4))
	sb.WriteString(fmt.Sprintf(" AND l.source_id = $%d", argOffset+5))
	sb.WriteString(fmt.Sprintf(" AND (l.last_purchased_date IS NULL OR l.last_purchased_date < $%d)", argOffset+6))
	sb.WriteString(" AND l.can_sell = TRUE")
	sb.WriteString(" AND l.disabled_in_marketplace = FALSE")
	sb.WriteString(fmt.Sprintf(" AND (l.is_in_checkout = FALSE OR l.reserved_by = $%d)", argOffset+7))

	if len(f.AgentIDs) > 0 {
		ph := make([]string, len(f.AgentIDs))
		for i, id := range f.AgentIDs {
			args = append(args, id)
			ph[i] = fmt.Sprintf("$%d", n())
		}
		sb.WriteString(" AND NOT EXISTS (SELECT 1 FROM lead_assignees la WHERE la.mortgage_id = l.mortgage_id AND la.agent_id IN (")
		sb.WriteString(strings.Join(ph, ", "))
		sb.WriteString("))")
	}

	return sb.String(), args, nil
}
