package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kovaleads/marketplace/internal/entity"
	"github.com/kovaleads/marketplace/internal/marketplace"
	"github.com/kovaleads/marketplace/internal/usecase"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// CountEligible counts distinct leads the filter's buyer could reserve
// right now.
func (r *LeadRepository) CountEligible(ctx context.Context, f marketplace.Filter) (int, error) {
	where, args, err := f.Where(0)
	if err != nil {
		return 0, err
	}

	query := `
		SELECT COUNT(DISTINCT l.mortgage_id)
		FROM leads l
		JOIN lead_responses r ON r.mortgage_id = l.mortgage_id
		WHERE ` + where

	var count int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ClaimEligible claims up to limit eligible leads under batchID in a single
// statement. SKIP LOCKED makes concurrent claims partition the pool instead
// of blocking; a short row count means another reservation won the race.
func (r *LeadRepository) ClaimEligible(ctx context.Context, f marketplace.Filter, batchID string, limit int) (int, error) {
	// $1..$3 are the claim values, the filter placeholders start after them.
	where, args, err := f.Where(3)
	if err != nil {
		return 0, err
	}

	query := `
		UPDATE leads SET
			is_in_checkout = TRUE,
			reservation_batch_id = $1,
			reserved_by = $2,
			updated_at = NOW()
		WHERE mortgage_id IN (
			SELECT l.mortgage_id
			FROM leads l
			JOIN lead_responses r ON r.mortgage_id = l.mortgage_id
			WHERE ` + where + `
			LIMIT $3
			FOR UPDATE OF l SKIP LOCKED
		)`

	claimArgs := append([]any{batchID, f.BuyerID, limit}, args...)
	res, err := r.DB.ExecContext(ctx, query, claimArgs...)
	if err != nil {
		log.Printf("lead claim failed for batch %s: %v", batchID, err)
		return 0, err
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(claimed), nil
}

// ReleaseBatches clears the reservation fields on every lead still carrying
// one of the batch ids. Safe to run repeatedly.
func (r *LeadRepository) ReleaseBatches(ctx context.Context, batchIDs []string) (int64, error) {
	if len(batchIDs) == 0 {
		return 0, nil
	}

	ph := make([]string, len(batchIDs))
	args := make([]any, len(batchIDs))
	for i, id := range batchIDs {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `
		UPDATE leads SET
			is_in_checkout = FALSE,
			reservation_batch_id = NULL,
			reserved_by = NULL,
			updated_at = NOW()
		WHERE reservation_batch_id IN (` + strings.Join(ph, ", ") + `)`

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *LeadRepository) CountReservedBatch(ctx context.Context, batchID, buyerID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM leads
		WHERE reservation_batch_id = $1 AND reserved_by = $2
	`

	var count int
	if err := r.DB.QueryRowContext(ctx, query, batchID, buyerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LeadRepository) FindByBatchID(ctx context.Context, batchID string) ([]*entity.Lead, error) {
	query := `
		SELECT mortgage_id, full_name, address, city, state, zip, source_id
		FROM leads
		WHERE reservation_batch_id = $1
	`

	rows, err := r.DB.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		var l entity.Lead
		if err := rows.Scan(&l.MortgageID, &l.FullName, &l.Address, &l.City, &l.State, &l.Zip, &l.SourceID); err != nil {
			return nil, err
		}
		leads = append(leads, &l)
	}
	return leads, rows.Err()
}

// FinalizePurchase closes out sold leads: the reservation fields are cleared
// and last_purchased_date starts the repurchase cooldown.
func (r *LeadRepository) FinalizePurchase(ctx context.Context, mortgageIDs []string, purchasedDate time.Time) error {
	if len(mortgageIDs) == 0 {
		return nil
	}

	ph := make([]string, len(mortgageIDs))
	args := []any{purchasedDate}
	for i, id := range mortgageIDs {
		ph[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := `
		UPDATE leads SET
			is_in_checkout = FALSE,
			reservation_batch_id = NULL,
			reserved_by = NULL,
			last_purchased_date = $1,
			updated_at = NOW()
		WHERE mortgage_id IN (` + strings.Join(ph, ", ") + `)`

	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

// eligibleBase is the availability-view predicate. Same rules as
// marketplace.Filter minus the per-line state/source/bucket criteria, which
// the views group by instead.
const eligibleBase = `
	l.can_sell = TRUE
	AND l.disabled_in_marketplace = FALSE
	AND (l.is_in_checkout = FALSE OR l.reserved_by = $1)
	AND (l.last_purchased_date IS NULL OR l.last_purchased_date < $2)
	AND r.call_in_at >= $3 AND r.call_in_at < $4`

func (r *LeadRepository) StateAvailability(ctx context.Context, buyer *entity.Buyer, states []string) ([]usecase.StateAvailability, error) {
	now := time.Now().UTC()
	args, ownership := availabilityArgs(buyer, now)

	query := `
		SELECT l.state,
			COUNT(DISTINCT l.mortgage_id) FILTER (WHERE r.completed),
			COUNT(DISTINCT l.mortgage_id) FILTER (WHERE NOT r.completed)
		FROM leads l
		JOIN lead_responses r ON r.mortgage_id = l.mortgage_id
		WHERE ` + eligibleBase + ownership

	if len(states) > 0 {
		ph := make([]string, len(states))
		for i, s := range states {
			args = append(args, s)
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		query += " AND l.state IN (" + strings.Join(ph, ", ") + ")"
	}
	query += " GROUP BY l.state ORDER BY l.state"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []usecase.StateAvailability
	for rows.Next() {
		var row usecase.StateAvailability
		if err := rows.Scan(&row.State, &row.Completed, &row.Incomplete); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *LeadRepository) BucketAvailability(ctx context.Context, buyer *entity.Buyer, state string) ([]usecase.BucketAvailability, error) {
	now := time.Now().UTC()
	args, ownership := availabilityArgs(buyer, now)
	args = append(args, state)
	statePh := len(args)

	var out []usecase.BucketAvailability
	for _, month := range []int{1, 2, 3, 6, 9} {
		bucket := marketplace.AgeBuckets[month]
		from, to := bucket.Window(now)

		query := fmt.Sprintf(`
			SELECT
				COUNT(DISTINCT l.mortgage_id) FILTER (WHERE r.completed),
				COUNT(DISTINCT l.mortgage_id) FILTER (WHERE NOT r.completed)
			FROM leads l
			JOIN lead_responses r ON r.mortgage_id = l.mortgage_id
			WHERE %s%s AND l.state = $%d AND r.call_in_at >= $%d AND r.call_in_at < $%d`,
			eligibleBase, ownership, statePh, len(args)+1, len(args)+2)

		row := usecase.BucketAvailability{Month: month}
		bucketArgs := append(append([]any{}, args...), from, to)
		if err := r.DB.QueryRowContext(ctx, query, bucketArgs...).Scan(&row.Completed, &row.Incomplete); err != nil {
			return nil, err
		}
		if row.Completed > 0 || row.Incomplete > 0 {
			out = append(out, row)
		}
	}
	return out, nil
}

// availabilityArgs builds the shared argument prefix for the view queries:
// buyer id, cooldown cutoff, the widest sellable call window, then the
// buyer's own-agent carve-out when they have agents.
func availabilityArgs(buyer *entity.Buyer, now time.Time) ([]any, string) {
	oldest := marketplace.AgeBuckets[9]
	youngest := marketplace.AgeBuckets[1]
	cooldown := now.AddDate(0, 0, -marketplace.RepurchaseCooldownDays)
	args := []any{
		buyer.ID,
		cooldown,
		now.AddDate(0, 0, -oldest.EndDay),
		now.AddDate(0, 0, -youngest.StartDay),
	}

	var ownership string
	if len(buyer.LeadAgentIDs) > 0 {
		ph := make([]string, len(buyer.LeadAgentIDs))
		for i, id := range buyer.LeadAgentIDs {
			args = append(args, id)
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		ownership = " AND NOT EXISTS (SELECT 1 FROM lead_assignees la WHERE la.mortgage_id = l.mortgage_id AND la.agent_id IN (" +
			strings.Join(ph, ", ") + "))"
	}
	return args, ownership
}
