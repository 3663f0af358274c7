package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kovaleads/marketplace/internal/entity"
)

type AssigneeRepository struct {
	DB *sql.DB
}

func NewAssigneeRepository(db *sql.DB) *AssigneeRepository {
	return &AssigneeRepository{DB: db}
}

// BulkCreate inserts the assignment rows for one fulfilled batch in a single
// statement. ON CONFLICT DO NOTHING makes a replayed batch a no-op instead
// of a duplicate delivery.
func (r *AssigneeRepository) BulkCreate(ctx context.Context, rows []*entity.Assignee) error {
	if len(rows) == 0 {
		return nil
	}

	const cols = 8
	values := make([]string, len(rows))
	args := make([]any, 0, len(rows)*cols)
	for i, a := range rows {
		ph := make([]string, cols)
		for j := 0; j < cols; j++ {
			ph[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		values[i] = "(" + strings.Join(ph, ", ") + ")"
		args = append(args,
			a.MortgageID, a.AgentID, a.LeadStatus, a.PurchasedUserID,
			a.PurchasedDate, a.CartLineID, a.CampaignName, a.CreatedAt,
		)
	}

	query := `
		INSERT INTO lead_assignees (
			mortgage_id, agent_id, lead_status, purchased_user_id,
			purchased_date, cart_line_id, campaign_name, created_at
		)
		VALUES ` + strings.Join(values, ", ") + `
		ON CONFLICT (mortgage_id, agent_id) DO NOTHING`

	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}
