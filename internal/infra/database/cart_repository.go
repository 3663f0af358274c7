package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kovaleads/marketplace/internal/entity"
)

type CartRepository struct {
	DB *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{DB: db}
}

const cartColumns = `
	c.id, c.user_id, c.pricing_id, c.state, c.month, c.completed,
	c.source_id, c.category, c.title, c.description, c.unit_price_cents,
	c.quantity, c.is_active, c.order_id, c.created_at, c.updated_at`

func scanCartLine(row interface{ Scan(...any) error }) (*entity.CartLine, error) {
	var c entity.CartLine
	err := row.Scan(
		&c.ID, &c.UserID, &c.PricingID, &c.State, &c.Month, &c.Completed,
		&c.SourceID, &c.Category, &c.Title, &c.Description, &c.UnitPriceCents,
		&c.Quantity, &c.IsActive, &c.OrderID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepository) FindActiveByUser(ctx context.Context, userID string) ([]*entity.CartLine, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM cart_lines c
		WHERE c.user_id = $1 AND c.is_active = TRUE
		ORDER BY c.created_at
	`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*entity.CartLine
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *CartRepository) FindByIDs(ctx context.Context, userID string, ids []string) ([]*entity.CartLine, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ph := make([]string, len(ids))
	args := []any{userID}
	for i, id := range ids {
		args = append(args, id)
		ph[i] = fmt.Sprintf("$%d", len(args))
	}

	query := `
		SELECT ` + cartColumns + `
		FROM cart_lines c
		WHERE c.user_id = $1 AND c.is_active = TRUE AND c.id IN (` + strings.Join(ph, ", ") + `)`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*entity.CartLine
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *CartRepository) FindActiveByUserAndPricing(ctx context.Context, userID, state, pricingID string) (*entity.CartLine, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM cart_lines c
		WHERE c.user_id = $1 AND c.state = $2 AND c.pricing_id = $3 AND c.is_active = TRUE
	`

	line, err := scanCartLine(r.DB.QueryRowContext(ctx, query, userID, state, pricingID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (r *CartRepository) Create(ctx context.Context, line *entity.CartLine) error {
	query := `
		INSERT INTO cart_lines (
			id, user_id, pricing_id, state, month, completed, source_id,
			category, title, description, unit_price_cents, quantity,
			is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.DB.ExecContext(ctx, query,
		line.ID, line.UserID, line.PricingID, line.State, line.Month,
		line.Completed, line.SourceID, line.Category, line.Title,
		line.Description, line.UnitPriceCents, line.Quantity, line.IsActive,
		line.CreatedAt, line.UpdatedAt,
	)
	return err
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, id string, quantity int) error {
	query := `
		UPDATE cart_lines SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND is_active = TRUE
	`

	res, err := r.DB.ExecContext(ctx, query, quantity, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM cart_lines WHERE id = $1 AND user_id = $2 AND is_active = TRUE`

	res, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate closes a purchased line and stamps the order it became part of.
func (r *CartRepository) Deactivate(ctx context.Context, id, orderID string) error {
	query := `
		UPDATE cart_lines SET is_active = FALSE, order_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.DB.ExecContext(ctx, query, orderID, id)
	return err
}
