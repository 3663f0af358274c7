package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kovaleads/marketplace/internal/usecase"
)

type PricingRepository struct {
	DB *sql.DB
}

func NewPricingRepository(db *sql.DB) *PricingRepository {
	return &PricingRepository{DB: db}
}

func (r *PricingRepository) FindByID(ctx context.Context, id string) (*usecase.PricingDetail, error) {
	query := `
		SELECT id, title, description, category, source_id, month, completed, unit_price_cents
		FROM pricing_details
		WHERE id = $1 AND is_active = TRUE
	`

	var pd usecase.PricingDetail
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&pd.ID, &pd.Title, &pd.Description, &pd.Category, &pd.SourceID,
		&pd.Month, &pd.Completed, &pd.UnitPriceCents,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pricing tier %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &pd, nil
}
