package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kovaleads/marketplace/internal/entity"
)

type CartUseCase struct {
	Carts   CartRepository
	Pricing PricingRepository
}

func NewCartUseCase(carts CartRepository, pricing PricingRepository) *CartUseCase {
	return &CartUseCase{Carts: carts, Pricing: pricing}
}

// ListItems returns the buyer's active cart lines with their tier detail.
func (uc *CartUseCase) ListItems(ctx context.Context, buyerID string) ([]CartItemOutput, error) {
	lines, err := uc.Carts.FindActiveByUser(ctx, buyerID)
	if err != nil {
		return nil, Internal("failed to load cart", err)
	}
	if len(lines) == 0 {
		return nil, NoContent("cart is empty")
	}
	out := make([]CartItemOutput, 0, len(lines))
	for _, l := range lines {
		out = append(out, CartItemOutput{
			ID:             l.ID,
			State:          l.State,
			Quantity:       l.Quantity,
			PricingID:      l.PricingID,
			Category:       l.Category,
			SourceID:       l.SourceID,
			Title:          l.Title,
			Description:    l.Description,
			Completed:      l.Completed,
			Month:          l.Month,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return out, nil
}

// AddItem upserts a cart line for the buyer. An existing active line for the
// same state and tier just has its quantity overwritten; a non-positive
// quantity removes it.
func (uc *CartUseCase) AddItem(ctx context.Context, buyer *entity.Buyer, input AddToCartInput) error {
	if input.PricingID == "" || input.State == "" {
		return BadRequest("pricing_id and state are required")
	}

	existing, err := uc.Carts.FindActiveByUserAndPricing(ctx, buyer.ID, input.State, input.PricingID)
	if err != nil {
		return Internal("failed to look up cart line", err)
	}
	if existing != nil {
		if input.Quantity <= 0 {
			return uc.removeLine(ctx, buyer.ID, existing.ID)
		}
		if err := uc.Carts.UpdateQuantity(ctx, buyer.ID, existing.ID, input.Quantity); err != nil {
			return Internal("failed to update cart quantity", err)
		}
		return nil
	}

	pd, err := uc.Pricing.FindByID(ctx, input.PricingID)
	if err != nil {
		return BadRequest(fmt.Sprintf("invalid pricing tier: %v", err))
	}
	line, err := entity.NewCartLine(buyer.ID, input.PricingID, input.State, input.Quantity)
	if err != nil {
		return BadRequest(err.Error())
	}
	line.Category = pd.Category
	line.SourceID = pd.SourceID
	line.Month = pd.Month
	line.Completed = pd.Completed
	line.Title = pd.Title
	line.Description = pd.Description
	line.UnitPriceCents = pd.UnitPriceCents
	line.UpdatedAt = time.Now()

	if err := uc.Carts.Create(ctx, line); err != nil {
		return Internal("failed to add cart line", err)
	}
	return nil
}

// UpdateQuantity sets a line's quantity; non-positive removes the line.
func (uc *CartUseCase) UpdateQuantity(ctx context.Context, buyerID, lineID string, quantity int) error {
	if quantity <= 0 {
		return uc.removeLine(ctx, buyerID, lineID)
	}
	if err := uc.Carts.UpdateQuantity(ctx, buyerID, lineID, quantity); err != nil {
		return Internal("failed to update cart quantity", err)
	}
	return nil
}

// RemoveItem drops an active line from the buyer's cart.
func (uc *CartUseCase) RemoveItem(ctx context.Context, buyerID, lineID string) error {
	return uc.removeLine(ctx, buyerID, lineID)
}

func (uc *CartUseCase) removeLine(ctx context.Context, buyerID, lineID string) error {
	if err := uc.Carts.Delete(ctx, buyerID, lineID); err != nil {
		return Internal("failed to remove cart line", err)
	}
	return nil
}
