package usecase

import (
	"context"
	"log"
	"time"

	"github.com/kovaleads/marketplace/internal/entity"
	"github.com/kovaleads/marketplace/internal/marketplace"
)

// DefaultStockTimeout bounds how long the verifier waits for each per-line
// count worker before treating the whole call as an infrastructure failure.
const DefaultStockTimeout = 10 * time.Second

type VerifyStockUseCase struct {
	Leads         LeadRepository
	Carts         CartRepository
	ResultTimeout time.Duration
}

func NewVerifyStockUseCase(leads LeadRepository, carts CartRepository) *VerifyStockUseCase {
	return &VerifyStockUseCase{
		Leads:         leads,
		Carts:         carts,
		ResultTimeout: DefaultStockTimeout,
	}
}

type stockCount struct {
	cartLineID string
	available  int
	err        error
}

// Execute counts currently eligible leads for every mailing line in the
// buyer's cart, one concurrent worker per line. A worker that fails or
// misses the timeout fails the whole call: a partial answer would mislead
// the buyer about availability, so this path fails closed.
func (uc *VerifyStockUseCase) Execute(ctx context.Context, buyer *entity.Buyer) (StockResult, error) {
	lines, err := uc.Carts.FindActiveByUser(ctx, buyer.ID)
	if err != nil {
		return nil, Internal("failed to load cart", err)
	}
	if len(lines) == 0 {
		return nil, NoContent("cart is empty")
	}

	now := time.Now().UTC()
	results := make(chan stockCount, len(lines))
	workers := 0
	for _, line := range lines {
		if line.Category != marketplace.MailingCategory || !marketplace.Sellable(line.Month) {
			continue
		}
		workers++
		go func(line *entity.CartLine) {
			f := marketplace.Filter{
				BuyerID:   buyer.ID,
				AgentIDs:  buyer.LeadAgentIDs,
				State:     line.State,
				Completed: line.Completed,
				SourceID:  line.SourceID,
				Month:     line.Month,
				Now:       now,
			}
			n, err := uc.Leads.CountEligible(ctx, f)
			results <- stockCount{cartLineID: line.ID, available: n, err: err}
		}(line)
	}
	if workers == 0 {
		return nil, NoContent("no sellable lines in cart")
	}

	out := make(StockResult, workers)
	for i := 0; i < workers; i++ {
		select {
		case res := <-results:
			if res.err != nil {
				log.Printf("stock check failed for cart line %s: %v", res.cartLineID, res.err)
				continue
			}
			out[res.cartLineID] = res.available
		case <-time.After(uc.ResultTimeout):
			log.Printf("stock check timed out waiting for a worker (%d/%d reported)", len(out), workers)
		}
	}
	if len(out) != workers {
		return nil, Internal("stock availability lookup failed", nil)
	}
	return out, nil
}
