package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kovaleads/marketplace/internal/entity"
	"github.com/kovaleads/marketplace/internal/marketplace"
)

// DefaultReserveTimeout bounds the wait for each per-line reservation worker.
const DefaultReserveTimeout = 10 * time.Second

// The single buyer-facing reservation failure message; per-line detail
// stays in the logs.
const msgLeadsUnavailable = "Sorry, leads are currently unavailable, please try again"

type ReserveLeadsUseCase struct {
	Leads         LeadRepository
	Carts         CartRepository
	Cache         Cache
	Scheduler     ReleaseScheduler
	ResultTimeout time.Duration
}

func NewReserveLeadsUseCase(leads LeadRepository, carts CartRepository, cache Cache, scheduler ReleaseScheduler) *ReserveLeadsUseCase {
	return &ReserveLeadsUseCase{
		Leads:         leads,
		Carts:         carts,
		Cache:         cache,
		Scheduler:     scheduler,
		ResultTimeout: DefaultReserveTimeout,
	}
}

type reserveResult struct {
	cartLineID string
	pricingID  string
	batchID    string
	err        error
}

// Execute claims exactly quantity eligible leads for every requested cart
// line, each under a fresh reservation batch id. All-or-nothing across the
// batch: if any line comes up short the claims made by the other lines are
// rolled back and the whole request fails. The rollback is best effort; the
// delayed release and the periodic sweeper reclaim anything it misses.
func (uc *ReserveLeadsUseCase) Execute(ctx context.Context, buyer *entity.Buyer, cartLineIDs []string) ([]ReservedLine, error) {
	if len(cartLineIDs) == 0 {
		return nil, BadRequest("no cart lines selected")
	}
	lines, err := uc.Carts.FindByIDs(ctx, buyer.ID, cartLineIDs)
	if err != nil {
		return nil, Internal("failed to load cart lines", err)
	}
	if len(lines) != len(cartLineIDs) {
		return nil, BadRequest("one or more cart lines do not belong to this buyer")
	}

	now := time.Now().UTC()
	results := make(chan reserveResult, len(lines))
	workers := 0
	for _, line := range lines {
		if line.Category != marketplace.MailingCategory {
			continue
		}
		if !marketplace.Sellable(line.Month) {
			return nil, BadRequest("fresh-upload tiers cannot be reserved through checkout")
		}
		workers++
		go uc.reserveLine(ctx, buyer, line, now, results)
	}
	if workers == 0 {
		return nil, BadRequest("no reservable lines in the request")
	}

	reserved := make([]ReservedLine, 0, workers)
	createdBatches := make([]string, 0, workers)
	failed := 0
	for i := 0; i < workers; i++ {
		select {
		case res := <-results:
			if res.batchID != "" {
				createdBatches = append(createdBatches, res.batchID)
			}
			if res.err != nil {
				failed++
				log.Printf("reservation failed for cart line %s: %v", res.cartLineID, res.err)
				continue
			}
			reserved = append(reserved, ReservedLine{
				CartLineID: res.cartLineID,
				PricingID:  res.pricingID,
				BatchID:    res.batchID,
			})
		case <-time.After(uc.ResultTimeout):
			failed++
			log.Printf("reservation worker timed out (%d/%d reported)", i, workers)
		}
	}

	if failed > 0 || len(reserved) != workers {
		uc.rollback(ctx, createdBatches)
		return nil, BadRequest(msgLeadsUnavailable)
	}

	if err := uc.Scheduler.ScheduleRelease(ctx, createdBatches, marketplace.ReservationTTL); err != nil {
		// The reservation stands; the periodic sweeper is the backstop for
		// a lost release message.
		log.Printf("CRITICAL: reserved %d batches but failed to schedule release: %v", len(createdBatches), err)
	}
	return reserved, nil
}

// reserveLine claims one line's leads in a single conditional update. A short
// claim (a concurrent buyer won the race) releases its own partial batch and
// reports failure; it never leaves a line partially claimed.
func (uc *ReserveLeadsUseCase) reserveLine(ctx context.Context, buyer *entity.Buyer, line *entity.CartLine, now time.Time, results chan<- reserveResult) {
	batchID := uuid.New().String()
	f := marketplace.Filter{
		BuyerID:   buyer.ID,
		AgentIDs:  buyer.LeadAgentIDs,
		State:     line.State,
		Completed: line.Completed,
		SourceID:  line.SourceID,
		Month:     line.Month,
		Now:       now,
	}

	claimed, err := uc.Leads.ClaimEligible(ctx, f, batchID, line.Quantity)
	if err != nil {
		results <- reserveResult{cartLineID: line.ID, err: err}
		return
	}
	if claimed != line.Quantity {
		if claimed > 0 {
			if _, relErr := uc.Leads.ReleaseBatches(ctx, []string{batchID}); relErr != nil {
				log.Printf("failed to release short claim %s: %v", batchID, relErr)
			}
		}
		results <- reserveResult{
			cartLineID: line.ID,
			err:        BadRequest(msgLeadsUnavailable),
		}
		return
	}

	if err := uc.Cache.Set(ctx, reserveCartKey(line.PricingID, batchID), line.ID, marketplace.ReservationTTL); err != nil {
		// Without the context entry the webhook cannot finalize this line;
		// fail the line and free its leads.
		if _, relErr := uc.Leads.ReleaseBatches(ctx, []string{batchID}); relErr != nil {
			log.Printf("failed to release batch %s after cache error: %v", batchID, relErr)
		}
		results <- reserveResult{cartLineID: line.ID, err: err}
		return
	}

	results <- reserveResult{
		cartLineID: line.ID,
		pricingID:  line.PricingID,
		batchID:    batchID,
	}
}

// rollback clears every batch this call managed to create. Workers still in
// flight past the rendezvous timeout are not covered here; their claims age
// out through the delayed release path.
func (uc *ReserveLeadsUseCase) rollback(ctx context.Context, batchIDs []string) {
	if len(batchIDs) == 0 {
		return
	}
	if _, err := uc.Leads.ReleaseBatches(ctx, batchIDs); err != nil {
		log.Printf("reservation rollback failed for batches %v: %v", batchIDs, err)
	}
}
