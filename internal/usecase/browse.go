package usecase

import (
	"context"

	"github.com/kovaleads/marketplace/internal/entity"
)

// BrowseUseCase serves the storefront availability views. Counts are
// buyer-relative: the same queries the reservation path filters with, so a
// count shown here is a count the buyer can actually reserve.
type BrowseUseCase struct {
	Leads LeadRepository
}

func NewBrowseUseCase(leads LeadRepository) *BrowseUseCase {
	return &BrowseUseCase{Leads: leads}
}

// StateAvailability returns per-state completed/incomplete counts, optionally
// limited to the given states.
func (uc *BrowseUseCase) StateAvailability(ctx context.Context, buyer *entity.Buyer, states []string) ([]StateAvailability, error) {
	rows, err := uc.Leads.StateAvailability(ctx, buyer, states)
	if err != nil {
		return nil, Internal("failed to load state availability", err)
	}
	if len(rows) == 0 {
		return nil, NoContent("no leads available")
	}
	return rows, nil
}

// BucketAvailability breaks one state down by age bucket.
func (uc *BrowseUseCase) BucketAvailability(ctx context.Context, buyer *entity.Buyer, state string) ([]BucketAvailability, error) {
	if state == "" {
		return nil, BadRequest("state is required")
	}
	rows, err := uc.Leads.BucketAvailability(ctx, buyer, state)
	if err != nil {
		return nil, Internal("failed to load bucket availability", err)
	}
	if len(rows) == 0 {
		return nil, NoContent("no leads available in " + state)
	}
	return rows, nil
}
