package usecase

import (
	"context"
	"log"
)

// SweepReservationsUseCase releases reservation batches back to the pool.
// It is driven both by the delayed release message and by the periodic
// expiry worker, so a sweep that finds nothing to release is normal.
type SweepReservationsUseCase struct {
	Leads LeadRepository
}

func NewSweepReservationsUseCase(leads LeadRepository) *SweepReservationsUseCase {
	return &SweepReservationsUseCase{Leads: leads}
}

// Execute clears the reservation fields on every lead still held under the
// given batch ids and reports how many leads it freed. Leads already
// purchased or already released are untouched, which makes redelivered
// messages harmless.
func (uc *SweepReservationsUseCase) Execute(ctx context.Context, batchIDs []string) (int64, error) {
	if len(batchIDs) == 0 {
		return 0, nil
	}
	released, err := uc.Leads.ReleaseBatches(ctx, batchIDs)
	if err != nil {
		return 0, Internal("failed to release reservation batches", err)
	}
	if released > 0 {
		log.Printf("released %d leads from %d reservation batches", released, len(batchIDs))
	}
	return released, nil
}
