package worker

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/kovaleads/marketplace/internal/marketplace"
)

// ReservationExpiryWorker is the backstop behind the delayed release
// messages: any reservation older than the TTL gets cleared even if its
// message was lost.
type ReservationExpiryWorker struct {
	db               *sql.DB
	expirationWindow time.Duration
	tickInterval     time.Duration
}

func NewReservationExpiryWorker(db *sql.DB) *ReservationExpiryWorker {
	return &ReservationExpiryWorker{
		db:               db,
		expirationWindow: marketplace.ReservationTTL,
		tickInterval:     1 * time.Minute,
	}
}

func (w *ReservationExpiryWorker) Start(ctx context.Context) {
	log.Printf("🕒 Reservation Expiry Worker started (%s window)", w.expirationWindow)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.releaseExpired(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Reservation Expiry Worker stopped")
			return
		case <-ticker.C:
			w.releaseExpired(ctx)
		}
	}
}

func (w *ReservationExpiryWorker) releaseExpired(ctx context.Context) {
	query := `
		UPDATE leads
		SET
			is_in_checkout = FALSE,
			reservation_batch_id = NULL,
			reserved_by = NULL,
			updated_at = NOW()
		WHERE
			is_in_checkout = TRUE
			AND reservation_batch_id IS NOT NULL
			AND updated_at < NOW() - $1::interval
		RETURNING mortgage_id
	`

	interval := w.expirationWindow.String()
	rows, err := w.db.QueryContext(ctx, query, interval)
	if err != nil {
		log.Printf("❌ failed to look up expired reservations: %v", err)
		return
	}
	defer rows.Close()

	expiredCount := 0
	for rows.Next() {
		var mortgageID string
		if err := rows.Scan(&mortgageID); err != nil {
			log.Printf("⚠️ failed to scan expired reservation: %v", err)
			continue
		}
		expiredCount++
	}

	if expiredCount > 0 {
		log.Printf("✅ released %d expired lead reservation(s)", expiredCount)
	}
}
