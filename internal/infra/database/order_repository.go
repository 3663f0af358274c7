package database

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kovaleads/marketplace/internal/entity"
)

type OrderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// Create inserts a pending order. invoice_id comes from a sequence so the
// returned entity carries its final invoice number.
func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, campaign_name, subtotal_cents, total_cents,
			payment_status, local_purchase_date, invoice_data,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING invoice_id
	`

	err := r.DB.QueryRowContext(ctx, query,
		o.ID, o.UserID, o.CampaignName, o.SubtotalCents, o.TotalCents,
		o.PaymentStatus, o.LocalPurchaseDate, o.InvoiceData,
		o.CreatedAt, o.UpdatedAt,
	).Scan(&o.InvoiceID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return err
		}
		log.Printf("order insert failed: %v", err)
		return err
	}
	return nil
}

// CountSucceededOn counts the buyer's succeeded orders for a purchase date,
// which numbers the day's campaign names.
func (r *OrderRepository) CountSucceededOn(ctx context.Context, userID string, day time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM orders
		WHERE user_id = $1 AND local_purchase_date = $2 AND payment_status = 'succeeded'
	`

	var count int
	if err := r.DB.QueryRowContext(ctx, query, userID, day).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *OrderRepository) UpdatePaymentIntent(ctx context.Context, orderID, paymentIntentID string) error {
	query := `
		UPDATE orders SET payment_intent_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.DB.ExecContext(ctx, query, paymentIntentID, orderID)
	return err
}

// FindForPayment loads the order the webhook is settling, matched on both
// the order id from the reservation context and the payment intent.
func (r *OrderRepository) FindForPayment(ctx context.Context, userID, paymentIntentID, orderID string) (*entity.Order, error) {
	query := `
		SELECT id, user_id, campaign_name, subtotal_cents, total_cents,
			amount_received_cents, COALESCE(payment_intent_id, ''),
			payment_status, local_purchase_date, invoice_id, invoice_data,
			created_at, updated_at
		FROM orders
		WHERE id = $1 AND user_id = $2 AND payment_intent_id = $3
	`

	var o entity.Order
	err := r.DB.QueryRowContext(ctx, query, orderID, userID, paymentIntentID).Scan(
		&o.ID, &o.UserID, &o.CampaignName, &o.SubtotalCents, &o.TotalCents,
		&o.AmountReceivedCents, &o.PaymentIntentID,
		&o.PaymentStatus, &o.LocalPurchaseDate, &o.InvoiceID, &o.InvoiceData,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) UpdatePaymentResult(ctx context.Context, orderID string, paymentIntentID string, amountReceivedCents int64, status string, invoiceData []byte) error {
	query := `
		UPDATE orders SET
			amount_received_cents = $1,
			payment_status = $2,
			invoice_data = $3,
			updated_at = NOW()
		WHERE id = $4 AND payment_intent_id = $5
	`

	_, err := r.DB.ExecContext(ctx, query, amountReceivedCents, status, invoiceData, orderID, paymentIntentID)
	return err
}

func (r *OrderRepository) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) error {
	query := `
		UPDATE orders SET payment_status = 'failed', updated_at = NOW()
		WHERE payment_intent_id = $1 AND payment_status = 'pending'
	`

	_, err := r.DB.ExecContext(ctx, query, paymentIntentID)
	return err
}
