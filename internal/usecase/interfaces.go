package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/kovaleads/marketplace/internal/entity"
	"github.com/kovaleads/marketplace/internal/infra/integration/stripepay"
	"github.com/kovaleads/marketplace/internal/marketplace"
)

// ErrCacheMiss is returned by Cache.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache: key not found")

type LeadRepository interface {
	// CountEligible counts distinct leads matching the filter.
	CountEligible(ctx context.Context, f marketplace.Filter) (int, error)
	// ClaimEligible atomically claims up to limit eligible leads under the
	// batch id for the filter's buyer, returning how many rows it claimed.
	// Filter and claim are one statement; losers of a race see a short count.
	ClaimEligible(ctx context.Context, f marketplace.Filter, batchID string, limit int) (int, error)
	// ReleaseBatches clears the reservation fields on every lead still
	// carrying one of the batch ids. Idempotent.
	ReleaseBatches(ctx context.Context, batchIDs []string) (int64, error)
	// CountReservedBatch counts leads currently held under the batch id for
	// the given buyer.
	CountReservedBatch(ctx context.Context, batchID, buyerID string) (int, error)
	// FindByBatchID returns the leads still tagged with the batch id.
	FindByBatchID(ctx context.Context, batchID string) ([]*entity.Lead, error)
	// FinalizePurchase clears reservation fields and stamps
	// last_purchased_date on the given leads.
	FinalizePurchase(ctx context.Context, mortgageIDs []string, purchasedDate time.Time) error
	// StateAvailability and BucketAvailability back the browse views.
	StateAvailability(ctx context.Context, buyer *entity.Buyer, states []string) ([]StateAvailability, error)
	BucketAvailability(ctx context.Context, buyer *entity.Buyer, state string) ([]BucketAvailability, error)
}

type CartRepository interface {
	FindActiveByUser(ctx context.Context, userID string) ([]*entity.CartLine, error)
	FindByIDs(ctx context.Context, userID string, ids []string) ([]*entity.CartLine, error)
	FindActiveByUserAndPricing(ctx context.Context, userID, state, pricingID string) (*entity.CartLine, error)
	Create(ctx context.Context, line *entity.CartLine) error
	UpdateQuantity(ctx context.Context, userID, id string, quantity int) error
	Delete(ctx context.Context, userID, id string) error
	Deactivate(ctx context.Context, id, orderID string) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	CountSucceededOn(ctx context.Context, userID string, day time.Time) (int, error)
	UpdatePaymentIntent(ctx context.Context, orderID, paymentIntentID string) error
	FindForPayment(ctx context.Context, userID, paymentIntentID, orderID string) (*entity.Order, error)
	UpdatePaymentResult(ctx context.Context, orderID string, paymentIntentID string, amountReceivedCents int64, status string, invoiceData []byte) error
	MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) error
}

type AssigneeRepository interface {
	BulkCreate(ctx context.Context, rows []*entity.Assignee) error
}

type PricingRepository interface {
	FindByID(ctx context.Context, id string) (*PricingDetail, error)
}

// Cache is the key/value store with TTL used for reservation-context
// correlation, the duplicate-amount cooldown and webhook idempotency keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ReleaseScheduler enqueues the delayed safety-net release for a set of
// reservation batches. Delivery is at-least-once; the sweep must be
// idempotent.
type ReleaseScheduler interface {
	ScheduleRelease(ctx context.Context, batchIDs []string, delay time.Duration) error
}

// PaymentGateway creates hosted checkout sessions with the payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input stripepay.CheckoutSessionInput) (*stripepay.CheckoutSessionOutput, error)
}

// Mailer sends the operator alerts and the buyer-facing purchase emails.
type Mailer interface {
	SendOperatorAlert(subject, htmlBody string) error
	SendPurchaseConfirmation(to, name, campaignName string, totalPaidCents int64, items []InvoiceItem) error
	SendPaymentFailedAlert(to, name string, amountCents int64) error
}
