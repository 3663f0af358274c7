package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/kovaleads/marketplace/internal/entity"
	"github.com/kovaleads/marketplace/internal/infra/integration/stripepay"
	"github.com/kovaleads/marketplace/internal/marketplace"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) CountEligible(ctx context.Context, f marketplace.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) ClaimEligible(ctx context.Context, f marketplace.Filter, batchID string, limit int) (int, error) {
	args := m.Called(ctx, f, batchID, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) ReleaseBatches(ctx context.Context, batchIDs []string) (int64, error) {
	args := m.Called(ctx, batchIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) CountReservedBatch(ctx context.Context, batchID, buyerID string) (int, error) {
	args := m.Called(ctx, batchID, buyerID)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) FindByBatchID(ctx context.Context, batchID string) ([]*entity.Lead, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) FinalizePurchase(ctx context.Context, mortgageIDs []string, purchasedDate time.Time) error {
	args := m.Called(ctx, mortgageIDs, purchasedDate)
	return args.Error(0)
}

func (m *MockLeadRepository) StateAvailability(ctx context.Context, buyer *entity.Buyer, states []string) ([]StateAvailability, error) {
	args := m.Called(ctx, buyer, states)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]StateAvailability), args.Error(1)
}

func (m *MockLeadRepository) BucketAvailability(ctx context.Context, buyer *entity.Buyer, state string) ([]BucketAvailability, error) {
	args := m.Called(ctx, buyer, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BucketAvailability), args.Error(1)
}

// MockCartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindActiveByUser(ctx context.Context, userID string) ([]*entity.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.CartLine), args.Error(1)
}

func (m *MockCartRepository) FindByIDs(ctx context.Context, userID string, ids []string) ([]*entity.CartLine, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.CartLine), args.Error(1)
}

func (m *MockCartRepository) FindActiveByUserAndPricing(ctx context.Context, userID, state, pricingID string) (*entity.CartLine, error) {
	args := m.Called(ctx, userID, state, pricingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CartLine), args.Error(1)
}

func (m *MockCartRepository) Create(ctx context.Context, line *entity.CartLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockCartRepository) UpdateQuantity(ctx context.Context, userID, id string, quantity int) error {
	args := m.Called(ctx, userID, id, quantity)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockCartRepository) Deactivate(ctx context.Context, id, orderID string) error {
	args := m.Called(ctx, id, orderID)
	return args.Error(0)
}

// MockOrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *entity.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) CountSucceededOn(ctx context.Context, userID string, day time.Time) (int, error) {
	args := m.Called(ctx, userID, day)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) UpdatePaymentIntent(ctx context.Context, orderID, paymentIntentID string) error {
	args := m.Called(ctx, orderID, paymentIntentID)
	return args.Error(0)
}

func (m *MockOrderRepository) FindForPayment(ctx context.Context, userID, paymentIntentID, orderID string) (*entity.Order, error) {
	args := m.Called(ctx, userID, paymentIntentID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdatePaymentResult(ctx context.Context, orderID string, paymentIntentID string, amountReceivedCents int64, status string, invoiceData []byte) error {
	args := m.Called(ctx, orderID, paymentIntentID, amountReceivedCents, status, invoiceData)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) error {
	args := m.Called(ctx, paymentIntentID)
	return args.Error(0)
}

// MockAssigneeRepository
type MockAssigneeRepository struct {
	mock.Mock
}

func (m *MockAssigneeRepository) BulkCreate(ctx context.Context, rows []*entity.Assignee) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

// MockPricingRepository
type MockPricingRepository struct {
	mock.Mock
}

func (m *MockPricingRepository) FindByID(ctx context.Context, id string) (*PricingDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PricingDetail), args.Error(1)
}

// MockCache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockScheduler
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) ScheduleRelease(ctx context.Context, batchIDs []string, delay time.Duration) error {
	args := m.Called(ctx, batchIDs, delay)
	return args.Error(0)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, input stripepay.CheckoutSessionInput) (*stripepay.CheckoutSessionOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripepay.CheckoutSessionOutput), args.Error(1)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOperatorAlert(subject, htmlBody string) error {
	args := m.Called(subject, htmlBody)
	return args.Error(0)
}

func (m *MockMailer) SendPurchaseConfirmation(to, name, campaignName string, totalPaidCents int64, items []InvoiceItem) error {
	args := m.Called(to, name, campaignName, totalPaidCents, items)
	return args.Error(0)
}

func (m *MockMailer) SendPaymentFailedAlert(to, name string, amountCents int64) error {
	args := m.Called(to, name, amountCents)
	return args.Error(0)
}
