package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kovaleads/marketplace/internal/entity"
)

func succeededEvent() PaymentEvent {
	return PaymentEvent{
		EventID:             "evt_1",
		PaymentIntentID:     "pi_1",
		CustomerID:          "cus_123",
		AmountCents:         51500,
		AmountReceivedCents: 51500,
		Status:              "succeeded",
		PaymentMethod:       "card",
		CardBrand:           "visa",
		CardLast4:           "4242",
		CardExpMonth:        12,
		CardExpYear:         2030,
	}
}

func reservationContextJSON(t *testing.T) string {
	t.Helper()
	rc := ReservationContext{
		OrderID:      "order-1",
		CampaignName: "M08312026",
		Buyer: BuyerContext{
			ID:           "buyer-1",
			Name:         "Jordan Smith",
			Email:        "jordan@agency.test",
			LeadAgentIDs: []int64{42},
		},
		Lines: map[string]string{"line-1": "batch-1"},
	}
	raw, err := json.Marshal(rc)
	assert.NoError(t, err)
	return string(raw)
}

func mockTime() time.Time {
	return time.Date(2026, time.August, 31, 15, 4, 5, 0, time.UTC)
}

func newFinalizeFixture() (*FinalizeCheckoutUseCase, *MockLeadRepository, *MockCartRepository, *MockOrderRepository, *MockAssigneeRepository, *MockCache, *MockMailer) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	orders := new(MockOrderRepository)
	assignees := new(MockAssigneeRepository)
	cache := new(MockCache)
	mailer := new(MockMailer)
	uc := NewFinalizeCheckoutUseCase(leads, carts, orders, assignees, cache, mailer)
	return uc, leads, carts, orders, assignees, cache, mailer
}

func TestFinalize_DuplicateEventIsNoOp(t *testing.T) {
	uc, leads, _, _, _, cache, _ := newFinalizeFixture()

	cache.On("SetNX", mock.Anything, "stripe_event_evt_1", "1", eventGuardTTL).
		Return(false, nil)

	err := uc.HandlePaymentSucceeded(context.Background(), succeededEvent())

	assert.NoError(t, err)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	leads.AssertNotCalled(t, "FindByBatchID", mock.Anything, mock.Anything)
}

func TestFinalize_MissingContextAlertsOperatorAndAcks(t *testing.T) {
	uc, leads, _, _, _, cache, mailer := newFinalizeFixture()

	cache.On("SetNX", mock.Anything, "stripe_event_evt_1", "1", eventGuardTTL).
		Return(true, nil)
	cache.On("Get", mock.Anything, mpOrderKey("cus_123", 51500)).
		Return("", ErrCacheMiss)
	mailer.On("SendOperatorAlert", mock.Anything, mock.Anything).Return(nil)

	err := uc.HandlePaymentSucceeded(context.Background(), succeededEvent())

	assert.NoError(t, err)
	mailer.AssertCalled(t, "SendOperatorAlert", "Payment received with no matching checkout", mock.Anything)
	leads.AssertNotCalled(t, "FindByBatchID", mock.Anything, mock.Anything)
}

func TestFinalize_HappyPathDeliversAndConfirms(t *testing.T) {
	uc, leads, carts, orders, assignees, cache, mailer := newFinalizeFixture()

	cache.On("SetNX", mock.Anything, "stripe_event_evt_1", "1", eventGuardTTL).
		Return(true, nil)
	cache.On("Get", mock.Anything, mpOrderKey("cus_123", 51500)).
		Return(reservationContextJSON(t), nil)

	reservedLeads := []*entity.Lead{
		{MortgageID: "m-1", State: "CA", SourceID: 2},
		{MortgageID: "m-2", State: "CA", SourceID: 2},
	}
	leads.On("FindByBatchID", mock.Anything, "batch-1").Return(reservedLeads, nil)
	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-1"}).
		Return([]*entity.CartLine{mailingLine("line-1", 2)}, nil)
	assignees.On("BulkCreate", mock.Anything, mock.MatchedBy(func(rows []*entity.Assignee) bool {
		return len(rows) == 2 && rows[0].AgentID == 42 && *rows[0].PurchasedUserID == "buyer-1"
	})).Return(nil)
	leads.On("FinalizePurchase", mock.Anything, []string{"m-1", "m-2"}, mock.Anything).Return(nil)
	carts.On("Deactivate", mock.Anything, "line-1", "order-1").Return(nil)

	order := entity.NewOrder("buyer-1", "M08312026", 50000, 51500, today(mockTime()))
	order.InvoiceID = 17
	snapshot, _ := json.Marshal(InvoiceSnapshot{Items: []InvoiceItem{{Title: "3+ month leads", Quantity: 2}}})
	order.InvoiceData = snapshot
	orders.On("FindForPayment", mock.Anything, "buyer-1", "pi_1", "order-1").Return(order, nil)
	orders.On("UpdatePaymentResult", mock.Anything, order.ID, "pi_1", int64(51500), "succeeded", mock.Anything).Return(nil)
	mailer.On("SendPurchaseConfirmation", "jordan@agency.test", "Jordan Smith", "M08312026", int64(51500), mock.Anything).Return(nil)
	cache.On("Delete", mock.Anything, mpOrderKey("cus_123", 51500)).Return(nil)

	err := uc.HandlePaymentSucceeded(context.Background(), succeededEvent())

	assert.NoError(t, err)
	mailer.AssertNotCalled(t, "SendOperatorAlert", mock.Anything, mock.Anything)
	cache.AssertCalled(t, "Delete", mock.Anything, mpOrderKey("cus_123", 51500))
}

func TestFinalize_EmptyBatchDoesNotDoubleAssign(t *testing.T) {
	uc, leads, carts, orders, assignees, cache, mailer := newFinalizeFixture()

	cache.On("SetNX", mock.Anything, "stripe_event_evt_1", "1", eventGuardTTL).
		Return(true, nil)
	cache.On("Get", mock.Anything, mpOrderKey("cus_123", 51500)).
		Return(reservationContextJSON(t), nil)

	// Batch already fulfilled by an earlier delivery.
	leads.On("FindByBatchID", mock.Anything, "batch-1").Return([]*entity.Lead{}, nil)

	order := entity.NewOrder("buyer-1", "M08312026", 50000, 51500, today(mockTime()))
	order.InvoiceData = []byte(`{}`)
	orders.On("FindForPayment", mock.Anything, "buyer-1", "pi_1", "order-1").Return(order, nil)
	orders.On("UpdatePaymentResult", mock.Anything, order.ID, "pi_1", int64(51500), "succeeded", mock.Anything).Return(nil)
	mailer.On("SendPurchaseConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	err := uc.HandlePaymentSucceeded(context.Background(), succeededEvent())

	assert.NoError(t, err)
	assignees.AssertNotCalled(t, "BulkCreate", mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalize_LineFailureAlertsButStillAcks(t *testing.T) {
	uc, leads, carts, orders, _, cache, mailer := newFinalizeFixture()

	cache.On("SetNX", mock.Anything, "stripe_event_evt_1", "1", eventGuardTTL).
		Return(true, nil)
	cache.On("Get", mock.Anything, mpOrderKey("cus_123", 51500)).
		Return(reservationContextJSON(t), nil)

	leads.On("FindByBatchID", mock.Anything, "batch-1").Return(nil, assert.AnError)
	mailer.On("SendOperatorAlert", mock.Anything, mock.Anything).Return(nil)

	order := entity.NewOrder("buyer-1", "M08312026", 50000, 51500, today(mockTime()))
	order.InvoiceData = []byte(`{}`)
	orders.On("FindForPayment", mock.Anything, "buyer-1", "pi_1", "order-1").Return(order, nil)
	orders.On("UpdatePaymentResult", mock.Anything, order.ID, "pi_1", int64(51500), "succeeded", mock.Anything).Return(nil)

	err := uc.HandlePaymentSucceeded(context.Background(), succeededEvent())

	// The buyer paid; the webhook is acked and the operator pages.
	assert.NoError(t, err)
	mailer.AssertCalled(t, "SendOperatorAlert", "Lead delivery failed after payment", mock.Anything)
	mailer.AssertNotCalled(t, "SendPurchaseConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	// Context stays cached so operators can replay the delivery.
	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything, mock.Anything)
}

func TestFinalize_PaymentFailedMarksOrderAndNotifies(t *testing.T) {
	uc, _, _, orders, _, cache, mailer := newFinalizeFixture()

	ev := succeededEvent()
	ev.Status = "requires_payment_method"

	cache.On("SetNX", mock.Anything, "stripe_event_evt_1", "1", eventGuardTTL).
		Return(true, nil)
	orders.On("MarkFailedByPaymentIntent", mock.Anything, "pi_1").Return(nil)
	cache.On("Get", mock.Anything, mpOrderKey("cus_123", 51500)).
		Return(reservationContextJSON(t), nil)
	mailer.On("SendPaymentFailedAlert", "jordan@agency.test", "Jordan Smith", int64(51500)).Return(nil)
	cache.On("Delete", mock.Anything, mpOrderKey("cus_123", 51500)).Return(nil)
	mailer.On("SendOperatorAlert", mock.Anything, mock.Anything).Return(nil)

	err := uc.HandlePaymentFailed(context.Background(), ev)

	assert.NoError(t, err)
	orders.AssertCalled(t, "MarkFailedByPaymentIntent", mock.Anything, "pi_1")
	mailer.AssertCalled(t, "SendPaymentFailedAlert", "jordan@agency.test", "Jordan Smith", int64(51500))
}
