package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kovaleads/marketplace/internal/entity"
	"github.com/kovaleads/marketplace/internal/marketplace"
)

func testBuyer() *entity.Buyer {
	return &entity.Buyer{
		ID:               "buyer-1",
		Name:             "Jordan Smith",
		Email:            "jordan@agency.test",
		StripeCustomerID: "cus_123",
		LeadAgentIDs:     []int64{42},
	}
}

func mailingLine(id string, quantity int) *entity.CartLine {
	return &entity.CartLine{
		ID:             id,
		UserID:         "buyer-1",
		PricingID:      "price-" + id,
		State:          "CA",
		Month:          3,
		Completed:      true,
		SourceID:       2,
		Category:       marketplace.MailingCategory,
		Title:          "3+ month leads",
		Description:    "3-6 months",
		UnitPriceCents: 500,
		Quantity:       quantity,
		IsActive:       true,
	}
}

func TestReserveLeads_Success(t *testing.T) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	cache := new(MockCache)
	scheduler := new(MockScheduler)
	uc := NewReserveLeadsUseCase(leads, carts, cache, scheduler)

	line := mailingLine("line-1", 10)
	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-1"}).
		Return([]*entity.CartLine{line}, nil)
	leads.On("ClaimEligible", mock.Anything, mock.Anything, mock.Anything, 10).
		Return(10, nil)
	cache.On("Set", mock.Anything, mock.Anything, "line-1", marketplace.ReservationTTL).
		Return(nil)
	scheduler.On("ScheduleRelease", mock.Anything, mock.Anything, marketplace.ReservationTTL).
		Return(nil)

	reserved, err := uc.Execute(context.Background(), testBuyer(), []string{"line-1"})

	assert.NoError(t, err)
	assert.Len(t, reserved, 1)
	assert.Equal(t, "line-1", reserved[0].CartLineID)
	assert.NotEmpty(t, reserved[0].BatchID)
	scheduler.AssertCalled(t, "ScheduleRelease", mock.Anything, []string{reserved[0].BatchID}, marketplace.ReservationTTL)
}

func TestReserveLeads_ShortClaimRollsBackAndFails(t *testing.T) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	cache := new(MockCache)
	scheduler := new(MockScheduler)
	uc := NewReserveLeadsUseCase(leads, carts, cache, scheduler)

	line := mailingLine("line-1", 10)
	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-1"}).
		Return([]*entity.CartLine{line}, nil)
	// A concurrent buyer won part of the pool: only 6 of 10 claimed.
	leads.On("ClaimEligible", mock.Anything, mock.Anything, mock.Anything, 10).
		Return(6, nil)
	leads.On("ReleaseBatches", mock.Anything, mock.Anything).
		Return(int64(6), nil)

	reserved, err := uc.Execute(context.Background(), testBuyer(), []string{"line-1"})

	assert.Nil(t, reserved)
	assert.True(t, IsBadRequest(err))
	leads.AssertCalled(t, "ReleaseBatches", mock.Anything, mock.Anything)
	scheduler.AssertNotCalled(t, "ScheduleRelease", mock.Anything, mock.Anything, mock.Anything)
}

func TestReserveLeads_OneLineFailingRollsBackAll(t *testing.T) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	cache := new(MockCache)
	scheduler := new(MockScheduler)
	uc := NewReserveLeadsUseCase(leads, carts, cache, scheduler)

	lineA := mailingLine("line-a", 5)
	lineB := mailingLine("line-b", 8)
	lineB.State = "TX"
	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-a", "line-b"}).
		Return([]*entity.CartLine{lineA, lineB}, nil)

	// line-a fills, line-b comes up empty.
	leads.On("ClaimEligible", mock.Anything, mock.MatchedBy(func(f marketplace.Filter) bool {
		return f.State == "CA"
	}), mock.Anything, 5).Return(5, nil)
	leads.On("ClaimEligible", mock.Anything, mock.MatchedBy(func(f marketplace.Filter) bool {
		return f.State == "TX"
	}), mock.Anything, 8).Return(0, nil)

	cache.On("Set", mock.Anything, mock.Anything, "line-a", marketplace.ReservationTTL).
		Return(nil)
	leads.On("ReleaseBatches", mock.Anything, mock.Anything).
		Return(int64(5), nil)

	reserved, err := uc.Execute(context.Background(), testBuyer(), []string{"line-a", "line-b"})

	assert.Nil(t, reserved)
	assert.True(t, IsBadRequest(err))
	assert.EqualError(t, err, "Sorry, leads are currently unavailable, please try again")
	// The successful line's batch must be rolled back.
	leads.AssertCalled(t, "ReleaseBatches", mock.Anything, mock.MatchedBy(func(ids []string) bool {
		return len(ids) == 1
	}))
}

func TestReserveLeads_FreshUploadTierRejected(t *testing.T) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	cache := new(MockCache)
	scheduler := new(MockScheduler)
	uc := NewReserveLeadsUseCase(leads, carts, cache, scheduler)

	line := mailingLine("line-1", 3)
	line.Month = 0
	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-1"}).
		Return([]*entity.CartLine{line}, nil)

	reserved, err := uc.Execute(context.Background(), testBuyer(), []string{"line-1"})

	assert.Nil(t, reserved)
	assert.True(t, IsBadRequest(err))
	leads.AssertNotCalled(t, "ClaimEligible", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReserveLeads_UnknownLineRejected(t *testing.T) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	cache := new(MockCache)
	scheduler := new(MockScheduler)
	uc := NewReserveLeadsUseCase(leads, carts, cache, scheduler)

	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-1", "line-x"}).
		Return([]*entity.CartLine{mailingLine("line-1", 2)}, nil)

	reserved, err := uc.Execute(context.Background(), testBuyer(), []string{"line-1", "line-x"})

	assert.Nil(t, reserved)
	assert.True(t, IsBadRequest(err))
}

func TestReserveLeads_CacheFailureReleasesBatch(t *testing.T) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	cache := new(MockCache)
	scheduler := new(MockScheduler)
	uc := NewReserveLeadsUseCase(leads, carts, cache, scheduler)

	line := mailingLine("line-1", 4)
	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-1"}).
		Return([]*entity.CartLine{line}, nil)
	leads.On("ClaimEligible", mock.Anything, mock.Anything, mock.Anything, 4).
		Return(4, nil)
	cache.On("Set", mock.Anything, mock.Anything, "line-1", marketplace.ReservationTTL).
		Return(assert.AnError)
	leads.On("ReleaseBatches", mock.Anything, mock.Anything).
		Return(int64(4), nil)

	reserved, err := uc.Execute(context.Background(), testBuyer(), []string{"line-1"})

	assert.Nil(t, reserved)
	assert.True(t, IsBadRequest(err))
	leads.AssertCalled(t, "ReleaseBatches", mock.Anything, mock.Anything)
}

func TestReserveLeads_SchedulerFailureDoesNotFailReservation(t *testing.T) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	cache := new(MockCache)
	scheduler := new(MockScheduler)
	uc := NewReserveLeadsUseCase(leads, carts, cache, scheduler)

	line := mailingLine("line-1", 2)
	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-1"}).
		Return([]*entity.CartLine{line}, nil)
	leads.On("ClaimEligible", mock.Anything, mock.Anything, mock.Anything, 2).
		Return(2, nil)
	cache.On("Set", mock.Anything, mock.Anything, "line-1", marketplace.ReservationTTL).
		Return(nil)
	scheduler.On("ScheduleRelease", mock.Anything, mock.Anything, marketplace.ReservationTTL).
		Return(assert.AnError)

	reserved, err := uc.Execute(context.Background(), testBuyer(), []string{"line-1"})

	// The periodic sweeper backstops a lost release message.
	assert.NoError(t, err)
	assert.Len(t, reserved, 1)
}

func TestReserveLeads_WorkerTimeoutFailsClosed(t *testing.T) {
	leads := new(MockLeadRepository)
	carts := new(MockCartRepository)
	cache := new(MockCache)
	scheduler := new(MockScheduler)
	uc := NewReserveLeadsUseCase(leads, carts, cache, scheduler)
	uc.ResultTimeout = 50 * time.Millisecond

	line := mailingLine("line-1", 2)
	carts.On("FindByIDs", mock.Anything, "buyer-1", []string{"line-1"}).
		Return([]*entity.CartLine{line}, nil)
	leads.On("ClaimEligible", mock.Anything, mock.Anything, mock.Anything, 2).
		Run(func(args mock.Arguments) { time.Sleep(300 * time.Millisecond) }).
		Return(2, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	leads.On("ReleaseBatches", mock.Anything, mock.Anything).Return(int64(0), nil)

	reserved, err := uc.Execute(context.Background(), testBuyer(), []string{"line-1"})

	assert.Nil(t, reserved)
	assert.True(t, IsBadRequest(err))
}
