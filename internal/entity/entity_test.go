package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCartLineValidations(t *testing.T) {
	_, err := NewCartLine("", "p1", "CA", 5)
	assert.Error(t, err)

	_, err = NewCartLine("u1", "", "CA", 5)
	assert.Error(t, err)

	_, err = NewCartLine("u1", "p1", "", 5)
	assert.Error(t, err)

	_, err = NewCartLine("u1", "p1", "CA", 0)
	assert.Error(t, err)

	line, err := NewCartLine("u1", "p1", "CA", 5)
	assert.NoError(t, err)
	assert.True(t, line.IsActive)
	assert.NotEmpty(t, line.ID)
}

func TestCartLineSubtotal(t *testing.T) {
	line := &CartLine{UnitPriceCents: 525, Quantity: 40}
	assert.Equal(t, int64(21000), line.Subtotal())
}

func TestOrderInvoiceNumber(t *testing.T) {
	o := NewOrder("u1", "M08312026", 50000, 51500, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC))
	o.InvoiceID = 42
	assert.Equal(t, "INV-20260831-42", o.InvoiceNumber())
}

func TestBuyerRouteAgent(t *testing.T) {
	b := &Buyer{
		LeadAgentIDs: []int64{100, 200},
		AgentsBySource: map[string]map[string]int64{
			"2": {"1": 300},
		},
	}

	// Exact route wins.
	assert.Equal(t, int64(300), b.RouteAgent("2", "1"))
	// No route falls back to the first lead agent.
	assert.Equal(t, int64(100), b.RouteAgent("9", "1"))
	assert.Equal(t, int64(100), b.RouteAgent("2", "7"))

	// No agents at all.
	empty := &Buyer{}
	assert.Zero(t, empty.RouteAgent("2", "1"))
}
