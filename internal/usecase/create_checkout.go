package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kovaleads/marketplace/internal/entity"
	"github.com/kovaleads/marketplace/internal/infra/integration/stripepay"
)

// CommissionPct is the card-processing commission added on top of the cart
// subtotal.
const CommissionPct = 0.03

// totalToleranceCents allows the client-computed total to drift by up to a
// dollar from the server-side figure (rounding across lines).
const totalToleranceCents = 100

// orderContextTTL keeps the reservation context around a little longer than
// the reservation itself so a slow payment still finds it.
const orderContextTTL = 20 * time.Minute

type CreateCheckoutUseCase struct {
	Carts   CartRepository
	Leads   LeadRepository
	Orders  OrderRepository
	Cache   Cache
	Gateway PaymentGateway

	CompanyAddress CompanyAddress
}

func NewCreateCheckoutUseCase(carts CartRepository, leads LeadRepository, orders OrderRepository, cache Cache, gateway PaymentGateway, company CompanyAddress) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		Carts:          carts,
		Leads:          leads,
		Orders:         orders,
		Cache:          cache,
		Gateway:        gateway,
		CompanyAddress: company,
	}
}

// Execute turns a set of reserved cart lines into a pending order plus a
// hosted checkout session, and parks the reservation context in the cache so
// the payment webhook can recover it by (customer, amount).
func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, buyer *entity.Buyer, input CreateCheckoutInput) (*CreateCheckoutOutput, error) {
	if len(input.Items) == 0 || input.SuccessURL == "" || input.CancelURL == "" {
		return nil, BadRequest("items, success_url and cancel_url are required")
	}

	lineIDs := make([]string, 0, len(input.Items))
	for id := range input.Items {
		lineIDs = append(lineIDs, id)
	}
	lines, err := uc.Carts.FindByIDs(ctx, buyer.ID, lineIDs)
	if err != nil {
		return nil, Internal("failed to load cart lines", err)
	}
	if len(lines) != len(lineIDs) {
		return nil, BadRequest("one or more cart lines do not belong to this buyer")
	}

	// The reservation must still be standing for every line before we take
	// the buyer to a payment page.
	for _, line := range lines {
		batchID := input.Items[line.ID]
		if batchID == "" {
			return nil, BadRequest("missing reservation for cart line " + line.ID)
		}
		held, err := uc.Leads.CountReservedBatch(ctx, batchID, buyer.ID)
		if err != nil {
			return nil, Internal("failed to verify reservation", err)
		}
		if held != line.Quantity {
			return nil, NoContent("Sorry, leads are out of stock")
		}
	}

	var subtotal int64
	var descParts []string
	items := make([]InvoiceItem, 0, len(lines))
	for _, line := range lines {
		sub := line.Subtotal()
		subtotal += sub
		items = append(items, InvoiceItem{
			Title:          line.Title,
			Description:    fmt.Sprintf("%s (%s)", line.Description, completedLabel(line.Completed)),
			State:          line.State,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			SubtotalCents:  sub,
		})
		descParts = append(descParts, fmt.Sprintf("%s (%d %s)", line.Description, line.Quantity, completedLabel(line.Completed)))
	}
	commission := int64(float64(subtotal)*CommissionPct + 0.5)
	total := subtotal + commission
	if diff := total - input.TotalAmountCents; diff > totalToleranceCents || diff < -totalToleranceCents {
		log.Printf("checkout total mismatch: server=%d client=%d buyer=%s", total, input.TotalAmountCents, buyer.ID)
		return nil, BadRequest("an issue occurred with the total price, please try again later")
	}

	// Two equal-amount checkouts from the same customer would collide on
	// the webhook correlation key, so the second one is refused outright.
	ctxKey := mpOrderKey(buyer.StripeCustomerID, total)
	if _, err := uc.Cache.Get(ctx, ctxKey); err == nil {
		return nil, BadRequest("the same amount was attempted a few minutes ago, please wait and try again")
	} else if !errors.Is(err, ErrCacheMiss) {
		return nil, Internal("failed to check pending orders", err)
	}

	purchaseDate := today(time.Now().UTC())
	ordersToday, err := uc.Orders.CountSucceededOn(ctx, buyer.ID, purchaseDate)
	if err != nil {
		return nil, Internal("failed to count today's orders", err)
	}
	campaign := "M" + purchaseDate.Format("01022006")
	if ordersToday > 0 {
		campaign = fmt.Sprintf("%s(%d)", campaign, ordersToday)
	}

	order := entity.NewOrder(buyer.ID, campaign, subtotal, total, purchaseDate)
	snapshot := InvoiceSnapshot{
		From: uc.CompanyAddress,
		BillTo: InvoiceBillTo{
			Name:       buyer.Name,
			AgencyName: buyer.AgencyName,
			Email:      buyer.Email,
			Phone:      buyer.Phone,
		},
		PurchaseDate:   purchaseDate.Format("January 02, 2006"),
		CommissionPct:  CommissionPct * 100,
		Items:          items,
		SubtotalCents:  subtotal,
		TotalCents:     total,
		PaymentDetails: map[string]string{},
	}
	snapBytes, err := json.Marshal(snapshot)
	if err != nil {
		return nil, Internal("failed to build invoice snapshot", err)
	}
	order.InvoiceData = snapBytes
	if err := uc.Orders.Create(ctx, order); err != nil {
		return nil, Internal("failed to create order", err)
	}

	session, err := uc.Gateway.CreateCheckoutSession(ctx, stripepay.CheckoutSessionInput{
		CustomerID:  buyer.StripeCustomerID,
		Description: strings.Join(descParts, "\n"),
		AmountCents: total,
		SuccessURL:  input.SuccessURL,
		CancelURL:   input.CancelURL,
	})
	if err != nil {
		return nil, Internal("payment provider refused the checkout session", err)
	}
	if err := uc.Orders.UpdatePaymentIntent(ctx, order.ID, session.PaymentIntentID); err != nil {
		return nil, Internal("failed to stamp payment intent on order", err)
	}

	rc := ReservationContext{
		OrderID:      order.ID,
		CampaignName: campaign,
		Buyer: BuyerContext{
			ID:             buyer.ID,
			Name:           buyer.Name,
			Email:          buyer.Email,
			AgencyName:     buyer.AgencyName,
			LeadAgentIDs:   buyer.LeadAgentIDs,
			AgentsBySource: buyer.AgentsBySource,
		},
		Lines: input.Items,
	}
	rcBytes, err := json.Marshal(rc)
	if err != nil {
		return nil, Internal("failed to encode reservation context", err)
	}
	if err := uc.Cache.Set(ctx, ctxKey, string(rcBytes), orderContextTTL); err != nil {
		return nil, Internal("failed to store reservation context", err)
	}

	return &CreateCheckoutOutput{
		OrderID:       order.ID,
		SessionID:     session.SessionID,
		CheckoutURL:   session.URL,
		InvoiceNumber: order.InvoiceNumber(),
	}, nil
}

func completedLabel(completed bool) string {
	if completed {
		return "completed"
	}
	return "incomplete"
}
