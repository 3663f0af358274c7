package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/kovaleads/marketplace/internal/entity"
)

// DefaultFinalizeTimeout bounds the per-line fulfillment rendezvous. The
// webhook must be acked well inside the provider's retry window.
const DefaultFinalizeTimeout = 20 * time.Second

// eventGuardTTL keeps the processed-event marker long enough to outlive the
// provider's redelivery schedule.
const eventGuardTTL = 24 * time.Hour

type FinalizeCheckoutUseCase struct {
	Leads     LeadRepository
	Carts     CartRepository
	Orders    OrderRepository
	Assignees AssigneeRepository
	Cache     Cache
	Mailer    Mailer

	ResultTimeout time.Duration
}

func NewFinalizeCheckoutUseCase(leads LeadRepository, carts CartRepository, orders OrderRepository, assignees AssigneeRepository, cache Cache, mailer Mailer) *FinalizeCheckoutUseCase {
	return &FinalizeCheckoutUseCase{
		Leads:         leads,
		Carts:         carts,
		Orders:        orders,
		Assignees:     assignees,
		Cache:         cache,
		Mailer:        mailer,
		ResultTimeout: DefaultFinalizeTimeout,
	}
}

type lineResult struct {
	cartLineID string
	err        error
}

// HandlePaymentSucceeded fulfills a paid checkout: it recovers the
// reservation context by (customer, amount), assigns the reserved leads to
// the buyer's CRM agents, marks them sold and closes the cart lines.
//
// The webhook is always acked. A fulfillment failure after the buyer has
// paid is an operator problem, not a payment problem; letting the provider
// retry would only re-run work that is not safely repeatable end to end.
func (uc *FinalizeCheckoutUseCase) HandlePaymentSucceeded(ctx context.Context, ev PaymentEvent) error {
	fresh, err := uc.Cache.SetNX(ctx, stripeEventKey(ev.EventID), "1", eventGuardTTL)
	if err != nil {
		return Internal("failed to check event idempotency key", err)
	}
	if !fresh {
		log.Printf("payment event %s already processed, skipping", ev.EventID)
		return nil
	}

	ctxKey := mpOrderKey(ev.CustomerID, ev.AmountReceivedCents)
	raw, err := uc.Cache.Get(ctx, ctxKey)
	if errors.Is(err, ErrCacheMiss) {
		log.Printf("CRITICAL: no reservation context for customer=%s amount=%d intent=%s", ev.CustomerID, ev.AmountReceivedCents, ev.PaymentIntentID)
		uc.alertOperator("Payment received with no matching checkout",
			fmt.Sprintf("<p>A payment succeeded but no reservation context was found.</p><p>Customer: %s<br>Amount: %d cents<br>Payment intent: %s</p><p>The buyer has been charged; reconcile manually.</p>",
				ev.CustomerID, ev.AmountReceivedCents, ev.PaymentIntentID))
		return nil
	}
	if err != nil {
		return Internal("failed to load reservation context", err)
	}
	var rc ReservationContext
	if err := json.Unmarshal([]byte(raw), &rc); err != nil {
		return Internal("corrupt reservation context", err)
	}

	results := make(chan lineResult, len(rc.Lines))
	purchaseDate := today(time.Now().UTC())
	for cartLineID, batchID := range rc.Lines {
		go uc.fulfillLine(ctx, rc, cartLineID, batchID, purchaseDate, results)
	}

	failed := 0
	for i := 0; i < len(rc.Lines); i++ {
		select {
		case res := <-results:
			if res.err != nil {
				failed++
				log.Printf("CRITICAL: fulfillment failed for cart line %s order %s: %v", res.cartLineID, rc.OrderID, res.err)
				uc.alertOperator("Lead delivery failed after payment",
					fmt.Sprintf("<p>Fulfillment failed for cart line %s on order %s.</p><p>Buyer: %s (%s)<br>Error: %v</p><p>Deliver the leads manually.</p>",
						res.cartLineID, rc.OrderID, rc.Buyer.Name, rc.Buyer.Email, res.err))
			}
		case <-time.After(uc.ResultTimeout):
			failed += len(rc.Lines) - i
			log.Printf("CRITICAL: fulfillment timed out for order %s with %d lines pending", rc.OrderID, len(rc.Lines)-i)
			uc.alertOperator("Lead delivery timed out after payment",
				fmt.Sprintf("<p>Fulfillment timed out on order %s with %d lines still pending.</p><p>Buyer: %s (%s)</p>",
					rc.OrderID, len(rc.Lines)-i, rc.Buyer.Name, rc.Buyer.Email))
			i = len(rc.Lines)
		}
	}

	uc.recordPayment(ctx, rc, ev, failed == 0)

	if failed > 0 {
		// Context stays cached so operators can replay the lines by hand.
		return nil
	}
	if err := uc.Cache.Delete(ctx, ctxKey); err != nil {
		log.Printf("failed to drop reservation context %s: %v", ctxKey, err)
	}
	return nil
}

// fulfillLine delivers one reserved batch: CRM assignment, sold status,
// cart-line closure. A batch that holds zero leads is treated as already
// delivered so webhook replays cannot double-assign.
func (uc *FinalizeCheckoutUseCase) fulfillLine(ctx context.Context, rc ReservationContext, cartLineID, batchID string, purchaseDate time.Time, results chan<- lineResult) {
	leads, err := uc.Leads.FindByBatchID(ctx, batchID)
	if err != nil {
		results <- lineResult{cartLineID: cartLineID, err: fmt.Errorf("load batch %s: %w", batchID, err)}
		return
	}
	if len(leads) == 0 {
		results <- lineResult{cartLineID: cartLineID}
		return
	}

	lines, err := uc.Carts.FindByIDs(ctx, rc.Buyer.ID, []string{cartLineID})
	if err != nil || len(lines) == 0 {
		results <- lineResult{cartLineID: cartLineID, err: fmt.Errorf("load cart line: %w", err)}
		return
	}
	line := lines[0]

	buyer := entity.Buyer{
		ID:             rc.Buyer.ID,
		LeadAgentIDs:   rc.Buyer.LeadAgentIDs,
		AgentsBySource: rc.Buyer.AgentsBySource,
	}
	agentID := buyer.RouteAgent(strconv.Itoa(line.SourceID), strconv.Itoa(line.Category))
	if agentID == 0 {
		results <- lineResult{cartLineID: cartLineID, err: fmt.Errorf("no agent route for source %d category %d", line.SourceID, line.Category)}
		return
	}

	rows := make([]*entity.Assignee, 0, len(leads))
	mortgageIDs := make([]string, 0, len(leads))
	for _, lead := range leads {
		rows = append(rows, entity.NewAssignee(lead.MortgageID, agentID, rc.Buyer.ID, cartLineID, rc.CampaignName, purchaseDate))
		mortgageIDs = append(mortgageIDs, lead.MortgageID)
	}
	if err := uc.Assignees.BulkCreate(ctx, rows); err != nil {
		results <- lineResult{cartLineID: cartLineID, err: fmt.Errorf("assign batch %s: %w", batchID, err)}
		return
	}
	if err := uc.Leads.FinalizePurchase(ctx, mortgageIDs, purchaseDate); err != nil {
		results <- lineResult{cartLineID: cartLineID, err: fmt.Errorf("finalize batch %s: %w", batchID, err)}
		return
	}
	if err := uc.Carts.Deactivate(ctx, cartLineID, rc.OrderID); err != nil {
		results <- lineResult{cartLineID: cartLineID, err: fmt.Errorf("close cart line: %w", err)}
		return
	}
	results <- lineResult{cartLineID: cartLineID}
}

// recordPayment stamps the payment result and card details on the order and,
// on a fully delivered order, sends the buyer their confirmation. Failures
// here are logged, never surfaced: the payment already settled.
func (uc *FinalizeCheckoutUseCase) recordPayment(ctx context.Context, rc ReservationContext, ev PaymentEvent, confirm bool) {
	order, err := uc.Orders.FindForPayment(ctx, rc.Buyer.ID, ev.PaymentIntentID, rc.OrderID)
	if err != nil {
		log.Printf("CRITICAL: order %s not found for payment intent %s: %v", rc.OrderID, ev.PaymentIntentID, err)
		return
	}

	var snapshot InvoiceSnapshot
	if err := json.Unmarshal(order.InvoiceData, &snapshot); err != nil {
		log.Printf("corrupt invoice snapshot on order %s: %v", order.ID, err)
		snapshot = InvoiceSnapshot{}
	}
	snapshot.InvoiceNumber = order.InvoiceNumber()
	snapshot.PaymentDetails = map[string]string{
		"method":     ev.PaymentMethod,
		"card_brand": ev.CardBrand,
		"card_last4": ev.CardLast4,
		"card_exp":   fmt.Sprintf("%02d/%d", ev.CardExpMonth, ev.CardExpYear),
	}
	snapBytes, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("failed to encode invoice snapshot for order %s: %v", order.ID, err)
		snapBytes = order.InvoiceData
	}
	if err := uc.Orders.UpdatePaymentResult(ctx, order.ID, ev.PaymentIntentID, ev.AmountReceivedCents, "succeeded", snapBytes); err != nil {
		log.Printf("CRITICAL: failed to record payment on order %s: %v", order.ID, err)
		return
	}
	if !confirm {
		return
	}
	if err := uc.Mailer.SendPurchaseConfirmation(rc.Buyer.Email, rc.Buyer.Name, rc.CampaignName, ev.AmountReceivedCents, snapshot.Items); err != nil {
		log.Printf("failed to send purchase confirmation for order %s: %v", order.ID, err)
	}
}

// HandlePaymentFailed marks the order failed and tells both sides. The
// reservations themselves are left to expire through the normal sweep.
func (uc *FinalizeCheckoutUseCase) HandlePaymentFailed(ctx context.Context, ev PaymentEvent) error {
	fresh, err := uc.Cache.SetNX(ctx, stripeEventKey(ev.EventID), "1", eventGuardTTL)
	if err != nil {
		return Internal("failed to check event idempotency key", err)
	}
	if !fresh {
		return nil
	}

	if err := uc.Orders.MarkFailedByPaymentIntent(ctx, ev.PaymentIntentID); err != nil {
		log.Printf("failed to mark order failed for intent %s: %v", ev.PaymentIntentID, err)
	}

	ctxKey := mpOrderKey(ev.CustomerID, ev.AmountCents)
	raw, err := uc.Cache.Get(ctx, ctxKey)
	if err == nil {
		var rc ReservationContext
		if jsonErr := json.Unmarshal([]byte(raw), &rc); jsonErr == nil {
			if mailErr := uc.Mailer.SendPaymentFailedAlert(rc.Buyer.Email, rc.Buyer.Name, ev.AmountCents); mailErr != nil {
				log.Printf("failed to send payment-failed email: %v", mailErr)
			}
		}
		if delErr := uc.Cache.Delete(ctx, ctxKey); delErr != nil {
			log.Printf("failed to drop reservation context %s: %v", ctxKey, delErr)
		}
	}

	uc.alertOperator("Marketplace payment failed",
		fmt.Sprintf("<p>A checkout payment failed.</p><p>Customer: %s<br>Amount: %d cents<br>Payment intent: %s</p>",
			ev.CustomerID, ev.AmountCents, ev.PaymentIntentID))
	return nil
}

func (uc *FinalizeCheckoutUseCase) alertOperator(subject, htmlBody string) {
	if err := uc.Mailer.SendOperatorAlert(subject, htmlBody); err != nil {
		log.Printf("CRITICAL: failed to send operator alert %q: %v", subject, err)
	}
}
