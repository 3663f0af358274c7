package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/kovaleads/marketplace/internal/usecase"
)

func NewEmailSender(host string, port int, user, password, from, operatorEmail string) *EmailSender {
	return &EmailSender{
		Host:          host,
		Port:          port,
		User:          user,
		Password:      password,
		From:          from,
		OperatorEmail: operatorEmail,
	}
}

// SendPurchaseConfirmation mails the buyer their campaign summary after a
// fully delivered order.
func (s *EmailSender) SendPurchaseConfirmation(to, name, campaignName string, totalPaidCents int64, items []usecase.InvoiceItem) error {
	data := PurchaseEmailData{
		Name:         name,
		CampaignName: campaignName,
		TotalPaid:    dollars(totalPaidCents),
	}
	for _, it := range items {
		data.Items = append(data.Items, PurchaseEmailItem{
			Title:       it.Title,
			Description: it.Description,
			State:       it.State,
			Quantity:    it.Quantity,
			Subtotal:    dollars(it.SubtotalCents),
		})
	}

	tmplPath := filepath.Join("templates", "purchase_summary.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("failed to read email template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.send(to, fmt.Sprintf("Your leads are on the way, %s! 🎉", name), body.String())
}

// SendOperatorAlert mails the operations inbox. Used for every condition
// where a buyer paid and something downstream misbehaved.
func (s *EmailSender) SendOperatorAlert(subject, htmlBody string) error {
	return s.send(s.OperatorEmail, subject, htmlBody)
}

func (s *EmailSender) SendPaymentFailedAlert(to, name string, amountCents int64) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your payment of %s did not go through, so no leads were charged or delivered. Your cart is unchanged; please try again.</p>",
		name, dollars(amountCents))
	return s.send(to, "Your lead purchase did not complete", body)
}

func (s *EmailSender) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}
	return nil
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
