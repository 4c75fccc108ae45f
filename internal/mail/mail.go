// Package mail delivers order notifications to staff.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/suoapvs/alexcoffee/internal/models"
	"github.com/suoapvs/alexcoffee/pkg/logging"
)

// Sender delivers a formatted notification for a created order.
type Sender interface {
	Send(ctx context.Context, order *models.Order) error
}

// SMTPSender sends order notifications through a plain SMTP relay.
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	from     string
	to       string
	log      *logging.Logger
}

// NewSMTPSender builds an SMTP sender. addr is host:port; username may
// be empty for an unauthenticated relay.
func NewSMTPSender(addr, host, username, password, from, to string, log *logging.Logger) *SMTPSender {
	return &SMTPSender{
		addr:     addr,
		host:     host,
		username: username,
		password: password,
		from:     from,
		to:       to,
		log:      log.With("component", "mail"),
	}
}

// Send delivers the staff notification for a new order.
func (s *SMTPSender) Send(ctx context.Context, order *models.Order) error {
	body := FormatOrderMessage(order)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: New order %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.from, s.to, order.Number, body)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	if err := smtp.SendMail(s.addr, auth, s.from, []string{s.to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send order mail: %w", err)
	}
	s.log.Info("order notification sent", "order_number", order.Number)
	return nil
}

// FormatOrderMessage renders the plain-text staff message for an order.
func FormatOrderMessage(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s from %s\n\n", order.Number, order.Date.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Client: %s\nEmail: %s\nPhone: %s\n\n", order.Client.Name, order.Client.Email, order.Client.Phone)
	for i := range order.SalePositions {
		p := &order.SalePositions[i]
		fmt.Fprintf(&b, "  %s x%d = %.2f\n", p.Product.Title, p.Number, p.Price())
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\n", order.Price())
	if order.ShippingAddress != "" {
		fmt.Fprintf(&b, "Address: %s\n", order.ShippingAddress)
	}
	return b.String()
}

// NopSender discards notifications. Used when no SMTP relay is
// configured and in tests.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, order *models.Order) error { return nil }
