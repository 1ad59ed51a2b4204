// internal/adapters/out/mail/mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	orderdom "storefront/internal/domain/order"
)

// EmailClient is the low-level transport (SendGrid in production, a recorder in tests).
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Mailer implements usecase.AccountMailer and usecase.OrderMailer.
type Mailer struct {
	client      EmailClient
	fromAddress string
	appBaseURL  string
}

func NewMailer(client EmailClient, fromAddress, appBaseURL string) *Mailer {
	return &Mailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
		appBaseURL:  strings.TrimRight(strings.TrimSpace(appBaseURL), "/"),
	}
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, to, link string) error {
	subject := "Verify your email address"
	body := fmt.Sprintf(`Welcome!

Please confirm your email address by opening the link below:

  %s

Verified accounts can submit support tickets and receive order updates.

If you did not create an account, you can ignore this message.

-- 
%s`, strings.TrimSpace(link), m.signature())
	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(to), subject, body)
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, link string) error {
	subject := "Reset your password"
	body := fmt.Sprintf(`We received a request to reset your password.

Open the link below to choose a new one:

  %s

If you did not ask for this, no action is needed.

-- 
%s`, strings.TrimSpace(link), m.signature())
	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(to), subject, body)
}

func (m *Mailer) SendOrderConfirmation(ctx context.Context, to string, o orderdom.Order) error {
	subject := fmt.Sprintf("Order %s confirmed", o.OrderNumber)

	var lines strings.Builder
	for _, it := range o.Items {
		lineTotal := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(&lines, "  %d x %s  %s\n", it.Quantity, it.Name, lineTotal.StringFixed(2))
	}

	body := fmt.Sprintf(`Thank you for your order!

Order number: %s

%s
  Subtotal: %s
  Shipping: %s
  Total:    %s

Shipping to:
  %s

You can follow the order at %s/orders/%s

-- 
%s`,
		o.OrderNumber,
		strings.TrimRight(lines.String(), "\n"),
		money(o.Subtotal), money(o.Shipping), money(o.Total),
		formatAddress(o.Address),
		m.appBaseURL, o.ID,
		m.signature(),
	)
	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(to), subject, body)
}

func (m *Mailer) signature() string {
	if m.appBaseURL == "" {
		return "Storefront"
	}
	return "Storefront " + m.appBaseURL
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatAddress(a orderdom.Address) string {
	parts := []string{a.FullName, a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	city := strings.TrimSpace(strings.Join([]string{a.PostalCode, a.City, a.State}, " "))
	parts = append(parts, city, a.Country)
	return strings.Join(parts, "\n  ")
}

// maskAddress keeps the first character of the local part.
func maskAddress(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
