package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/domain"
)

const maxAttempts = 3

// Dispatcher sends order confirmation emails. Delivery is best-effort: the
// ordering flow completes whether or not the confirmation goes out.
type Dispatcher interface {
	DispatchOrderConfirmation(ctx context.Context, order *domain.Order) bool
}

// MailDispatcher implements Dispatcher on top of a Mailer with bounded retry.
type MailDispatcher struct {
	mailer      Mailer
	backoffUnit time.Duration
	logger      *slog.Logger
}

// NewMailDispatcher creates a dispatcher. backoffUnit scales the delay
// between attempts; attempt i waits i*backoffUnit before the next try.
func NewMailDispatcher(mailer Mailer, backoffUnit time.Duration, logger *slog.Logger) *MailDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MailDispatcher{
		mailer:      mailer,
		backoffUnit: backoffUnit,
		logger:      logger,
	}
}

// DispatchOrderConfirmation sends the confirmation email for a freshly
// placed order, retrying up to maxAttempts times. Returns false once retries
// are exhausted; callers treat that as non-fatal.
func (d *MailDispatcher) DispatchOrderConfirmation(ctx context.Context, order *domain.Order) bool {
	msg := Message{
		To:       order.EmailAddress,
		Subject:  fmt.Sprintf("Order Confirmation - Order #%d", order.OrderNumber),
		TextBody: confirmationText(order),
		HTMLBody: confirmationHTML(order),
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := d.mailer.Send(ctx, msg)
		if err == nil {
			d.logger.Info("confirmation email sent", "to", msg.To, "order_number", order.OrderNumber)
			return true
		}

		d.logger.Warn("confirmation email attempt failed",
			"attempt", attempt, "to", msg.To, "order_number", order.OrderNumber, "error", err)

		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt) * d.backoffUnit)
		}
	}

	d.logger.Error("confirmation email gave up after retries", "to", msg.To, "order_number", order.OrderNumber)
	return false
}

func confirmationText(order *domain.Order) string {
	return fmt.Sprintf(
		"Dear %s,\n\nYour order has been successfully placed!\n\nOrder Details:\n- Order Number: #%d\n- Product: %s %s %s\n- Payment Method: %s\n- Shipping Address: %s\n\nThank you for shopping with us!",
		order.ClientName, order.OrderNumber, order.ProductType, order.ProductName,
		order.ProductNumber, order.PaymentMethod, order.ShippingAddress,
	)
}

func confirmationHTML(order *domain.Order) string {
	rows := []struct{ label, value string }{
		{"Order Number", fmt.Sprintf("#%d", order.OrderNumber)},
		{"Product", fmt.Sprintf("%s %s %s", order.ProductType, order.ProductName, order.ProductNumber)},
		{"Payment Method", order.PaymentMethod},
		{"Shipping Address", order.ShippingAddress},
	}

	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(fmt.Sprintf("<p>Dear %s,</p>", html.EscapeString(order.ClientName)))
	b.WriteString("<p>Your order has been successfully placed!</p>")
	b.WriteString("<h2>Order Details</h2><table>")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("<tr><td><b>%s:</b></td><td>%s</td></tr>",
			html.EscapeString(row.label), html.EscapeString(row.value)))
	}
	b.WriteString("</table>")
	b.WriteString("<p>Thank you for shopping with us!</p>")
	b.WriteString("</body></html>")
	return b.String()
}
