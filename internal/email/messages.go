package email

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"time"

	"pawmart/api/internal/models"
)

// Kind identifies which notification an email carries. It keys mock emails in Redis.
type Kind string

const (
	KindOrderReceived Kind = "order_received" // to the buyer
	KindNewOrder      Kind = "new_order"      // to the listing owner
	KindUnknown       Kind = "unknown"
)

const (
	subjectOrderReceived = "Order received: "
	subjectNewOrder      = "New order for "
)

// KindOf recovers the notification kind from a subject line built by this package.
func KindOf(subject string) Kind {
	switch {
	case strings.HasPrefix(subject, subjectOrderReceived):
		return KindOrderReceived
	case strings.HasPrefix(subject, subjectNewOrder):
		return KindNewOrder
	default:
		return KindUnknown
	}
}

// MockEmailKey is the Redis key a mock email for recipient and kind is stored under.
func MockEmailKey(recipient string, kind Kind) string {
	return fmt.Sprintf("mockemail:%s:%s", recipient, kind)
}

// Email is a composed plain-text notification.
type Email struct {
	Kind    Kind
	To      []string
	Subject string
	Body    string
}

func pickupDate(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006")
}

// OrderReceivedEmail confirms an order to the buyer.
func OrderReceivedEmail(order *models.Order) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", order.BuyerName)
	fmt.Fprintf(&b, "We received your order for %s.\n\n", order.ProductName)
	fmt.Fprintf(&b, "Quantity: %d\n", order.Quantity)
	fmt.Fprintf(&b, "Price: %.2f\n", order.Price)
	fmt.Fprintf(&b, "Pickup date: %s\n", pickupDate(order.Date))
	fmt.Fprintf(&b, "Address: %s\n", order.Address)
	fmt.Fprintf(&b, "\nOrder reference: %s\n", order.ID.Hex())

	return Email{
		Kind:    KindOrderReceived,
		To:      []string{order.Email},
		Subject: subjectOrderReceived + order.ProductName,
		Body:    b.String(),
	}
}

// NewOrderEmail tells the listing owner that someone ordered their listing.
func NewOrderEmail(order *models.Order, listing *models.Listing) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\n%s placed an order for your listing %q.\n\n", order.BuyerName, listing.Name)
	fmt.Fprintf(&b, "Quantity: %d\n", order.Quantity)
	fmt.Fprintf(&b, "Pickup date: %s\n", pickupDate(order.Date))
	fmt.Fprintf(&b, "Buyer email: %s\n", order.Email)
	fmt.Fprintf(&b, "Buyer phone: %s\n", order.Phone)
	fmt.Fprintf(&b, "Buyer address: %s\n", order.Address)
	if order.AdditionalNotes != "" {
		fmt.Fprintf(&b, "\nNotes from the buyer:\n%s\n", order.AdditionalNotes)
	}

	return Email{
		Kind:    KindNewOrder,
		To:      []string{listing.Email},
		Subject: subjectNewOrder + listing.Name,
		Body:    b.String(),
	}
}

// Raw renders the email as an RFC 5322 message with a UTF-8 plain-text body.
func (e Email) Raw(from string, now time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(e.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", e.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(e.Body, "\n", "\r\n"))
	return buf.Bytes()
}
