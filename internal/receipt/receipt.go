// Package receipt renders printable receipts for placed orders.
package receipt

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// DefaultQRSize is the edge length in pixels of a receipt QR code.
const DefaultQRSize = 256

const width = 40

// Text renders the order as a fixed-width receipt.
func Text(order models.Order) string {
	var b strings.Builder

	b.WriteString(center("ORDER #"+order.ID.String()) + "\n")
	if order.TableID != nil {
		b.WriteString(center("Table "+order.TableID.String()) + "\n")
	}
	if !order.PlacedAt.IsZero() {
		b.WriteString(center(order.PlacedAt.Format("2006-01-02 15:04")) + "\n")
	}
	b.WriteString(strings.Repeat("-", width) + "\n")

	for _, l := range order.Items {
		amount := l.UnitPrice.Mul(decimalInt(l.Quantity)).StringFixed(2)
		label := fmt.Sprintf("%dx %s", l.Quantity, l.Name)
		b.WriteString(columns(label, amount) + "\n")
	}

	b.WriteString(strings.Repeat("-", width) + "\n")
	b.WriteString(columns("TOTAL", amountDue(order).StringFixed(2)) + "\n")
	b.WriteString(columns("STATUS", order.Status.String()) + "\n")
	return b.String()
}

// Payload is the text carried by the receipt QR code.
func Payload(order models.Order) string {
	v := url.Values{}
	v.Set("order", order.ID.String())
	v.Set("total", amountDue(order).StringFixed(2))
	v.Set("status", order.Status.String())
	return "pos-receipt:?" + v.Encode()
}

// QRCode encodes the receipt payload as a PNG image.
func QRCode(order models.Order, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	png, err := qrcode.Encode(Payload(order), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode receipt qr for order %s: %w", order.ID, err)
	}
	return png, nil
}

func columns(left, right string) string {
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func center(s string) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}
