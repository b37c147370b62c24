package receipt

import (
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

func decimalInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// amountDue falls back to the server total for orders listed without lines.
func amountDue(order models.Order) decimal.Decimal {
	if len(order.Items) == 0 {
		return order.TotalAmount
	}
	return order.ComputedTotal()
}
