package service

import (
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// DefaultTaxRate is applied to the cart display only; orders carry no extra tax.
var DefaultTaxRate = decimal.RequireFromString("0.10")

// OrderTotal represents the pricing breakdown for a cart.
type OrderTotal struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// CalculateTax computes tax based on subtotal and tax rate.
func CalculateTax(subtotal, taxRate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate)
}

// CalculateTotals computes the full breakdown for a set of lines.
func CalculateTotals[T models.Priced](lines []T, taxRate decimal.Decimal) OrderTotal {
	subtotal := models.Subtotal(lines)
	tax := CalculateTax(subtotal, taxRate)
	return OrderTotal{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// OrderAmount is the tax-free amount due for an order. Orders listed without their lines only
// carry the server's total, which is used as is.
func OrderAmount(order models.Order) decimal.Decimal {
	if len(order.Items) == 0 {
		return order.TotalAmount
	}
	return order.ComputedTotal()
}
