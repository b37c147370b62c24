package models

import "github.com/shopspring/decimal"

func init() {
	// The restaurant API binds amounts into BigDecimal fields and expects JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Priced is any line that contributes unit price x quantity to a total.
type Priced interface {
	LinePrice() decimal.Decimal
	LineQuantity() int
}

// Subtotal sums unit price x quantity over lines. Non-positive quantities contribute nothing.
func Subtotal[T Priced](lines []T) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		qty := line.LineQuantity()
		if qty <= 0 {
			continue
		}
		sum = sum.Add(line.LinePrice().Mul(decimal.NewFromInt(int64(qty))))
	}
	return sum
}

func priceOrZero(candidates ...decimal.NullDecimal) decimal.Decimal {
	for _, c := range candidates {
		if c.Valid {
			return c.Decimal
		}
	}
	return decimal.Zero
}
