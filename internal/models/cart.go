package models

import "github.com/shopspring/decimal"

// ProductRecord is a product as it arrives from the catalogue screens. Upstream records are
// inconsistently shaped: some carry productId, some only id.
type ProductRecord struct {
	ProductID ID                  `json:"productId,omitempty"`
	ID        ID                  `json:"id,omitempty"`
	Name      string              `json:"name"`
	Price     decimal.NullDecimal `json:"price"`
}

// Identity returns the canonical product identity.
func (p ProductRecord) Identity() ID {
	return ProductIdentity(p.ProductID, p.ID)
}

// CartLine is one product in the pre-order cart.
type CartLine struct {
	ProductID ID              `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) LinePrice() decimal.Decimal { return l.UnitPrice }
func (l CartLine) LineQuantity() int          { return l.Quantity }

// NewCartLine builds a quantity-one line from a product record.
func NewCartLine(p ProductRecord) CartLine {
	return CartLine{
		ProductID: p.Identity(),
		Name:      p.Name,
		UnitPrice: priceOrZero(p.Price),
		Quantity:  1,
	}
}
