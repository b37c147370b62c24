package models

import "github.com/shopspring/decimal"

// PaymentMethod is a tender type accepted by POST /payments.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	PaymentMethodCard PaymentMethod = "CARD"
)

// PaymentEntry is one tender line of a payment record.
type PaymentEntry struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentRequest is the body of POST /payments.
type PaymentRequest struct {
	OrderID  ID             `json:"orderId"`
	Payments []PaymentEntry `json:"payments"`
}

// PaymentSplit partitions an order total between cash and card.
type PaymentSplit struct {
	Cash decimal.Decimal `json:"cash"`
	Card decimal.Decimal `json:"card"`
}

func (s PaymentSplit) Sum() decimal.Decimal {
	return s.Cash.Add(s.Card)
}

// Balances reports whether the split matches total exactly.
func (s PaymentSplit) Balances(total decimal.Decimal) bool {
	return s.Sum().Equal(total)
}

// Entries lists one entry per strictly positive amount, cash first.
func (s PaymentSplit) Entries() []PaymentEntry {
	entries := make([]PaymentEntry, 0, 2)
	if s.Cash.IsPositive() {
		entries = append(entries, PaymentEntry{Method: PaymentMethodCash, Amount: s.Cash})
	}
	if s.Card.IsPositive() {
		entries = append(entries, PaymentEntry{Method: PaymentMethodCard, Amount: s.Card})
	}
	return entries
}
