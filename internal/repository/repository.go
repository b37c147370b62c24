package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// CartStore persists the terminal's pre-order cart between restarts.
type CartStore interface {
	Load(ctx context.Context) ([]models.CartLine, error)
	Save(ctx context.Context, lines []models.CartLine) error
	Clear(ctx context.Context) error
}

// PaymentJournal keeps a local record of every payment the terminal completed.
type PaymentJournal interface {
	RecordPayment(ctx context.Context, rec PaymentRecord) error
	DailySummary(ctx context.Context, day time.Time) (*DailySummary, error)
}

// PaymentRecord is one completed payment.
type PaymentRecord struct {
	ID         string          `json:"id"`
	OrderID    models.ID       `json:"orderId"`
	TerminalID string          `json:"terminalId"`
	Cash       decimal.Decimal `json:"cash"`
	Card       decimal.Decimal `json:"card"`
	Total      decimal.Decimal `json:"total"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// DailySummary aggregates the payments of one calendar day (UTC).
type DailySummary struct {
	Date     string          `json:"date"`
	Payments int             `json:"payments"`
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Total    decimal.Decimal `json:"total"`
}
