package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
)

// PostgresJournal implements PaymentJournal using PostgreSQL.
type PostgresJournal struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresJournal creates a new PostgreSQL payment journal.
func NewPostgresJournal(db *sql.DB, logger *logging.LoggerV2) *PostgresJournal {
	return &PostgresJournal{
		db:     db,
		logger: logger,
	}
}

// RecordPayment stores a completed payment. Missing id and timestamp are filled in.
func (j *PostgresJournal) RecordPayment(ctx context.Context, rec PaymentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO payments (id, order_id, terminal_id, cash_amount, card_amount, total_amount, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := j.db.ExecContext(ctx, query,
		rec.ID,
		rec.OrderID.String(),
		rec.TerminalID,
		rec.Cash,
		rec.Card,
		rec.Total,
		rec.RecordedAt,
	)
	if err != nil {
		j.logger.Error("Failed to record payment", logging.Fields{
			"order_id": rec.OrderID,
			"error":    err.Error(),
		})
		return err
	}

	j.logger.Info("Payment journaled", logging.Fields{
		"payment_id": rec.ID,
		"order_id":   rec.OrderID,
		"total":      rec.Total.String(),
	})
	return nil
}

// DailySummary totals the payments recorded on day's UTC calendar date.
func (j *PostgresJournal) DailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(cash_amount), 0),
		       COALESCE(SUM(card_amount), 0),
		       COALESCE(SUM(total_amount), 0)
		FROM payments
		WHERE recorded_at >= $1 AND recorded_at < $2
	`

	summary := &DailySummary{Date: start.Format("2006-01-02")}
	err := j.db.QueryRowContext(ctx, query, start, end).Scan(
		&summary.Payments,
		&summary.Cash,
		&summary.Card,
		&summary.Total,
	)
	if err != nil {
		j.logger.Error("Failed to summarize payments", logging.Fields{
			"date":  summary.Date,
			"error": err.Error(),
		})
		return nil, err
	}

	return summary, nil
}
