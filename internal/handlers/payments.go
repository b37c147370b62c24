package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/service"
)

type shortcutRequest struct {
	Shortcut string `json:"shortcut"`
}

// splitRequest carries manual input. Sending only cash or only card derives the other field;
// sending both sets them as entered.
type splitRequest struct {
	Cash decimal.NullDecimal `json:"cash"`
	Card decimal.NullDecimal `json:"card"`
}

// OpenPayment handles POST /api/v1/orders/:id/payment
func (h *Handlers) OpenPayment(c *gin.Context) {
	view, err := h.payments.Open(models.ID(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetPayment handles GET /api/v1/payment
func (h *Handlers) GetPayment(c *gin.Context) {
	view, err := h.payments.View()
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ChoosePaymentShortcut handles POST /api/v1/payment/shortcut
func (h *Handlers) ChoosePaymentShortcut(c *gin.Context) {
	var req shortcutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	shortcut, err := service.ParsePaymentShortcut(req.Shortcut)
	if err != nil {
		handleError(c, err)
		return
	}

	view, err := h.payments.ChooseShortcut(shortcut)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SetPaymentSplit handles PUT /api/v1/payment/split
func (h *Handlers) SetPaymentSplit(c *gin.Context) {
	var req splitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind split request", logging.Fields{"error": err.Error()})
		badRequest(c, "invalid request body")
		return
	}

	var (
		view service.PaymentView
		err  error
	)
	switch {
	case req.Cash.Valid && req.Card.Valid:
		view, err = h.payments.SetSplit(req.Cash.Decimal, req.Card.Decimal)
	case req.Cash.Valid:
		view, err = h.payments.SetCash(req.Cash.Decimal)
	case req.Card.Valid:
		view, err = h.payments.SetCard(req.Card.Decimal)
	default:
		badRequest(c, "cash or card is required")
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// CompletePayment handles POST /api/v1/payment/complete
func (h *Handlers) CompletePayment(c *gin.Context) {
	order, err := h.payments.Complete(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ClosePayment handles DELETE /api/v1/payment
func (h *Handlers) ClosePayment(c *gin.Context) {
	h.payments.Close()
	c.Status(http.StatusNoContent)
}

// JournalSummary handles GET /api/v1/journal/summary?date=YYYY-MM-DD
func (h *Handlers) JournalSummary(c *gin.Context) {
	day := time.Now().UTC()
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summary, err := h.payments.DailySummary(c.Request.Context(), day)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListNotifications handles GET /api/v1/notifications?since=
func (h *Handlers) ListNotifications(c *gin.Context) {
	var since int64
	if s := c.Query("since"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			badRequest(c, "since must be an integer")
			return
		}
		since = n
	}

	c.JSON(http.StatusOK, gin.H{"notifications": h.feed.Since(since)})
}
