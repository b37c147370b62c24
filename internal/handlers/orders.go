package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/receipt"
)

// ListOrders handles GET /api/v1/orders?status=
func (h *Handlers) ListOrders(c *gin.Context) {
	filter := c.DefaultQuery("status", "ALL")

	orders, err := h.orders.Refresh(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"filter": filter,
		"total":  len(orders),
	})
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orders.Order(models.ID(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CompleteOrder handles POST /api/v1/orders/:id/complete
func (h *Handlers) CompleteOrder(c *gin.Context) {
	order, err := h.status.Complete(c.Request.Context(), models.ID(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func (h *Handlers) CancelOrder(c *gin.Context) {
	order, err := h.status.Cancel(c.Request.Context(), models.ID(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetReceipt handles GET /api/v1/orders/:id/receipt
func (h *Handlers) GetReceipt(c *gin.Context) {
	order, err := h.orders.Order(models.ID(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.String(http.StatusOK, receipt.Text(order))
}

// GetReceiptQR handles GET /api/v1/orders/:id/receipt.png
func (h *Handlers) GetReceiptQR(c *gin.Context) {
	order, err := h.orders.Order(models.ID(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	size := receipt.DefaultQRSize
	if s := c.Query("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 64 && n <= 1024 {
			size = n
		}
	}

	png, err := receipt.QRCode(order, size)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
