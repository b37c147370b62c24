package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

type updateCartItemRequest struct {
	Delta int `json:"delta"`
}

type checkoutRequest struct {
	TableID models.ID `json:"tableId"`
}

// GetCart handles GET /api/v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.Cart(c.Request.Context()))
}

// AddCartItem handles POST /api/v1/cart/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	var product models.ProductRecord
	if err := c.ShouldBindJSON(&product); err != nil {
		h.logger.Error("Failed to bind product", logging.Fields{"error": err.Error()})
		badRequest(c, "invalid request body")
		return
	}

	if product.Identity().IsZero() {
		badRequest(c, "productId is required")
		return
	}

	c.JSON(http.StatusOK, h.cart.AddItem(c.Request.Context(), product))
}

// UpdateCartItem handles PATCH /api/v1/cart/items/:id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	c.JSON(http.StatusOK, h.cart.UpdateQuantity(c.Request.Context(), models.ID(c.Param("id")), req.Delta))
}

// RemoveCartItem handles DELETE /api/v1/cart/items/:id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.RemoveItem(c.Request.Context(), models.ID(c.Param("id"))))
}

// Checkout handles POST /api/v1/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind checkout request", logging.Fields{"error": err.Error()})
		badRequest(c, "invalid request body")
		return
	}

	order, err := h.checkout.Submit(c.Request.Context(), req.TableID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// ListTables handles GET /api/v1/tables
func (h *Handlers) ListTables(c *gin.Context) {
	tables, err := h.checkout.AvailableTables(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables": tables})
}
