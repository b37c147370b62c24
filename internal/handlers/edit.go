package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

type setQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// BeginEdit handles POST /api/v1/orders/:id/edit
func (h *Handlers) BeginEdit(c *gin.Context) {
	session, err := h.reconciler.Begin(models.ID(c.Param("id")))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetEdit handles GET /api/v1/edit
func (h *Handlers) GetEdit(c *gin.Context) {
	session, err := h.reconciler.Session()
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SetEditQuantity handles PATCH /api/v1/edit/lines/:key
func (h *Handlers) SetEditQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}

	session, err := h.reconciler.SetQuantity(c.Param("key"), *req.Quantity)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// RemoveEditLine handles DELETE /api/v1/edit/lines/:key
func (h *Handlers) RemoveEditLine(c *gin.Context) {
	session, err := h.reconciler.RemoveLine(c.Param("key"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SaveEdit handles POST /api/v1/edit/save
func (h *Handlers) SaveEdit(c *gin.Context) {
	order, err := h.reconciler.Save(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelEdit handles POST /api/v1/edit/cancel
func (h *Handlers) CancelEdit(c *gin.Context) {
	session, err := h.reconciler.Cancel()
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
