package service

import (
	"fmt"

	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

// ValidateSubmission checks the preconditions of order submission.
func ValidateSubmission(lines []models.CartLine, tableID models.ID) error {
	if len(lines) == 0 {
		return errors.NewValidationError("cart", "Cart is empty!")
	}

	if tableID.IsZero() {
		return errors.NewValidationError("tableId", "Please select a table")
	}

	for _, line := range lines {
		if line.ProductID.IsZero() {
			return errors.NewValidationError("items", fmt.Sprintf("%q has no product id", line.Name))
		}
		if line.Quantity < 1 {
			return errors.NewValidationError("items", "quantity must be positive")
		}
	}

	return nil
}

// BuildQuantityUpdates maps edited lines to the quantity-update payload. Every line must carry
// its server identity.
func BuildQuantityUpdates(lines []models.OrderLine) ([]models.QuantityUpdate, error) {
	updates := make([]models.QuantityUpdate, 0, len(lines))
	for i, line := range lines {
		if line.OrderItemID.IsZero() {
			return nil, fmt.Errorf("line %d (%s): %w", i, line.Name, ErrMissingItemIdentity)
		}
		updates = append(updates, models.QuantityUpdate{
			OrderItemID: line.OrderItemID,
			Quantity:    line.Quantity,
		})
	}
	return updates, nil
}
