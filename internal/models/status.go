package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of an order as the restaurant API spells it.
type OrderStatus string

const (
	OrderStatusOnGoing   OrderStatus = "ON GOING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{OrderStatusOnGoing, OrderStatusCompleted, OrderStatusCancelled}

// ParseOrderStatus accepts the wire spelling as well as ON_GOING / ongoing variants.
func ParseOrderStatus(s string) (OrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "_", " ")
	switch normalized {
	case "ON GOING", "ONGOING":
		return OrderStatusOnGoing, nil
	case "COMPLETED":
		return OrderStatusCompleted, nil
	case "CANCELLED", "CANCELED":
		return OrderStatusCancelled, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOnGoing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Editable reports whether edit, complete and cancel controls may be offered.
func (s OrderStatus) Editable() bool {
	return s == OrderStatusOnGoing
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s != OrderStatusOnGoing {
		return false
	}
	return target == OrderStatusCompleted || target == OrderStatusCancelled
}
