package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const unknownItemName = "Unknown Item"

// OrderLine is a single line of a placed order after normalization. OrderItemID is the
// server identity; LocalID is a client-generated fallback used as a key before the first save.
type OrderLine struct {
	OrderItemID ID              `json:"orderItemId,omitempty"`
	LocalID     string          `json:"localId,omitempty"`
	ProductID   ID              `json:"productId,omitempty"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

func (l OrderLine) LinePrice() decimal.Decimal { return l.UnitPrice }
func (l OrderLine) LineQuantity() int          { return l.Quantity }

// Key identifies the line inside an edit session.
func (l OrderLine) Key() string {
	if !l.OrderItemID.IsZero() {
		return l.OrderItemID.String()
	}
	return l.LocalID
}

// Order is the terminal's local mirror of a persisted order.
type Order struct {
	ID          ID              `json:"id"`
	Status      OrderStatus     `json:"status"`
	TableID     *ID             `json:"tableId,omitempty"`
	PlacedAt    time.Time       `json:"placedAt"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	// Total mirrors TotalAmount for older clients.
	Total decimal.Decimal `json:"total"`
}

// Clone returns a deep copy.
func (o Order) Clone() Order {
	c := o
	if o.TableID != nil {
		t := *o.TableID
		c.TableID = &t
	}
	if o.Items != nil {
		c.Items = make([]OrderLine, len(o.Items))
		copy(c.Items, o.Items)
	}
	return c
}

// WithItems returns a copy carrying the given lines with both total fields recomputed.
func (o Order) WithItems(items []OrderLine) Order {
	c := o.Clone()
	c.Items = make([]OrderLine, len(items))
	copy(c.Items, items)
	total := Subtotal(c.Items)
	c.TotalAmount = total
	c.Total = total
	return c
}

// ComputedTotal is the tax-free sum of the order's lines.
func (o Order) ComputedTotal() decimal.Decimal {
	return Subtotal(o.Items)
}

// RawProduct is the nested product object some order payloads embed in their lines.
type RawProduct struct {
	ID        ID     `json:"id"`
	ProductID ID     `json:"productId"`
	Name      string `json:"name"`
}

// RawOrderLine carries every field name the restaurant API has been seen to use for a line.
type RawOrderLine struct {
	OrderItemID ID                  `json:"orderItemId"`
	OriginalID  ID                  `json:"originalId"`
	ID          ID                  `json:"id"`
	ProductID   ID                  `json:"productId"`
	Product     *RawProduct         `json:"product"`
	Name        string              `json:"name"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   decimal.NullDecimal `json:"unitPrice"`
	Price       decimal.NullDecimal `json:"price"`
}

// RawOrder is the wire shape of an order.
type RawOrder struct {
	ID          ID                  `json:"id"`
	OrderID     ID                  `json:"orderId"`
	Status      string              `json:"status"`
	TableID     ID                  `json:"tableId"`
	PlacedAt    string              `json:"placedAt"`
	CreatedAt   string              `json:"createdAt"`
	Items       []RawOrderLine      `json:"items"`
	TotalAmount decimal.NullDecimal `json:"totalAmount"`
	Total       decimal.NullDecimal `json:"total"`
}

// Identity resolves id / orderId.
func (r RawOrder) Identity() ID {
	return OrderIdentity(r.ID, r.OrderID)
}

// NormalizeOrderLine resolves all identity, name and price fallbacks of a wire line.
func NormalizeOrderLine(raw RawOrderLine) OrderLine {
	line := OrderLine{
		OrderItemID: OrderItemIdentity(raw.OrderItemID, raw.OriginalID, raw.ID),
		Name:        strings.TrimSpace(raw.Name),
		UnitPrice:   priceOrZero(raw.UnitPrice, raw.Price),
		Quantity:    raw.Quantity,
	}

	var nestedID ID
	if raw.Product != nil {
		nestedID = firstID(raw.Product.ID, raw.Product.ProductID)
		if name := strings.TrimSpace(raw.Product.Name); name != "" {
			line.Name = name
		}
	}
	// A line carrying only id uses it as both item and product identity; older payloads put
	// the product id there and newer ones the item id.
	line.ProductID = firstID(nestedID, raw.ProductID, raw.ID)

	if line.Name == "" {
		line.Name = unknownItemName
	}
	if line.Quantity < 0 {
		line.Quantity = 0
	}
	if line.OrderItemID.IsZero() {
		line.LocalID = uuid.NewString()
	}
	return line
}

// NormalizeOrder converts a wire order into the local model. When the payload carries lines
// the totals are recomputed from them; otherwise the wire total is kept as the only figure
// available.
func NormalizeOrder(raw RawOrder) Order {
	order := Order{
		ID:       raw.Identity(),
		PlacedAt: ParseTimestamp(firstNonEmpty(raw.PlacedAt, raw.CreatedAt)),
	}

	if status, err := ParseOrderStatus(raw.Status); err == nil {
		order.Status = status
	} else if raw.Status == "" {
		order.Status = OrderStatusOnGoing
	} else {
		order.Status = OrderStatus(raw.Status)
	}

	if !raw.TableID.IsZero() {
		t := raw.TableID
		order.TableID = &t
	}

	if len(raw.Items) == 0 {
		order.Items = []OrderLine{}
		total := priceOrZero(raw.TotalAmount, raw.Total)
		order.TotalAmount = total
		order.Total = total
		return order
	}

	items := make([]OrderLine, 0, len(raw.Items))
	for _, item := range raw.Items {
		items = append(items, NormalizeOrderLine(item))
	}
	return order.WithItems(items)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts RFC 3339 and zone-less local date-times (read as UTC).
// Unparseable input yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FormatTimestamp renders t the way the order-creation endpoint accepts it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// CreateOrderItem is one line of an order-creation request.
type CreateOrderItem struct {
	ProductID ID              `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	UserID   ID                `json:"userId"`
	Status   OrderStatus       `json:"status"`
	PlacedAt string            `json:"placedAt"`
	Total    decimal.Decimal   `json:"total"`
	TableID  ID                `json:"tableId"`
	Items    []CreateOrderItem `json:"items"`
}

// QuantityUpdate is one element of the PUT /orders/{id}/quantities body.
type QuantityUpdate struct {
	OrderItemID ID  `json:"orderItemId"`
	Quantity    int `json:"quantity"`
}
