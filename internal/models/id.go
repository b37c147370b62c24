package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an opaque identifier. The restaurant API is inconsistent about sending ids as JSON
// numbers or strings; both decode into the same value.
type ID string

func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is absent.
func (id ID) IsZero() bool { return id == "" }

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = ""
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", raw, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric identifiers as JSON numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if id.isNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) isNumeric() bool {
	s := string(id)
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// firstID returns the first non-empty identifier.
func firstID(candidates ...ID) ID {
	for _, c := range candidates {
		if !c.IsZero() {
			return c
		}
	}
	return ""
}

// ProductIdentity resolves a product's canonical identity: the productId field, falling back to id.
func ProductIdentity(productID, id ID) ID {
	return firstID(productID, id)
}

// OrderItemIdentity resolves a persisted order line's identity: orderItemId, then the
// originalId carried by edited copies, then the generic id.
func OrderItemIdentity(orderItemID, originalID, id ID) ID {
	return firstID(orderItemID, originalID, id)
}

// OrderIdentity resolves an order's identity: id, falling back to orderId.
func OrderIdentity(id, orderID ID) ID {
	return firstID(id, orderID)
}
