package models

// Table is a selectable restaurant table. The terminal never mutates it.
type Table struct {
	TableID     ID   `json:"tableId"`
	TableNumber int  `json:"tableNumber"`
	Capacity    int  `json:"capacity"`
	Available   bool `json:"available"`
}

// RawTable is the wire shape of a table.
type RawTable struct {
	TableID     ID   `json:"tableId"`
	ID          ID   `json:"id"`
	TableNumber int  `json:"tableNumber"`
	Capacity    int  `json:"capacity"`
	Available   bool `json:"available"`
}

// NormalizeTable resolves tableId / id into a single identity.
func NormalizeTable(raw RawTable) Table {
	return Table{
		TableID:     firstID(raw.TableID, raw.ID),
		TableNumber: raw.TableNumber,
		Capacity:    raw.Capacity,
		Available:   raw.Available,
	}
}
