// Package ledger holds per-(product, warehouse) stock quantities.
package ledger

import "encoding/json"

// Key identifies one ledger cell.
type Key struct {
	ProductID   string
	WarehouseID string
}

// Record is one ledger cell as exposed to callers and serialized to disk.
type Record struct {
	ProductID   string `json:"productId"`
	WarehouseID string `json:"warehouseId"`
	Quantity    int    `json:"quantity"`
}

// Ledger is a sparse quantity map. Absent cells read as zero and quantities
// may go negative; records are never removed once created.
type Ledger struct {
	cells map[Key]int
	order []Key
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{cells: make(map[Key]int)}
}

// Get returns the stored quantity or 0 when no record exists.
func (l *Ledger) Get(productID, warehouseID string) int {
	return l.cells[Key{productID, warehouseID}]
}

// Has reports whether a record exists for the pair.
func (l *Ledger) Has(productID, warehouseID string) bool {
	_, ok := l.cells[Key{productID, warehouseID}]
	return ok
}

// Total sums a product across every warehouse.
func (l *Ledger) Total(productID string) int {
	total := 0
	for k, q := range l.cells {
		if k.ProductID == productID {
			total += q
		}
	}
	return total
}

// Adjust adds delta to the cell, creating it with quantity delta if absent.
func (l *Ledger) Adjust(productID, warehouseID string, delta int) {
	k := Key{productID, warehouseID}
	if _, ok := l.cells[k]; !ok {
		l.order = append(l.order, k)
	}
	l.cells[k] += delta
}

// Set overwrites the cell unconditionally, creating it if absent.
func (l *Ledger) Set(productID, warehouseID string, qty int) {
	k := Key{productID, warehouseID}
	if _, ok := l.cells[k]; !ok {
		l.order = append(l.order, k)
	}
	l.cells[k] = qty
}

// Records returns every cell in creation order.
func (l *Ledger) Records() []Record {
	out := make([]Record, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, Record{ProductID: k.ProductID, WarehouseID: k.WarehouseID, Quantity: l.cells[k]})
	}
	return out
}

// ByWarehouse returns the cells of a single warehouse in creation order.
func (l *Ledger) ByWarehouse(warehouseID string) []Record {
	var out []Record
	for _, k := range l.order {
		if k.WarehouseID == warehouseID {
			out = append(out, Record{ProductID: k.ProductID, WarehouseID: k.WarehouseID, Quantity: l.cells[k]})
		}
	}
	return out
}

// Len is the number of records.
func (l *Ledger) Len() int {
	return len(l.order)
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		cells: make(map[Key]int, len(l.cells)),
		order: make([]Key, len(l.order)),
	}
	copy(c.order, l.order)
	for k, q := range l.cells {
		c.cells[k] = q
	}
	return c
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Records())
}

func (l *Ledger) UnmarshalJSON(b []byte) error {
	var recs []Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return err
	}
	l.cells = make(map[Key]int, len(recs))
	l.order = l.order[:0]
	for _, r := range recs {
		l.Set(r.ProductID, r.WarehouseID, r.Quantity)
	}
	return nil
}
