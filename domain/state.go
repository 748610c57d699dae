package domain

import (
	"stockledger/ledger"
)

// InventoryRecord is one (product, warehouse) quantity.
type InventoryRecord = ledger.Record

// State is the complete session: catalog, partners, warehouses, ledger and
// transaction history. Cross-entity rules (dealer <-> warehouse pairing,
// business key uniqueness) are enforced here rather than by callers.
type State struct {
	Products   []Product      `json:"products"`
	Warehouses []Warehouse    `json:"warehouses"`
	Dealers    []Dealer       `json:"dealers"`
	Inventory  *ledger.Ledger `json:"inventory"`
	// History is append-only and kept in insertion order.
	History []Transaction `json:"history"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Inventory: ledger.New()}
}

// Clone deep-copies the state so a failed Update can be discarded.
func (s *State) Clone() *State {
	c := &State{
		Products:   append([]Product(nil), s.Products...),
		Warehouses: append([]Warehouse(nil), s.Warehouses...),
		Dealers:    append([]Dealer(nil), s.Dealers...),
		History:    make([]Transaction, len(s.History)),
	}
	if s.Inventory != nil {
		c.Inventory = s.Inventory.Clone()
	} else {
		c.Inventory = ledger.New()
	}
	for i, tx := range s.History {
		tx.Items = append([]TransactionItem(nil), tx.Items...)
		c.History[i] = tx
	}
	return c
}

// ---- catalog ----

func (s *State) Product(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (s *State) ProductBySKU(sku string) (Product, bool) {
	for _, p := range s.Products {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}

// ProductByCode matches a scanned code against barcode first, then SKU.
func (s *State) ProductByCode(code string) (Product, bool) {
	for _, p := range s.Products {
		if p.Barcode != "" && p.Barcode == code {
			return p, true
		}
	}
	return s.ProductBySKU(code)
}

// ProductName returns the product name or the id itself when unknown.
func (s *State) ProductName(id string) string {
	if p, ok := s.Product(id); ok {
		return p.Name
	}
	return id
}

func (s *State) AddProduct(p Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	if _, ok := s.Product(p.ID); ok {
		return NewConflictError("product", "id", p.ID)
	}
	if err := s.checkProductKeys(p); err != nil {
		return err
	}
	s.Products = append(s.Products, p)
	return nil
}

func (s *State) UpdateProduct(p Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	idx := -1
	for i := range s.Products {
		if s.Products[i].ID == p.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NewNotFoundError("product", p.ID)
	}
	if err := s.checkProductKeys(p); err != nil {
		return err
	}
	s.Products[idx] = p
	return nil
}

// checkProductKeys rejects a SKU or barcode already used by another product.
func (s *State) checkProductKeys(p Product) error {
	for _, other := range s.Products {
		if other.ID == p.ID {
			continue
		}
		if other.SKU == p.SKU {
			return NewConflictError("product", "sku", p.SKU)
		}
		if p.Barcode != "" && other.Barcode == p.Barcode {
			return NewConflictError("product", "barcode", p.Barcode)
		}
	}
	return nil
}

// ---- warehouses ----

func (s *State) Warehouse(id string) (Warehouse, bool) {
	for _, w := range s.Warehouses {
		if w.ID == id {
			return w, true
		}
	}
	return Warehouse{}, false
}

// WarehouseName returns the warehouse name or the id itself when unknown.
func (s *State) WarehouseName(id string) string {
	if w, ok := s.Warehouse(id); ok {
		return w.Name
	}
	return id
}

func (s *State) AddWarehouse(w Warehouse) error {
	if w.ID == "" {
		return NewValidationError("id", "cannot be empty", w.ID)
	}
	if IsDealerWarehouseID(w.ID) {
		return NewValidationError("id", "reserved for dealer consignment warehouses", w.ID)
	}
	if w.Type != WarehouseInternal && w.Type != WarehouseExternal {
		return NewValidationError("type", "must be Internal or External", w.Type)
	}
	if _, ok := s.Warehouse(w.ID); ok {
		return NewConflictError("warehouse", "id", w.ID)
	}
	s.Warehouses = append(s.Warehouses, w)
	return nil
}

// DefaultWarehouse is the first internal warehouse, falling back to the
// first warehouse of any type.
func (s *State) DefaultWarehouse() (Warehouse, bool) {
	for _, w := range s.Warehouses {
		if w.Type == WarehouseInternal {
			return w, true
		}
	}
	if len(s.Warehouses) > 0 {
		return s.Warehouses[0], true
	}
	return Warehouse{}, false
}

// ---- dealers ----

func (s *State) Dealer(id string) (Dealer, bool) {
	for _, d := range s.Dealers {
		if d.ID == id {
			return d, true
		}
	}
	return Dealer{}, false
}

// AddDealer registers d together with its consignment warehouse. A warehouse
// left behind by a removed dealer with the same id is reused.
func (s *State) AddDealer(d Dealer) error {
	if d.ID == "" {
		return NewValidationError("id", "cannot be empty", d.ID)
	}
	if d.Name == "" {
		return NewValidationError("name", "cannot be empty", d.Name)
	}
	if _, ok := s.Dealer(d.ID); ok {
		return NewConflictError("dealer", "id", d.ID)
	}
	s.Dealers = append(s.Dealers, d)
	s.upsertDealerWarehouse(d)
	return nil
}

// UpdateDealer replaces the dealer and renames its warehouse. The warehouse
// id and all inventory stay as they are.
func (s *State) UpdateDealer(d Dealer) error {
	if d.Name == "" {
		return NewValidationError("name", "cannot be empty", d.Name)
	}
	for i := range s.Dealers {
		if s.Dealers[i].ID == d.ID {
			s.Dealers[i] = d
			s.upsertDealerWarehouse(d)
			return nil
		}
	}
	return NewNotFoundError("dealer", d.ID)
}

// RemoveDealer drops the dealer from the active registry. Its warehouse,
// stock and transactions are kept.
func (s *State) RemoveDealer(id string) error {
	for i := range s.Dealers {
		if s.Dealers[i].ID == id {
			s.Dealers = append(s.Dealers[:i], s.Dealers[i+1:]...)
			return nil
		}
	}
	return NewNotFoundError("dealer", id)
}

// EnsureDealerWarehouse creates the dealer's consignment warehouse if it is
// missing and returns its id. Existing warehouses are left untouched.
func (s *State) EnsureDealerWarehouse(dealerID string) (string, error) {
	whID := DealerWarehouseID(dealerID)
	if _, ok := s.Warehouse(whID); ok {
		return whID, nil
	}
	d, ok := s.Dealer(dealerID)
	if !ok {
		return "", NewNotFoundError("dealer", dealerID)
	}
	s.Warehouses = append(s.Warehouses, DealerWarehouse(d))
	return whID, nil
}

func (s *State) upsertDealerWarehouse(d Dealer) {
	wh := DealerWarehouse(d)
	for i := range s.Warehouses {
		if s.Warehouses[i].ID == wh.ID {
			s.Warehouses[i] = wh
			return
		}
	}
	s.Warehouses = append(s.Warehouses, wh)
}

// ---- history ----

func (s *State) Transaction(id string) (Transaction, bool) {
	for _, tx := range s.History {
		if tx.ID == id {
			return tx, true
		}
	}
	return Transaction{}, false
}

// AppendTransaction records an applied transaction.
func (s *State) AppendTransaction(tx Transaction) {
	s.History = append(s.History, tx)
}

// SetNote edits the one mutable field of a recorded transaction.
func (s *State) SetNote(id, note string) error {
	for i := range s.History {
		if s.History[i].ID == id {
			s.History[i].Note = note
			return nil
		}
	}
	return NewNotFoundError("transaction", id)
}
