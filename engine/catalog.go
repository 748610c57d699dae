package engine

import (
	"context"

	"stockledger/domain"
	"stockledger/util"
)

// AddProduct registers p, generating an id when p.ID is empty.
func (e *Engine) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = util.NewID("p")
	}
	if err := e.store.Update(ctx, func(st *domain.State) error {
		return st.AddProduct(p)
	}); err != nil {
		return domain.Product{}, err
	}
	e.logger.Info("product added", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

// UpdateProduct replaces the product with the same id. Recorded
// transactions keep their price snapshots.
func (e *Engine) UpdateProduct(ctx context.Context, p domain.Product) error {
	if err := e.store.Update(ctx, func(st *domain.State) error {
		return st.UpdateProduct(p)
	}); err != nil {
		return err
	}
	e.logger.Info("product updated", "product_id", p.ID)
	return nil
}

// AddWarehouse registers a warehouse, generating an id when w.ID is empty.
func (e *Engine) AddWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	if w.ID == "" {
		w.ID = util.NewID("wh")
	}
	if err := e.store.Update(ctx, func(st *domain.State) error {
		return st.AddWarehouse(w)
	}); err != nil {
		return domain.Warehouse{}, err
	}
	e.logger.Info("warehouse added", "warehouse_id", w.ID)
	return w, nil
}

// AddDealer registers d and its consignment warehouse.
func (e *Engine) AddDealer(ctx context.Context, d domain.Dealer) (domain.Dealer, error) {
	if d.ID == "" {
		d.ID = util.NewID("d")
	}
	if err := e.store.Update(ctx, func(st *domain.State) error {
		return st.AddDealer(d)
	}); err != nil {
		return domain.Dealer{}, err
	}
	e.logger.Info("dealer added", "dealer_id", d.ID, "warehouse_id", domain.DealerWarehouseID(d.ID))
	return d, nil
}

// UpdateDealer renames the dealer and its consignment warehouse. Past
// transactions keep the dealer name they were recorded with.
func (e *Engine) UpdateDealer(ctx context.Context, d domain.Dealer) error {
	if err := e.store.Update(ctx, func(st *domain.State) error {
		return st.UpdateDealer(d)
	}); err != nil {
		return err
	}
	e.logger.Info("dealer updated", "dealer_id", d.ID)
	return nil
}

// RemoveDealer drops the dealer record only. Its warehouse, stock and
// history stay in place.
func (e *Engine) RemoveDealer(ctx context.Context, id string) error {
	if err := e.store.Update(ctx, func(st *domain.State) error {
		return st.RemoveDealer(id)
	}); err != nil {
		return err
	}
	e.logger.Info("dealer removed", "dealer_id", id)
	return nil
}

func (e *Engine) Products(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := e.store.View(ctx, func(st *domain.State) error {
		out = append([]domain.Product(nil), st.Products...)
		return nil
	})
	return out, err
}

func (e *Engine) Product(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := e.store.View(ctx, func(st *domain.State) error {
		found, ok := st.Product(id)
		if !ok {
			return domain.NewNotFoundError("product", id)
		}
		p = found
		return nil
	})
	return p, err
}

func (e *Engine) Dealers(ctx context.Context) ([]domain.Dealer, error) {
	var out []domain.Dealer
	err := e.store.View(ctx, func(st *domain.State) error {
		out = append([]domain.Dealer(nil), st.Dealers...)
		return nil
	})
	return out, err
}

func (e *Engine) Warehouses(ctx context.Context) ([]domain.Warehouse, error) {
	var out []domain.Warehouse
	err := e.store.View(ctx, func(st *domain.State) error {
		out = append([]domain.Warehouse(nil), st.Warehouses...)
		return nil
	})
	return out, err
}

// History returns transactions in the order they were applied.
func (e *Engine) History(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := e.store.View(ctx, func(st *domain.State) error {
		out = append([]domain.Transaction(nil), st.History...)
		return nil
	})
	return out, err
}

func (e *Engine) Transaction(ctx context.Context, id string) (domain.Transaction, error) {
	var tx domain.Transaction
	err := e.store.View(ctx, func(st *domain.State) error {
		found, ok := st.Transaction(id)
		if !ok {
			return domain.NewNotFoundError("transaction", id)
		}
		tx = found
		return nil
	})
	return tx, err
}

// Quantity is 0 for cells the ledger has never seen.
func (e *Engine) Quantity(ctx context.Context, productID, warehouseID string) (int, error) {
	var q int
	err := e.store.View(ctx, func(st *domain.State) error {
		q = st.Inventory.Get(productID, warehouseID)
		return nil
	})
	return q, err
}

func (e *Engine) TotalQuantity(ctx context.Context, productID string) (int, error) {
	var q int
	err := e.store.View(ctx, func(st *domain.State) error {
		q = st.Inventory.Total(productID)
		return nil
	})
	return q, err
}

// Inventory lists every ledger record, optionally limited to one warehouse.
func (e *Engine) Inventory(ctx context.Context, warehouseID string) ([]domain.InventoryRecord, error) {
	var out []domain.InventoryRecord
	err := e.store.View(ctx, func(st *domain.State) error {
		if warehouseID != "" {
			out = st.Inventory.ByWarehouse(warehouseID)
		} else {
			out = st.Inventory.Records()
		}
		return nil
	})
	return out, err
}
