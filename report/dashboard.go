package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockledger/domain"
)

// TrendDays is the length of the sales trend window, today included.
const TrendDays = 30

// ProductStock is a product with its quantity summed over all warehouses.
type ProductStock struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	MinStock  int    `json:"minStock"`
}

type WarehouseUnits struct {
	WarehouseID string               `json:"warehouseId"`
	Name        string               `json:"name"`
	Type        domain.WarehouseType `json:"type"`
	Units       int                  `json:"units"`
}

type DailySales struct {
	Date  domain.Date     `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// StockHealth is the dashboard view of the ledger.
type StockHealth struct {
	TotalUnits    int              `json:"totalUnits"`
	TotalValue    decimal.Decimal  `json:"totalValue"`
	InternalValue decimal.Decimal  `json:"internalValue"`
	ExternalValue decimal.Decimal  `json:"externalValue"`
	OutOfStock    []ProductStock   `json:"outOfStock"`
	Low           []ProductStock   `json:"low"`
	Safe          []ProductStock   `json:"safe"`
	ByWarehouse   []WarehouseUnits `json:"byWarehouse"`
	SalesTrend    []DailySales     `json:"salesTrend"`
}

// StockHealth classifies every product by total stock, sums units per
// warehouse, values stock at retail and builds a daily billable sales
// series for the TrendDays ending on today.
func (r *Reporter) StockHealth(ctx context.Context, today time.Time) (StockHealth, error) {
	h := StockHealth{
		TotalValue:    decimal.Zero,
		InternalValue: decimal.Zero,
		ExternalValue: decimal.Zero,
		OutOfStock:    []ProductStock{},
		Low:           []ProductStock{},
		Safe:          []ProductStock{},
		ByWarehouse:   []WarehouseUnits{},
		SalesTrend:    make([]DailySales, 0, TrendDays),
	}
	err := r.store.View(ctx, func(st *domain.State) error {
		for _, p := range st.Products {
			ps := ProductStock{
				ProductID: p.ID,
				SKU:       p.SKU,
				Name:      p.Name,
				Total:     st.Inventory.Total(p.ID),
				MinStock:  p.MinStock,
			}
			switch {
			// Negative totals are tracked stock owed back; they count as out.
			case ps.Total <= 0:
				h.OutOfStock = append(h.OutOfStock, ps)
			case ps.Total < p.MinStock:
				h.Low = append(h.Low, ps)
			default:
				h.Safe = append(h.Safe, ps)
			}
		}

		for _, w := range st.Warehouses {
			wu := WarehouseUnits{WarehouseID: w.ID, Name: w.Name, Type: w.Type}
			for _, rec := range st.Inventory.ByWarehouse(w.ID) {
				wu.Units += rec.Quantity
			}
			h.ByWarehouse = append(h.ByWarehouse, wu)
		}

		for _, rec := range st.Inventory.Records() {
			h.TotalUnits += rec.Quantity
			p, ok := st.Product(rec.ProductID)
			if !ok {
				continue
			}
			v := p.PriceRetail.Mul(decimal.NewFromInt(int64(rec.Quantity)))
			h.TotalValue = h.TotalValue.Add(v)
			w, ok := st.Warehouse(rec.WarehouseID)
			if !ok {
				continue
			}
			switch w.Type {
			case domain.WarehouseInternal:
				h.InternalValue = h.InternalValue.Add(v)
			case domain.WarehouseExternal:
				h.ExternalValue = h.ExternalValue.Add(v)
			}
		}

		end := domain.NewDate(today)
		index := make(map[string]int, TrendDays)
		for i := TrendDays - 1; i >= 0; i-- {
			d := domain.NewDate(end.AddDate(0, 0, -i))
			index[d.String()] = len(h.SalesTrend)
			h.SalesTrend = append(h.SalesTrend, DailySales{Date: d, Value: decimal.Zero})
		}
		for _, tx := range st.History {
			if !tx.SaleType.Billable() {
				continue
			}
			if i, ok := index[tx.Date.String()]; ok {
				h.SalesTrend[i].Value = h.SalesTrend[i].Value.Add(tx.TotalValue)
			}
		}
		return nil
	})
	if err != nil {
		return StockHealth{}, err
	}
	return h, nil
}
