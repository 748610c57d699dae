package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockledger/domain"
)

// ImportRow is one parsed line of a bulk stock sheet. Zero prices and an
// empty name leave the catalog value unchanged.
type ImportRow struct {
	SKU         string          `json:"sku" validate:"required"`
	Name        string          `json:"name"`
	Qty         int             `json:"qty"`
	WarehouseID string          `json:"warehouseId"`
	Retail      decimal.Decimal `json:"retail"`
	MOQ1        decimal.Decimal `json:"moq1"`
	MOQ2        decimal.Decimal `json:"moq2"`
}

// ImportResult reports how many rows matched a product and which SKUs did not.
type ImportResult struct {
	UpdatedCount int      `json:"updatedCount"`
	Misses       []string `json:"misses"`
}

// BatchImport applies rows in order. Rows whose SKU matches no product are
// skipped and reported; matched rows update the catalog and add Qty to the
// row's warehouse (the default warehouse when empty).
func (e *Engine) BatchImport(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	res := ImportResult{Misses: []string{}}
	err := e.store.Update(ctx, func(st *domain.State) error {
		res = ImportResult{Misses: []string{}}
		fallback := ""
		if wh, ok := st.DefaultWarehouse(); ok {
			fallback = wh.ID
		}
		for _, row := range rows {
			p, ok := st.ProductBySKU(strings.TrimSpace(row.SKU))
			if !ok {
				res.Misses = append(res.Misses, row.SKU)
				continue
			}
			if row.Name != "" {
				p.Name = row.Name
			}
			if row.Retail.IsPositive() {
				p.PriceRetail = row.Retail
			}
			if row.MOQ1.IsPositive() {
				p.PriceMOQ1 = row.MOQ1
			}
			if row.MOQ2.IsPositive() {
				p.PriceMOQ2 = row.MOQ2
			}
			if err := st.UpdateProduct(p); err != nil {
				return fmt.Errorf("import sku %s: %w", row.SKU, err)
			}
			wh := row.WarehouseID
			if wh == "" {
				wh = fallback
			}
			if row.Qty != 0 && wh != "" {
				st.Inventory.Adjust(p.ID, wh, row.Qty)
			}
			res.UpdatedCount++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	e.metrics.RecordImport(res.UpdatedCount, len(res.Misses))
	e.logger.Info("batch import applied",
		"rows", len(rows),
		"updated", res.UpdatedCount,
		"skipped", len(res.Misses),
	)
	for _, sku := range res.Misses {
		e.logger.Debug("import row skipped", "sku", sku, "error", domain.NewLookupMissError(sku))
	}
	return res, nil
}

// ParseImportRows reads tab-separated lines of the form
//
//	SKU  Name  Qty  Retail  MOQ1  MOQ2  WarehouseID
//
// Lines with fewer than two columns are ignored. A missing or malformed
// quantity reads as 0, malformed prices as 0, and a missing warehouse as
// defaultWarehouse.
func ParseImportRows(r io.Reader, defaultWarehouse string) ([]ImportRow, error) {
	var rows []ImportRow
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		row := ImportRow{
			SKU:         cols[0],
			Name:        cols[1],
			WarehouseID: defaultWarehouse,
		}
		if len(cols) > 2 {
			if n, err := strconv.Atoi(cols[2]); err == nil {
				row.Qty = n
			}
		}
		row.Retail = column(cols, 3)
		row.MOQ1 = column(cols, 4)
		row.MOQ2 = column(cols, 5)
		if len(cols) > 6 && cols[6] != "" {
			row.WarehouseID = cols[6]
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read import rows: %w", err)
	}
	return rows, nil
}

func column(cols []string, i int) decimal.Decimal {
	if i >= len(cols) || cols[i] == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cols[i])
	if err != nil {
		return decimal.Zero
	}
	return d
}
