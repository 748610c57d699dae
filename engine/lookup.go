package engine

import (
	"context"
	"strings"

	"stockledger/domain"
)

// ItemFromCode turns a scanned barcode or SKU into a one-unit draft line
// priced at retail. The source is the default warehouse, except for
// settlements where it is the dealer's consignment warehouse when one
// exists. Transfers target the dealer's consignment warehouse.
func (e *Engine) ItemFromCode(ctx context.Context, code string, saleType domain.SaleType, dealerID string) (domain.DraftItem, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.DraftItem{}, domain.NewValidationError("code", "cannot be empty", code)
	}

	var item domain.DraftItem
	err := e.store.View(ctx, func(st *domain.State) error {
		p, ok := st.ProductByCode(code)
		if !ok {
			return domain.NewLookupMissError(code)
		}
		price := p.PriceRetail
		item = domain.DraftItem{
			ProductID:   p.ID,
			Quantity:    1,
			PriceAtSale: &price,
		}
		if wh, ok := st.DefaultWarehouse(); ok {
			item.WarehouseID = wh.ID
		}
		dealerWH := domain.DealerWarehouseID(dealerID)
		switch saleType {
		case domain.SaleConsignmentSettlement:
			if _, ok := st.Warehouse(dealerWH); dealerID != "" && ok {
				item.WarehouseID = dealerWH
			}
		case domain.SaleConsignmentTransfer:
			if dealerID != "" {
				item.TargetWarehouseID = dealerWH
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Debug("code lookup failed", "code", code, "error", err)
		return domain.DraftItem{}, err
	}
	return item, nil
}
