package engine

import (
	"stockledger/domain"
)

// Delta is one signed ledger movement.
type Delta struct {
	ProductID   string
	WarehouseID string
	Quantity    int
}

// Deltas maps a sale type and its items to ledger movements. Buyouts and
// settlements only deduct from the source; transfers also credit the
// target, so each transfer item nets to zero across the two cells.
func Deltas(saleType domain.SaleType, items []domain.TransactionItem) ([]Delta, error) {
	switch saleType {
	case domain.SaleBuyout, domain.SaleConsignmentSettlement:
		out := make([]Delta, 0, len(items))
		for _, it := range items {
			out = append(out, Delta{it.ProductID, it.WarehouseID, -it.Quantity})
		}
		return out, nil
	case domain.SaleConsignmentTransfer:
		out := make([]Delta, 0, 2*len(items))
		for _, it := range items {
			if it.TargetWarehouseID == "" {
				return nil, domain.NewValidationError("targetWarehouseId", "required for consignment transfer", it.ProductID)
			}
			out = append(out,
				Delta{it.ProductID, it.WarehouseID, -it.Quantity},
				Delta{it.ProductID, it.TargetWarehouseID, it.Quantity},
			)
		}
		return out, nil
	}
	return nil, domain.NewValidationError("saleType", "unknown sale type", saleType)
}
