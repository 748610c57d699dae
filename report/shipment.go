package report

import (
	"context"

	"stockledger/domain"
)

// ShipmentLine is one transaction item with display names resolved.
type ShipmentLine struct {
	ProductID     string `json:"productId"`
	ProductName   string `json:"productName"`
	WarehouseName string `json:"warehouseName"`
	Quantity      int    `json:"quantity"`
}

// Shipment is the packing slip for a single transaction.
type Shipment struct {
	Transaction domain.Transaction `json:"transaction"`
	Lines       []ShipmentLine     `json:"lines"`
}

// Shipment resolves a recorded transaction into a packing slip.
func (r *Reporter) Shipment(ctx context.Context, txID string) (Shipment, error) {
	var s Shipment
	err := r.store.View(ctx, func(st *domain.State) error {
		tx, ok := st.Transaction(txID)
		if !ok {
			return domain.NewNotFoundError("transaction", txID)
		}
		s.Transaction = tx
		s.Lines = make([]ShipmentLine, 0, len(tx.Items))
		for _, it := range tx.Items {
			s.Lines = append(s.Lines, ShipmentLine{
				ProductID:     it.ProductID,
				ProductName:   st.ProductName(it.ProductID),
				WarehouseName: st.WarehouseName(it.WarehouseID),
				Quantity:      it.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return Shipment{}, err
	}
	return s, nil
}
