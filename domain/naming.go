package domain

import "strings"

const (
	dealerWarehousePrefix   = "wh-dealer-"
	dealerWarehouseSuffix   = " (Consignment)"
	dealerWarehouseLocation = "Dealer Site"
)

// DealerWarehouseID derives the consignment warehouse id of a dealer.
func DealerWarehouseID(dealerID string) string {
	return dealerWarehousePrefix + dealerID
}

// IsDealerWarehouseID reports whether id uses the consignment warehouse
// prefix, which only dealer registration may allocate.
func IsDealerWarehouseID(id string) bool {
	return strings.HasPrefix(id, dealerWarehousePrefix)
}

// DealerWarehouseName is the display name of a dealer's consignment warehouse.
func DealerWarehouseName(dealerName string) string {
	return dealerName + dealerWarehouseSuffix
}

// DealerWarehouse builds the consignment warehouse paired with d.
func DealerWarehouse(d Dealer) Warehouse {
	return Warehouse{
		ID:       DealerWarehouseID(d.ID),
		Name:     DealerWarehouseName(d.Name),
		Location: dealerWarehouseLocation,
		Type:     WarehouseExternal,
	}
}
