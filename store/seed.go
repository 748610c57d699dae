package store

import (
	"github.com/shopspring/decimal"

	"stockledger/domain"
)

// Seed loads the demo catalog: one internal warehouse, three dealers with
// their consignment warehouses, five products, opening stock and two
// historical transactions.
func Seed(s *domain.State) error {
	if err := s.AddWarehouse(domain.Warehouse{
		ID:       "wh-main",
		Name:     "Taipei HQ (Main)",
		Location: "Taipei City",
		Type:     domain.WarehouseInternal,
	}); err != nil {
		return err
	}

	dealers := []domain.Dealer{
		{ID: "d-001", Name: "HiTech Co.", ContactPerson: "Manager Chen", TaxID: "12345678", Email: "sales@hitech.com.tw"},
		{ID: "d-002", Name: "Island 3C Retail", ContactPerson: "Ms. Lin", TaxID: "87654321", Email: "order@retail.com.tw"},
		{ID: "d-003", Name: "Dafa Studio", ContactPerson: "Wang Da-ming", TaxID: "22334455", Email: "studio@dafa.tw"},
	}
	for _, d := range dealers {
		if err := s.AddDealer(d); err != nil {
			return err
		}
	}

	products := []domain.Product{
		seedProduct("p-001", "ELEC-GPU-4090", "4719072964881", "RTX 4090 Graphics Card", "Electronics", 52000, 50000, 48000, 10),
		seedProduct("p-002", "ELEC-CPU-14900", "5032037234567", "Intel i9-14900K", "Electronics", 18500, 17800, 17000, 20),
		seedProduct("p-003", "FURN-DESK-PRO", "8809485721123", "Standing Desk Pro", "Office Furniture", 12000, 11000, 10500, 5),
		seedProduct("p-004", "FURN-CHAIR-ULTRA", "8809485721124", "Ergonomic Chair Ultra", "Office Furniture", 8500, 7800, 7200, 15),
		seedProduct("p-005", "ACC-MOU-WL", "6921384729102", "Wireless Gaming Mouse", "Accessories", 2400, 2200, 2000, 50),
	}
	for _, p := range products {
		if err := s.AddProduct(p); err != nil {
			return err
		}
	}

	opening := []domain.InventoryRecord{
		{ProductID: "p-001", WarehouseID: "wh-main", Quantity: 2},
		{ProductID: "p-002", WarehouseID: "wh-main", Quantity: 0},
		{ProductID: "p-003", WarehouseID: "wh-main", Quantity: 5},
		{ProductID: "p-004", WarehouseID: "wh-main", Quantity: 20},
		{ProductID: "p-005", WarehouseID: "wh-main", Quantity: 200},
		{ProductID: "p-001", WarehouseID: "wh-dealer-d-001", Quantity: 5},
		{ProductID: "p-002", WarehouseID: "wh-dealer-d-001", Quantity: 10},
		{ProductID: "p-003", WarehouseID: "wh-dealer-d-002", Quantity: 8},
	}
	for _, r := range opening {
		s.Inventory.Set(r.ProductID, r.WarehouseID, r.Quantity)
	}

	price := decimal.NewFromInt(50000)
	s.AppendTransaction(domain.Transaction{
		ID:             "tx-1001",
		Date:           domain.MustDate("2023-10-25"),
		DealerID:       "d-001",
		DealerName:     "HiTech Co.",
		SaleType:       domain.SaleConsignmentTransfer,
		ShippingMethod: domain.ShippingTruck,
		ShippingCost:   decimal.Zero,
		Items: []domain.TransactionItem{
			{ProductID: "p-001", WarehouseID: "wh-main", Quantity: 5, PriceAtSale: price, TargetWarehouseID: "wh-dealer-d-001"},
		},
		TotalValue: decimal.NewFromInt(250000),
		Note:       "first stocking",
	})
	s.AppendTransaction(domain.Transaction{
		ID:             "tx-1002",
		Date:           domain.MustDate("2023-10-28"),
		DealerID:       "d-001",
		DealerName:     "HiTech Co.",
		SaleType:       domain.SaleConsignmentSettlement,
		ShippingMethod: domain.ShippingNone,
		ShippingCost:   decimal.Zero,
		Items: []domain.TransactionItem{
			{ProductID: "p-001", WarehouseID: "wh-dealer-d-001", Quantity: 1, PriceAtSale: price},
		},
		TotalValue: price,
		Note:       "October settlement - one card sold",
	})
	return nil
}

func seedProduct(id, sku, barcode, name, category string, retail, moq1, moq2 int64, minStock int) domain.Product {
	return domain.Product{
		ID:          id,
		SKU:         sku,
		Barcode:     barcode,
		Name:        name,
		Category:    category,
		PriceRetail: decimal.NewFromInt(retail),
		PriceMOQ1:   decimal.NewFromInt(moq1),
		PriceMOQ2:   decimal.NewFromInt(moq2),
		MinStock:    minStock,
	}
}
