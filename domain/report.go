package domain

import "github.com/shopspring/decimal"

// BillingStatement is derived on every query and never stored.
type BillingStatement struct {
	Dealer           Dealer          `json:"dealer"`
	StartDate        Date            `json:"startDate"`
	EndDate          Date            `json:"endDate"`
	Transactions     []Transaction   `json:"transactions"`
	TotalGoodsAmount decimal.Decimal `json:"totalGoodsAmount"`
	TotalShipping    decimal.Decimal `json:"totalShipping"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`
	GrandTotal       decimal.Decimal `json:"grandTotal"`
}

// SettlementLine is one settled item.
type SettlementLine struct {
	Date          Date            `json:"date"`
	TransactionID string          `json:"transactionId"`
	ShortID       string          `json:"shortId"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Note          string          `json:"note,omitempty"`
}

// ProductSummary aggregates settled quantity and value per product.
type ProductSummary struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type SettlementExport struct {
	Dealer      Dealer           `json:"dealer"`
	StartDate   Date             `json:"startDate"`
	EndDate     Date             `json:"endDate"`
	Lines       []SettlementLine `json:"lines"`
	Summary     []ProductSummary `json:"summary"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
}

// ConsignmentStockLine is a positive ledger cell at a dealer warehouse.
type ConsignmentStockLine struct {
	ProductID   string          `json:"productId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	PriceRetail decimal.Decimal `json:"priceRetail"`
	Value       decimal.Decimal `json:"value"`
}

type ConsignmentStock struct {
	DealerID    string                 `json:"dealerId"`
	WarehouseID string                 `json:"warehouseId"`
	Lines       []ConsignmentStockLine `json:"lines"`
	TotalValue  decimal.Decimal        `json:"totalValue"`
}
