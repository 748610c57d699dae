package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleType selects how a transaction moves stock.
type SaleType string

const (
	SaleBuyout                SaleType = "Buyout"
	SaleConsignmentTransfer   SaleType = "ConsignmentTransfer"
	SaleConsignmentSettlement SaleType = "ConsignmentSettlement"
)

// SaleTypes lists every known sale type.
var SaleTypes = []SaleType{SaleBuyout, SaleConsignmentTransfer, SaleConsignmentSettlement}

// ParseSaleType accepts only the three known variants.
func ParseSaleType(s string) (SaleType, error) {
	for _, st := range SaleTypes {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", NewValidationError("saleType", "unknown sale type", s)
}

// Billable reports whether transactions of this type appear on statements.
func (s SaleType) Billable() bool {
	switch s {
	case SaleBuyout, SaleConsignmentSettlement:
		return true
	case SaleConsignmentTransfer:
		return false
	}
	return false
}

type ShippingMethod string

const (
	ShippingTruck   ShippingMethod = "Truck"
	ShippingCourier ShippingMethod = "Courier"
	ShippingPostal  ShippingMethod = "Postal"
	ShippingPickup  ShippingMethod = "Pickup"
	ShippingNone    ShippingMethod = "None"
)

// TransactionItem is one line of a transaction. PriceAtSale is a copy taken
// when the transaction is created and never follows later catalog changes.
type TransactionItem struct {
	ProductID         string          `json:"productId"`
	WarehouseID       string          `json:"warehouseId"`
	Quantity          int             `json:"quantity"`
	PriceAtSale       decimal.Decimal `json:"priceAtSale"`
	TargetWarehouseID string          `json:"targetWarehouseId,omitempty"`
}

// Subtotal is quantity x unit price.
func (it TransactionItem) Subtotal() decimal.Decimal {
	return it.PriceAtSale.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Transaction is an applied shipment. DealerName is a snapshot taken at
// creation; only Note may change afterwards.
type Transaction struct {
	ID             string            `json:"id"`
	Date           Date              `json:"date"`
	DealerID       string            `json:"dealerId"`
	DealerName     string            `json:"dealerName"`
	SaleType       SaleType          `json:"saleType"`
	ShippingMethod ShippingMethod    `json:"shippingMethod"`
	ShippingCost   decimal.Decimal   `json:"shippingCost"`
	Items          []TransactionItem `json:"items"`
	TotalValue     decimal.Decimal   `json:"totalValue"`
	Note           string            `json:"note,omitempty"`
}

// ShortID strips the "tx-" prefix for compact listings.
func (t Transaction) ShortID() string {
	if _, rest, ok := strings.Cut(t.ID, "-"); ok {
		return rest
	}
	return t.ID
}

// TransactionDraft is what callers submit to the engine.
type TransactionDraft struct {
	Date           Date            `json:"date"`
	DealerID       string          `json:"dealerId" validate:"required"`
	SaleType       SaleType        `json:"saleType" validate:"required,oneof=Buyout ConsignmentTransfer ConsignmentSettlement"`
	ShippingMethod ShippingMethod  `json:"shippingMethod" validate:"omitempty,oneof=Truck Courier Postal Pickup None"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	Items          []DraftItem     `json:"items" validate:"required,min=1,dive"`
	Note           string          `json:"note"`
}

// DraftItem leaves PriceAtSale optional; nil means the product's retail price.
type DraftItem struct {
	ProductID         string           `json:"productId" validate:"required"`
	WarehouseID       string           `json:"warehouseId" validate:"required"`
	Quantity          int              `json:"quantity" validate:"gt=0"`
	PriceAtSale       *decimal.Decimal `json:"priceAtSale,omitempty"`
	TargetWarehouseID string           `json:"targetWarehouseId,omitempty"`
}

// Date is a calendar day in UTC, serialized as 2006-01-02.
type Date struct {
	time.Time
}

const DateLayout = "2006-01-02"

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a 2006-01-02 string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, NewValidationError("date", "expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// MustDate is ParseDate for literals known to be valid.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Within reports whether d lies in [start, end] inclusive.
func (d Date) Within(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
