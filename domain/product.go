// Package domain defines core business types and interfaces.
package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry
type Product struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	PriceRetail decimal.Decimal `json:"priceRetail"`
	PriceMOQ1   decimal.Decimal `json:"priceMOQ1"`
	PriceMOQ2   decimal.Decimal `json:"priceMOQ2"`
	MinStock    int             `json:"minStock"`
}

// ValidateProduct checks the fields the catalog cannot work without.
func ValidateProduct(p Product) error {
	if p.ID == "" {
		return NewValidationError("id", "cannot be empty", p.ID)
	}
	if p.SKU == "" {
		return NewValidationError("sku", "cannot be empty", p.SKU)
	}
	if p.Name == "" {
		return NewValidationError("name", "cannot be empty", p.Name)
	}
	if p.MinStock < 0 {
		return NewValidationError("minStock", "must be non-negative", p.MinStock)
	}
	prices := []struct {
		field string
		v     decimal.Decimal
	}{
		{"priceRetail", p.PriceRetail},
		{"priceMOQ1", p.PriceMOQ1},
		{"priceMOQ2", p.PriceMOQ2},
	}
	for _, pr := range prices {
		if pr.v.IsNegative() {
			return NewValidationError(pr.field, "must be non-negative", pr.v.String())
		}
	}
	return nil
}

// WarehouseType distinguishes company stock from dealer consignment stock.
type WarehouseType string

const (
	WarehouseInternal WarehouseType = "Internal"
	WarehouseExternal WarehouseType = "External"
)

type Warehouse struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Location string        `json:"location"`
	Type     WarehouseType `json:"type"`
}

type Dealer struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	TaxID         string `json:"taxId"`
	Email         string `json:"email"`
}

// Store is the single-writer repository holding the whole session state.
//
// Update runs fn against a private copy and publishes it only when fn
// returns nil, so a failed mutation leaves the visible state untouched.
type Store interface {
	View(ctx context.Context, fn func(*State) error) error
	Update(ctx context.Context, fn func(*State) error) error
}
