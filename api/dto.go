package api

import (
	"github.com/shopspring/decimal"

	"stockledger/domain"
	"stockledger/engine"
)

type productRequest struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku" validate:"required"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category"`
	PriceRetail decimal.Decimal `json:"priceRetail" validate:"min=0"`
	PriceMOQ1   decimal.Decimal `json:"priceMOQ1" validate:"min=0"`
	PriceMOQ2   decimal.Decimal `json:"priceMOQ2" validate:"min=0"`
	MinStock    int             `json:"minStock" validate:"min=0"`
}

func (r productRequest) product() domain.Product {
	return domain.Product{
		ID:          r.ID,
		SKU:         r.SKU,
		Barcode:     r.Barcode,
		Name:        r.Name,
		Category:    r.Category,
		PriceRetail: r.PriceRetail,
		PriceMOQ1:   r.PriceMOQ1,
		PriceMOQ2:   r.PriceMOQ2,
		MinStock:    r.MinStock,
	}
}

type dealerRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contactPerson"`
	TaxID         string `json:"taxId"`
	Email         string `json:"email" validate:"omitempty,email"`
}

func (r dealerRequest) dealer() domain.Dealer {
	return domain.Dealer{
		ID:            r.ID,
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		TaxID:         r.TaxID,
		Email:         r.Email,
	}
}

type warehouseRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
	Type     string `json:"type" validate:"required,oneof=Internal External"`
}

type correctionRequest struct {
	ProductID   string `json:"productId" validate:"required"`
	WarehouseID string `json:"warehouseId" validate:"required"`
	Quantity    int    `json:"quantity"`
}

type importRequest struct {
	Rows []engine.ImportRow `json:"rows" validate:"required,dive"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type analysisResponse struct {
	Text string `json:"text"`
}
