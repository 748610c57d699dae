package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockledger/domain"
)

// bom lets spreadsheet tools detect UTF-8.
const bom = "\ufeff"

var freeText = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", ",", " ")

// Clean replaces commas and line breaks in free text with a single space.
func Clean(s string) string {
	return freeText.Replace(s)
}

// SaleTypeLabel is the human-readable name of a sale type.
func SaleTypeLabel(t domain.SaleType) string {
	switch t {
	case domain.SaleBuyout:
		return "Buyout"
	case domain.SaleConsignmentTransfer:
		return "Consignment Transfer"
	case domain.SaleConsignmentSettlement:
		return "Consignment Settlement"
	}
	return string(t)
}

func newCSV(w io.Writer) (*csv.Writer, error) {
	if _, err := io.WriteString(w, bom); err != nil {
		return nil, fmt.Errorf("write bom: %w", err)
	}
	return csv.NewWriter(w), nil
}

func taxLabel(rate decimal.Decimal) string {
	return "Tax (" + rate.Mul(decimal.NewFromInt(100)).String() + "% goods only)"
}

// WriteStatementCSV renders a billing statement: a dealer header block, one
// row per transaction, then the totals.
func WriteStatementCSV(w io.Writer, s domain.BillingStatement, taxRate decimal.Decimal) error {
	cw, err := newCSV(w)
	if err != nil {
		return err
	}
	rows := [][]string{
		{"Statement"},
		{"Dealer", Clean(s.Dealer.Name)},
		{"Tax ID", Clean(s.Dealer.TaxID)},
		{"Contact", Clean(s.Dealer.ContactPerson)},
		{"Period", s.StartDate.String() + " ~ " + s.EndDate.String()},
		{},
		{"Date", "No.", "Type", "Shipping", "Goods Amount (pre-tax)"},
	}
	for _, tx := range s.Transactions {
		rows = append(rows, []string{
			tx.Date.String(),
			tx.ShortID(),
			SaleTypeLabel(tx.SaleType),
			tx.ShippingCost.String(),
			tx.TotalValue.String(),
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"", "", "", "Goods Total (pre-tax)", s.TotalGoodsAmount.String()},
		[]string{"", "", "", taxLabel(taxRate), s.TaxAmount.String()},
		[]string{"", "", "", "Shipping Total", s.TotalShipping.String()},
		[]string{"", "", "", "Amount Due", s.GrandTotal.String()},
	)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteSettlementCSV renders the settled item lines, the total and the
// per-product summary.
func WriteSettlementCSV(w io.Writer, e domain.SettlementExport) error {
	cw, err := newCSV(w)
	if err != nil {
		return err
	}
	rows := [][]string{
		{"Settlement Report (Detail) - " + Clean(e.Dealer.Name)},
		{"Period: " + e.StartDate.String() + " ~ " + e.EndDate.String()},
		{},
		{"Date", "No.", "Item", "Qty", "Unit Price (pre-tax)", "Subtotal", "Note"},
	}
	for _, l := range e.Lines {
		rows = append(rows, []string{
			l.Date.String(),
			l.ShortID,
			Clean(l.ProductName),
			strconv.Itoa(l.Quantity),
			l.UnitPrice.String(),
			l.Subtotal.String(),
			Clean(l.Note),
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"", "", "", "", "", "Total (pre-tax)", e.TotalAmount.String()},
		[]string{},
		[]string{},
		[]string{"--- Product Summary ---"},
		[]string{"Item", "Total Qty", "Total Amount (pre-tax)"},
	)
	for _, s := range e.Summary {
		rows = append(rows, []string{Clean(s.ProductName), strconv.Itoa(s.Quantity), s.Subtotal.String()})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteShipmentCSV renders a packing slip, one row per item.
func WriteShipmentCSV(w io.Writer, s Shipment) error {
	cw, err := newCSV(w)
	if err != nil {
		return err
	}
	rows := [][]string{{"Date", "Item", "Qty", "Note"}}
	note := Clean(s.Transaction.Note)
	for _, l := range s.Lines {
		rows = append(rows, []string{
			s.Transaction.Date.String(),
			Clean(l.ProductName),
			strconv.Itoa(l.Quantity),
			note,
		})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
