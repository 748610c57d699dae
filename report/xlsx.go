package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stockledger/domain"
)

// sheet accumulates rows into a single excelize worksheet.
type sheet struct {
	f    *excelize.File
	name string
	row  int
	err  error
}

func newSheet(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	return &sheet{f: f, name: name}, nil
}

// add writes values to the next row. Decimals are stored as numbers.
func (s *sheet) add(values ...interface{}) {
	s.row++
	if s.err != nil || len(values) == 0 {
		return
	}
	for i, v := range values {
		if d, ok := v.(decimal.Decimal); ok {
			v = d.InexactFloat64()
		}
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			s.err = err
			return
		}
		if err := s.f.SetCellValue(s.name, cell, v); err != nil {
			s.err = err
			return
		}
	}
}

func (s *sheet) writeTo(w io.Writer) error {
	defer s.f.Close()
	if s.err != nil {
		return fmt.Errorf("build xlsx: %w", s.err)
	}
	if err := s.f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// WriteStatementXLSX renders the statement layout of WriteStatementCSV as a
// workbook.
func WriteStatementXLSX(w io.Writer, st domain.BillingStatement, taxRate decimal.Decimal) error {
	s, err := newSheet("Statement")
	if err != nil {
		return err
	}
	s.add("Statement")
	s.add("Dealer", st.Dealer.Name)
	s.add("Tax ID", st.Dealer.TaxID)
	s.add("Contact", st.Dealer.ContactPerson)
	s.add("Period", st.StartDate.String()+" ~ "+st.EndDate.String())
	s.add()
	s.add("Date", "No.", "Type", "Shipping", "Goods Amount (pre-tax)")
	for _, tx := range st.Transactions {
		s.add(tx.Date.String(), tx.ShortID(), SaleTypeLabel(tx.SaleType), tx.ShippingCost, tx.TotalValue)
	}
	s.add()
	s.add("", "", "", "Goods Total (pre-tax)", st.TotalGoodsAmount)
	s.add("", "", "", taxLabel(taxRate), st.TaxAmount)
	s.add("", "", "", "Shipping Total", st.TotalShipping)
	s.add("", "", "", "Amount Due", st.GrandTotal)
	return s.writeTo(w)
}

// WriteSettlementXLSX renders a settlement export as a workbook.
func WriteSettlementXLSX(w io.Writer, e domain.SettlementExport) error {
	s, err := newSheet("Settlement")
	if err != nil {
		return err
	}
	s.add("Settlement Report (Detail) - " + e.Dealer.Name)
	s.add("Period: " + e.StartDate.String() + " ~ " + e.EndDate.String())
	s.add()
	s.add("Date", "No.", "Item", "Qty", "Unit Price (pre-tax)", "Subtotal", "Note")
	for _, l := range e.Lines {
		s.add(l.Date.String(), l.ShortID, l.ProductName, l.Quantity, l.UnitPrice, l.Subtotal, l.Note)
	}
	s.add()
	s.add("", "", "", "", "", "Total (pre-tax)", e.TotalAmount)
	s.add()
	s.add("Product Summary")
	s.add("Item", "Total Qty", "Total Amount (pre-tax)")
	for _, p := range e.Summary {
		s.add(p.ProductName, p.Quantity, p.Subtotal)
	}
	return s.writeTo(w)
}
