// Package report derives statements, settlement exports and stock views from
// a store snapshot. Nothing here mutates state, and lookups that miss fall
// back to placeholders instead of failing.
package report

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"stockledger/domain"
)

// DefaultTaxRate applies to goods only, never to shipping.
var DefaultTaxRate = decimal.NewFromFloat(0.05)

// UnknownName is shown for dealers and products that no longer resolve.
const UnknownName = "Unknown"

type Reporter struct {
	store   domain.Store
	taxRate decimal.Decimal
}

type Option func(*Reporter)

func WithTaxRate(rate decimal.Decimal) Option {
	return func(r *Reporter) { r.taxRate = rate }
}

func New(store domain.Store, opts ...Option) *Reporter {
	r := &Reporter{store: store, taxRate: DefaultTaxRate}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TaxRate is the rate statements are computed with.
func (r *Reporter) TaxRate() decimal.Decimal {
	return r.taxRate
}

// Statement bills a dealer for Buyout and ConsignmentSettlement
// transactions dated within [start, end].
func (r *Reporter) Statement(ctx context.Context, dealerID string, start, end domain.Date) (domain.BillingStatement, error) {
	stmt := domain.BillingStatement{
		StartDate:        start,
		EndDate:          end,
		Transactions:     []domain.Transaction{},
		TotalGoodsAmount: decimal.Zero,
		TotalShipping:    decimal.Zero,
	}
	err := r.store.View(ctx, func(st *domain.State) error {
		stmt.Dealer = dealerOrPlaceholder(st, dealerID)
		for _, tx := range st.History {
			if tx.DealerID != dealerID || !tx.SaleType.Billable() || !tx.Date.Within(start, end) {
				continue
			}
			stmt.Transactions = append(stmt.Transactions, tx)
			stmt.TotalGoodsAmount = stmt.TotalGoodsAmount.Add(tx.TotalValue)
			stmt.TotalShipping = stmt.TotalShipping.Add(tx.ShippingCost)
		}
		return nil
	})
	if err != nil {
		return domain.BillingStatement{}, err
	}
	sortByDateAsc(stmt.Transactions)
	stmt.TaxAmount = stmt.TotalGoodsAmount.Mul(r.taxRate).Round(0)
	stmt.GrandTotal = stmt.TotalGoodsAmount.Add(stmt.TaxAmount).Add(stmt.TotalShipping)
	return stmt, nil
}

// SettlementExport lists every settled item for a dealer in [start, end]
// with a per-product summary in first-seen order.
func (r *Reporter) SettlementExport(ctx context.Context, dealerID string, start, end domain.Date) (domain.SettlementExport, error) {
	exp := domain.SettlementExport{
		StartDate:   start,
		EndDate:     end,
		Lines:       []domain.SettlementLine{},
		Summary:     []domain.ProductSummary{},
		TotalAmount: decimal.Zero,
	}
	err := r.store.View(ctx, func(st *domain.State) error {
		exp.Dealer = dealerOrPlaceholder(st, dealerID)

		var txs []domain.Transaction
		for _, tx := range st.History {
			if tx.DealerID == dealerID && tx.SaleType == domain.SaleConsignmentSettlement && tx.Date.Within(start, end) {
				txs = append(txs, tx)
			}
		}
		sortByDateAsc(txs)

		index := make(map[string]int)
		for _, tx := range txs {
			for _, it := range tx.Items {
				sub := it.Subtotal()
				name := st.ProductName(it.ProductID)
				exp.Lines = append(exp.Lines, domain.SettlementLine{
					Date:          tx.Date,
					TransactionID: tx.ID,
					ShortID:       tx.ShortID(),
					ProductID:     it.ProductID,
					ProductName:   name,
					Quantity:      it.Quantity,
					UnitPrice:     it.PriceAtSale,
					Subtotal:      sub,
					Note:          tx.Note,
				})
				exp.TotalAmount = exp.TotalAmount.Add(sub)

				i, ok := index[it.ProductID]
				if !ok {
					i = len(exp.Summary)
					index[it.ProductID] = i
					exp.Summary = append(exp.Summary, domain.ProductSummary{
						ProductID:   it.ProductID,
						ProductName: name,
						Subtotal:    decimal.Zero,
					})
				}
				exp.Summary[i].Quantity += it.Quantity
				exp.Summary[i].Subtotal = exp.Summary[i].Subtotal.Add(sub)
			}
		}
		return nil
	})
	if err != nil {
		return domain.SettlementExport{}, err
	}
	return exp, nil
}

// ConsignmentStock snapshots the positive cells of a dealer's consignment
// warehouse valued at current retail price.
func (r *Reporter) ConsignmentStock(ctx context.Context, dealerID string) (domain.ConsignmentStock, error) {
	cs := domain.ConsignmentStock{
		DealerID:    dealerID,
		WarehouseID: domain.DealerWarehouseID(dealerID),
		Lines:       []domain.ConsignmentStockLine{},
		TotalValue:  decimal.Zero,
	}
	err := r.store.View(ctx, func(st *domain.State) error {
		for _, rec := range st.Inventory.ByWarehouse(cs.WarehouseID) {
			if rec.Quantity <= 0 {
				continue
			}
			line := domain.ConsignmentStockLine{
				ProductID:   rec.ProductID,
				Name:        UnknownName,
				Quantity:    rec.Quantity,
				PriceRetail: decimal.Zero,
			}
			if p, ok := st.Product(rec.ProductID); ok {
				line.SKU = p.SKU
				line.Name = p.Name
				line.PriceRetail = p.PriceRetail
			}
			line.Value = line.PriceRetail.Mul(decimal.NewFromInt(int64(line.Quantity)))
			cs.TotalValue = cs.TotalValue.Add(line.Value)
			cs.Lines = append(cs.Lines, line)
		}
		return nil
	})
	if err != nil {
		return domain.ConsignmentStock{}, err
	}
	return cs, nil
}

// History lists transactions newest first. Transactions sharing a date
// keep reverse insertion order.
func (r *Reporter) History(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	err := r.store.View(ctx, func(st *domain.State) error {
		out = make([]domain.Transaction, 0, len(st.History))
		for i := len(st.History) - 1; i >= 0; i-- {
			out = append(out, st.History[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b domain.Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out, nil
}

func dealerOrPlaceholder(st *domain.State, id string) domain.Dealer {
	if d, ok := st.Dealer(id); ok {
		return d
	}
	return domain.Dealer{ID: id, Name: UnknownName}
}

func sortByDateAsc(txs []domain.Transaction) {
	slices.SortStableFunc(txs, func(a, b domain.Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})
}
