// Package engine validates and applies transactions against the ledger and
// exposes the mutation entry points used by the CLI and HTTP API.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"stockledger/domain"
	"stockledger/metrics"
	"stockledger/util"
)

// Engine is the single writer of a domain.Store.
type Engine struct {
	store    domain.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	validate *validator.Validate
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides time.Now, used for default transaction dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(store domain.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		logger:   slog.Default(),
		now:      time.Now,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the underlying store for read-side components.
func (e *Engine) Store() domain.Store {
	return e.store
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Submit validates draft against the current state and, if every check
// passes, applies it and appends it to history. On any error neither the
// ledger nor the history changes.
func (e *Engine) Submit(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	start := time.Now()

	if err := e.checkDraft(draft); err != nil {
		e.reject(draft, err)
		return domain.Transaction{}, err
	}

	var applied domain.Transaction
	err := e.store.Update(ctx, func(st *domain.State) error {
		tx, err := e.build(st, draft)
		if err != nil {
			return err
		}
		deltas, err := Deltas(tx.SaleType, tx.Items)
		if err != nil {
			return err
		}
		for _, d := range deltas {
			st.Inventory.Adjust(d.ProductID, d.WarehouseID, d.Quantity)
		}
		st.AppendTransaction(tx)
		applied = tx
		return nil
	})
	if err != nil {
		e.reject(draft, err)
		return domain.Transaction{}, err
	}

	units := 0
	for _, it := range applied.Items {
		units += it.Quantity
	}
	e.metrics.RecordTransactionApplied(string(applied.SaleType), units)
	e.logger.Info("transaction applied",
		"transaction_id", applied.ID,
		"dealer_id", applied.DealerID,
		"sale_type", applied.SaleType,
		"items", len(applied.Items),
		"total_value", applied.TotalValue.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return applied, nil
}

func (e *Engine) reject(draft domain.TransactionDraft, err error) {
	reason := "other"
	switch {
	case domain.IsValidationError(err):
		reason = "validation"
	case domain.IsInsufficientStockError(err):
		reason = "insufficient_stock"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = "cancelled"
	}
	e.metrics.RecordTransactionRejected(reason)
	e.logger.Warn("transaction rejected",
		"dealer_id", draft.DealerID,
		"sale_type", draft.SaleType,
		"reason", reason,
		"error", err,
	)
}

// checkDraft runs the structural checks that need no state.
func (e *Engine) checkDraft(draft domain.TransactionDraft) error {
	if err := e.validate.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := fe.Namespace()
			if _, rest, ok := strings.Cut(field, "."); ok {
				field = rest
			}
			return domain.NewValidationError(field, describeTag(fe), fe.Value())
		}
		return domain.NewValidationError("draft", err.Error(), nil)
	}
	if draft.ShippingCost.IsNegative() {
		return domain.NewValidationError("shippingCost", "must be non-negative", draft.ShippingCost.String())
	}
	for i, it := range draft.Items {
		if it.PriceAtSale != nil && it.PriceAtSale.IsNegative() {
			return domain.NewValidationError(fmt.Sprintf("items[%d].priceAtSale", i), "must be non-negative", it.PriceAtSale.String())
		}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " entry"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "failed " + fe.Tag()
}

// build resolves the draft against st into the transaction that will be
// recorded, including the stock check. It does not mutate the ledger.
func (e *Engine) build(st *domain.State, draft domain.TransactionDraft) (domain.Transaction, error) {
	dealer, ok := st.Dealer(draft.DealerID)
	if !ok {
		return domain.Transaction{}, domain.NewValidationError("dealerId", "unknown dealer", draft.DealerID)
	}

	date := draft.Date
	if date.IsZero() {
		date = domain.NewDate(e.now())
	}

	tx := domain.Transaction{
		ID:             util.NewTransactionID(),
		Date:           date,
		DealerID:       dealer.ID,
		DealerName:     dealer.Name,
		SaleType:       draft.SaleType,
		ShippingMethod: draft.ShippingMethod,
		ShippingCost:   draft.ShippingCost,
		Items:          make([]domain.TransactionItem, 0, len(draft.Items)),
		Note:           draft.Note,
	}
	if tx.ShippingMethod == "" {
		tx.ShippingMethod = domain.ShippingNone
	}

	for _, di := range draft.Items {
		item := domain.TransactionItem{
			ProductID:         di.ProductID,
			WarehouseID:       di.WarehouseID,
			Quantity:          di.Quantity,
			TargetWarehouseID: di.TargetWarehouseID,
		}
		switch {
		case di.PriceAtSale != nil:
			item.PriceAtSale = *di.PriceAtSale
		default:
			if p, ok := st.Product(di.ProductID); ok {
				item.PriceAtSale = p.PriceRetail
			}
		}
		tx.Items = append(tx.Items, item)
	}

	switch tx.SaleType {
	case domain.SaleConsignmentTransfer:
		whID, err := st.EnsureDealerWarehouse(dealer.ID)
		if err != nil {
			return domain.Transaction{}, err
		}
		for i := range tx.Items {
			tx.Items[i].TargetWarehouseID = whID
		}
	case domain.SaleConsignmentSettlement:
		tx.ShippingCost = decimal.Zero
		tx.ShippingMethod = domain.ShippingNone
		for i := range tx.Items {
			tx.Items[i].TargetWarehouseID = ""
		}
	case domain.SaleBuyout:
		for i := range tx.Items {
			tx.Items[i].TargetWarehouseID = ""
		}
	default:
		return domain.Transaction{}, domain.NewValidationError("saleType", "unknown sale type", tx.SaleType)
	}

	if err := checkStock(st, tx.Items); err != nil {
		return domain.Transaction{}, err
	}

	total := decimal.Zero
	for _, it := range tx.Items {
		total = total.Add(it.Subtotal())
	}
	tx.TotalValue = total
	return tx, nil
}

// checkStock sums the requested quantity per source cell and compares it
// with what the ledger holds before the transaction.
func checkStock(st *domain.State, items []domain.TransactionItem) error {
	type cell struct{ product, warehouse string }
	requested := make(map[cell]int, len(items))
	for _, it := range items {
		c := cell{it.ProductID, it.WarehouseID}
		requested[c] += it.Quantity
		available := st.Inventory.Get(it.ProductID, it.WarehouseID)
		if requested[c] > available {
			return domain.NewInsufficientStockError(
				it.ProductID, st.ProductName(it.ProductID), it.WarehouseID, requested[c], available)
		}
	}
	return nil
}

// UpdateNote edits the note of a recorded transaction.
func (e *Engine) UpdateNote(ctx context.Context, txID, note string) error {
	if err := e.store.Update(ctx, func(st *domain.State) error {
		return st.SetNote(txID, note)
	}); err != nil {
		return err
	}
	e.logger.Info("transaction note updated", "transaction_id", txID)
	return nil
}

// CorrectInventory overwrites one ledger cell.
func (e *Engine) CorrectInventory(ctx context.Context, productID, warehouseID string, qty int) error {
	if productID == "" {
		return domain.NewValidationError("productId", "cannot be empty", productID)
	}
	if warehouseID == "" {
		return domain.NewValidationError("warehouseId", "cannot be empty", warehouseID)
	}
	var previous int
	if err := e.store.Update(ctx, func(st *domain.State) error {
		previous = st.Inventory.Get(productID, warehouseID)
		st.Inventory.Set(productID, warehouseID, qty)
		return nil
	}); err != nil {
		return err
	}
	e.logger.Info("inventory corrected",
		"product_id", productID,
		"warehouse_id", warehouseID,
		"previous", previous,
		"quantity", qty,
	)
	return nil
}
