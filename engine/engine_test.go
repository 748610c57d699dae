package engine

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/domain"
	"stockledger/metrics"
	"stockledger/store"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// fixture: one internal warehouse, dealer d-1 with its consignment
// warehouse, two products with stock in wh-a.
func newFixture(t *testing.T) (*Engine, *store.InMemoryStore) {
	t.Helper()
	st := domain.NewState()
	require.NoError(t, st.AddWarehouse(domain.Warehouse{ID: "wh-a", Name: "A", Type: domain.WarehouseInternal}))
	require.NoError(t, st.AddWarehouse(domain.Warehouse{ID: "wh-b", Name: "B", Type: domain.WarehouseInternal}))
	require.NoError(t, st.AddDealer(domain.Dealer{ID: "d-1", Name: "Dealer One"}))
	require.NoError(t, st.AddProduct(domain.Product{ID: "p-1", SKU: "SKU-1", Barcode: "111", Name: "Widget", PriceRetail: dec(100), MinStock: 2}))
	require.NoError(t, st.AddProduct(domain.Product{ID: "p-2", SKU: "SKU-2", Name: "Gadget", PriceRetail: dec(40)}))
	st.Inventory.Set("p-1", "wh-a", 10)
	st.Inventory.Set("p-1", "wh-b", 4)
	st.Inventory.Set("p-2", "wh-a", 6)

	s := store.NewInMemoryStoreFrom(st)
	e := New(s,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }),
	)
	return e, s
}

func TestUnknownCellReadsZero(t *testing.T) {
	e, _ := newFixture(t)
	q, err := e.Quantity(context.Background(), "p-x", "wh-a")
	require.NoError(t, err)
	assert.Equal(t, 0, q)
}

func TestSubmitBuyoutTouchesOnlySource(t *testing.T) {
	e, s := newFixture(t)
	before := s.Snapshot()

	tx, err := e.Submit(context.Background(), domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleBuyout,
		Items:    []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 3}},
	})
	require.NoError(t, err)

	after := s.Snapshot()
	assert.Equal(t, 7, after.Inventory.Get("p-1", "wh-a"))
	assert.Equal(t, 4, after.Inventory.Get("p-1", "wh-b"))
	assert.Equal(t, 6, after.Inventory.Get("p-2", "wh-a"))
	assert.Equal(t, before.Inventory.Len(), after.Inventory.Len())
	require.Len(t, after.History, 1)

	assert.True(t, strings.HasPrefix(tx.ID, "tx-"))
	assert.Equal(t, "2024-03-15", tx.Date.String())
	assert.Equal(t, "Dealer One", tx.DealerName)
	assert.Equal(t, domain.ShippingNone, tx.ShippingMethod)
	assert.True(t, dec(100).Equal(tx.Items[0].PriceAtSale), "retail price snapshot")
	assert.True(t, dec(300).Equal(tx.TotalValue))
}

func TestSubmitTransferIsZeroSum(t *testing.T) {
	e, s := newFixture(t)
	ctx := context.Background()
	totalBefore, _ := e.TotalQuantity(ctx, "p-1")

	tx, err := e.Submit(ctx, domain.TransactionDraft{
		DealerID:       "d-1",
		SaleType:       domain.SaleConsignmentTransfer,
		ShippingMethod: domain.ShippingTruck,
		ShippingCost:   dec(80),
		Items: []domain.DraftItem{
			{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 4, TargetWarehouseID: "wh-b"},
		},
	})
	require.NoError(t, err)

	after := s.Snapshot()
	assert.Equal(t, 6, after.Inventory.Get("p-1", "wh-a"))
	assert.Equal(t, 4, after.Inventory.Get("p-1", "wh-dealer-d-1"))
	assert.Equal(t, 4, after.Inventory.Get("p-1", "wh-b"), "caller target is overridden")
	assert.Equal(t, "wh-dealer-d-1", tx.Items[0].TargetWarehouseID)
	assert.True(t, dec(80).Equal(tx.ShippingCost))

	totalAfter, _ := e.TotalQuantity(ctx, "p-1")
	assert.Equal(t, totalBefore, totalAfter)
}

func TestSubmitTransferRecreatesMissingDealerWarehouse(t *testing.T) {
	e, s := newFixture(t)
	require.NoError(t, s.Update(context.Background(), func(st *domain.State) error {
		st.Warehouses = st.Warehouses[:2]
		return nil
	}))

	_, err := e.Submit(context.Background(), domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleConsignmentTransfer,
		Items:    []domain.DraftItem{{ProductID: "p-2", WarehouseID: "wh-a", Quantity: 1}},
	})
	require.NoError(t, err)

	wh, ok := s.Snapshot().Warehouse("wh-dealer-d-1")
	require.True(t, ok)
	assert.Equal(t, domain.WarehouseExternal, wh.Type)
}

func TestSubmitSettlementDeductsDealerStockOnly(t *testing.T) {
	e, s := newFixture(t)
	ctx := context.Background()
	require.NoError(t, e.CorrectInventory(ctx, "p-1", "wh-dealer-d-1", 5))

	tx, err := e.Submit(ctx, domain.TransactionDraft{
		DealerID:       "d-1",
		SaleType:       domain.SaleConsignmentSettlement,
		ShippingMethod: domain.ShippingCourier,
		ShippingCost:   dec(120),
		Items: []domain.DraftItem{
			{ProductID: "p-1", WarehouseID: "wh-dealer-d-1", Quantity: 2, PriceAtSale: decPtr(90)},
		},
	})
	require.NoError(t, err)

	after := s.Snapshot()
	assert.Equal(t, 3, after.Inventory.Get("p-1", "wh-dealer-d-1"))
	assert.Equal(t, 10, after.Inventory.Get("p-1", "wh-a"))
	assert.True(t, tx.ShippingCost.IsZero())
	assert.Equal(t, domain.ShippingNone, tx.ShippingMethod)
	assert.True(t, dec(180).Equal(tx.TotalValue))
}

func TestSubmitRejectionLeavesStateUntouched(t *testing.T) {
	tests := []struct {
		name      string
		draft     domain.TransactionDraft
		wantStock bool
		wantValid bool
	}{
		{
			name: "quantity exceeds stock",
			draft: domain.TransactionDraft{DealerID: "d-1", SaleType: domain.SaleBuyout,
				Items: []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 11}}},
			wantStock: true,
		},
		{
			name: "same cell summed across lines",
			draft: domain.TransactionDraft{DealerID: "d-1", SaleType: domain.SaleBuyout,
				Items: []domain.DraftItem{
					{ProductID: "p-2", WarehouseID: "wh-a", Quantity: 1},
					{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 6},
					{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 5},
				}},
			wantStock: true,
		},
		{
			name: "unknown product has no stock",
			draft: domain.TransactionDraft{DealerID: "d-1", SaleType: domain.SaleConsignmentTransfer,
				Items: []domain.DraftItem{{ProductID: "p-x", WarehouseID: "wh-a", Quantity: 1}}},
			wantStock: true,
		},
		{
			name: "unknown dealer",
			draft: domain.TransactionDraft{DealerID: "d-404", SaleType: domain.SaleBuyout,
				Items: []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 1}}},
			wantValid: true,
		},
		{
			name:      "missing dealer",
			draft:     domain.TransactionDraft{SaleType: domain.SaleBuyout, Items: []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 1}}},
			wantValid: true,
		},
		{
			name:      "no items",
			draft:     domain.TransactionDraft{DealerID: "d-1", SaleType: domain.SaleBuyout},
			wantValid: true,
		},
		{
			name: "zero quantity",
			draft: domain.TransactionDraft{DealerID: "d-1", SaleType: domain.SaleBuyout,
				Items: []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 0}}},
			wantValid: true,
		},
		{
			name: "missing warehouse",
			draft: domain.TransactionDraft{DealerID: "d-1", SaleType: domain.SaleBuyout,
				Items: []domain.DraftItem{{ProductID: "p-1", Quantity: 1}}},
			wantValid: true,
		},
		{
			name: "unknown sale type",
			draft: domain.TransactionDraft{DealerID: "d-1", SaleType: "Gift",
				Items: []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 1}}},
			wantValid: true,
		},
		{
			name: "negative shipping",
			draft: domain.TransactionDraft{DealerID: "d-1", SaleType: domain.SaleBuyout, ShippingCost: dec(-1),
				Items: []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 1}}},
			wantValid: true,
		},
		{
			name: "negative price",
			draft: domain.TransactionDraft{DealerID: "d-1", SaleType: domain.SaleBuyout,
				Items: []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 1, PriceAtSale: decPtr(-5)}}},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, s := newFixture(t)
			before := s.Snapshot()

			_, err := e.Submit(context.Background(), tt.draft)
			require.Error(t, err)
			assert.Equal(t, tt.wantStock, domain.IsInsufficientStockError(err), "stock error: %v", err)
			assert.Equal(t, tt.wantValid, domain.IsValidationError(err), "validation error: %v", err)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestInsufficientStockReportsAvailable(t *testing.T) {
	e, _ := newFixture(t)
	_, err := e.Submit(context.Background(), domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleBuyout,
		Items:    []domain.DraftItem{{ProductID: "p-2", WarehouseID: "wh-a", Quantity: 9}},
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Gadget", stockErr.ProductName)
	assert.Equal(t, 9, stockErr.Requested)
	assert.Equal(t, 6, stockErr.Available)
}

func TestValidationErrorNamesField(t *testing.T) {
	e, _ := newFixture(t)
	_, err := e.Submit(context.Background(), domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleBuyout,
		Items:    []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: -2}},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items[0].quantity", verr.Field)
}

func TestSubmitCancelledContext(t *testing.T) {
	e, s := newFixture(t)
	before := s.Snapshot()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Submit(ctx, domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleBuyout,
		Items:    []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 1}},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, s.Snapshot())
}

func TestSubmitRecordsMetrics(t *testing.T) {
	e, _ := newFixture(t)
	m := metrics.New("test")
	e.metrics = m
	ctx := context.Background()

	_, err := e.Submit(ctx, domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleBuyout,
		Items:    []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = e.Submit(ctx, domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleBuyout,
		Items:    []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 99}},
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsApplied.WithLabelValues("Buyout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnitsMoved.WithLabelValues("Buyout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsRejected.WithLabelValues("insufficient_stock")))
}

func TestPriceSnapshotSurvivesCatalogChange(t *testing.T) {
	e, _ := newFixture(t)
	ctx := context.Background()
	tx, err := e.Submit(ctx, domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleBuyout,
		Items:    []domain.DraftItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, e.UpdateProduct(ctx, domain.Product{ID: "p-1", SKU: "SKU-1", Barcode: "111", Name: "Widget", PriceRetail: dec(999)}))
	require.NoError(t, e.UpdateDealer(ctx, domain.Dealer{ID: "d-1", Name: "Renamed"}))

	got, err := e.Transaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, dec(100).Equal(got.Items[0].PriceAtSale))
	assert.Equal(t, "Dealer One", got.DealerName)
}

func TestUpdateNote(t *testing.T) {
	e, _ := newFixture(t)
	ctx := context.Background()
	tx, err := e.Submit(ctx, domain.TransactionDraft{
		DealerID: "d-1",
		SaleType: domain.SaleBuyout,
		Note:     "first",
		Items:    []domain.DraftItem{{ProductID: "p-2", WarehouseID: "wh-a", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, e.UpdateNote(ctx, tx.ID, "second"))
	got, err := e.Transaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Note)
	assert.True(t, tx.TotalValue.Equal(got.TotalValue))

	assert.True(t, domain.IsNotFoundError(e.UpdateNote(ctx, "tx-missing", "x")))
}

func TestCorrectInventory(t *testing.T) {
	e, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, e.CorrectInventory(ctx, "p-1", "wh-a", 42))
	require.NoError(t, e.CorrectInventory(ctx, "p-9", "wh-b", 3))
	q, _ := e.Quantity(ctx, "p-1", "wh-a")
	assert.Equal(t, 42, q)
	q, _ = e.Quantity(ctx, "p-9", "wh-b")
	assert.Equal(t, 3, q)

	assert.True(t, domain.IsValidationError(e.CorrectInventory(ctx, "", "wh-a", 1)))
}

func TestDeltas(t *testing.T) {
	items := []domain.TransactionItem{
		{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 2, TargetWarehouseID: "wh-dealer-d-1"},
	}

	got, err := Deltas(domain.SaleBuyout, items)
	require.NoError(t, err)
	assert.Equal(t, []Delta{{"p-1", "wh-a", -2}}, got)

	got, err = Deltas(domain.SaleConsignmentTransfer, items)
	require.NoError(t, err)
	assert.Equal(t, []Delta{{"p-1", "wh-a", -2}, {"p-1", "wh-dealer-d-1", 2}}, got)

	_, err = Deltas(domain.SaleType("Gift"), items)
	assert.True(t, domain.IsValidationError(err))

	_, err = Deltas(domain.SaleConsignmentTransfer, []domain.TransactionItem{{ProductID: "p-1", WarehouseID: "wh-a", Quantity: 1}})
	assert.True(t, domain.IsValidationError(err))
}
