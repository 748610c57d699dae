package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"stockledger/domain"
	"stockledger/engine"
	"stockledger/store"
)

// capture stdout during cobra execution
func captureOutput(f func() error) (string, error) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), err
}

// reset cobra + global state between tests
func resetCLI() {
	rootCmd.SetArgs(nil)
	resetFlags(rootCmd)
	ledgerStore = nil
	txEngine = nil
	reporter = nil
	appMetrics = nil
}

// resetFlags puts every flag back to its default; cobra keeps parsed values
// on the command tree between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// useSeededStore injects an in-memory store loaded with the demo data.
func useSeededStore(t *testing.T) *store.InMemoryStore {
	t.Helper()
	resetCLI()
	st := domain.NewState()
	if err := store.Seed(st); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := store.NewInMemoryStoreFrom(st)
	ledgerStore = s
	return s
}

func run(args ...string) (string, error) {
	return captureOutput(func() error {
		rootCmd.SetArgs(args)
		return rootCmd.Execute()
	})
}

func TestProductAddUpdateList(t *testing.T) {
	defer resetCLI()
	useSeededStore(t)

	out, err := run("product", "add", "--sku", "NEW-1", "--name", "Widget", "--retail", "10", "--min-stock", "3")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	var created domain.Product
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("invalid add output: %v", err)
	}
	if !strings.HasPrefix(created.ID, "p-") {
		t.Fatalf("expected generated id, got %q", created.ID)
	}

	out, err = run("product", "update", created.ID, "--retail", "12.5")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	var updated domain.Product
	_ = json.Unmarshal([]byte(out), &updated)
	if updated.PriceRetail.String() != "12.5" || updated.Name != "Widget" || updated.MinStock != 3 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	out, err = run("product", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "NEW-1 | Widget | 12.5 | 0") {
		t.Fatalf("list missing new product:\n%s", out)
	}
	if !strings.Contains(out, "p-005 | ACC-MOU-WL | Wireless Gaming Mouse | 2400 | 200") {
		t.Fatalf("list missing seeded product:\n%s", out)
	}
}

func TestDealerLifecycleCommands(t *testing.T) {
	defer resetCLI()
	useSeededStore(t)

	if _, err := run("dealer", "add", "--id", "d-9", "--name", "Acme"); err != nil {
		t.Fatalf("dealer add failed: %v", err)
	}
	if _, err := run("dealer", "update", "d-9", "--name", "Acme Two"); err != nil {
		t.Fatalf("dealer update failed: %v", err)
	}
	out, err := run("warehouse", "list")
	if err != nil {
		t.Fatalf("warehouse list failed: %v", err)
	}
	if !strings.Contains(out, "wh-dealer-d-9 | Acme Two (Consignment)") {
		t.Fatalf("dealer warehouse not renamed:\n%s", out)
	}
	out, err = run("dealer", "remove", "d-9")
	if err != nil || strings.TrimSpace(out) != "removed" {
		t.Fatalf("dealer remove failed: %v %q", err, out)
	}
	if _, err := run("dealer", "update", "d-9", "--name", "Ghost"); !domain.IsNotFoundError(err) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
}

func TestSubmitFromFlagsMovesStock(t *testing.T) {
	defer resetCLI()
	s := useSeededStore(t)

	out, err := run("tx", "submit",
		"--dealer", "d-002",
		"--type", "ConsignmentTransfer",
		"--item", "p-005:wh-main:20",
		"--date", "2023-10-30",
		"--shipping-method", "Courier",
		"--shipping-cost", "150",
	)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	var tx domain.Transaction
	if err := json.Unmarshal([]byte(out), &tx); err != nil {
		t.Fatalf("invalid submit output: %v", err)
	}
	if tx.TotalValue.String() != "48000" || tx.DealerName != "Island 3C Retail" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	snap := s.Snapshot()
	if got := snap.Inventory.Get("p-005", "wh-main"); got != 180 {
		t.Fatalf("source qty = %d, want 180", got)
	}
	out, err = run("stock", "get", "p-005", "wh-dealer-d-002")
	if err != nil || strings.TrimSpace(out) != "20" {
		t.Fatalf("stock get = %q, %v", out, err)
	}
}

func TestSubmitFromFile(t *testing.T) {
	defer resetCLI()
	s := useSeededStore(t)

	path := filepath.Join(t.TempDir(), "draft.json")
	draft := `{"dealerId":"d-001","saleType":"Buyout","items":[{"productId":"p-004","warehouseId":"wh-main","quantity":2,"priceAtSale":7000}]}`
	if err := os.WriteFile(path, []byte(draft), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run("tx", "submit", "--file", path)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	var tx domain.Transaction
	_ = json.Unmarshal([]byte(out), &tx)
	if tx.TotalValue.String() != "14000" {
		t.Fatalf("total = %s, want 14000", tx.TotalValue)
	}
	if got := s.Snapshot().Inventory.Get("p-004", "wh-main"); got != 18 {
		t.Fatalf("qty = %d, want 18", got)
	}
}

func TestStockImportAndCorrection(t *testing.T) {
	defer resetCLI()
	s := useSeededStore(t)

	path := filepath.Join(t.TempDir(), "stock.tsv")
	sheet := "FURN-DESK-PRO\tStanding Desk Pro\t3\nZZZ-999\tGhost\t1\n"
	if err := os.WriteFile(path, []byte(sheet), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run("stock", "import", "--file", path, "--warehouse", "wh-main")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	var res engine.ImportResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid import output: %v", err)
	}
	if res.UpdatedCount != 1 || len(res.Misses) != 1 || res.Misses[0] != "ZZZ-999" {
		t.Fatalf("unexpected import result: %+v", res)
	}
	if got := s.Snapshot().Inventory.Get("p-003", "wh-main"); got != 8 {
		t.Fatalf("qty = %d, want 8", got)
	}

	if _, err := run("stock", "set", "p-003", "wh-main", "1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	out, err = run("stock", "list", "--warehouse", "wh-main")
	if err != nil || !strings.Contains(out, "p-003 | wh-main | 1") {
		t.Fatalf("stock list = %q, %v", out, err)
	}
}

func TestReportCommands(t *testing.T) {
	defer resetCLI()
	useSeededStore(t)

	out, err := run("report", "statement", "--dealer", "d-001", "--start", "2023-10-01", "--end", "2023-10-31", "--format", "csv")
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	if !strings.Contains(out, "Amount Due,52500") {
		t.Fatalf("statement csv missing total:\n%s", out)
	}

	xlsx := filepath.Join(t.TempDir(), "settlement.xlsx")
	if _, err := run("report", "settlement", "--dealer", "d-001", "--start", "2023-10-01", "--end", "2023-10-31", "--format", "xlsx", "--out", xlsx); err != nil {
		t.Fatalf("settlement xlsx failed: %v", err)
	}
	b, err := os.ReadFile(xlsx)
	if err != nil || !bytes.HasPrefix(b, []byte("PK")) {
		t.Fatalf("settlement xlsx not written: %v", err)
	}

	out, err = run("report", "consignment", "d-001")
	if err != nil {
		t.Fatalf("consignment failed: %v", err)
	}
	var cs domain.ConsignmentStock
	_ = json.Unmarshal([]byte(out), &cs)
	if cs.WarehouseID != "wh-dealer-d-001" || len(cs.Lines) != 2 {
		t.Fatalf("unexpected consignment stock: %+v", cs)
	}

	out, err = run("report", "shipment", "tx-1001", "--format", "csv")
	if err != nil || !strings.Contains(out, "2023-10-25,RTX 4090 Graphics Card,5,first stocking") {
		t.Fatalf("shipment csv = %q, %v", out, err)
	}
}

func TestScanAndNote(t *testing.T) {
	defer resetCLI()
	useSeededStore(t)

	out, err := run("tx", "scan", "4719072964881", "--type", "ConsignmentSettlement", "--dealer", "d-001")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	var item domain.DraftItem
	_ = json.Unmarshal([]byte(out), &item)
	if item.ProductID != "p-001" || item.WarehouseID != "wh-dealer-d-001" || item.Quantity != 1 {
		t.Fatalf("unexpected draft item: %+v", item)
	}

	out, err = run("tx", "note", "tx-1001", "hello", "world")
	if err != nil {
		t.Fatalf("note failed: %v", err)
	}
	var tx domain.Transaction
	_ = json.Unmarshal([]byte(out), &tx)
	if tx.Note != "hello world" {
		t.Fatalf("note = %q", tx.Note)
	}

	out, err = run("tx", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "2023-10-28 | tx-1002") {
		t.Fatalf("history not newest first:\n%s", out)
	}
}

func TestAnalyzeWithoutEndpointFallsBack(t *testing.T) {
	defer resetCLI()
	useSeededStore(t)

	out, err := run("analyze")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("expected fallback text")
	}
}

func TestParseItem(t *testing.T) {
	it, err := parseItem("p-1:wh-a:3:99.5")
	if err != nil {
		t.Fatal(err)
	}
	if it.ProductID != "p-1" || it.WarehouseID != "wh-a" || it.Quantity != 3 || it.PriceAtSale.String() != "99.5" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it, _ := parseItem("p-1:wh-a:3"); it.PriceAtSale != nil {
		t.Fatalf("expected nil price when omitted")
	}
	for _, bad := range []string{"p-1", "p-1:wh-a:x", "p-1:wh-a:1:abc", "a:b:1:2:3"} {
		if _, err := parseItem(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
