package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"stockledger/analysis"
	"stockledger/domain"
	"stockledger/engine"
	"stockledger/report"
)

// Handler serves the REST surface over one engine and reporter.
type Handler struct {
	engine   *engine.Engine
	reporter *report.Reporter
	analysis *analysis.Client
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(e *engine.Engine, r *report.Reporter, a *analysis.Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: e, reporter: r, analysis: a, logger: logger, now: time.Now}
}

func (h *Handler) fail(c *gin.Context, err error) {
	writeError(c, h.logger, err)
}

// ---- catalog ----

func (h *Handler) ListProducts(c *gin.Context) {
	out, err := h.engine.Products(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p, err := h.engine.AddProduct(c.Request.Context(), req.product())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var req productRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.ID = c.Param("id")
	p := req.product()
	if err := h.engine.UpdateProduct(c.Request.Context(), p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ---- dealers and warehouses ----

func (h *Handler) ListDealers(c *gin.Context) {
	out, err := h.engine.Dealers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateDealer(c *gin.Context) {
	var req dealerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	d, err := h.engine.AddDealer(c.Request.Context(), req.dealer())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDealer(c *gin.Context) {
	var req dealerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	req.ID = c.Param("id")
	d := req.dealer()
	if err := h.engine.UpdateDealer(c.Request.Context(), d); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDealer(c *gin.Context) {
	if err := h.engine.RemoveDealer(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListWarehouses(c *gin.Context) {
	out, err := h.engine.Warehouses(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateWarehouse(c *gin.Context) {
	var req warehouseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	w, err := h.engine.AddWarehouse(c.Request.Context(), domain.Warehouse{
		ID:       req.ID,
		Name:     req.Name,
		Location: req.Location,
		Type:     domain.WarehouseType(req.Type),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// ---- inventory ----

func (h *Handler) ListInventory(c *gin.Context) {
	out, err := h.engine.Inventory(c.Request.Context(), c.Query("warehouseId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CorrectInventory(c *gin.Context) {
	var req correctionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.engine.CorrectInventory(c.Request.Context(), req.ProductID, req.WarehouseID, req.Quantity); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.InventoryRecord{ProductID: req.ProductID, WarehouseID: req.WarehouseID, Quantity: req.Quantity})
}

// ImportInventory accepts either a JSON {"rows": [...]} body or a
// tab-separated sheet sent as text/plain or text/tab-separated-values.
func (h *Handler) ImportInventory(c *gin.Context) {
	var rows []engine.ImportRow
	ct := c.ContentType()
	if ct == "text/plain" || ct == "text/tab-separated-values" {
		var err error
		rows, err = engine.ParseImportRows(c.Request.Body, c.Query("warehouseId"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, newAPIError(err.Error()))
			return
		}
	} else {
		var req importRequest
		if !bindAndValidate(c, &req) {
			return
		}
		rows = req.Rows
	}
	res, err := h.engine.BatchImport(c.Request.Context(), rows)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---- transactions ----

func (h *Handler) ListTransactions(c *gin.Context) {
	out, err := h.reporter.History(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	tx, err := h.engine.Transaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) SubmitTransaction(c *gin.Context) {
	var draft domain.TransactionDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, newAPIError("invalid JSON: "+err.Error()))
		return
	}
	tx, err := h.engine.Submit(c.Request.Context(), draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *Handler) UpdateNote(c *gin.Context) {
	var req noteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ctx := c.Request.Context()
	if err := h.engine.UpdateNote(ctx, c.Param("id"), req.Note); err != nil {
		h.fail(c, err)
		return
	}
	tx, err := h.engine.Transaction(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) Shipment(c *gin.Context) {
	s, err := h.reporter.Shipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Query("format") != "csv" {
		c.JSON(http.StatusOK, s)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteShipmentCSV(&buf, s); err != nil {
		h.fail(c, err)
		return
	}
	attachment(c, fmt.Sprintf("shipment_%s_%s.csv", s.Transaction.Date, s.Transaction.ShortID()))
	c.Data(http.StatusOK, contentTypeCSV, buf.Bytes())
}

// LookupItem resolves a scanned code into a one-unit draft line.
func (h *Handler) LookupItem(c *gin.Context) {
	saleType := domain.SaleBuyout
	if raw := c.Query("saleType"); raw != "" {
		st, err := domain.ParseSaleType(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		saleType = st
	}
	item, err := h.engine.ItemFromCode(c.Request.Context(), c.Query("code"), saleType, c.Query("dealerId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ---- reports ----

func (h *Handler) Statement(c *gin.Context) {
	start, end, err := dateRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	stmt, err := h.reporter.Statement(c.Request.Context(), c.Query("dealerId"), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	name := fmt.Sprintf("statement_%s_%s_%s", safeName(stmt.Dealer.Name), start, end)
	switch c.Query("format") {
	case "csv":
		if err := report.WriteStatementCSV(&buf, stmt, h.reporter.TaxRate()); err != nil {
			h.fail(c, err)
			return
		}
		attachment(c, name+".csv")
		c.Data(http.StatusOK, contentTypeCSV, buf.Bytes())
	case "xlsx":
		if err := report.WriteStatementXLSX(&buf, stmt, h.reporter.TaxRate()); err != nil {
			h.fail(c, err)
			return
		}
		attachment(c, name+".xlsx")
		c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
	default:
		c.JSON(http.StatusOK, stmt)
	}
}

func (h *Handler) Settlement(c *gin.Context) {
	start, end, err := dateRange(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	exp, err := h.reporter.SettlementExport(c.Request.Context(), c.Query("dealerId"), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	name := fmt.Sprintf("settlement_%s_%s_%s", safeName(exp.Dealer.Name), start, end)
	switch c.Query("format") {
	case "csv":
		if err := report.WriteSettlementCSV(&buf, exp); err != nil {
			h.fail(c, err)
			return
		}
		attachment(c, name+".csv")
		c.Data(http.StatusOK, contentTypeCSV, buf.Bytes())
	case "xlsx":
		if err := report.WriteSettlementXLSX(&buf, exp); err != nil {
			h.fail(c, err)
			return
		}
		attachment(c, name+".xlsx")
		c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
	default:
		c.JSON(http.StatusOK, exp)
	}
}

func (h *Handler) ConsignmentStock(c *gin.Context) {
	cs, err := h.reporter.ConsignmentStock(c.Request.Context(), c.Param("dealerId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func (h *Handler) StockHealth(c *gin.Context) {
	health, err := h.reporter.StockHealth(c.Request.Context(), h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, health)
}

// Analyze never fails: service errors come back as the fallback text.
func (h *Handler) Analyze(c *gin.Context) {
	if h.analysis == nil {
		c.JSON(http.StatusOK, analysisResponse{Text: analysis.FallbackMessage})
		return
	}
	snap, err := analysis.TakeSnapshot(c.Request.Context(), h.engine.Store())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysisResponse{Text: h.analysis.Analyze(c.Request.Context(), snap)})
}

func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"ok": true}
	if h.analysis != nil {
		body["analysis"] = h.analysis.State().String()
	}
	c.JSON(http.StatusOK, body)
}

var unsafeFileChars = strings.NewReplacer("/", "_", "\\", "_", "\"", "", " ", "_")

func safeName(s string) string {
	return unsafeFileChars.Replace(s)
}
