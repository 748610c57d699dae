// Package api exposes the ledger over HTTP with gin.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"stockledger/metrics"
)

// NewRouter wires middleware and routes. m may be nil, in which case
// /metrics is not mounted.
func NewRouter(h *Handler, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.Use(Recovery(logger))
	if m != nil {
		r.Use(Metrics(m))
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/products", h.ListProducts)
		v1.POST("/products", h.CreateProduct)
		v1.PUT("/products/:id", h.UpdateProduct)

		v1.GET("/dealers", h.ListDealers)
		v1.POST("/dealers", h.CreateDealer)
		v1.PUT("/dealers/:id", h.UpdateDealer)
		v1.DELETE("/dealers/:id", h.DeleteDealer)

		v1.GET("/warehouses", h.ListWarehouses)
		v1.POST("/warehouses", h.CreateWarehouse)

		v1.GET("/inventory", h.ListInventory)
		v1.PUT("/inventory", h.CorrectInventory)
		v1.POST("/inventory/import", h.ImportInventory)

		v1.GET("/transactions", h.ListTransactions)
		v1.POST("/transactions", h.SubmitTransaction)
		v1.GET("/transactions/:id", h.GetTransaction)
		v1.PATCH("/transactions/:id/note", h.UpdateNote)
		v1.GET("/transactions/:id/shipment", h.Shipment)

		v1.GET("/items/lookup", h.LookupItem)

		reports := v1.Group("/reports")
		reports.GET("/statement", h.Statement)
		reports.GET("/settlement", h.Settlement)
		reports.GET("/consignment/:dealerId", h.ConsignmentStock)
		reports.GET("/stock-health", h.StockHealth)

		v1.POST("/analysis", h.Analyze)
	}
	return r
}
