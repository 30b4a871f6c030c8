// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"salesledger/internal/app"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/credit_note"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/documents/order"
	"salesledger/internal/domain/documents/quote"
	"salesledger/internal/domain/documents/receipt"
	"salesledger/internal/infrastructure/http/v1/dto"
	"salesledger/internal/infrastructure/http/v1/handlers"
	"salesledger/internal/infrastructure/http/v1/middleware"
	"salesledger/internal/infrastructure/observability"
	"salesledger/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Services *app.Services

	// Logger for request logging
	Logger *logger.Logger

	// Validator turns bearer tokens into callers
	Validator middleware.TokenValidator

	// Metrics records request metrics and serves /metrics; optional
	Metrics *observability.Metrics

	// Health are the dependencies the readiness probe checks
	Health map[string]handlers.Pinger

	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(cfg.Metrics.Middleware())
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.Health)
	health := router.Group("/health")
	{
		health.GET("", healthHandler.Live)
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Validator))
	registerDocumentRoutes(api, cfg.Services)
	registerLedgerRoutes(api, cfg.Services)

	return router
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, s *app.Services) {
	base := handlers.NewBaseHandler()

	RegisterDocumentRoutes(rg.Group("/quotes"),
		handlers.NewBaseDocumentHandler[*quote.Quote, quote.Input, dto.QuoteRequest](base, handlers.QuoteService{Service: s.Quotes}))
	RegisterDocumentRoutes(rg.Group("/orders"),
		handlers.NewBaseDocumentHandler[*order.Order, documents.SalesInput, dto.SalesRequest](base, s.Orders))
	RegisterDocumentRoutes(rg.Group("/invoices"),
		handlers.NewBaseDocumentHandler[*invoice.Invoice, documents.SalesInput, dto.SalesRequest](base, s.Invoices))
	RegisterDocumentRoutes(rg.Group("/credit-notes"),
		handlers.NewBaseDocumentHandler[*credit_note.CreditNote, credit_note.Input, dto.CreditNoteRequest](base, s.CreditNotes))
	RegisterDocumentRoutes(rg.Group("/receipts"),
		handlers.NewBaseDocumentHandler[*receipt.Receipt, receipt.Input, dto.ReceiptRequest](base, s.Receipts))

	tailoring := handlers.NewTailoringOrderHandler(base, s.TailoringOrders)
	group := rg.Group("/tailoring-orders")
	RegisterDocumentRoutes(group, tailoring)
	group.POST("/:id/status", tailoring.SetStatus)
}

// registerLedgerRoutes registers read endpoints of the ledgers.
func registerLedgerRoutes(rg *gin.RouterGroup, s *app.Services) {
	ledger := handlers.NewLedgerHandler(handlers.NewBaseHandler(), s.Stock, s.Journal)
	rg.GET("/stock", ledger.GetStock)
	rg.GET("/journal/:operationId", ledger.GetJournal)
}
