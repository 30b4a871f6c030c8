package app

import (
	"fmt"

	"salesledger/internal/domain/audit"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/documents/credit_note"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/documents/order"
	"salesledger/internal/domain/documents/quote"
	"salesledger/internal/domain/documents/receipt"
	tailoring "salesledger/internal/domain/documents/tailoring_order"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/domain/registers/stock"
	"salesledger/internal/infrastructure/lock"
	"salesledger/internal/infrastructure/observability"
	numbering "salesledger/pkg/numerator"
)

// Services are the orchestrators and ledger readers of one deployment.
type Services struct {
	Quotes          *quote.Service
	Orders          *order.Service
	Invoices        *invoice.Service
	CreditNotes     *credit_note.Service
	Receipts        *receipt.Service
	TailoringOrders *tailoring.Service

	Journal *journal.Service
	Stock   *stock.Service
}

// NewServices wires the orchestrators over st. Number allocation is
// serialized per organization by locker. metrics may be nil.
func NewServices(st *Storage, locker lock.Locker, metrics *observability.Metrics) (*Services, error) {
	trail, err := audit.NewTrail(st.Audit)
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}

	journalService := journal.NewService(st.Journal)
	stockService := stock.NewService(st.Stock)

	engine := posting.NewEngine(st.Tx, journalService, stockService)
	numbers := numbering.New(st.Numbering, locker)
	deps := documents.Deps{
		Engine:  engine,
		Numbers: numbers,
		RefData: st.RefData,
		Trail:   trail,
	}
	if metrics != nil {
		engine.WithRecorder(metrics)
		numbers.WithRecorder(metrics)
		deps.Recorder = metrics
	}

	reconciler := invoice.NewReconciler(st.Invoices)
	return &Services{
		Quotes:          quote.NewService(st.Quotes, deps),
		Orders:          order.NewService(st.Orders, deps),
		Invoices:        invoice.NewService(st.Invoices, deps),
		CreditNotes:     credit_note.NewService(st.CreditNotes, st.Invoices, reconciler, deps),
		Receipts:        receipt.NewService(st.Receipts, st.Invoices, reconciler, deps),
		TailoringOrders: tailoring.NewService(st.TailoringOrders, deps),
		Journal:         journalService,
		Stock:           stockService,
	}, nil
}
