package posting

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"salesledger/internal/core/tx"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/domain/registers/stock"
	"salesledger/pkg/logger"
)

var tracer = otel.Tracer("salesledger/posting")

// Recorder receives counts of written ledger rows. Optional.
type Recorder interface {
	LedgerRowsPosted(ledger string, docType string, rows int)
}

// Options tune one posting.
type Options struct {
	// AllowNegativeStock skips the availability check.
	AllowNegativeStock bool
}

// Engine runs the write chain of a document: save, reverse old rows, post new
// rows. Everything happens in one transaction.
type Engine struct {
	txManager tx.Manager
	journal   *journal.Service
	stock     *stock.Service
	recorder  Recorder
}

// NewEngine creates a posting engine.
func NewEngine(txManager tx.Manager, journalService *journal.Service, stockService *stock.Service) *Engine {
	return &Engine{
		txManager: txManager,
		journal:   journalService,
		stock:     stockService,
	}
}

// WithRecorder sets the recorder for posted row counts.
func (e *Engine) WithRecorder(r Recorder) *Engine {
	e.recorder = r
	return e
}

// TxManager returns the transaction manager shared with the orchestrators.
func (e *Engine) TxManager() tx.Manager {
	return e.txManager
}

// Post saves doc through save (may be nil), then replaces its journal and
// stock rows with freshly generated ones.
func (e *Engine) Post(ctx context.Context, doc Postable, opts Options, save func(ctx context.Context) error) (*MovementSet, error) {
	ctx, span := tracer.Start(ctx, "posting.Post",
		trace.WithAttributes(
			attribute.String("document.type", string(doc.GetDocumentType())),
			attribute.String("document.id", doc.GetID().String()),
		))
	defer span.End()

	var movements *MovementSet
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if save != nil {
			if err := save(ctx); err != nil {
				return err
			}
		}

		var err error
		movements, err = doc.GenerateMovements(ctx)
		if err != nil {
			return fmt.Errorf("generate movements: %w", err)
		}
		if movements == nil {
			movements = NewMovementSet()
		}

		orgID, opID := doc.GetOrganizationID(), doc.GetID()
		if err := e.journal.Reverse(ctx, orgID, opID); err != nil {
			return err
		}
		if err := e.stock.ReverseMovements(ctx, orgID, opID); err != nil {
			return err
		}

		if !opts.AllowNegativeStock && len(movements.Stock) > 0 {
			if err := e.stock.CheckAvailability(ctx, orgID, movements.Stock); err != nil {
				return err
			}
		}

		if err := e.journal.Post(ctx, opID, movements.Journal); err != nil {
			return err
		}
		return e.stock.PostMovements(ctx, opID, movements.Stock)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if e.recorder != nil {
		docType := string(doc.GetDocumentType())
		e.recorder.LedgerRowsPosted("journal", docType, len(movements.Journal))
		e.recorder.LedgerRowsPosted("stock", docType, len(movements.Stock))
	}

	logger.Info(ctx, "document posted",
		"document_type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"number", doc.GetNumber(),
		"journal_rows", len(movements.Journal),
		"stock_rows", len(movements.Stock),
	)
	return movements, nil
}

// Unpost removes every ledger row of doc, then runs remove (may be nil).
func (e *Engine) Unpost(ctx context.Context, doc Postable, remove func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "posting.Unpost",
		trace.WithAttributes(
			attribute.String("document.type", string(doc.GetDocumentType())),
			attribute.String("document.id", doc.GetID().String()),
		))
	defer span.End()

	return e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		orgID, opID := doc.GetOrganizationID(), doc.GetID()
		if err := e.journal.Reverse(ctx, orgID, opID); err != nil {
			return err
		}
		if err := e.stock.ReverseMovements(ctx, orgID, opID); err != nil {
			return err
		}
		if remove != nil {
			return remove(ctx)
		}
		return nil
	})
}
