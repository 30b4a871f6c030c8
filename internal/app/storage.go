// Package app assembles the sales services over a storage driver.
package app

import (
	"context"
	"fmt"

	corenum "salesledger/internal/core/numerator"
	"salesledger/internal/core/tx"
	"salesledger/internal/domain/audit"
	"salesledger/internal/domain/documents/credit_note"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/documents/order"
	"salesledger/internal/domain/documents/quote"
	"salesledger/internal/domain/documents/receipt"
	tailoring "salesledger/internal/domain/documents/tailoring_order"
	"salesledger/internal/domain/refdata"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/domain/registers/stock"
	"salesledger/internal/infrastructure/cache"
	"salesledger/internal/infrastructure/numerator"
	"salesledger/internal/infrastructure/storage/memory"
	"salesledger/internal/infrastructure/storage/postgres"
	"salesledger/internal/infrastructure/storage/postgres/catalog_repo"
	"salesledger/internal/infrastructure/storage/postgres/document_repo"
	"salesledger/internal/infrastructure/storage/postgres/register_repo"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Storage is every repository the services need, from one driver.
type Storage struct {
	Tx tx.Manager

	Quotes          quote.Repository
	Orders          order.Repository
	Invoices        invoice.Repository
	CreditNotes     credit_note.Repository
	Receipts        receipt.Repository
	TailoringOrders tailoring.Repository

	Journal   journal.Repository
	Stock     stock.Repository
	Audit     audit.Repository
	Numbering corenum.Store
	RefData   refdata.Gateway

	// Ping is nil when there is nothing to check.
	Ping Pinger
	// Pool is nil for the memory driver.
	Pool  *postgres.Pool
	close func()
}

// Close releases the driver's resources.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewMemoryStorage builds the in-memory driver, seeded with datasets.
func NewMemoryStorage(datasets ...*Dataset) *Storage {
	refData := memory.NewRefData()
	numbering := memory.NewNumberingStore()
	stockRepo := memory.NewStockRepo()

	for _, ds := range datasets {
		refData.PutOrganization(ds.Organization)
		for _, a := range ds.Accounts {
			refData.PutAccount(a)
		}
		for _, c := range ds.Counterparties {
			refData.PutCounterparty(c)
		}
		for _, it := range ds.Items {
			refData.PutItem(it)
		}
		numbering.Put(ds.Numbering)
		// outside a transaction the insert cannot fail
		_ = stockRepo.CreateMovements(context.Background(), ds.OpeningStock)
	}

	return &Storage{
		Tx:              memory.NewTxManager(),
		Quotes:          memory.NewDocumentStore[*quote.Quote]("quote"),
		Orders:          memory.NewDocumentStore[*order.Order]("order"),
		Invoices:        memory.NewDocumentStore[*invoice.Invoice]("invoice"),
		CreditNotes:     memory.NewDocumentStore[*credit_note.CreditNote]("credit note"),
		Receipts:        memory.NewDocumentStore[*receipt.Receipt]("receipt"),
		TailoringOrders: memory.NewDocumentStore[*tailoring.TailoringOrder]("tailoring order"),
		Journal:         memory.NewJournalRepo(),
		Stock:           stockRepo,
		Audit:           memory.NewAuditRepo(),
		Numbering:       numbering,
		RefData:         refData,
	}
}

// NewPostgresStorage connects to PostgreSQL and builds the repositories.
func NewPostgresStorage(ctx context.Context, cfg postgres.PoolConfig) (*Storage, error) {
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	txm := postgres.NewTxManager(pool)

	refData := cache.NewRefData(catalog_repo.NewRefDataRepo(txm), pool.Pool)
	if err := refData.Start(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("start refdata cache: %w", err)
	}

	return &Storage{
		Tx:              txm,
		Quotes:          document_repo.NewQuoteRepo(txm),
		Orders:          document_repo.NewOrderRepo(txm),
		Invoices:        document_repo.NewInvoiceRepo(txm),
		CreditNotes:     document_repo.NewCreditNoteRepo(txm),
		Receipts:        document_repo.NewReceiptRepo(txm),
		TailoringOrders: document_repo.NewTailoringOrderRepo(txm),
		Journal:         register_repo.NewJournalRepo(txm),
		Stock:           register_repo.NewStockRepo(txm),
		Audit:           postgres.NewAuditRepo(txm),
		Numbering:       numerator.NewStore(txm),
		RefData:         refData,
		Ping:            pool,
		Pool:            pool,
		close: func() {
			refData.Stop()
			pool.Close()
		},
	}, nil
}
