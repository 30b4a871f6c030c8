package document_repo

import (
	"salesledger/internal/core/entity"
	"salesledger/internal/domain/documents/credit_note"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/documents/order"
	"salesledger/internal/domain/documents/quote"
	"salesledger/internal/domain/documents/receipt"
	"salesledger/internal/domain/documents/tailoring_order"
	"salesledger/internal/infrastructure/storage/postgres"
)

// NewQuoteRepo creates the quote repository.
func NewQuoteRepo(txm *postgres.TxManager) *Repo[*quote.Quote] {
	return NewRepo(txm, entity.DocumentTypeQuote, func() *quote.Quote { return &quote.Quote{} })
}

// NewOrderRepo creates the order repository.
func NewOrderRepo(txm *postgres.TxManager) *Repo[*order.Order] {
	return NewRepo(txm, entity.DocumentTypeOrder, func() *order.Order { return &order.Order{} })
}

// NewInvoiceRepo creates the invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *Repo[*invoice.Invoice] {
	return NewRepo(txm, entity.DocumentTypeInvoice, func() *invoice.Invoice { return &invoice.Invoice{} })
}

// NewCreditNoteRepo creates the credit note repository.
func NewCreditNoteRepo(txm *postgres.TxManager) *Repo[*credit_note.CreditNote] {
	return NewRepo(txm, entity.DocumentTypeCreditNote, func() *credit_note.CreditNote { return &credit_note.CreditNote{} })
}

// NewReceiptRepo creates the receipt repository.
func NewReceiptRepo(txm *postgres.TxManager) *Repo[*receipt.Receipt] {
	return NewRepo(txm, entity.DocumentTypeReceipt, func() *receipt.Receipt { return &receipt.Receipt{} })
}

// NewTailoringOrderRepo creates the tailoring order repository.
func NewTailoringOrderRepo(txm *postgres.TxManager) *Repo[*tailoring_order.TailoringOrder] {
	return NewRepo(txm, entity.DocumentTypeTailoringOrder, func() *tailoring_order.TailoringOrder {
		return &tailoring_order.TailoringOrder{}
	})
}

var (
	_ quote.Repository           = (*Repo[*quote.Quote])(nil)
	_ order.Repository           = (*Repo[*order.Order])(nil)
	_ invoice.Repository         = (*Repo[*invoice.Invoice])(nil)
	_ credit_note.Repository     = (*Repo[*credit_note.CreditNote])(nil)
	_ receipt.Repository         = (*Repo[*receipt.Receipt])(nil)
	_ tailoring_order.Repository = (*Repo[*tailoring_order.TailoringOrder])(nil)
)
