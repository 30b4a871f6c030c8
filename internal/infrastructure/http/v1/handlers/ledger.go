package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/infrastructure/http/v1/dto"
)

// StockReader reports current stock.
type StockReader interface {
	CurrentStock(ctx context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]types.Quantity, error)
}

// JournalReader lists the journal rows of an operation.
type JournalReader interface {
	Entries(ctx context.Context, organizationID, operationID id.ID) ([]entity.JournalEntry, error)
}

// LedgerHandler exposes read access to the stock and journal ledgers.
type LedgerHandler struct {
	*BaseHandler
	stock   StockReader
	journal JournalReader
}

// NewLedgerHandler creates a ledger handler.
func NewLedgerHandler(base *BaseHandler, stock StockReader, journal JournalReader) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, stock: stock, journal: journal}
}

// GetStock handles GET /stock?itemId=...&itemId=...
func (h *LedgerHandler) GetStock(c *gin.Context) {
	ctx := c.Request.Context()
	orgID, err := documents.Organization(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	raw := c.QueryArray("itemId")
	if len(raw) == 0 {
		h.Error(c, apperror.NewValidation("itemId is required"))
		return
	}
	itemIDs := make([]id.ID, 0, len(raw))
	for _, v := range raw {
		itemID, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format").WithDetail("itemId", v))
			return
		}
		itemIDs = append(itemIDs, itemID)
	}
	itemIDs = id.Unique(itemIDs)

	levels, err := h.stock.CurrentStock(ctx, orgID, itemIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.StockResponse{Items: make([]dto.StockLevel, 0, len(itemIDs))}
	for _, itemID := range itemIDs {
		resp.Items = append(resp.Items, dto.StockLevel{ItemID: itemID, Quantity: levels[itemID]})
	}
	h.OK(c, resp)
}

// GetJournal handles GET /journal/:operationId
func (h *LedgerHandler) GetJournal(c *gin.Context) {
	ctx := c.Request.Context()
	orgID, err := documents.Organization(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	operationID, ok := h.ParamID(c, "operationId")
	if !ok {
		return
	}

	entries, err := h.journal.Entries(ctx, orgID, operationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []entity.JournalEntry{}
	}

	debit, credit := journal.Totals(entries)
	h.OK(c, dto.JournalResponse{
		OperationID: operationID,
		Entries:     entries,
		TotalDebit:  debit,
		TotalCredit: credit,
	})
}
