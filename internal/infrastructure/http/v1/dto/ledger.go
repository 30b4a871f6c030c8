package dto

import (
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
)

// StockLevel is the current stock of one item.
type StockLevel struct {
	ItemID   id.ID          `json:"itemId"`
	Quantity types.Quantity `json:"quantity"`
}

// StockResponse lists current stock per requested item.
type StockResponse struct {
	Items []StockLevel `json:"items"`
}

// JournalResponse lists the journal rows of one operation.
type JournalResponse struct {
	OperationID id.ID                 `json:"operationId"`
	Entries     []entity.JournalEntry `json:"entries"`
	TotalDebit  types.Money           `json:"totalDebit"`
	TotalCredit types.Money           `json:"totalCredit"`
}
