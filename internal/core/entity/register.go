// Package entity provides core domain entities.
package entity

import (
	"time"

	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
)

// MovementBase contains common fields for ledger rows.
// Rows are immutable: they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this row (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	OrganizationID id.ID `db:"organization_id" json:"organizationId"`

	// OperationID is the document that produced this row
	OperationID id.ID `db:"operation_id" json:"operationId"`

	DocumentType   DocumentType `db:"document_type" json:"documentType"`
	DocumentNumber string       `db:"document_number" json:"documentNumber"`

	// Action labels the kind of movement ("Sale", "Sales Return", ...)
	Action string `db:"action" json:"action"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MovementSource identifies the document a set of rows belongs to.
type MovementSource struct {
	OrganizationID id.ID
	OperationID    id.ID
	DocumentType   DocumentType
	DocumentNumber string
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(src MovementSource, action string) MovementBase {
	return MovementBase{
		LineID:         id.New(),
		OrganizationID: src.OrganizationID,
		OperationID:    src.OperationID,
		DocumentType:   src.DocumentType,
		DocumentNumber: src.DocumentNumber,
		Action:         action,
		CreatedAt:      time.Now().UTC(),
	}
}

// StockMovement is one row of the inventory ledger.
// Exactly one of DebitQuantity (stock-in) and CreditQuantity (stock-out) is set.
type StockMovement struct {
	MovementBase

	ItemID id.ID `db:"item_id" json:"itemId"`

	// Unit prices at the time of the movement
	SalePrice     types.Money `db:"sale_price" json:"salePrice"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	DebitQuantity  types.Quantity `db:"debit_quantity" json:"debitQuantity"`
	CreditQuantity types.Quantity `db:"credit_quantity" json:"creditQuantity"`
}

// SignedQuantity returns debit minus credit.
func (m *StockMovement) SignedQuantity() types.Quantity {
	return m.DebitQuantity - m.CreditQuantity
}

// JournalEntry is one row of the double-entry journal.
// Exactly one of Debit and Credit is non-zero.
type JournalEntry struct {
	MovementBase

	AccountID id.ID `db:"account_id" json:"accountId"`

	Debit  types.Money `db:"debit" json:"debit"`
	Credit types.Money `db:"credit" json:"credit"`

	Remark string `db:"remark" json:"remark,omitempty"`
}
