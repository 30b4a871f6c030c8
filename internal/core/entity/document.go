package entity

import (
	"context"
	"fmt"
	"time"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
)

// DocumentType identifies a kind of money-moving document.
// It keys numbering prefixes and tags ledger rows.
type DocumentType string

const (
	DocumentTypeQuote          DocumentType = "quote"
	DocumentTypeOrder          DocumentType = "order"
	DocumentTypeInvoice        DocumentType = "invoice"
	DocumentTypeCreditNote     DocumentType = "credit_note"
	DocumentTypeReceipt        DocumentType = "receipt"
	DocumentTypeTailoringOrder DocumentType = "tailoring_order"
)

// DocumentTypes lists every document type in a stable order.
var DocumentTypes = []DocumentType{
	DocumentTypeQuote,
	DocumentTypeOrder,
	DocumentTypeInvoice,
	DocumentTypeCreditNote,
	DocumentTypeReceipt,
	DocumentTypeTailoringOrder,
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Document is the base type for business transactions.
type Document struct {
	BaseDocument

	// OrganizationID scopes the document, its ledger rows and its number.
	OrganizationID id.ID `db:"organization_id" json:"organizationId"`

	// Number is assigned once on create and never changes afterwards.
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Status is the lifecycle status (per document type).
	Status string `db:"status" json:"status"`

	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(organizationID id.ID, userID string) Document {
	base := NewBaseDocument()
	base.CreatedBy = userID
	base.UpdatedBy = userID
	return Document{
		BaseDocument:   base,
		Date:           time.Now().UTC(),
		OrganizationID: organizationID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if id.IsNil(d.OrganizationID) {
		return apperror.NewValidation("organization is required").
			WithDetail("field", "organizationId")
	}
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// CheckNumber rejects an edit whose submitted number differs from the stored one.
func (d *Document) CheckNumber(submitted string) error {
	if submitted != d.Number {
		return apperror.NewConflict(
			fmt.Sprintf("document number %q does not match existing number %q", submitted, d.Number),
		).WithDetail("number", d.Number)
	}
	return nil
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}

// GetOrganizationID returns the owning organization.
func (d *Document) GetOrganizationID() id.ID {
	return d.OrganizationID
}

// GetNumber returns the assigned document number.
func (d *Document) GetNumber() string {
	return d.Number
}

// GetDate returns the business date.
func (d *Document) GetDate() time.Time {
	return d.Date
}
