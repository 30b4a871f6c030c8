// Package receipt provides the customer receipt: money received into a
// deposit account and allocated to the customer's open invoices.
package receipt

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/documents/invoice"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/registers/journal"
)

// StatusReceived is the status of every stored receipt.
const StatusReceived = "Received"

// Allocation settles part of one invoice.
type Allocation struct {
	InvoiceID     id.ID       `db:"invoice_id" json:"invoiceId"`
	InvoiceNumber string      `db:"invoice_number" json:"invoiceNumber"`
	Amount        types.Money `db:"amount" json:"amount"`
}

// Receipt is money received from a customer.
type Receipt struct {
	entity.Document

	CustomerID       id.ID        `db:"customer_id" json:"customerId"`
	DepositAccountID id.ID        `db:"deposit_account_id" json:"depositAccountId"`
	Amount           types.Money  `db:"amount" json:"amount"`
	Allocations      []Allocation `db:"-" json:"allocations"`

	// counterpartyAccountID is credited when the receipt is posted.
	counterpartyAccountID id.ID
}

// AllocationInput is one submitted allocation.
type AllocationInput struct {
	InvoiceID id.ID
	Amount    types.Money
}

// Input is a parsed receipt payload.
type Input struct {
	// Number must repeat the stored number on update and is ignored on create.
	Number string

	Date             time.Time
	CustomerID       id.ID
	DepositAccountID id.ID
	Amount           types.Money
	Allocations      []AllocationInput
	Comment          string
}

// NewReceipt creates an empty receipt.
func NewReceipt(organizationID id.ID, userID string) *Receipt {
	r := &Receipt{
		Document:    entity.NewDocument(organizationID, userID),
		Amount:      decimal.Zero,
		Allocations: []Allocation{},
	}
	r.Status = StatusReceived
	return r
}

// Clone returns a deep copy.
func (r *Receipt) Clone() *Receipt {
	c := *r
	c.Allocations = append([]Allocation(nil), r.Allocations...)
	c.counterpartyAccountID = id.Nil()
	return &c
}

// GetCounterpartyID returns the customer.
func (r *Receipt) GetCounterpartyID() id.ID {
	return r.CustomerID
}

// GetStatus returns the lifecycle status.
func (r *Receipt) GetStatus() string {
	return r.Status
}

// AllocatedTo returns the amount this receipt allocates to an invoice.
func (r *Receipt) AllocatedTo(invoiceID id.ID) types.Money {
	total := decimal.Zero
	for _, a := range r.Allocations {
		if a.InvoiceID == invoiceID {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// Adjustments are the effects of the receipt on its invoices.
func (r *Receipt) Adjustments() []invoice.BalanceAdjusted {
	out := make([]invoice.BalanceAdjusted, 0, len(r.Allocations))
	for _, a := range r.Allocations {
		out = append(out, invoice.BalanceAdjusted{
			OrganizationID: r.OrganizationID,
			InvoiceID:      a.InvoiceID,
			ReceivedDelta:  a.Amount,
		})
	}
	return out
}

// AdjustmentsSince returns the events that turn the effect of prev into the
// effect of r, one per affected invoice.
func (r *Receipt) AdjustmentsSince(prev *Receipt) []invoice.BalanceAdjusted {
	byInvoice := make(map[id.ID]invoice.BalanceAdjusted)
	var order []id.ID
	merge := func(ev invoice.BalanceAdjusted, sign int) {
		cur, ok := byInvoice[ev.InvoiceID]
		if !ok {
			order = append(order, ev.InvoiceID)
			cur = invoice.BalanceAdjusted{OrganizationID: ev.OrganizationID, InvoiceID: ev.InvoiceID, ReceivedDelta: decimal.Zero}
		}
		if sign < 0 {
			cur.ReceivedDelta = cur.ReceivedDelta.Sub(ev.ReceivedDelta)
		} else {
			cur.ReceivedDelta = cur.ReceivedDelta.Add(ev.ReceivedDelta)
		}
		byInvoice[ev.InvoiceID] = cur
	}
	// previous allocations are released before the new ones are added
	for _, ev := range prev.Adjustments() {
		merge(ev, -1)
	}
	for _, ev := range r.Adjustments() {
		merge(ev, 1)
	}

	out := make([]invoice.BalanceAdjusted, 0, len(order))
	for _, invoiceID := range order {
		if ev := byInvoice[invoiceID]; !ev.IsZero() {
			out = append(out, ev)
		}
	}
	return out
}

// GetDocumentType implements posting.Postable.
func (r *Receipt) GetDocumentType() entity.DocumentType {
	return entity.DocumentTypeReceipt
}

// GenerateMovements implements posting.Postable: deposit debit, customer credit.
func (r *Receipt) GenerateMovements(context.Context) (*posting.MovementSet, error) {
	if id.IsNil(r.counterpartyAccountID) {
		return nil, apperror.NewInternal(errors.New("receipt counterparty account is not resolved"))
	}
	set := posting.NewMovementSet()
	set.AddJournal(journal.BuildPayment(posting.Source(r), r.Comment, r.DepositAccountID, r.counterpartyAccountID, r.Amount)...)
	return set, nil
}

var _ posting.Postable = (*Receipt)(nil)
