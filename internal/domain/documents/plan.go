package documents

import (
	"errors"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/domain/registers/stock"
)

var errNoPlan = errors.New("posting plan is not attached")

// StockLine is one stock-tracked line of a document.
type StockLine struct {
	ItemID        id.ID
	SalePrice     types.Money
	PurchasePrice types.Money
	Quantity      types.Quantity
}

// PostingPlan describes the ledger rows of a document independent of its
// final number, so it can be built before the number is allocated.
type PostingPlan struct {
	// Sale posts a sale, or its mirror when Return is set.
	Sale   *journal.SalePosting
	Return bool

	// Payment posts a standalone payment pair against CounterpartyAccountID.
	Payment               *journal.Payment
	CounterpartyAccountID id.ID

	Stock       []StockLine
	StockAction string
	// StockOut credits (removes) stock; otherwise stock is debited.
	StockOut bool
}

// Generate builds the rows of the plan for src.
func (p *PostingPlan) Generate(src entity.MovementSource) *posting.MovementSet {
	set := posting.NewMovementSet()
	if p == nil {
		return set
	}

	if p.Sale != nil {
		sp := *p.Sale
		sp.Source = src
		if p.Return {
			set.AddJournal(journal.BuildReturn(sp)...)
		} else {
			set.AddJournal(journal.BuildSale(sp)...)
		}
	}
	if p.Payment != nil {
		set.AddJournal(journal.BuildPayment(src, "", p.Payment.DepositAccountID, p.CounterpartyAccountID, p.Payment.Amount)...)
	}

	for _, l := range p.Stock {
		item := stock.ItemPrice{ItemID: l.ItemID, SalePrice: l.SalePrice, PurchasePrice: l.PurchasePrice}
		set.AddStock(stock.NewMovement(src, p.StockAction, item, l.Quantity, p.StockOut))
	}
	return set
}

// Movements generates the rows of s from its attached plan.
func Movements(s *Sales, docType entity.DocumentType) (*posting.MovementSet, error) {
	if s.plan == nil {
		return nil, apperror.NewInternal(errNoPlan)
	}
	return s.plan.Generate(entity.MovementSource{
		OrganizationID: s.OrganizationID,
		OperationID:    s.ID,
		DocumentType:   docType,
		DocumentNumber: s.Number,
	}), nil
}
