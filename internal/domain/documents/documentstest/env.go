// Package documentstest wires the document orchestrators to the in-memory
// stores with one seeded organization.
package documentstest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/numerator"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/audit"
	"salesledger/internal/domain/documents"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/pricing"
	"salesledger/internal/domain/refdata"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/domain/registers/stock"
	"salesledger/internal/infrastructure/lock"
	"salesledger/internal/infrastructure/storage/memory"
	numbering "salesledger/pkg/numerator"
)

// Prefixes are the numbering prefixes of the seeded organization.
var Prefixes = map[entity.DocumentType]string{
	entity.DocumentTypeQuote:          "QT-",
	entity.DocumentTypeOrder:          "SO-",
	entity.DocumentTypeInvoice:        "INV-",
	entity.DocumentTypeCreditNote:     "CN-",
	entity.DocumentTypeReceipt:        "RCT-",
	entity.DocumentTypeTailoringOrder: "TO-",
}

// Env is a seeded in-memory environment.
type Env struct {
	Ctx context.Context

	Org       *refdata.Organization
	Customer  *refdata.Counterparty
	Other     *refdata.Counterparty
	Fabric    *refdata.Item
	Stitching *refdata.Item
	Deposit   *refdata.Account

	Tx             *memory.TxManager
	RefData        *memory.RefData
	JournalRepo    *memory.JournalRepo
	StockRepo      *memory.StockRepo
	AuditRepo      *memory.AuditRepo
	JournalService *journal.Service
	StockService   *stock.Service
	Deps           documents.Deps
}

// New seeds an organization in region KA with a GST customer of the same
// region, a stock-tracked fabric and a stitching service.
func New(t testing.TB) *Env {
	t.Helper()

	e := &Env{
		Tx:          memory.NewTxManager(),
		RefData:     memory.NewRefData(),
		JournalRepo: memory.NewJournalRepo(),
		StockRepo:   memory.NewStockRepo(),
		AuditRepo:   memory.NewAuditRepo(),
	}
	e.JournalService = journal.NewService(e.JournalRepo)
	e.StockService = stock.NewService(e.StockRepo)

	orgID := id.New()
	accounts := make(map[refdata.AccountKind]id.ID)
	for _, kind := range []refdata.AccountKind{
		refdata.AccountSales, refdata.AccountReceivable,
		refdata.AccountCGSTPayable, refdata.AccountSGSTPayable,
		refdata.AccountIGSTPayable, refdata.AccountVATPayable,
		refdata.AccountDiscount, refdata.AccountOtherExpense,
		refdata.AccountFreight, refdata.AccountRoundOff,
	} {
		acc := &refdata.Account{ID: id.New(), OrganizationID: orgID, Code: string(kind), Name: string(kind)}
		e.RefData.PutAccount(acc)
		accounts[kind] = acc.ID
	}

	e.Org = &refdata.Organization{ID: orgID, Name: "Tailors", HomeRegion: "KA", DefaultAccounts: accounts}
	e.Customer = &refdata.Counterparty{
		ID: id.New(), OrganizationID: orgID, Name: "Asha", TaxClassification: refdata.TaxClassificationGST, Region: "KA",
	}
	e.Other = &refdata.Counterparty{
		ID: id.New(), OrganizationID: orgID, Name: "Ravi", TaxClassification: refdata.TaxClassificationGST, Region: "KA",
	}
	e.Fabric = &refdata.Item{
		ID: id.New(), OrganizationID: orgID, Name: "Fabric",
		SalePrice: types.MustMoney("100"), PurchasePrice: types.MustMoney("40"), TrackStock: true,
	}
	e.Stitching = &refdata.Item{
		ID: id.New(), OrganizationID: orgID, Name: "Stitching", SalePrice: types.MustMoney("50"),
	}
	e.Deposit = &refdata.Account{ID: id.New(), OrganizationID: orgID, Code: "1000", Name: "Cash"}

	e.RefData.PutOrganization(e.Org)
	e.RefData.PutCounterparty(e.Customer)
	e.RefData.PutCounterparty(e.Other)
	e.RefData.PutItem(e.Fabric)
	e.RefData.PutItem(e.Stitching)
	e.RefData.PutAccount(e.Deposit)

	prefixes := make(map[entity.DocumentType]numerator.Prefix, len(Prefixes))
	for docType, p := range Prefixes {
		prefixes[docType] = numerator.Prefix{Prefix: p, NextNumber: 1}
	}
	store := memory.NewNumberingStore()
	store.Put(&numerator.Numbering{
		OrganizationID: orgID,
		Series:         []numerator.Series{{ID: id.New(), Name: "default", IsActive: true, Prefixes: prefixes}},
	})

	trail, err := audit.NewTrail(e.AuditRepo)
	require.NoError(t, err)

	e.Deps = documents.Deps{
		Engine:  posting.NewEngine(e.Tx, e.JournalService, e.StockService),
		Numbers: numbering.New(store, lock.NewLocal()),
		RefData: e.RefData,
		Trail:   trail,
	}
	e.Ctx = appctx.WithCaller(context.Background(), &appctx.Caller{
		OrganizationID: orgID,
		UserID:         "user-1",
		UserName:       "Clerk",
	})
	return e
}

// SeedStock receives qty of item as opening stock.
func (e *Env) SeedStock(t testing.TB, itemID id.ID, qty int64) {
	t.Helper()
	src := entity.MovementSource{OrganizationID: e.Org.ID, OperationID: id.New(), DocumentType: entity.DocumentTypeCreditNote}
	mv := stock.NewMovement(src, stock.ActionReturn, stock.ItemPrice{ItemID: itemID}, types.NewQuantity(qty), false)
	require.NoError(t, e.StockService.PostMovements(context.Background(), src.OperationID, []entity.StockMovement{mv}))
}

// OnHand returns the current stock of item.
func (e *Env) OnHand(t testing.TB, itemID id.ID) types.Quantity {
	t.Helper()
	cur, err := e.StockService.CurrentStock(context.Background(), e.Org.ID, []id.ID{itemID})
	require.NoError(t, err)
	return cur[itemID]
}

// Entries returns the journal rows of an operation.
func (e *Env) Entries(t testing.TB, operationID id.ID) []entity.JournalEntry {
	t.Helper()
	rows, err := e.JournalService.Entries(context.Background(), e.Org.ID, operationID)
	require.NoError(t, err)
	return rows
}

// Line is a taxable line with 9% CGST and 9% SGST.
func Line(item *refdata.Item, qty int64, price string) documents.LineInput {
	return documents.LineInput{
		ItemID:        item.ID,
		Quantity:      types.NewQuantity(qty),
		UnitPrice:     types.MustMoney(price),
		TaxPreference: pricing.Taxable,
		Rates:         pricing.Rates{CGST: types.MustMoney("9"), SGST: types.MustMoney("9")},
	}
}

// Sale builds an intra-region submission for the seeded customer with
// correct claims.
func (e *Env) Sale(ordering pricing.Ordering, lines ...documents.LineInput) documents.SalesInput {
	in := documents.SalesInput{
		CustomerID:    e.Customer.ID,
		PlaceOfSupply: "KA",
		Lines:         lines,
	}
	Price(&in, pricing.TaxTypeIntra, ordering)
	return in
}

// Price recomputes in and stores the results as its claims.
func Price(in *documents.SalesInput, taxType pricing.TaxType, ordering pricing.Ordering) {
	doc := pricing.Document{
		TaxType:      taxType,
		Ordering:     ordering,
		Discount:     in.Discount,
		OtherExpense: in.OtherExpense,
		Freight:      in.Freight,
		RoundOff:     in.RoundOff,
		Paid:         in.Paid,
	}
	for _, l := range in.Lines {
		doc.Lines = append(doc.Lines, pricing.Line{
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			TaxPreference: l.TaxPreference,
			Rates:         l.Rates,
			Discount:      l.Discount,
		})
	}

	t := pricing.Compute(doc)
	for i := range in.Lines {
		in.Lines[i].Claimed = pricing.LineClaim{Tax: t.Lines[i].Tax, LineTotal: t.Lines[i].Total}
	}
	in.Claimed = pricing.DocumentClaim{
		Subtotal:      t.Subtotal,
		TotalDiscount: t.TotalDiscount,
		TotalTax:      t.TotalTax,
		GrandTotal:    t.GrandTotal,
	}
}
