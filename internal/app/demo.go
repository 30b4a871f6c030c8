package app

import (
	"strconv"

	"github.com/google/uuid"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/numerator"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/refdata"
	"salesledger/internal/domain/registers/stock"
)

// Dataset is the reference data of one organization plus its opening stock.
type Dataset struct {
	Organization   *refdata.Organization
	Accounts       []*refdata.Account
	Counterparties []*refdata.Counterparty
	Items          []*refdata.Item
	Numbering      *numerator.Numbering
	OpeningStock   []entity.StockMovement
}

// Caller is the clerk development tokens are issued for.
func (d *Dataset) Caller() appctx.Caller {
	return appctx.Caller{
		OrganizationID: d.Organization.ID,
		UserID:         "demo-clerk",
		UserName:       "Demo Clerk",
	}
}

// DemoPrefixes are the numbering prefixes of the demo organization.
var DemoPrefixes = map[entity.DocumentType]string{
	entity.DocumentTypeQuote:          "QT-",
	entity.DocumentTypeOrder:          "SO-",
	entity.DocumentTypeInvoice:        "INV-",
	entity.DocumentTypeCreditNote:     "CN-",
	entity.DocumentTypeReceipt:        "RCT-",
	entity.DocumentTypeTailoringOrder: "TO-",
}

var demoNamespace = uuid.MustParse("6f1c3f43-3c8e-4c64-9a8e-5a3f2b1d7e10")

// demoID derives a stable id so seeding twice addresses the same rows.
func demoID(name string) id.ID {
	return uuid.NewSHA1(demoNamespace, []byte(name))
}

// DemoDataset returns a tailoring shop in region KA: the full default chart
// of accounts, a cash account, two GST customers, a stock-tracked fabric
// with 100 units on hand and a stitching service.
func DemoDataset() *Dataset {
	orgID := demoID("organization")
	ds := &Dataset{
		Organization: &refdata.Organization{
			ID:              orgID,
			Name:            "Demo Tailors",
			HomeRegion:      "KA",
			DefaultAccounts: make(map[refdata.AccountKind]id.ID),
		},
	}

	kinds := []refdata.AccountKind{
		refdata.AccountSales, refdata.AccountReceivable,
		refdata.AccountCGSTPayable, refdata.AccountSGSTPayable,
		refdata.AccountIGSTPayable, refdata.AccountVATPayable,
		refdata.AccountDiscount, refdata.AccountOtherExpense,
		refdata.AccountFreight, refdata.AccountRoundOff,
	}
	for i, kind := range kinds {
		acc := &refdata.Account{
			ID:             demoID("account/" + string(kind)),
			OrganizationID: orgID,
			Code:           strconv.Itoa(2000 + i*10),
			Name:           string(kind),
		}
		ds.Accounts = append(ds.Accounts, acc)
		ds.Organization.DefaultAccounts[kind] = acc.ID
	}
	ds.Accounts = append(ds.Accounts, &refdata.Account{
		ID: demoID("account/cash"), OrganizationID: orgID, Code: "1000", Name: "Cash",
	})

	ds.Counterparties = []*refdata.Counterparty{
		{ID: demoID("counterparty/asha"), OrganizationID: orgID, Name: "Asha", TaxClassification: refdata.TaxClassificationGST, Region: "KA"},
		{ID: demoID("counterparty/ravi"), OrganizationID: orgID, Name: "Ravi", TaxClassification: refdata.TaxClassificationGST, Region: "MH"},
	}

	fabric := &refdata.Item{
		ID: demoID("item/fabric"), OrganizationID: orgID, Name: "Fabric",
		SalePrice: types.MustMoney("100"), PurchasePrice: types.MustMoney("40"), TrackStock: true,
	}
	ds.Items = []*refdata.Item{
		fabric,
		{ID: demoID("item/stitching"), OrganizationID: orgID, Name: "Stitching", SalePrice: types.MustMoney("50"), PurchasePrice: types.Zero()},
	}

	prefixes := make(map[entity.DocumentType]numerator.Prefix, len(DemoPrefixes))
	for docType, p := range DemoPrefixes {
		prefixes[docType] = numerator.Prefix{Prefix: p, NextNumber: 1}
	}
	ds.Numbering = &numerator.Numbering{
		OrganizationID: orgID,
		Series:         []numerator.Series{{ID: demoID("series/default"), Name: "default", IsActive: true, Prefixes: prefixes}},
	}

	src := entity.MovementSource{
		OrganizationID: orgID,
		OperationID:    demoID("operation/opening-stock"),
		DocumentType:   entity.DocumentTypeCreditNote,
		DocumentNumber: "OPENING",
	}
	opening := stock.NewMovement(src, "Opening Stock",
		stock.ItemPrice{ItemID: fabric.ID, SalePrice: fabric.SalePrice, PurchasePrice: fabric.PurchasePrice},
		types.NewQuantity(100), false)
	opening.LineID = demoID("movement/opening-fabric")
	ds.OpeningStock = []entity.StockMovement{opening}

	return ds
}
