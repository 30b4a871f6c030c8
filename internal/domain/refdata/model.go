// Package refdata describes the read-only master data a document operation
// consumes: organization settings, counterparties, items and accounts.
package refdata

import (
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
)

// TaxClassification is a counterparty's tax registration.
type TaxClassification string

const (
	TaxClassificationGST    TaxClassification = "GST"
	TaxClassificationVAT    TaxClassification = "VAT"
	TaxClassificationNonTax TaxClassification = "NonTax"
)

// Valid reports whether c is a known classification.
func (c TaxClassification) Valid() bool {
	switch c {
	case TaxClassificationGST, TaxClassificationVAT, TaxClassificationNonTax:
		return true
	}
	return false
}

// AccountKind names a default account role in the chart of accounts.
type AccountKind string

const (
	AccountSales        AccountKind = "sales"
	AccountReceivable   AccountKind = "receivable"
	AccountCGSTPayable  AccountKind = "cgst_payable"
	AccountSGSTPayable  AccountKind = "sgst_payable"
	AccountIGSTPayable  AccountKind = "igst_payable"
	AccountVATPayable   AccountKind = "vat_payable"
	AccountDiscount     AccountKind = "discount"
	AccountOtherExpense AccountKind = "other_expense"
	AccountFreight      AccountKind = "freight"
	AccountRoundOff     AccountKind = "round_off"
)

// Organization holds the settings that drive tax and posting decisions.
type Organization struct {
	ID                 id.ID                 `db:"id" json:"id"`
	Name               string                `db:"name" json:"name"`
	HomeRegion         string                `db:"home_region" json:"homeRegion"`
	AllowNegativeStock bool                  `db:"allow_negative_stock" json:"allowNegativeStock"`
	DefaultAccounts    map[AccountKind]id.ID `db:"default_accounts" json:"defaultAccounts"`
}

// Counterparty is a customer (or supplier) with its tax registration.
type Counterparty struct {
	ID                id.ID             `db:"id" json:"id"`
	OrganizationID    id.ID             `db:"organization_id" json:"organizationId"`
	Name              string            `db:"name" json:"name"`
	TaxClassification TaxClassification `db:"tax_classification" json:"taxClassification"`
	Region            string            `db:"region" json:"region"`
	// AccountID is the control account; nil falls back to the default receivable account.
	AccountID *id.ID `db:"account_id" json:"accountId,omitempty"`
}

// Item is a catalog good or service.
type Item struct {
	ID             id.ID       `db:"id" json:"id"`
	OrganizationID id.ID       `db:"organization_id" json:"organizationId"`
	Name           string      `db:"name" json:"name"`
	SalePrice      types.Money `db:"sale_price" json:"salePrice"`
	PurchasePrice  types.Money `db:"purchase_price" json:"purchasePrice"`
	// TrackStock marks goods whose movements enter the stock ledger.
	TrackStock bool `db:"track_stock" json:"trackStock"`
	// SalesAccountID is the revenue account; nil falls back to the default sales account.
	SalesAccountID *id.ID `db:"sales_account_id" json:"salesAccountId,omitempty"`
}

// Account is a chart-of-accounts entry.
type Account struct {
	ID             id.ID  `db:"id" json:"id"`
	OrganizationID id.ID  `db:"organization_id" json:"organizationId"`
	Code           string `db:"code" json:"code"`
	Name           string `db:"name" json:"name"`
}
