package pricing

import (
	"fmt"
	"strings"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/refdata"
)

// TaxType selects the tax scheme applied to every taxable line of a document.
type TaxType string

const (
	// TaxTypeIntra is a same-region GST supply: CGST + SGST.
	TaxTypeIntra TaxType = "Intra"
	// TaxTypeInter is a cross-region GST supply: IGST.
	TaxTypeInter TaxType = "Inter"
	// TaxTypeVAT applies VAT only.
	TaxTypeVAT TaxType = "VAT"
	// TaxTypeNone applies no tax.
	TaxTypeNone TaxType = "NonTax"
)

// ResolveTaxType derives the document tax type from the counterparty's
// classification and, for GST, from the place of supply.
func ResolveTaxType(class refdata.TaxClassification, placeOfSupply, homeRegion string) (TaxType, error) {
	switch class {
	case refdata.TaxClassificationGST:
		pos := strings.TrimSpace(placeOfSupply)
		if pos == "" {
			return "", apperror.NewValidation("place of supply is required for GST counterparties").
				WithDetail("field", "placeOfSupply")
		}
		if strings.EqualFold(pos, strings.TrimSpace(homeRegion)) {
			return TaxTypeIntra, nil
		}
		return TaxTypeInter, nil
	case refdata.TaxClassificationVAT:
		return TaxTypeVAT, nil
	case refdata.TaxClassificationNonTax:
		return TaxTypeNone, nil
	default:
		return "", apperror.NewValidation(fmt.Sprintf("unknown tax classification %q", class)).
			WithDetail("field", "taxClassification")
	}
}

// TaxPreference marks a line as taxable or exempt.
type TaxPreference string

const (
	Taxable    TaxPreference = "Taxable"
	NonTaxable TaxPreference = "NonTaxable"
)

// Rates are percentages per tax bucket.
type Rates struct {
	CGST types.Money `json:"cgst"`
	SGST types.Money `json:"sgst"`
	IGST types.Money `json:"igst"`
	VAT  types.Money `json:"vat"`
}

// TaxAmounts are currency amounts per tax bucket.
type TaxAmounts struct {
	CGST types.Money `json:"cgstAmount"`
	SGST types.Money `json:"sgstAmount"`
	IGST types.Money `json:"igstAmount"`
	VAT  types.Money `json:"vatAmount"`
}

// Total sums every bucket.
func (t TaxAmounts) Total() types.Money {
	return t.CGST.Add(t.SGST).Add(t.IGST).Add(t.VAT)
}

// Add returns the bucket-wise sum of t and o.
func (t TaxAmounts) Add(o TaxAmounts) TaxAmounts {
	return TaxAmounts{
		CGST: t.CGST.Add(o.CGST),
		SGST: t.SGST.Add(o.SGST),
		IGST: t.IGST.Add(o.IGST),
		VAT:  t.VAT.Add(o.VAT),
	}
}

// applyTax computes the buckets of one scheme on preTax, each rounded independently.
func applyTax(taxType TaxType, rates Rates, preTax types.Money) TaxAmounts {
	var out TaxAmounts
	switch taxType {
	case TaxTypeIntra:
		out.CGST = types.Percent(preTax, rates.CGST)
		out.SGST = types.Percent(preTax, rates.SGST)
	case TaxTypeInter:
		out.IGST = types.Percent(preTax, rates.IGST)
	case TaxTypeVAT:
		out.VAT = types.Percent(preTax, rates.VAT)
	}
	return out
}
