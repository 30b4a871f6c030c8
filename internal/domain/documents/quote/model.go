// Package quote provides the sales quote. A quote is numbered and priced but
// never touches the ledgers.
package quote

import (
	"time"

	"salesledger/internal/core/id"
	"salesledger/internal/domain/documents"
)

// Quote is a sales quote.
type Quote struct {
	documents.Sales

	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
}

// Input is a parsed quote payload.
type Input struct {
	documents.SalesInput

	ExpiryDate *time.Time
}

// NewQuote creates an empty quote.
func NewQuote(organizationID id.ID, userID string) *Quote {
	q := &Quote{Sales: documents.NewSales(organizationID, userID)}
	q.Status = StatusDraft
	return q
}

// Clone returns a deep copy.
func (q *Quote) Clone() *Quote {
	c := &Quote{Sales: documents.CloneSales(q.Sales)}
	if q.ExpiryDate != nil {
		v := *q.ExpiryDate
		c.ExpiryDate = &v
	}
	return c
}

// Expired reports whether the quote is past its expiry date at now.
func (q *Quote) Expired(now time.Time) bool {
	return q.ExpiryDate != nil && now.After(*q.ExpiryDate)
}
