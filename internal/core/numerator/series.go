// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"fmt"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
)

// Prefix is one (prefix, counter) pair of a series.
// NextNumber is the counter value the next allocation will use.
type Prefix struct {
	Prefix     string `json:"prefix"`
	NextNumber int64  `json:"nextNumber"`
}

// Series is a named set of prefixes keyed by document type.
type Series struct {
	ID       id.ID                          `json:"id"`
	Name     string                         `json:"name"`
	IsActive bool                           `json:"isActive"`
	Prefixes map[entity.DocumentType]Prefix `json:"prefixes"`
}

// Numbering is the organization-scoped numbering configuration.
// At most one series is active at a time.
type Numbering struct {
	OrganizationID id.ID    `json:"organizationId"`
	Series         []Series `json:"series"`
}

// ActiveSeries returns the active series or nil.
func (n *Numbering) ActiveSeries() *Series {
	for i := range n.Series {
		if n.Series[i].IsActive {
			return &n.Series[i]
		}
	}
	return nil
}

// Allocate formats the next number for docType from the active series and
// advances that counter in place. The caller persists the mutated Numbering.
func Allocate(n *Numbering, docType entity.DocumentType) (string, error) {
	if n == nil {
		return "", apperror.NewNotFound("numbering series", docType)
	}
	series := n.ActiveSeries()
	if series == nil {
		return "", apperror.NewNotFound("active numbering series", n.OrganizationID.String())
	}
	prefix, ok := series.Prefixes[docType]
	if !ok {
		return "", apperror.NewNotFound(fmt.Sprintf("numbering prefix for %s", docType), series.Name)
	}

	counter := prefix.NextNumber
	if counter < 1 {
		counter = 1
	}
	number := Format(prefix.Prefix, counter)

	prefix.NextNumber = counter + 1
	series.Prefixes[docType] = prefix
	return number, nil
}

// Format renders a document number as prefix immediately followed by the counter.
func Format(prefix string, counter int64) string {
	return fmt.Sprintf("%s%d", prefix, counter)
}
