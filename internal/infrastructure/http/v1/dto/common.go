// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain"
	"salesledger/internal/domain/posting"
)

// IDResponse is returned when only an identifier is meaningful.
type IDResponse struct {
	ID string `json:"id"`
}

// ListQuery holds the list filter as submitted in the query string.
type ListQuery struct {
	Search         string `form:"search"`
	CounterpartyID string `form:"counterpartyId"`
	Status         string `form:"status"`
	DateFrom       string `form:"dateFrom"`
	DateTo         string `form:"dateTo"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}

// ToFilter parses the query into a normalized filter. Every malformed
// parameter is reported.
func (q ListQuery) ToFilter() (domain.ListFilter, error) {
	f := domain.DefaultListFilter()
	f.Search = q.Search
	f.Status = q.Status
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset

	var c apperror.Collector
	if q.CounterpartyID != "" {
		cp, err := id.Parse(q.CounterpartyID)
		if err != nil {
			c.Add("counterpartyId must be a UUID")
		} else {
			f.CounterpartyID = &cp
		}
	}
	f.DateFrom = parseDate(&c, "dateFrom", q.DateFrom, false)
	f.DateTo = parseDate(&c, "dateTo", q.DateTo, true)

	f.Normalize()
	return f, c.Err()
}

// parseDate accepts RFC 3339 timestamps and plain dates. A plain date used
// as an upper bound covers the whole day.
func parseDate(c *apperror.Collector, field, v string, endOfDay bool) *time.Time {
	if v == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t
	}
	c.Addf("%s must be a date (YYYY-MM-DD) or an RFC 3339 timestamp", field)
	return nil
}

// DocumentResponse is a persisted document with the ledger rows it produced.
type DocumentResponse[T any] struct {
	Document T                      `json:"document"`
	Journal  []entity.JournalEntry  `json:"journal"`
	Stock    []entity.StockMovement `json:"stock"`
}

// NewDocumentResponse builds a response from a document and its movement set.
func NewDocumentResponse[T any](doc T, set *posting.MovementSet) DocumentResponse[T] {
	resp := DocumentResponse[T]{
		Document: doc,
		Journal:  []entity.JournalEntry{},
		Stock:    []entity.StockMovement{},
	}
	if set != nil {
		if len(set.Journal) > 0 {
			resp.Journal = set.Journal
		}
		if len(set.Stock) > 0 {
			resp.Stock = set.Stock
		}
	}
	return resp
}
