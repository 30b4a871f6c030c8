package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/posting"
)

func TestListQuery_ToFilter(t *testing.T) {
	cp := id.New()
	f, err := ListQuery{
		Search:         "INV",
		CounterpartyID: cp.String(),
		DateFrom:       "2025-01-01",
		DateTo:         "2025-01-31",
		Limit:          10,
		Offset:         20,
	}.ToFilter()
	require.NoError(t, err)

	assert.Equal(t, "INV", f.Search)
	require.NotNil(t, f.CounterpartyID)
	assert.Equal(t, cp, *f.CounterpartyID)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	// a plain upper bound includes the whole day
	assert.True(t, f.DateTo.After(time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)))
	assert.True(t, f.DateTo.Before(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, 20, f.Offset)
}

func TestListQuery_ToFilterTimestamps(t *testing.T) {
	f, err := ListQuery{DateTo: "2025-01-31T10:00:00Z"}.ToFilter()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC), *f.DateTo)
	assert.Equal(t, 50, f.Limit)
}

func TestListQuery_ToFilterReportsEveryProblem(t *testing.T) {
	_, err := ListQuery{CounterpartyID: "nope", DateFrom: "yesterday", DateTo: "01/02/2025"}.ToFilter()
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, []string{
		"counterpartyId must be a UUID",
		"dateFrom must be a date (YYYY-MM-DD) or an RFC 3339 timestamp",
		"dateTo must be a date (YYYY-MM-DD) or an RFC 3339 timestamp",
	}, appErr.Messages())
}

func TestNewDocumentResponse_EmptySlices(t *testing.T) {
	resp := NewDocumentResponse("doc", nil)
	assert.NotNil(t, resp.Journal)
	assert.NotNil(t, resp.Stock)

	set := &posting.MovementSet{Journal: []entity.JournalEntry{{AccountID: id.New()}}}
	resp = NewDocumentResponse("doc", set)
	assert.Len(t, resp.Journal, 1)
	assert.Empty(t, resp.Stock)
}
