package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedQueries_DemoDataset(t *testing.T) {
	queries, err := seedQueries(DemoDataset())
	require.NoError(t, err)

	// organization, 11 accounts, 2 counterparties, 2 items, 1 series,
	// 6 prefixes and the opening stock row
	require.Len(t, queries, 24)
	assert.True(t, strings.HasPrefix(queries[0].SQL, "INSERT INTO cat_organizations"))
	assert.True(t, strings.HasPrefix(queries[len(queries)-1].SQL, "INSERT INTO reg_stock_movements"))

	for _, q := range queries {
		assert.True(t, strings.HasSuffix(q.SQL, onConflictDoNothing), q.SQL)
	}

	// default accounts travel as one JSON document
	assert.Contains(t, queries[0].Args[4], `"cgst_payable"`)
	assert.Len(t, queries[len(queries)-1].Args, 12)
}

func TestDataset_Caller(t *testing.T) {
	ds := DemoDataset()
	c := ds.Caller()
	assert.Equal(t, ds.Organization.ID, c.OrganizationID)
	assert.NotEmpty(t, c.UserID)
}
