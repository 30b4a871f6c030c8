package audit_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/audit"
	"salesledger/internal/infrastructure/storage/memory"
)

func callerCtx(orgID id.ID) context.Context {
	return appctx.WithCaller(context.Background(), &appctx.Caller{
		OrganizationID: orgID,
		UserID:         "u-1",
		UserName:       "Asha",
	})
}

func TestTrail_RecordsSmallSnapshotUncompressed(t *testing.T) {
	repo := memory.NewAuditRepo()
	trail, err := audit.NewTrail(repo)
	require.NoError(t, err)

	orgID, docID := id.New(), id.New()
	ctx := callerCtx(orgID)
	require.NoError(t, trail.Record(ctx, "invoice", docID, audit.ActionCreate, map[string]string{"number": "INV-1"}))

	entries, err := trail.History(ctx, orgID, "invoice", docID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.CompressionNone, entries[0].CompressionAlgo)
	assert.Equal(t, "u-1", entries[0].UserID)
	assert.Equal(t, "Asha", entries[0].UserName)
	assert.JSONEq(t, `{"number":"INV-1"}`, string(entries[0].Snapshot))
}

func TestTrail_CompressesLargeSnapshot(t *testing.T) {
	repo := memory.NewAuditRepo()
	trail, err := audit.NewTrail(repo)
	require.NoError(t, err)
	trail.WithCompressThreshold(64)

	orgID, docID := id.New(), id.New()
	ctx := callerCtx(orgID)
	payload := map[string]string{"comment": strings.Repeat("x", 500)}
	require.NoError(t, trail.Record(ctx, "invoice", docID, audit.ActionUpdate, payload))

	raw, err := repo.ListByEntity(ctx, orgID, "invoice", docID, 0)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, audit.CompressionZstd, raw[0].CompressionAlgo)
	assert.Nil(t, raw[0].Snapshot)
	assert.Less(t, len(raw[0].SnapshotCompressed), 500)

	entries, err := trail.History(ctx, orgID, "invoice", docID, 0)
	require.NoError(t, err)
	assert.Contains(t, string(entries[0].Snapshot), strings.Repeat("x", 500))
}

func TestTrail_RolledBackWithTransaction(t *testing.T) {
	repo := memory.NewAuditRepo()
	trail, err := audit.NewTrail(repo)
	require.NoError(t, err)
	txm := memory.NewTxManager()

	orgID, docID := id.New(), id.New()
	ctx := callerCtx(orgID)
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := trail.Record(ctx, "receipt", docID, audit.ActionDelete, struct{}{}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	entries, err := trail.History(ctx, orgID, "receipt", docID, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNilTrailIsNoop(t *testing.T) {
	var trail *audit.Trail
	assert.NoError(t, trail.Record(context.Background(), "quote", id.New(), audit.ActionCreate, nil))
}

func TestStamp(t *testing.T) {
	doc := entity.NewBaseDocument()
	audit.StampCreated(callerCtx(id.New()), &doc)
	assert.Equal(t, "u-1", doc.CreatedBy)
	assert.Equal(t, "u-1", doc.UpdatedBy)

	doc.UpdatedBy = ""
	audit.StampUpdated(context.Background(), &doc)
	assert.Empty(t, doc.UpdatedBy)
}
