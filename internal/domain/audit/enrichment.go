// Package audit stamps documents with the acting user and keeps a trail of
// document snapshots per change.
package audit

import (
	"context"

	appctx "salesledger/internal/core/context"
	"salesledger/internal/core/entity"
)

// StampCreated sets CreatedBy and UpdatedBy from the caller in ctx.
// If no caller is present, this is a no-op.
func StampCreated(ctx context.Context, doc *entity.BaseDocument) {
	userID := appctx.GetUserID(ctx)
	if userID == "" || doc == nil {
		return
	}
	doc.CreatedBy = userID
	doc.UpdatedBy = userID
}

// StampUpdated sets only UpdatedBy.
func StampUpdated(ctx context.Context, doc *entity.BaseDocument) {
	userID := appctx.GetUserID(ctx)
	if userID == "" || doc == nil {
		return
	}
	doc.UpdatedBy = userID
}
