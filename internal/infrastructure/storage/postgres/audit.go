package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesledger/internal/core/id"
	"salesledger/internal/domain/audit"
)

const auditTable = "sys_audit"

var _ audit.Repository = (*AuditRepo)(nil)

// AuditRepo stores audit entries in sys_audit.
type AuditRepo struct {
	txm     *TxManager
	columns []string
}

// NewAuditRepo creates an audit repository.
func NewAuditRepo(txm *TxManager) *AuditRepo {
	return &AuditRepo{txm: txm, columns: ExtractDBColumns[audit.Entry]()}
}

// Insert appends an entry.
func (r *AuditRepo) Insert(ctx context.Context, entry audit.Entry) error {
	sql, args, err := Builder().
		Insert(auditTable).
		Columns(r.columns...).
		Values(Row(entry, r.columns)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByEntity returns the newest entries of an entity.
func (r *AuditRepo) ListByEntity(ctx context.Context, organizationID id.ID, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	q := Builder().
		Select(r.columns...).
		From(auditTable).
		Where(squirrel.Eq{
			"organization_id": organizationID,
			"entity_type":     entityType,
			"entity_id":       entityID,
		}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []audit.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	return entries, nil
}
