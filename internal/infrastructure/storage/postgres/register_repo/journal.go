package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/infrastructure/storage/postgres"
)

const journalTable = "reg_journal"

var _ journal.Repository = (*JournalRepo)(nil)

// JournalRepo implements journal.Repository.
type JournalRepo struct {
	txm     *postgres.TxManager
	columns []string
}

// NewJournalRepo creates a new journal repository.
func NewJournalRepo(txm *postgres.TxManager) *JournalRepo {
	return &JournalRepo{txm: txm, columns: postgres.ExtractDBColumns[entity.JournalEntry]()}
}

// CreateEntries inserts the rows of one operation. The journal is always
// written inside the posting transaction, so rows go through COPY.
func (r *JournalRepo) CreateEntries(ctx context.Context, entries []entity.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(entries))
	for i := range entries {
		rows = append(rows, postgres.Row(&entries[i], r.columns))
	}
	if _, err := r.txm.CopyRows(ctx, journalTable, r.columns, rows); err != nil {
		return fmt.Errorf("copy journal rows: %w", err)
	}
	return nil
}

// DeleteByOperation removes every row of an operation.
func (r *JournalRepo) DeleteByOperation(ctx context.Context, organizationID, operationID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(journalTable).
		Where(squirrel.Eq{"organization_id": organizationID, "operation_id": operationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete journal rows: %w", err)
	}
	return nil
}

// ListByOperation returns the rows of an operation in insertion order.
func (r *JournalRepo) ListByOperation(ctx context.Context, organizationID, operationID id.ID) ([]entity.JournalEntry, error) {
	sql, args, err := postgres.Builder().
		Select(r.columns...).
		From(journalTable).
		Where(squirrel.Eq{"organization_id": organizationID, "operation_id": operationID}).
		OrderBy("line_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []entity.JournalEntry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select journal rows: %w", err)
	}
	return rows, nil
}
