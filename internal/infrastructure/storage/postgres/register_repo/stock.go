// Package register_repo provides PostgreSQL implementations of the ledger
// repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/registers/stock"
	"salesledger/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "reg_stock_movements"

var _ stock.Repository = (*StockRepo)(nil)

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm     *postgres.TxManager
	columns []string
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{txm: txm, columns: postgres.ExtractDBColumns[entity.StockMovement]()}
}

// CreateMovements batch inserts movements. Inside a transaction the rows
// go through COPY.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(movements))
	for i := range movements {
		rows = append(rows, postgres.Row(&movements[i], r.columns))
	}

	if r.txm.GetTx(ctx) != nil {
		if _, err := r.txm.CopyRows(ctx, stockMovementsTable, r.columns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := postgres.Builder().Insert(stockMovementsTable).Columns(r.columns...)
	for _, row := range rows {
		q = q.Values(row...)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

// DeleteByOperation removes every movement of an operation.
func (r *StockRepo) DeleteByOperation(ctx context.Context, organizationID, operationID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(stockMovementsTable).
		Where(squirrel.Eq{"organization_id": organizationID, "operation_id": operationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	return nil
}

// ListByOperation returns the movements of an operation.
func (r *StockRepo) ListByOperation(ctx context.Context, organizationID, operationID id.ID) ([]entity.StockMovement, error) {
	sql, args, err := postgres.Builder().
		Select(r.columns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"organization_id": organizationID, "operation_id": operationID}).
		OrderBy("line_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}

// SumByItems aggregates debit and credit quantities per item.
func (r *StockRepo) SumByItems(ctx context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]stock.Totals, error) {
	out := make(map[id.ID]stock.Totals, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	sql, args, err := postgres.Builder().
		Select(
			"item_id",
			"COALESCE(SUM(debit_quantity), 0)::bigint AS debit",
			"COALESCE(SUM(credit_quantity), 0)::bigint AS credit",
		).
		From(stockMovementsTable).
		Where(squirrel.Eq{"organization_id": organizationID, "item_id": itemIDs}).
		GroupBy("item_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var totals []stock.Totals
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &totals, sql, args...); err != nil {
		return nil, fmt.Errorf("sum movements: %w", err)
	}
	for _, t := range totals {
		out[t.ItemID] = t
	}
	return out, nil
}
