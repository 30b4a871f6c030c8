// Package numerator provides the PostgreSQL store behind document
// numbering. Counters are read with row locks, so concurrent allocations
// for one organization serialize on the database even without the
// service-level lock.
package numerator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	corenumerator "salesledger/internal/core/numerator"
	"salesledger/internal/infrastructure/storage/postgres"
)

const (
	seriesTable   = "numbering_series"
	prefixesTable = "numbering_prefixes"
)

var errNoTx = errors.New("numbering requires a transaction")

var _ corenumerator.Store = (*Store)(nil)

type seriesRow struct {
	ID       id.ID  `db:"id"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
}

type prefixRow struct {
	SeriesID     id.ID               `db:"series_id"`
	DocumentType entity.DocumentType `db:"document_type"`
	Prefix       string              `db:"prefix"`
	NextNumber   int64               `db:"next_number"`
}

// Store implements numerator.Store.
type Store struct {
	txm *postgres.TxManager
}

// NewStore creates a numbering store.
func NewStore(txm *postgres.TxManager) *Store {
	return &Store{txm: txm}
}

// LoadForUpdate reads every series of the organization and locks their
// prefix rows until the transaction ends.
func (s *Store) LoadForUpdate(ctx context.Context, organizationID id.ID) (*corenumerator.Numbering, error) {
	if s.txm.GetTx(ctx) == nil {
		return nil, apperror.NewInternal(errNoTx)
	}
	querier := s.txm.GetQuerier(ctx)

	sql, args, err := postgres.Builder().
		Select("id", "name", "is_active").
		From(seriesTable).
		Where(squirrel.Eq{"organization_id": organizationID}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build series query: %w", err)
	}
	var series []seriesRow
	if err := pgxscan.Select(ctx, querier, &series, sql, args...); err != nil {
		return nil, fmt.Errorf("select series: %w", err)
	}
	if len(series) == 0 {
		return nil, apperror.NewNotFound("numbering series", organizationID.String())
	}

	ids := make([]id.ID, 0, len(series))
	for _, sr := range series {
		ids = append(ids, sr.ID)
	}
	sql, args, err = postgres.Builder().
		Select("series_id", "document_type", "prefix", "next_number").
		From(prefixesTable).
		Where(squirrel.Eq{"series_id": ids}).
		OrderBy("series_id", "document_type").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build prefix query: %w", err)
	}
	var prefixes []prefixRow
	if err := pgxscan.Select(ctx, querier, &prefixes, sql, args...); err != nil {
		return nil, fmt.Errorf("select prefixes: %w", err)
	}

	n := &corenumerator.Numbering{OrganizationID: organizationID}
	index := make(map[id.ID]int, len(series))
	for i, sr := range series {
		index[sr.ID] = i
		n.Series = append(n.Series, corenumerator.Series{
			ID:       sr.ID,
			Name:     sr.Name,
			IsActive: sr.IsActive,
			Prefixes: make(map[entity.DocumentType]corenumerator.Prefix),
		})
	}
	for _, p := range prefixes {
		n.Series[index[p.SeriesID]].Prefixes[p.DocumentType] = corenumerator.Prefix{
			Prefix:     p.Prefix,
			NextNumber: p.NextNumber,
		}
	}
	return n, nil
}

// SaveCounter stores the next counter value of one prefix.
func (s *Store) SaveCounter(ctx context.Context, organizationID, seriesID id.ID, docType entity.DocumentType, nextNumber int64) error {
	sql, args, err := postgres.Builder().
		Update(prefixesTable).
		Set("next_number", nextNumber).
		Where(squirrel.Eq{"series_id": seriesID, "document_type": string(docType)}).
		Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM "+seriesTable+" WHERE id = ? AND organization_id = ?)",
			seriesID, organizationID,
		)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("save counter: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("numbering prefix", string(docType))
	}
	return nil
}
