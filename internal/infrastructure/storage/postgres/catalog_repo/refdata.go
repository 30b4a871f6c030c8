// Package catalog_repo reads reference data (organizations, counterparties,
// items and accounts) from PostgreSQL.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/refdata"
	"salesledger/internal/infrastructure/storage/postgres"
)

const (
	organizationsTable  = "cat_organizations"
	counterpartiesTable = "cat_counterparties"
	itemsTable          = "cat_items"
	accountsTable       = "cat_accounts"
)

var _ refdata.Gateway = (*RefDataRepo)(nil)

// RefDataRepo implements refdata.Gateway.
type RefDataRepo struct {
	txm *postgres.TxManager
}

// NewRefDataRepo creates the reference data repository.
func NewRefDataRepo(txm *postgres.TxManager) *RefDataRepo {
	return &RefDataRepo{txm: txm}
}

// GetOrganization returns an organization with its default accounts.
func (r *RefDataRepo) GetOrganization(ctx context.Context, organizationID id.ID) (*refdata.Organization, error) {
	q := postgres.Builder().
		Select(postgres.ExtractDBColumns[refdata.Organization]()...).
		From(organizationsTable).
		Where(squirrel.Eq{"id": organizationID})

	var org refdata.Organization
	if err := r.getOne(ctx, q, &org); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("organization", organizationID.String())
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}

// GetCounterparty returns a counterparty of the organization.
func (r *RefDataRepo) GetCounterparty(ctx context.Context, organizationID, counterpartyID id.ID) (*refdata.Counterparty, error) {
	q := postgres.Builder().
		Select(postgres.ExtractDBColumns[refdata.Counterparty]()...).
		From(counterpartiesTable).
		Where(squirrel.Eq{"id": counterpartyID, "organization_id": organizationID})

	var cp refdata.Counterparty
	if err := r.getOne(ctx, q, &cp); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("counterparty", counterpartyID.String())
		}
		return nil, fmt.Errorf("get counterparty: %w", err)
	}
	return &cp, nil
}

// GetItems returns the known items among itemIDs.
func (r *RefDataRepo) GetItems(ctx context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]*refdata.Item, error) {
	out := make(map[id.ID]*refdata.Item, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	q := postgres.Builder().
		Select(postgres.ExtractDBColumns[refdata.Item]()...).
		From(itemsTable).
		Where(squirrel.Eq{"id": itemIDs, "organization_id": organizationID})

	var items []*refdata.Item
	if err := r.selectAll(ctx, q, &items); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// GetAccounts returns the known accounts among accountIDs.
func (r *RefDataRepo) GetAccounts(ctx context.Context, organizationID id.ID, accountIDs []id.ID) (map[id.ID]*refdata.Account, error) {
	out := make(map[id.ID]*refdata.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}

	q := postgres.Builder().
		Select(postgres.ExtractDBColumns[refdata.Account]()...).
		From(accountsTable).
		Where(squirrel.Eq{"id": accountIDs, "organization_id": organizationID})

	var accounts []*refdata.Account
	if err := r.selectAll(ctx, q, &accounts); err != nil {
		return nil, fmt.Errorf("get accounts: %w", err)
	}
	for _, a := range accounts {
		out[a.ID] = a
	}
	return out, nil
}

func (r *RefDataRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, dst any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Get(ctx, r.txm.GetQuerier(ctx), dst, sql, args...)
}

func (r *RefDataRepo) selectAll(ctx context.Context, q squirrel.SelectBuilder, dst any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, r.txm.GetQuerier(ctx), dst, sql, args...)
}
