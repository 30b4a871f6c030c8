package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"

	"salesledger/internal/core/entity"
	"salesledger/internal/infrastructure/storage/postgres"
)

const onConflictDoNothing = "ON CONFLICT DO NOTHING"

// SeedPostgres writes ds in one transaction. Rows that already exist are left
// untouched, so seeding the same dataset twice is harmless.
func SeedPostgres(ctx context.Context, txm *postgres.TxManager, ds *Dataset) error {
	queries, err := seedQueries(ds)
	if err != nil {
		return err
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return txm.ExecuteBatch(ctx, queries)
	})
}

// seedQueries returns the inserts for ds in foreign key order.
func seedQueries(ds *Dataset) ([]postgres.BatchQuery, error) {
	var queries []postgres.BatchQuery
	add := func(b squirrel.InsertBuilder) error {
		sql, args, err := b.Suffix(onConflictDoNothing).ToSql()
		if err != nil {
			return fmt.Errorf("build seed insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
		return nil
	}

	org := ds.Organization
	accounts, err := json.Marshal(org.DefaultAccounts)
	if err != nil {
		return nil, fmt.Errorf("marshal default accounts: %w", err)
	}
	if err := add(postgres.Builder().Insert("cat_organizations").
		Columns("id", "name", "home_region", "allow_negative_stock", "default_accounts").
		Values(org.ID, org.Name, org.HomeRegion, org.AllowNegativeStock, string(accounts))); err != nil {
		return nil, err
	}

	for _, a := range ds.Accounts {
		if err := add(postgres.Builder().Insert("cat_accounts").
			Columns("id", "organization_id", "code", "name").
			Values(a.ID, a.OrganizationID, a.Code, a.Name)); err != nil {
			return nil, err
		}
	}
	for _, c := range ds.Counterparties {
		if err := add(postgres.Builder().Insert("cat_counterparties").
			Columns("id", "organization_id", "name", "tax_classification", "region", "account_id").
			Values(c.ID, c.OrganizationID, c.Name, string(c.TaxClassification), c.Region, c.AccountID)); err != nil {
			return nil, err
		}
	}
	for _, it := range ds.Items {
		if err := add(postgres.Builder().Insert("cat_items").
			Columns("id", "organization_id", "name", "sale_price", "purchase_price", "track_stock", "sales_account_id").
			Values(it.ID, it.OrganizationID, it.Name, it.SalePrice, it.PurchasePrice, it.TrackStock, it.SalesAccountID)); err != nil {
			return nil, err
		}
	}

	if n := ds.Numbering; n != nil {
		for _, s := range n.Series {
			if err := add(postgres.Builder().Insert("numbering_series").
				Columns("id", "organization_id", "name", "is_active").
				Values(s.ID, n.OrganizationID, s.Name, s.IsActive)); err != nil {
				return nil, err
			}
			docTypes := make([]string, 0, len(s.Prefixes))
			for dt := range s.Prefixes {
				docTypes = append(docTypes, string(dt))
			}
			sort.Strings(docTypes)
			for _, dt := range docTypes {
				p := s.Prefixes[entity.DocumentType(dt)]
				if err := add(postgres.Builder().Insert("numbering_prefixes").
					Columns("series_id", "document_type", "prefix", "next_number").
					Values(s.ID, dt, p.Prefix, p.NextNumber)); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, m := range ds.OpeningStock {
		if err := add(postgres.Builder().Insert("reg_stock_movements").
			Columns(postgres.ExtractDBColumns[entity.StockMovement]()...).
			Values(
				m.LineID, m.OrganizationID, m.OperationID, string(m.DocumentType), m.DocumentNumber,
				m.Action, m.CreatedAt, m.ItemID, m.SalePrice, m.PurchasePrice,
				int64(m.DebitQuantity), int64(m.CreditQuantity),
			)); err != nil {
			return nil, err
		}
	}

	return queries, nil
}
