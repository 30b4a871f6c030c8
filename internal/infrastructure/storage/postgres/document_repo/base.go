// Package document_repo provides the PostgreSQL repository shared by every
// document type.
//
// A document is one row of sales_documents: the filterable header fields
// as columns and the full document as a JSONB payload. Priced lines are
// projected into sales_document_lines for reporting and line references.
package document_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/domain"
	"salesledger/internal/domain/documents"
	"salesledger/internal/infrastructure/storage/postgres"
)

const (
	documentsTable = "sales_documents"
	linesTable     = "sales_document_lines"
)

// Record is a document the repository can store.
type Record interface {
	GetID() id.ID
	GetOrganizationID() id.ID
	GetNumber() string
	GetDate() time.Time
	GetStatus() string
	GetCounterpartyID() id.ID
	GetVersion() int
	Touch()
}

// lineHolder is implemented by documents with priced lines.
type lineHolder interface {
	GetLines() []documents.Line
}

// row is the stored form of a document.
type row struct {
	ID             id.ID           `db:"id"`
	OrganizationID id.ID           `db:"organization_id"`
	DocumentType   string          `db:"document_type"`
	Number         string          `db:"number"`
	Date           time.Time       `db:"date"`
	Status         string          `db:"status"`
	CounterpartyID id.ID           `db:"counterparty_id"`
	Version        int             `db:"version"`
	Payload        json.RawMessage `db:"payload"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

// Repo stores one document type.
type Repo[T Record] struct {
	txm     *postgres.TxManager
	docType entity.DocumentType
	newFn   func() T
}

// NewRepo creates a repository for docType; newFn returns an empty document
// to decode into.
func NewRepo[T Record](txm *postgres.TxManager, docType entity.DocumentType, newFn func() T) *Repo[T] {
	return &Repo[T]{txm: txm, docType: docType, newFn: newFn}
}

func (r *Repo[T]) toRow(doc T) (row, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return row{}, fmt.Errorf("marshal %s: %w", r.docType, err)
	}
	return row{
		ID:             doc.GetID(),
		OrganizationID: doc.GetOrganizationID(),
		DocumentType:   string(r.docType),
		Number:         doc.GetNumber(),
		Date:           doc.GetDate(),
		Status:         doc.GetStatus(),
		CounterpartyID: doc.GetCounterpartyID(),
		Version:        doc.GetVersion(),
		Payload:        payload,
		UpdatedAt:      time.Now().UTC(),
	}, nil
}

func (r *Repo[T]) fromRow(rw row) (T, error) {
	doc := r.newFn()
	if err := json.Unmarshal(rw.Payload, doc); err != nil {
		var zero T
		return zero, fmt.Errorf("unmarshal %s %s: %w", r.docType, rw.ID, err)
	}
	return doc, nil
}

// Create inserts a document and its lines.
func (r *Repo[T]) Create(ctx context.Context, doc T) error {
	rw, err := r.toRow(doc)
	if err != nil {
		return err
	}

	sql, args, err := postgres.Builder().
		Insert(documentsTable).
		SetMap(postgres.StructToMap(rw)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.docType, err)
	}
	return r.writeLines(ctx, doc, false)
}

// Get returns one document of the organization.
func (r *Repo[T]) Get(ctx context.Context, organizationID, docID id.ID) (T, error) {
	sql, args, err := r.selectRows().
		Where(squirrel.Eq{"id": docID, "organization_id": organizationID}).
		ToSql()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rw, sql, args...); err != nil {
		var zero T
		if pgxscan.NotFound(err) {
			return zero, apperror.NewNotFound(string(r.docType), docID.String())
		}
		return zero, fmt.Errorf("get %s: %w", r.docType, err)
	}
	return r.fromRow(rw)
}

// Update replaces a document when the stored version matches and bumps the
// version of doc.
func (r *Repo[T]) Update(ctx context.Context, doc T) error {
	version := doc.GetVersion()
	doc.Touch()

	rw, err := r.toRow(doc)
	if err != nil {
		return err
	}

	sql, args, err := postgres.Builder().
		Update(documentsTable).
		Set("number", rw.Number).
		Set("date", rw.Date).
		Set("status", rw.Status).
		Set("counterparty_id", rw.CounterpartyID).
		Set("version", rw.Version).
		Set("payload", rw.Payload).
		Set("updated_at", rw.UpdatedAt).
		Where(squirrel.Eq{
			"id":              rw.ID,
			"organization_id": rw.OrganizationID,
			"document_type":   rw.DocumentType,
			"version":         version,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.docType, err)
	}
	if result.RowsAffected() == 0 {
		return r.missingOrStale(ctx, rw.OrganizationID, rw.ID)
	}
	return r.writeLines(ctx, doc, true)
}

// Delete removes a document; its lines cascade.
func (r *Repo[T]) Delete(ctx context.Context, organizationID, docID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(documentsTable).
		Where(squirrel.Eq{"id": docID, "organization_id": organizationID, "document_type": string(r.docType)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.docType, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(string(r.docType), docID.String())
	}
	return nil
}

// List pages through the organization's documents, newest first.
func (r *Repo[T]) List(ctx context.Context, organizationID id.ID, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  []T{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := applyFilter(r.selectRows().Where(squirrel.Eq{"organization_id": organizationID}), filter)

	countSQL, countArgs, err := postgres.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.docType, err)
	}

	q = q.OrderBy("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.docType, err)
	}
	for _, rw := range rows {
		doc, err := r.fromRow(rw)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, doc)
	}
	return result, nil
}

func (r *Repo[T]) selectRows() squirrel.SelectBuilder {
	return postgres.Builder().
		Select(postgres.ExtractDBColumns[row]()...).
		From(documentsTable).
		Where(squirrel.Eq{"document_type": string(r.docType)})
}

func applyFilter(q squirrel.SelectBuilder, f domain.ListFilter) squirrel.SelectBuilder {
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + f.Search + "%"})
	}
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"status": f.Status})
	}
	if f.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *f.CounterpartyID})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
	}
	return q
}

func (r *Repo[T]) missingOrStale(ctx context.Context, organizationID, docID id.ID) error {
	var exists bool
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+documentsTable+" WHERE id = $1 AND organization_id = $2)",
		docID, organizationID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check %s: %w", r.docType, err)
	}
	if !exists {
		return apperror.NewNotFound(string(r.docType), docID.String())
	}
	return apperror.NewConcurrentModification(string(r.docType), docID.String())
}

var lineColumns = []string{
	"line_id", "document_id", "organization_id", "line_no", "item_id", "quantity",
	"unit_price", "source_line_id", "pre_tax_amount", "tax_amount", "line_total",
}

// writeLines replaces the line projection of doc in one batch.
func (r *Repo[T]) writeLines(ctx context.Context, doc T, replace bool) error {
	holder, ok := any(doc).(lineHolder)
	if !ok {
		return nil
	}

	var queries []postgres.BatchQuery
	if replace {
		queries = append(queries, postgres.BatchQuery{
			SQL:  "DELETE FROM " + linesTable + " WHERE document_id = $1",
			Args: []any{doc.GetID()},
		})
	}
	for _, l := range holder.GetLines() {
		sql, args, err := postgres.Builder().
			Insert(linesTable).
			Columns(lineColumns...).
			Values(
				l.LineID, doc.GetID(), doc.GetOrganizationID(), l.LineNo, l.ItemID, l.Quantity,
				l.UnitPrice, l.SourceLineID, l.PreTaxAmount, l.TaxAmount, l.LineTotal,
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("build line insert: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}
	if len(queries) == 0 {
		return nil
	}
	if err := r.txm.ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("write %s lines: %w", r.docType, err)
	}
	return nil
}
