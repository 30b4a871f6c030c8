package posting_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/types"
	"salesledger/internal/domain/posting"
	"salesledger/internal/domain/registers/journal"
	"salesledger/internal/domain/registers/stock"
	"salesledger/internal/infrastructure/storage/memory"
)

// saleDoc sells qty of one item for amount.
type saleDoc struct {
	id, org id.ID
	number  string
	itemID  id.ID
	qty     types.Quantity
	amount  string
}

func (d *saleDoc) GetID() id.ID { return d.id }
func (d *saleDoc) GetOrganizationID() id.ID { return d.org }
func (d *saleDoc) GetNumber() string { return d.number }
func (d *saleDoc) GetDocumentType() entity.DocumentType { return entity.DocumentTypeInvoice }

func (d *saleDoc) GenerateMovements(context.Context) (*posting.MovementSet, error) {
	src := posting.Source(d)
	set := posting.NewMovementSet()
	set.AddJournal(journal.BuildPayment(src, "", id.New(), id.New(), types.MustMoney(d.amount))...)
	if d.qty > 0 {
		set.AddStock(stock.NewMovement(src, stock.ActionSale, stock.ItemPrice{ItemID: d.itemID}, d.qty, true))
	}
	return set, nil
}

type recorder struct {
	mu   sync.Mutex
	rows map[string]int
}

func (r *recorder) LedgerRowsPosted(ledger, _ string, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[ledger] += rows
}

type env struct {
	engine  *posting.Engine
	journal *memory.JournalRepo
	stock   *memory.StockRepo
	stockSv *stock.Service
}

func newEnv() env {
	jr, sr := memory.NewJournalRepo(), memory.NewStockRepo()
	stockSvc := stock.NewService(sr)
	return env{
		engine:  posting.NewEngine(memory.NewTxManager(), journal.NewService(jr), stockSvc),
		journal: jr,
		stock:   sr,
		stockSv: stockSvc,
	}
}

func (e env) seed(t *testing.T, orgID, itemID id.ID, qty int64) {
	src := entity.MovementSource{OrganizationID: orgID, OperationID: id.New(), DocumentType: entity.DocumentTypeCreditNote}
	require.NoError(t, e.stockSv.PostMovements(context.Background(), src.OperationID, []entity.StockMovement{
		stock.NewMovement(src, stock.ActionReturn, stock.ItemPrice{ItemID: itemID}, types.NewQuantity(qty), false),
	}))
}

func TestPost_WritesBothLedgers(t *testing.T) {
	e := newEnv()
	rec := &recorder{rows: map[string]int{}}
	e.engine.WithRecorder(rec)
	doc := &saleDoc{id: id.New(), org: id.New(), number: "INV-1", itemID: id.New(), qty: types.NewQuantity(2), amount: "50"}
	e.seed(t, doc.org, doc.itemID, 5)

	saved := false
	set, err := e.engine.Post(context.Background(), doc, posting.Options{}, func(context.Context) error {
		saved = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Len(t, set.Journal, 2)
	assert.Len(t, set.Stock, 1)
	assert.Equal(t, 2, e.journal.Len())
	assert.Equal(t, 2, e.stock.Len())
	assert.Equal(t, map[string]int{"journal": 2, "stock": 1}, rec.rows)
}

func TestPost_RepostReplacesRows(t *testing.T) {
	e := newEnv()
	doc := &saleDoc{id: id.New(), org: id.New(), number: "INV-1", itemID: id.New(), qty: types.NewQuantity(2), amount: "50"}
	e.seed(t, doc.org, doc.itemID, 2)

	_, err := e.engine.Post(context.Background(), doc, posting.Options{}, nil)
	require.NoError(t, err)

	// the old outgoing rows are reversed before availability is checked
	_, err = e.engine.Post(context.Background(), doc, posting.Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, e.journal.Len())
	assert.Equal(t, 2, e.stock.Len())
}

func TestPost_InsufficientStockRollsBackEverything(t *testing.T) {
	e := newEnv()
	doc := &saleDoc{id: id.New(), org: id.New(), number: "INV-1", itemID: id.New(), qty: types.NewQuantity(3), amount: "50"}
	e.seed(t, doc.org, doc.itemID, 1)

	saved := memory.NewDocumentStore[*savedDoc]("invoice")
	_, err := e.engine.Post(context.Background(), doc, posting.Options{}, func(ctx context.Context) error {
		return saved.Create(ctx, &savedDoc{ID: doc.id, Org: doc.org})
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	assert.Zero(t, e.journal.Len())
	assert.Equal(t, 1, e.stock.Len())
	_, err = saved.Get(context.Background(), doc.org, doc.id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPost_AllowNegativeStock(t *testing.T) {
	e := newEnv()
	doc := &saleDoc{id: id.New(), org: id.New(), number: "INV-1", itemID: id.New(), qty: types.NewQuantity(3), amount: "50"}

	_, err := e.engine.Post(context.Background(), doc, posting.Options{AllowNegativeStock: true}, nil)
	require.NoError(t, err)

	current, err := e.stockSv.CurrentStock(context.Background(), doc.org, []id.ID{doc.itemID})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(-3), current[doc.itemID])
}

func TestUnpost_LeavesNoRows(t *testing.T) {
	e := newEnv()
	doc := &saleDoc{id: id.New(), org: id.New(), number: "INV-1", itemID: id.New(), amount: "75"}

	_, err := e.engine.Post(context.Background(), doc, posting.Options{}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, e.journal.Len())

	removed := false
	require.NoError(t, e.engine.Unpost(context.Background(), doc, func(context.Context) error {
		removed = true
		return nil
	}))
	assert.True(t, removed)
	assert.Zero(t, e.journal.Len())
}

// savedDoc is a minimal stored record for rollback checks.
type savedDoc struct {
	ID      id.ID
	Org     id.ID
	Version int
}

func (d *savedDoc) GetID() id.ID { return d.ID }
func (d *savedDoc) GetOrganizationID() id.ID { return d.Org }
func (d *savedDoc) GetVersion() int { return d.Version }
func (d *savedDoc) Touch() { d.Version++ }
func (d *savedDoc) Clone() *savedDoc {
	c := *d
	return &c
}
