package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	corenum "salesledger/internal/core/numerator"
	"salesledger/internal/infrastructure/lock"
	"salesledger/internal/infrastructure/storage/memory"
)

type countingRecorder struct {
	mu    sync.Mutex
	count map[string]int
}

func (r *countingRecorder) NumberAllocated(docType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == nil {
		r.count = map[string]int{}
	}
	r.count[docType]++
}

func setup(t *testing.T) (*Service, *memory.TxManager, id.ID) {
	t.Helper()
	orgID := id.New()
	store := memory.NewNumberingStore()
	store.Put(&corenum.Numbering{
		OrganizationID: orgID,
		Series: []corenum.Series{{
			ID:       id.New(),
			Name:     "default",
			IsActive: true,
			Prefixes: map[entity.DocumentType]corenum.Prefix{
				entity.DocumentTypeInvoice: {Prefix: "INV-", NextNumber: 1},
			},
		}},
	})
	return New(store, lock.NewLocal()), memory.NewTxManager(), orgID
}

func next(t *testing.T, svc *Service, txm *memory.TxManager, orgID id.ID) string {
	t.Helper()
	var number string
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		var err error
		number, err = svc.Next(ctx, orgID, entity.DocumentTypeInvoice)
		return err
	})
	require.NoError(t, err)
	return number
}

func TestNext_Sequential(t *testing.T) {
	svc, txm, orgID := setup(t)
	rec := &countingRecorder{}
	svc.WithRecorder(rec)

	assert.Equal(t, "INV-1", next(t, svc, txm, orgID))
	assert.Equal(t, "INV-2", next(t, svc, txm, orgID))
	assert.Equal(t, 2, rec.count["invoice"])
}

func TestNext_RollbackRestoresCounter(t *testing.T) {
	svc, txm, orgID := setup(t)
	assert.Equal(t, "INV-1", next(t, svc, txm, orgID))

	boom := errors.New("save failed")
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		number, err := svc.Next(ctx, orgID, entity.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, "INV-2", number)
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, "INV-2", next(t, svc, txm, orgID))
}

func TestNext_ConcurrentUnique(t *testing.T) {
	svc, txm, orgID := setup(t)

	const n = 50
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
				number, err := svc.Next(ctx, orgID, entity.DocumentTypeInvoice)
				if err != nil {
					return err
				}
				mu.Lock()
				seen[number] = true
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
	assert.True(t, seen["INV-50"])
}

func TestNext_UnknownOrganization(t *testing.T) {
	svc, txm, _ := setup(t)
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := svc.Next(ctx, id.New(), entity.DocumentTypeInvoice)
		return err
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestNext_MissingPrefix(t *testing.T) {
	svc, txm, orgID := setup(t)
	err := txm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		_, err := svc.Next(ctx, orgID, entity.DocumentTypeQuote)
		return err
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestNext_NilService(t *testing.T) {
	var svc *Service
	_, err := svc.Next(context.Background(), id.New(), entity.DocumentTypeInvoice)
	assert.Error(t, err)
}
