package memory

import (
	"context"
	"sync"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/refdata"
)

var _ refdata.Gateway = (*RefData)(nil)

// RefData is a seeded, read-only reference data gateway.
type RefData struct {
	mu             sync.RWMutex
	organizations  map[id.ID]*refdata.Organization
	counterparties map[id.ID]*refdata.Counterparty
	items          map[id.ID]*refdata.Item
	accounts       map[id.ID]*refdata.Account
}

// NewRefData creates an empty gateway.
func NewRefData() *RefData {
	return &RefData{
		organizations:  make(map[id.ID]*refdata.Organization),
		counterparties: make(map[id.ID]*refdata.Counterparty),
		items:          make(map[id.ID]*refdata.Item),
		accounts:       make(map[id.ID]*refdata.Account),
	}
}

func (r *RefData) PutOrganization(o *refdata.Organization) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.organizations[o.ID] = o
}

func (r *RefData) PutCounterparty(c *refdata.Counterparty) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counterparties[c.ID] = c
}

func (r *RefData) PutItem(it *refdata.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[it.ID] = it
}

func (r *RefData) PutAccount(a *refdata.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = a
}

func (r *RefData) GetOrganization(_ context.Context, organizationID id.ID) (*refdata.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.organizations[organizationID]
	if !ok {
		return nil, apperror.NewNotFound("organization", organizationID.String())
	}
	return o, nil
}

func (r *RefData) GetCounterparty(_ context.Context, organizationID, counterpartyID id.ID) (*refdata.Counterparty, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.counterparties[counterpartyID]
	if !ok || c.OrganizationID != organizationID {
		return nil, apperror.NewNotFound("counterparty", counterpartyID.String())
	}
	return c, nil
}

func (r *RefData) GetItems(_ context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]*refdata.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[id.ID]*refdata.Item, len(itemIDs))
	for _, itemID := range itemIDs {
		if it, ok := r.items[itemID]; ok && it.OrganizationID == organizationID {
			out[itemID] = it
		}
	}
	return out, nil
}

func (r *RefData) GetAccounts(_ context.Context, organizationID id.ID, accountIDs []id.ID) (map[id.ID]*refdata.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[id.ID]*refdata.Account, len(accountIDs))
	for _, accountID := range accountIDs {
		if a, ok := r.accounts[accountID]; ok && a.OrganizationID == organizationID {
			out[accountID] = a
		}
	}
	return out, nil
}
