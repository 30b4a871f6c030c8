package refdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
)

type stubGateway struct {
	org      *Organization
	cp       *Counterparty
	items    map[id.ID]*Item
	accounts map[id.ID]*Account
}

func (s *stubGateway) GetOrganization(_ context.Context, orgID id.ID) (*Organization, error) {
	if s.org == nil || s.org.ID != orgID {
		return nil, apperror.NewNotFound("organization", orgID.String())
	}
	return s.org, nil
}

func (s *stubGateway) GetCounterparty(_ context.Context, _ id.ID, cpID id.ID) (*Counterparty, error) {
	if s.cp == nil || s.cp.ID != cpID {
		return nil, apperror.NewNotFound("counterparty", cpID.String())
	}
	return s.cp, nil
}

func (s *stubGateway) GetItems(_ context.Context, _ id.ID, ids []id.ID) (map[id.ID]*Item, error) {
	out := map[id.ID]*Item{}
	for _, itemID := range ids {
		if it, ok := s.items[itemID]; ok {
			out[itemID] = it
		}
	}
	return out, nil
}

func (s *stubGateway) GetAccounts(_ context.Context, _ id.ID, ids []id.ID) (map[id.ID]*Account, error) {
	out := map[id.ID]*Account{}
	for _, accID := range ids {
		if a, ok := s.accounts[accID]; ok {
			out[accID] = a
		}
	}
	return out, nil
}

func TestLoad_ReadsEverything(t *testing.T) {
	org := &Organization{ID: id.New(), HomeRegion: "KA"}
	cp := &Counterparty{ID: id.New(), OrganizationID: org.ID, TaxClassification: TaxClassificationGST}
	item := &Item{ID: id.New(), OrganizationID: org.ID}
	acc := &Account{ID: id.New(), OrganizationID: org.ID}
	gw := &stubGateway{
		org:      org,
		cp:       cp,
		items:    map[id.ID]*Item{item.ID: item},
		accounts: map[id.ID]*Account{acc.ID: acc},
	}

	unknown := id.New()
	snap, err := Load(context.Background(), gw, Request{
		OrganizationID: org.ID,
		CounterpartyID: cp.ID,
		ItemIDs:        []id.ID{item.ID, item.ID, unknown},
		AccountIDs:     []id.ID{acc.ID},
	})
	require.NoError(t, err)

	assert.Same(t, org, snap.Organization)
	assert.Same(t, cp, snap.Counterparty)
	assert.Len(t, snap.Items, 1)
	assert.True(t, snap.HasAccount(acc.ID))
	assert.Equal(t, []id.ID{unknown}, snap.MissingItems([]id.ID{item.ID, unknown}))
}

func TestLoad_MissingOrganization(t *testing.T) {
	_, err := Load(context.Background(), &stubGateway{}, Request{OrganizationID: id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestLoad_MissingCounterparty(t *testing.T) {
	org := &Organization{ID: id.New()}
	_, err := Load(context.Background(), &stubGateway{org: org}, Request{
		OrganizationID: org.ID,
		CounterpartyID: id.New(),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestLoad_SkipsCounterpartyWhenNil(t *testing.T) {
	org := &Organization{ID: id.New()}
	snap, err := Load(context.Background(), &stubGateway{org: org}, Request{OrganizationID: org.ID})
	require.NoError(t, err)
	assert.Nil(t, snap.Counterparty)
	assert.Empty(t, snap.Items)
}
