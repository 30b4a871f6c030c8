package refdata

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"salesledger/internal/core/id"
)

// Request lists the reference data one operation needs.
type Request struct {
	OrganizationID id.ID
	CounterpartyID id.ID // nil skips the counterparty read
	ItemIDs        []id.ID
	AccountIDs     []id.ID
}

// Snapshot is the consistent read-only view used for one operation.
type Snapshot struct {
	Organization *Organization
	Counterparty *Counterparty
	Items        map[id.ID]*Item
	Accounts     map[id.ID]*Account
}

// Load issues the reads of req concurrently. A missing organization or
// counterparty fails the load; unknown items and accounts are left out of the
// maps for the caller to report.
func Load(ctx context.Context, gw Gateway, req Request) (*Snapshot, error) {
	snap := &Snapshot{
		Items:    map[id.ID]*Item{},
		Accounts: map[id.ID]*Account{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		org, err := gw.GetOrganization(gctx, req.OrganizationID)
		if err != nil {
			return err
		}
		snap.Organization = org
		return nil
	})
	if !id.IsNil(req.CounterpartyID) {
		g.Go(func() error {
			cp, err := gw.GetCounterparty(gctx, req.OrganizationID, req.CounterpartyID)
			if err != nil {
				return err
			}
			snap.Counterparty = cp
			return nil
		})
	}
	if itemIDs := id.Unique(req.ItemIDs); len(itemIDs) > 0 {
		g.Go(func() error {
			items, err := gw.GetItems(gctx, req.OrganizationID, itemIDs)
			if err != nil {
				return fmt.Errorf("get items: %w", err)
			}
			snap.Items = items
			return nil
		})
	}
	if accountIDs := id.Unique(req.AccountIDs); len(accountIDs) > 0 {
		g.Go(func() error {
			accounts, err := gw.GetAccounts(gctx, req.OrganizationID, accountIDs)
			if err != nil {
				return fmt.Errorf("get accounts: %w", err)
			}
			snap.Accounts = accounts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// MissingItems returns the ids in itemIDs that the snapshot does not hold.
func (s *Snapshot) MissingItems(itemIDs []id.ID) []id.ID {
	var missing []id.ID
	for _, itemID := range id.Unique(itemIDs) {
		if _, ok := s.Items[itemID]; !ok {
			missing = append(missing, itemID)
		}
	}
	return missing
}

// HasAccount reports whether the chart of accounts contains accountID.
func (s *Snapshot) HasAccount(accountID id.ID) bool {
	_, ok := s.Accounts[accountID]
	return ok
}
