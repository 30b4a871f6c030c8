package refdata

import (
	"context"

	"salesledger/internal/core/id"
)

// Gateway reads reference data. Implementations return apperror NotFound for
// a missing organization or counterparty. Batch lookups omit unknown ids.
type Gateway interface {
	GetOrganization(ctx context.Context, organizationID id.ID) (*Organization, error)
	GetCounterparty(ctx context.Context, organizationID, counterpartyID id.ID) (*Counterparty, error)
	GetItems(ctx context.Context, organizationID id.ID, itemIDs []id.ID) (map[id.ID]*Item, error)
	GetAccounts(ctx context.Context, organizationID id.ID, accountIDs []id.ID) (map[id.ID]*Account, error)
}
