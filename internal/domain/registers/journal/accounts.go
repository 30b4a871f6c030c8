package journal

import (
	"fmt"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/domain/refdata"
)

// Resolution is the outcome of ResolveAccounts: either every requested kind
// is in Accounts, or Missing names the kinds that are not configured.
type Resolution struct {
	Accounts map[refdata.AccountKind]id.ID
	Missing  []refdata.AccountKind
}

// Get returns the account resolved for kind, or the nil ID.
func (r Resolution) Get(kind refdata.AccountKind) id.ID {
	return r.Accounts[kind]
}

// Err reports every missing account in one validation error.
func (r Resolution) Err() error {
	if len(r.Missing) == 0 {
		return nil
	}
	msgs := make([]string, len(r.Missing))
	for i, kind := range r.Missing {
		msgs[i] = fmt.Sprintf("default %s account is not configured for the organization", kind)
	}
	return apperror.NewValidationList(msgs)
}

// ResolveAccounts looks up the organization's default account of every kind.
// It never stops at the first missing kind.
func ResolveAccounts(org *refdata.Organization, kinds []refdata.AccountKind) Resolution {
	res := Resolution{Accounts: make(map[refdata.AccountKind]id.ID, len(kinds))}
	seen := make(map[refdata.AccountKind]bool, len(kinds))
	for _, kind := range kinds {
		if seen[kind] {
			continue
		}
		seen[kind] = true

		var accountID id.ID
		if org != nil {
			accountID = org.DefaultAccounts[kind]
		}
		if id.IsNil(accountID) {
			res.Missing = append(res.Missing, kind)
			continue
		}
		res.Accounts[kind] = accountID
	}
	return res
}
