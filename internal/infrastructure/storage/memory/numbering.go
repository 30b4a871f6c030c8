package memory

import (
	"context"
	"sync"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	"salesledger/internal/core/numerator"
)

var _ numerator.Store = (*NumberingStore)(nil)

// NumberingStore keeps numbering configurations per organization.
// Row locking is left to the numerator service's per-organization lock.
type NumberingStore struct {
	mu   sync.Mutex
	data map[id.ID]*numerator.Numbering
}

// NewNumberingStore creates an empty store.
func NewNumberingStore() *NumberingStore {
	return &NumberingStore{data: make(map[id.ID]*numerator.Numbering)}
}

// Put replaces the numbering configuration of an organization.
func (s *NumberingStore) Put(n *numerator.Numbering) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[n.OrganizationID] = cloneNumbering(n)
}

func (s *NumberingStore) LoadForUpdate(_ context.Context, organizationID id.ID) (*numerator.Numbering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.data[organizationID]
	if !ok {
		return nil, apperror.NewNotFound("numbering series", organizationID.String())
	}
	return cloneNumbering(n), nil
}

func (s *NumberingStore) SaveCounter(ctx context.Context, organizationID, seriesID id.ID, docType entity.DocumentType, nextNumber int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.data[organizationID]
	if !ok {
		return apperror.NewNotFound("numbering series", organizationID.String())
	}
	for i := range n.Series {
		if n.Series[i].ID != seriesID {
			continue
		}
		prefix, ok := n.Series[i].Prefixes[docType]
		if !ok {
			return apperror.NewNotFound("numbering prefix", string(docType))
		}
		prev := prefix.NextNumber
		prefix.NextNumber = nextNumber
		n.Series[i].Prefixes[docType] = prefix

		series := &n.Series[i]
		onRollback(ctx, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			p := series.Prefixes[docType]
			p.NextNumber = prev
			series.Prefixes[docType] = p
		})
		return nil
	}
	return apperror.NewNotFound("numbering series", seriesID.String())
}

func cloneNumbering(n *numerator.Numbering) *numerator.Numbering {
	out := &numerator.Numbering{
		OrganizationID: n.OrganizationID,
		Series:         make([]numerator.Series, len(n.Series)),
	}
	for i, s := range n.Series {
		prefixes := make(map[entity.DocumentType]numerator.Prefix, len(s.Prefixes))
		for k, v := range s.Prefixes {
			prefixes[k] = v
		}
		s.Prefixes = prefixes
		out.Series[i] = s
	}
	return out
}
