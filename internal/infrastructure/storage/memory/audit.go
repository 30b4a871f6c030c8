package memory

import (
	"context"
	"sync"

	"salesledger/internal/core/id"
	"salesledger/internal/domain/audit"
)

var _ audit.Repository = (*AuditRepo)(nil)

// AuditRepo keeps audit entries in insertion order.
type AuditRepo struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

// NewAuditRepo creates an empty audit log.
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) Insert(ctx context.Context, entry audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)

	entryID := entry.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i := range r.entries {
			if r.entries[i].ID == entryID {
				r.entries = append(r.entries[:i], r.entries[i+1:]...)
				return
			}
		}
	})
	return nil
}

// ListByEntity returns entries newest first.
func (r *AuditRepo) ListByEntity(_ context.Context, organizationID id.ID, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []audit.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.OrganizationID != organizationID || e.EntityType != entityType || e.EntityID != entityID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
