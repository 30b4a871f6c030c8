package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/id"
	"salesledger/internal/domain"
)

// Record is a document type the generic store can hold.
type Record[T any] interface {
	GetID() id.ID
	GetOrganizationID() id.ID
	GetVersion() int
	Touch()
	Clone() T
}

// DocumentStore is a generic map-backed document repository.
// Every read and write works on copies.
type DocumentStore[T Record[T]] struct {
	entity string
	mu     sync.RWMutex
	items  map[id.ID]T
	order  []id.ID
}

// NewDocumentStore creates a store; entity names the type in NotFound errors.
func NewDocumentStore[T Record[T]](entity string) *DocumentStore[T] {
	return &DocumentStore[T]{
		entity: entity,
		items:  make(map[id.ID]T),
	}
}

// Create inserts doc.
func (s *DocumentStore[T]) Create(ctx context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docID := doc.GetID()
	if _, exists := s.items[docID]; exists {
		return apperror.NewDuplicate(s.entity, "id", docID.String())
	}
	s.items[docID] = doc.Clone()
	s.order = append(s.order, docID)

	onRollback(ctx, func() { s.remove(docID) })
	return nil
}

// Get returns a copy of the document.
func (s *DocumentStore[T]) Get(_ context.Context, organizationID, docID id.ID) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.items[docID]
	if !ok || doc.GetOrganizationID() != organizationID {
		var zero T
		return zero, apperror.NewNotFound(s.entity, docID.String())
	}
	return doc.Clone(), nil
}

// Update replaces the stored document when versions match, then bumps the
// version of both copies.
func (s *DocumentStore[T]) Update(ctx context.Context, doc T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docID := doc.GetID()
	prev, ok := s.items[docID]
	if !ok || prev.GetOrganizationID() != doc.GetOrganizationID() {
		return apperror.NewNotFound(s.entity, docID.String())
	}
	if prev.GetVersion() != doc.GetVersion() {
		return apperror.NewConcurrentModification(s.entity, docID.String())
	}

	doc.Touch()
	s.items[docID] = doc.Clone()

	onRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items[docID] = prev
	})
	return nil
}

// Delete removes the document.
func (s *DocumentStore[T]) Delete(ctx context.Context, organizationID, docID id.ID) error {
	s.mu.Lock()
	prev, ok := s.items[docID]
	if !ok || prev.GetOrganizationID() != organizationID {
		s.mu.Unlock()
		return apperror.NewNotFound(s.entity, docID.String())
	}
	s.mu.Unlock()

	s.remove(docID)
	onRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items[docID] = prev
		s.order = append(s.order, docID)
	})
	return nil
}

func (s *DocumentStore[T]) remove(docID id.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, docID)
	for i, v := range s.order {
		if v == docID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Find returns copies of every document of the organization accepted by match.
func (s *DocumentStore[T]) Find(_ context.Context, organizationID id.ID, match func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, docID := range s.order {
		doc := s.items[docID]
		if doc.GetOrganizationID() != organizationID {
			continue
		}
		if match != nil && !match(doc) {
			continue
		}
		out = append(out, doc.Clone())
	}
	return out
}

// List pages through the organization's documents matching filter, newest first.
func (s *DocumentStore[T]) List(ctx context.Context, organizationID id.ID, filter domain.ListFilter) (domain.ListResult[T], error) {
	all := s.Find(ctx, organizationID, func(doc T) bool { return matches(doc, filter) })
	// ids are UUIDv7, so descending id order is newest first
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].GetID(), all[j].GetID()
		return a.String() > b.String()
	})

	result := domain.ListResult[T]{
		TotalCount: int64(len(all)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		Items:      []T{},
	}
	if filter.Offset >= len(all) {
		return result, nil
	}
	end := len(all)
	if filter.Limit > 0 && filter.Offset+filter.Limit < end {
		end = filter.Offset + filter.Limit
	}
	result.Items = all[filter.Offset:end]
	return result, nil
}

func matches(doc any, f domain.ListFilter) bool {
	if f.Search != "" {
		n, ok := doc.(interface{ GetNumber() string })
		if !ok || !strings.Contains(strings.ToLower(n.GetNumber()), strings.ToLower(f.Search)) {
			return false
		}
	}
	if f.Status != "" {
		st, ok := doc.(interface{ GetStatus() string })
		if !ok || st.GetStatus() != f.Status {
			return false
		}
	}
	if f.CounterpartyID != nil {
		cp, ok := doc.(interface{ GetCounterpartyID() id.ID })
		if !ok || cp.GetCounterpartyID() != *f.CounterpartyID {
			return false
		}
	}
	if f.DateFrom != nil || f.DateTo != nil {
		d, ok := doc.(interface{ GetDate() time.Time })
		if !ok {
			return false
		}
		date := d.GetDate()
		if f.DateFrom != nil && date.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && date.After(*f.DateTo) {
			return false
		}
	}
	return true
}
