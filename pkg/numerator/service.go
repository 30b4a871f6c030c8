// Package numerator allocates document numbers from an organization's
// active numbering series.
package numerator

import (
	"context"
	"fmt"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
	corenum "salesledger/internal/core/numerator"
	"salesledger/internal/infrastructure/lock"
)

// Recorder counts allocated numbers. Optional.
type Recorder interface {
	NumberAllocated(docType string)
}

// Service allocates numbers under a per-organization lock, then advances
// and saves the counter inside the caller's transaction. The store's row
// lock keeps the counter held until that transaction ends.
type Service struct {
	store    corenum.Store
	locker   lock.Locker
	recorder Recorder
}

// New creates a numbering service.
func New(store corenum.Store, locker lock.Locker) *Service {
	return &Service{store: store, locker: locker}
}

// WithRecorder sets the allocation recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// Next implements numerator.Generator.
func (s *Service) Next(ctx context.Context, organizationID id.ID, docType entity.DocumentType) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	unlock, err := s.locker.Lock(ctx, lockKey(organizationID))
	if err != nil {
		return "", fmt.Errorf("numbering lock: %w", err)
	}
	defer unlock()

	n, err := s.store.LoadForUpdate(ctx, organizationID)
	if err != nil {
		return "", err
	}

	number, err := corenum.Allocate(n, docType)
	if err != nil {
		return "", err
	}

	series := n.ActiveSeries()
	next := series.Prefixes[docType].NextNumber
	if err := s.store.SaveCounter(ctx, organizationID, series.ID, docType, next); err != nil {
		return "", fmt.Errorf("save counter: %w", err)
	}

	if s.recorder != nil {
		s.recorder.NumberAllocated(string(docType))
	}
	return number, nil
}

func lockKey(organizationID id.ID) string {
	return "numbering:" + organizationID.String()
}

var _ corenum.Generator = (*Service)(nil)
