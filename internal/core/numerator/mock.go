package numerator

import (
	"context"
	"fmt"
	"sync"

	"salesledger/internal/core/entity"
	"salesledger/internal/core/id"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid storage dependencies.
type MockGenerator struct {
	NextFunc func(ctx context.Context, organizationID id.ID, docType entity.DocumentType) (string, error)

	mu      sync.Mutex
	counter int64
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, organizationID id.ID, docType entity.DocumentType) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, organizationID, docType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("MOCK-%05d", m.counter), nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
