package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/poiesic/packvault/catalog"
	"github.com/poiesic/packvault/core"
)

// MockCatalog is a scripted catalog that is safe for concurrent use.
type MockCatalog struct {
	// FetchFunc is called by Fetch if set.
	// If nil, Fetch answers from the records added with Add.
	FetchFunc func(ctx context.Context, ref core.ComponentReference) (*core.ExternalRecord, error)

	name      string
	mu        sync.RWMutex
	records   map[core.ComponentReference]core.ExternalRecord
	callCount atomic.Int64
}

// NewMockCatalog creates an empty catalog called name.
func NewMockCatalog(name string) *MockCatalog {
	return &MockCatalog{
		name:    name,
		records: make(map[core.ComponentReference]core.ExternalRecord),
	}
}

// Add registers a record, keyed by its project and file id.
func (m *MockCatalog) Add(records ...core.ExternalRecord) *MockCatalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[core.ComponentReference{ProjectID: r.ProjectID, FileID: r.FileID}] = r
	}
	return m
}

// Name implements catalog.Catalog.
func (m *MockCatalog) Name() string {
	return m.name
}

// Fetch implements catalog.Catalog.
func (m *MockCatalog) Fetch(ctx context.Context, ref core.ComponentReference) (*core.ExternalRecord, error) {
	m.callCount.Add(1)

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, ref)
	}

	m.mu.RLock()
	r, ok := m.records[ref]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s project %s", catalog.ErrNotFound, m.name, ref.ProjectID)
	}
	if r.Source == "" {
		r.Source = m.name
	}
	return &r, nil
}

// CallCount returns the number of Fetch calls.
func (m *MockCatalog) CallCount() int {
	return int(m.callCount.Load())
}
