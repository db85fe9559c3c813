// Package testhelpers provides shared test utilities for the signal engine.
package testhelpers

import (
	"context"
	"sync"
	"time"

	"github.com/talentradar/signal-engine/internal/domain"
)

// MockSignalStore implements the processor's SignalStore for testing.
type MockSignalStore struct {
	mu         sync.RWMutex
	Indexed    []*domain.Signal
	RecentKeys map[string]struct{}

	IndexErr  error
	RecentErr error
}

// NewMockSignalStore creates an empty mock signal store.
func NewMockSignalStore() *MockSignalStore {
	return &MockSignalStore{RecentKeys: make(map[string]struct{})}
}

// BulkIndexSignals records the signals it was asked to persist.
func (m *MockSignalStore) BulkIndexSignals(_ context.Context, signals []*domain.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IndexErr != nil {
		return m.IndexErr
	}
	m.Indexed = append(m.Indexed, signals...)
	return nil
}

// RecentDedupeKeys returns the configured recent-key set.
func (m *MockSignalStore) RecentDedupeKeys(_ context.Context, _ string, _ time.Duration) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.RecentErr != nil {
		return nil, m.RecentErr
	}
	keys := make(map[string]struct{}, len(m.RecentKeys))
	for k := range m.RecentKeys {
		keys[k] = struct{}{}
	}
	return keys, nil
}

// IndexedCount returns how many signals were persisted.
func (m *MockSignalStore) IndexedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Indexed)
}

// MockMetricStore implements both the ranker's MetricStore and the
// processor's MetricWriter for testing.
type MockMetricStore struct {
	mu       sync.RWMutex
	Rows     []domain.SourceRunMetric
	Inserted []*domain.SourceRunMetric

	ListErr   error
	InsertErr error
}

// NewMockMetricStore creates an empty mock metric store.
func NewMockMetricStore() *MockMetricStore {
	return &MockMetricStore{}
}

// ListSince returns the configured history rows.
func (m *MockMetricStore) ListSince(_ context.Context, _ string, _ domain.Region, _ time.Time, _ int) ([]domain.SourceRunMetric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	rows := make([]domain.SourceRunMetric, len(m.Rows))
	copy(rows, m.Rows)
	return rows, nil
}

// InsertBatch records the inserted run metrics.
func (m *MockMetricStore) InsertBatch(_ context.Context, metrics []*domain.SourceRunMetric) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Inserted = append(m.Inserted, metrics...)
	return nil
}

// InsertedMetrics returns the persisted run metrics.
func (m *MockMetricStore) InsertedMetrics() []*domain.SourceRunMetric {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.SourceRunMetric, len(m.Inserted))
	copy(out, m.Inserted)
	return out
}
