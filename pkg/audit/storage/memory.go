package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"poincare-hq/poincare/pkg/audit"
)

// MemoryStorage is an in-memory audit.Storage. It is used in tests and
// when the ledger is enabled without a database path.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*audit.RunRecord
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string]*audit.RunRecord)}
}

// Store persists one run record.
func (m *MemoryStorage) Store(_ context.Context, record *audit.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	m.records[record.ID] = &copied
	return nil
}

// Query retrieves records matching the filters.
func (m *MemoryStorage) Query(_ context.Context, query *audit.Query) ([]*audit.RunRecord, error) {
	m.mu.RLock()
	matched := m.match(query)
	m.mu.RUnlock()

	ascending := strings.EqualFold(query.SortOrder, "asc")
	sort.Slice(matched, func(i, j int) bool {
		if ascending {
			return matched[i].StartedAt.Before(matched[j].StartedAt)
		}
		return matched[i].StartedAt.After(matched[j].StartedAt)
	})

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*audit.RunRecord{}, nil
		}
		matched = matched[query.Offset:]
	}

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Count returns the number of records matching the filters.
func (m *MemoryStorage) Count(_ context.Context, query *audit.Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.match(query))), nil
}

// Delete removes records matching the filters.
func (m *MemoryStorage) Delete(_ context.Context, query *audit.Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, record := range m.match(query) {
		delete(m.records, record.ID)
		deleted++
	}
	return deleted, nil
}

// Close is a no-op for in-memory storage.
func (m *MemoryStorage) Close() error {
	return nil
}

// match collects copies of the records passing the filters. Callers
// must hold at least a read lock.
func (m *MemoryStorage) match(query *audit.Query) []*audit.RunRecord {
	var idSet map[string]bool
	if len(query.IDs) > 0 {
		idSet = make(map[string]bool, len(query.IDs))
		for _, id := range query.IDs {
			idSet[id] = true
		}
	}

	matched := []*audit.RunRecord{}
	for _, record := range m.records {
		if idSet != nil && !idSet[record.ID] {
			continue
		}
		if query.StartTime != nil && record.StartedAt.Before(*query.StartTime) {
			continue
		}
		if query.EndTime != nil && record.StartedAt.After(*query.EndTime) {
			continue
		}
		if query.Operation != "" && record.Operation != query.Operation {
			continue
		}
		if query.SourcePath != "" && record.SourcePath != query.SourcePath {
			continue
		}
		if query.Success != nil && record.Success != *query.Success {
			continue
		}
		copied := *record
		matched = append(matched, &copied)
	}
	return matched
}
