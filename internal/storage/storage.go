// Package storage implements the local key/value store each node keeps for
// the keys it holds, whether as primary owner or as a replica.
package storage

import (
	"sort"
	"sync"

	"chordring/internal/domain"
	"chordring/internal/logger"
)

// Store is the local key/value map a node maintains. Implementations do not
// distinguish primary entries from replicated ones.
type Store interface {
	Put(res domain.Resource)
	Get(id domain.ID) (domain.Resource, error)
	Delete(id domain.ID) error
	// Between returns every resource whose key lies in the half-open
	// interval (from, to], used for ownership scans and transfers.
	Between(from, to domain.ID) []domain.Resource
	All() []domain.Resource
	DebugLog()
}

// Memory is an in-memory Store. No persistence across restarts (by design,
// see the non-goals).
type Memory struct {
	lgr logger.Logger
	mu  sync.RWMutex
	data map[domain.ID]domain.Resource
}

// NewMemory builds an empty in-memory store.
func NewMemory(lgr logger.Logger) *Memory {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &Memory{lgr: lgr, data: make(map[domain.ID]domain.Resource)}
}

func (m *Memory) Put(res domain.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, existed := m.data[res.Key]
	m.data[res.Key] = res
	if existed {
		m.lgr.Debug("updated resource", logger.F("key", res.RawKey))
	} else {
		m.lgr.Debug("inserted resource", logger.F("key", res.RawKey))
	}
}

func (m *Memory) Get(id domain.ID) (domain.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.data[id]
	if !ok {
		return domain.Resource{}, domain.ErrResourceNotFound
	}
	return res, nil
}

func (m *Memory) Delete(id domain.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return domain.ErrResourceNotFound
	}
	delete(m.data, id)
	return nil
}

func (m *Memory) Between(from, to domain.ID) []domain.Resource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Resource
	for _, res := range m.data {
		if res.Key.Between(from, to) {
			out = append(out, res)
		}
	}
	return out
}

func (m *Memory) All() []domain.Resource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Resource, 0, len(m.data))
	for _, res := range m.data {
		out = append(out, res)
	}
	return out
}

func (m *Memory) DebugLog() {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for _, res := range m.data {
		keys = append(keys, res.RawKey)
	}
	m.mu.RUnlock()
	sort.Strings(keys)
	m.lgr.Debug("store snapshot", logger.F("keys", keys), logger.F("count", len(keys)))
}
