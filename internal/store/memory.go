package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wareflow/ruleengine/internal/rule"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It uses a map with an RWMutex for thread-safe concurrent access and is
// suitable for development, testing, or single-instance deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	rules map[string]rule.Rule
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: make(map[string]rule.Rule)}
}

// ListRules retrieves all rules sorted by id for deterministic output.
func (m *MemoryStore) ListRules(ctx context.Context) ([]rule.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]rule.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RuleID < result[j].RuleID })
	return result, nil
}

// GetRule retrieves a single rule by id.
func (m *MemoryStore) GetRule(ctx context.Context, ruleID string) (*rule.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, exists := m.rules[ruleID]
	if !exists {
		return nil, ErrNotFound
	}
	return &r, nil
}

// UpsertRule creates or updates a rule in memory.
func (m *MemoryStore) UpsertRule(ctx context.Context, r rule.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.UpdatedAt = time.Now().UTC()
	m.rules[r.RuleID] = r
	return nil
}

// DeleteRule removes a rule from memory. Idempotent: no error if the rule
// does not exist.
func (m *MemoryStore) DeleteRule(ctx context.Context, ruleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rules, ruleID)
	return nil
}

// Close is a no-op for MemoryStore as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
