package store

import (
	"context"
	"errors"

	"github.com/wareflow/ruleengine/internal/rule"
)

// ErrNotFound is returned when a rule id does not exist.
var ErrNotFound = errors.New("rule not found")

// Store defines the interface for rule persistence operations.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// ListRules retrieves all rules, drafts included.
	ListRules(ctx context.Context) ([]rule.Rule, error)

	// GetRule retrieves a single rule by id.
	// Returns ErrNotFound if the rule does not exist.
	GetRule(ctx context.Context, ruleID string) (*rule.Rule, error)

	// UpsertRule creates or updates a rule document.
	UpsertRule(ctx context.Context, r rule.Rule) error

	// DeleteRule removes a rule by id (idempotent).
	DeleteRule(ctx context.Context, ruleID string) error

	// Close releases any resources held by the store.
	Close() error
}
