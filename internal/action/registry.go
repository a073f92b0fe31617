package action

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/wareflow/ruleengine/internal/engine"
)

// HandlerFunc performs one action's side effect. It receives the action
// being executed and the evaluation context the rule matched against.
// Handlers own their I/O timeouts; the executor performs no retry.
type HandlerFunc func(ctx context.Context, act Action, evalCtx engine.MapContext) error

// Definition declares a registered action type: its name, parameter schema,
// and handler.
type Definition struct {
	Type       string
	Parameters map[string]ParamSpec
	Handler    HandlerFunc
}

// Sentinel errors for registry operations.
var (
	ErrDuplicateType = errors.New("action type already registered")
	ErrInvalidType   = errors.New("invalid action type definition")
)

// Registry holds the action types available to rules. Registration happens
// at startup; lookups are safe for concurrent use afterwards.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty action type registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds an action type. The type name must be non-empty and unique
// and the handler non-nil.
func (r *Registry) Register(def Definition) error {
	if def.Type == "" {
		return fmt.Errorf("%w: empty type name", ErrInvalidType)
	}
	if def.Handler == nil {
		return fmt.Errorf("%w: %q has no handler", ErrInvalidType, def.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, def.Type)
	}
	r.defs[def.Type] = def
	return nil
}

// Lookup returns the definition for an action type name.
func (r *Registry) Lookup(actionType string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[actionType]
	return def, ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for t := range r.defs {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
