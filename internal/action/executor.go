package action

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/wareflow/ruleengine/internal/engine"
)

// Executor dispatches action lists to their registered handlers.
//
// Execution is strictly sequential in list order and must not be
// parallelized: later actions may depend on warehouse state left by earlier
// ones. A failed action is recorded and the remaining actions still run
// (continue-on-error); the caller decides whether any failure should be
// surfaced or retried.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an Executor over a registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs every action in order and returns one Result per action,
// in the same order. Execute never returns an error itself: unknown types,
// missing parameters, handler errors, and handler panics all become FAILED
// results.
func (e *Executor) Execute(ctx context.Context, actions []Action, evalCtx engine.MapContext) []Result {
	results := make([]Result, 0, len(actions))
	for _, act := range actions {
		results = append(results, e.executeOne(ctx, act, evalCtx))
	}
	return results
}

func (e *Executor) executeOne(ctx context.Context, act Action, evalCtx engine.MapContext) (result Result) {
	result = Result{ActionID: act.ID, Status: StatusSucceeded}

	// A panicking handler must not abort the remaining action list.
	defer func() {
		if rec := recover(); rec != nil {
			result.Status = StatusFailed
			result.Error = fmt.Sprintf("handler panic: %v", rec)
			log.Printf("[action] handler panic: action=%s type=%s panic=%v", act.ID, act.Type, rec)
		}
	}()

	def, ok := e.registry.Lookup(act.Type)
	if !ok {
		result.Status = StatusFailed
		result.Error = fmt.Sprintf("unknown action type %q", act.Type)
		return result
	}

	if err := checkParameters(def, act.Parameters); err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	if err := def.Handler(ctx, act, evalCtx); err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		log.Printf("[action] failed: action=%s type=%s error=%v", act.ID, act.Type, err)
	}
	return result
}

// checkParameters enforces the declared schema at execution time: required
// parameters present and non-empty, no undeclared parameters, scalar kinds
// matching.
func checkParameters(def Definition, params map[string]any) error {
	for name, spec := range def.Parameters {
		value, present := params[name]
		if !present || isEmpty(value) {
			if spec.Required {
				return fmt.Errorf("missing required parameter %q", name)
			}
			continue
		}
		if !kindMatches(spec.Kind, value) {
			return fmt.Errorf("parameter %q must be %s", name, spec.Kind)
		}
	}
	for name := range params {
		if _, declared := def.Parameters[name]; !declared {
			return fmt.Errorf("unknown parameter %q", name)
		}
	}
	return nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func kindMatches(kind ParamKind, v any) bool {
	switch kind {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		switch v.(type) {
		case int, int32, int64, float32, float64, json.Number:
			return true
		}
		return false
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	default:
		return true
	}
}
