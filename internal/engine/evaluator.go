// Package engine evaluates condition trees against runtime contexts.
// Evaluation is pure and total: it has no side effects, never reads the
// clock, and business-level mismatches (missing fields, malformed values,
// unknown operators) evaluate to false rather than erroring. Validation-time
// questions belong to the rule validator, not here.
package engine

import (
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/condition"
)

// Evaluator walks condition trees against contexts using a field catalog
// for operator semantics. An Evaluator is stateless and safe for concurrent
// use across (rule, context) pairs.
type Evaluator struct {
	catalog *catalog.Catalog
}

// New creates an Evaluator bound to a catalog.
func New(c *catalog.Catalog) *Evaluator {
	return &Evaluator{catalog: c}
}

// Evaluate walks the tree depth-first and returns whether the context
// matches. Groups short-circuit in child list order: AND returns false on
// the first false child, OR returns true on the first true child, and the
// remaining children's fields are never resolved. A nil or empty-children
// node evaluates to false defensively.
func (e *Evaluator) Evaluate(node condition.Node, ctx Context) bool {
	switch n := node.(type) {
	case *condition.Leaf:
		return e.evaluateLeaf(n, ctx)
	case *condition.Group:
		return e.evaluateGroup(n, ctx)
	default:
		// Covers nil and keeps the evaluator total even for a malformed tree.
		return false
	}
}

func (e *Evaluator) evaluateLeaf(leaf *condition.Leaf, ctx Context) bool {
	def, ok := e.catalog.Resolve(leaf.Field)
	if !ok {
		return false
	}
	if !def.SupportsOperator(leaf.Operator) {
		return false
	}

	got, ok := ctx.Resolve(leaf.Field)
	if !ok {
		// A missing field never throws and never matches.
		return false
	}

	handler, ok := getOperatorHandler(leaf.Operator)
	if !ok {
		return false
	}
	return handler.Check(def, got, leaf.Value)
}

func (e *Evaluator) evaluateGroup(group *condition.Group, ctx Context) bool {
	if len(group.Children) == 0 {
		// Empty groups are a validation error upstream; evaluating one is
		// answered false to avoid the AND-vacuous-truth ambiguity.
		return false
	}

	switch group.LogicalOperator {
	case condition.And:
		for _, child := range group.Children {
			if !e.Evaluate(child, ctx) {
				return false
			}
		}
		return true
	case condition.Or:
		for _, child := range group.Children {
			if e.Evaluate(child, ctx) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
