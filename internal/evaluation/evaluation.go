// Package evaluation ties rule evaluation and action execution together.
// It evaluates stored rules against a caller-supplied context and, for rules
// whose condition tree matches, runs their action lists in order.
package evaluation

import (
	"context"
	"sort"
	"time"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/engine"
	"github.com/wareflow/ruleengine/internal/rule"
	"github.com/wareflow/ruleengine/internal/telemetry"
)

// Outcome is the result of evaluating a single rule.
// Actions is nil when the rule did not match or carries no actions.
type Outcome struct {
	RuleID  string          `json:"ruleId"`
	Matched bool            `json:"matched"`
	Actions []action.Result `json:"actions,omitempty"`
}

// TriggerResponse represents the response from the trigger endpoint.
type TriggerResponse struct {
	Outcomes    []Outcome `json:"outcomes"`
	ETag        string    `json:"etag,omitempty"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// CatalogSource yields the field catalog to evaluate against. The catalog
// can be hot-reloaded, so it is resolved once per run rather than captured
// at construction.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// Service evaluates rules and executes their actions.
type Service struct {
	catalogs CatalogSource
	executor *action.Executor
}

func NewService(catalogs CatalogSource, executor *action.Executor) *Service {
	return &Service{catalogs: catalogs, executor: executor}
}

// Evaluate runs a single rule's condition tree against the context. It never
// executes actions and never errors: malformed or unresolvable conditions
// evaluate to false.
func (s *Service) Evaluate(r rule.Rule, evalCtx engine.MapContext) bool {
	matched := engine.New(s.catalogs.Current()).Evaluate(r.Root, evalCtx)
	if matched {
		telemetry.RuleEvaluations.WithLabelValues("matched").Inc()
	} else {
		telemetry.RuleEvaluations.WithLabelValues("unmatched").Inc()
	}
	return matched
}

// Run evaluates a single rule and, when it matches, executes its actions
// sequentially. A failed action does not stop the ones after it; every
// action's result is reported.
func (s *Service) Run(ctx context.Context, r rule.Rule, evalCtx engine.MapContext) Outcome {
	out := Outcome{RuleID: r.RuleID}
	if !s.Evaluate(r, evalCtx) {
		return out
	}
	out.Matched = true
	out.Actions = s.executor.Execute(ctx, r.Actions, evalCtx)
	for i, res := range out.Actions {
		telemetry.ActionExecutions.WithLabelValues(r.Actions[i].Type, string(res.Status)).Inc()
	}
	return out
}

// Trigger evaluates every given rule against the context in rule-id order
// and executes the actions of the ones that match. The context is shared
// across rules, so a field written by one rule's actions is visible to the
// rules evaluated after it.
func (s *Service) Trigger(ctx context.Context, rules []rule.Rule, evalCtx engine.MapContext) []Outcome {
	ordered := make([]rule.Rule, len(rules))
	copy(ordered, rules)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].RuleID < ordered[j].RuleID })

	outcomes := make([]Outcome, 0, len(ordered))
	for _, r := range ordered {
		outcomes = append(outcomes, s.Run(ctx, r, evalCtx))
	}
	return outcomes
}
