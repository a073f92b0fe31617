package rule

import (
	"context"
	"testing"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/condition"
	"github.com/wareflow/ruleengine/internal/engine"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	c, err := catalog.New([]catalog.FieldDefinition{
		{Path: "order.status", Type: catalog.TypeEnum, Options: []catalog.Option{
			{Value: "pending"}, {Value: "shipped"},
		}},
		{Path: "order.total", Type: catalog.TypeNumber},
		{Path: "order.gift", Type: catalog.TypeBoolean},
		{Path: "order.created_at", Type: catalog.TypeDate},
		{Path: "shipment.carrier", Type: catalog.TypeString},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	reg := action.NewRegistry()
	err = reg.Register(action.Definition{
		Type: "send_notification",
		Parameters: map[string]action.ParamSpec{
			"url":     {Required: true, Kind: action.KindString},
			"event":   {Required: true, Kind: action.KindString},
			"message": {Required: false, Kind: action.KindString},
		},
		Handler: func(context.Context, action.Action, engine.MapContext) error { return nil },
	})
	if err != nil {
		t.Fatalf("register action: %v", err)
	}

	return NewValidator(c, reg)
}

func leaf(id, field string, op catalog.Operator, value any) *condition.Leaf {
	return &condition.Leaf{ID: id, Field: field, Operator: op, Value: value}
}

func validRule() Rule {
	return Rule{
		RuleID: "high-value-alert",
		Name:   "High value order alert",
		Root: &condition.Group{
			ID:              "root",
			LogicalOperator: condition.And,
			Children: []condition.Node{
				leaf("n1", "order.status", catalog.OpEq, "pending"),
				leaf("n2", "order.total", catalog.OpGt, 500),
			},
		},
		Actions: []action.Action{{
			ID:   "a1",
			Type: "send_notification",
			Parameters: map[string]any{
				"url":   "http://hooks.internal/warehouse",
				"event": "order.high_value",
			},
		}},
		Enabled: true,
	}
}

func hasCode(errs []ValidationError, code ErrorCode) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestValidator_ValidRule(t *testing.T) {
	v := newTestValidator(t)
	if errs := v.Validate(validRule()); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want no errors", errs)
	}
}

func TestValidator_ErrorCodes(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name   string
		mutate func(*Rule)
		want   ErrorCode
	}{
		{
			name:   "missing rule id",
			mutate: func(r *Rule) { r.RuleID = "" },
			want:   CodeMissingRuleID,
		},
		{
			name:   "missing root",
			mutate: func(r *Rule) { r.Root = nil },
			want:   CodeMissingRoot,
		},
		{
			name: "empty group",
			mutate: func(r *Rule) {
				r.Root = &condition.Group{ID: "root", LogicalOperator: condition.And}
			},
			want: CodeEmptyGroup,
		},
		{
			name: "invalid logical operator",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).LogicalOperator = condition.LogicalOperator("NAND")
			},
			want: CodeInvalidLogicalOp,
		},
		{
			name: "duplicate node id",
			mutate: func(r *Rule) {
				g := r.Root.(*condition.Group)
				g.Children[1].(*condition.Leaf).ID = "n1"
			},
			want: CodeDuplicateNodeID,
		},
		{
			name: "unknown field",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).Children[0] = leaf("n1", "warehouse.zone", catalog.OpEq, "A")
			},
			want: CodeUnknownField,
		},
		{
			name: "operator not legal for field",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).Children[0] = leaf("n1", "order.gift", catalog.OpGt, true)
			},
			want: CodeInvalidOperator,
		},
		{
			name: "missing value",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).Children[0] = leaf("n1", "order.status", catalog.OpEq, nil)
			},
			want: CodeMissingValue,
		},
		{
			name: "enum value outside options",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).Children[0] = leaf("n1", "order.status", catalog.OpEq, "cancelled")
			},
			want: CodeValueTypeMismatch,
		},
		{
			name: "string value on number field",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).Children[1] = leaf("n2", "order.total", catalog.OpGt, "500")
			},
			want: CodeValueTypeMismatch,
		},
		{
			name: "scalar value for in",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).Children[0] = leaf("n1", "order.status", catalog.OpIn, "pending")
			},
			want: CodeValueTypeMismatch,
		},
		{
			name: "empty list for in",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).Children[0] = leaf("n1", "order.status", catalog.OpIn, []any{})
			},
			want: CodeValueTypeMismatch,
		},
		{
			name: "list value for scalar operator",
			mutate: func(r *Rule) {
				r.Root.(*condition.Group).Children[0] = leaf("n1", "order.status", catalog.OpEq, []any{"pending"})
			},
			want: CodeValueTypeMismatch,
		},
		{
			name:   "unknown action type",
			mutate: func(r *Rule) { r.Actions[0].Type = "teleport" },
			want:   CodeUnknownActionType,
		},
		{
			name: "missing action parameter",
			mutate: func(r *Rule) {
				delete(r.Actions[0].Parameters, "url")
			},
			want: CodeMissingParameter,
		},
		{
			name: "undeclared action parameter",
			mutate: func(r *Rule) {
				r.Actions[0].Parameters["retries"] = 3
			},
			want: CodeUnknownParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule()
			tt.mutate(&r)
			errs := v.Validate(r)
			if !hasCode(errs, tt.want) {
				t.Fatalf("Validate() = %v, want code %s", errs, tt.want)
			}
		})
	}
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	v := newTestValidator(t)
	r := Rule{
		Root: &condition.Group{
			ID:              "root",
			LogicalOperator: condition.LogicalOperator("NAND"),
			Children: []condition.Node{
				leaf("n1", "warehouse.zone", catalog.OpEq, "A"),
			},
		},
		Actions: []action.Action{{ID: "a1", Type: "teleport"}},
	}

	errs := v.Validate(r)
	for _, code := range []ErrorCode{CodeMissingRuleID, CodeInvalidLogicalOp, CodeUnknownField, CodeUnknownActionType} {
		if !hasCode(errs, code) {
			t.Fatalf("Validate() = %v, missing code %s", errs, code)
		}
	}
}

func TestValidator_ErrorAttachesNodeID(t *testing.T) {
	v := newTestValidator(t)
	r := validRule()
	r.Root.(*condition.Group).Children[0] = leaf("bad-leaf", "warehouse.zone", catalog.OpEq, "A")

	errs := v.Validate(r)
	if len(errs) != 1 {
		t.Fatalf("Validate() = %v, want one error", errs)
	}
	if errs[0].NodeID != "bad-leaf" {
		t.Fatalf("NodeID = %q, want bad-leaf", errs[0].NodeID)
	}
	if errs[0].Error() == "" {
		t.Fatal("Error() should render")
	}
}

func TestValidator_BareLeafRoot(t *testing.T) {
	v := newTestValidator(t)
	r := Rule{
		RuleID: "gift-orders",
		Root:   leaf("n1", "order.gift", catalog.OpEq, true),
	}
	if errs := v.Validate(r); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want no errors", errs)
	}
}
