package rule

import (
	"encoding/json"
	"fmt"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/condition"
)

// ErrorCode is a machine-readable validation error code, surfaced to the
// rule author so the builder can attach errors to the offending node.
type ErrorCode string

const (
	CodeMissingRoot        ErrorCode = "missing_root"
	CodeEmptyGroup         ErrorCode = "empty_group"
	CodeInvalidLogicalOp   ErrorCode = "invalid_logical_operator"
	CodeDuplicateNodeID    ErrorCode = "duplicate_node_id"
	CodeUnknownField       ErrorCode = "unknown_field"
	CodeInvalidOperator    ErrorCode = "invalid_operator"
	CodeMissingValue       ErrorCode = "missing_value"
	CodeValueTypeMismatch  ErrorCode = "value_type_mismatch"
	CodeUnknownActionType  ErrorCode = "unknown_action_type"
	CodeMissingParameter   ErrorCode = "missing_parameter"
	CodeUnknownParameter   ErrorCode = "unknown_parameter"
	CodeParameterKind      ErrorCode = "parameter_type_mismatch"
	CodeMissingRuleID      ErrorCode = "missing_rule_id"
)

// ValidationError describes one construction-time defect in a rule. NodeID
// points at the offending condition node or action.
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	NodeID  string    `json:"nodeId,omitempty"`
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Code, e.NodeID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validator checks rules against the field catalog and the action type
// registry before persistence or activation. It is never consulted at
// evaluation time: the evaluator stays total and treats defects as
// non-matches.
type Validator struct {
	catalog  *catalog.Catalog
	registry *action.Registry
}

// NewValidator creates a Validator over a catalog and action registry.
func NewValidator(c *catalog.Catalog, reg *action.Registry) *Validator {
	return &Validator{catalog: c, registry: reg}
}

// Validate returns every defect found in the rule. An empty slice means the
// rule may be enabled; a rule with errors may still be stored as a draft.
func (v *Validator) Validate(r Rule) []ValidationError {
	var errs []ValidationError

	if r.RuleID == "" {
		errs = append(errs, ValidationError{Code: CodeMissingRuleID, Message: "rule id must not be empty"})
	}

	if r.Root == nil {
		errs = append(errs, ValidationError{Code: CodeMissingRoot, Message: "rule has no condition tree"})
	} else {
		seen := make(map[string]struct{})
		errs = append(errs, v.validateNode(r.Root, seen)...)
	}

	for i, act := range r.Actions {
		errs = append(errs, v.validateAction(i, act)...)
	}

	return errs
}

func (v *Validator) validateNode(node condition.Node, seen map[string]struct{}) []ValidationError {
	var errs []ValidationError

	if id := node.NodeID(); id != "" {
		if _, dup := seen[id]; dup {
			errs = append(errs, ValidationError{
				Code:    CodeDuplicateNodeID,
				NodeID:  id,
				Message: fmt.Sprintf("node id %q appears more than once", id),
			})
		}
		seen[id] = struct{}{}
	}

	switch n := node.(type) {
	case *condition.Group:
		if !n.LogicalOperator.Valid() {
			errs = append(errs, ValidationError{
				Code:    CodeInvalidLogicalOp,
				NodeID:  n.ID,
				Message: fmt.Sprintf("logical operator %q is not AND or OR", n.LogicalOperator),
			})
		}
		if len(n.Children) == 0 {
			errs = append(errs, ValidationError{
				Code:    CodeEmptyGroup,
				NodeID:  n.ID,
				Message: "group has no children",
			})
		}
		for _, child := range n.Children {
			errs = append(errs, v.validateNode(child, seen)...)
		}
	case *condition.Leaf:
		errs = append(errs, v.validateLeaf(n)...)
	}

	return errs
}

func (v *Validator) validateLeaf(leaf *condition.Leaf) []ValidationError {
	def, ok := v.catalog.Resolve(leaf.Field)
	if !ok {
		return []ValidationError{{
			Code:    CodeUnknownField,
			NodeID:  leaf.ID,
			Message: fmt.Sprintf("field %q is not in the catalog", leaf.Field),
		}}
	}

	var errs []ValidationError
	if !def.SupportsOperator(leaf.Operator) {
		errs = append(errs, ValidationError{
			Code:    CodeInvalidOperator,
			NodeID:  leaf.ID,
			Message: fmt.Sprintf("operator %q is not legal for field %q (%s)", leaf.Operator, leaf.Field, def.Type),
		})
	}

	if leaf.Value == nil || leaf.Value == "" {
		errs = append(errs, ValidationError{
			Code:    CodeMissingValue,
			NodeID:  leaf.ID,
			Message: fmt.Sprintf("field %q requires a comparison value", leaf.Field),
		})
		return errs
	}

	if err := checkValueShape(def, leaf.Operator, leaf.Value); err != "" {
		errs = append(errs, ValidationError{
			Code:    CodeValueTypeMismatch,
			NodeID:  leaf.ID,
			Message: err,
		})
	}
	return errs
}

// checkValueShape verifies the value's shape against the field type: list
// values only for the in-family operators, scalars matching the declared
// type, enum values drawn from the field's options.
func checkValueShape(def catalog.FieldDefinition, op catalog.Operator, value any) string {
	if op == catalog.OpIn || op == catalog.OpNin {
		list, ok := asList(value)
		if !ok {
			return fmt.Sprintf("operator %q requires a list value", op)
		}
		if len(list) == 0 {
			return fmt.Sprintf("operator %q requires a non-empty list", op)
		}
		for _, item := range list {
			if msg := checkScalar(def, item); msg != "" {
				return msg
			}
		}
		return ""
	}

	if _, isList := asList(value); isList {
		return fmt.Sprintf("operator %q takes a scalar value, not a list", op)
	}
	return checkScalar(def, value)
}

func checkScalar(def catalog.FieldDefinition, value any) string {
	switch def.Type {
	case catalog.TypeString:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("field %q requires a string value", def.Path)
		}
	case catalog.TypeEnum:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("field %q requires a string value", def.Path)
		}
		if !def.HasOption(s) {
			return fmt.Sprintf("%q is not an option of enum field %q", s, def.Path)
		}
	case catalog.TypeNumber:
		if !isNumeric(value) {
			return fmt.Sprintf("field %q requires a numeric value", def.Path)
		}
	case catalog.TypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("field %q requires a boolean value", def.Path)
		}
	case catalog.TypeDate:
		if _, ok := value.(string); !ok {
			return fmt.Sprintf("field %q requires an RFC 3339 date string", def.Path)
		}
	}
	return ""
}

func (v *Validator) validateAction(i int, act action.Action) []ValidationError {
	def, ok := v.registry.Lookup(act.Type)
	if !ok {
		return []ValidationError{{
			Code:    CodeUnknownActionType,
			NodeID:  act.ID,
			Message: fmt.Sprintf("action[%d] type %q is not registered", i, act.Type),
		}}
	}

	var errs []ValidationError
	for name, spec := range def.Parameters {
		if !spec.Required {
			continue
		}
		value, present := act.Parameters[name]
		if !present || value == nil || value == "" {
			errs = append(errs, ValidationError{
				Code:    CodeMissingParameter,
				NodeID:  act.ID,
				Message: fmt.Sprintf("action[%d] %q requires parameter %q", i, act.Type, name),
			})
		}
	}
	for name := range act.Parameters {
		if _, declared := def.Parameters[name]; !declared {
			errs = append(errs, ValidationError{
				Code:    CodeUnknownParameter,
				NodeID:  act.ID,
				Message: fmt.Sprintf("action[%d] %q does not declare parameter %q", i, act.Type, name),
			})
		}
	}
	return errs
}

func asList(v any) ([]any, bool) {
	switch values := v.(type) {
	case []any:
		return values, true
	case []string:
		out := make([]any, len(values))
		for i, s := range values {
			out[i] = s
		}
		return out, true
	case []int, []float64:
		// Normalize through JSON for the uncommon programmatic shapes.
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		var out []any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64, json.Number:
		return true
	}
	return false
}
