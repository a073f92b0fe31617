// Package validation provides validation rules for rule documents and request parameters.
// It checks request-level shape and size limits; semantic validation against the
// field catalog and action registry lives in the rule package.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wareflow/ruleengine/internal/condition"
)

const (
	// MaxRuleIDLength is the maximum length for rule ids
	MaxRuleIDLength = 64
	// MaxNameLength is the maximum length for rule names
	MaxNameLength = 200
	// MaxTreeDepth is the maximum nesting depth of a condition tree
	MaxTreeDepth = 16
	// MaxTreeNodes is the maximum number of nodes in a condition tree
	MaxTreeNodes = 500
	// MaxActions is the maximum number of actions per rule
	MaxActions = 50
	// MaxContextSize is the maximum size of a trigger context JSON in bytes
	MaxContextSize = 256 * 1024 // 256KB
)

// ruleIDPattern matches alphanumeric characters, underscores, and hyphens
var ruleIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidationResult holds the result of validation
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:  true,
		Errors: make(map[string]string),
	}
}

// AddError adds a field error and marks the result as invalid
func (v *ValidationResult) AddError(field, message string) {
	v.Valid = false
	v.Errors[field] = message
}

// Merge combines another validation result into this one
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for field, message := range other.Errors {
		v.AddError(field, message)
	}
}

// ValidateRuleID validates a rule id
func ValidateRuleID(ruleID string) *ValidationResult {
	result := NewValidationResult()
	ruleID = strings.TrimSpace(ruleID)

	if ruleID == "" {
		result.AddError("ruleId", "Rule id is required")
		return result
	}

	if utf8.RuneCountInString(ruleID) > MaxRuleIDLength {
		result.AddError("ruleId", "Rule id must not exceed 64 characters")
		return result
	}

	if !ruleIDPattern.MatchString(ruleID) {
		result.AddError("ruleId", "Rule id must contain only alphanumeric characters, underscores, and hyphens")
		return result
	}

	return result
}

// ValidateName validates a rule name
func ValidateName(name string) *ValidationResult {
	result := NewValidationResult()

	if utf8.RuneCountInString(name) > MaxNameLength {
		result.AddError("name", "Name must not exceed 200 characters")
	}

	return result
}

// ValidateTreeShape checks structural limits on a condition tree: nesting
// depth and total node count. A nil root is allowed here; the semantic
// validator reports it as a missing root.
func ValidateTreeShape(root condition.Node) *ValidationResult {
	result := NewValidationResult()
	if root == nil {
		return result
	}

	nodes := 0
	tooDeep := false
	var walk func(n condition.Node, depth int)
	walk = func(n condition.Node, depth int) {
		nodes++
		if depth > MaxTreeDepth {
			tooDeep = true
			return
		}
		if g, ok := n.(*condition.Group); ok {
			for _, child := range g.Children {
				walk(child, depth+1)
			}
		}
	}
	walk(root, 1)

	if tooDeep {
		result.AddError("conditions", "Condition tree must not exceed 16 levels of nesting")
	}
	if nodes > MaxTreeNodes {
		result.AddError("conditions", "Condition tree must not exceed 500 nodes")
	}

	return result
}

// ValidateActionCount validates the number of actions on a rule
func ValidateActionCount(count int) *ValidationResult {
	result := NewValidationResult()

	if count > MaxActions {
		result.AddError("actions", "A rule must not carry more than 50 actions")
	}

	return result
}

// ValidateContextSize validates the size of a raw trigger context payload
func ValidateContextSize(contextJSON []byte) *ValidationResult {
	result := NewValidationResult()

	if len(contextJSON) > MaxContextSize {
		result.AddError("context", "Context must not exceed 256KB")
	}

	return result
}
