package validation

import (
	"strings"
	"testing"

	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/condition"
)

func TestValidateRuleID(t *testing.T) {
	tests := []struct {
		name   string
		ruleID string
		valid  bool
	}{
		{name: "simple", ruleID: "high-value-alert", valid: true},
		{name: "underscores and digits", ruleID: "rule_42", valid: true},
		{name: "surrounding whitespace trimmed", ruleID: "  rule-1  ", valid: true},
		{name: "empty", ruleID: "", valid: false},
		{name: "whitespace only", ruleID: "   ", valid: false},
		{name: "spaces inside", ruleID: "my rule", valid: false},
		{name: "dots", ruleID: "order.rule", valid: false},
		{name: "too long", ruleID: strings.Repeat("a", MaxRuleIDLength+1), valid: false},
		{name: "max length", ruleID: strings.Repeat("a", MaxRuleIDLength), valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRuleID(tt.ruleID)
			if result.Valid != tt.valid {
				t.Fatalf("ValidateRuleID(%q).Valid = %v, want %v (errors: %v)", tt.ruleID, result.Valid, tt.valid, result.Errors)
			}
			if !tt.valid {
				if _, ok := result.Errors["ruleId"]; !ok {
					t.Fatalf("expected ruleId error, got %v", result.Errors)
				}
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if result := ValidateName(strings.Repeat("n", MaxNameLength)); !result.Valid {
		t.Fatalf("max-length name rejected: %v", result.Errors)
	}
	if result := ValidateName(strings.Repeat("n", MaxNameLength+1)); result.Valid {
		t.Fatal("overlong name accepted")
	}
	if result := ValidateName(""); !result.Valid {
		t.Fatal("empty name should be allowed at this layer")
	}
}

func TestValidateTreeShape(t *testing.T) {
	t.Run("nil root", func(t *testing.T) {
		if result := ValidateTreeShape(nil); !result.Valid {
			t.Fatalf("nil root rejected: %v", result.Errors)
		}
	})

	t.Run("depth at limit", func(t *testing.T) {
		root := nestedGroups(MaxTreeDepth)
		if result := ValidateTreeShape(root); !result.Valid {
			t.Fatalf("depth %d rejected: %v", MaxTreeDepth, result.Errors)
		}
	})

	t.Run("depth over limit", func(t *testing.T) {
		root := nestedGroups(MaxTreeDepth + 1)
		result := ValidateTreeShape(root)
		if result.Valid {
			t.Fatal("overly deep tree accepted")
		}
		if _, ok := result.Errors["conditions"]; !ok {
			t.Fatalf("expected conditions error, got %v", result.Errors)
		}
	})

	t.Run("node count over limit", func(t *testing.T) {
		children := make([]condition.Node, MaxTreeNodes)
		for i := range children {
			children[i] = &condition.Leaf{Field: "order.total", Operator: catalog.OpGt, Value: 1}
		}
		root := &condition.Group{LogicalOperator: condition.And, Children: children}
		if result := ValidateTreeShape(root); result.Valid {
			t.Fatal("tree over node limit accepted")
		}
	})
}

// nestedGroups builds a chain of single-child groups with a leaf at depth n.
func nestedGroups(depth int) condition.Node {
	var node condition.Node = &condition.Leaf{Field: "order.total", Operator: catalog.OpGt, Value: 1}
	for i := 1; i < depth; i++ {
		node = &condition.Group{LogicalOperator: condition.And, Children: []condition.Node{node}}
	}
	return node
}

func TestValidateActionCount(t *testing.T) {
	if result := ValidateActionCount(MaxActions); !result.Valid {
		t.Fatalf("count at limit rejected: %v", result.Errors)
	}
	if result := ValidateActionCount(MaxActions + 1); result.Valid {
		t.Fatal("count over limit accepted")
	}
}

func TestValidateContextSize(t *testing.T) {
	if result := ValidateContextSize(make([]byte, MaxContextSize)); !result.Valid {
		t.Fatalf("payload at limit rejected: %v", result.Errors)
	}
	if result := ValidateContextSize(make([]byte, MaxContextSize+1)); result.Valid {
		t.Fatal("oversized payload accepted")
	}
}

func TestValidationResult_Merge(t *testing.T) {
	a := NewValidationResult()
	b := NewValidationResult()
	b.AddError("name", "too long")

	a.Merge(b)
	if a.Valid {
		t.Fatal("merge of invalid result should invalidate")
	}
	if a.Errors["name"] != "too long" {
		t.Fatalf("errors = %v", a.Errors)
	}

	a.Merge(nil)
	if len(a.Errors) != 1 {
		t.Fatalf("merge(nil) changed errors: %v", a.Errors)
	}
}
