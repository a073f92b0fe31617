package rule

import (
	"encoding/json"
	"testing"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/condition"
)

func TestRule_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"ruleId": "high-value-alert",
		"name": "High value order alert",
		"enabled": true,
		"root": {
			"id": "root",
			"logicalOperator": "AND",
			"children": [
				{"id":"n1","field":"order.status","operator":"eq","value":"pending"},
				{"id":"n2","field":"order.total","operator":"gt","value":500}
			]
		},
		"actions": [
			{"id":"a1","type":"send_notification","parameters":{"url":"http://x","event":"e"}}
		]
	}`)

	var r Rule
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if r.RuleID != "high-value-alert" || !r.Enabled {
		t.Fatalf("rule = %+v", r)
	}
	group, ok := r.Root.(*condition.Group)
	if !ok || len(group.Children) != 2 {
		t.Fatalf("root = %#v", r.Root)
	}
	if len(r.Actions) != 1 || r.Actions[0].Type != "send_notification" {
		t.Fatalf("actions = %+v", r.Actions)
	}
}

func TestRule_UnmarshalJSON_BareLeafRoot(t *testing.T) {
	data := []byte(`{
		"ruleId": "gift-orders",
		"root": {"id":"n1","field":"order.gift","operator":"eq","value":true}
	}`)

	var r Rule
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := r.Root.(*condition.Leaf); !ok {
		t.Fatalf("root = %#v, want *condition.Leaf", r.Root)
	}
}

func TestRule_UnmarshalJSON_NullAndMissingRoot(t *testing.T) {
	for _, data := range []string{
		`{"ruleId":"r1","root":null}`,
		`{"ruleId":"r1"}`,
	} {
		var r Rule
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", data, err)
		}
		if r.Root != nil {
			t.Fatalf("root = %#v, want nil", r.Root)
		}
	}
}

func TestRule_UnmarshalJSON_BadRoot(t *testing.T) {
	var r Rule
	err := json.Unmarshal([]byte(`{"ruleId":"r1","root":{"id":"x","field":"f","logicalOperator":"AND"}}`), &r)
	if err == nil {
		t.Fatal("Unmarshal should fail on a mixed node")
	}
}

func TestRule_RoundTrip(t *testing.T) {
	original := Rule{
		RuleID: "r1",
		Name:   "Round trip",
		Root: &condition.Group{
			ID:              "root",
			LogicalOperator: condition.Or,
			Children: []condition.Node{
				&condition.Leaf{ID: "n1", Field: "order.total", Operator: catalog.OpGte, Value: json.Number("100")},
				&condition.Leaf{ID: "n2", Field: "order.status", Operator: catalog.OpIn, Value: []any{"pending", "picking"}},
			},
		},
		Actions: []action.Action{
			{ID: "a1", Type: "add_tag", Parameters: map[string]any{"tag": "priority"}},
		},
		Enabled: true,
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded Rule
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !Equal(original, decoded) {
		t.Fatalf("round trip changed the rule:\n  original %+v\n  decoded  %+v", original, decoded)
	}
}

func TestEqual(t *testing.T) {
	a := Rule{
		RuleID:  "r1",
		Name:    "a",
		Root:    &condition.Leaf{ID: "n1", Field: "order.gift", Operator: catalog.OpEq, Value: true},
		Actions: []action.Action{{ID: "a1", Type: "add_tag", Parameters: map[string]any{"tag": "x"}}},
	}

	b := a
	if !Equal(a, b) {
		t.Fatal("copies should be equal")
	}

	b = a
	b.Name = "b"
	if Equal(a, b) {
		t.Fatal("different names should not be equal")
	}

	b = a
	b.Enabled = true
	if Equal(a, b) {
		t.Fatal("different enabled flags should not be equal")
	}

	b = a
	b.Actions = []action.Action{{ID: "a1", Type: "add_tag", Parameters: map[string]any{"tag": "y"}}}
	if Equal(a, b) {
		t.Fatal("different action parameters should not be equal")
	}

	b = a
	b.Root = &condition.Leaf{ID: "n1", Field: "order.gift", Operator: catalog.OpNe, Value: true}
	if Equal(a, b) {
		t.Fatal("different trees should not be equal")
	}
}
