package store

import (
	"context"
	"errors"
	"testing"

	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/condition"
	"github.com/wareflow/ruleengine/internal/rule"
)

func testRule(id string) rule.Rule {
	return rule.Rule{
		RuleID: id,
		Name:   "rule " + id,
		Root: &condition.Leaf{
			ID:       "n1",
			Field:    "order.total",
			Operator: catalog.OpGt,
			Value:    100,
		},
		Enabled: true,
	}
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	if _, err := st.GetRule(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRule(missing) error = %v, want %v", err, ErrNotFound)
	}

	if err := st.UpsertRule(ctx, testRule("r1")); err != nil {
		t.Fatalf("UpsertRule() error = %v", err)
	}

	got, err := st.GetRule(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRule() error = %v", err)
	}
	if got.RuleID != "r1" || got.Name != "rule r1" {
		t.Fatalf("GetRule() = %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("UpsertRule should stamp UpdatedAt")
	}

	// Update replaces the stored document.
	updated := testRule("r1")
	updated.Name = "renamed"
	updated.Enabled = false
	if err := st.UpsertRule(ctx, updated); err != nil {
		t.Fatalf("UpsertRule() error = %v", err)
	}
	got, err = st.GetRule(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRule() error = %v", err)
	}
	if got.Name != "renamed" || got.Enabled {
		t.Fatalf("after update, rule = %+v", got)
	}

	if err := st.DeleteRule(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRule() error = %v", err)
	}
	if _, err := st.GetRule(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetRule(deleted) error = %v, want %v", err, ErrNotFound)
	}

	// Deleting again is fine.
	if err := st.DeleteRule(ctx, "r1"); err != nil {
		t.Fatalf("second DeleteRule() error = %v", err)
	}

	if err := st.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestMemoryStore_ListRulesSorted(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	for _, id := range []string{"zebra", "alpha", "mid"} {
		if err := st.UpsertRule(ctx, testRule(id)); err != nil {
			t.Fatalf("UpsertRule(%s) error = %v", id, err)
		}
	}

	rules, err := st.ListRules(ctx)
	if err != nil {
		t.Fatalf("ListRules() error = %v", err)
	}
	want := []string{"alpha", "mid", "zebra"}
	if len(rules) != len(want) {
		t.Fatalf("ListRules() returned %d rules, want %d", len(rules), len(want))
	}
	for i := range want {
		if rules[i].RuleID != want[i] {
			t.Fatalf("ListRules() order = %v, want %v", rules, want)
		}
	}
}

func TestMemoryStore_ListRulesEmpty(t *testing.T) {
	rules, err := NewMemoryStore().ListRules(context.Background())
	if err != nil {
		t.Fatalf("ListRules() error = %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("ListRules() = %v, want empty", rules)
	}
}
