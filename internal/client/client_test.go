package client_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/client"
	"github.com/wareflow/ruleengine/internal/condition"
	"github.com/wareflow/ruleengine/internal/engine"
	"github.com/wareflow/ruleengine/internal/rule"
	"github.com/wareflow/ruleengine/internal/testutil"
)

func newClientAgainstServer(t *testing.T) *client.Client {
	t.Helper()
	srv, _ := testutil.NewTestServer(t)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return client.NewClient(ts.URL, testutil.AdminKey)
}

func sampleRule(id string, enabled bool) rule.Rule {
	return rule.Rule{
		RuleID: id,
		Name:   "rule " + id,
		Root: &condition.Group{
			ID:              "root",
			LogicalOperator: condition.And,
			Children: []condition.Node{
				&condition.Leaf{ID: "n1", Field: "order.status", Operator: catalog.OpEq, Value: "pending"},
				&condition.Leaf{ID: "n2", Field: "order.total", Operator: catalog.OpGt, Value: 500},
			},
		},
		Actions: []action.Action{
			{ID: "a1", Type: "add_tag", Parameters: map[string]any{"tag": "priority"}},
		},
		Enabled: enabled,
	}
}

func TestClient_RuleLifecycle(t *testing.T) {
	c := newClientAgainstServer(t)
	ctx := context.Background()

	if err := c.UpsertRule(ctx, sampleRule("r1", true)); err != nil {
		t.Fatalf("UpsertRule() error = %v", err)
	}

	doc, err := c.GetRule(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRule() error = %v", err)
	}
	if doc.RuleID != "r1" || !doc.Enabled {
		t.Fatalf("GetRule() = %+v", doc)
	}

	rules, err := c.ListRules(ctx)
	if err != nil {
		t.Fatalf("ListRules() error = %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("ListRules() = %+v", rules)
	}

	if err := c.DeleteRule(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRule() error = %v", err)
	}
	if _, err := c.GetRule(ctx, "r1"); err == nil {
		t.Fatal("GetRule(deleted) should error")
	} else if !strings.Contains(err.Error(), "404") {
		t.Fatalf("GetRule(deleted) error = %v, want status 404", err)
	}
}

func TestClient_ValidateRule(t *testing.T) {
	c := newClientAgainstServer(t)
	ctx := context.Background()

	res, err := c.ValidateRule(ctx, sampleRule("r1", true))
	if err != nil {
		t.Fatalf("ValidateRule() error = %v", err)
	}
	if !res.Valid {
		t.Fatalf("ValidateRule() = %+v", res)
	}

	bad := sampleRule("r2", false)
	bad.Root = &condition.Leaf{ID: "n1", Field: "warehouse.zone", Operator: catalog.OpEq, Value: "A"}
	res, err = c.ValidateRule(ctx, bad)
	if err != nil {
		t.Fatalf("ValidateRule() error = %v", err)
	}
	if res.Valid || len(res.Errors) == 0 {
		t.Fatalf("ValidateRule() = %+v", res)
	}
	if res.Errors[0].Code != rule.CodeUnknownField {
		t.Fatalf("errors = %+v", res.Errors)
	}
}

func TestClient_TestRule(t *testing.T) {
	c := newClientAgainstServer(t)
	ctx := context.Background()

	if err := c.UpsertRule(ctx, sampleRule("r1", true)); err != nil {
		t.Fatalf("UpsertRule() error = %v", err)
	}

	res, err := c.TestRule(ctx, "r1", map[string]any{
		"order": map[string]any{"status": "pending", "total": 900},
	}, true)
	if err != nil {
		t.Fatalf("TestRule() error = %v", err)
	}
	if !res.Matched || len(res.Actions) != 1 || res.Actions[0].Status != "SUCCEEDED" {
		t.Fatalf("TestRule() = %+v", res)
	}

	res, err = c.TestRule(ctx, "r1", map[string]any{
		"order": map[string]any{"status": "shipped", "total": 900},
	}, false)
	if err != nil {
		t.Fatalf("TestRule() error = %v", err)
	}
	if res.Matched {
		t.Fatalf("TestRule() = %+v", res)
	}
}

func TestClient_Trigger(t *testing.T) {
	c := newClientAgainstServer(t)
	ctx := context.Background()

	if err := c.UpsertRule(ctx, sampleRule("r1", true)); err != nil {
		t.Fatalf("UpsertRule() error = %v", err)
	}
	if err := c.UpsertRule(ctx, sampleRule("r2-disabled", false)); err != nil {
		t.Fatalf("UpsertRule() error = %v", err)
	}

	res, err := c.Trigger(ctx, engine.MapContext{
		"order": map[string]any{"status": "pending", "total": 900},
	})
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if len(res.Outcomes) != 1 || res.Outcomes[0].RuleID != "r1" || !res.Outcomes[0].Matched {
		t.Fatalf("Trigger() = %+v", res)
	}
	if res.ETag == "" {
		t.Fatal("trigger response missing etag")
	}
}

func TestClient_AuthError(t *testing.T) {
	srv, _ := testutil.NewTestServer(t)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	c := client.NewClient(ts.URL, "wrong-key")
	if _, err := c.ListRules(context.Background()); err == nil {
		t.Fatal("ListRules with wrong key should error")
	} else if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error = %v, want status 401", err)
	}
}
