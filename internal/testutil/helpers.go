package testutil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/wareflow/ruleengine/internal/action"
	"github.com/wareflow/ruleengine/internal/api"
	"github.com/wareflow/ruleengine/internal/auth"
	"github.com/wareflow/ruleengine/internal/catalog"
	"github.com/wareflow/ruleengine/internal/evaluation"
	"github.com/wareflow/ruleengine/internal/notify"
	"github.com/wareflow/ruleengine/internal/rule"
	"github.com/wareflow/ruleengine/internal/store"
)

// Test API keys used by NewTestServer.
const (
	AdminKey  = "admin-test-key"
	ClientKey = "client-test-key"
)

// CatalogYAML is a warehouse field catalog shared across package tests.
const CatalogYAML = `fields:
  - path: order.status
    type: enum
    options:
      - value: pending
        label: Pending
      - value: picking
        label: Picking
      - value: packed
        label: Packed
      - value: shipped
        label: Shipped
  - path: order.total
    type: number
  - path: order.priority
    type: number
  - path: order.gift
    type: boolean
  - path: order.created_at
    type: date
  - path: customer.tier
    type: string
  - path: inventory.quantity
    type: number
  - path: inventory.sku
    type: string
  - path: shipment.carrier
    type: string
  - path: app.version
    type: string
`

// NewTestHolder writes the shared catalog to a temp file and loads it.
func NewTestHolder(t *testing.T) *catalog.Holder {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(CatalogYAML), 0o600); err != nil {
		t.Fatalf("write test catalog: %v", err)
	}
	holder, err := catalog.NewHolder(path)
	if err != nil {
		t.Fatalf("load test catalog: %v", err)
	}
	return holder
}

// NewTestRegistry builds an action registry with the builtin warehouse
// actions, signing notifications with a fixed test secret.
func NewTestRegistry(t *testing.T) *action.Registry {
	t.Helper()
	reg := action.NewRegistry()
	if err := action.RegisterBuiltins(reg, notify.NewSender("test-secret")); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	return reg
}

// NewTestServer creates an API server backed by an in-memory store and the
// shared test catalog.
func NewTestServer(t *testing.T) (*api.Server, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	holder := NewTestHolder(t)
	registry := NewTestRegistry(t)
	svc := evaluation.NewService(holder, action.NewExecutor(registry))
	authn := auth.NewAuthenticator(AdminKey, ClientKey)
	server := api.NewServer(memStore, holder, registry, svc, authn)
	return server, memStore
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// SeedRules populates the store with test rules.
func SeedRules(ctx context.Context, st store.Store, rules []rule.Rule) error {
	for _, r := range rules {
		if err := st.UpsertRule(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
