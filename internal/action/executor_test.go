package action

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wareflow/ruleengine/internal/engine"
)

func TestExecutor_OrderAndContinueOnError(t *testing.T) {
	reg := NewRegistry()
	var ran []string
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	must(reg.Register(Definition{Type: "ok", Handler: func(_ context.Context, act Action, _ engine.MapContext) error {
		ran = append(ran, act.Parameters["step"].(string))
		return nil
	}, Parameters: map[string]ParamSpec{"step": {Required: true, Kind: KindString}}}))
	must(reg.Register(Definition{Type: "fail", Handler: func(context.Context, Action, engine.MapContext) error {
		ran = append(ran, "fail")
		return errors.New("carrier unavailable")
	}}))
	must(reg.Register(Definition{Type: "panic", Handler: func(context.Context, Action, engine.MapContext) error {
		ran = append(ran, "panic")
		panic("handler exploded")
	}}))

	ex := NewExecutor(reg)
	results := ex.Execute(context.Background(), []Action{
		{ID: "a1", Type: "ok", Parameters: map[string]any{"step": "first"}},
		{ID: "a2", Type: "fail"},
		{ID: "a3", Type: "panic"},
		{ID: "a4", Type: "ok", Parameters: map[string]any{"step": "last"}},
	}, engine.MapContext{})

	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	wantRan := []string{"first", "fail", "panic", "last"}
	if len(ran) != len(wantRan) {
		t.Fatalf("ran %v, want %v", ran, wantRan)
	}
	for i := range wantRan {
		if ran[i] != wantRan[i] {
			t.Fatalf("ran %v, want %v", ran, wantRan)
		}
	}

	if results[0].Status != StatusSucceeded || results[3].Status != StatusSucceeded {
		t.Fatalf("ok actions should succeed: %+v", results)
	}
	if !results[1].Failed() || results[1].Error != "carrier unavailable" {
		t.Fatalf("failed action result = %+v", results[1])
	}
	if !results[2].Failed() || !strings.Contains(results[2].Error, "handler panic") {
		t.Fatalf("panic action result = %+v", results[2])
	}
	if results[2].ActionID != "a3" {
		t.Fatalf("result order broken: %+v", results)
	}
}

func TestExecutor_UnknownType(t *testing.T) {
	ex := NewExecutor(NewRegistry())
	results := ex.Execute(context.Background(), []Action{{ID: "a1", Type: "teleport"}}, nil)
	if len(results) != 1 || !results[0].Failed() {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Error != `unknown action type "teleport"` {
		t.Fatalf("error = %q", results[0].Error)
	}
}

func TestCheckParameters(t *testing.T) {
	def := Definition{
		Type: "notify",
		Parameters: map[string]ParamSpec{
			"url":      {Required: true, Kind: KindString},
			"attempts": {Required: false, Kind: KindNumber},
			"urgent":   {Required: false, Kind: KindBoolean},
		},
		Handler: noopHandler,
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr string
	}{
		{name: "all present", params: map[string]any{"url": "http://x", "attempts": 3, "urgent": true}},
		{name: "optional omitted", params: map[string]any{"url": "http://x"}},
		{name: "required missing", params: map[string]any{"attempts": 3}, wantErr: `missing required parameter "url"`},
		{name: "required empty string", params: map[string]any{"url": ""}, wantErr: `missing required parameter "url"`},
		{name: "required nil", params: map[string]any{"url": nil}, wantErr: `missing required parameter "url"`},
		{name: "undeclared parameter", params: map[string]any{"url": "http://x", "retries": 1}, wantErr: `unknown parameter "retries"`},
		{name: "wrong kind", params: map[string]any{"url": 42}, wantErr: `parameter "url" must be string`},
		{name: "number kind mismatch", params: map[string]any{"url": "http://x", "attempts": "three"}, wantErr: `parameter "attempts" must be number`},
		{name: "boolean kind mismatch", params: map[string]any{"url": "http://x", "urgent": "yes"}, wantErr: `parameter "urgent" must be boolean`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkParameters(def, tt.params)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("checkParameters() error = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("checkParameters() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
