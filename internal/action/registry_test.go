package action

import (
	"context"
	"errors"
	"testing"

	"github.com/wareflow/ruleengine/internal/engine"
)

func noopHandler(context.Context, Action, engine.MapContext) error { return nil }

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Definition{Type: "ship_order", Handler: noopHandler}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := reg.Register(Definition{Type: "ship_order", Handler: noopHandler})
	if !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("duplicate Register() error = %v, want %v", err, ErrDuplicateType)
	}

	if err := reg.Register(Definition{Type: "", Handler: noopHandler}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("empty type error = %v, want %v", err, ErrInvalidType)
	}
	if err := reg.Register(Definition{Type: "no_handler"}); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("nil handler error = %v, want %v", err, ErrInvalidType)
	}
}

func TestRegistry_LookupAndTypes(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"send_notification", "add_tag", "set_field"} {
		if err := reg.Register(Definition{Type: name, Handler: noopHandler}); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	if _, ok := reg.Lookup("add_tag"); !ok {
		t.Fatal("Lookup(add_tag) missed")
	}
	if _, ok := reg.Lookup("unknown"); ok {
		t.Fatal("Lookup(unknown) should miss")
	}

	types := reg.Types()
	want := []string{"add_tag", "send_notification", "set_field"}
	if len(types) != len(want) {
		t.Fatalf("Types() = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("Types() = %v, want sorted %v", types, want)
		}
	}
}
