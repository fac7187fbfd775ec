package errors

import (
	"testing"
)

func TestNewAndIs(t *testing.T) {
	err := New(NotFound, "table %q does not exist", "orders").WithName("orders")

	if kind, ok := Of(err); !ok || kind != NotFound {
		t.Fatalf("Of(err) = %v, %v; want NotFound, true", kind, ok)
	}
	if !Is(err, NotFound) {
		t.Fatalf("Is(err, NotFound) = false")
	}
	if Is(err, AlreadyExists) {
		t.Fatalf("Is(err, AlreadyExists) = true")
	}
	if err.Name != "orders" {
		t.Fatalf("Name = %q, want %q", err.Name, "orders")
	}
}

func TestWithRow(t *testing.T) {
	err := New(InvalidArgument, "row out of range").WithRow(42)
	if !err.HasRow || err.RowID != 42 {
		t.Fatalf("WithRow did not set RowID: %+v", err)
	}
}

func TestBrokenHasIncident(t *testing.T) {
	err := New(Broken, "invariant violated")
	if err.IncidentID == "" {
		t.Fatalf("expected BROKEN error to carry an incident id")
	}
	if err.Unwrap() == nil {
		t.Fatalf("expected BROKEN error to wrap a stack-capturing cause")
	}
}

func TestWrap(t *testing.T) {
	cause := New(NotFound, "missing")
	wrapped := Wrap(cause, "rolling back partial insert")
	if wrapped.Kind != Broken {
		t.Fatalf("Wrap should always produce a BROKEN error, got %v", wrapped.Kind)
	}
	if wrapped.Unwrap() == nil {
		t.Fatalf("Wrap should retain the cause")
	}
}
