package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistry_GetUnknownBinding(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	var ube *UnknownBindingError
	if !errors.As(err, &ube) {
		t.Fatalf("Get returned %v, want *UnknownBindingError", err)
	}
	if ube.ID != "nope" {
		t.Errorf("error ID = %q, want nope", ube.ID)
	}
}

func TestRegistry_CreateReplaces(t *testing.T) {
	r := NewRegistry()
	r.Create("b")
	if err := r.AddFunction("b", "f", func(args ...any) error { return nil }); err != nil {
		t.Fatal(err)
	}

	e := r.Create("b")
	if fn, _ := e.lookup("f"); fn != nil {
		t.Fatal("Create merged with prior entry instead of replacing it")
	}
}

func TestRegistry_RegistrationIdempotent(t *testing.T) {
	r := NewRegistry()
	e := r.Create("b")

	var last string
	for _, v := range []string{"first", "second"} {
		v := v
		if err := r.AddFunction("b", "f", func(args ...any) error {
			last = v
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.AddState("b", "counter", 0, func(any) {}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddState("b", "counter", 1, func(any) {}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddRef("b", "canvas", "h1"); err != nil {
		t.Fatal(err)
	}
	if err := r.AddRef("b", "canvas", "h2"); err != nil {
		t.Fatal(err)
	}

	e.Gate().Signal()
	if err := r.Call(context.Background(), "b", "f"); err != nil {
		t.Fatal(err)
	}
	if last != "second" {
		t.Errorf("function registration did not overwrite: called %q", last)
	}
	if v, _ := e.State("counter"); v != 1 {
		t.Errorf("state = %v, want 1", v)
	}
	if h, _ := e.Ref("canvas"); h != "h2" {
		t.Errorf("ref = %v, want h2", h)
	}
}

func TestRegistry_AddToUnknownBinding(t *testing.T) {
	r := NewRegistry()
	var ube *UnknownBindingError
	if err := r.AddFunction("nope", "f", nil); !errors.As(err, &ube) {
		t.Errorf("AddFunction = %v, want *UnknownBindingError", err)
	}
	if err := r.AddState("nope", "x", 0, nil); !errors.As(err, &ube) {
		t.Errorf("AddState = %v, want *UnknownBindingError", err)
	}
	if err := r.AddRef("nope", "x", nil); !errors.As(err, &ube) {
		t.Errorf("AddRef = %v, want *UnknownBindingError", err)
	}
}

func TestRegistry_CallUnknownFunction(t *testing.T) {
	r := NewRegistry()
	r.Create("b")
	r.Gate().Signal()

	err := r.Call(context.Background(), "b", "missing")
	var ufe *UnknownFunctionError
	if !errors.As(err, &ufe) {
		t.Fatalf("Call = %v, want *UnknownFunctionError", err)
	}
	if ufe.ID != "b" || ufe.Name != "missing" {
		t.Errorf("error = %+v, want ID=b Name=missing", ufe)
	}
}

func TestRegistry_CallBlocksOnGate(t *testing.T) {
	r := NewRegistry()
	r.Create("b")

	calls := 0
	if err := r.AddFunction("b", "f", func(args ...any) error {
		calls++
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	done := r.CallAsync("b", "f")
	select {
	case <-done:
		t.Fatal("call completed before gate signaled")
	case <-time.After(10 * time.Millisecond):
	}
	if calls != 0 {
		t.Fatal("function ran before gate signaled")
	}

	r.Gate().Signal()
	if err := <-done; err != nil {
		t.Fatalf("queued call failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

// Function lookup happens after the gate opens: a call accepted before the
// function is registered still reaches it, as long as registration lands
// before the signal.
func TestRegistry_RegistrationBeforeSignalVisibleToQueuedCall(t *testing.T) {
	r := NewRegistry()
	r.Create("b")

	done := r.CallAsync("b", "late")
	time.Sleep(10 * time.Millisecond)

	ran := false
	if err := r.AddFunction("b", "late", func(args ...any) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	r.Gate().Signal()

	if err := <-done; err != nil {
		t.Fatalf("queued call failed: %v", err)
	}
	if !ran {
		t.Fatal("queued call did not reach late-registered function")
	}
}

func TestRegistry_CallContextCanceled(t *testing.T) {
	r := NewRegistry()
	r.Create("b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Call(ctx, "b", "f"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Call = %v, want context.Canceled", err)
	}
}

func TestRegistry_CallRecoversPanic(t *testing.T) {
	r := NewRegistry()
	r.Create("b")
	if err := r.AddFunction("b", "boom", func(args ...any) error {
		panic("kaboom")
	}); err != nil {
		t.Fatal(err)
	}
	r.Gate().Signal()

	err := r.Call(context.Background(), "b", "boom")
	if err == nil {
		t.Fatal("Call returned nil for panicking function")
	}
}

func TestRegistry_CallArgumentsAndErrors(t *testing.T) {
	r := NewRegistry()
	r.Create("b")
	r.Gate().Signal()

	var got []any
	sentinel := errors.New("nope")
	if err := r.AddFunction("b", "f", func(args ...any) error {
		got = append([]any(nil), args...)
		return sentinel
	}); err != nil {
		t.Fatal(err)
	}

	err := r.Call(context.Background(), "b", "f", 1, "two")
	if !errors.Is(err, sentinel) {
		t.Fatalf("Call = %v, want wrapped sentinel", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != "two" {
		t.Errorf("args = %v, want [1 two]", got)
	}
}

func TestRegistry_CallFallsBackToInvoker(t *testing.T) {
	r := NewRegistry()
	e := r.Create("b")
	r.Gate().Signal()

	var invoked string
	e.SetInvoker(func(name string, args ...any) error {
		invoked = name
		return nil
	})
	if err := r.AddFunction("b", "local", func(args ...any) error { return nil }); err != nil {
		t.Fatal(err)
	}

	if err := r.Call(context.Background(), "b", "local"); err != nil {
		t.Fatal(err)
	}
	if invoked != "" {
		t.Fatal("invoker consulted despite local function")
	}
	if err := r.Call(context.Background(), "b", "remote"); err != nil {
		t.Fatal(err)
	}
	if invoked != "remote" {
		t.Errorf("invoker called with %q, want remote", invoked)
	}
}

func TestRegistry_PerBindingGates(t *testing.T) {
	r := NewRegistry(WithPerBindingGates())
	a := r.Create("a")
	b := r.Create("b")
	if a.Gate() == b.Gate() {
		t.Fatal("per-binding entries share a gate")
	}
	if a.Gate() == r.Gate() {
		t.Fatal("per-binding entry uses the page gate")
	}

	a.Gate().Signal()
	if b.Gate().Signaled() {
		t.Fatal("signaling one binding opened another")
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	r.Create("b")
	r.Remove("b")
	if _, err := r.Get("b"); err == nil {
		t.Fatal("entry survived Remove")
	}
	r.Remove("b") // absent id is fine
}

func TestEntry_SetState(t *testing.T) {
	r := NewRegistry()
	e := r.Create("b")

	var applied any
	if err := r.AddState("b", "counter", 0, func(v any) { applied = v }); err != nil {
		t.Fatal(err)
	}

	if !e.SetState("counter", 5) {
		t.Fatal("SetState returned false for registered variable")
	}
	if applied != 5 {
		t.Errorf("setter applied %v, want 5", applied)
	}
	if v, ok := e.State("counter"); !ok || v != 5 {
		t.Errorf("State = %v, %v, want 5, true", v, ok)
	}
	if e.SetState("missing", 1) {
		t.Fatal("SetState returned true for unregistered variable")
	}
}

// Pure host-side counter round trip: state, setter, and function all live in
// the registry, a queued increment drains on signal, and direct calls follow.
func TestRegistry_CounterRoundTrip(t *testing.T) {
	r := NewRegistry()
	e := r.Create("counter1")

	if err := r.AddState("counter1", "counter", 0, nil); err != nil {
		t.Fatal(err)
	}
	if err := r.AddFunction("counter1", "increment", func(args ...any) error {
		v, _ := e.State("counter")
		e.SetState("counter", v.(int)+1)
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	queued := r.CallAsync("counter1", "increment")
	if v, _ := e.State("counter"); v != 0 {
		t.Fatalf("counter moved before signal: %v", v)
	}

	r.Gate().Signal()
	if err := <-queued; err != nil {
		t.Fatal(err)
	}
	if err := r.Call(context.Background(), "counter1", "increment"); err != nil {
		t.Fatal(err)
	}

	if v, _ := e.State("counter"); v != 2 {
		t.Errorf("counter = %v, want 2", v)
	}
}
