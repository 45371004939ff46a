package bridge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Setter updates a host-side state variable (the host runtime's state setter
// for a registered state hook).
type Setter func(value any)

// Func is a callable registered under a binding. Arguments arrive as the
// host-side values passed to Call; the callee marshals as needed.
type Func func(args ...any) error

// Invoker dispatches a named function call to the embedded side of a binding
// when no local function is registered under the name. It must return
// *UnknownFunctionError (wrapped or not) when the embedded side has no such
// function either.
type Invoker func(name string, args ...any) error

type stateVar struct {
	value  any
	setter Setter
}

// Entry is the per-binding record: registered state variables, refs, callable
// functions, the readiness gate for the binding's in-flight script, and an
// optional remote invoker supplied by the host transport.
type Entry struct {
	id   string
	gate *ReadinessGate

	mu      sync.Mutex
	state   map[string]*stateVar
	refs    map[string]any
	funcs   map[string]Func
	invoker Invoker
}

// ID returns the entry's BindingID.
func (e *Entry) ID() string { return e.id }

// Gate returns the readiness gate this entry's calls wait on.
func (e *Entry) Gate() *ReadinessGate { return e.gate }

// State returns the current value of a registered state variable.
func (e *Entry) State(name string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sv, ok := e.state[name]
	if !ok {
		return nil, false
	}
	return sv.value, true
}

// SetState invokes the registered setter for name and records the new value.
// It is a no-op returning false when no such state variable exists.
func (e *Entry) SetState(name string, value any) bool {
	e.mu.Lock()
	sv, ok := e.state[name]
	if ok {
		sv.value = value
	}
	setter := Setter(nil)
	if ok {
		setter = sv.setter
	}
	e.mu.Unlock()
	if !ok {
		return false
	}
	if setter != nil {
		setter(value)
	}
	return true
}

// Ref returns a registered ref handle.
func (e *Entry) Ref(name string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.refs[name]
	return h, ok
}

// SetInvoker installs the remote invoker consulted by Call when no local
// function matches. Last writer wins.
func (e *Entry) SetInvoker(inv Invoker) {
	e.mu.Lock()
	e.invoker = inv
	e.mu.Unlock()
}

func (e *Entry) lookup(name string) (Func, Invoker) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.funcs[name], e.invoker
}

// Registry is the process-wide (page-lifetime) table of bindings, keyed by
// BindingID. Registration operations are idempotent by design: components
// re-render, so repeated registration of the same name overwrites silently.
//
// Entries persist for the registry's lifetime; there is no automatic cleanup
// on component unmount. Hosts that need reclamation call Remove explicitly.
type Registry struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	gate       *ReadinessGate
	perBinding bool
	log        *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the error-reporting channel for fire-and-forget calls.
// Defaults to a no-op logger.
func WithLogger(log *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithPerBindingGates gives every entry its own readiness gate instead of the
// shared page-level gate (the per-instance bridging variant).
func WithPerBindingGates() RegistryOption {
	return func(r *Registry) { r.perBinding = true }
}

// NewRegistry creates an empty registry with a shared, unsignaled readiness
// gate.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]*Entry),
		gate:    NewReadinessGate(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Gate returns the shared page-level readiness gate.
func (r *Registry) Gate() *ReadinessGate { return r.gate }

// Create installs a fresh empty entry for id, replacing (not merging with)
// any prior entry. With per-binding gates the replacement gets a new
// unsignaled gate; otherwise it shares the page gate.
func (r *Registry) Create(id string) *Entry {
	gate := r.gate
	if r.perBinding {
		gate = NewReadinessGate()
	}
	e := &Entry{
		id:    id,
		gate:  gate,
		state: make(map[string]*stateVar),
		refs:  make(map[string]any),
		funcs: make(map[string]Func),
	}
	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()
	return e
}

// Get returns the entry for id, or *UnknownBindingError if absent.
func (r *Registry) Get(id string) (*Entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownBindingError{ID: id}
	}
	return e, nil
}

// Remove deletes the entry for id, if any. Never called automatically;
// stale entries are harmless but hold memory for the page lifetime.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// AddState registers a state variable and its setter under the binding.
// Overwrites silently on repeated registration.
func (r *Registry) AddState(id, name string, value any, setter Setter) error {
	e, err := r.Get(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.state[name] = &stateVar{value: value, setter: setter}
	e.mu.Unlock()
	return nil
}

// AddRef registers a ref handle under the binding. Overwrites silently.
func (r *Registry) AddRef(id, name string, handle any) error {
	e, err := r.Get(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.refs[name] = handle
	e.mu.Unlock()
	return nil
}

// AddFunction registers a callable under the binding. Last writer wins.
func (r *Registry) AddFunction(id, name string, fn Func) error {
	e, err := r.Get(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.funcs[name] = fn
	e.mu.Unlock()
	return nil
}

// Call invokes the named function under the binding, blocking on the entry's
// readiness gate first. The function lookup happens after the gate opens:
// embedded-side registration completes before the gate signals, so an eager
// lookup would race it. Returns *UnknownBindingError, *UnknownFunctionError,
// a ctx error, or the callee's error. A panicking callee is recovered and
// reported as an error, never propagated into the host loop.
func (r *Registry) Call(ctx context.Context, id, name string, args ...any) error {
	e, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := e.gate.AwaitReady(ctx); err != nil {
		return fmt.Errorf("awaiting readiness for binding %q: %w", id, err)
	}
	fn, inv := e.lookup(name)
	switch {
	case fn != nil:
		return invoke(fn, id, name, args)
	case inv != nil:
		return inv(name, args...)
	default:
		return &UnknownFunctionError{ID: id, Name: name}
	}
}

// CallAsync schedules the call and returns immediately: fire-and-forget with
// per-call completion signaling. The returned channel is buffered and
// receives exactly one value — the call's error, nil on success — so callers
// may ignore it. Errors are also reported on the registry's logger; they are
// never raised into the caller's goroutine.
func (r *Registry) CallAsync(id, name string, args ...any) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := r.Call(context.Background(), id, name, args...)
		if err != nil {
			r.log.Error("bridge call failed",
				zap.String("binding", id),
				zap.String("function", name),
				zap.Error(err))
		}
		done <- err
	}()
	return done
}

func invoke(fn Func, id, name string, args []any) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("function %q on binding %q panicked: %v", name, id, p)
		}
	}()
	if err := fn(args...); err != nil {
		return fmt.Errorf("calling %q on binding %q: %w", name, id, err)
	}
	return nil
}
