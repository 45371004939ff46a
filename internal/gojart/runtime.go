// Package gojart implements the bridge transport on the goja JavaScript
// engine. It is the default backend: pure Go, with real Promise semantics,
// which makes it the reference environment for evaluating generated wiring
// in tests.
package gojart

import (
	"fmt"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
)

// eventShimJS installs minimal addEventListener/dispatchEvent globals. The
// bootstrap script subscribes to interpreter completion events through this
// surface; dispatch takes a bare event-type string.
const eventShimJS = `
(() => {
	const listeners = new Map();
	globalThis.addEventListener = (type, handler, options) => {
		if (!listeners.has(type)) listeners.set(type, []);
		listeners.get(type).push({ handler, once: !!(options && options.once) });
	};
	globalThis.removeEventListener = (type, handler) => {
		const list = listeners.get(type);
		if (!list) return;
		const i = list.findIndex((l) => l.handler === handler);
		if (i >= 0) list.splice(i, 1);
	};
	globalThis.dispatchEvent = (type) => {
		const list = listeners.get(type);
		if (!list) return;
		for (const l of list.slice()) {
			if (l.once) {
				const i = list.indexOf(l);
				if (i >= 0) list.splice(i, 1);
			}
			l.handler();
		}
	};
})();
`

// Runtime wraps a goja VM behind the core.Transport interface.
type Runtime struct {
	vm *goja.Runtime
}

// New creates a goja runtime with console and the event shim installed.
func New() (*Runtime, error) {
	vm := goja.New()
	registry := new(require.Registry)
	registry.Enable(vm)
	console.Enable(vm)

	r := &Runtime{vm: vm}
	if err := r.Eval(eventShimJS); err != nil {
		return nil, fmt.Errorf("installing event shim: %w", err)
	}
	return r, nil
}

// Eval evaluates JavaScript and discards the result.
func (r *Runtime) Eval(js string) error {
	_, err := r.vm.RunString(js)
	return err
}

// EvalString evaluates JavaScript and returns the result as a Go string.
// null and undefined results yield the empty string.
func (r *Runtime) EvalString(js string) (string, error) {
	v, err := r.vm.RunString(js)
	if err != nil {
		return "", err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", nil
	}
	return v.String(), nil
}

// EvalBool evaluates JavaScript and returns the result as a Go bool.
func (r *Runtime) EvalBool(js string) (bool, error) {
	v, err := r.vm.RunString(js)
	if err != nil {
		return false, err
	}
	b, ok := v.Export().(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v.Export())
	}
	return b, nil
}

// RegisterFunc registers a Go function as a global JavaScript function.
func (r *Runtime) RegisterFunc(name string, fn any) error {
	return r.vm.Set(name, fn)
}

// SetGlobal sets a global variable on the VM.
func (r *Runtime) SetGlobal(name string, value any) error {
	return r.vm.Set(name, value)
}

// RunMicrotasks is a no-op: goja drains the Promise job queue before each
// RunString returns.
func (r *Runtime) RunMicrotasks() {}

// DispatchEvent fires listeners registered via the event shim, e.g. the
// interpreter completion events ("py:done", "mpy:done").
func (r *Runtime) DispatchEvent(eventType string) error {
	return r.Eval(fmt.Sprintf("globalThis.dispatchEvent(%q);", eventType))
}
