//go:build quickjs

// Package quickjs implements the bridge transport on the QuickJS engine.
// Selected with -tags quickjs; the default backend is goja.
package quickjs

import (
	"fmt"

	"modernc.org/quickjs"
)

// eventShimJS installs minimal addEventListener/dispatchEvent globals, the
// surface the bootstrap script subscribes to for interpreter completion
// events. Dispatch takes a bare event-type string.
const eventShimJS = `
(function() {
	var listeners = {};
	globalThis.addEventListener = function(type, handler, options) {
		if (!listeners[type]) listeners[type] = [];
		listeners[type].push({ handler: handler, once: !!(options && options.once) });
	};
	globalThis.removeEventListener = function(type, handler) {
		var list = listeners[type];
		if (!list) return;
		for (var i = 0; i < list.length; i++) {
			if (list[i].handler === handler) { list.splice(i, 1); return; }
		}
	};
	globalThis.dispatchEvent = function(type) {
		var list = listeners[type];
		if (!list) return;
		var fire = list.slice();
		for (var i = 0; i < fire.length; i++) {
			var l = fire[i];
			if (l.once) {
				var j = list.indexOf(l);
				if (j >= 0) list.splice(j, 1);
			}
			l.handler();
		}
	};
})();
`

// Runtime wraps a QuickJS VM behind the core.Transport interface.
type Runtime struct {
	vm *quickjs.VM
}

// New creates a QuickJS runtime with the event shim installed.
func New() (*Runtime, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, fmt.Errorf("creating QuickJS VM: %w", err)
	}
	r := &Runtime{vm: vm}
	if err := r.Eval(eventShimJS); err != nil {
		vm.Close()
		return nil, fmt.Errorf("installing event shim: %w", err)
	}
	return r, nil
}

// Close disposes the underlying VM.
func (r *Runtime) Close() error {
	return r.vm.Close()
}

// Eval evaluates JavaScript and discards the result.
func (r *Runtime) Eval(js string) error {
	v, err := r.vm.EvalValue(js, quickjs.EvalGlobal)
	if err != nil {
		return err
	}
	v.Free()
	return nil
}

// EvalString evaluates JavaScript and returns the result as a Go string.
func (r *Runtime) EvalString(js string) (string, error) {
	result, err := r.vm.Eval(js, quickjs.EvalGlobal)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return fmt.Sprint(result), nil
}

// EvalBool evaluates JavaScript and returns the result as a Go bool.
func (r *Runtime) EvalBool(js string) (bool, error) {
	result, err := r.vm.Eval(js, quickjs.EvalGlobal)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", result)
	}
	return b, nil
}

// RegisterFunc registers a Go function as a global JavaScript function.
// Multi-value Go returns (T, error) are unwrapped on the JS side: on success
// returns T, on error throws a TypeError, because the QuickJS Go wrapper
// returns multi-value results as JS arrays.
func (r *Runtime) RegisterFunc(name string, fn any) error {
	rawName := "__raw_" + name
	if err := r.vm.RegisterFunc(rawName, fn, false); err != nil {
		return err
	}
	wrapJS := fmt.Sprintf(`(function() {
		var raw = globalThis[%q];
		globalThis[%q] = function() {
			var r = raw.apply(this, arguments);
			if (Array.isArray(r)) {
				if (r[1] !== null && r[1] !== undefined) throw new TypeError("calling %s: " + r[1]);
				return r[0];
			}
			return r;
		};
		delete globalThis[%q];
	})()`, rawName, name, name, rawName)
	return r.Eval(wrapJS)
}

// SetGlobal sets a global property on the VM's global object.
func (r *Runtime) SetGlobal(name string, value any) error {
	atom, err := r.vm.NewAtom(name)
	if err != nil {
		return fmt.Errorf("creating atom %q: %w", name, err)
	}
	glob := r.vm.GlobalObject()
	defer glob.Free()
	return glob.SetProperty(atom, value)
}

// RunMicrotasks pumps the QuickJS microtask queue. Unlike goja, QuickJS does
// not drain pending Promise jobs on evaluation, so callers must pump after
// any evaluation that settles a promise.
func (r *Runtime) RunMicrotasks() {
	executePendingJobs(r.vm)
}

// DispatchEvent fires listeners registered via the event shim.
func (r *Runtime) DispatchEvent(eventType string) error {
	if err := r.Eval(fmt.Sprintf("globalThis.dispatchEvent(%q);", eventType)); err != nil {
		return err
	}
	r.RunMicrotasks()
	return nil
}
