package bridge

import (
	"testing"

	"github.com/pysbridge/bridge/internal/gojart"
)

// hookShimJS simulates the UI runtime's hook surface so generated wiring can
// be evaluated for real: slot-indexed useState/useRef, dependency-compared
// useEffect, and a __render entry point that re-evaluates wiring and flushes
// queued effects the way a render cycle does.
const hookShimJS = `
globalThis.__hooks = { slots: [], refs: [], prevDeps: [], effects: [], si: 0, ri: 0, ei: 0 };

globalThis.useState = (initial) => {
	const h = globalThis.__hooks;
	const i = h.si++;
	if (h.slots.length <= i) h.slots[i] = initial;
	return [h.slots[i], (v) => { h.slots[i] = v; }];
};

globalThis.useRef = (initial) => {
	const h = globalThis.__hooks;
	const i = h.ri++;
	if (h.refs.length <= i) h.refs[i] = { current: initial };
	return h.refs[i];
};

globalThis.useEffect = (fn, deps) => {
	const h = globalThis.__hooks;
	const i = h.ei++;
	const prev = h.prevDeps[i];
	const changed = deps === undefined || prev === undefined ||
		deps.length !== prev.length || deps.some((d, j) => d !== prev[j]);
	h.prevDeps[i] = deps;
	if (changed) h.effects.push(fn);
};

globalThis.__render = (wiring) => {
	const h = globalThis.__hooks;
	h.si = 0; h.ri = 0; h.ei = 0;
	(0, eval)(wiring);
	for (const fn of h.effects.splice(0)) fn();
};
`

// newTestHost builds an initialized Host on a real goja transport with the
// hook shim installed.
func newTestHost(t *testing.T, cfg HostConfig) (*Host, *gojart.Runtime) {
	t.Helper()
	rt, err := gojart.New()
	if err != nil {
		t.Fatal(err)
	}
	h := NewHostWithTransport(cfg, rt)
	if err := h.Init(); err != nil {
		t.Fatal(err)
	}
	if err := rt.Eval(hookShimJS); err != nil {
		t.Fatal(err)
	}
	return h, rt
}

// render pushes a component's hook wiring through the shim's render cycle.
func render(t *testing.T, rt *gojart.Runtime, c *BridgeComponent) {
	t.Helper()
	wiring, err := c.HookScript()
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.SetGlobal("__wiring", wiring); err != nil {
		t.Fatal(err)
	}
	if err := rt.Eval("globalThis.__render(globalThis.__wiring);"); err != nil {
		t.Fatal(err)
	}
}
