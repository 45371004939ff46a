package bridge

import "fmt"

// DefaultPyScriptVersion is the PyScript release loaded when no version is
// configured.
const DefaultPyScriptVersion = "2025.3.1"

// CoreScriptURL returns the URL of the PyScript core module for a release.
func CoreScriptURL(version string) string {
	if version == "" {
		version = DefaultPyScriptVersion
	}
	return fmt.Sprintf("https://pyscript.net/releases/%s/core.js", version)
}

// BootstrapOptions configures the page-initialization script.
type BootstrapOptions struct {
	// AutoReady resolves the readiness gate on the interpreter's completion
	// event (py:done / mpy:done). Disable for non-terminating programs such
	// as py-game render loops, which must resolve the gate manually at the
	// appropriate point in their own code.
	AutoReady bool

	// Version selects the PyScript release; empty means
	// DefaultPyScriptVersion.
	Version string

	// Protocol selects the generated wire format.
	Protocol Protocol
}

// BootstrapJS generates the module script that installs the shared global
// transport surface: the binding registry (registry protocol) and the
// readiness gate promise/resolve pair, with fire-once completion-event
// listeners in auto mode. It must be evaluated before any injected script.
func BootstrapJS(opts BootstrapOptions) string {
	if opts.Protocol == ProtocolGlobals {
		return fmt.Sprintf(`globalThis.pyScriptReady = (() => {
	let resolve;
	const promise = new Promise((res) => resolve = res);
	return { promise, resolve };
})();

if (%t) {
	addEventListener("py:done", () => globalThis.pyScriptReady.resolve(), { once: true });
	addEventListener("mpy:done", () => globalThis.pyScriptReady.resolve(), { once: true });
}
`, opts.AutoReady)
	}
	return fmt.Sprintf(`globalThis.pysBridge = (() => {
	const bindings = new Map();
	let resolve;
	const promise = new Promise((res) => resolve = res);
	return {
		bindings,
		ready: { promise, resolve },
		create(id) {
			const entry = { id: id, state: {}, setters: {}, refs: {}, funcs: {} };
			bindings.set(id, entry);
			return entry;
		},
		ensure(id) {
			return bindings.has(id) ? bindings.get(id) : this.create(id);
		},
		get(id) {
			const entry = bindings.get(id);
			if (!entry) throw new Error("pysbridge: unknown binding: " + id);
			return entry;
		},
	};
})();

if (%t) {
	addEventListener("py:done", () => globalThis.pysBridge.ready.resolve(), { once: true });
	addEventListener("mpy:done", () => globalThis.pysBridge.ready.resolve(), { once: true });
}
`, opts.AutoReady)
}
