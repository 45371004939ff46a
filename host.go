// Package bridge lets host code that renders a reactive web UI interoperate
// with a browser-embedded interpreter: it generates the page bootstrap,
// reactive-hook wiring, and injectable script elements, and models the
// cross-runtime binding protocol (registry, readiness gate, call marshaling)
// on the host side.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// HostConfig holds configuration for a Host.
type HostConfig struct {
	// AutoReady resolves the readiness gate on interpreter completion
	// events. Disable for non-terminating embedded programs.
	AutoReady bool

	// Version selects the PyScript release for the bootstrap; empty means
	// DefaultPyScriptVersion.
	Version string

	// Protocol selects the wire format for all generated text.
	Protocol Protocol

	// Logger is the error-reporting channel for fire-and-forget calls.
	// Defaults to a no-op logger.
	Logger *zap.Logger
}

// Host connects a binding Registry and its ReadinessGate to an embedded
// runtime through a Transport. It evaluates the bootstrap, links the
// embedded-side gate resolution to the host-side gate, and supplies registry
// entries with a remote invoker so Call reaches functions registered on the
// embedded side.
//
// Transport access is serialized through the Host; the two runtime sides
// interleave cooperatively, never concurrently.
type Host struct {
	mu        sync.Mutex
	cfg       HostConfig
	transport Transport
	registry  *Registry
	log       *zap.Logger
}

// NewHost creates a Host on the default transport backend (goja, or QuickJS
// when built with -tags quickjs).
func NewHost(cfg HostConfig) (*Host, error) {
	t, err := newTransport()
	if err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}
	return NewHostWithTransport(cfg, t), nil
}

// NewHostWithTransport creates a Host on the given transport. Tests use this
// to substitute a mock transport for the embedded runtime.
func NewHostWithTransport(cfg HostConfig, t Transport) *Host {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		cfg:       cfg,
		transport: t,
		registry:  NewRegistry(WithLogger(log)),
		log:       log,
	}
}

// Registry returns the host-side binding registry.
func (h *Host) Registry() *Registry { return h.registry }

// Ready returns the shared readiness gate.
func (h *Host) Ready() *ReadinessGate { return h.registry.Gate() }

// Transport returns the underlying transport, for harnesses that drive the
// embedded side directly.
func (h *Host) Transport() Transport { return h.transport }

// Init evaluates the bootstrap in the embedded runtime and links its gate
// resolution back to the host-side gate, so a resolve on either side opens
// both.
func (h *Host) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	boot := BootstrapJS(BootstrapOptions{
		AutoReady: h.cfg.AutoReady,
		Version:   h.cfg.Version,
		Protocol:  h.cfg.Protocol,
	})
	if err := h.transport.Eval(boot); err != nil {
		return fmt.Errorf("evaluating bootstrap: %w", err)
	}

	if err := h.transport.RegisterFunc("__pysReadySignal", func() {
		h.registry.Gate().Signal()
	}); err != nil {
		return fmt.Errorf("registering readiness hook: %w", err)
	}
	patch := fmt.Sprintf(`(() => {
	const ready = %s;
	const prev = ready.resolve;
	ready.resolve = () => { prev(); __pysReadySignal(); };
})();
`, h.readyExpr())
	if err := h.transport.Eval(patch); err != nil {
		return fmt.Errorf("linking readiness gate: %w", err)
	}
	return nil
}

// Mount registers a bridge component: a fresh registry entry (replacing any
// prior entry for the same BindingID) wired with a remote invoker for the
// component's embedded-side functions.
func (h *Host) Mount(c *BridgeComponent) *Entry {
	entry := h.registry.Create(c.ID())
	entry.SetInvoker(h.invoker(c.ID()))
	return entry
}

// EvalHooks evaluates the component's hook wiring in the transport. In the
// page the UI runtime does this during render; hosts call it when simulating
// that runtime (the transport must provide useState/useRef/useEffect).
func (h *Host) EvalHooks(c *BridgeComponent) error {
	script, err := c.HookScript()
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.transport.Eval(script); err != nil {
		return fmt.Errorf("evaluating hook wiring for binding %q: %w", c.ID(), err)
	}
	return nil
}

// Call invokes a named function under a binding, blocking on the readiness
// gate. Functions registered host-side take precedence; otherwise the call
// crosses into the embedded runtime.
func (h *Host) Call(ctx context.Context, id, name string, args ...any) error {
	return h.registry.Call(ctx, id, name, args...)
}

// CallAsync schedules a call and returns its completion channel. Errors are
// reported on the configured logger, never raised into the caller.
func (h *Host) CallAsync(id, name string, args ...any) <-chan error {
	return h.registry.CallAsync(id, name, args...)
}

// Signal resolves the readiness gate on both sides. Used by manual-signal
// hosts; auto-ready pages signal through the interpreter completion event.
func (h *Host) Signal() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Resolve the embedded side first so queued embedded awaits drain; the
	// linked resolve also signals the host gate, but signal explicitly in
	// case the transport evaluation fails.
	err := h.transport.Eval(h.readyExpr() + ".resolve();")
	h.transport.RunMicrotasks()
	h.registry.Gate().Signal()
	if err != nil {
		return fmt.Errorf("resolving embedded readiness gate: %w", err)
	}
	return nil
}

// readyExpr returns the JS expression of the embedded-side gate object.
func (h *Host) readyExpr() string {
	if h.cfg.Protocol == ProtocolGlobals {
		return "globalThis.pyScriptReady"
	}
	return "globalThis.pysBridge.ready"
}

// invoker builds the remote dispatch for a binding: existence check first so
// a missing function is a distinguishable *UnknownFunctionError, then the
// call with sanitized arguments.
func (h *Host) invoker(id string) Invoker {
	safeID := SanitizeID(id)
	return func(name string, args ...any) error {
		var check, call string
		if h.cfg.Protocol == ProtocolGlobals {
			slot := Name(name, safeID)
			check = fmt.Sprintf(`typeof globalThis[%q] === "function"`, slot)
			call = fmt.Sprintf(`globalThis[%q](%s);`, slot, sanitizeArgs(args))
		} else {
			check = fmt.Sprintf(`(function() {
	var e = globalThis.pysBridge.bindings.get(%q);
	return !!(e && typeof e.funcs[%q] === "function");
})()`, safeID, name)
			call = fmt.Sprintf(`globalThis.pysBridge.get(%q).funcs[%q](%s);`, safeID, name, sanitizeArgs(args))
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		ok, err := h.transport.EvalBool(check)
		if err != nil {
			return fmt.Errorf("resolving %q on binding %q: %w", name, id, err)
		}
		if !ok {
			return &UnknownFunctionError{ID: id, Name: name}
		}
		if err := h.transport.Eval(call); err != nil {
			return fmt.Errorf("invoking %q on binding %q: %w", name, id, err)
		}
		h.transport.RunMicrotasks()
		return nil
	}
}
