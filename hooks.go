package bridge

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Protocol selects the wire format of generated text. The registry protocol
// keeps all per-binding names inside one globalThis.pysBridge entry; the
// globals protocol is the legacy format that suffixes each name onto a bare
// globalThis slot. Semantics are identical — only the generated source
// differs.
type Protocol int

const (
	// ProtocolRegistry addresses bindings via globalThis.pysBridge entries.
	ProtocolRegistry Protocol = iota
	// ProtocolGlobals addresses bindings via suffixed globalThis slots.
	ProtocolGlobals
)

func (p Protocol) String() string {
	switch p {
	case ProtocolRegistry:
		return "registry"
	case ProtocolGlobals:
		return "globals"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// HookEmitter generates the reactive-state wiring evaluated by the UI runtime
// once per render: state declarations, ref declarations, and effect
// subscriptions that populate the binding registry and defer calls into the
// embedded runtime until the readiness gate opens.
//
// Emission is pure text generation; nothing is executed here. Each fragment
// declares and registers in one piece, so evaluation never exposes a window
// where the registry holds a state without its value.
type HookEmitter struct {
	Protocol  Protocol
	BindingID string
}

// setterName derives the conventional setter identifier for a state variable:
// "counter" -> "setCounter".
func setterName(name string) string {
	if name == "" {
		return "set"
	}
	r, size := utf8.DecodeRuneInString(name)
	return "set" + strings.ToUpper(string(r)) + name[size:]
}

// UseState emits a state declaration plus its registration under the binding.
// The initial value is rendered through SanitizeValue.
func (h HookEmitter) UseState(name string, initial any) string {
	init := SanitizeValue(initial)
	setter := setterName(name)
	if h.Protocol == ProtocolGlobals {
		return fmt.Sprintf(`var [%s, %s] = useState(%s);
globalThis.%s = %s;
globalThis.%s = %s;
`, name, setter, init,
			Name(name, h.BindingID), name,
			Name(setter, h.BindingID), setter)
	}
	return fmt.Sprintf(`var [%s, %s] = useState(%s);
{
	const __pys = globalThis.pysBridge.ensure(%q);
	__pys.state[%q] = %s;
	__pys.setters[%q] = %s;
}
`, name, setter, init, SanitizeID(h.BindingID), name, name, name, setter)
}

// UseRef emits a ref declaration plus its registration under the binding.
func (h HookEmitter) UseRef(name string, initial any) string {
	init := SanitizeValue(initial)
	if h.Protocol == ProtocolGlobals {
		return fmt.Sprintf(`var %s = useRef(%s);
globalThis.%s = %s;
`, name, init, Name(name, h.BindingID), name)
	}
	return fmt.Sprintf(`var %s = useRef(%s);
{
	const __pys = globalThis.pysBridge.ensure(%q);
	__pys.refs[%q] = %s;
}
`, name, init, SanitizeID(h.BindingID), name, name)
}

// UseEffect emits an effect subscription that awaits the readiness gate and
// then invokes the named registered function. The effect re-runs on first
// mount and whenever a dependency's value changes; a nil deps list means
// every render, an empty list means mount only. Call failures are reported
// to the console error channel, never thrown into the render cycle.
func (h HookEmitter) UseEffect(fn string, deps []string) string {
	depsSuffix := ""
	if deps != nil {
		depsSuffix = ", [" + strings.Join(deps, ", ") + "]"
	}
	await, call := h.awaitAndCall(fn)
	return fmt.Sprintf(`useEffect(() => {
	async function runEffect() {
		await %s;
		try {
			%s();
		} catch (err) {
			console.error("pysbridge: calling %s:", err);
		}
	}
	runEffect();
}%s);
`, await, call, fn, depsSuffix)
}

// CallFunc emits a page-side callback expression (button handlers and the
// like) that awaits the readiness gate and invokes the named function with
// sanitized arguments. Fire-and-forget: the async IIFE's result is dropped.
func (h HookEmitter) CallFunc(fn string, args ...any) string {
	await, call := h.awaitAndCall(fn)
	return fmt.Sprintf(`(async () => {
	await %s;
	%s(%s);
})();
`, await, call, sanitizeArgs(args))
}

// awaitAndCall returns the gate-await expression and the callee expression
// for the emitter's protocol.
func (h HookEmitter) awaitAndCall(fn string) (await, call string) {
	if h.Protocol == ProtocolGlobals {
		return "globalThis.pyScriptReady.promise",
			"globalThis." + Name(fn, h.BindingID)
	}
	return "globalThis.pysBridge.ready.promise",
		fmt.Sprintf("globalThis.pysBridge.get(%q).funcs[%q]",
			SanitizeID(h.BindingID), fn)
}
