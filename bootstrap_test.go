package bridge

import (
	"strings"
	"testing"
)

func TestCoreScriptURL(t *testing.T) {
	if got := CoreScriptURL(""); got != "https://pyscript.net/releases/"+DefaultPyScriptVersion+"/core.js" {
		t.Errorf("CoreScriptURL(\"\") = %q", got)
	}
	if got := CoreScriptURL("2024.1.1"); got != "https://pyscript.net/releases/2024.1.1/core.js" {
		t.Errorf("CoreScriptURL = %q", got)
	}
}

func TestBootstrapJS_Registry(t *testing.T) {
	js := BootstrapJS(BootstrapOptions{AutoReady: true})
	if err := ValidateJS(js); err != nil {
		t.Fatalf("bootstrap does not parse: %v", err)
	}
	for _, want := range []string{
		"globalThis.pysBridge",
		"ready: { promise, resolve }",
		`addEventListener("py:done"`,
		`addEventListener("mpy:done"`,
		"{ once: true }",
	} {
		if !strings.Contains(js, want) {
			t.Errorf("bootstrap missing %q", want)
		}
	}
}

func TestBootstrapJS_Globals(t *testing.T) {
	js := BootstrapJS(BootstrapOptions{AutoReady: true, Protocol: ProtocolGlobals})
	if err := ValidateJS(js); err != nil {
		t.Fatalf("bootstrap does not parse: %v", err)
	}
	if !strings.Contains(js, "globalThis.pyScriptReady") {
		t.Error("globals bootstrap missing pyScriptReady")
	}
	if strings.Contains(js, "pysBridge") {
		t.Error("globals bootstrap leaks registry surface")
	}
}

// The auto-ready flag is baked into the generated text as a literal condition,
// so manual-signal pages still install no-op listener blocks guarded by false.
func TestBootstrapJS_AutoReadyFlag(t *testing.T) {
	if js := BootstrapJS(BootstrapOptions{AutoReady: true}); !strings.Contains(js, "if (true)") {
		t.Error("auto mode not baked as true")
	}
	if js := BootstrapJS(BootstrapOptions{AutoReady: false}); !strings.Contains(js, "if (false)") {
		t.Error("manual mode not baked as false")
	}
}

// The completion-event listeners must capture resolve lazily. A host patches
// ready.resolve after the bootstrap runs; a listener holding the original
// function reference would bypass the patch.
func TestBootstrapJS_ListenersResolveLazily(t *testing.T) {
	for _, p := range []Protocol{ProtocolRegistry, ProtocolGlobals} {
		js := BootstrapJS(BootstrapOptions{AutoReady: true, Protocol: p})
		if !strings.Contains(js, "() => globalThis.pysBridge.ready.resolve()") &&
			!strings.Contains(js, "() => globalThis.pyScriptReady.resolve()") {
			t.Errorf("%v listeners capture resolve eagerly:\n%s", p, js)
		}
	}
}

func TestValidateJS(t *testing.T) {
	if err := ValidateJS("const x = 1;"); err != nil {
		t.Errorf("valid source rejected: %v", err)
	}
	if err := ValidateJS("const x = ;"); err == nil {
		t.Error("malformed source accepted")
	}
}
