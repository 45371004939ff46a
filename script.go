package bridge

import (
	"fmt"
	"regexp"
	"strings"
)

// GenerateScript serializes embedded-runtime source into injectable script
// text: common leading whitespace is removed, surrounding blank space is
// trimmed, a trailing newline is guaranteed, and every non-blank line is
// reindented by indent spaces when requested. Returns *MissingScriptError
// when the source is blank.
func GenerateScript(source string, indent int) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", &MissingScriptError{}
	}
	text := strings.TrimSpace(dedent(source)) + "\n"
	if indent > 0 {
		text = reindent(text, indent)
	}
	return text, nil
}

// ExtractProcedure locates the declared procedure `def name(...)` (or
// `async def name(...)`) in the embedded-language source and returns its body
// with the declaration header discarded and the body dedented to column
// zero. The header must fit on one line. Returns *MissingScriptError when no
// such procedure exists or its body is empty.
//
// Extraction happens at generation time, so a malformed component fails the
// page build rather than erroring in the browser.
func ExtractProcedure(source, name string) (string, error) {
	if name == "" {
		name = "script"
	}
	header := regexp.MustCompile(`^([ \t]*)(?:async[ \t]+)?def[ \t]+` + regexp.QuoteMeta(name) + `[ \t]*\(.*:[ \t]*$`)

	lines := strings.Split(source, "\n")
	start := -1
	headerIndent := ""
	for i, line := range lines {
		if m := header.FindStringSubmatch(line); m != nil {
			start = i + 1
			headerIndent = m[1]
			break
		}
	}
	if start < 0 {
		return "", &MissingScriptError{Name: name}
	}

	var body []string
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			body = append(body, "")
			continue
		}
		if !deeperThan(line, headerIndent) {
			break
		}
		body = append(body, line)
	}

	text := strings.TrimRight(dedent(strings.Join(body, "\n")), "\n")
	if strings.TrimSpace(text) == "" {
		return "", &MissingScriptError{Name: name}
	}
	return text + "\n", nil
}

// WrapOptions configures per-binding script wrapping.
type WrapOptions struct {
	// Signal resolves the readiness gate after the wrapped body returns.
	// Use for manual-signal pages whose interpreter completion event is
	// disabled; non-terminating bodies must instead resolve the gate
	// themselves at the appropriate point.
	Signal bool
}

// WrapBinding wraps an extracted procedure body with per-binding setup and
// teardown: it fetches the registry entry for the binding, exposes it (with
// helper accessors) to the body through an async entry point, optionally
// signals the readiness gate after execution, and releases local references
// so completed-binding state does not leak into later evaluations.
//
// The wrapping targets the registry protocol; the legacy globals protocol
// injected unwrapped scripts.
func WrapBinding(body, id string, opts WrapOptions) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", &MissingScriptError{}
	}
	safeID := SanitizeID(id)

	var b strings.Builder
	b.WriteString(`from pyscript import window
from pyscript.ffi import create_proxy


class __PysEntry__:
    def __init__(self, entry):
        self._entry = entry

    def state(self, name):
        return getattr(self._entry.state, name)

    def set_state(self, name, value):
        getattr(self._entry.setters, name)(value)

    def ref(self, name):
        return getattr(self._entry.refs, name)

    def add_func(self, name, fn):
        setattr(self._entry.funcs, name, fn)


async def __pys_script__(pys, js, proxy):
`)
	b.WriteString(reindent(strings.TrimRight(dedent(body), "\n")+"\n", 4))
	b.WriteString(fmt.Sprintf(`

__pys_entry__ = window.pysBridge.get("%s")
await __pys_script__(__PysEntry__(__pys_entry__), window, create_proxy)
`, safeID))
	if opts.Signal {
		b.WriteString("window.pysBridge.ready.resolve()\n")
	}
	b.WriteString("del __pys_entry__, __pys_script__, __PysEntry__\n")
	return b.String(), nil
}

// dedent strips the longest common leading whitespace prefix from every
// non-blank line.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	if prefix == "" {
		return text
	}
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

// reindent prefixes every non-blank line with n spaces.
func reindent(text string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	i := 0
	for i < max && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// deeperThan reports whether line is indented strictly deeper than the given
// indent prefix.
func deeperThan(line, indent string) bool {
	if !strings.HasPrefix(line, indent) {
		return false
	}
	rest := line[len(indent):]
	return len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t')
}
