package bridge

import (
	"fmt"
	"strings"
)

// SanitizeValue converts a host-side value into a literal safe to splice into
// generated source text. nil becomes the literal null; strings are
// double-quoted with backslashes and double quotes escaped; everything else
// uses its default textual representation, unquoted, so it must already be a
// valid literal in the target runtime (booleans, integers, floats).
//
// Control characters inside strings are intentionally not escaped; callers
// embedding multi-line strings are responsible for them.
func SanitizeValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		escaped := strings.ReplaceAll(v, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return `"` + escaped + `"`
	default:
		return fmt.Sprint(v)
	}
}

// sanitizeArgs renders a call argument list: each value sanitized, joined
// with ", ".
func sanitizeArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = SanitizeValue(a)
	}
	return strings.Join(parts, ", ")
}
