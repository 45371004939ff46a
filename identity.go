package bridge

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a fresh BindingID: universally unique for practical
// purposes, already in sanitized form (hex digits only).
func GenerateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SanitizeID strips every character outside [A-Za-z0-9_] from id. BindingIDs
// are spliced into generated identifiers, so anything else would corrupt the
// output source. Idempotent.
func SanitizeID(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Name derives the globally-addressable identifier for base under the given
// binding. An empty id denotes the singleton global binding and leaves base
// unchanged; otherwise the sanitized id is appended as a suffix. Two live
// bindings with distinct sanitized ids therefore never collide on the same
// base name.
func Name(base, id string) string {
	if id == "" {
		return base
	}
	return base + SanitizeID(id)
}
