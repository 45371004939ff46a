package bridge

import "fmt"

// ConfigurationError reports invalid build-time input: an unknown execution
// mode, a malformed PyScript config payload, or a bad identifier. It is
// returned from generation-time operations and is expected to fail the page
// build rather than degrade silently.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "bridge: invalid configuration: " + e.Reason
}

// UnknownBindingError is returned when a call addresses a BindingID that has
// no registry entry.
type UnknownBindingError struct {
	ID string
}

func (e *UnknownBindingError) Error() string {
	return fmt.Sprintf("bridge: unknown binding %q", e.ID)
}

// UnknownFunctionError is returned when a call addresses a function name that
// is not registered under the binding, locally or on the embedded side.
type UnknownFunctionError struct {
	ID   string
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("bridge: unknown function %q on binding %q", e.Name, e.ID)
}

// MissingScriptError is returned at generation time when a component declares
// no embedded-runtime procedure, or the declared procedure has an empty body.
type MissingScriptError struct {
	Name string
}

func (e *MissingScriptError) Error() string {
	if e.Name == "" {
		return "bridge: component defines no script"
	}
	return fmt.Sprintf("bridge: component defines no %q procedure", e.Name)
}
