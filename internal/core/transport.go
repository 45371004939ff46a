package core

// Transport abstracts the shared global namespace both runtimes communicate
// through. In the page it is globalThis; host-side it is an embedded JS
// engine (goja by default, QuickJS with -tags quickjs), which lets the
// registry's host-side and embedded-side views be exercised or mocked
// without a browser.
//
// Implementations are not safe for concurrent use; callers serialize access,
// matching the cooperative single-threaded model of both runtime sides.
type Transport interface {
	// Eval evaluates source in the embedded runtime and discards the result.
	Eval(js string) error

	// EvalString evaluates source and returns the result as a Go string.
	EvalString(js string) (string, error)

	// EvalBool evaluates source and returns the result as a Go bool.
	EvalBool(js string) (bool, error)

	// RegisterFunc exposes a Go function as a global in the embedded
	// runtime's namespace.
	RegisterFunc(name string, fn any) error

	// SetGlobal sets a global variable in the embedded runtime's namespace.
	// Basic Go types (string, int, float64, bool) are auto-converted.
	SetGlobal(name string, value any) error

	// RunMicrotasks pumps the embedded runtime's microtask queue (Promise
	// callbacks). A no-op for engines that drain the queue on evaluation.
	RunMicrotasks()
}
