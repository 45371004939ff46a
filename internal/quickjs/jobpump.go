//go:build quickjs

package quickjs

import (
	"reflect"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"
)

// executePendingJobs drains the VM's pending-job queue (Promise reactions).
// The modernc.org/quickjs wrapper never calls JS_ExecutePendingJob itself, so
// without this pump a .then callback queued by an evaluation would never
// fire, deadlocking every generated fragment that awaits the readiness gate
// promise. The wrapper also keeps its runtime handle unexported, hence the
// reflection below.
func executePendingJobs(vm *quickjs.VM) {
	rt, tls, ok := extractRuntime(vm)
	if !ok {
		return
	}
	for lib.XJS_ExecutePendingJob(tls, rt, 0) > 0 {
	}
}

// extractRuntime reads the unexported runtime handle out of a *quickjs.VM:
// vm.runtime is a *runtime whose first fields are cRuntime (uintptr) and
// tls (*libc.TLS), the two arguments XJS_ExecutePendingJob needs. Verified
// against modernc.org/quickjs v0.17.1; a layout change here fails soft (no
// pump) rather than crashing.
func extractRuntime(vm *quickjs.VM) (cRuntime uintptr, tls *libc.TLS, ok bool) {
	rtField := reflect.ValueOf(vm).Elem().FieldByName("runtime")
	if !rtField.IsValid() || rtField.IsNil() {
		return 0, nil, false
	}
	rtVal := reflect.NewAt(rtField.Type().Elem(), unsafe.Pointer(rtField.Pointer())).Elem()

	cRuntimeField := rtVal.FieldByName("cRuntime")
	tlsField := rtVal.FieldByName("tls")
	if !cRuntimeField.IsValid() || !tlsField.IsValid() || tlsField.IsNil() {
		return 0, nil, false
	}
	return uintptr(cRuntimeField.Uint()), (*libc.TLS)(unsafe.Pointer(tlsField.Pointer())), true
}
