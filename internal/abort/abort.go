// Package abort provides the process-fatal hook used for invariant
// violations that must never be returned as an error (an oversized
// Fortuna generate request, or an output buffer shorter than the
// requested length). The
// default hook panics; tests override it to observe the violation
// without crashing the test binary.
package abort

import "fmt"

// Hook is called with a formatted message on an invariant violation.
// It must not return; the default implementation panics. Tests may
// replace it to assert that an abort occurred.
var Hook = func(msg string) {
	panic(msg)
}

// Abort formats msg and invokes Hook.
func Abort(format string, args ...interface{}) {
	Hook(fmt.Sprintf(format, args...))
}
