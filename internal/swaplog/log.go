// Package swaplog is the structured-logging seam for the rest of the
// module. It is consulted only from cold paths - node creation,
// generation-counter-wrap cooldown, genlock guard overflow - never from
// Cell[T].Load's hot path, following the same discipline a race
// detector applies to its raceread/racewrite instrumentation (no
// logging on the instrumented per-access hot path).
package swaplog

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[zap.Logger]

func init() {
	current.Store(zap.NewNop())
}

// Set installs the logger used by the rest of the module. Passing nil
// restores the no-op logger. Intended to be called once, early (e.g. from
// an application's main), mirroring how otpsg wires a zap logger into
// psg-go from the outside rather than having the library construct its
// own.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// L returns the currently installed logger.
func L() *zap.Logger {
	return current.Load()
}
