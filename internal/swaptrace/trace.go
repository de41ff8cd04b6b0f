// Package swaptrace is a deliberately inert extension seam for the rare,
// already-non-hot paths of the reclamation protocol: the helping-path
// fallback, a node's cooldown transition, and a writer depositing a
// replacement. Nothing in this package imports an actual tracing
// backend - a caller who wants spans wires one in from outside by
// implementing Hook and passing it to arcswap.WithTrace, the same way
// otpsg layers an otel.Tracer onto psg-go without psg-go itself
// depending on go.opentelemetry.io/otel.
package swaptrace

import "sync/atomic"

// Hook receives notifications from the module's slow paths. All methods
// must return quickly; they run on the calling goroutine, inline with
// (already rare) reclamation work.
type Hook interface {
	// OnLoadFallback fires when a Load falls back from the fast
	// debt-slot table to the helping path because the table was
	// saturated.
	OnLoadFallback()
	// OnCooldown fires when a node transitions from Cooldown back to
	// Unused and becomes available for a new owner.
	OnCooldown()
	// OnHelpReplace fires when a writer deposits a pre-incremented
	// replacement for a helping-path reader to adopt.
	OnHelpReplace()
}

type noop struct{}

func (noop) OnLoadFallback() {}
func (noop) OnCooldown()     {}
func (noop) OnHelpReplace()  {}

var current atomic.Pointer[Hook]

func init() {
	var h Hook = noop{}
	current.Store(&h)
}

// Set installs the Hook consulted by the rest of the module. Passing
// nil restores the no-op default. Process-wide, like swaplog.Set.
func Set(h Hook) {
	if h == nil {
		h = noop{}
	}
	current.Store(&h)
}

// Get returns the currently installed Hook.
func Get() Hook {
	return *current.Load()
}
