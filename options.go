package arcswap

import (
	"go.uber.org/zap"

	"github.com/kolkov/arcswap/internal/genlock"
	"github.com/kolkov/arcswap/internal/swaplog"
	"github.com/kolkov/arcswap/internal/swaptrace"
)

type config struct {
	lockStorage genlock.Storage
}

func defaultConfig() config {
	return config{lockStorage: genlock.Global{}}
}

// Option configures a Cell at construction time.
type Option func(*config)

// WithLockStorage selects where CompareAndSwap's generation-lock
// counters live. The default, Global, shares a sharded, process-wide set
// of counters across every Cell using it (no per-Cell allocation, some
// cross-Cell contention); a *PrivateUnsharded gives the Cell an unshared
// counter pair of its own instead (one extra allocation, no cross-Cell
// contention). Grounded on original_source/src/gen_lock.rs's
// LockStorage::{Global,PrivateUnsharded}.
func WithLockStorage(s genlock.Storage) Option {
	return func(c *config) { c.lockStorage = s }
}

// WithLogger installs the zap logger consulted on this module's cold
// paths (node creation, generation-wrap cooldown, genlock guard
// overflow). It is process-wide, not per-Cell - mirroring
// internal/swaplog's single shared sink - so the last call wins; pass
// nil to restore the no-op default.
//
// There is deliberately no WithStrategy: the helping strategy alone
// carries an unresolved ABA race the hybrid strategy (this module's
// only wired strategy) avoids, so no alternative strategy is exposed as
// a construction-time choice.
func WithLogger(l *zap.Logger) Option {
	return func(*config) { swaplog.Set(l) }
}

// WithTrace installs a swaptrace.Hook notified from the module's rare
// slow paths (helping-path fallback, node cooldown, writer-deposited
// replacement) - never from the fast-slot hit path. Process-wide, not
// per-Cell, same as WithLogger; pass nil to restore the no-op default.
// A caller wanting distributed-tracing spans implements Hook themselves
// and wires in e.g. an otel.Tracer from outside this module.
func WithTrace(h swaptrace.Hook) Option {
	return func(*config) { swaptrace.Set(h) }
}
