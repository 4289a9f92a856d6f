package interp

import "sync"

var (
	warmupOnce    sync.Once
	intrinsicRoot *Scope
)

// Warmup performs one-shot initialization of every process-wide
// resource named in spec §5: the value pool, the string interner, the
// intrinsic-constants scope, and the built-in function map. It is
// idempotent and safe to call more than once (spec §6).
func Warmup() {
	warmupOnce.Do(func() {
		globalInterner = newInterner()
		globalValuePool = newValuePool()
		intrinsicRoot = NewIntrinsicScope()
		initBuiltins()
	})
}

// Teardown exists for symmetry with Warmup; the core has no explicit
// teardown (spec §5: "process-wide state with a one-shot
// initialization at warmup and no explicit teardown"), so it is a
// documented no-op rather than an unimplemented stub.
func Teardown() {}

// IntrinsicScope returns the shared, process-wide IntrinsicConstants
// scope created by Warmup. Callers must call Warmup first.
func IntrinsicScope() *Scope {
	return intrinsicRoot
}
