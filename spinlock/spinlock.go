// Package spinlock is the kernel's only synchronization primitive (spec.md
// §4.7): a scoped mutual-exclusion cell that disables interrupts on
// acquire and restores the prior interrupt-enable state on release. Its
// defining oddity is that the guard returned by Lock must be able to
// outlive a stack swap — the scheduler acquires the scheduler lock,
// performs the architectural context switch, and only releases the guard
// after resuming on the incoming task's stack (spec.md §4.8). The guard is
// therefore an ordinary heap value the caller threads through the switch
// by hand, not a defer-only RAII object.
//
// Grounded on the original source's src/locking/spinlock.rs test-and-set
// loop with a pause instruction between attempts.
package spinlock

import (
	"sync/atomic"

	"github.com/nyxkernel/corekernel/cpu"
	"github.com/nyxkernel/corekernel/kernelerr"
)

// irqDisable and irqEnable indirect the privileged CLI/STI instructions.
// Production never overrides them; UseFakeIRQControl swaps in a
// software-only tracker so packages built on Lock (clock, sched,
// interrupt) can exercise their locking paths under go test, which runs
// as an ordinary ring-3 process with no access to CLI/STI.
var (
	irqDisable = cpu.SaveFlagsCli
	irqEnable  = cpu.Sti
)

// UseFakeIRQControl replaces CLI/STI with a software-only interrupt-
// enable tracker for the duration of a test, returning a function that
// restores the real instructions. Kernel code must never call this.
func UseFakeIRQControl() (restore func()) {
	prevDisable, prevEnable := irqDisable, irqEnable
	enabled := true
	irqDisable = func() bool {
		was := enabled
		enabled = false
		return was
	}
	irqEnable = func() { enabled = true }
	return func() {
		irqDisable = prevDisable
		irqEnable = prevEnable
	}
}

// Lock is a spinlock cell. Zero value is unlocked.
type Lock struct {
	held atomic.Bool
}

// Guard represents one held acquisition of a Lock. It must be released
// exactly once, via Release. A Guard is a plain value safe to store in a
// task's pre-seeded stack data and hand across a context switch.
type Guard struct {
	lock       *Lock
	prevWasIF  bool
	released   bool
}

// Lock spins (with Pause between attempts) until it acquires l, disabling
// interrupts first and recording whether they were enabled beforehand.
// Nesting a second, different lock while holding one is safe: the inner
// acquire observes interrupts already disabled and so its own Release
// will not re-enable them (spec.md §4.7's nesting property).
func (l *Lock) Lock() *Guard {
	wasEnabled := irqDisable()
	for !l.held.CompareAndSwap(false, true) {
		cpu.Pause()
	}
	return &Guard{lock: l, prevWasIF: wasEnabled}
}

// Release drops the guard, releasing the lock and restoring interrupts
// only if they were enabled at the matching Lock call. Releasing a guard
// twice is a fatal-at-runtime condition per spec.md §7.
func (g *Guard) Release() {
	if g.released {
		kernelerr.Halt(kernelerr.ErrDoubleLockRelease)
		return
	}
	g.released = true
	g.lock.held.Store(false)
	if g.prevWasIF {
		irqEnable()
	}
}

// Held reports whether the lock is currently held by anyone. Diagnostic
// use only — never a basis for lock-free decisions.
func (l *Lock) Held() bool {
	return l.held.Load()
}
