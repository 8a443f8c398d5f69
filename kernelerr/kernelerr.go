// Package kernelerr implements the error taxonomy of spec.md §7: a small
// set of sentinel errors for the fatal-at-init and fatal-at-runtime cases,
// and the single Halt path every one of them ends at. Runtime paths do not
// propagate errors upward per §7 — they call Halt directly.
package kernelerr

import (
	"errors"

	"github.com/nyxkernel/corekernel/cpu"
	"github.com/nyxkernel/corekernel/klog"
)

var (
	// ErrMissingACPITable: fatal at init, §7 — no InterruptControllers
	// summary available and no fallback path applies.
	ErrMissingACPITable = errors.New("kernelerr: required ACPI table missing")

	// ErrNoIdleTask: fatal at init/runtime — task id 0 must always exist.
	ErrNoIdleTask = errors.New("kernelerr: idle task missing")

	// ErrIDTInstallFailed: fatal at init — the descriptor table could not
	// be built or loaded.
	ErrIDTInstallFailed = errors.New("kernelerr: IDT install failed")

	// ErrInvalidTaskHandle: fatal at runtime — a scheduler operation was
	// given a task id with no corresponding entry.
	ErrInvalidTaskHandle = errors.New("kernelerr: invalid task handle")

	// ErrGeneralProtectionFault: fatal at runtime, §7 — unrecoverable.
	ErrGeneralProtectionFault = errors.New("kernelerr: general protection fault")

	// ErrPageFault: fatal at runtime, §7 — unrecoverable.
	ErrPageFault = errors.New("kernelerr: page fault")

	// ErrDoubleLockRelease: fatal at runtime — a lock guard was dropped
	// twice, violating the spinlock's single-release invariant.
	ErrDoubleLockRelease = errors.New("kernelerr: spinlock guard released twice")
)

// Halt writes a diagnostic to the serial device (via klog, best-effort —
// it must not itself be able to fail the halt) and then loops forever
// with interrupts masked. It never returns. This is the single sink every
// fatal error in the core funnels into, per §7's propagation policy.
func Halt(err error) {
	cpu.Cli()
	klog.Emergency("halt: " + err.Error())
	for {
		cpu.Hlt()
	}
}
