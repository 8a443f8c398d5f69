//go:build amd64

package sched

import (
	"reflect"

	"github.com/nyxkernel/corekernel/cpu"
)

// activeScheduler is the single Scheduler instance taskEntryTrampoline
// dispatches into: the trampoline has no receiver, only the *Task
// pre-seeded on the new task's own stack, so it reaches the scheduler
// that owns the pending guard through this package-level instance
// instead, the same pattern interrupt.activeController uses for its
// entry points. Set once by New.
var activeScheduler *Scheduler

// taskEntryTrampoline is where a never-run task's pre-seeded stack
// resumes the first time switchTo (cpu.SwitchTo) loads its SavedSP: the
// six zeroed callee-saved-register slots newTask wrote satisfy SwitchTo's
// RET, landing here with the task's *Task sitting just above the return
// address on the stack, per spec.md §4.8's entry-trampoline step. Body
// lives in entry_amd64.s.
//
//go:noescape
func taskEntryTrampoline()

// trampolineEntryAddr resolves taskEntryTrampoline's own address for
// newTask to pre-seed as a never-run task's return address — the same
// reflect.ValueOf(fn).Pointer() idiom interrupt uses for its fault and
// trampoline-table entries.
func trampolineEntryAddr() uintptr {
	return reflect.ValueOf(taskEntryTrampoline).Pointer()
}

// runTaskEntry is taskEntryTrampoline's Go-level half, called with the
// task pointer recovered from the stack. It releases the guard the
// scheduler handed off across the switch (spec.md §4.7's lock-across-
// switch requirement applies just as much to a first run as to a resume)
// and then runs the task body. Body is never expected to return — this
// core has no process-exit path (spec.md's Non-goals) — so falling out
// of it halts rather than returning into whatever garbage sits above the
// trampoline's own unused stack slot.
func runTaskEntry(t *Task) {
	releasePendingOn(activeScheduler)
	t.Body()
	for {
		cpu.Hlt()
	}
}

func releasePendingOn(s *Scheduler) {
	if s != nil {
		s.releasePending()
	}
}
