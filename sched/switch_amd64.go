//go:build amd64

package sched

import "github.com/nyxkernel/corekernel/cpu"

// switchTo is the CPU-level half of a context switch archSwitch defers
// to. Production wires it straight to cpu.SwitchTo; go test replaces it
// (see switch_amd64_test.go) with a fake that cannot truly swap the running
// goroutine onto another hardware stack — go test already owns the one
// real stack it is executing on — but reaches the exact same Go-level
// effect for a task that has never run: releasing the pending guard and
// calling Body, the same work runTaskEntry does once a real switch lands
// at the trampoline.
var switchTo = func(outgoing, incoming *Task) {
	var savedSP *uintptr
	if outgoing != nil {
		savedSP = &outgoing.Info.SavedSP
	}
	switchCR3 := incoming.Info.SavedPageRoot != 0
	cpu.SwitchTo(savedSP, incoming.Info.SavedSP, incoming.Info.SavedPageRoot, switchCR3)
}
