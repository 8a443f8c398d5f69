package sched

// fakeSwitchTo stands in for switchTo under go test, mirroring the
// spinlock.UseFakeIRQControl seam for a primitive go test has
// no safe way to invoke directly. It does not swap RSP or CR3 — there is
// no second hardware stack in a hosted test process — but it performs
// the same Go-level effect a real switch has for a task that has never
// run: release the pending guard, then call Body. A resuming task (one
// that has already run) has nothing left to simulate here, since no test
// body ever suspends itself mid-call the way a real task yielding from
// inside its own Body would; fakeSwitchTo only ever needs to carry a
// first run through to completion.
func fakeSwitchTo(outgoing, incoming *Task) {
	if outgoing != nil {
		outgoing.Info.SavedSP = outgoing.stackTop()
	}
	if incoming.started {
		return
	}
	incoming.started = true
	releasePendingOn(activeScheduler)
	incoming.Body()
}
