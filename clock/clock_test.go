package clock

import (
	"os"
	"testing"

	"github.com/nyxkernel/corekernel/spinlock"
)

// SleepBusy spins on cpu.Hlt, a privileged instruction that faults
// outside ring 0 — untestable in a hosted process. Now/ScheduleAt/Tick
// cover everything else, but still take Clock's spinlock internally, so
// TestMain swaps in spinlock's software IRQ tracker for this package's
// test run.
func TestMain(m *testing.M) {
	restore := spinlock.UseFakeIRQControl()
	code := m.Run()
	restore()
	os.Exit(code)
}

func TestNowStartsAtZero(t *testing.T) {
	c := New()
	if c.Now() != 0 {
		t.Fatalf("Now() = %d, want 0", c.Now())
	}
}

func TestTickAdvancesNow(t *testing.T) {
	c := New()
	c.Tick(1500)
	if c.Now() != 1500 {
		t.Fatalf("Now() = %d, want 1500", c.Now())
	}
	c.Tick(500)
	if c.Now() != 2000 {
		t.Fatalf("Now() = %d, want 2000", c.Now())
	}
}

func TestScheduleAtFiresOnceDeadlinePasses(t *testing.T) {
	c := New()
	var fired bool
	c.ScheduleAt(1000, func() { fired = true })

	c.Tick(500)
	if fired {
		t.Fatal("callback fired before its deadline")
	}
	c.Tick(500)
	if !fired {
		t.Fatal("callback did not fire once its deadline passed")
	}
}

func TestScheduleAtPastDeadlineFiresOnNextTick(t *testing.T) {
	c := New()
	c.Tick(5000)

	var fired bool
	c.ScheduleAt(1, func() { fired = true })
	c.Tick(1)

	if !fired {
		t.Fatal("already-past deadline should fire on the next Tick")
	}
}

func TestCallbacksFireInAscendingDeadlineOrder(t *testing.T) {
	c := New()
	var order []int
	c.ScheduleAt(300, func() { order = append(order, 3) })
	c.ScheduleAt(100, func() { order = append(order, 1) })
	c.ScheduleAt(200, func() { order = append(order, 2) })

	c.Tick(300)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("fire order = %v, want [1 2 3]", order)
	}
}

func TestTickRecoversFromPanickingCallback(t *testing.T) {
	c := New()
	c.ScheduleAt(10, func() { panic("boom") })

	var ranAfter bool
	c.ScheduleAt(10, func() { ranAfter = true })

	c.Tick(10) // must not propagate the panic

	if !ranAfter {
		t.Fatal("a panicking callback must not prevent others from running in the same Tick")
	}
}

func TestFutureDeadlineDoesNotFireEarly(t *testing.T) {
	c := New()
	var fired bool
	c.ScheduleAt(10_000, func() { fired = true })

	c.Tick(1)
	if fired {
		t.Fatal("callback fired before its deadline")
	}
}
