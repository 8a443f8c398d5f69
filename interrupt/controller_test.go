package interrupt

import (
	"os"
	"testing"

	"github.com/nyxkernel/corekernel/spinlock"
)

// New programs real MMIO windows and requires a populated ACPI mapping —
// there is no hosted-process equivalent. newForTest exercises the same
// init() path against fakeMMIO and a fake port window, which is what
// these tests drive. Every path through Controller also takes c.lock, so
// TestMain swaps in spinlock's software IRQ tracker for the package's
// whole test run (see spinlock.UseFakeIRQControl).
func TestMain(m *testing.M) {
	restore := spinlock.UseFakeIRQControl()
	code := m.Run()
	restore()
	os.Exit(code)
}

func TestNewForTestProgramsFixedLineRouting(t *testing.T) {
	c := newForTest()

	timer := c.io.readEntry(lineTimer)
	if timer.masked() {
		t.Fatal("timer line should be unmasked by default")
	}
	if uint64(timer)&redVectorMask != uint64(VectorTimer) {
		t.Fatalf("timer line vector = %#x, want %#x", uint64(timer)&redVectorMask, VectorTimer)
	}

	mouse := c.io.readEntry(lineMouse)
	if !mouse.masked() {
		t.Fatal("mouse line should be masked by default")
	}
}

func TestRegisterHandlerAndDeviceHandlerInvokesIt(t *testing.T) {
	c := newForTest()

	var got uint8
	c.RegisterHandler(VectorTimer, func(v uint8) { got = v })
	c.DeviceHandler(VectorTimer)

	if got != VectorTimer {
		t.Fatalf("handler saw vector %#x, want %#x", got, VectorTimer)
	}
}

func TestDeviceHandlerEOIsEvenWithNoHandlerRegistered(t *testing.T) {
	c := newForTest()
	regs := c.local.regs.(*fakeMMIO)
	regs.Write32(lapicRegEOI, 0xAA)

	c.DeviceHandler(VectorKbd) // nothing registered for this vector

	if regs.Read32(lapicRegEOI) != 0 {
		t.Fatal("DeviceHandler must EOI even when no handler is registered")
	}
}

func TestDeviceHandlerRunsPostHandlerHookBeforeEOI(t *testing.T) {
	c := newForTest()

	var order []string
	regs := c.local.regs.(*fakeMMIO)
	regs.Write32(lapicRegEOI, 0xAA)
	eoiBeforePost := false
	c.RegisterHandler(VectorTimer, func(uint8) { order = append(order, "handler") })
	c.SetPostHandlerHook(func(uint8) {
		order = append(order, "post")
		eoiBeforePost = regs.Read32(lapicRegEOI) != 0xAA
	})

	c.DeviceHandler(VectorTimer)

	if len(order) != 2 || order[0] != "handler" || order[1] != "post" {
		t.Fatalf("order = %v, want [handler post]", order)
	}
	if eoiBeforePost {
		t.Fatal("EOI was written before the post-handler hook ran")
	}
	if regs.Read32(lapicRegEOI) != 0 {
		t.Fatal("DeviceHandler did not EOI after the post-handler hook")
	}
}

func TestMaskLineFlipsMaskBit(t *testing.T) {
	c := newForTest()

	c.MaskLine(lineTimer, true)
	if !c.io.readEntry(lineTimer).masked() {
		t.Fatal("MaskLine(true) did not mask the line")
	}

	c.MaskLine(lineTimer, false)
	if c.io.readEntry(lineTimer).masked() {
		t.Fatal("MaskLine(false) did not unmask the line")
	}
}

func TestRemapRewritesVectorAndDestination(t *testing.T) {
	c := newForTest()

	c.Remap(9, lineSerial, VectorDynamicFirst)
	e := c.io.readEntry(lineSerial)
	if uint64(e)&redVectorMask != uint64(VectorDynamicFirst) {
		t.Fatalf("vector = %#x, want %#x", uint64(e)&redVectorMask, VectorDynamicFirst)
	}
	if uint8(uint64(e)>>redDestShift) != 9 {
		t.Fatalf("destination = %d, want 9", uint8(uint64(e)>>redDestShift))
	}
}

func TestLocalIDMatchesProgrammedValue(t *testing.T) {
	c := newForTest()
	if c.LocalID() != c.local.id() {
		t.Fatalf("LocalID() = %d, want %d", c.LocalID(), c.local.id())
	}
}

func TestBuildIDTPopulatesFaultAndDeviceVectors(t *testing.T) {
	c := newForTest()

	if !c.idt[VectorGeneralProtection].Present() {
		t.Fatal("GP fault vector not installed")
	}
	if !c.idt[VectorPageFault].Present() {
		t.Fatal("page fault vector not installed")
	}
	if !c.idt[VectorTimer].Present() || !c.idt[VectorDynamicLast].Present() {
		t.Fatal("device vector range not fully installed")
	}
}
