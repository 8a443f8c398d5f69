// Package interrupt implements C4 of spec.md: the interrupt descriptor
// table, local/IO controller programming, legacy-controller masking,
// device-line routing, end-of-interrupt signalling, and the registration
// interface drivers use.
package interrupt

import (
	"unsafe"

	"github.com/nyxkernel/corekernel/acpi"
	"github.com/nyxkernel/corekernel/kernelerr"
	"github.com/nyxkernel/corekernel/pic"
	"github.com/nyxkernel/corekernel/spinlock"
)

// HandlerFunc is what register_handler installs: invoked by the common
// device-interrupt entry with the vector that fired.
type HandlerFunc func(vector uint8)

// Controller owns the IDT, the local/IO controller MMIO windows, the
// per-vector handler slot array, and the trampoline table. There is
// exactly one live in the running kernel.
type Controller struct {
	lock spinlock.Lock

	idt             [numIDTEntries]idtEntry
	local           *localController
	io              *ioController
	trampolineTable []byte

	handlers    [numVectorSlots]HandlerFunc
	postHandler func(vector uint8)

	port    pic.PortWriter
	localID uint8
}

// initialLineRouting is the fixed device-line routing spec.md §4.4/§6
// requires: legacy timer on line 2, keyboard on line 1, serial on line 4,
// mouse (line 12) masked.
var initialLineRouting = []struct {
	line    uint8
	vector  uint8
	masked  bool
}{
	{lineTimer, VectorTimer, false},
	{lineKbd, VectorKbd, false},
	{lineSerial, VectorSerial, false},
	{lineMouse, 0, true},
}

// New builds a Controller against real MMIO windows described by madt.
func New(madt acpi.InterruptControllers) (*Controller, error) {
	if madt.LocalControllerAddr == 0 || madt.IOControllerAddr == 0 {
		return nil, kernelerr.ErrMissingACPITable
	}
	c := &Controller{
		local: newLocalController(realMMIO{base: madt.LocalControllerAddr}),
		io:    newIOController(realMMIO{base: madt.IOControllerAddr}, madt.IOControllerGSIBase),
		port:  pic.CPUPort{},
	}
	if err := c.init(madt); err != nil {
		return nil, err
	}
	activeController = c
	return c, nil
}

// activeController is the single Controller instance device interrupts
// route through. deviceHandlerEntryPoint (faults_amd64.s) has no Go
// receiver to call DeviceHandler on — an interrupt gate only carries a
// vector — so it dispatches through this package-level instance instead.
// Set once by New; there is exactly one interrupt controller per core.
var activeController *Controller

// deviceHandlerDispatch is what deviceHandlerEntryPoint calls with the
// vector it recovered from the stack the trampoline stub pushed.
func deviceHandlerDispatch(vector uint8) {
	if activeController != nil {
		activeController.DeviceHandler(vector)
	}
}

// newForTest builds a Controller against fake MMIO and a fake port
// window, for unit tests.
func newForTest() *Controller {
	c := &Controller{
		local: newLocalController(newFakeMMIO()),
		io:    newIOController(newFakeMMIO(), 0),
		port:  newFakePortWriter(),
	}
	if err := c.init(acpi.InterruptControllers{LocalControllerAddr: 1, IOControllerAddr: 1}); err != nil {
		panic(err)
	}
	return c
}

// init builds the IDT, masks the legacy 8259, programs the fixed device
// lines, and enables the local controller. Corresponds to
// interrupt.init(madt) in spec.md §4.4.
func (c *Controller) init(madt acpi.InterruptControllers) error {
	pic.MaskAll(c.port)

	if !c.buildIDT() {
		return kernelerr.ErrIDTInstallFailed
	}

	// Read the real local-controller id before it is used as the
	// destination field of any redirection entry below — on any platform
	// where the BSP's LAPIC id isn't 0, programming routes with the
	// zero-value default would silently misdeliver every device
	// interrupt to controller 0 instead of this processor.
	c.localID = c.local.id()

	for _, route := range initialLineRouting {
		entry := newRedirectionEntry(route.vector, route.masked, c.localID)
		c.io.writeEntry(route.line, entry)
	}
	for _, m := range madt.Mappings {
		c.remapLocked(m.Vector, m.Line, c.localID)
	}

	c.local.enable(VectorSpurious)
	return nil
}

// buildIDT fills in the fixed fault vectors and marks the dynamic-device
// range's entries active, pointing at the trampoline table. Returns false
// if the descriptor table could not be built (fatal at init, §7).
func (c *Controller) buildIDT() bool {
	if len(c.idt) < 40 {
		return false
	}

	// Fault vectors are wired to dedicated, non-recovering entry points
	// (spec.md §4.4): they record the event and do not return control to
	// normal execution.
	c.idt[VectorGeneralProtection] = newIDTEntry(generalProtectionEntryAddr(), codeSelector)
	c.idt[VectorPageFault] = newIDTEntry(pageFaultEntryAddr(), codeSelector)

	// The dynamic-device range (and the fixed timer/kbd/serial vectors)
	// are all reached through a generated trampoline table rather than
	// 96 hand-written TEXT blocks, per §4.4's "key algorithm".
	c.trampolineTable = make([]byte, trampolineTableLen()*trampolineStubSize)
	tableBase := uintptr(unsafe.Pointer(&c.trampolineTable[0]))
	fillTrampolineTable(c.trampolineTable, tableBase, deviceHandlerEntryAddr())

	for v := VectorTimer; v <= VectorDynamicLast; v++ {
		off, ok := trampolineOffset(v)
		if !ok {
			break
		}
		c.idt[v] = newIDTEntry(tableBase+uintptr(off), codeSelector)
		if v == VectorDynamicLast {
			break
		}
	}
	return true
}

// RegisterHandler installs fn for vector, overwriting any previous
// registration, per spec.md §4.4.
func (c *Controller) RegisterHandler(vector uint8, fn HandlerFunc) {
	g := c.lock.Lock()
	defer g.Release()
	c.handlers[vector] = fn
}

// MaskLine flips the mask bit of line's redirection entry.
func (c *Controller) MaskLine(line uint8, masked bool) {
	g := c.lock.Lock()
	defer g.Release()
	e := c.io.readEntry(line)
	c.io.writeEntry(line, e.withMasked(masked))
}

// Remap rewrites line's redirection entry so vector is delivered to
// controllerID, per spec.md §4.4 (used by device drivers once they have
// found their line in the ACPI interrupt mapping tables).
func (c *Controller) Remap(controllerID uint8, line uint8, vector uint8) {
	g := c.lock.Lock()
	defer g.Release()
	c.remapLocked(vector, line, controllerID)
}

func (c *Controller) remapLocked(vector uint8, line uint8, controllerID uint8) {
	e := c.io.readEntry(line)
	e = e.withVector(vector)
	e = redirectionEntry(uint64(e)&^(uint64(0xFF)<<redDestShift) | uint64(controllerID)<<redDestShift)
	c.io.writeEntry(line, e)
}

// EndOfInterrupt writes the local controller's EOI register. Every
// interrupt handler must call this before returning.
func (c *Controller) EndOfInterrupt() {
	c.local.eoi()
}

// LocalID returns the local controller id this processor was assigned.
func (c *Controller) LocalID() uint8 {
	return c.localID
}

// SetPostHandlerHook installs fn to run after every device handler
// returns but before EndOfInterrupt, per spec.md §4.8: "each device-
// interrupt shim, after calling its handler and before returning, calls
// check_runtime()". Kept as a hook rather than a direct sched import so
// interrupt has no dependency on the scheduler package; cmd/kernel wires
// sched.CheckRuntime in here once the scheduler exists.
func (c *Controller) SetPostHandlerHook(fn func(vector uint8)) {
	c.postHandler = fn
}

// DeviceHandler is the common Go-level handler every device vector reaches:
// each trampoline stub pushes its vector and jumps to deviceHandlerEntryPoint,
// which calls deviceHandlerDispatch, which calls this. It looks up
// the per-vector slot; if populated, calls it; runs the preemption-check
// hook; and either way issues EOI on the local controller before
// returning to the interrupted context. A vector with no registered
// handler is silently end-of-interrupted, per spec.md §7.
func (c *Controller) DeviceHandler(vector uint8) {
	fn := c.handlers[vector]
	if fn != nil {
		fn(vector)
	}
	if c.postHandler != nil {
		c.postHandler(vector)
	}
	c.EndOfInterrupt()
}
