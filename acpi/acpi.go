// Package acpi describes the summaries the core consumes from the ACPI
// table parser. Walking the actual AML/MADT/HPET tables is out of scope
// per spec.md §1 — this package only fixes the shape of what a parser
// (an external collaborator) is expected to hand back, grounded on the
// field layout conventions of gopher-os's device/acpi/table package
// (SDTHeader, RSDPDescriptor).
package acpi

// InterruptLineMapping records one device-line-to-vector hint parsed out
// of the MADT's interrupt source override entries.
type InterruptLineMapping struct {
	Line   uint8
	Vector uint8
}

// InterruptControllers is the MADT summary interrupt.New consumes: the
// local controller's MMIO base, the (first) IO controller's MMIO base and
// its global system interrupt base, plus any line remaps the firmware
// published.
type InterruptControllers struct {
	LocalControllerAddr uintptr
	IOControllerAddr    uintptr
	IOControllerGSIBase uint32
	Mappings            []InterruptLineMapping
}

// TimerDescriptor is the HPET table summary cmd/kernel's clock-source
// bring-up consumes: its MMIO base and the GSI the first comparator is
// wired to.
type TimerDescriptor struct {
	BaseAddr uintptr
	GSI      uint32
}

// RootPointer is the physical address of the RSDP, as handed off in the
// boot record; resolving it into InterruptControllers/TimerDescriptor is
// the out-of-scope parser's job.
type RootPointer uintptr
