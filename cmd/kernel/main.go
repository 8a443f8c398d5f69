// Command kernel is the single C-ABI entry point spec.md §6 requires: one
// physical handoff-record pointer in, never returns. It sequences C1
// through C8 in the order §2's data-flow table lays out — boot handoff,
// memory init, segmentation, the ACPI summary (an external collaborator),
// interrupt controller bring-up, clock source with logical clock wired on
// top, and finally the scheduler — then hands control to preemption and
// the idle loop.
package main

import (
	"github.com/nyxkernel/corekernel/acpi"
	"github.com/nyxkernel/corekernel/boot"
	"github.com/nyxkernel/corekernel/clock"
	"github.com/nyxkernel/corekernel/clocksrc"
	"github.com/nyxkernel/corekernel/cpu"
	"github.com/nyxkernel/corekernel/gdt"
	"github.com/nyxkernel/corekernel/hpet"
	"github.com/nyxkernel/corekernel/interrupt"
	"github.com/nyxkernel/corekernel/kconfig"
	"github.com/nyxkernel/corekernel/kernelerr"
	"github.com/nyxkernel/corekernel/klog"
	"github.com/nyxkernel/corekernel/mm"
	"github.com/nyxkernel/corekernel/pit"
	"github.com/nyxkernel/corekernel/sched"
	"github.com/nyxkernel/corekernel/serial"
)

// ParseACPI resolves the handoff record's ACPI root pointer into the
// interrupt-controller and timer summaries C4/C5 consume. Walking the
// actual RSDP/MADT/HPET tables is the out-of-scope external collaborator
// spec.md §1 names; a production build links its table walker in here.
// Left nil, Start halts with ErrMissingACPITable, matching §7's fatal-
// at-init response to a missing required table.
var ParseACPI func(acpi.RootPointer) (acpi.InterruptControllers, acpi.TimerDescriptor, error)

// SerialPort, if set by a production build's UART driver (also an
// external collaborator per spec.md §1), is wired into klog before
// anything else runs so init diagnostics have somewhere to go. Left nil,
// klog keeps logging to serial.Null.
var SerialPort serial.Port

// Start implements spec.md §6's kernel entry point and §2's data-flow
// table. Every init failure maps straight into kernelerr.Halt, per §7's
// propagation policy; nothing past Start's final loop ever runs again.
func Start(handoffPhys uintptr) {
	if SerialPort != nil {
		klog.SetPort(SerialPort)
	}

	rec, err := boot.Handoff(handoffPhys)
	if err != nil {
		kernelerr.Halt(err)
	}

	if err := mm.Init(rec.MemoryMap); err != nil {
		kernelerr.Halt(err)
	}

	gdt.Build().Install()

	if ParseACPI == nil {
		kernelerr.Halt(kernelerr.ErrMissingACPITable)
	}
	madt, timerDesc, err := ParseACPI(rec.ACPIRoot)
	if err != nil {
		kernelerr.Halt(err)
	}

	ctrl, err := interrupt.New(madt)
	if err != nil {
		kernelerr.Halt(err)
	}

	cfg := kconfig.Default()
	klog.SetLevel(cfg.LogLevel)

	src := bringUpClockSource(ctrl, cfg, timerDesc)

	logicalClock := clock.New()
	src.OnTick(logicalClock.Tick)

	idleBody := func() {
		for {
			cpu.Hlt()
		}
	}
	scheduler := sched.New(src, logicalClock, idleBody)
	ctrl.SetPostHandlerHook(scheduler.CheckRuntime)

	klog.Printf(klog.LevelInfo, "boot complete: local controller id %d", ctrl.LocalID())
	cpu.Sti()

	for {
		cpu.Hlt()
	}
}

// bringUpClockSource honors spec.md §4.5's fallback allowance: prefer the
// HPET unless the config explicitly asks for the PIT or no HPET table was
// found, and register whichever one came up as the timer vector's
// handler.
func bringUpClockSource(ctrl *interrupt.Controller, cfg kconfig.Config, timerDesc acpi.TimerDescriptor) clocksrc.Source {
	if cfg.Clock != kconfig.ClockSourcePIT && timerDesc.BaseAddr != 0 {
		h, err := hpet.Init(hpet.RealRegs{Base: timerDesc.BaseAddr})
		if err != nil {
			kernelerr.Halt(err)
		}
		ctrl.RegisterHandler(interrupt.VectorTimer, h.HandleInterrupt)
		return h
	}

	p, err := pit.Init()
	if err != nil {
		kernelerr.Halt(err)
	}
	ctrl.RegisterHandler(interrupt.VectorTimer, p.HandleInterrupt)
	return p
}

func main() {
	Start(bootHandoffPhys())
}
