package interrupt

import (
	"reflect"
	"unsafe"

	"golang.org/x/arch/x86/x86asm"

	"github.com/nyxkernel/corekernel/gdt"
	"github.com/nyxkernel/corekernel/kernelerr"
	"github.com/nyxkernel/corekernel/klog"
)

const codeSelector = gdt.CodeSelector

// Fault vectors (#GP, #PF) are wired to dedicated entry points that only
// record the event and do not recover (spec.md §4.4's "failure-
// observability stubs"). Bodies live in faults_amd64.s; each passes the
// CPU-provided error code and faulting RIP as arguments to the Go-level
// trap function below, which logs them before halting.

//go:noescape
func generalProtectionEntry()

//go:noescape
func pageFaultEntry()

//go:noescape
func deviceHandlerEntryPoint()

func entryAddr(fn func()) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

func generalProtectionEntryAddr() uintptr { return entryAddr(generalProtectionEntry) }
func pageFaultEntryAddr() uintptr         { return entryAddr(pageFaultEntry) }
func deviceHandlerEntryAddr() uintptr     { return entryAddr(deviceHandlerEntryPoint) }

// faultContext is what the trap functions below build for the Go-level
// handler: the faulting RIP, the CPU error code, and up to 15 bytes read
// from RIP so x86asm can decode the offending instruction for a readable
// diagnostic.
type faultContext struct {
	rip       uint64
	errorCode uint64
	insnBytes [15]byte
}

// generalProtectionTrap is called directly by generalProtectionEntry
// (faults_amd64.s) with the values the CPU pushed for a #GP: the error
// code and the faulting RIP. It builds the faultContext the Go-level
// handler needs — reading the faulting instruction's bytes is unsafe
// memory access best kept out of assembly — and hands off to
// handleGeneralProtection.
func generalProtectionTrap(errorCode, rip uint64) {
	var ctx faultContext
	ctx.rip = rip
	ctx.errorCode = errorCode
	copyFaultInsnBytes(&ctx.insnBytes, uintptr(rip))
	handleGeneralProtection(&ctx)
}

// pageFaultTrap is the #PF counterpart, called by pageFaultEntry.
func pageFaultTrap(errorCode, rip uint64) {
	var ctx faultContext
	ctx.rip = rip
	ctx.errorCode = errorCode
	copyFaultInsnBytes(&ctx.insnBytes, uintptr(rip))
	handlePageFault(&ctx)
}

// handleGeneralProtection never returns: the fault is unrecoverable per
// spec.md §4.4/§7 ("fatal at runtime... halt forever after writing
// diagnostic bytes").
func handleGeneralProtection(ctx *faultContext) {
	reportFault("general protection fault", ctx)
	kernelerr.Halt(kernelerr.ErrGeneralProtectionFault)
}

// handlePageFault is the #PF counterpart.
func handlePageFault(ctx *faultContext) {
	reportFault("page fault", ctx)
	kernelerr.Halt(kernelerr.ErrPageFault)
}

// reportFault decodes the faulting instruction with x86asm (this core's
// one real third-party dependency, golang.org/x/arch — see SPEC_FULL.md
// §B) and logs a readable diagnostic before the caller halts. On a decoding
// failure it logs a fixed "instruction decode failed" line after the hex
// rip and error code rather than panicking further.
func reportFault(kind string, ctx *faultContext) {
	klog.Emergency(kind)
	klog.EmergencyHex("  rip=", ctx.rip)
	klog.EmergencyHex("  error_code=", ctx.errorCode)

	inst, err := x86asm.Decode(ctx.insnBytes[:], 64)
	if err != nil {
		klog.Emergency("  (instruction decode failed)")
		return
	}
	klog.Emergency("  faulting instruction: " + inst.String())
}

// copyFaultInsnBytes copies the 15 bytes at the faulting RIP via unsafe;
// the trap functions above call it. Tests construct a faultContext by
// hand instead.
func copyFaultInsnBytes(dst *[15]byte, src uintptr) {
	p := (*[15]byte)(unsafe.Pointer(src))
	*dst = *p
}
