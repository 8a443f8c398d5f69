// Package gdt implements C3 of spec.md: a minimal flat descriptor table
// suitable for long mode. The firmware's own GDT cannot be trusted after
// ExitBootServices, so the kernel installs its own null/code/data triple
// before anything else runs. Descriptor bit layout is grounded on the
// original source's src/arch/x86_64/pm.rs (long-mode bit at 53, present/
// granularity packed across the two 32-bit halves).
package gdt

import (
	"unsafe"

	"github.com/nyxkernel/corekernel/cpu"
)

// Selectors into the table this package installs. Index 0 is the
// mandatory null descriptor.
const (
	CodeSelector uint16 = 1 * 8
	DataSelector uint16 = 2 * 8
)

const numEntries = 3

// descriptor is one 8-byte segment descriptor.
type descriptor uint64

const (
	flagPresent   = 1 << 47
	flagDescType  = 1 << 44 // 1 = code/data (not system)
	flagExecutable = 1 << 43
	flagLongMode  = 1 << 53
	flagGranularity = 1 << 55
	flagDefaultOpSz = 1 << 54
)

func nullDescriptor() descriptor { return 0 }

func codeDescriptor() descriptor {
	return descriptor(flagPresent | flagDescType | flagExecutable | flagLongMode)
}

func dataDescriptor() descriptor {
	return descriptor(flagPresent | flagDescType | flagGranularity | flagDefaultOpSz)
}

// Table is the installed GDT: a fixed null/code/data triple.
type Table struct {
	entries [numEntries]descriptor
}

// gdtr is the 10-byte image LoadGDT expects.
type gdtr struct {
	limit uint16
	base  uint64
}

// Build constructs the flat null/code/data descriptor table. It does not
// install it; call Install to load it onto the processor.
func Build() *Table {
	t := &Table{}
	t.entries[0] = nullDescriptor()
	t.entries[1] = codeDescriptor()
	t.entries[2] = dataDescriptor()
	return t
}

// Entries exposes the built descriptors, for tests.
func (t *Table) Entries() [numEntries]descriptor {
	return t.entries
}

// Install loads t onto the processor and reloads every segment register,
// completing C3. Must run before interrupt.New, which references
// CodeSelector when building the IDT.
func (t *Table) Install() {
	r := gdtr{
		limit: uint16(len(t.entries)*8 - 1),
		base:  uint64(uintptr(unsafe.Pointer(&t.entries[0]))),
	}
	cpu.LoadGDT(uintptr(unsafe.Pointer(&r)))
	cpu.ReloadSegments(CodeSelector, DataSelector)
}
