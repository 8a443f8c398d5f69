// Package boot implements C1 of spec.md: translating the physical-address
// handoff record the loader produces into a kernel-virtual view. No data
// is copied — the memory map becomes a borrowed slice, the framebuffer a
// borrowed byte slice, and the firmware runtime-services pointer an
// opaque reference. Field order mirrors spec.md §6's wire layout exactly.
package boot

import (
	"unsafe"

	"github.com/nyxkernel/corekernel/acpi"
	"github.com/nyxkernel/corekernel/framebuffer"
	"github.com/nyxkernel/corekernel/layout"
)

// MemoryType classifies a memory-map entry, mirroring the firmware's
// standard descriptor enum.
type MemoryType uint32

const (
	MemoryTypeReserved MemoryType = iota
	MemoryTypeUsable
	MemoryTypeACPIReclaim
	MemoryTypeACPINVS
	MemoryTypeMMIO
	MemoryTypeLoaderCode
	MemoryTypeLoaderData
)

// MemoryMapEntry is {type, phys_start, virt_start, page_count,
// attributes}, per spec.md §3/§6. The loader-provided array is sorted by
// PhysStart before handing it to the kernel.
type MemoryMapEntry struct {
	Type       MemoryType
	_          uint32 // padding, matches the firmware descriptor's pad field
	PhysStart  uint64
	VirtStart  uint64
	PageCount  uint64
	Attributes uint64
}

// rawFramebuffer is the on-the-wire framebuffer descriptor: physical
// base, byte size, then four uint64s for width/height/stride/format.
type rawFramebuffer struct {
	base         uint64
	size         uint64
	width        uint64
	height       uint64
	pixelsPerRow uint64
	pixelFormat  uint64
}

// rawHandoff is the fixed-layout physical structure spec.md §6 describes,
// in field order: memory-map pointer + count, framebuffer descriptor,
// firmware runtime-services pointer, ACPI root pointer.
type rawHandoff struct {
	memMapPtr   uint64
	memMapCount uint64
	fb          rawFramebuffer
	rtPtr       uint64
	acpiRoot    uint64
}

// Record is the kernel-virtual view produced from the physical handoff
// record. Produced once, early in Start, and thereafter immutable.
type Record struct {
	MemoryMap          []MemoryMapEntry
	Framebuffer        framebuffer.View
	RuntimeServicesPtr uintptr
	ACPIRoot           acpi.RootPointer
}

// physToVirt applies the fixed high-half offset to a physical address.
// mm.Init is responsible for actually mapping that range; boot.Handoff
// only computes the pointer value.
func physToVirt(phys uint64) uintptr {
	return uintptr(phys) + layout.KernelHighHalfBase
}

// Handoff decodes the handoff record at physical address physPtr into a
// kernel-virtual Record. It aborts (via the caller checking the returned
// error) only if the record is obviously invalid — spec.md §4.1 assumes
// the loader is trusted, so validation here is a shallow sanity check,
// not a parser hardened against malicious input.
func Handoff(physPtr uintptr) (Record, error) {
	return decode(physToVirt(uint64(physPtr)), physToVirt)
}

// decode does the actual field-by-field translation, parameterized over
// the phys->virt function so tests can exercise it against an ordinary
// Go-allocated buffer instead of a real physical address none of this
// module's own address space can back (the high-half offset Handoff
// applies targets canonical kernel virtual memory, which only exists
// under a real loader-built page table).
func decode(basePtr uintptr, translate func(uint64) uintptr) (Record, error) {
	raw := (*rawHandoff)(unsafe.Pointer(basePtr))

	if raw.memMapCount == 0 {
		return Record{}, ErrInvalidHandoff
	}

	mmPtr := (*MemoryMapEntry)(unsafe.Pointer(translate(raw.memMapPtr)))
	mm := unsafe.Slice(mmPtr, raw.memMapCount)

	var fbPixels []byte
	if raw.fb.base != 0 && raw.fb.size != 0 {
		fbPtr := (*byte)(unsafe.Pointer(translate(raw.fb.base)))
		fbPixels = unsafe.Slice(fbPtr, raw.fb.size)
	}

	return Record{
		MemoryMap: mm,
		Framebuffer: framebuffer.View{
			Pixels:       fbPixels,
			Width:        raw.fb.width,
			Height:       raw.fb.height,
			PixelsPerRow: raw.fb.pixelsPerRow,
			Format:       framebuffer.PixelFormat(raw.fb.pixelFormat),
		},
		RuntimeServicesPtr: translate(raw.rtPtr),
		ACPIRoot:            acpi.RootPointer(raw.acpiRoot),
	}, nil
}
