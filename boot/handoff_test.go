package boot

import (
	"testing"
	"unsafe"
)

// identity is the translate function tests use in place of physToVirt:
// decode's field-by-field logic should not care what the translation
// function does, only that it's applied consistently.
func identity(addr uint64) uintptr { return uintptr(addr) }

func TestPhysToVirtAppliesHighHalfOffset(t *testing.T) {
	const phys = uint64(0x123456)
	got := physToVirt(phys)
	want := uintptr(phys) + 0xFFFFFFFF80000000
	if got != want {
		t.Fatalf("physToVirt(%#x) = %#x, want %#x", phys, got, want)
	}
}

func TestDecodeRejectsEmptyMemoryMap(t *testing.T) {
	raw := rawHandoff{}
	_, err := decode(uintptr(unsafe.Pointer(&raw)), identity)
	if err != ErrInvalidHandoff {
		t.Fatalf("decode() error = %v, want ErrInvalidHandoff", err)
	}
}

func TestDecodeBorrowsMemoryMapWithoutCopying(t *testing.T) {
	entries := [2]MemoryMapEntry{
		{Type: MemoryTypeUsable, PhysStart: 0x100000, PageCount: 16},
		{Type: MemoryTypeReserved, PhysStart: 0x200000, PageCount: 4},
	}
	raw := rawHandoff{
		memMapPtr:   uint64(uintptr(unsafe.Pointer(&entries[0]))),
		memMapCount: uint64(len(entries)),
	}

	rec, err := decode(uintptr(unsafe.Pointer(&raw)), identity)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if len(rec.MemoryMap) != 2 {
		t.Fatalf("len(MemoryMap) = %d, want 2", len(rec.MemoryMap))
	}
	if rec.MemoryMap[0].PhysStart != 0x100000 || rec.MemoryMap[1].PhysStart != 0x200000 {
		t.Fatalf("MemoryMap entries decoded wrong: %+v", rec.MemoryMap)
	}

	// Mutating the backing array must be visible through the returned
	// slice — proof that decode borrows rather than copies.
	entries[0].PageCount = 99
	if rec.MemoryMap[0].PageCount != 99 {
		t.Fatalf("MemoryMap does not alias the source array")
	}
}

func TestDecodeOmitsFramebufferWhenAbsent(t *testing.T) {
	entries := [1]MemoryMapEntry{{Type: MemoryTypeUsable, PhysStart: 0, PageCount: 1}}
	raw := rawHandoff{
		memMapPtr:   uint64(uintptr(unsafe.Pointer(&entries[0]))),
		memMapCount: 1,
	}

	rec, err := decode(uintptr(unsafe.Pointer(&raw)), identity)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if rec.Framebuffer.Pixels != nil {
		t.Fatalf("Framebuffer.Pixels = %v, want nil for a zero base/size descriptor", rec.Framebuffer.Pixels)
	}
}

func TestDecodeFramebufferAndACPIRoot(t *testing.T) {
	entries := [1]MemoryMapEntry{{Type: MemoryTypeUsable, PhysStart: 0, PageCount: 1}}
	pixels := make([]byte, 64)
	raw := rawHandoff{
		memMapPtr:   uint64(uintptr(unsafe.Pointer(&entries[0]))),
		memMapCount: 1,
		fb: rawFramebuffer{
			base:         uint64(uintptr(unsafe.Pointer(&pixels[0]))),
			size:         uint64(len(pixels)),
			width:        8,
			height:       8,
			pixelsPerRow: 8,
			pixelFormat:  1,
		},
		acpiRoot: 0xE0000,
	}

	rec, err := decode(uintptr(unsafe.Pointer(&raw)), identity)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if len(rec.Framebuffer.Pixels) != len(pixels) {
		t.Fatalf("Framebuffer.Pixels len = %d, want %d", len(rec.Framebuffer.Pixels), len(pixels))
	}
	if rec.Framebuffer.Width != 8 || rec.Framebuffer.Height != 8 {
		t.Fatalf("Framebuffer geometry decoded wrong: %+v", rec.Framebuffer)
	}
	if rec.ACPIRoot != 0xE0000 {
		t.Fatalf("ACPIRoot = %#x, want 0xE0000", rec.ACPIRoot)
	}
}
