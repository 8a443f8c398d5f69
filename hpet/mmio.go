package hpet

import "unsafe"

// RealRegs addresses the real HPET MMIO window at a kernel-virtual base.
type RealRegs struct {
	Base uintptr
}

func (r RealRegs) Read64(offset uintptr) uint64 {
	return *(*uint64)(unsafe.Pointer(r.Base + offset))
}

func (r RealRegs) Write64(offset uintptr, val uint64) {
	*(*uint64)(unsafe.Pointer(r.Base + offset)) = val
}

// fakeRegs backs unit tests.
type fakeRegs struct {
	m map[uintptr]uint64
}

func newFakeRegs() *fakeRegs {
	return &fakeRegs{m: make(map[uintptr]uint64)}
}

func (f *fakeRegs) Read64(offset uintptr) uint64 {
	return f.m[offset]
}

func (f *fakeRegs) Write64(offset uintptr, val uint64) {
	f.m[offset] = val
}
