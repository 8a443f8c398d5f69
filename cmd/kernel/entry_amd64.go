//go:build amd64

package main

// bootHandoffPhys reads the physical handoff-record pointer the loader
// leaves behind before transferring control to the kernel's C-ABI entry
// point (spec.md §6). A production build's entry_amd64.s is linked
// against the loader's calling convention (register or fixed-memory-slot,
// depending on the loader); that linkage is the out-of-scope loader
// concern spec.md §1 excludes. This declaration keeps main() shaped the
// way spec.md §6 requires — one physical-pointer argument feeding
// Start — without this module owning the loader handshake itself.
//
//go:noescape
func bootHandoffPhys() uintptr
