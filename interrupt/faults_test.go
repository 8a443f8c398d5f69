package interrupt

import (
	"strings"
	"testing"

	"github.com/nyxkernel/corekernel/klog"
)

func lastRingEntries(n int) []string {
	ring := klog.Ring()
	if len(ring) < n {
		return ring
	}
	return ring[len(ring)-n:]
}

func TestReportFaultLogsRIPAndErrorCode(t *testing.T) {
	ctx := &faultContext{rip: 0xDEADBEEF, errorCode: 4}
	reportFault("general protection fault", ctx)

	entries := lastRingEntries(3)
	joined := strings.Join(entries, "\n")
	if !strings.Contains(joined, "general protection fault") {
		t.Fatalf("ring missing fault kind: %v", entries)
	}
	if !strings.Contains(joined, "deadbeef") {
		t.Fatalf("ring missing rip hex: %v", entries)
	}
}

func TestReportFaultDecodesInstructionBytes(t *testing.T) {
	ctx := &faultContext{rip: 0x1000}
	// 0x90 is NOP; padding with further NOPs keeps the 15-byte decode
	// window well-formed regardless of how much x86asm needs to read.
	for i := range ctx.insnBytes {
		ctx.insnBytes[i] = 0x90
	}

	reportFault("page fault", ctx)

	entries := lastRingEntries(3)
	found := false
	for _, e := range entries {
		if strings.Contains(e, "faulting instruction") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a decoded-instruction line, got %v", entries)
	}
}

func TestReportFaultSurvivesUndecodableBytes(t *testing.T) {
	ctx := &faultContext{rip: 0x2000}
	for i := range ctx.insnBytes {
		ctx.insnBytes[i] = 0x0F // lone two-byte-opcode prefix, no operand
	}

	// Must not panic even if x86asm can't decode a complete instruction
	// from this byte pattern.
	reportFault("general protection fault", ctx)
}

func TestEntryAddrFunctionsAreResolvable(t *testing.T) {
	if generalProtectionEntryAddr() == 0 {
		t.Fatal("generalProtectionEntryAddr() = 0")
	}
	if pageFaultEntryAddr() == 0 {
		t.Fatal("pageFaultEntryAddr() = 0")
	}
	if deviceHandlerEntryAddr() == 0 {
		t.Fatal("deviceHandlerEntryAddr() = 0")
	}
}
