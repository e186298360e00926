package section

import (
	"testing"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
)

func TestBssSpansConsecutivePairs(t *testing.T) {
	ctx := context.NewContext()
	seg := ctx.AddSegment(0x80000000, 0x80010000, "")
	cfg := config.Default()

	seg.AddSymbol(0x80002010, context.SectionBss, false)

	bss := &BssSection{Base: Base{Context: ctx, Segment: seg, Config: cfg, Vram: 0x80002000}, VramEnd: 0x80002100}
	bss.Analyze()

	first := seg.GetSymbol(0x80002000, false, false)
	second := seg.GetSymbol(0x80002010, false, false)
	if first == nil || second == nil {
		t.Fatalf("expected both the section-start and pre-existing symbol present")
	}
	if got := first.GetSize(); got != 0x10 {
		t.Fatalf("expected first symbol span 0x10 up to the next symbol, got 0x%X", got)
	}
	if got := second.GetSize(); got != 0x100-0x10 {
		t.Fatalf("expected last symbol span to VramEnd, got 0x%X", got)
	}
}

func TestBssRespectsUserDeclaredSize(t *testing.T) {
	ctx := context.NewContext()
	seg := ctx.AddSegment(0x80000000, 0x80010000, "")
	cfg := config.Default()

	sym := seg.AddSymbol(0x80002000, context.SectionBss, false)
	sym.SetUserDeclaredSize(0x40)

	bss := &BssSection{Base: Base{Context: ctx, Segment: seg, Config: cfg, Vram: 0x80002000}, VramEnd: 0x80002100}
	bss.Analyze()

	if got := sym.GetSize(); got != 0x40 {
		t.Fatalf("expected user-declared size 0x40 to win over the 0x100 span, got 0x%X", got)
	}
}
