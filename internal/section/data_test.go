package section

import (
	"testing"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
)

func newTestDataSection(cfg config.Config, ctx *context.Context, seg *context.Segment, vram uint32, words []uint32, bytes []byte) *DataSection {
	return &DataSection{
		Base: Base{
			Context: ctx,
			Segment: seg,
			Config:  cfg,
			Vram:    vram,
			Words:   words,
			Bytes:   bytes,
		},
	}
}

// Scenario 2 from spec.md §8: a data word pointing into BSS promotes an
// autogenerated BSS symbol, later spanned by the BSS analyzer.
func TestDataPointerIntoBSSPromotesSymbol(t *testing.T) {
	ctx := context.NewContext()
	seg := ctx.AddSegment(0x80000000, 0x80010000, "")
	cfg := config.Default()

	data := newTestDataSection(cfg, ctx, seg, 0x80001000, []uint32{0x80002000}, []byte{0x80, 0x00, 0x20, 0x00})
	data.Analyze()

	bss := &BssSection{Base: Base{Context: ctx, Segment: seg, Config: cfg, Vram: 0x80002000}, VramEnd: 0x80002100}
	bss.Analyze()

	sym := seg.GetSymbol(0x80002000, false, false)
	if sym == nil {
		t.Fatalf("expected an autogenerated symbol at 0x80002000")
	}
	if !sym.IsDefined || sym.SectionType != context.SectionBss {
		t.Fatalf("expected symbol marked defined+bss, got %+v", sym)
	}
	if got := sym.GetSize(); got != 0x100 {
		t.Fatalf("expected span 0x100, got 0x%X", got)
	}
}

// Scenario 4 from spec.md §8: a word that looks like a float but decodes
// to NaN/Inf must not be classified as a float.
func TestFloatNaNFilter(t *testing.T) {
	ctx := context.NewContext()
	seg := ctx.AddSegment(0x80000000, 0x80010000, "")
	cfg := config.Default()

	owner := seg.AddSymbol(0x80003000, context.SectionRodata, true)
	owner.SetUserDeclaredType(context.NamedSlot("f32"))

	data := newTestDataSection(cfg, ctx, seg, 0x80003000, []uint32{0x7F800000}, []byte{0x7F, 0x80, 0x00, 0x00})
	data.Analyze()

	if owner.AccessType == context.AccessFloat {
		t.Fatalf("NaN/Inf-patterned word must not be classified as float")
	}
}

// Scenario 3 from spec.md §8: rodata string guesser level 1, unique
// reference, non-empty.
func TestStringGuesserLevelOne(t *testing.T) {
	ctx := context.NewContext()
	seg := ctx.AddSegment(0x80000000, 0x80010000, "")
	cfg := config.Default()
	cfg.RodataStringGuesserLevel = config.GuesserUniqueNonEmpty

	bytes := []byte("hi\x00\x00")
	data := newTestDataSection(cfg, ctx, seg, 0x80003000, []uint32{0x68690000}, bytes)
	data.IsRodata = true
	data.Analyze()

	sym := seg.GetSymbol(0x80003000, false, false)
	if sym == nil || !sym.IsString() {
		t.Fatalf("expected symbol at 0x80003000 classified as string")
	}
}

func TestStringGuesserLevelZeroLeavesWord(t *testing.T) {
	ctx := context.NewContext()
	seg := ctx.AddSegment(0x80000000, 0x80010000, "")
	cfg := config.Default()
	cfg.RodataStringGuesserLevel = config.GuesserOff

	bytes := []byte("hi\x00\x00")
	data := newTestDataSection(cfg, ctx, seg, 0x80003000, []uint32{0x68690000}, bytes)
	data.IsRodata = true
	data.Analyze()

	sym := seg.GetSymbol(0x80003000, false, false)
	if sym != nil && sym.IsString() {
		t.Fatalf("guesser level 0 must never classify as string")
	}
}
