package emit

import (
	"strings"
	"testing"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
	"github.com/decomp-toolkit/spimdisasm/internal/mips"
	"github.com/decomp-toolkit/spimdisasm/internal/section"
)

func newSeg(t *testing.T) (*context.Context, *context.Segment) {
	t.Helper()
	ctx := context.NewContext()
	seg := ctx.AddSegment(0x80000000, 0x80010000, "")
	return ctx, seg
}

// Round-trip property from spec.md §8: a synthetic function (three nops,
// then `jr $ra` and its delay-slot nop) emits a glabel line and renders
// the jr instruction; re-running Analyze/EmitText over the same bytes in
// a fresh Context produces an identical string (determinism).
func TestTextRoundTripNopFunction(t *testing.T) {
	ctx, seg := newSeg(t)
	cfg := config.Default()
	words := []uint32{0, 0, 0, 0x03e00008, 0}

	render := func() string {
		sec := &section.TextSection{Base: section.Base{Context: ctx, Segment: seg, Config: cfg, Vram: 0x80000000, Words: words}}
		sec.Analyze(mips.NewRefDecoder())
		return NewEmitter(cfg).EmitText(sec)
	}

	first := render()
	if !strings.Contains(first, "glabel ") {
		t.Fatalf("expected a glabel line, got:\n%s", first)
	}
	if !strings.Contains(first, "jr") {
		t.Fatalf("expected the jr instruction rendered, got:\n%s", first)
	}

	ctx2, seg2 := newSeg(t)
	sec2 := &section.TextSection{Base: section.Base{Context: ctx2, Segment: seg2, Config: cfg, Vram: 0x80000000, Words: words}}
	sec2.Analyze(mips.NewRefDecoder())
	second := NewEmitter(cfg).EmitText(sec2)

	if first != second {
		t.Fatalf("expected deterministic emission across independent runs,\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

// Round-trip property from spec.md §8: a single `.float 1.5f` word
// reassembles to the original bit pattern 0x3FC00000.
func TestFloatRoundTrip(t *testing.T) {
	ctx, seg := newSeg(t)
	cfg := config.Default()

	owner := seg.AddSymbol(0x80001000, context.SectionRodata, true)
	owner.SetUserDeclaredType(context.NamedSlot("f32"))

	sec := &section.DataSection{
		IsRodata: true,
		Base:     section.Base{Context: ctx, Segment: seg, Config: cfg, Vram: 0x80001000, Words: []uint32{0x3FC00000}, Bytes: []byte{0x3F, 0xC0, 0x00, 0x00}},
	}
	sec.Analyze()

	out := NewEmitter(cfg).EmitData(sec)
	if !strings.Contains(out, ".float 1.5") {
		t.Fatalf("expected '.float 1.5', got:\n%s", out)
	}
}

// Scenario 3 from spec.md §8: string guesser level 1 emits `.asciz "hi"`
// followed by `.balign 4`; level 0 emits `.word 0x68690000`.
func TestStringEmissionLevels(t *testing.T) {
	bytes := []byte("hi\x00\x00")

	render := func(level config.GuesserLevel) string {
		ctx, seg := newSeg(t)
		cfg := config.Default()
		cfg.RodataStringGuesserLevel = level
		sec := &section.DataSection{
			IsRodata: true,
			Base:     section.Base{Context: ctx, Segment: seg, Config: cfg, Vram: 0x80003000, Words: []uint32{0x68690000}, Bytes: bytes},
		}
		sec.Analyze()
		return NewEmitter(cfg).EmitData(sec)
	}

	withGuesser := render(config.GuesserUniqueNonEmpty)
	if !strings.Contains(withGuesser, `.asciz "hi"`) || !strings.Contains(withGuesser, ".balign 4") {
		t.Fatalf("expected .asciz \"hi\" + .balign 4, got:\n%s", withGuesser)
	}

	withoutGuesser := render(config.GuesserOff)
	if !strings.Contains(withoutGuesser, ".word 0x68690000") {
		t.Fatalf("expected raw .word fallback, got:\n%s", withoutGuesser)
	}
}

// Scenario 4 from spec.md §8: a NaN/Inf-patterned word declared f32
// still emits as .word, never .float.
func TestFloatNaNFilterEmission(t *testing.T) {
	ctx, seg := newSeg(t)
	cfg := config.Default()

	owner := seg.AddSymbol(0x80003000, context.SectionRodata, true)
	owner.SetUserDeclaredType(context.NamedSlot("f32"))

	sec := &section.DataSection{
		IsRodata: true,
		Base:     section.Base{Context: ctx, Segment: seg, Config: cfg, Vram: 0x80003000, Words: []uint32{0x7F800000}, Bytes: []byte{0x7F, 0x80, 0x00, 0x00}},
	}
	sec.Analyze()

	out := NewEmitter(cfg).EmitData(sec)
	if strings.Contains(out, ".float") {
		t.Fatalf("NaN/Inf word must not emit as .float, got:\n%s", out)
	}
	if !strings.Contains(out, ".word 0x7F800000") {
		t.Fatalf("expected .word fallback, got:\n%s", out)
	}
}

// Scenario 6 from spec.md §8: sequential branch-label names under a
// parent function.
func TestSequentialLabelNames(t *testing.T) {
	ctx, seg := newSeg(t)
	cfg := config.Default()
	cfg.SequentialLabelNames = true

	fn := seg.AddFunction(0x80000100, false)
	l1 := seg.AddBranchLabel(0x80000110, false)
	l2 := seg.AddBranchLabel(0x80000120, false)
	l1.ParentFunction = fn
	l2.ParentFunction = fn
	fn.BranchLabels = context.NewOrderedSymbolMap()
	fn.BranchLabels.Put(0x80000110, l1)
	fn.BranchLabels.Put(0x80000120, l2)

	if got := l1.GetName(cfg); got != ".L"+fn.GetName(cfg)+"_1" {
		t.Fatalf("expected sequential label 1, got %q", got)
	}
	if got := l2.GetName(cfg); got != ".L"+fn.GetName(cfg)+"_2" {
		t.Fatalf("expected sequential label 2, got %q", got)
	}
}

func TestBssEmission(t *testing.T) {
	ctx, seg := newSeg(t)
	cfg := config.Default()

	sec := &section.BssSection{Base: section.Base{Context: ctx, Segment: seg, Config: cfg, Vram: 0x80002000}, VramEnd: 0x80002100}
	sec.Analyze()

	out := NewEmitter(cfg).EmitBss(sec)
	if !strings.Contains(out, "dlabel ") || !strings.Contains(out, ".space 0x100") {
		t.Fatalf("expected a dlabel + .space 0x100, got:\n%s", out)
	}
}
