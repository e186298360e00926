package section

import (
	"testing"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
	"github.com/decomp-toolkit/spimdisasm/internal/mips"
)

func newTestTextSection(cfg config.Config, words []uint32) (*TextSection, *context.Context) {
	ctx := context.NewContext()
	seg := ctx.AddSegment(0x80000000, 0x80010000, "")
	return &TextSection{
		Base: Base{
			Context: ctx,
			Segment: seg,
			Config:  cfg,
			Vram:    0x80000000,
			Words:   words,
		},
	}, ctx
}

// Scenario 1 from spec.md §8: two adjacent functions sharing a `jr $ra`.
func TestRedundantReturnDetectionOff(t *testing.T) {
	cfg := config.Default()
	cfg.Compiler = config.CompilerIDO
	cfg.DetectRedundantFunctionEnd = false

	words := []uint32{0x03e00008, 0x00000000, 0x03e00008, 0x00000000}
	sec, _ := newTestTextSection(cfg, words)
	sec.Analyze(mips.NewRefDecoder())

	if len(sec.Functions) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(sec.Functions))
	}
	if got := len(sec.Functions[1].Instructions); got != 2 {
		t.Fatalf("expected second function length 2 instructions (8 bytes), got %d", got)
	}
}

func TestRedundantReturnDetectionOn(t *testing.T) {
	cfg := config.Default()
	cfg.Compiler = config.CompilerIDO
	cfg.DetectRedundantFunctionEnd = true

	words := []uint32{0x03e00008, 0x00000000, 0x03e00008, 0x00000000}
	sec, _ := newTestTextSection(cfg, words)
	sec.Analyze(mips.NewRefDecoder())

	if len(sec.Functions) != 1 {
		t.Fatalf("expected 1 merged function, got %d", len(sec.Functions))
	}
	if got := len(sec.Functions[0].Instructions); got != 4 {
		t.Fatalf("expected merged function length 4 instructions (16 bytes), got %d", got)
	}
}

// Scenario 5 from spec.md §8: `j target` ending a function when target
// resolves to a trustable function, under the default config (the
// treatJAsUnconditionalBranch toolchain tweak off).
func TestJumpTailCallEndsFunction(t *testing.T) {
	cfg := config.Default()
	cfg.Compiler = config.CompilerIDO

	// j 0x80000100 ; nop  (word 0 = j, word 1 = delay slot nop)
	words := []uint32{0x08000040, 0x00000000}
	sec, ctx := newTestTextSection(cfg, words)
	// Pre-register a trustable (user-declared) function at the jump target.
	seg := ctx.Segments()[0]
	target := seg.AddSymbol(0x80000100, context.SectionText, false)
	target.IsUserDeclared = true
	target.SetAutodetectedType(context.SpecialSlot(context.SpecialFunction))

	sec.Analyze(mips.NewRefDecoder())
	if len(sec.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(sec.Functions))
	}
	if got := len(sec.Functions[0].Instructions); got != 2 {
		t.Fatalf("expected function to end right after the tail jump+delay slot, got %d instructions", got)
	}
}

func TestDeterministicAnalyze(t *testing.T) {
	cfg := config.Default()
	words := []uint32{0x03e00008, 0x00000000}

	run := func() int {
		sec, _ := newTestTextSection(cfg, words)
		sec.Analyze(mips.NewRefDecoder())
		return len(sec.Functions)
	}
	a, b := run(), run()
	if a != b {
		t.Fatalf("expected deterministic function count across independent runs, got %d and %d", a, b)
	}
}
