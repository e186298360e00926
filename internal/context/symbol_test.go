package context

import (
	"strconv"
	"strings"
	"testing"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
)

func TestGetSizePrecedence(t *testing.T) {
	sym := NewContextSymbol(0x80000100, SectionData)

	// Alignment-based fallback first (4-aligned address -> 4).
	if got := sym.GetSize(); got != 4 {
		t.Fatalf("expected fallback size 4, got %d", got)
	}

	// AccessType next.
	sym.AccessType = AccessByte
	if got := sym.GetSize(); got != 1 {
		t.Fatalf("expected AccessType-derived size 1, got %d", got)
	}

	// userDeclaredType named size beats AccessType.
	sym.SetUserDeclaredType(NamedSlot("u64"))
	if got := sym.GetSize(); got != 8 {
		t.Fatalf("expected userDeclaredType-derived size 8, got %d", got)
	}

	// autodetectedSize beats userDeclaredType.
	sym.SetAutodetectedSize(2)
	if got := sym.GetSize(); got != 2 {
		t.Fatalf("expected autodetectedSize 2, got %d", got)
	}

	// userDeclaredSize wins over everything (spec.md §8 "User priority").
	sym.SetUserDeclaredSize(100)
	if got := sym.GetSize(); got != 100 {
		t.Fatalf("expected userDeclaredSize 100, got %d", got)
	}
}

func TestNameQuoting(t *testing.T) {
	sym := NewContextSymbol(0x80000100, SectionData)
	sym.SetName("weird-name+with@stuff")

	got := sym.GetName(config.Default())
	if !strings.HasPrefix(got, `"`) || !strings.HasSuffix(got, `"`) {
		t.Fatalf("expected quoted name, got %q", got)
	}
	// Round-trips through Go's quoting so no bare '"' leaks into the body.
	unquoted, err := strconv.Unquote(got)
	if err != nil {
		t.Fatalf("quoted name did not round-trip: %v", err)
	}
	if strings.Contains(unquoted, `"`) {
		t.Fatalf("unquoted name still contains a raw quote: %q", unquoted)
	}
}

func TestSetNameIfUnsetOnlyTouchesName(t *testing.T) {
	sym := NewContextSymbol(0x80000100, SectionData)
	sym.SetUserDeclaredType(NamedSlot("u32"))

	sym.SetNameIfUnset("first")
	sym.SetNameIfUnset("second")

	if sym.name == nil || *sym.name != "first" {
		t.Fatalf("expected name to stay 'first', got %v", sym.name)
	}
	if sym.UserDeclaredType().Name() != "u32" {
		t.Fatalf("SetNameIfUnset must never touch the type field")
	}
}

func TestDefaultNameSynthesis(t *testing.T) {
	sym := NewContextSymbol(0x80000100, SectionData)
	cfg := config.Default()

	got := sym.GetName(cfg)
	want := "D_80000100"
	if got != want {
		t.Fatalf("expected default data name %q, got %q", want, got)
	}
}

func TestFunctionDefaultName(t *testing.T) {
	sym := NewContextSymbol(0x80000100, SectionText)
	sym.autodetectedType = SpecialSlot(SpecialFunction)
	cfg := config.Default()

	got := sym.GetName(cfg)
	want := "func_80000100"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSequentialLabelNames(t *testing.T) {
	cfg := config.Default()
	cfg.SequentialLabelNames = true

	fn := NewContextSymbol(0x80000100, SectionText)
	fn.autodetectedType = SpecialSlot(SpecialFunction)
	fn.BranchLabels = NewOrderedSymbolMap()

	l1 := NewContextSymbol(0x80000110, SectionText)
	l1.autodetectedType = SpecialSlot(SpecialBranchLabel)
	l1.ParentFunction = fn
	fn.BranchLabels.Put(0x80000110, l1)

	l2 := NewContextSymbol(0x80000120, SectionText)
	l2.autodetectedType = SpecialSlot(SpecialBranchLabel)
	l2.ParentFunction = fn
	fn.BranchLabels.Put(0x80000120, l2)

	if got, want := l1.GetName(cfg), ".Lfunc_80000100_1"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got, want := l2.GetName(cfg), ".Lfunc_80000100_2"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestIsFloatRequiresAlignment(t *testing.T) {
	sym := NewContextSymbol(0x80000102, SectionRodata) // not 4-aligned
	sym.SetUserDeclaredType(NamedSlot("f32"))
	if sym.IsFloat() {
		t.Fatalf("unaligned symbol must not be classified as float")
	}

	sym2 := NewContextSymbol(0x80000104, SectionRodata)
	sym2.SetUserDeclaredType(NamedSlot("f32"))
	if !sym2.IsFloat() {
		t.Fatalf("aligned f32-typed symbol should be classified as float")
	}
}
