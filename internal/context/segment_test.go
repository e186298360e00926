package context

import "testing"

func TestSegmentAddSymbolIdempotent(t *testing.T) {
	seg := NewSegment(0x80000000, 0x80001000, "")

	a := seg.AddSymbol(0x80000100, SectionUnknown, true)
	b := seg.AddSymbol(0x80000100, SectionText, true)

	if a != b {
		t.Fatalf("AddSymbol should return the same symbol on repeat calls")
	}
	if a.SectionType != SectionText {
		t.Fatalf("expected upgrade from Unknown to Text, got %v", a.SectionType)
	}
}

func TestSegmentAddSymbolNoDowngrade(t *testing.T) {
	seg := NewSegment(0x80000000, 0x80001000, "")

	a := seg.AddSymbol(0x80000100, SectionText, true)
	b := seg.AddSymbol(0x80000100, SectionData, true)
	if b.SectionType != SectionText {
		t.Fatalf("SectionType must not be downgraded once set, got %v", a.SectionType)
	}
}

func TestSegmentSortedConsistency(t *testing.T) {
	seg := NewSegment(0x80000000, 0x80001000, "")
	addrs := []uint32{0x80000100, 0x80000010, 0x80000FF0, 0x80000050}
	for _, a := range addrs {
		seg.AddSymbol(a, SectionData, true)
	}

	sorted := seg.symbolsVramSorted
	if len(sorted) != len(seg.symbols) {
		t.Fatalf("symbolsVramSorted length %d != symbols map length %d", len(sorted), len(seg.symbols))
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1] >= sorted[i] {
			t.Fatalf("symbolsVramSorted not strictly increasing at %d: %x >= %x", i, sorted[i-1], sorted[i])
		}
	}
	for addr := range seg.symbols {
		found := false
		for _, s := range sorted {
			if s == addr {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("address %x missing from symbolsVramSorted", addr)
		}
	}
}

func TestSegmentGetSymbolExact(t *testing.T) {
	seg := NewSegment(0x80000000, 0x80001000, "")
	seg.AddSymbol(0x80000100, SectionData, true)

	got := seg.GetSymbol(0x80000100, true, true)
	if got == nil || got.Address != 0x80000100 {
		t.Fatalf("expected exact match at 0x80000100")
	}
}

func TestSegmentGetSymbolPlusOffset(t *testing.T) {
	seg := NewSegment(0x80000000, 0x80001000, "")
	sym := seg.AddSymbol(0x80000100, SectionData, true)
	sym.SetUserDeclaredSize(0x10)

	// Inside [0x100, 0x110) should resolve to the base symbol.
	got := seg.GetSymbol(0x80000108, true, true)
	if got == nil || got.Address != 0x80000100 {
		t.Fatalf("expected greatest-lower-bound match, got %v", got)
	}

	// Outside the size window, upper-limit check should refuse a match.
	got = seg.GetSymbol(0x80000200, true, true)
	if got != nil {
		t.Fatalf("expected no match past the symbol's size, got %v", got)
	}

	// With checkUpperLimit disabled, the same address resolves to the LHS symbol.
	got = seg.GetSymbol(0x80000200, true, false)
	if got == nil || got.Address != 0x80000100 {
		t.Fatalf("expected LHS match with checkUpperLimit=false")
	}
}

func TestSegmentGetSymbolsRange(t *testing.T) {
	seg := NewSegment(0x80000000, 0x80001000, "")
	for _, a := range []uint32{0x80000000, 0x80000010, 0x80000020, 0x80000030} {
		seg.AddSymbol(a, SectionData, true)
	}

	got := seg.GetSymbolsRange(0x80000010, 0x80000030)
	if len(got) != 2 {
		t.Fatalf("expected 2 symbols in [0x10, 0x30), got %d", len(got))
	}
	if got[0].Address != 0x80000010 || got[1].Address != 0x80000020 {
		t.Fatalf("unexpected range contents: %+v", got)
	}
}

func TestPointerInDataReferencePopRange(t *testing.T) {
	seg := NewSegment(0x80000000, 0x80010000, "")
	for _, a := range []uint32{0x80002000, 0x80002010, 0x80003000, 0x80001000} {
		seg.AddPointerInDataReference(a)
	}

	popped := seg.PopPointerInDataReferencesRange(0x80002000, 0x80003000)
	if len(popped) != 2 {
		t.Fatalf("expected 2 popped entries, got %d: %v", len(popped), popped)
	}

	// Destructive: a second pop over the same range finds nothing.
	popped2 := seg.PopPointerInDataReferencesRange(0x80002000, 0x80003000)
	if len(popped2) != 0 {
		t.Fatalf("expected pop to be destructive, got %v", popped2)
	}

	// Entries outside the range remain.
	if !seg.PopPointerInDataReference(0x80001000) {
		t.Fatalf("expected 0x80001000 to remain after the range pop")
	}
	if !seg.PopPointerInDataReference(0x80003000) {
		t.Fatalf("expected 0x80003000 to remain after the range pop")
	}
}

func TestAddFunctionUpgradeLattice(t *testing.T) {
	seg := NewSegment(0x80000000, 0x80001000, "")

	sym := seg.AddBranchLabel(0x80000100, true)
	if sym.autodetectedType.special != SpecialBranchLabel {
		t.Fatalf("expected branchlabel, got %v", sym.autodetectedType.special)
	}

	// Upgrading to function must win over branchlabel.
	seg.AddFunction(0x80000100, true)
	if sym.autodetectedType.special != SpecialFunction {
		t.Fatalf("expected function to win over branchlabel, got %v", sym.autodetectedType.special)
	}

	// A later branch-label add must not downgrade it back.
	seg.AddBranchLabel(0x80000100, true)
	if sym.autodetectedType.special != SpecialFunction {
		t.Fatalf("function must not be downgraded to branchlabel, got %v", sym.autodetectedType.special)
	}
}
