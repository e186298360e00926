package context

import "sort"

// Segment is a half-open virtual address window [VramStart, VramEnd) that
// owns a keyed collection of ContextSymbols, per spec.md §3.1. Grounded
// on the teacher's sorted-ranges-plus-binary-search idiom
// (internal/emulator/vtable.go's findRange, internal/emulator/elf.go's
// sorted Segments), generalized from ELF program-header ranges to
// analysis-time vram ranges.
type Segment struct {
	VramStart uint32
	VramEnd   uint32

	// OverlayCategory partitions the address space: symbols with a
	// different category at the same vram are distinct (spec.md §3.2).
	OverlayCategory string

	symbols           map[uint32]*ContextSymbol
	symbolsVramSorted []uint32

	constants map[uint32]*ContextSymbol // keyed by value, not address

	newPointersInData []uint32 // insertion-sorted set

	loPatches map[uint32]uint32 // %lo instruction address -> target vram

	dataSymbolsWithReferencesWithAddends map[uint32]bool
	dataReferencingConstants             map[uint32]bool
}

// NewSegment constructs an empty Segment covering [vramStart, vramEnd).
// vramStart must be strictly less than vramEnd (spec.md §3.2).
func NewSegment(vramStart, vramEnd uint32, overlayCategory string) *Segment {
	if vramStart >= vramEnd {
		panic("context: Segment requires vramStart < vramEnd")
	}
	return &Segment{
		VramStart:                            vramStart,
		VramEnd:                               vramEnd,
		OverlayCategory:                       overlayCategory,
		symbols:                               make(map[uint32]*ContextSymbol),
		constants:                             make(map[uint32]*ContextSymbol),
		loPatches:                             make(map[uint32]uint32),
		dataSymbolsWithReferencesWithAddends: make(map[uint32]bool),
		dataReferencingConstants:             make(map[uint32]bool),
	}
}

// IsVramInRange reports whether vram lies in [VramStart, VramEnd).
func (seg *Segment) IsVramInRange(vram uint32) bool {
	return vram >= seg.VramStart && vram < seg.VramEnd
}

// sortedIndex returns the index of address in symbolsVramSorted, and
// whether it is present there (sort.Search binary search, O(log n)).
func (seg *Segment) sortedIndex(address uint32) (int, bool) {
	i := sort.Search(len(seg.symbolsVramSorted), func(i int) bool {
		return seg.symbolsVramSorted[i] >= address
	})
	if i < len(seg.symbolsVramSorted) && seg.symbolsVramSorted[i] == address {
		return i, true
	}
	return i, false
}

func (seg *Segment) insertSorted(address uint32) {
	i, found := seg.sortedIndex(address)
	if found {
		return
	}
	seg.symbolsVramSorted = append(seg.symbolsVramSorted, 0)
	copy(seg.symbolsVramSorted[i+1:], seg.symbolsVramSorted[i:])
	seg.symbolsVramSorted[i] = address
}

// AddSymbol is spec.md §4.1's addSymbol: idempotent (returns the existing
// symbol on a second call), upgrading SectionType only when the stored
// value is currently SectionUnknown.
func (seg *Segment) AddSymbol(address uint32, section SectionType, isAutogenerated bool) *ContextSymbol {
	if existing, ok := seg.symbols[address]; ok {
		if existing.SectionType == SectionUnknown && section != SectionUnknown {
			existing.SectionType = section
		}
		return existing
	}
	sym := NewContextSymbol(address, section)
	sym.IsAutogenerated = isAutogenerated
	sym.OverlayCategory = seg.OverlayCategory
	seg.symbols[address] = sym
	seg.insertSorted(address)
	return sym
}

// upgradeSpecial refines sym's autodetected special tag according to the
// monotonic precedence lattice of spec.md §4.1, refusing a downgrade.
func upgradeSpecial(sym *ContextSymbol, want SpecialType) {
	current := sym.autodetectedType
	if current.set && current.special.isSet() {
		if specialRank(current.special) >= specialRank(want) {
			return
		}
	}
	sym.autodetectedType = SpecialSlot(want)
}

// AddFunction adds (or fetches) a symbol and refines its type to
// "function", the top of the precedence lattice.
func (seg *Segment) AddFunction(address uint32, isAutogenerated bool) *ContextSymbol {
	sym := seg.AddSymbol(address, SectionText, isAutogenerated)
	upgradeSpecial(sym, SpecialFunction)
	return sym
}

// AddBranchLabel adds (or fetches) a symbol and attempts to refine its
// type to "branchlabel"; refused if the existing tag is function or
// jumptablelabel (spec.md §4.1).
func (seg *Segment) AddBranchLabel(address uint32, isAutogenerated bool) *ContextSymbol {
	sym := seg.AddSymbol(address, SectionText, isAutogenerated)
	upgradeSpecial(sym, SpecialBranchLabel)
	return sym
}

// AddJumpTable adds (or fetches) a symbol and refines its type to
// "jumptable"; refused if the existing tag is function.
func (seg *Segment) AddJumpTable(address uint32, section SectionType, isAutogenerated bool) *ContextSymbol {
	sym := seg.AddSymbol(address, section, isAutogenerated)
	upgradeSpecial(sym, SpecialJumpTable)
	return sym
}

// AddJumpTableLabel adds (or fetches) a symbol and refines its type to
// "jumptablelabel"; refused if the existing tag is function.
func (seg *Segment) AddJumpTableLabel(address uint32, isAutogenerated bool) *ContextSymbol {
	sym := seg.AddSymbol(address, SectionText, isAutogenerated)
	upgradeSpecial(sym, SpecialJumpTableLabel)
	return sym
}

// GetSymbol implements spec.md §4.1's lookup: exact match first, then (if
// tryPlusOffset) the greatest-lower-bound symbol, returned only if
// address falls inside its size (unless checkUpperLimit is false).
func (seg *Segment) GetSymbol(address uint32, tryPlusOffset, checkUpperLimit bool) *ContextSymbol {
	if sym, ok := seg.symbols[address]; ok {
		return sym
	}
	if !tryPlusOffset {
		return nil
	}
	i, _ := seg.sortedIndex(address)
	// sortedIndex returns the first index >= address; the greatest lower
	// bound is the entry just before that (if any).
	if i == 0 {
		return nil
	}
	glbAddr := seg.symbolsVramSorted[i-1]
	glb := seg.symbols[glbAddr]
	if !checkUpperLimit {
		return glb
	}
	if address < glb.Address+glb.GetSize() {
		return glb
	}
	return nil
}

// GetSymbolsRange returns every symbol with address in [lo, hi).
func (seg *Segment) GetSymbolsRange(lo, hi uint32) []*ContextSymbol {
	i, _ := seg.sortedIndex(lo)
	var out []*ContextSymbol
	for ; i < len(seg.symbolsVramSorted); i++ {
		addr := seg.symbolsVramSorted[i]
		if addr >= hi {
			break
		}
		out = append(out, seg.symbols[addr])
	}
	return out
}

// AllSymbolsSorted returns every symbol in address order.
func (seg *Segment) AllSymbolsSorted() []*ContextSymbol {
	out := make([]*ContextSymbol, len(seg.symbolsVramSorted))
	for i, addr := range seg.symbolsVramSorted {
		out[i] = seg.symbols[addr]
	}
	return out
}

// AddPointerInDataReference records addr as a candidate pointee found
// while scanning data (spec.md §4.1), keeping the set sorted for the
// range-destructive pop below.
func (seg *Segment) AddPointerInDataReference(addr uint32) {
	i := sort.Search(len(seg.newPointersInData), func(i int) bool {
		return seg.newPointersInData[i] >= addr
	})
	if i < len(seg.newPointersInData) && seg.newPointersInData[i] == addr {
		return
	}
	seg.newPointersInData = append(seg.newPointersInData, 0)
	copy(seg.newPointersInData[i+1:], seg.newPointersInData[i:])
	seg.newPointersInData[i] = addr
}

// PopPointerInDataReference removes addr from the candidate-pointer set,
// if present.
func (seg *Segment) PopPointerInDataReference(addr uint32) bool {
	i := sort.Search(len(seg.newPointersInData), func(i int) bool {
		return seg.newPointersInData[i] >= addr
	})
	if i < len(seg.newPointersInData) && seg.newPointersInData[i] == addr {
		seg.newPointersInData = append(seg.newPointersInData[:i], seg.newPointersInData[i+1:]...)
		return true
	}
	return false
}

// PopPointerInDataReferencesRange destructively pops and returns every
// candidate pointer address in [lo, hi), so that later sections (e.g.
// bss, which must consume newPointersInData exactly once per spec.md
// §4.5) never re-promote an already-drained entry.
func (seg *Segment) PopPointerInDataReferencesRange(lo, hi uint32) []uint32 {
	i := sort.Search(len(seg.newPointersInData), func(i int) bool {
		return seg.newPointersInData[i] >= lo
	})
	j := i
	for j < len(seg.newPointersInData) && seg.newPointersInData[j] < hi {
		j++
	}
	out := make([]uint32, j-i)
	copy(out, seg.newPointersInData[i:j])
	seg.newPointersInData = append(seg.newPointersInData[:i], seg.newPointersInData[j:]...)
	return out
}

// SetLoPatch records a manual override for the target vram a %lo
// instruction at loAddr should resolve to (spec.md §3.1, populated from
// original_source/MipsSectionText.py's loPatches concept).
func (seg *Segment) SetLoPatch(loAddr, targetVram uint32) {
	seg.loPatches[loAddr] = targetVram
}

// LoPatch returns the manual %lo override for loAddr, if any.
func (seg *Segment) LoPatch(loAddr uint32) (uint32, bool) {
	v, ok := seg.loPatches[loAddr]
	return v, ok
}

// AllowReferenceWithAddend marks address as allowed to be rendered with a
// non-zero addend ("NAME + 0xOFFSET"). internal/emit does not consult
// this list.
func (seg *Segment) AllowReferenceWithAddend(address uint32) {
	seg.dataSymbolsWithReferencesWithAddends[address] = true
}

// IsReferenceWithAddendAllowed reports whether address is in that
// allow-list.
func (seg *Segment) IsReferenceWithAddendAllowed(address uint32) bool {
	return seg.dataSymbolsWithReferencesWithAddends[address]
}

// AllowReferencingConstants marks address as allowed to render its word
// as a named integer constant rather than a pointer/word literal.
// internal/emit does not consult this list.
func (seg *Segment) AllowReferencingConstants(address uint32) {
	seg.dataReferencingConstants[address] = true
}

// IsReferencingConstantsAllowed reports whether address is in that
// allow-list.
func (seg *Segment) IsReferencingConstantsAllowed(address uint32) bool {
	return seg.dataReferencingConstants[address]
}

// AddConstant registers a named integer constant, keyed by value (not
// address) — constants are not memory-resident (spec.md §4.1).
func (seg *Segment) AddConstant(value uint32, name string) *ContextSymbol {
	if sym, ok := seg.constants[value]; ok {
		return sym
	}
	sym := NewContextSymbol(value, SectionUnknown)
	sym.SetName(name)
	sym.autodetectedType = SpecialSlot(SpecialConstant)
	seg.constants[value] = sym
	return sym
}

// GetConstant looks up a named constant by its value.
func (seg *Segment) GetConstant(value uint32) (*ContextSymbol, bool) {
	sym, ok := seg.constants[value]
	return sym, ok
}
