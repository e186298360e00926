package section

import (
	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
)

// DataSection implements spec.md §4.4's word-classification pass, shared
// between .data and .rodata (the only differences are which guesser-level
// knobs apply and which SectionType autocreated symbols get). Grounded
// on the teacher's internal/emulator range-membership checks, generalized
// from "is this address inside a loaded ELF segment" to "is this word a
// pointer into a known segment".
type DataSection struct {
	Base

	IsRodata bool

	// consumedDoubleLo marks a word offset that was consumed as the low
	// half of a double by its preceding word, so the main word loop skips
	// re-classifying it.
	consumedDoubleLo map[uint32]bool
}

func (d *DataSection) stringGuesserLevel() config.GuesserLevel {
	if d.IsRodata {
		return d.Config.RodataStringGuesserLevel
	}
	return d.Config.DataStringGuesserLevel
}

func (d *DataSection) pascalGuesserLevel() config.GuesserLevel {
	if d.IsRodata {
		return d.Config.PascalRodataStringGuesserLevel
	}
	return d.Config.PascalDataStringGuesserLevel
}

// sectionKind is this section's own SectionType, used when autocreating
// symbols and self-referential pointer classification.
func (d *DataSection) sectionKind() context.SectionType {
	if d.IsRodata {
		return context.SectionRodata
	}
	return context.SectionData
}

func isNaNOrInfFloat(word uint32) bool {
	return (word>>23)&0xFF == 0xFF
}

func isNaNOrInfDouble(hi, lo uint32) bool {
	v := uint64(hi)<<32 | uint64(lo)
	return (v>>52)&0x7FF == 0x7FF
}

// Analyze implements spec.md §4.4, walking Words in order and
// classifying each as a pointer, float, double, jumptable entry, string,
// or plain word. Classification results are recorded on the
// ContextSymbol governing each word's address (created on demand) so
// the emitter can later render the right directive.
func (d *DataSection) Analyze() {
	d.consumedDoubleLo = make(map[uint32]bool)
	d.Segment.AddSymbol(d.Vram, d.sectionKind(), true)

	for i, word := range d.Words {
		localOffset := uint32(i) * 4
		vram := d.VramOffset(localOffset)

		if d.consumedDoubleLo[localOffset] {
			continue
		}

		owner := d.Segment.GetSymbol(vram, false, false)

		if d.tryJumpTable(owner, vram, word) {
			continue
		}
		if d.tryPointer(vram, word) {
			continue
		}
		if d.tryDouble(owner, i, localOffset, vram, word) {
			continue
		}
		if d.tryFloat(owner, vram, word) {
			continue
		}
		// Plain word; string decoding is attempted section-wide by
		// TryStrings (spec.md §4.4.5), not per-word, since a string spans
		// multiple words.
	}

	d.TryStrings()
}

// tryPointer implements spec.md §4.4.1: a word whose value lies inside
// some segment's vram range is a pointer candidate.
func (d *DataSection) tryPointer(vram, word uint32) bool {
	if d.Config.FilterLowAddresses && word < d.Config.SymbolFinderFilterLowAddresses {
		return false
	}
	if d.Config.FilterHighAddresses && d.Config.SymbolFinderFilterHighAddresses != 0 && word > d.Config.SymbolFinderFilterHighAddresses {
		return false
	}

	target := d.Context.FindSegment(word, d.OverlayCategory)
	if target == nil {
		target = d.Context.FindSegment(word, "")
	}
	if target == nil {
		return false
	}

	target.AddPointerInDataReference(word)

	section := context.SectionUnknown
	if target == d.Segment && d.IsVramInRange(word) {
		section = d.sectionKind()
	}
	sym := target.AddSymbol(word, section, true)
	sym.ReferenceCounter++

	self := d.Segment.GetSymbol(vram, false, false)
	if self == nil {
		self = d.Segment.AddSymbol(vram, d.sectionKind(), true)
	}
	self.ReferenceSymbols = append(self.ReferenceSymbols, sym)
	d.Segment.AllowReferenceWithAddend(vram)
	return true
}

func (d *DataSection) IsVramInRange(vram uint32) bool {
	return vram >= d.Vram && vram < d.VramOffset(uint32(len(d.Words))*4)
}

// tryFloat implements spec.md §4.4's float rule: a plausible (non-NaN)
// word whose owning symbol's declared type says f32/Vec3f.
func (d *DataSection) tryFloat(owner *context.ContextSymbol, vram, word uint32) bool {
	if owner == nil || vram%4 != 0 {
		return false
	}
	if isNaNOrInfFloat(word) {
		return false
	}
	if !owner.IsFloat() {
		return false
	}
	owner.AccessType = context.AccessFloat
	return true
}

// tryDouble implements spec.md §4.4's double rule: 8-byte aligned, two
// words, forbidden to consume the +4 word if a symbol is already
// registered there.
func (d *DataSection) tryDouble(owner *context.ContextSymbol, index int, localOffset, vram, word uint32) bool {
	if owner == nil || vram%8 != 0 {
		return false
	}
	if !owner.IsDouble() {
		return false
	}
	if index+1 >= len(d.Words) {
		return false
	}
	loVram := d.VramOffset(localOffset + 4)
	if d.Segment.GetSymbol(loVram, false, false) != nil {
		return false
	}
	lo := d.Words[index+1]
	if isNaNOrInfDouble(word, lo) {
		return false
	}
	owner.AccessType = context.AccessDoubleFloat
	d.consumedDoubleLo[localOffset+4] = true
	return true
}

// tryJumpTable implements spec.md §4.4's jump-table rule: the owning
// symbol's type tag is "jumptable"; each word is resolved as a
// branch-label address.
func (d *DataSection) tryJumpTable(owner *context.ContextSymbol, vram, word uint32) bool {
	if owner == nil || owner.EffectiveType().Special() != context.SpecialJumpTable {
		return false
	}
	target := d.Context.FindSegment(word, d.OverlayCategory)
	if target == nil {
		return false
	}
	label := target.AddJumpTableLabel(word, true)
	label.ParentFunction = owner.ParentFunction
	if owner.JumpTables == nil {
		owner.JumpTables = context.NewOrderedSymbolMap()
	}
	owner.JumpTables.Put(word, label)
	_ = vram
	return true
}
