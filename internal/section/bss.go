package section

import (
	"github.com/decomp-toolkit/spimdisasm/internal/context"
	"github.com/decomp-toolkit/spimdisasm/internal/diag"
)

// BssSection implements spec.md §4.5: zero-filled regions carry no
// bytes, only a span; per-symbol size is inferred from the gap to the
// next symbol (or the end of the section for the last one).
type BssSection struct {
	Base

	VramEnd uint32
}

// Analyze ensures a symbol at the section start, drains candidate
// pointers discovered by earlier sections into new Bss symbols, marks
// every in-range symbol Defined+Bss, then computes consecutive-pair
// spans.
func (b *BssSection) Analyze() {
	seg := b.Segment
	seg.AddSymbol(b.Vram, context.SectionBss, true)

	for _, addr := range seg.PopPointerInDataReferencesRange(b.Vram, b.VramEnd) {
		if existing := seg.GetSymbol(addr, true, true); existing != nil && existing.UserDeclaredSize() != nil {
			// Overlapped by an already-sized user symbol: leave it alone
			// rather than fragment it with an autogenerated one.
			continue
		}
		seg.AddSymbol(addr, context.SectionBss, true)
	}

	syms := seg.GetSymbolsRange(b.Vram, b.VramEnd)
	for _, s := range syms {
		s.IsDefined = true
		s.SectionType = context.SectionBss
	}

	for i, s := range syms {
		var span uint32
		if i+1 < len(syms) {
			span = syms[i+1].Address - s.Address
		} else {
			span = b.VramEnd - s.Address
		}

		if userSize := s.UserDeclaredSize(); userSize != nil {
			if *userSize != span {
				b.reportf(s.Address, diag.SizeConflict, "", "bss span disagrees with user-declared size, keeping user size")
			}
			continue
		}
		s.SetAutodetectedSize(span)
	}
}
