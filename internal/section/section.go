// Package section implements the three analyzer families of spec.md §4.3
// to §4.5 (text, data/rodata, bss) on top of the shared internal/context
// registry. Grounded on the teacher's internal/emulator (ELF section
// bookkeeping in internal/emulator/elf.go) generalized from "one ELF
// section" to "one analysis-time section borrowing a Segment".
package section

import (
	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
	"github.com/decomp-toolkit/spimdisasm/internal/diag"
)

// Reloc is a single known relocation for one word of a section, per
// spec.md §1's "the core consumes a per-word relocation lookup but does
// not decode the table formats".
type Reloc struct {
	// SymbolName is the relocation's symbolic operand, already resolved by
	// the (external) relocation-table decoder.
	SymbolName string
	Addend     int32
}

// RelocLookup resolves the relocation known for the word at the given
// byte offset within a section, if any.
type RelocLookup func(offsetInSection uint32) (Reloc, bool)

// Base carries the fields shared by every section variant (spec.md
// §3.1's "Section (abstract, four variants)").
type Base struct {
	Context *context.Context
	Segment *context.Segment
	Config  config.Config
	Diag    *diag.Collector

	Vram            uint32
	VromStart       uint32
	InFileOffset    uint32
	CommentOffset   uint32
	OverlayCategory string

	// Words is the byte-order-decoded word stream (empty for Bss, which
	// carries only a span per spec.md §3.1).
	Words []uint32

	// Bytes is the raw section content backing Words, used by string
	// decoding (spec.md §4.4.5) which works byte-by-byte rather than
	// word-by-word. Empty for Bss.
	Bytes []byte

	Reloc RelocLookup
}

// VramOffset returns the absolute vram for a byte offset local to this
// section.
func (b *Base) VramOffset(localOffset uint32) uint32 { return b.Vram + localOffset }

// VromOffset returns the absolute vrom for a byte offset local to this
// section.
func (b *Base) VromOffset(localOffset uint32) uint32 { return b.VromStart + localOffset }

// lookupSymbol is the common "exact match, no plus-offset, no upper
// limit" query used throughout boundary detection (mirrors
// original_source/spimdisasm/mips/sections/MipsSectionText.py's
// `tryPlusOffset=False, checkGlobalSegment=False` calls).
func (b *Base) lookupSymbol(vram uint32) *context.ContextSymbol {
	return b.Segment.GetSymbol(vram, false, false)
}

// reportf is a small helper so analyzers can push a diagnostic without
// each call site constructing diag.NewEvent by hand.
func (b *Base) reportf(addr uint32, cat diag.Category, symbol, detail string) {
	if b.Diag == nil {
		return
	}
	b.Diag.Report(diag.NewEvent(addr, cat, symbol, detail))
}
