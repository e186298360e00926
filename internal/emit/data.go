package emit

import (
	"fmt"
	"math"
	"strings"

	"github.com/decomp-toolkit/spimdisasm/internal/context"
	"github.com/decomp-toolkit/spimdisasm/internal/section"
)

// EmitData renders a DataSection (shared by .data and .rodata, per
// spec.md §4.4's "the only difference is which guesser-level knobs
// apply") per spec.md §4.6: one dlabel/jlabel per symbol, a classified
// body (word/float/double/string/jumptable/byte/short), a size
// directive, an optional post-align for strings.
func (e *Emitter) EmitData(sec *section.DataSection) string {
	var b strings.Builder
	nl := e.nl()

	vramEnd := sec.VramOffset(uint32(len(sec.Words)) * 4)
	syms := sec.Segment.GetSymbolsRange(sec.Vram, vramEnd)

	for i, sym := range syms {
		spanEnd := vramEnd
		if i+1 < len(syms) {
			spanEnd = syms[i+1].Address
		}
		span := spanEnd - sym.Address
		if span == 0 {
			continue
		}

		name := sym.GetName(e.Config)
		macro := e.Config.DlabelMacro
		isJumpTable := sym.EffectiveType().Special() == context.SpecialJumpTable
		if isJumpTable {
			macro = e.Config.JlabelMacro
		}
		b.WriteString(e.labelLine(macro, name))
		b.WriteString(nl)

		e.emitSymbolBody(&b, sec, sym, sym.Address-sec.Vram, span, isJumpTable, nl)

		if sd := e.sizeDirective(name); sd != "" {
			b.WriteString(sd)
			b.WriteString(nl)
		}
	}

	return b.String()
}

// EmitRodata is EmitData under a different name for readability at call
// sites; rodata and data share one renderer (spec.md §4.4).
func (e *Emitter) EmitRodata(sec *section.DataSection) string { return e.EmitData(sec) }

func (e *Emitter) emitSymbolBody(b *strings.Builder, sec *section.DataSection, sym *context.ContextSymbol, localStart, span uint32, isJumpTable bool, nl string) {
	switch {
	case isJumpTable:
		e.emitJumpTableBody(b, sec, sym, localStart, span, nl)
	case sym.IsString():
		e.emitStringBody(b, sec, localStart, span, false, nl)
	case sym.IsPascalString():
		e.emitStringBody(b, sec, localStart, span, true, nl)
	case sym.AccessType == context.AccessDoubleFloat && span >= 8:
		e.emitDoubleBody(b, sec, localStart, span, nl)
	case sym.AccessType == context.AccessFloat && span >= 4:
		e.emitFloatBody(b, sec, localStart, span, nl)
	case sym.IsByte() && e.Config.UseDotByte:
		e.emitByteBody(b, sec, localStart, span, nl)
	case sym.IsShort() && e.Config.UseDotShort:
		e.emitShortBody(b, sec, localStart, span, nl)
	default:
		e.emitWordBody(b, sec, localStart, span, nl)
	}
}

func (e *Emitter) wordAt(sec *section.DataSection, localOffset uint32) uint32 {
	idx := int(localOffset / 4)
	if idx < 0 || idx >= len(sec.Words) {
		return 0
	}
	return sec.Words[idx]
}

func (e *Emitter) emitWordBody(b *strings.Builder, sec *section.DataSection, localStart, span uint32, nl string) {
	for off := uint32(0); off < span; off += 4 {
		local := localStart + off
		word := e.wordAt(sec, local)
		vram := sec.VramOffset(local)
		var operand string
		if sec.Reloc != nil {
			if reloc, ok := sec.Reloc(local); ok {
				operand = relocOperand(reloc)
			}
		}
		if operand == "" {
			operand = e.resolveWordOperand(sec.Context, sec.OverlayCategory, word, false)
		}
		b.WriteString(e.comment(sec.CommentOffset+local, vram, word))
		b.WriteString(fmt.Sprintf(" .word %s", operand))
		b.WriteString(nl)
	}
}

func (e *Emitter) emitJumpTableBody(b *strings.Builder, sec *section.DataSection, sym *context.ContextSymbol, localStart, span uint32, nl string) {
	for off := uint32(0); off < span; off += 4 {
		local := localStart + off
		word := e.wordAt(sec, local)
		vram := sec.VramOffset(local)
		operand := e.resolveWordOperand(sec.Context, sec.OverlayCategory, word, true)
		b.WriteString(e.comment(sec.CommentOffset+local, vram, word))
		b.WriteString(fmt.Sprintf(" .word %s", operand))
		b.WriteString(nl)
	}
}

func (e *Emitter) emitFloatBody(b *strings.Builder, sec *section.DataSection, localStart, span uint32, nl string) {
	for off := uint32(0); off+4 <= span; off += 4 {
		local := localStart + off
		word := e.wordAt(sec, local)
		vram := sec.VramOffset(local)
		f := math.Float32frombits(word)
		b.WriteString(e.comment(sec.CommentOffset+local, vram, word))
		b.WriteString(fmt.Sprintf(" .float %g", f))
		b.WriteString(nl)
	}
}

func (e *Emitter) emitDoubleBody(b *strings.Builder, sec *section.DataSection, localStart, span uint32, nl string) {
	for off := uint32(0); off+8 <= span; off += 8 {
		local := localStart + off
		hi := e.wordAt(sec, local)
		lo := e.wordAt(sec, local+4)
		vram := sec.VramOffset(local)
		bits := uint64(hi)<<32 | uint64(lo)
		d := math.Float64frombits(bits)
		b.WriteString(e.comment(sec.CommentOffset+local, vram, hi))
		b.WriteString(fmt.Sprintf(" .double %g", d))
		b.WriteString(nl)
	}
}

func (e *Emitter) emitStringBody(b *strings.Builder, sec *section.DataSection, localStart, span uint32, pascal bool, nl string) {
	vram := sec.VramOffset(localStart)
	word := e.wordAt(sec, localStart)
	b.WriteString(e.comment(sec.CommentOffset+localStart, vram, word))

	if pascal {
		s, _, ok := section.DecodePascalAt(sec.Bytes, localStart)
		if !ok {
			e.emitWordBody(b, sec, localStart, span, nl)
			return
		}
		b.WriteString(fmt.Sprintf(" .byte 0x%02X", len(s)))
		b.WriteString(nl)
		b.WriteString(fmt.Sprintf(".ascii %s", quoteString(s)))
	} else {
		s, _, ok := section.DecodeASCIIAt(sec.Bytes, localStart)
		if !ok {
			e.emitWordBody(b, sec, localStart, span, nl)
			return
		}
		b.WriteString(fmt.Sprintf(" .asciz %s", quoteString(s)))
	}
	b.WriteString(nl)
	b.WriteString(".balign 4")
	b.WriteString(nl)
}

func (e *Emitter) emitByteBody(b *strings.Builder, sec *section.DataSection, localStart, span uint32, nl string) {
	for off := uint32(0); off < span; off++ {
		local := localStart + off
		idx := int(local)
		var v byte
		if idx >= 0 && idx < len(sec.Bytes) {
			v = sec.Bytes[idx]
		}
		vram := sec.VramOffset(local)
		b.WriteString(e.comment(sec.CommentOffset+local, vram, uint32(v)))
		b.WriteString(fmt.Sprintf(" .byte 0x%02X", v))
		b.WriteString(nl)
	}
}

func (e *Emitter) emitShortBody(b *strings.Builder, sec *section.DataSection, localStart, span uint32, nl string) {
	for off := uint32(0); off+2 <= span; off += 2 {
		local := localStart + off
		idx := int(local)
		var v uint16
		if idx >= 0 && idx+1 < len(sec.Bytes) {
			v = uint16(sec.Bytes[idx])<<8 | uint16(sec.Bytes[idx+1])
		}
		vram := sec.VramOffset(local)
		b.WriteString(e.comment(sec.CommentOffset+local, vram, uint32(v)))
		b.WriteString(fmt.Sprintf(" .short 0x%04X", v))
		b.WriteString(nl)
	}
}

func relocOperand(r section.Reloc) string {
	if r.Addend == 0 {
		return r.SymbolName
	}
	if r.Addend > 0 {
		return fmt.Sprintf("%s + 0x%X", r.SymbolName, r.Addend)
	}
	return fmt.Sprintf("%s - 0x%X", r.SymbolName, -r.Addend)
}
