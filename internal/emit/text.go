package emit

import (
	"strings"

	"github.com/decomp-toolkit/spimdisasm/internal/section"
)

// EmitText renders a function-discovered TextSection per spec.md §4.3.2 /
// §4.6: one glabel per function, a per-instruction comment + mnemonic
// line, a closing size directive. Full operand-text formatting belongs
// to the (out-of-scope, external) instruction decoder; this only renders
// the fields the core itself owns.
func (e *Emitter) EmitText(sec *section.TextSection) string {
	var b strings.Builder
	nl := e.nl()

	for _, fn := range sec.Functions {
		name := fn.Symbol.GetName(e.Config)
		b.WriteString(e.labelLine(e.Config.GlabelMacro, name))
		b.WriteString(nl)

		for i, instr := range fn.Instructions {
			localOffset := uint32(i) * 4
			b.WriteString(e.comment(fn.CommentOffset+localOffset, instr.Address, instr.Raw))
			b.WriteString(" ")
			if !instr.IsImplemented {
				b.WriteString(".word 0x")
				b.WriteString(hex8(instr.Raw))
			} else {
				b.WriteString(instr.Mnemonic)
			}
			b.WriteString(nl)
		}

		if sd := e.sizeDirective(name); sd != "" {
			b.WriteString(sd)
			b.WriteString(nl)
		}
	}

	return b.String()
}

func hex8(v uint32) string {
	const digits = "0123456789ABCDEF"
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = digits[v&0xF]
		v >>= 4
	}
	return string(out)
}
