package emit

import (
	"fmt"
	"strings"

	"github.com/decomp-toolkit/spimdisasm/internal/section"
)

// EmitBss renders a BssSection per spec.md §4.6/§6.1: a dlabel per
// symbol, a single `.space 0xNN` directive sized to that symbol's span,
// and a closing size directive.
func (e *Emitter) EmitBss(sec *section.BssSection) string {
	var b strings.Builder
	nl := e.nl()

	syms := sec.Segment.GetSymbolsRange(sec.Vram, sec.VramEnd)
	for _, sym := range syms {
		name := sym.GetName(e.Config)
		b.WriteString(e.labelLine(e.Config.DlabelMacro, name))
		b.WriteString(nl)
		b.WriteString(fmt.Sprintf(".space 0x%X", sym.GetSize()))
		b.WriteString(nl)
		if sd := e.sizeDirective(name); sd != "" {
			b.WriteString(sd)
			b.WriteString(nl)
		}
	}

	return b.String()
}
