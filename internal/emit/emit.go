// Package emit implements spec.md §4.6 / §6.1: rendering the symbols a
// section analyzer discovered into a deterministic assembly text stream.
// Grounded on the teacher's internal/ui/colorize package (a line-oriented
// text renderer driven by a small config struct), generalized from ANSI
// styling to assembler directive formatting.
package emit

import (
	"fmt"
	"strings"

	"github.com/decomp-toolkit/spimdisasm/internal/config"
	"github.com/decomp-toolkit/spimdisasm/internal/context"
)

// Emitter renders sections to assembly text under a fixed Config. It
// holds no mutable state of its own: every render is a pure function of
// the section's current (already-analyzed) symbol data plus Config, per
// spec.md §5's "emission is deterministic and referentially transparent
// with respect to the context state at emit time".
type Emitter struct {
	Config config.Config
}

// NewEmitter returns an Emitter bound to cfg.
func NewEmitter(cfg config.Config) *Emitter { return &Emitter{Config: cfg} }

func (e *Emitter) nl() string {
	if e.Config.LineEnding != "" {
		return e.Config.LineEnding
	}
	return "\n"
}

// comment renders spec.md §6.1's per-word prefix:
// `/* <offset:6X> <vram:08X> <word:08X> */`.
func (e *Emitter) comment(offset, vram, word uint32) string {
	return fmt.Sprintf("/* %0*X %0*X %0*X */",
		e.Config.CommentOffsetWidth, offset,
		e.Config.CommentVramWidth, vram,
		e.Config.CommentWordWidth, word)
}

// labelLine renders one of the three label-macro forms of spec.md §6.1.
func (e *Emitter) labelLine(macro, name string) string {
	return fmt.Sprintf("%s %s", macro, name)
}

// sizeDirective renders spec.md §4.6's closing `.size NAME, . - NAME`,
// when enabled.
func (e *Emitter) sizeDirective(name string) string {
	if !e.Config.EmitSizeDirective {
		return ""
	}
	return fmt.Sprintf(".size %s, . - %s", name, name)
}

// resolveWordOperand implements spec.md §4.6's reference-rendering rules
// for a plain data word: resolve it against the context as a pointer
// candidate (recomputed at emit time, not read from analysis-time
// bookkeeping — the result is a pure function of word+context+config so
// this stays deterministic), then apply the three exclusions: a function
// can't be referenced with a non-zero addend, a branch label can't be
// referenced outside a jump table, neither can a jump-table label.
func (e *Emitter) resolveWordOperand(ctx *context.Context, overlayCategory string, word uint32, inJumpTable bool) string {
	target := ctx.FindSegment(word, overlayCategory)
	if target == nil {
		target = ctx.FindSegment(word, "")
	}
	if target == nil {
		return fmt.Sprintf("0x%08X", word)
	}
	sym := target.GetSymbol(word, true, true)
	if sym == nil {
		return fmt.Sprintf("0x%08X", word)
	}

	special := sym.EffectiveType().Special()
	offset := word - sym.Address

	switch special {
	case context.SpecialFunction:
		if offset != 0 {
			return fmt.Sprintf("0x%08X", word)
		}
	case context.SpecialBranchLabel, context.SpecialJumpTableLabel:
		if !inJumpTable {
			return fmt.Sprintf("0x%08X", word)
		}
	}

	name := sym.GetName(e.Config)
	if offset == 0 {
		return name
	}
	return fmt.Sprintf("%s + 0x%X", name, offset)
}

// quoteString renders a decoded string body the way an assembler .ascii
// literal expects: double-quoted, with embedded quotes/backslashes
// escaped.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
