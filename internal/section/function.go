package section

import (
	"github.com/decomp-toolkit/spimdisasm/internal/context"
	"github.com/decomp-toolkit/spimdisasm/internal/mips"
)

// SymbolFunction specializes the generic data symbol per spec.md §3.1:
// it carries the decoded instruction window belonging to one function,
// the set of instruction offsets holding a reconstructed %hi/%lo
// pointer, and whether any instruction in the window failed to decode.
type SymbolFunction struct {
	Symbol *context.ContextSymbol

	Instructions []mips.Instruction

	// PointersOffsets is keyed by byte offset *within this function's
	// instruction window* (spec.md §3.1, §4.3.2).
	PointersOffsets map[uint32]bool

	HasUnimplementedIntrs bool
	Index                 int

	InFileOffset  uint32
	CommentOffset uint32
}

func newSymbolFunction(sym *context.ContextSymbol, instrs []mips.Instruction, inFileOffset uint32) *SymbolFunction {
	return &SymbolFunction{
		Symbol:          sym,
		Instructions:    instrs,
		PointersOffsets: make(map[uint32]bool),
		InFileOffset:    inFileOffset,
	}
}
