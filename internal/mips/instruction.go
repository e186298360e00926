// Package mips defines the contract this engine expects from the MIPS
// instruction decoder. spec.md §1 treats the decoder itself as an
// external black box ("provides, per 32-bit word, fields..."); this
// package only defines the Instruction value shape and the small
// reference Decoder used by this module's own tests and by
// cmd/spimdis's demo fixtures. A production caller supplies its own
// Decoder (e.g. wrapping a full MIPS disassembler) satisfying the same
// interface.
package mips

// AccessKind is the width/kind of memory access an instruction performs,
// used by the text analyzer to widen a referenced symbol's AccessType.
type AccessKind int

const (
	AccessNone AccessKind = iota
	AccessByte
	AccessByteUnsigned
	AccessShort
	AccessShortUnsigned
	AccessWord
	AccessDoubleword
	AccessFloat
	AccessDoubleFloat
)

// Instruction is the per-word decoded view spec.md §1 requires: opcode
// family, GPR indices, immediate, branch/jump targets, and the category
// flags the text analyzer's boundary-detection heuristics branch on.
type Instruction struct {
	Address uint32
	Raw     uint32

	// Mnemonic is an opaque, decoder-chosen family name ("jr", "jal",
	// "lui", "lw", ...); this module never branches on specific
	// mnemonics outside the category flags and HI/LO reconstruction
	// below, keeping the real decoder swappable.
	Mnemonic string

	Rs, Rt, Rd int
	Immediate  int16

	// BranchOffset is the *absolute* vram a branch instruction targets
	// (i.e. Address + 4 + sign_extend(imm)<<2 already applied by the
	// decoder), 0 for non-branches.
	BranchOffset uint32

	// JumpTarget is the absolute vram a j/jal instruction targets, 0 for
	// non-jumps.
	JumpTarget uint32

	// IsHiInstr / IsLoInstr mark the %hi/%lo reconstruction idiom
	// (spec.md §4.3's "candidate pointers discovered via %hi/%lo pair
	// reconstruction"); the text analyzer pairs them by register.
	IsHiInstr bool
	IsLoInstr bool

	// LoZeroExtend marks a %lo instruction whose immediate is
	// zero-extended rather than sign-extended (e.g. "ori", as opposed to
	// "addiu" or a load/store), so %hi/%lo reconstruction combines the
	// two halves with the right extension rule.
	LoZeroExtend bool

	Access         AccessKind
	AccessUnsigned bool

	IsBranch            bool
	IsJump              bool
	IsReturn            bool
	IsNop               bool
	IsImplemented       bool
	IsLikelyHandwritten bool
	DoesLink            bool
	IsJumptableJump      bool

	// IsJumpWithAddress marks a non-linking, non-register jump carrying an
	// absolute target in the instruction word itself ("j", as opposed to
	// "jal" which links or "jr"/"jalr" which jump through a register).
	// The text analyzer treats this family as a candidate tail-call/goto
	// rather than a call, per spec.md §4.3.1.
	IsJumpWithAddress bool
}

// Decoder decodes one 32-bit word at the given vram into an Instruction.
type Decoder interface {
	Decode(address uint32, word uint32) Instruction
}
