package mips

// RefDecoder is a small, deliberately incomplete MIPS I/II decoder
// covering exactly the opcodes this module's own tests and
// cmd/spimdis's demo fixtures exercise: nop, jr/jalr, j/jal, the common
// branches, lui/ori/addiu (for %hi/%lo reconstruction) and the
// load/store family (for AccessKind inference). It is not meant to
// replace a real decoder — see the package doc comment.
type RefDecoder struct{}

// NewRefDecoder returns a ready-to-use RefDecoder.
func NewRefDecoder() *RefDecoder { return &RefDecoder{} }

const (
	opSpecial = 0x00
	opRegimm  = 0x01
	opJ       = 0x02
	opJAL     = 0x03
	opBEQ     = 0x04
	opBNE     = 0x05
	opBLEZ    = 0x06
	opBGTZ    = 0x07
	opADDI    = 0x08
	opADDIU   = 0x09
	opSLTI    = 0x0A
	opSLTIU   = 0x0B
	opANDI    = 0x0C
	opORI     = 0x0D
	opXORI    = 0x0E
	opLUI     = 0x0F
	opCOP1    = 0x11
	opBEQL    = 0x14
	opBNEL    = 0x15
	opLB      = 0x20
	opLH      = 0x21
	opLWL     = 0x22
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opLWR     = 0x26
	opSB      = 0x28
	opSH      = 0x29
	opSWL     = 0x2A
	opSW      = 0x2B
	opSWR     = 0x2E
	opLWC1    = 0x31
	opLDC1    = 0x35
	opSWC1    = 0x39
	opSDC1    = 0x3D

	funcSLL  = 0x00
	funcJR   = 0x08
	funcJALR = 0x09
	funcADD  = 0x20
	funcADDU = 0x21
)

func signExtend16(v uint16) int32 { return int32(int16(v)) }

// Decode implements Decoder.
func (d *RefDecoder) Decode(address, word uint32) Instruction {
	insn := Instruction{Address: address, Raw: word, IsImplemented: true}

	if word == 0 {
		insn.Mnemonic = "nop"
		insn.IsNop = true
		return insn
	}

	op := (word >> 26) & 0x3F
	rs := int((word >> 21) & 0x1F)
	rt := int((word >> 16) & 0x1F)
	rd := int((word >> 11) & 0x1F)
	imm := uint16(word & 0xFFFF)
	fn := word & 0x3F
	target := (word & 0x03FFFFFF) << 2

	insn.Rs, insn.Rt, insn.Rd = rs, rt, rd
	insn.Immediate = int16(imm)

	switch op {
	case opSpecial:
		switch fn {
		case funcSLL:
			insn.Mnemonic = "sll"
			if word == 0 {
				insn.IsNop = true
			}
		case funcJR:
			insn.Mnemonic = "jr"
			insn.IsJump = true
			if rs == 31 {
				insn.IsReturn = true
			} else {
				insn.IsJumptableJump = true
			}
		case funcJALR:
			insn.Mnemonic = "jalr"
			insn.IsJump = true
			insn.DoesLink = true
		case funcADD, funcADDU:
			insn.Mnemonic = "addu"
		default:
			insn.Mnemonic = "special"
		}
		return insn

	case opJ:
		insn.Mnemonic = "j"
		insn.IsJump = true
		insn.IsJumpWithAddress = true
		insn.JumpTarget = (address & 0xF0000000) | target
		return insn

	case opJAL:
		insn.Mnemonic = "jal"
		insn.IsJump = true
		insn.DoesLink = true
		insn.JumpTarget = (address & 0xF0000000) | target
		return insn

	case opBEQ, opBNE, opBLEZ, opBGTZ, opBEQL, opBNEL:
		switch op {
		case opBEQ:
			insn.Mnemonic = "beq"
		case opBNE:
			insn.Mnemonic = "bne"
		case opBLEZ:
			insn.Mnemonic = "blez"
		case opBGTZ:
			insn.Mnemonic = "bgtz"
		case opBEQL:
			insn.Mnemonic = "beql"
		case opBNEL:
			insn.Mnemonic = "bnel"
		}
		insn.IsBranch = true
		insn.BranchOffset = uint32(int32(address) + 4 + signExtend16(imm)<<2)
		return insn

	case opRegimm:
		insn.Mnemonic = "regimm"
		insn.IsBranch = true
		insn.BranchOffset = uint32(int32(address) + 4 + signExtend16(imm)<<2)
		return insn

	case opADDI, opADDIU:
		if op == opADDI {
			insn.Mnemonic = "addi"
		} else {
			insn.Mnemonic = "addiu"
		}
		insn.IsLoInstr = true
		return insn

	case opSLTI:
		insn.Mnemonic = "slti"
	case opSLTIU:
		insn.Mnemonic = "sltiu"
	case opANDI:
		insn.Mnemonic = "andi"
	case opORI:
		insn.Mnemonic = "ori"
		insn.IsLoInstr = true
		insn.LoZeroExtend = true
	case opXORI:
		insn.Mnemonic = "xori"
	case opLUI:
		insn.Mnemonic = "lui"
		insn.IsHiInstr = true

	case opCOP1:
		insn.Mnemonic = "cop1"
		if rs == 0x08 { // BC1T/BC1F
			insn.IsBranch = true
			insn.BranchOffset = uint32(int32(address) + 4 + signExtend16(imm)<<2)
		}

	case opLB:
		insn.Mnemonic, insn.Access, insn.AccessUnsigned = "lb", AccessByte, false
		insn.IsLoInstr = true
	case opLBU:
		insn.Mnemonic, insn.Access, insn.AccessUnsigned = "lbu", AccessByte, true
		insn.IsLoInstr = true
	case opLH:
		insn.Mnemonic, insn.Access, insn.AccessUnsigned = "lh", AccessShort, false
		insn.IsLoInstr = true
	case opLHU:
		insn.Mnemonic, insn.Access, insn.AccessUnsigned = "lhu", AccessShort, true
		insn.IsLoInstr = true
	case opLW, opLWL, opLWR:
		insn.Mnemonic, insn.Access = "lw", AccessWord
		insn.IsLoInstr = true
	case opSB:
		insn.Mnemonic, insn.Access = "sb", AccessByte
		insn.IsLoInstr = true
	case opSH:
		insn.Mnemonic, insn.Access = "sh", AccessShort
		insn.IsLoInstr = true
	case opSW, opSWL, opSWR:
		insn.Mnemonic, insn.Access = "sw", AccessWord
		insn.IsLoInstr = true
	case opLWC1:
		insn.Mnemonic, insn.Access = "lwc1", AccessFloat
		insn.IsLoInstr = true
	case opLDC1:
		insn.Mnemonic, insn.Access = "ldc1", AccessDoubleFloat
		insn.IsLoInstr = true
	case opSWC1:
		insn.Mnemonic, insn.Access = "swc1", AccessFloat
		insn.IsLoInstr = true
	case opSDC1:
		insn.Mnemonic, insn.Access = "sdc1", AccessDoubleFloat
		insn.IsLoInstr = true

	default:
		insn.Mnemonic = "unknown"
		insn.IsImplemented = false
	}

	_ = rd
	return insn
}
