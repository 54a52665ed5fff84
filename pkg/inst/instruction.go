package inst

import "fmt"

// Instruction is a decoded operation plus whatever immediate data its
// opcode carries: none, one byte, or a little-endian 16-bit address/word.
type Instruction struct {
	Op    Opcode
	Imm8  uint8
	Imm16 uint16
}

// Len returns the total encoded size of the instruction in bytes.
func (i Instruction) Len() int {
	return i.Op.Len()
}

// ByteReader is the minimal surface Fetch needs from a memory bus.
type ByteReader interface {
	ReadByte(addr uint16) uint8
}

// Fetch reads the opcode byte at pc and any immediate bytes that follow,
// producing a complete Instruction. It never advances pc itself; the
// caller (the execution engine) owns PC arithmetic.
func Fetch(r ByteReader, pc uint16) Instruction {
	op := Decode(r.ReadByte(pc))
	switch op.Len() {
	case SizeBinary:
		return Instruction{Op: op, Imm8: r.ReadByte(pc + 1)}
	case SizeTrinary:
		lo := r.ReadByte(pc + 1)
		hi := r.ReadByte(pc + 2)
		return Instruction{Op: op, Imm16: uint16(hi)<<8 | uint16(lo)}
	default:
		return Instruction{Op: op}
	}
}

// String renders the instruction as assembly text, for trace output and
// diagnostics. Not used by execution itself.
func (i Instruction) String() string {
	op := i.Op
	mn := op.Mnemonic.String()
	switch op.Mnemonic {
	case MOV:
		return fmt.Sprintf("%s %s,%s", mn, op.Reg1, op.Reg2)
	case LXI:
		return fmt.Sprintf("%s %s,%04Xh", mn, op.Reg1, i.Imm16)
	case MVI:
		return fmt.Sprintf("%s %s,%02Xh", mn, op.Reg1, i.Imm8)
	case SHLD, LHLD, STA, LDA, JMP, CALL:
		return fmt.Sprintf("%s %04Xh", mn, i.Imm16)
	case JCOND:
		return fmt.Sprintf("J%s %04Xh", op.Cond, i.Imm16)
	case CCOND:
		return fmt.Sprintf("C%s %04Xh", op.Cond, i.Imm16)
	case RCOND:
		return fmt.Sprintf("R%s", op.Cond)
	case RST:
		return fmt.Sprintf("RST %d", op.RST)
	case ADI, ACI, SUI, SBI, ANI, XRI, ORI, CPI, OUT, IN:
		return fmt.Sprintf("%s %02Xh", mn, i.Imm8)
	case STAX, LDAX, INX, DCX, DAD, PUSH, POP, INR, DCR:
		return fmt.Sprintf("%s %s", mn, op.Reg1)
	case ADD, ADC, SUB, SBB, ANA, XRA, ORA, CMP:
		return fmt.Sprintf("%s %s", mn, op.Reg1)
	default:
		return mn
	}
}
