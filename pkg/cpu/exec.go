package cpu

import (
	"fmt"

	"i8080emu/pkg/inst"
)

// Bus is the memory surface Execute needs: byte-addressable load and
// store across the full 16-bit address space. WriteByte reports an error
// for addresses the underlying bus rejects, such as ROM.
type Bus interface {
	ReadByte(addr uint16) uint8
	WriteByte(addr uint16, v uint8) error
}

// Ports is the I/O surface OUT and IN address. A core with no attached
// devices can pass a Ports that always reads zero and discards writes.
type Ports interface {
	In(port uint8) uint8
	Out(port uint8, v uint8)
}

// Execute decodes nothing itself; it carries out the single already-fetched
// instruction against regs, bus, and ports, advancing PC and leaving every
// other visible register in its post-instruction state. Per the 8080's own
// fetch discipline, PC is advanced to the following instruction before any
// branch, call, or return logic runs, so CALL and RST push the correct
// return address and JMP/Jcc simply overwrite the advanced PC.
func Execute(regs *RegisterFile, instr inst.Instruction, bus Bus, ports Ports) error {
	regs.PC += uint16(instr.Len())
	op := instr.Op

	switch op.Mnemonic {
	case inst.NOP:

	case inst.MOV:
		v, err := getByte(regs, bus, op.Reg2)
		if err != nil {
			return fmt.Errorf("MOV: %w", err)
		}
		if err := setByte(regs, bus, op.Reg1, v); err != nil {
			return fmt.Errorf("MOV: %w", err)
		}

	case inst.MVI:
		if err := setByte(regs, bus, op.Reg1, instr.Imm8); err != nil {
			return fmt.Errorf("MVI: %w", err)
		}

	case inst.LXI:
		setPair(regs, op.Reg1, instr.Imm16)

	case inst.LDAX:
		regs.A = bus.ReadByte(getPair(regs, op.Reg1))

	case inst.STAX:
		if err := bus.WriteByte(getPair(regs, op.Reg1), regs.A); err != nil {
			return fmt.Errorf("STAX: %w", err)
		}

	case inst.LDA:
		regs.A = bus.ReadByte(instr.Imm16)

	case inst.STA:
		if err := bus.WriteByte(instr.Imm16, regs.A); err != nil {
			return fmt.Errorf("STA: %w", err)
		}

	case inst.LHLD:
		regs.L = bus.ReadByte(instr.Imm16)
		regs.H = bus.ReadByte(instr.Imm16 + 1)

	case inst.SHLD:
		if err := bus.WriteByte(instr.Imm16, regs.L); err != nil {
			return fmt.Errorf("SHLD: %w", err)
		}
		if err := bus.WriteByte(instr.Imm16+1, regs.H); err != nil {
			return fmt.Errorf("SHLD: %w", err)
		}

	case inst.XCHG:
		regs.H, regs.D = regs.D, regs.H
		regs.L, regs.E = regs.E, regs.L

	case inst.XTHL:
		lo := bus.ReadByte(regs.SP)
		hi := bus.ReadByte(regs.SP + 1)
		if err := bus.WriteByte(regs.SP, regs.L); err != nil {
			return fmt.Errorf("XTHL: %w", err)
		}
		if err := bus.WriteByte(regs.SP+1, regs.H); err != nil {
			return fmt.Errorf("XTHL: %w", err)
		}
		regs.L, regs.H = lo, hi

	case inst.SPHL:
		regs.SP = regs.HL()

	case inst.PCHL:
		regs.PC = regs.HL()

	case inst.PUSH:
		v := pswOrPair(regs, op.Reg1)
		if err := push16(regs, bus, v); err != nil {
			return fmt.Errorf("PUSH: %w", err)
		}

	case inst.POP:
		v, err := pop16(regs, bus)
		if err != nil {
			return fmt.Errorf("POP: %w", err)
		}
		if op.Reg1 == inst.RegPSW {
			regs.SetPSW(v)
		} else {
			setPair(regs, op.Reg1, v)
		}

	case inst.ADD:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("ADD: %w", err)
		}
		regs.addSetFlags(v)

	case inst.ADI:
		regs.addSetFlags(instr.Imm8)

	case inst.ADC:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("ADC: %w", err)
		}
		regs.adcSetFlags(v)

	case inst.ACI:
		regs.adcSetFlags(instr.Imm8)

	case inst.SUB:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("SUB: %w", err)
		}
		regs.subSetFlags(v)

	case inst.SUI:
		regs.subSetFlags(instr.Imm8)

	case inst.SBB:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("SBB: %w", err)
		}
		regs.sbbSetFlags(v)

	case inst.SBI:
		regs.sbbSetFlags(instr.Imm8)

	case inst.ANA:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("ANA: %w", err)
		}
		regs.andSetFlags(v)

	case inst.ANI:
		regs.andSetFlags(instr.Imm8)

	case inst.XRA:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("XRA: %w", err)
		}
		regs.xorSetFlags(v)

	case inst.XRI:
		regs.xorSetFlags(instr.Imm8)

	case inst.ORA:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("ORA: %w", err)
		}
		regs.orSetFlags(v)

	case inst.ORI:
		regs.orSetFlags(instr.Imm8)

	case inst.CMP:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("CMP: %w", err)
		}
		regs.cmpSetFlags(v)

	case inst.CPI:
		regs.cmpSetFlags(instr.Imm8)

	case inst.INR:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("INR: %w", err)
		}
		if err := setByte(regs, bus, op.Reg1, regs.incByte(v)); err != nil {
			return fmt.Errorf("INR: %w", err)
		}

	case inst.DCR:
		v, err := getByte(regs, bus, op.Reg1)
		if err != nil {
			return fmt.Errorf("DCR: %w", err)
		}
		if err := setByte(regs, bus, op.Reg1, regs.decByte(v)); err != nil {
			return fmt.Errorf("DCR: %w", err)
		}

	case inst.INX:
		setPair(regs, op.Reg1, getPair(regs, op.Reg1)+1)

	case inst.DCX:
		setPair(regs, op.Reg1, getPair(regs, op.Reg1)-1)

	case inst.DAD:
		regs.dadSetFlags(getPair(regs, op.Reg1))

	case inst.RLC:
		regs.rlc()
	case inst.RRC:
		regs.rrc()
	case inst.RAL:
		regs.ral()
	case inst.RAR:
		regs.rar()
	case inst.DAA:
		regs.daa()
	case inst.CMA:
		regs.A = ^regs.A
	case inst.STC:
		regs.setFlag(FlagCY, true)
	case inst.CMC:
		regs.setFlag(FlagCY, !regs.GetFlag(FlagCY))

	case inst.JMP:
		regs.PC = instr.Imm16

	case inst.JCOND:
		if conditionTrue(regs, op.Cond) {
			regs.PC = instr.Imm16
		}

	case inst.CALL:
		if err := push16(regs, bus, regs.PC); err != nil {
			return fmt.Errorf("CALL: %w", err)
		}
		regs.PC = instr.Imm16

	case inst.CCOND:
		if conditionTrue(regs, op.Cond) {
			if err := push16(regs, bus, regs.PC); err != nil {
				return fmt.Errorf("CALL %s: %w", op.Cond, err)
			}
			regs.PC = instr.Imm16
		}

	case inst.RET:
		v, err := pop16(regs, bus)
		if err != nil {
			return fmt.Errorf("RET: %w", err)
		}
		regs.PC = v

	case inst.RCOND:
		if conditionTrue(regs, op.Cond) {
			v, err := pop16(regs, bus)
			if err != nil {
				return fmt.Errorf("RET %s: %w", op.Cond, err)
			}
			regs.PC = v
		}

	case inst.RST:
		if err := push16(regs, bus, regs.PC); err != nil {
			return fmt.Errorf("RST %d: %w", op.RST, err)
		}
		regs.PC = uint16(op.RST) * 8

	case inst.OUT:
		ports.Out(instr.Imm8, regs.A)

	case inst.IN:
		regs.A = ports.In(instr.Imm8)

	case inst.EI:
		regs.InterruptsEnabled = true

	case inst.DI:
		regs.InterruptsEnabled = false

	case inst.HLT:
		// The engine inspects the fetched mnemonic to drive the
		// Running/Halted transition; Execute itself has nothing left
		// to do once PC has advanced past the HLT byte.

	default:
		return fmt.Errorf("%w: %s", ErrUnimplemented, op.Mnemonic)
	}

	return nil
}

func conditionTrue(r *RegisterFile, c inst.Condition) bool {
	switch c {
	case inst.CondNZ:
		return !r.GetFlag(FlagZ)
	case inst.CondZ:
		return r.GetFlag(FlagZ)
	case inst.CondNC:
		return !r.GetFlag(FlagCY)
	case inst.CondC:
		return r.GetFlag(FlagCY)
	case inst.CondPO:
		return !r.GetFlag(FlagP)
	case inst.CondPE:
		return r.GetFlag(FlagP)
	case inst.CondP:
		return !r.GetFlag(FlagS)
	case inst.CondM:
		return r.GetFlag(FlagS)
	default:
		return false
	}
}

// getByte reads an 8-bit operand, routing RegM through the bus at HL.
func getByte(r *RegisterFile, bus Bus, reg inst.Register) (uint8, error) {
	switch reg {
	case inst.RegA:
		return r.A, nil
	case inst.RegB:
		return r.B, nil
	case inst.RegC:
		return r.C, nil
	case inst.RegD:
		return r.D, nil
	case inst.RegE:
		return r.E, nil
	case inst.RegH:
		return r.H, nil
	case inst.RegL:
		return r.L, nil
	case inst.RegM:
		return bus.ReadByte(r.HL()), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrRegisterNotByte, reg)
	}
}

// setByte writes an 8-bit operand, routing RegM through the bus at HL; a
// write to ROM surfaces whatever error the bus returns.
func setByte(r *RegisterFile, bus Bus, reg inst.Register, v uint8) error {
	switch reg {
	case inst.RegA:
		r.A = v
	case inst.RegB:
		r.B = v
	case inst.RegC:
		r.C = v
	case inst.RegD:
		r.D = v
	case inst.RegE:
		r.E = v
	case inst.RegH:
		r.H = v
	case inst.RegL:
		r.L = v
	case inst.RegM:
		return bus.WriteByte(r.HL(), v)
	default:
		return fmt.Errorf("%w: %s", ErrRegisterNotByte, reg)
	}
	return nil
}

func getPair(r *RegisterFile, reg inst.Register) uint16 {
	switch reg {
	case inst.RegB:
		return r.BC()
	case inst.RegD:
		return r.DE()
	case inst.RegH:
		return r.HL()
	case inst.RegSP:
		return r.SP
	default:
		return 0
	}
}

func setPair(r *RegisterFile, reg inst.Register, v uint16) {
	switch reg {
	case inst.RegB:
		r.SetBC(v)
	case inst.RegD:
		r.SetDE(v)
	case inst.RegH:
		r.SetHL(v)
	case inst.RegSP:
		r.SP = v
	}
}

func pswOrPair(r *RegisterFile, reg inst.Register) uint16 {
	if reg == inst.RegPSW {
		return r.PSW()
	}
	return getPair(r, reg)
}

// stackFloor is the lowest address a decrementing stack pointer may point
// into: the boundary between ROM and working RAM. Pushing past
// it is a StackOverflow.
const stackFloor = 0x2000

func push16(r *RegisterFile, bus Bus, v uint16) error {
	if r.SP < stackFloor+2 {
		return ErrStackOverflow
	}
	if err := bus.WriteByte(r.SP-1, uint8(v>>8)); err != nil {
		return err
	}
	if err := bus.WriteByte(r.SP-2, uint8(v)); err != nil {
		return err
	}
	r.SP -= 2
	return nil
}

func pop16(r *RegisterFile, bus Bus) (uint16, error) {
	lo := bus.ReadByte(r.SP)
	hi := bus.ReadByte(r.SP + 1)
	r.SP += 2
	return uint16(hi)<<8 | uint16(lo), nil
}
