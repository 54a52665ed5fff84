package cpu

import (
	"errors"
	"testing"

	"i8080emu/pkg/inst"
)

// fakeBus is a flat, unmapped-region-free memory for exec tests: every
// address is writable RAM. Bus boundary behavior (ROM, unmapped regions) is
// covered in pkg/bus, not here.
type fakeBus [0x10000]uint8

func (b *fakeBus) ReadByte(addr uint16) uint8 { return b[addr] }
func (b *fakeBus) WriteByte(addr uint16, v uint8) error {
	b[addr] = v
	return nil
}

type fakePorts struct {
	in  map[uint8]uint8
	out map[uint8]uint8
}

func newFakePorts() *fakePorts {
	return &fakePorts{in: map[uint8]uint8{}, out: map[uint8]uint8{}}
}
func (p *fakePorts) In(port uint8) uint8 { return p.in[port] }
func (p *fakePorts) Out(port uint8, v uint8) {
	p.out[port] = v
}

func TestFlagsPackingProgression(t *testing.T) {
	r := NewRegisterFile()
	if r.Flags != 0x02 {
		t.Fatalf("reset flags = 0x%02X, want 0x02", r.Flags)
	}

	r.setFlag(FlagS, true)
	if r.Flags != 0x82 {
		t.Fatalf("after S: 0x%02X, want 0x82", r.Flags)
	}
	r.setFlag(FlagZ, true)
	if r.Flags != 0xC2 {
		t.Fatalf("after Z: 0x%02X, want 0xC2", r.Flags)
	}
	r.setFlag(FlagAC, true)
	if r.Flags != 0xD2 {
		t.Fatalf("after AC: 0x%02X, want 0xD2", r.Flags)
	}
	r.setFlag(FlagP, true)
	if r.Flags != 0xD6 {
		t.Fatalf("after P: 0x%02X, want 0xD6", r.Flags)
	}
	r.setFlag(FlagCY, true)
	if r.Flags != 0xD7 {
		t.Fatalf("after CY: 0x%02X, want 0xD7", r.Flags)
	}
}

func TestAddNoCarryThenCarry(t *testing.T) {
	r := NewRegisterFile()
	bus := &fakeBus{}
	ports := newFakePorts()
	r.A = 0x2E
	r.B = 0x6C

	if err := Execute(r, inst.Instruction{Op: inst.Decode(0x80)}, bus, ports); err != nil {
		t.Fatalf("ADD B: %v", err)
	}
	if r.A != 0x9A {
		t.Fatalf("A = 0x%02X, want 0x9A", r.A)
	}
	if r.GetFlag(FlagCY) {
		t.Fatalf("CY set after 0x2E+0x6C, want clear")
	}

	if err := Execute(r, inst.Instruction{Op: inst.Decode(0x87)}, bus, ports); err != nil {
		t.Fatalf("ADD A: %v", err)
	}
	if r.A != 0x34 {
		t.Fatalf("A = 0x%02X, want 0x34", r.A)
	}
	if !r.GetFlag(FlagCY) {
		t.Fatalf("CY clear after 0x9A+0x9A, want set")
	}
}

func TestCpiBorrowSemantics(t *testing.T) {
	tests := []struct {
		operand uint8
		wantCY  bool
	}{
		{0x6F, true},  // 0x5F < 0x6F: borrow
		{0x5F, false}, // equal: no borrow, zero result
		{0x4F, false}, // 0x5F > 0x4F: no borrow
	}
	for _, tt := range tests {
		r := NewRegisterFile()
		bus := &fakeBus{}
		ports := newFakePorts()
		r.A = 0x5F
		instr := inst.Instruction{Op: inst.Decode(0xFE), Imm8: tt.operand}
		if err := Execute(r, instr, bus, ports); err != nil {
			t.Fatalf("CPI 0x%02X: %v", tt.operand, err)
		}
		if r.GetFlag(FlagCY) != tt.wantCY {
			t.Errorf("CPI 0x%02X: CY = %v, want %v", tt.operand, r.GetFlag(FlagCY), tt.wantCY)
		}
		if r.A != 0x5F {
			t.Errorf("CPI 0x%02X mutated A to 0x%02X", tt.operand, r.A)
		}
	}
}

func TestLxiBlock(t *testing.T) {
	rom := []byte{0x01, 0xCC, 0xBB, 0x11, 0xEE, 0xDD, 0x21, 0x11, 0xFF, 0x31, 0xBB, 0xAA}
	bus := &fakeBus{}
	copy(bus[:], rom)
	ports := newFakePorts()
	r := NewRegisterFile()

	for r.PC < uint16(len(rom)) {
		instr := inst.Fetch(bus, r.PC)
		if err := Execute(r, instr, bus, ports); err != nil {
			t.Fatalf("at PC=0x%04X: %v", r.PC, err)
		}
	}

	if r.B != 0xBB || r.C != 0xCC {
		t.Errorf("BC = %02X%02X, want BBCC", r.B, r.C)
	}
	if r.D != 0xDD || r.E != 0xEE {
		t.Errorf("DE = %02X%02X, want DDEE", r.D, r.E)
	}
	if r.H != 0xFF || r.L != 0x11 {
		t.Errorf("HL = %02X%02X, want FF11", r.H, r.L)
	}
	if r.SP != 0xAABB {
		t.Errorf("SP = 0x%04X, want 0xAABB", r.SP)
	}
}

func TestPushPSW(t *testing.T) {
	bus := &fakeBus{}
	ports := newFakePorts()
	r := NewRegisterFile()
	r.SP = 0x2400
	r.A = 0x1F
	r.setFlag(FlagCY, true)
	r.setFlag(FlagZ, true)
	r.setFlag(FlagP, true)

	instr := inst.Instruction{Op: inst.Decode(0xF5)}
	if err := Execute(r, instr, bus, ports); err != nil {
		t.Fatalf("PUSH PSW: %v", err)
	}
	if bus[0x23FF] != 0x1F {
		t.Errorf("mem[0x23FF] = 0x%02X, want 0x1F", bus[0x23FF])
	}
	if bus[0x23FE] != 0x47 {
		t.Errorf("mem[0x23FE] = 0x%02X, want 0x47", bus[0x23FE])
	}
	if r.SP != 0x23FE {
		t.Errorf("SP = 0x%04X, want 0x23FE", r.SP)
	}
}

func TestCallReturnRoundTrip(t *testing.T) {
	rom := []byte{0xCD, 0x10, 0x00}
	bus := &fakeBus{}
	copy(bus[:], rom)
	bus[0x0010] = 0xC9 // RET
	ports := newFakePorts()
	r := NewRegisterFile()
	r.SP = 0x2400

	instr := inst.Fetch(bus, r.PC)
	if err := Execute(r, instr, bus, ports); err != nil {
		t.Fatalf("CALL: %v", err)
	}
	if r.PC != 0x0010 {
		t.Fatalf("PC after CALL = 0x%04X, want 0x0010", r.PC)
	}

	instr = inst.Fetch(bus, r.PC)
	if err := Execute(r, instr, bus, ports); err != nil {
		t.Fatalf("RET: %v", err)
	}
	if r.PC != 0x0003 {
		t.Fatalf("PC after RET = 0x%04X, want 0x0003", r.PC)
	}
	if r.SP != 0x2400 {
		t.Fatalf("SP after RET = 0x%04X, want 0x2400", r.SP)
	}
}

func TestPushStackOverflow(t *testing.T) {
	bus := &fakeBus{}
	ports := newFakePorts()
	r := NewRegisterFile()
	r.SP = 0x2000

	instr := inst.Instruction{Op: inst.Decode(0xC5)} // PUSH B
	err := Execute(r, instr, bus, ports)
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("err = %v, want ErrStackOverflow", err)
	}
}

func TestInrPreservesCarry(t *testing.T) {
	r := NewRegisterFile()
	bus := &fakeBus{}
	ports := newFakePorts()
	r.setFlag(FlagCY, true)
	r.A = 0xFF

	if err := Execute(r, inst.Instruction{Op: inst.Decode(0x3C)}, bus, ports); err != nil { // INR A
		t.Fatalf("INR A: %v", err)
	}
	if r.A != 0x00 {
		t.Fatalf("A = 0x%02X, want 0x00", r.A)
	}
	if !r.GetFlag(FlagZ) {
		t.Errorf("Z not set after wraparound increment")
	}
	if !r.GetFlag(FlagCY) {
		t.Errorf("CY cleared by INR, should be untouched")
	}
}

func TestConditionalJumpTakenAndNotTaken(t *testing.T) {
	bus := &fakeBus{}
	ports := newFakePorts()
	r := NewRegisterFile()
	r.setFlag(FlagZ, true)

	// JNZ should fall through to the next instruction when Z is set.
	instr := inst.Instruction{Op: inst.Decode(0xC2), Imm16: 0x1234} // JNZ
	if err := Execute(r, instr, bus, ports); err != nil {
		t.Fatalf("JNZ: %v", err)
	}
	if r.PC != 0x0003 {
		t.Fatalf("PC after untaken JNZ = 0x%04X, want 0x0003", r.PC)
	}

	r2 := NewRegisterFile()
	r2.setFlag(FlagZ, true)
	instr2 := inst.Instruction{Op: inst.Decode(0xCA), Imm16: 0x1234} // JZ
	if err := Execute(r2, instr2, bus, ports); err != nil {
		t.Fatalf("JZ: %v", err)
	}
	if r2.PC != 0x1234 {
		t.Fatalf("PC after taken JZ = 0x%04X, want 0x1234", r2.PC)
	}
}

func TestInOut(t *testing.T) {
	bus := &fakeBus{}
	ports := newFakePorts()
	ports.in[0x02] = 0x55
	r := NewRegisterFile()

	if err := Execute(r, inst.Instruction{Op: inst.Decode(0xDB), Imm8: 0x02}, bus, ports); err != nil {
		t.Fatalf("IN: %v", err)
	}
	if r.A != 0x55 {
		t.Fatalf("A = 0x%02X, want 0x55", r.A)
	}

	r.A = 0xAA
	if err := Execute(r, inst.Instruction{Op: inst.Decode(0xD3), Imm8: 0x04}, bus, ports); err != nil {
		t.Fatalf("OUT: %v", err)
	}
	if ports.out[0x04] != 0xAA {
		t.Fatalf("port 4 = 0x%02X, want 0xAA", ports.out[0x04])
	}
}
