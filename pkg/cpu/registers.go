package cpu

// RegisterFile holds the complete visible state of an 8080 core: the seven
// byte registers, the stack and program counters, the packed condition
// flags, and the interrupt-enable latch. Register pairs (BC, DE, HL) are
// views over the byte registers rather than separate storage.
type RegisterFile struct {
	A, B, C, D, E, H, L uint8
	SP, PC              uint16
	Flags               uint8

	InterruptsEnabled bool
}

// NewRegisterFile returns a RegisterFile in its post-reset state: all
// registers zero, PC at the reset vector, and the flags byte carrying only
// its permanently-set bit (bit 1), matching the packing in flags.go.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{Flags: flagsResetValue}
}

// BC returns the 16-bit view of the B/C pair, B in the high byte.
func (r *RegisterFile) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }

// SetBC stores a 16-bit value into the B/C pair, high byte into B.
func (r *RegisterFile) SetBC(v uint16) {
	r.B = uint8(v >> 8)
	r.C = uint8(v)
}

// DE returns the 16-bit view of the D/E pair, D in the high byte.
func (r *RegisterFile) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }

// SetDE stores a 16-bit value into the D/E pair, high byte into D.
func (r *RegisterFile) SetDE(v uint16) {
	r.D = uint8(v >> 8)
	r.E = uint8(v)
}

// HL returns the 16-bit view of the H/L pair, H in the high byte. This is
// also the address M dereferences.
func (r *RegisterFile) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// SetHL stores a 16-bit value into the H/L pair, high byte into H.
func (r *RegisterFile) SetHL(v uint16) {
	r.H = uint8(v >> 8)
	r.L = uint8(v)
}

// PSW returns the program status word: A in the high byte, the packed
// flags byte in the low byte. This is the value PUSH PSW writes to the
// stack and POP PSW reads back.
func (r *RegisterFile) PSW() uint16 { return uint16(r.A)<<8 | uint16(r.Flags) }

// SetPSW loads A and the flags byte from a program status word, masking
// the flags byte's two reserved bits back to their fixed values (bit 1
// always set, bits 3 and 5 always clear) regardless of what was popped.
func (r *RegisterFile) SetPSW(v uint16) {
	r.A = uint8(v >> 8)
	r.Flags = (uint8(v) &^ (flagReserved3 | flagReserved5)) | flagReserved1
}
