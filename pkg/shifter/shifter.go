// Package shifter implements the 8-bit shift register Space Invaders
// cabinets wire to their input ports, since pkg/bus's port bank is
// otherwise left to a collaborator to demonstrate. The hardware holds a
// 16-bit value built from two successive 8-bit writes and returns eight
// bits of it shifted by an amount set on a third port.
package shifter

// Register is a Ports-compatible I/O device: two write ports (shift
// amount, shift data) and one read port (the shifted result), matching
// the shape of pkg/bus.Ports and pkg/cpu.Ports so it can be handed to the
// engine directly. AmountPort, DataPort, and ReadPort default to the
// historical Space Invaders cabinet assignment (2, 4, 3) but can be
// repointed to whatever a given ROM expects.
type Register struct {
	AmountPort uint8
	DataPort   uint8
	ReadPort   uint8

	value  uint16
	amount uint8
}

// NewRegister returns a Register wired to the historical Space Invaders
// port assignment: write shift amount on port 2, write shift data on port
// 4, read the shifted result on port 3.
func NewRegister() *Register {
	return &Register{AmountPort: 2, DataPort: 4, ReadPort: 3}
}

// WriteAmount sets the shift amount (0-7); only its low 3 bits matter.
func (r *Register) WriteAmount(v uint8) {
	r.amount = v & 0x07
}

// WriteData shifts v into the high byte of the internal 16-bit value,
// moving the previous high byte down to the low byte. Each write
// effectively appends a new byte to a two-byte sliding window.
func (r *Register) WriteData(v uint8) {
	r.value = uint16(v)<<8 | r.value>>8
}

// Read returns the 8 bits of the internal value selected by the current
// shift amount: bits [15-amount : 8-amount].
func (r *Register) Read() uint8 {
	return uint8(r.value >> (8 - r.amount))
}

// In implements the Ports interface: reading ReadPort returns the shifted
// result, any other port returns 0.
func (r *Register) In(port uint8) uint8 {
	if port == r.ReadPort {
		return r.Read()
	}
	return 0
}

// Out implements the Ports interface: writing AmountPort sets the shift
// amount, writing DataPort feeds a new byte into the shift window, any
// other port is discarded.
func (r *Register) Out(port uint8, v uint8) {
	switch port {
	case r.AmountPort:
		r.WriteAmount(v)
	case r.DataPort:
		r.WriteData(v)
	}
}
