package cpu

// Flag computation for the arithmetic and logical instruction families.
// Each helper mutates A (or, for compare and 16-bit add, only the flags)
// and repacks the flags byte in one shot: one small function per opcode
// family rather than inlining flag math into the dispatch switch.

// twosComplementSub computes a-b as a+(^b+1) over 9 bits, the same
// two's-complement route an addition-only ALU takes,
// and reports whether the subtraction borrowed (CY=1 on the 8080, the
// opposite polarity of the addition's carry-out).
func twosComplementSub(a, b uint8) (result uint8, borrow bool) {
	complement := ^b + 1
	sum := uint16(a) + uint16(complement)
	return uint8(sum), sum&0x100 == 0
}

func auxCarryAdd(a, b, carryIn uint8) bool {
	return (a&0x0F)+(b&0x0F)+carryIn > 0x0F
}

func auxCarrySub(a, b, borrowIn uint8) bool {
	return int(a&0x0F)-int(b&0x0F)-int(borrowIn) < 0
}

func (r *RegisterFile) addSetFlags(value uint8) {
	a := r.A
	sum := uint16(a) + uint16(value)
	result := uint8(sum)
	ac := auxCarryAdd(a, value, 0)
	r.A = result
	r.Flags = flagsResetValue | szpTable[result] | bsel(sum&0x100 != 0, FlagCY, 0) | bsel(ac, FlagAC, 0)
}

func (r *RegisterFile) adcSetFlags(value uint8) {
	carryIn := r.Flags & FlagCY
	a := r.A
	sum := uint16(a) + uint16(value) + uint16(carryIn)
	result := uint8(sum)
	ac := auxCarryAdd(a, value, carryIn)
	r.A = result
	r.Flags = flagsResetValue | szpTable[result] | bsel(sum&0x100 != 0, FlagCY, 0) | bsel(ac, FlagAC, 0)
}

func (r *RegisterFile) subSetFlags(value uint8) {
	a := r.A
	result, borrow := twosComplementSub(a, value)
	ac := auxCarrySub(a, value, 0)
	r.A = result
	r.Flags = flagsResetValue | szpTable[result] | bsel(borrow, FlagCY, 0) | bsel(ac, FlagAC, 0)
}

func (r *RegisterFile) sbbSetFlags(value uint8) {
	borrowIn := r.Flags & FlagCY
	a := r.A
	full := uint16(a) - uint16(value) - uint16(borrowIn)
	result := uint8(full)
	borrow := uint16(a) < uint16(value)+uint16(borrowIn)
	ac := auxCarrySub(a, value, borrowIn)
	r.A = result
	r.Flags = flagsResetValue | szpTable[result] | bsel(borrow, FlagCY, 0) | bsel(ac, FlagAC, 0)
}

func (r *RegisterFile) cmpSetFlags(value uint8) {
	a := r.A
	result, borrow := twosComplementSub(a, value)
	ac := auxCarrySub(a, value, 0)
	r.Flags = flagsResetValue | szpTable[result] | bsel(borrow, FlagCY, 0) | bsel(ac, FlagAC, 0)
}

func (r *RegisterFile) andSetFlags(value uint8) {
	a := r.A
	r.A = a & value
	// The 8080 sets AC on ANA/ANI from the OR of bit 3 of the operands,
	// not from a carry computation; CY is always cleared.
	ac := (a|value)&0x08 != 0
	r.Flags = flagsResetValue | szpTable[r.A] | bsel(ac, FlagAC, 0)
}

func (r *RegisterFile) xorSetFlags(value uint8) {
	r.A ^= value
	r.Flags = flagsResetValue | szpTable[r.A]
}

func (r *RegisterFile) orSetFlags(value uint8) {
	r.A |= value
	r.Flags = flagsResetValue | szpTable[r.A]
}

// incByte computes v+1 and updates S, Z, P, AC, leaving CY untouched, per
// the 8080's INR semantics.
func (r *RegisterFile) incByte(v uint8) uint8 {
	result := v + 1
	ac := v&0x0F == 0x0F
	r.Flags = (r.Flags & FlagCY) | flagsResetValue | szpTable[result] | bsel(ac, FlagAC, 0)
	return result
}

// decByte computes v-1 and updates S, Z, P, AC, leaving CY untouched, per
// the 8080's DCR semantics.
func (r *RegisterFile) decByte(v uint8) uint8 {
	result := v - 1
	ac := v&0x0F == 0
	r.Flags = (r.Flags & FlagCY) | flagsResetValue | szpTable[result] | bsel(ac, FlagAC, 0)
	return result
}

// dadSetFlags adds value into HL, affecting only CY (set on carry out of
// bit 15); S, Z, P, AC are left alone, per the 8080's DAD semantics.
func (r *RegisterFile) dadSetFlags(value uint16) {
	sum := uint32(r.HL()) + uint32(value)
	r.SetHL(uint16(sum))
	r.setFlag(FlagCY, sum&0x10000 != 0)
}

func (r *RegisterFile) rlc() {
	carry := r.A&0x80 != 0
	r.A = r.A<<1 | bsel(carry, 1, 0)
	r.setFlag(FlagCY, carry)
}

func (r *RegisterFile) rrc() {
	carry := r.A&0x01 != 0
	r.A = r.A>>1 | bsel(carry, 0x80, 0)
	r.setFlag(FlagCY, carry)
}

func (r *RegisterFile) ral() {
	oldCarry := r.GetFlag(FlagCY)
	newCarry := r.A&0x80 != 0
	r.A = r.A<<1 | bsel(oldCarry, 1, 0)
	r.setFlag(FlagCY, newCarry)
}

func (r *RegisterFile) rar() {
	oldCarry := r.GetFlag(FlagCY)
	newCarry := r.A&0x01 != 0
	r.A = r.A>>1 | bsel(oldCarry, 0x80, 0)
	r.setFlag(FlagCY, newCarry)
}

// daa applies the decimal-adjust correction described in the Intel 8080
// Programmer's Manual: the low nibble is corrected first, independently of
// the high nibble, and CY is sticky (once set by either step it stays set).
func (r *RegisterFile) daa() {
	a := r.A
	cy := r.GetFlag(FlagCY)
	ac := r.GetFlag(FlagAC)

	var corr uint8
	if ac || a&0x0F > 9 {
		corr |= 0x06
	}
	if cy || a > 0x99 || (a&0xF0 > 0x90 && a&0x0F > 9) {
		corr |= 0x60
		cy = true
	}

	result := a + corr
	newAC := (a&0x0F)+(corr&0x0F) > 0x0F
	r.A = result
	r.Flags = flagsResetValue | szpTable[result] | bsel(cy, FlagCY, 0) | bsel(newAC, FlagAC, 0)
}
