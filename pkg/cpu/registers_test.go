package cpu

import "testing"

func TestRegisterPairViews(t *testing.T) {
	r := NewRegisterFile()
	r.SetBC(0x1234)
	if r.B != 0x12 || r.C != 0x34 || r.BC() != 0x1234 {
		t.Fatalf("BC = %02X%02X (%04X), want 1234", r.B, r.C, r.BC())
	}
	r.SetDE(0xABCD)
	if r.D != 0xAB || r.E != 0xCD || r.DE() != 0xABCD {
		t.Fatalf("DE = %02X%02X (%04X), want ABCD", r.D, r.E, r.DE())
	}
	r.SetHL(0x5678)
	if r.H != 0x56 || r.L != 0x78 || r.HL() != 0x5678 {
		t.Fatalf("HL = %02X%02X (%04X), want 5678", r.H, r.L, r.HL())
	}
}

func TestPSWRoundTrip(t *testing.T) {
	r := NewRegisterFile()
	r.A = 0x1F
	r.Flags = 0x47
	psw := r.PSW()
	if psw != 0x1F47 {
		t.Fatalf("PSW = 0x%04X, want 0x1F47", psw)
	}

	r2 := NewRegisterFile()
	r2.SetPSW(psw)
	if r2.A != 0x1F || r2.Flags != 0x47 {
		t.Fatalf("after SetPSW: A=0x%02X Flags=0x%02X, want A=0x1F Flags=0x47", r2.A, r2.Flags)
	}
}

func TestSetPSWMasksReservedBits(t *testing.T) {
	r := NewRegisterFile()
	// Bit 1 clear and bits 3/5 set in the popped low byte must be
	// corrected back to the fixed layout.
	r.SetPSW(0x0028)
	if r.Flags != 0x02 {
		t.Fatalf("Flags = 0x%02X, want 0x02 (reserved bits normalized)", r.Flags)
	}
}

func TestNewRegisterFileResetFlags(t *testing.T) {
	r := NewRegisterFile()
	if r.Flags != 0x02 {
		t.Fatalf("reset Flags = 0x%02X, want 0x02", r.Flags)
	}
	if r.InterruptsEnabled {
		t.Fatalf("InterruptsEnabled true after reset, want false")
	}
}
