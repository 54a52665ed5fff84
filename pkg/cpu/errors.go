package cpu

import "errors"

// Sentinel errors returned by Execute. Callers should compare with
// errors.Is; Execute always wraps these with fmt.Errorf for context.
var (
	// ErrUnimplemented marks an opcode family recognized by the decoder
	// but not (yet) handled by Execute.
	ErrUnimplemented = errors.New("unimplemented opcode")

	// ErrUnsupportedRegister marks an operand register that this
	// mnemonic cannot legally carry (a decode-table/Execute mismatch).
	ErrUnsupportedRegister = errors.New("unsupported register for this instruction")

	// ErrInvalidInstructionData marks an instruction whose immediate
	// data is structurally absent for its mnemonic.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrRegisterNotByte marks an attempt to read or write a register
	// operand, such as SP, that has no single-byte view.
	ErrRegisterNotByte = errors.New("register is not byte-addressable")

	// ErrStackOverflow marks a PUSH, CALL, or RST whose stack pointer
	// decrement would move SP below the writable RAM region.
	ErrStackOverflow = errors.New("stack overflow")
)
