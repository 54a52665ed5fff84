// Package engine drives the fetch-decode-execute loop and the core's
// Running/Halted/Faulted state machine, layering explicit state tracking
// and interrupt injection on top of cpu.Execute.
package engine

import (
	"fmt"
	"sync"

	"i8080emu/pkg/cpu"
	"i8080emu/pkg/inst"
)

// State is the engine's coarse execution status.
type State uint8

const (
	// Running accepts Step calls normally.
	Running State = iota
	// Halted means the core executed HLT with interrupts disabled; only
	// an injected interrupt can bring it back to Running.
	Halted
	// Faulted means a Step returned an error; the engine executes no
	// further instructions.
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Engine wraps a register file, a memory bus, and a port bank into a
// steppable core. Registers, Bus, and Ports are exported so a caller can
// inspect state (for a trace recorder, say) without the engine needing to
// expose accessors for everything.
type Engine struct {
	Registers *cpu.RegisterFile
	Bus       cpu.Bus
	Ports     cpu.Ports

	state State
	err   error

	mu               sync.Mutex
	pendingInterrupt *uint8
}

// New returns an Engine in the Running state, its registers freshly reset.
func New(bus cpu.Bus, ports cpu.Ports) *Engine {
	return &Engine{
		Registers: cpu.NewRegisterFile(),
		Bus:       bus,
		Ports:     ports,
		state:     Running,
	}
}

// State reports the engine's current coarse status.
func (e *Engine) State() State { return e.state }

// Err returns the error that faulted the engine, or nil if it has not
// faulted.
func (e *Engine) Err() error { return e.err }

// Step fetches and executes exactly one instruction, consuming a pending
// interrupt opcode first if one was injected and interrupts are currently
// enabled. It returns the instruction that ran (for trace recording) and
// any execution error. A Step call while Faulted, or while Halted with no
// interrupt pending, is a no-op that returns the zero Instruction and nil
// error; callers check State() to decide whether to keep stepping.
func (e *Engine) Step() (inst.Instruction, error) {
	if e.state == Faulted {
		return inst.Instruction{}, nil
	}

	if e.state == Halted {
		opcodeByte, ok := e.takePendingInterrupt()
		if !ok {
			return inst.Instruction{}, nil
		}
		e.state = Running
		return e.executeInjected(opcodeByte)
	}

	if opcodeByte, ok := e.takeReadyInterrupt(); ok {
		return e.executeInjected(opcodeByte)
	}

	pc := e.Registers.PC
	instr := inst.Fetch(e.Bus, pc)
	if err := cpu.Execute(e.Registers, instr, e.Bus, e.Ports); err != nil {
		e.state = Faulted
		e.err = fmt.Errorf("step at PC=0x%04X: %w", pc, err)
		return instr, e.err
	}

	if instr.Op.Mnemonic == inst.HLT && !e.Registers.InterruptsEnabled {
		e.state = Halted
	}
	return instr, nil
}

// executeInjected decodes and runs a caller-supplied interrupt opcode
// (typically an RST) against the current PC without advancing past a
// fetched byte in memory: the opcode is the one true byte the interrupt
// acknowledge cycle places on the bus, so it never consumes instruction
// bytes from the ROM/RAM image. cpu.Execute always advances PC by the
// instruction's length before acting on it, so PC is backed up by that
// same length first; the advance inside Execute then lands back on the
// pre-interrupt PC, which is what RST pushes as the return address and
// what JMP/CALL-shaped injections would branch from.
func (e *Engine) executeInjected(opcodeByte byte) (inst.Instruction, error) {
	instr := inst.Instruction{Op: inst.Decode(opcodeByte)}
	e.Registers.PC -= uint16(instr.Len())
	if err := cpu.Execute(e.Registers, instr, e.Bus, e.Ports); err != nil {
		e.state = Faulted
		e.err = fmt.Errorf("injected interrupt 0x%02X: %w", opcodeByte, err)
		return instr, e.err
	}
	return instr, nil
}

// Run steps the engine until it leaves Running, or until budget
// instructions have executed (budget <= 0 means unbounded). It returns the
// number of instructions actually executed and the fault error, if any;
// instruction count, not wall time, is the engine's only execution metric.
func (e *Engine) Run(budget int) (int, error) {
	executed := 0
	for e.state == Running {
		if budget > 0 && executed >= budget {
			break
		}
		if _, err := e.Step(); err != nil {
			return executed, err
		}
		executed++
	}
	return executed, e.err
}

// Inject submits an interrupt opcode (typically an RST n) for the engine
// to execute on its next Step. A driver typically runs on its own goroutine,
// calling Inject while the engine's own goroutine alternates Step calls. It
// reports whether the interrupt was accepted; acceptance requires interrupts to be
// currently enabled (or the engine to be Halted, where HLT itself is what
// disabled further fetches) and no interrupt already pending.
func (e *Engine) Inject(opcodeByte byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingInterrupt != nil {
		return false
	}
	if e.state != Halted && !e.Registers.InterruptsEnabled {
		return false
	}
	b := opcodeByte
	e.pendingInterrupt = &b
	return true
}

// takeReadyInterrupt atomically consumes the pending interrupt and clears
// InterruptsEnabled under the same mutex Inject reads them through, so a
// vblank-driving goroutine calling Inject never observes a half-updated
// state.
func (e *Engine) takeReadyInterrupt() (byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingInterrupt == nil || !e.Registers.InterruptsEnabled {
		return 0, false
	}
	b := *e.pendingInterrupt
	e.pendingInterrupt = nil
	e.Registers.InterruptsEnabled = false
	return b, true
}

func (e *Engine) takePendingInterrupt() (byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pendingInterrupt == nil {
		return 0, false
	}
	b := *e.pendingInterrupt
	e.pendingInterrupt = nil
	return b, true
}
