// Package trace records the per-step register state the execution engine
// passes through, for diffing a run against a reference trace. Entries
// accumulate behind a mutex-guarded slice, the same way a growable result
// table would; it serializes to JSON rather than a binary checkpoint
// format because a trace is meant to be read and diffed, not resumed by
// the same process.
package trace

import (
	"encoding/json"
	"os"
	"sync"

	"i8080emu/pkg/cpu"
)

// Record is a single step's before-state: the instruction about to run and
// the registers it ran against. PCBefore plus Instruction lets a diff tool
// align two traces even after they diverge.
type Record struct {
	PCBefore    uint16 `json:"pc_before"`
	Instruction string `json:"instruction"`

	A     uint8  `json:"a"`
	B     uint8  `json:"b"`
	C     uint8  `json:"c"`
	D     uint8  `json:"d"`
	E     uint8  `json:"e"`
	H     uint8  `json:"h"`
	L     uint8  `json:"l"`
	SP    uint16 `json:"sp"`
	Flags uint8  `json:"flags"`
}

// RecordOf builds a Record capturing regs's current state, paired with the
// text of the instruction about to execute at regs.PC.
func RecordOf(regs *cpu.RegisterFile, instructionText string) Record {
	return Record{
		PCBefore:    regs.PC,
		Instruction: instructionText,
		A:           regs.A,
		B:           regs.B,
		C:           regs.C,
		D:           regs.D,
		E:           regs.E,
		H:           regs.H,
		L:           regs.L,
		SP:          regs.SP,
		Flags:       regs.Flags,
	}
}

// Recorder accumulates Records behind a mutex so the engine's goroutine and
// a concurrent inspector (or a vblank-driving goroutine also touching the
// engine) can both append/read safely.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append adds a Record to the trace.
func (r *Recorder) Append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of all recorded entries, in recording order.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// WriteJSON serializes the trace to path as an indented JSON array.
func (r *Recorder) WriteJSON(path string) error {
	records := r.Records()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
