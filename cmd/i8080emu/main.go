// Command i8080emu loads an 8080 ROM image and runs it against the core
// in pkg/engine, optionally recording a trace and injecting a periodic
// vblank interrupt to exercise the interrupt path without a real video
// device attached.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"i8080emu/pkg/bus"
	"i8080emu/pkg/engine"
	"i8080emu/pkg/inst"
	"i8080emu/pkg/trace"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "i8080emu",
		Short: "Intel 8080 instruction-set emulator core",
	}

	var tracePath string
	var maxInstructions int
	var vblankHz int

	runCmd := &cobra.Command{
		Use:   "run <rom-path>",
		Short: "Run an 8080 ROM image to completion, halt, or fault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runROM(args[0], tracePath, maxInstructions, vblankHz)
		},
	}
	runCmd.Flags().StringVar(&tracePath, "trace", "", "write a JSON execution trace to this path")
	runCmd.Flags().IntVar(&maxInstructions, "max-instructions", 0, "instruction budget (0 = unbounded until halt/fault)")
	runCmd.Flags().IntVar(&vblankHz, "vblank-hz", 0, "periodically inject RST 1 at this rate (0 = disabled)")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runROM(romPath, tracePath string, maxInstructions, vblankHz int) error {
	image, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	memBus := bus.NewMemoryBus()
	if err := memBus.LoadROM(image); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	eng := engine.New(memBus, bus.NullPorts{})
	recorder := trace.NewRecorder()

	var stopVblank chan struct{}
	if vblankHz > 0 {
		stopVblank = make(chan struct{})
		go driveVblank(eng, vblankHz, stopVblank)
		defer close(stopVblank)
	}

	executed := 0
	wasHalted := false
	for eng.State() != engine.Faulted {
		if maxInstructions > 0 && executed >= maxInstructions {
			break
		}
		if eng.State() == engine.Halted {
			if vblankHz == 0 {
				break // nothing left that can ever wake the core
			}
			if !wasHalted {
				log.Printf("i8080emu: halted at PC=0x%04X after %d instructions, waiting for vblank interrupt", eng.Registers.PC, executed)
				wasHalted = true
			}
			time.Sleep(time.Millisecond)
			eng.Step() // no-op unless an interrupt is pending
			continue
		}
		wasHalted = false

		pcBefore := eng.Registers.PC
		instr := inst.Fetch(memBus, pcBefore)
		if tracePath != "" {
			recorder.Append(trace.RecordOf(eng.Registers, instr.String()))
		}
		if _, err := eng.Step(); err != nil {
			log.Printf("i8080emu: faulted at PC=0x%04X: %v", pcBefore, err)
			break
		}
		executed++
	}

	log.Printf("i8080emu: executed %d instructions, final state=%s", executed, eng.State())

	if tracePath != "" {
		if err := recorder.WriteJSON(tracePath); err != nil {
			return fmt.Errorf("writing trace: %w", err)
		}
	}

	if eng.State() == engine.Faulted {
		return fmt.Errorf("core faulted: %w", eng.Err())
	}
	return nil
}

// driveVblank injects RST 1 at hz times per second until stop is closed,
// modeling the periodic vertical-blank interrupt a Space Invaders-era
// video device would otherwise raise. It runs on its own goroutine,
// posting to the engine's mutex-guarded pending-interrupt slot while the
// main goroutine keeps stepping.
func driveVblank(eng *engine.Engine, hz int, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			eng.Inject(0xCF) // RST 1
		case <-stop:
			return
		}
	}
}
