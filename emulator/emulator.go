// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/avrsim/cpu"
	"github.com/ezrec/avrsim/internal"
	avrio "github.com/ezrec/avrsim/io"
)

const (
	FLASH_SIZE = 32768 // ATmega328P program memory, in bytes.
)

var _emulator_defines = map[string]string{
	"FLASH_SIZE": fmt.Sprintf("%v", FLASH_SIZE),
	"FLASHEND":   fmt.Sprintf("0x%04x", FLASH_SIZE-1),
}

// Emulator state. CPU + decoded program.
type Emulator struct {
	Verbose  bool               // If set, enables verbose logging.
	*cpu.Cpu                    // Reference to the CPU simulation.
	Program  *cpu.Program       // Assembled program, if any, for line numbers.
	Listing  *cpu.Listing       // Decoded program.
	Log      logrus.FieldLogger // Destination of logs.

	Entry       uint32          // Program byte address at reset.
	Breakpoints map[uint32]bool // Program byte addresses to stop at.
	MaxTicks    int             // If non-zero, stop after this many instructions.

	halted bool // Stopped at the breakpoint at Pc.
}

// NewEmulator creates a new emulator with a specifically sized SRAM.
func NewEmulator(sramSize int) (emu *Emulator) {
	emu = &Emulator{
		Cpu:         cpu.NewCpu(sramSize),
		Program:     &cpu.Program{},
		Listing:     &cpu.Listing{},
		Log:         logrus.StandardLogger(),
		Breakpoints: map[uint32]bool{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble assembles a source program, and loads it.
func (emu *Emulator) Assemble(input io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose, Log: emu.Log}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(input)
	if err != nil {
		return
	}

	err = emu.Load(prog.Rom())
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// LoadHex loads an Intel HEX program image.
func (emu *Emulator) LoadHex(input io.Reader) (err error) {
	image, err := avrio.ReadHex(input)
	if err != nil {
		return
	}

	rom, err := image.Rom()
	if err != nil {
		return
	}

	err = emu.Load(rom)
	if err != nil {
		return
	}

	if image.HasStart {
		emu.Entry = image.Start
		emu.Reset()
	}

	return
}

// Load decodes a program from a word source, and resets the emulator.
func (emu *Emulator) Load(src cpu.WordSource) (err error) {
	listing, err := cpu.Disassemble(src)
	if err != nil {
		return
	}

	emu.Listing = listing
	emu.Program = &cpu.Program{}
	emu.Entry = listing.Base()

	emu.Reset()
	return
}

// Image returns the loaded program as an Intel HEX image.
func (emu *Emulator) Image() (image *avrio.Image, err error) {
	var words []uint16
	for _, inst := range emu.Listing.Instructions {
		var codes []uint16
		codes, err = cpu.Encode(inst)
		if err != nil {
			return
		}
		words = append(words, codes...)
	}

	base := 0
	if len(emu.Listing.Offsets) > 0 {
		base = emu.Listing.Offsets[0]
	}

	image = avrio.ImageOf(base, words)
	return
}

// Reset the CPU state, and reload program memory.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Log = emu.Log

	emu.Cpu.Reset()
	emu.Cpu.Flash = emu.Listing.Flash()
	emu.Cpu.Pc = emu.Entry
	emu.halted = false
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Instruction returns the instruction at the current Pc, or nil.
func (emu *Emulator) Instruction() cpu.Instruction {
	return emu.Cpu.Flash[emu.Cpu.Pc]
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(int(emu.Cpu.Pc >> 1))
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
// done is set when execution cannot continue; err then holds the reason.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Log = emu.Log

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			done = true
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if len(emu.Cpu.Flash) == 0 {
		err = ErrNoProgram
		return
	}

	if emu.MaxTicks > 0 && emu.Cpu.Ticks >= emu.MaxTicks {
		err = ErrTickLimit
		return
	}

	if emu.Breakpoints[pc] && !emu.halted {
		emu.halted = true
		err = ErrBreakpoint
		return
	}
	emu.halted = false

	err = emu.Cpu.Tick()
	return
}

// Run ticks the emulator until it stops.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if done {
			return
		}
	}
}
