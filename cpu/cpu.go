package cpu

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/avrsim/io"
)

// WordSource is a stream of program words.
type WordSource io.WordSource

// Memory space sizes.
const (
	REGISTER_COUNT = 32
	IO_SIZE        = 64
	EXTIO_SIZE     = 160
	SRAM_SIZE      = 2048    // ATmega328P
	SRAM_MAX       = 0x10000 // Reach of the 16 bit stack pointer.
)

// I/O register addresses.
// The core does not mirror these into SP or Sreg; writes with OUT only
// change Io.
const (
	IO_SPL  = 0x3d
	IO_SPH  = 0x3e
	IO_SREG = 0x3f
)

var _cpu_defines = map[string]string{
	"IO_SIZE":    fmt.Sprintf("%v", IO_SIZE),
	"EXTIO_SIZE": fmt.Sprintf("%v", EXTIO_SIZE),
	"SPL":        fmt.Sprintf("0x%02x", IO_SPL),
	"SPH":        fmt.Sprintf("0x%02x", IO_SPH),
	"SREG":       fmt.Sprintf("0x%02x", IO_SREG),
}

// Flash maps program byte addresses to decoded instructions.
type Flash map[uint32]Instruction

// Cpu is the simulation context of an AVR core.
type Cpu struct {
	Verbose bool               // Set to enable the per-step trace.
	Log     logrus.FieldLogger // Destination of trace and error logs.

	Register [REGISTER_COUNT]uint8 // General purpose registers R0-R31.
	Sreg     Sreg                  // Status flags.
	SP       StackPointer          // Stack pointer.
	Pc       uint32                // Program counter, in bytes.

	Io    [IO_SIZE]uint8    // I/O space.
	ExtIo [EXTIO_SIZE]uint8 // Extended I/O space.
	Sram  []uint8           // Internal SRAM.

	Flash Flash // Program memory.

	Ticks int // Instructions executed.
}

// NewCpu creates a new CPU with a specifically sized SRAM.
// A size of zero or less selects SRAM_SIZE; sizes are capped at SRAM_MAX.
func NewCpu(sramSize int) (cpu *Cpu) {
	if sramSize <= 0 {
		sramSize = SRAM_SIZE
	}
	sramSize = min(sramSize, SRAM_MAX)

	cpu = &Cpu{
		Log:   logrus.StandardLogger(),
		Sram:  make([]uint8, sramSize),
		Flash: Flash{},
	}

	return
}

// RamEnd returns the highest SRAM address.
func (cpu *Cpu) RamEnd() uint16 {
	return uint16(len(cpu.Sram) - 1)
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	defines := maps.Clone(_cpu_defines)
	defines["RAMEND"] = fmt.Sprintf("0x%04x", cpu.RamEnd())
	defines["SRAM_SIZE"] = fmt.Sprintf("%v", len(cpu.Sram))
	return maps.All(defines)
}

// Reset the CPU state, leaving Flash in place.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		cpu.Log.Debug("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Io[:])
	clear(cpu.ExtIo[:])
	clear(cpu.Sram)
	cpu.Sreg = Sreg{}
	cpu.SP.Set(cpu.RamEnd())
	cpu.Pc = 0
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "   pc: %06x\n", cpu.Pc)
	fmt.Fprintf(&sb, "   sp: %04x\n", cpu.SP.Value())
	fmt.Fprintf(&sb, " sreg: %v\n", cpu.Sreg)
	for row := 0; row < REGISTER_COUNT; row += 8 {
		fmt.Fprintf(&sb, "% 5s:", fmt.Sprintf("r%d", row))
		for _, val := range cpu.Register[row : row+8] {
			fmt.Fprintf(&sb, " %02x", val)
		}
		sb.WriteString("\n")
	}

	text = sb.String()
	return
}

// Push8 stores a byte at SP, and decrements SP.
func (cpu *Cpu) Push8(value uint8) (err error) {
	addr := cpu.SP.Value()
	if int(addr) >= len(cpu.Sram) {
		err = ErrDataAddress{Address: addr}
		return
	}

	cpu.Sram[addr] = value
	cpu.SP.Dec()
	return
}

// Push16 pushes the low byte, then the high byte, of a word.
// Nothing is stored if either byte would fall outside of SRAM.
func (cpu *Cpu) Push16(value uint16) (err error) {
	for _, addr := range []uint16{cpu.SP.Value(), cpu.SP.Value() - 1} {
		if int(addr) >= len(cpu.Sram) {
			err = ErrDataAddress{Address: addr}
			return
		}
	}

	err = cpu.Push8(uint8(value))
	if err != nil {
		return
	}

	err = cpu.Push8(uint8(value >> 8))
	return
}

// Tick fetches and executes the instruction at Pc.
func (cpu *Cpu) Tick() (err error) {
	inst, ok := cpu.Flash[cpu.Pc]
	if !ok {
		err = ErrPcUnmapped{Pc: cpu.Pc}
		return
	}

	if cpu.Verbose {
		cpu.Log.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%04x", cpu.Pc),
			"sp":   fmt.Sprintf("0x%04x", cpu.SP.Value()),
			"sreg": cpu.Sreg.String(),
			"inst": inst.String(),
		}).Debug("cpu: step")
	}

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.Ticks++
	return
}

// Execute executes a single decoded instruction, advancing Pc.
// On failure, the CPU state is unchanged.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrInstruction{Pc: cpu.Pc, Inst: inst}, err)
		}
	}()

	if inst == nil {
		err = ErrKindInvalid
		return
	}

	next_pc := cpu.Pc + uint32(2*Width(inst))

	switch in := inst.(type) {
	case Jmp:
		next_pc = in.Address
	case Eor:
		err = checkRegisters(in.Rd, in.Rr)
		if err != nil {
			return
		}
		result := cpu.Register[in.Rd] ^ cpu.Register[in.Rr]
		cpu.Register[in.Rd] = result
		cpu.Sreg.V = false
		cpu.Sreg.N = result&0x80 != 0
		cpu.Sreg.Z = result == 0
		cpu.Sreg.S = cpu.Sreg.N != cpu.Sreg.V
	case Out:
		err = checkRegisters(in.Rr)
		if err != nil {
			return
		}
		if int(in.A) >= IO_SIZE {
			err = ErrIoInvalid
			return
		}
		cpu.Io[in.A] = cpu.Register[in.Rr]
	case Ldi:
		err = checkRegisters(in.Rd)
		if err != nil {
			return
		}
		cpu.Register[in.Rd] = in.K
	case Call:
		err = cpu.Push16(uint16(next_pc >> 1))
		if err != nil {
			return
		}
		next_pc = in.Address
	case Push, Rcall, In, StdY, LddY, Add, Adc, Pop, Ret, Cli, Rjmp:
		cpu.Log.WithField("pc", fmt.Sprintf("0x%04x", cpu.Pc)).Error(inst.String())
		err = ErrUnimplemented
		return
	default:
		err = ErrKindInvalid
		return
	}

	cpu.Pc = next_pc

	return
}

// checkRegisters verifies register indices of hand-built instructions.
func checkRegisters(regs ...uint8) (err error) {
	for _, reg := range regs {
		if int(reg) >= REGISTER_COUNT {
			err = ErrRegisterInvalid
			return
		}
	}
	return
}
