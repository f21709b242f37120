package cpu

import (
	"errors"

	"github.com/ezrec/avrsim/translate"
)

var f = translate.From

var (
	// Decode errors
	ErrEndOfStream     = errors.New(f("end of stream"))
	ErrKindInvalid     = errors.New(f("instruction kind invalid"))
	ErrDescriptorWords = errors.New(f("descriptor word count"))
	ErrAddressAlign    = errors.New(f("address not word aligned"))

	// Cpu errors
	ErrUnimplemented   = errors.New(f("execution not implemented"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrIoInvalid       = errors.New(f("io address invalid"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("operand missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrPointerInvalid     = errors.New(f("pointer operand invalid"))
)

// ErrDecode is a program word that could not be decoded.
type ErrDecode struct {
	Word   uint16
	Offset int
}

func (err ErrDecode) Error() string {
	return f("bad opcode 0x%04x at word 0x%x", err.Word, err.Offset)
}

// ErrFieldRange is an operand field outside of its architectural range.
type ErrFieldRange struct {
	Kind     Kind
	Field    string
	Value    int
	Min, Max int
}

func (err ErrFieldRange) Error() string {
	return f("%v field %v value %d outside %d..%d", err.Kind, err.Field, err.Value, err.Min, err.Max)
}

// ErrPcUnmapped is a program counter with no instruction in flash.
type ErrPcUnmapped struct {
	Pc uint32
}

func (err ErrPcUnmapped) Error() string {
	return f("pc 0x%04x unmapped", err.Pc)
}

// ErrDataAddress is a data memory access outside of SRAM.
type ErrDataAddress struct {
	Address uint16
}

func (err ErrDataAddress) Error() string {
	return f("data address 0x%04x outside sram", err.Address)
}

// ErrInstruction locates an execution failure.
type ErrInstruction struct {
	Pc   uint32
	Inst Instruction
}

func (err ErrInstruction) Error() string {
	return f("0x%04x: %v", err.Pc, err.Inst)
}

func (err ErrInstruction) Is(target error) (ok bool) {
	_, ok = target.(ErrInstruction)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
