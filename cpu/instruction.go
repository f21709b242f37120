package cpu

import (
	"fmt"
)

// Instruction is a decoded AVR instruction.
//
// The set of implementations is closed: Jmp, Eor, Out, Ldi, Call, Push,
// Rcall, In, StdY, LddY, Add, Adc, Pop, Ret, Cli and Rjmp. Every operation
// over instructions (Execute, Encode) switches over all of them.
type Instruction interface {
	// Kind returns the instruction class.
	Kind() Kind
	// String returns the mnemonic and operands.
	String() string

	instruction()
}

// Width returns the number of program words an instruction occupies.
func Width(inst Instruction) int {
	if inst.Kind().Dword() {
		return 2
	}
	return 1
}

// Jmp jumps to an absolute program byte address.
type Jmp struct {
	Address uint32
}

// Eor is Rd <- Rd ^ Rr.
type Eor struct {
	Rd, Rr uint8
}

// Out is I/O[A] <- Rr.
type Out struct {
	A, Rr uint8
}

// Ldi is Rd <- K, for Rd in R16-R31.
type Ldi struct {
	Rd, K uint8
}

// Call pushes the return address and jumps to an absolute program byte address.
type Call struct {
	Address uint32
}

// Push is STACK <- Rr.
type Push struct {
	Rr uint8
}

// Rcall is a relative call; K is the displacement in bytes.
type Rcall struct {
	K int16
}

// In is Rd <- I/O[A].
type In struct {
	Rd, A uint8
}

// StdY is (Y+Q) <- Rr.
type StdY struct {
	Q, Rr uint8
}

// LddY is Rd <- (Y+Q).
type LddY struct {
	Rd, Q uint8
}

// Add is Rd <- Rd + Rr.
type Add struct {
	Rd, Rr uint8
}

// Adc is Rd <- Rd + Rr + C.
type Adc struct {
	Rd, Rr uint8
}

// Pop is Rd <- STACK.
type Pop struct {
	Rd uint8
}

// Ret returns from a subroutine.
type Ret struct{}

// Cli clears the global interrupt flag.
type Cli struct{}

// Rjmp is a relative jump; K is the displacement in bytes.
type Rjmp struct {
	K int16
}

func (Jmp) Kind() Kind   { return KIND_JMP }
func (Eor) Kind() Kind   { return KIND_EOR }
func (Out) Kind() Kind   { return KIND_OUT }
func (Ldi) Kind() Kind   { return KIND_LDI }
func (Call) Kind() Kind  { return KIND_CALL }
func (Push) Kind() Kind  { return KIND_PUSH }
func (Rcall) Kind() Kind { return KIND_RCALL }
func (In) Kind() Kind    { return KIND_IN }
func (StdY) Kind() Kind  { return KIND_STD }
func (LddY) Kind() Kind  { return KIND_LDD }
func (Add) Kind() Kind   { return KIND_ADD }
func (Adc) Kind() Kind   { return KIND_ADC }
func (Pop) Kind() Kind   { return KIND_POP }
func (Ret) Kind() Kind   { return KIND_RET }
func (Cli) Kind() Kind   { return KIND_CLI }
func (Rjmp) Kind() Kind  { return KIND_RJMP }

func (Jmp) instruction()   {}
func (Eor) instruction()   {}
func (Out) instruction()   {}
func (Ldi) instruction()   {}
func (Call) instruction()  {}
func (Push) instruction()  {}
func (Rcall) instruction() {}
func (In) instruction()    {}
func (StdY) instruction()  {}
func (LddY) instruction()  {}
func (Add) instruction()   {}
func (Adc) instruction()   {}
func (Pop) instruction()   {}
func (Ret) instruction()   {}
func (Cli) instruction()   {}
func (Rjmp) instruction()  {}

func (in Jmp) String() string   { return fmt.Sprintf("%v\t0x%04x", in.Kind(), in.Address) }
func (in Eor) String() string   { return fmt.Sprintf("%v\tR%d, R%d", in.Kind(), in.Rd, in.Rr) }
func (in Out) String() string   { return fmt.Sprintf("%v\t0x%02x, R%d", in.Kind(), in.A, in.Rr) }
func (in Ldi) String() string   { return fmt.Sprintf("%v\tR%d, 0x%02x", in.Kind(), in.Rd, in.K) }
func (in Call) String() string  { return fmt.Sprintf("%v\t0x%04x", in.Kind(), in.Address) }
func (in Push) String() string  { return fmt.Sprintf("%v\tR%d", in.Kind(), in.Rr) }
func (in Rcall) String() string { return fmt.Sprintf("%v\t.%+d", in.Kind(), in.K) }
func (in In) String() string    { return fmt.Sprintf("%v\tR%d, 0x%02x", in.Kind(), in.Rd, in.A) }
func (in StdY) String() string  { return fmt.Sprintf("%v\tY+%d, R%d", in.Kind(), in.Q, in.Rr) }
func (in LddY) String() string  { return fmt.Sprintf("%v\tR%d, Y+%d", in.Kind(), in.Rd, in.Q) }
func (in Add) String() string   { return fmt.Sprintf("%v\tR%d, R%d", in.Kind(), in.Rd, in.Rr) }
func (in Adc) String() string   { return fmt.Sprintf("%v\tR%d, R%d", in.Kind(), in.Rd, in.Rr) }
func (in Pop) String() string   { return fmt.Sprintf("%v\tR%d", in.Kind(), in.Rd) }
func (in Ret) String() string   { return in.Kind().String() }
func (in Cli) String() string   { return in.Kind().String() }
func (in Rjmp) String() string  { return fmt.Sprintf("%v\t.%+d", in.Kind(), in.K) }

// NewStdY validates the fields of an STD Y+q instruction.
func NewStdY(q, rr uint8) (in StdY, err error) {
	err = checkFields(KIND_STD, displacement(q), register("r", rr))
	if err != nil {
		return
	}
	in = StdY{Q: q, Rr: rr}
	return
}

// NewLddY validates the fields of an LDD Rd, Y+q instruction.
func NewLddY(rd, q uint8) (in LddY, err error) {
	err = checkFields(KIND_LDD, register("d", rd), displacement(q))
	if err != nil {
		return
	}
	in = LddY{Rd: rd, Q: q}
	return
}

// field is a named operand value with its legal range.
type field struct {
	name     string
	value    int
	min, max int
}

// checkFields returns an ErrFieldRange for the first field out of range.
func checkFields(kind Kind, fields ...field) (err error) {
	for _, fd := range fields {
		if fd.value < fd.min || fd.value > fd.max {
			err = ErrFieldRange{Kind: kind, Field: fd.name, Value: fd.value, Min: fd.min, Max: fd.max}
			return
		}
	}
	return
}
