package cpu

// Base opcodes, with all field bits clear.
const (
	opJMP   = uint16(0x940c)
	opCALL  = uint16(0x940e)
	opEOR   = uint16(0x2400)
	opADD   = uint16(0x0c00)
	opADC   = uint16(0x1c00)
	opLDI   = uint16(0xe000)
	opIN    = uint16(0xb000)
	opOUT   = uint16(0xb800)
	opPUSH  = uint16(0x920f)
	opPOP   = uint16(0x900f)
	opRJMP  = uint16(0xc000)
	opRCALL = uint16(0xd000)
	opSTDY  = uint16(0x8208)
	opLDDY  = uint16(0x8008)
	opRET   = uint16(0x9508)
	opCLI   = uint16(0x94f8)
)

// Legal ranges of encoded fields.
const (
	REGISTER_MAX     = 31
	IO_ADDRESS_MAX   = 63
	DISPLACEMENT_MAX = 63
	ADDRESS_MAX      = 0x7ffffe // 22 bit word address, in bytes.
	RELATIVE_MIN     = -4096    // 12 bit word displacement, in bytes.
	RELATIVE_MAX     = 4094
)

func register(name string, value uint8) field {
	return field{name, int(value), 0, REGISTER_MAX}
}

func displacement(value uint8) field {
	return field{"q", int(value), 0, DISPLACEMENT_MAX}
}

// Encode returns the program words of an instruction.
// It is the inverse of Decode, and fails with ErrFieldRange if an operand
// cannot be represented.
func Encode(inst Instruction) (words []uint16, err error) {
	switch in := inst.(type) {
	case Jmp:
		words, err = encodeAbsolute(KIND_JMP, opJMP, in.Address)
	case Call:
		words, err = encodeAbsolute(KIND_CALL, opCALL, in.Address)
	case Eor:
		words, err = encodeRegisterPair(KIND_EOR, opEOR, in.Rd, in.Rr)
	case Add:
		words, err = encodeRegisterPair(KIND_ADD, opADD, in.Rd, in.Rr)
	case Adc:
		words, err = encodeRegisterPair(KIND_ADC, opADC, in.Rd, in.Rr)
	case Ldi:
		err = checkFields(KIND_LDI, field{"d", int(in.Rd), 16, REGISTER_MAX})
		if err != nil {
			return
		}
		words = []uint16{opLDI | uint16(in.K&0xf0)<<4 | uint16(in.Rd-16)<<4 | uint16(in.K&0xf)}
	case In:
		words, err = encodeIo(KIND_IN, opIN, in.Rd, in.A)
	case Out:
		words, err = encodeIo(KIND_OUT, opOUT, in.Rr, in.A)
	case Push:
		err = checkFields(KIND_PUSH, register("r", in.Rr))
		if err != nil {
			return
		}
		words = []uint16{opPUSH | uint16(in.Rr)<<4}
	case Pop:
		err = checkFields(KIND_POP, register("d", in.Rd))
		if err != nil {
			return
		}
		words = []uint16{opPOP | uint16(in.Rd)<<4}
	case Rjmp:
		words, err = encodeRelative(KIND_RJMP, opRJMP, in.K)
	case Rcall:
		words, err = encodeRelative(KIND_RCALL, opRCALL, in.K)
	case StdY:
		_, err = NewStdY(in.Q, in.Rr)
		if err != nil {
			return
		}
		words = []uint16{encodeDisplaced(opSTDY, in.Rr, in.Q)}
	case LddY:
		_, err = NewLddY(in.Rd, in.Q)
		if err != nil {
			return
		}
		words = []uint16{encodeDisplaced(opLDDY, in.Rd, in.Q)}
	case Ret:
		words = []uint16{opRET}
	case Cli:
		words = []uint16{opCLI}
	default:
		err = ErrKindInvalid
	}

	return
}

func encodeRegisterPair(kind Kind, op uint16, rd, rr uint8) (words []uint16, err error) {
	err = checkFields(kind, register("d", rd), register("r", rr))
	if err != nil {
		return
	}

	words = []uint16{op | uint16(rr&0x10)<<5 | uint16(rd)<<4 | uint16(rr&0xf)}
	return
}

func encodeIo(kind Kind, op uint16, r, a uint8) (words []uint16, err error) {
	err = checkFields(kind, register("r", r), field{"A", int(a), 0, IO_ADDRESS_MAX})
	if err != nil {
		return
	}

	words = []uint16{op | uint16(a&0x30)<<5 | uint16(r)<<4 | uint16(a&0xf)}
	return
}

func encodeAbsolute(kind Kind, op uint16, address uint32) (words []uint16, err error) {
	if address%2 != 0 {
		err = ErrAddressAlign
		return
	}
	err = checkFields(kind, field{"k", int(address), 0, ADDRESS_MAX})
	if err != nil {
		return
	}

	k := address >> 1
	words = []uint16{
		op | uint16((k>>17)&0x1f)<<4 | uint16((k>>16)&0x1),
		uint16(k & 0xffff),
	}
	return
}

func encodeRelative(kind Kind, op uint16, disp int16) (words []uint16, err error) {
	if disp%2 != 0 {
		err = ErrAddressAlign
		return
	}
	err = checkFields(kind, field{"k", int(disp), RELATIVE_MIN, RELATIVE_MAX})
	if err != nil {
		return
	}

	words = []uint16{op | uint16(disp/2)&0xfff}
	return
}

func encodeDisplaced(op uint16, r, q uint8) uint16 {
	return op | uint16(q&0x20)<<8 | uint16(q&0x18)<<7 | uint16(r)<<4 | uint16(q&0x7)
}
