package cpu

import (
	"errors"
	"io"
)

// Decode reads and decodes the next instruction from a word source.
//
// ErrEndOfStream is returned when the source is exhausted, either before the
// first word or while fetching the second word of a two word instruction,
// and when the first word is the WORD_TERMINATOR. Any other unmatched word is
// an ErrDecode.
func Decode(src WordSource) (inst Instruction, err error) {
	offset := src.Offset()

	word, err := src.NextWord()
	if errors.Is(err, io.EOF) {
		err = ErrEndOfStream
		return
	}
	if err != nil {
		return
	}

	desc, ok := Match(word)
	if !ok {
		if word == WORD_TERMINATOR {
			err = ErrEndOfStream
			return
		}
		err = ErrDecode{Word: word, Offset: offset}
		return
	}

	if desc.Dword {
		var next uint16
		next, err = src.NextWord()
		if errors.Is(err, io.EOF) {
			err = ErrEndOfStream
			return
		}
		if err != nil {
			return
		}
		desc.Words = append(desc.Words, next)
	}

	inst, err = desc.Decode()
	if err != nil {
		err = errors.Join(ErrDecode{Word: word, Offset: offset}, err)
		return
	}

	return
}

// Decode extracts the operand fields of a matched descriptor.
func (desc Descriptor) Decode() (inst Instruction, err error) {
	need := 1
	if desc.Dword {
		need = 2
	}
	if len(desc.Words) != need {
		err = ErrDescriptorWords
		return
	}

	word := desc.Words[0]

	switch desc.Kind {
	case KIND_JMP:
		inst = Jmp{Address: decodeAbsolute(desc.Words)}
	case KIND_CALL:
		inst = Call{Address: decodeAbsolute(desc.Words)}
	case KIND_EOR:
		rd, rr := decodeRegisterPair(word)
		inst = Eor{Rd: rd, Rr: rr}
	case KIND_ADD:
		rd, rr := decodeRegisterPair(word)
		inst = Add{Rd: rd, Rr: rr}
	case KIND_ADC:
		rd, rr := decodeRegisterPair(word)
		inst = Adc{Rd: rd, Rr: rr}
	case KIND_LDI:
		rd, k := decodeImmediate(word)
		inst = Ldi{Rd: rd, K: k}
	case KIND_IN:
		rd, a := decodeIo(word)
		inst = In{Rd: rd, A: a}
	case KIND_OUT:
		rr, a := decodeIo(word)
		inst = Out{A: a, Rr: rr}
	case KIND_PUSH:
		inst = Push{Rr: decodeRegister(word)}
	case KIND_POP:
		inst = Pop{Rd: decodeRegister(word)}
	case KIND_RJMP:
		inst = Rjmp{K: decodeRelative(word)}
	case KIND_RCALL:
		inst = Rcall{K: decodeRelative(word)}
	case KIND_STD:
		r, q := decodeDisplaced(word)
		inst, err = NewStdY(q, r)
	case KIND_LDD:
		r, q := decodeDisplaced(word)
		inst, err = NewLddY(r, q)
	case KIND_RET:
		inst = Ret{}
	case KIND_CLI:
		inst = Cli{}
	default:
		err = ErrKindInvalid
	}

	if err != nil {
		inst = nil
	}

	return
}

// decodeRegister extracts Rd/Rr from bits [8:4].
func decodeRegister(word uint16) uint8 {
	return uint8((word >> 4) & 0x1f)
}

// decodeRegisterPair extracts Rd from bits [8:4], and Rr from bits [3:0]
// with bit 9 as its high bit.
func decodeRegisterPair(word uint16) (rd, rr uint8) {
	rd = decodeRegister(word)
	rr = uint8(word&0xf) | uint8((word>>9)&0x1)<<4
	return
}

// decodeImmediate extracts Rd from 16 + bits [7:4], and K from bits [3:0]
// with bits [11:8] as its high nibble.
func decodeImmediate(word uint16) (rd, k uint8) {
	rd = 16 + uint8((word>>4)&0xf)
	k = uint8(word&0xf) | uint8((word>>8)&0xf)<<4
	return
}

// decodeIo extracts Rd/Rr from bits [8:4], and A from bits [3:0] with
// bits [10:9] as its high bits.
func decodeIo(word uint16) (r, a uint8) {
	r = decodeRegister(word)
	a = uint8(word&0xf) | uint8((word>>9)&0x3)<<4
	return
}

// decodeAbsolute assembles the 22 bit word address of JMP/CALL, from
// bits [8:4] and bit 0 of the first word above the 16 bits of the second
// word, and converts it to a byte address.
func decodeAbsolute(words []uint16) uint32 {
	hi := uint32((words[0]>>4)&0x1f)<<1 | uint32(words[0]&0x1)
	k := hi<<16 | uint32(words[1])
	return k << 1
}

// decodeRelative sign extends the 12 bit word displacement in bits [11:0]
// and converts it to bytes.
func decodeRelative(word uint16) int16 {
	k := int16(word<<4) >> 4
	return k * 2
}

// decodeDisplaced extracts the register from bits [8:4], and q from
// bits [2:0], [11:10] and [13].
func decodeDisplaced(word uint16) (r, q uint8) {
	r = decodeRegister(word)
	q = uint8(word&0x7) | uint8((word>>10)&0x3)<<3 | uint8((word>>13)&0x1)<<5
	return
}
