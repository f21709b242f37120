package cpu

import (
	"strings"
)

// Kind is the instruction class identified by the opcode matcher.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_JMP   = Kind(0)  // JMP
	KIND_EOR   = Kind(1)  // EOR
	KIND_OUT   = Kind(2)  // OUT
	KIND_LDI   = Kind(3)  // LDI
	KIND_CALL  = Kind(4)  // CALL
	KIND_PUSH  = Kind(5)  // PUSH
	KIND_RCALL = Kind(6)  // RCALL
	KIND_IN    = Kind(7)  // IN
	KIND_STD   = Kind(8)  // STD
	KIND_LDD   = Kind(9)  // LDD
	KIND_ADD   = Kind(10) // ADD
	KIND_ADC   = Kind(11) // ADC
	KIND_POP   = Kind(12) // POP
	KIND_RET   = Kind(13) // RET
	KIND_CLI   = Kind(14) // CLI
	KIND_RJMP  = Kind(15) // RJMP
)

// KIND_COUNT is the number of instruction kinds.
const KIND_COUNT = 16

// WORD_TERMINATOR is the word that ends a program image when it does not
// match any opcode.
const WORD_TERMINATOR = uint16(0x0000)

// pattern is a compiled opcode bit pattern.
type pattern struct {
	kind  Kind
	dword bool   // Two word instruction.
	text  string // MSB first; '0' and '1' are fixed, letters are fields.
	mask  uint16 // Fixed bits.
	value uint16 // Value of the fixed bits.
}

// newPattern compiles a 16 character bit pattern, spaces ignored.
func newPattern(kind Kind, dword bool, text string) (pat pattern) {
	pat = pattern{kind: kind, dword: dword, text: strings.ReplaceAll(text, " ", "")}
	if len(pat.text) != 16 {
		panic("pattern " + text + " is not 16 bits")
	}

	for n, c := range pat.text {
		bit := uint16(1) << (15 - n)
		switch c {
		case '0':
			pat.mask |= bit
		case '1':
			pat.mask |= bit
			pat.value |= bit
		}
	}

	return
}

// matches returns true if the word has all of the pattern's fixed bits.
func (pat pattern) matches(word uint16) bool {
	return word&pat.mask == pat.value
}

// patterns is the ordered opcode table. The first match wins, so fully fixed
// encodings come before any wildcard form that could share their bits.
var patterns = []pattern{
	newPattern(KIND_RET, false, "1001 0101 0000 1000"),
	newPattern(KIND_CLI, false, "1001 0100 1111 1000"),
	newPattern(KIND_JMP, true, "1001 010k kkkk 110k"),
	newPattern(KIND_CALL, true, "1001 010k kkkk 111k"),
	newPattern(KIND_PUSH, false, "1001 001r rrrr 1111"),
	newPattern(KIND_POP, false, "1001 000d dddd 1111"),
	newPattern(KIND_ADD, false, "0000 11rd dddd rrrr"),
	newPattern(KIND_ADC, false, "0001 11rd dddd rrrr"),
	newPattern(KIND_EOR, false, "0010 01rd dddd rrrr"),
	newPattern(KIND_LDI, false, "1110 KKKK dddd KKKK"),
	newPattern(KIND_IN, false, "1011 0AAd dddd AAAA"),
	newPattern(KIND_OUT, false, "1011 1AAr rrrr AAAA"),
	newPattern(KIND_STD, false, "10q0 qq1r rrrr 1qqq"),
	newPattern(KIND_LDD, false, "10q0 qq0d dddd 1qqq"),
	newPattern(KIND_RJMP, false, "1100 kkkk kkkk kkkk"),
	newPattern(KIND_RCALL, false, "1101 kkkk kkkk kkkk"),
}

// Pattern returns the bit pattern of an instruction kind, MSB first.
func (kind Kind) Pattern() string {
	for _, pat := range patterns {
		if pat.kind == kind {
			return pat.text
		}
	}
	return ""
}

// Dword returns true if the instruction kind occupies two words.
func (kind Kind) Dword() bool {
	for _, pat := range patterns {
		if pat.kind == kind {
			return pat.dword
		}
	}
	return false
}

// Descriptor is a matched opcode, before field extraction.
type Descriptor struct {
	Kind  Kind
	Dword bool     // Set if Words must hold two words.
	Words []uint16 // Raw opcode word(s).
}

// Match classifies the first word of an instruction.
func Match(word uint16) (desc Descriptor, ok bool) {
	for _, pat := range patterns {
		if pat.matches(word) {
			desc = Descriptor{
				Kind:  pat.kind,
				Dword: pat.dword,
				Words: []uint16{word},
			}
			ok = true
			return
		}
	}

	return
}
