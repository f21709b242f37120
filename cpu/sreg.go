package cpu

// SREG bit positions.
const (
	SREG_C = 0
	SREG_Z = 1
	SREG_N = 2
	SREG_V = 3
	SREG_S = 4
	SREG_H = 5
	SREG_T = 6
	SREG_I = 7
)

// Sreg is the AVR status register, as independent flags.
type Sreg struct {
	I bool // Global interrupt enable.
	T bool // Bit copy storage.
	H bool // Half carry.
	S bool // Sign, N ^ V.
	V bool // Two's complement overflow.
	N bool // Negative.
	Z bool // Zero.
	C bool // Carry.
}

func (sr *Sreg) flags() [8]*bool {
	return [8]*bool{
		SREG_C: &sr.C,
		SREG_Z: &sr.Z,
		SREG_N: &sr.N,
		SREG_V: &sr.V,
		SREG_S: &sr.S,
		SREG_H: &sr.H,
		SREG_T: &sr.T,
		SREG_I: &sr.I,
	}
}

// Byte packs the flags into the SREG I/O register layout.
func (sr Sreg) Byte() (value uint8) {
	for n, flag := range sr.flags() {
		if *flag {
			value |= 1 << n
		}
	}
	return
}

// String returns the flags MSB first, upper case when set.
func (sr Sreg) String() string {
	text := []byte("ithsvnzc")
	value := sr.Byte()
	for n := range text {
		if value&(0x80>>n) != 0 {
			text[n] -= 'a' - 'A'
		}
	}
	return string(text)
}
