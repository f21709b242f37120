package cpu

// StackPointer is the SPH:SPL register pair.
// The stack grows downward, and SP addresses the next free byte.
type StackPointer struct {
	SPH uint8
	SPL uint8
}

// Value returns SPH:SPL as a 16 bit address.
func (sp StackPointer) Value() uint16 {
	return uint16(sp.SPH)<<8 | uint16(sp.SPL)
}

// Set splits a 16 bit address into SPH:SPL.
func (sp *StackPointer) Set(value uint16) {
	sp.SPH = uint8(value >> 8)
	sp.SPL = uint8(value)
}

// Inc increments the stack pointer, with 16 bit wraparound.
func (sp *StackPointer) Inc() {
	sp.Set(sp.Value() + 1)
}

// Dec decrements the stack pointer, with 16 bit wraparound.
func (sp *StackPointer) Dec() {
	sp.Set(sp.Value() - 1)
}
