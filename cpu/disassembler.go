package cpu

import (
	"errors"
	"iter"

	"github.com/ezrec/avrsim/internal"
)

// Listing is a decoded program. Instructions and Offsets are parallel;
// Offsets holds the word offset of each instruction.
type Listing struct {
	Instructions []Instruction
	Offsets      []int
}

// Disassemble decodes a word source, from its first word, until the end of
// the stream. Any error other than ErrEndOfStream is returned with no listing.
func Disassemble(src WordSource) (listing *Listing, err error) {
	result := &Listing{}

	src.Rewind()

	for {
		offset := src.Offset()

		var inst Instruction
		inst, err = Decode(src)
		if errors.Is(err, ErrEndOfStream) {
			err = nil
			break
		}
		if err != nil {
			return
		}

		result.Instructions = append(result.Instructions, inst)
		result.Offsets = append(result.Offsets, offset)
	}

	listing = result
	return
}

// Flash returns the program memory of the listing, keyed by byte address.
func (listing *Listing) Flash() (flash Flash) {
	flash = make(Flash, len(listing.Offsets))
	for offset, inst := range internal.IterZip(listing.Offsets, listing.Instructions) {
		flash[uint32(offset)<<1] = inst
	}

	return
}

// Base returns the byte address of the first instruction.
func (listing *Listing) Base() uint32 {
	if len(listing.Offsets) == 0 {
		return 0
	}
	return uint32(listing.Offsets[0]) << 1
}

// Lines iterates over the byte address and rendering of each instruction.
func (listing *Listing) Lines() iter.Seq2[int, string] {
	return func(yield func(addr int, text string) bool) {
		for offset, inst := range internal.IterZip(listing.Offsets, listing.Instructions) {
			if !yield(offset<<1, inst.String()) {
				return
			}
		}
	}
}
