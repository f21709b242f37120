package cpu

import (
	"iter"

	"github.com/ezrec/avrsim/io"
)

// Opcode is a single assembled source line.
type Opcode struct {
	LineNo    int         // Source line number.
	Ip        int         // Word offset of the first code.
	Words     []string    // Source words, after expansion.
	Codes     []uint16    // Encoded program words.
	Inst      Instruction // Assembled instruction; nil for .dw data.
	LinkLabel string      // Label resolved at link time.
}

// Program is an assembled program listing.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the opcode covering a word offset.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode at the word offset ip, or a Debug with a nil
// Opcode if no opcode covers it.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Binary returns the program words.
func (prog *Program) Binary() (bins []uint16) {
	for _, code := range prog.Codes() {
		bins = append(bins, code)
	}

	return
}

// Codes iterates over the word offset and value of every program word.
func (prog *Program) Codes() iter.Seq2[int, uint16] {
	return func(yield func(ip int, code uint16) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Ip+n, code) {
					return
				}
			}
		}
	}
}

// Rom returns the program words as a word source.
func (prog *Program) Rom() *io.Rom {
	return &io.Rom{Data: prog.Binary()}
}
