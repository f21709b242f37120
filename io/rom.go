package io

import (
	"io"
)

// Rom is a flat program image of 16-bit words, loaded at word offset Base.
type Rom struct {
	Base int
	Data []uint16

	index int
}

var _ WordSource = (*Rom)(nil)

// Rewind restarts reading at the first word.
func (rc *Rom) Rewind() {
	rc.index = 0
}

// NextWord returns the next word, or io.EOF once the image is exhausted.
func (rc *Rom) NextWord() (word uint16, err error) {
	if rc.index >= len(rc.Data) {
		err = io.EOF
		return
	}

	word = rc.Data[rc.index]
	rc.index++

	return
}

// Offset returns the word offset of the next word.
func (rc *Rom) Offset() int {
	return rc.Base + rc.index
}
