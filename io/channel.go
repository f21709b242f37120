// Package io provides program-image sources for the AVR simulator.
// It includes a flat word ROM (Rom) that feeds the decoder, and an Intel HEX
// codec (ReadHex, WriteHex) that converts between checksummed record files
// and flat byte images.
package io

// WordSource defines the interface the decoder pulls program words from.
// End of the image is signalled by io.EOF, which is distinct from any
// malformed-input error a source may return.
type WordSource interface {
	// Rewind resets the source to its first word.
	Rewind()
	// NextWord returns the next 16-bit program word.
	NextWord() (word uint16, err error)
	// Offset returns the word offset of the next word to be returned.
	Offset() int
}
