package io

import (
	"errors"
	"io"

	"github.com/marcinbor85/gohex"
)

// HEX_RECORD_SIZE is the number of data bytes per record written by WriteHex.
const HEX_RECORD_SIZE = 16

// Image is a contiguous program image, as loaded from an Intel HEX file.
type Image struct {
	Base     uint32 // Byte address of Data[0].
	Data     []byte // Image bytes.
	Start    uint32 // Start address, if HasStart.
	HasStart bool   // Set if a start address record was present.
}

// ReadHex parses an Intel HEX stream into a contiguous image.
// Every record checksum is verified; data records must follow on from each
// other without gaps.
func ReadHex(input io.Reader) (image *Image, err error) {
	mem := gohex.NewMemory()
	err = mem.ParseIntelHex(input)
	if err != nil {
		err = errors.Join(ErrHexParse, err)
		return
	}

	result := &Image{}
	result.Start, result.HasStart = mem.GetStartAddress()

	for n, seg := range mem.GetDataSegments() {
		expected := result.Base + uint32(len(result.Data))
		if n == 0 {
			result.Base = seg.Address
		} else if seg.Address != expected {
			err = ErrHexGap{Address: seg.Address, Expected: expected}
			return
		}
		result.Data = append(result.Data, seg.Data...)
	}

	image = result
	return
}

// WriteHex writes an image as Intel HEX records, with a start linear
// address record if the image has a start address.
func WriteHex(output io.Writer, image *Image) (err error) {
	mem := gohex.NewMemory()
	if len(image.Data) != 0 {
		err = mem.AddBinary(image.Base, image.Data)
		if err != nil {
			return
		}
	}

	if image.HasStart {
		mem.SetStartAddress(image.Start)
	}

	err = mem.DumpIntelHex(output, HEX_RECORD_SIZE)
	return
}

// Words converts the image to little-endian program words.
func (image *Image) Words() (words []uint16, err error) {
	if len(image.Data)%2 != 0 {
		err = ErrHexOddLength
		return
	}

	words = make([]uint16, len(image.Data)/2)
	for n := range words {
		words[n] = uint16(image.Data[2*n+1])<<8 | uint16(image.Data[2*n])
	}

	return
}

// Rom converts the image to a word source positioned at the image base.
func (image *Image) Rom() (rom *Rom, err error) {
	if image.Base%2 != 0 {
		err = ErrHexOddLength
		return
	}

	words, err := image.Words()
	if err != nil {
		return
	}

	rom = &Rom{Base: int(image.Base / 2), Data: words}
	return
}

// ImageOf builds an image from little-endian program words at a word offset.
func ImageOf(base int, words []uint16) (image *Image) {
	image = &Image{
		Base: uint32(base) * 2,
		Data: make([]byte, 0, 2*len(words)),
	}
	for _, word := range words {
		image.Data = append(image.Data, byte(word), byte(word>>8))
	}
	return
}
