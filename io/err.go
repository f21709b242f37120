package io

import (
	"errors"

	"github.com/ezrec/avrsim/translate"
)

var f = translate.From

var (
	// Intel HEX errors
	ErrHexParse     = errors.New(f("Intel HEX stream is malformed"))
	ErrHexOddLength = errors.New(f("image has an odd number of bytes"))
)

// ErrHexGap is a data record that does not continue the image contiguously.
type ErrHexGap struct {
	Address  uint32
	Expected uint32
}

func (err ErrHexGap) Error() string {
	return f("data at 0x%x, expected 0x%x", err.Address, err.Expected)
}
