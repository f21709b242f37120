package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/avrsim/io"
)

func TestEncodeEor(t *testing.T) {
	assert := assert.New(t)

	for rd := range uint8(32) {
		for rr := range uint8(32) {
			words, err := Encode(Eor{Rd: rd, Rr: rr})
			if !assert.NoError(err) {
				return
			}
			assert.Len(words, 1)

			desc, ok := Match(words[0])
			assert.True(ok)
			assert.Equal(KIND_EOR, desc.Kind)

			inst, err := desc.Decode()
			assert.NoError(err)
			assert.Equal(Eor{Rd: rd, Rr: rr}, inst)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	seconds := []uint16{0x0000, 0x5a5a, 0xffff}

	for _, pat := range patterns {
		for _, word := range patternWords(pat) {
			for _, word2 := range seconds {
				rom := &io.Rom{Data: []uint16{word, word2}}
				inst, err := Decode(rom)
				if !assert.NoError(err) {
					return
				}

				words, err := Encode(inst)
				if !assert.NoError(err, inst.String()) {
					return
				}
				assert.Equal(rom.Data[:Width(inst)], words, inst.String())
				if !pat.dword {
					break
				}
			}
		}
	}
}

func TestEncodeKnown(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		inst  Instruction
		words []uint16
	}){
		{Jmp{Address: 0x68}, []uint16{0x940c, 0x0034}},
		{Call{Address: 0x80}, []uint16{0x940e, 0x0040}},
		{Jmp{Address: 0x7ffffe}, []uint16{0x95fd, 0xffff}},
		{Eor{Rd: 1, Rr: 1}, []uint16{0x2411}},
		{Ldi{Rd: 16, K: 5}, []uint16{0xe005}},
		{Out{A: 0x3f, Rr: 0}, []uint16{0xbe0f}},
		{In{Rd: 28, A: 0x3d}, []uint16{0xb7cd}},
		{StdY{Q: 1, Rr: 24}, []uint16{0x8389}},
		{LddY{Rd: 24, Q: 1}, []uint16{0x8189}},
		{Push{Rr: 28}, []uint16{0x93cf}},
		{Pop{Rd: 28}, []uint16{0x91cf}},
		{Rjmp{K: -2}, []uint16{0xcfff}},
		{Rcall{K: 0}, []uint16{0xd000}},
		{Ret{}, []uint16{0x9508}},
		{Cli{}, []uint16{0x94f8}},
	}

	for _, entry := range table {
		words, err := Encode(entry.inst)
		assert.NoError(err, entry.inst.String())
		assert.Equal(entry.words, words, entry.inst.String())
	}
}

func TestEncodeInvalid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		inst  Instruction
		field string
	}){
		{Ldi{Rd: 15, K: 0}, "d"},
		{Eor{Rd: 32, Rr: 0}, "d"},
		{Add{Rd: 0, Rr: 32}, "r"},
		{Out{A: 64, Rr: 0}, "A"},
		{In{Rd: 0, A: 64}, "A"},
		{Push{Rr: 32}, "r"},
		{Pop{Rd: 32}, "d"},
		{StdY{Q: 64, Rr: 0}, "q"},
		{LddY{Rd: 32, Q: 0}, "d"},
		{Jmp{Address: 0x800000}, "k"},
		{Rjmp{K: 4096}, "k"},
		{Rcall{K: -4098}, "k"},
	}

	for _, entry := range table {
		words, err := Encode(entry.inst)
		assert.Nil(words, entry.inst.String())
		var fr ErrFieldRange
		if assert.ErrorAs(err, &fr, entry.inst.String()) {
			assert.Equal(entry.inst.Kind(), fr.Kind)
			assert.Equal(entry.field, fr.Field, entry.inst.String())
		}
	}

	_, err := Encode(Jmp{Address: 0x69})
	assert.ErrorIs(err, ErrAddressAlign)

	_, err = Encode(Rjmp{K: 3})
	assert.ErrorIs(err, ErrAddressAlign)

	_, err = Encode(nil)
	assert.ErrorIs(err, ErrKindInvalid)
}
