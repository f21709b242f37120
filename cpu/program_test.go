package cpu

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProgram() *Program {
	return &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Ip: 0, Words: []string{"jmp", "main"},
				Codes: []uint16{0x940c, 0x0006}, Inst: Jmp{Address: 0xc}, LinkLabel: "main"},
			{LineNo: 2, Ip: 2, Words: []string{".dw", "0x1234", "0x5678"},
				Codes: []uint16{0x1234, 0x5678}},
			{LineNo: 4, Ip: 4, Words: []string{"ldi", "r16", "5"},
				Codes: []uint16{0xe005}, Inst: Ldi{Rd: 16, K: 5}},
		},
	}
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(1)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(3)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(1, dbg.Index)
	assert.Nil(dbg.Inst)

	dbg = prog.Debug(4)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.LineNo)
	assert.Equal(Ldi{Rd: 16, K: 5}, dbg.Inst)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	dbg := prog.Debug(10)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = (&Program{}).Debug(0)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	assert.Equal([]uint16{0x940c, 0x0006, 0x1234, 0x5678, 0xe005}, prog.Binary())
	assert.Nil((&Program{}).Binary())
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	codes := maps.Collect(prog.Codes())
	assert.Equal(map[int]uint16{
		0: 0x940c, 1: 0x0006, 2: 0x1234, 3: 0x5678, 4: 0xe005,
	}, codes)

	count := 0
	for range prog.Codes() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(2, count)
}

func TestProgram_Rom(t *testing.T) {
	assert := assert.New(t)

	rom := testProgram().Rom()

	assert.Equal(0, rom.Offset())
	word, err := rom.NextWord()
	assert.NoError(err)
	assert.Equal(uint16(0x940c), word)
	assert.Equal(1, rom.Offset())
}
