// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"SPL":    fmt.Sprintf("%#x", IO_SPL),
	"SPH":    fmt.Sprintf("%#x", IO_SPH),
	"SREG":   fmt.Sprintf("%#x", IO_SREG),
}

// Assembler is a single pass macro assembler for the modeled AVR subset.
type Assembler struct {
	Verbose bool               // If set, verbosely logs the assembler actions.
	Log     logrus.FieldLogger // Destination of verbose logs.
	Opcode  []Opcode           // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to word offsets.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

func (asm *Assembler) logger() logrus.FieldLogger {
	if asm.Log == nil {
		return logrus.StandardLogger()
	}
	return asm.Log
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	if len(word) > 0 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

// byteOf returns a value that must fit in a byte, signed or unsigned.
func (asm *Assembler) byteOf(kind Kind, name string, word string) (value uint8, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v64 < -128 || v64 > 255 {
		err = ErrFieldRange{Kind: kind, Field: name, Value: int(v64), Min: -128, Max: 255}
		return
	}

	value = uint8(v64)
	return
}

// registerOf parses an R0-R31 register name.
func (asm *Assembler) registerOf(word string) (reg uint8, err error) {
	num, ok := strings.CutPrefix(strings.ToLower(word), "r")
	if !ok {
		err = ErrParseRegister(word)
		return
	}
	v64, perr := strconv.ParseUint(num, 10, 8)
	if perr != nil || v64 > REGISTER_MAX {
		err = ErrParseRegister(word)
		return
	}

	reg = uint8(v64)
	return
}

// displacementOf parses a Y+q pointer operand.
func (asm *Assembler) displacementOf(word string) (q uint8, err error) {
	upper := strings.ToUpper(word)
	if upper == "Y" {
		return
	}
	disp, ok := strings.CutPrefix(upper, "Y+")
	if !ok {
		err = ErrPointerInvalid
		return
	}

	v64, err := asm.valueOf(disp)
	if err != nil {
		return
	}
	if v64 < 0 || v64 > 255 {
		err = ErrPointerInvalid
		return
	}

	q = uint8(v64)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// splitWords splits a line on whitespace and operand commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseLine parses a single line into words, processing equates, labels,
// and macro expansions.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%v", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	// .equ CONST = VALUE
	if strings.ToLower(words[0]) == ".equ" {
		if len(words) == 4 && words[2] == "=" {
			words = []string{words[0], words[1], words[3]}
		}
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		value, ok := asm.Equate[words[2]]
		if !ok {
			value = words[2]
		}
		asm.Equate[words[1]] = value
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// Local labels are unique to each expansion.
		local := fmt.Sprintf("%v_%v_", name, lineno)
		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the word offset of the next opcode.
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			asm.logger().WithField("line", lineno).Debug(text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		err = asm.link(op)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// link resolves the label of an opcode, and re-encodes it.
func (asm *Assembler) link(op *Opcode) (err error) {
	ip, ok := asm.Label[op.LinkLabel]
	if !ok {
		err = ErrLabelMissing(op.LinkLabel)
		return
	}

	// Relative displacements are from the following word.
	disp := 2 * (ip - (op.Ip + 1))

	switch op.Inst.(type) {
	case Jmp:
		op.Inst = Jmp{Address: uint32(ip) << 1}
	case Call:
		op.Inst = Call{Address: uint32(ip) << 1}
	case Rjmp:
		err = checkFields(KIND_RJMP, field{"k", disp, RELATIVE_MIN, RELATIVE_MAX})
		op.Inst = Rjmp{K: int16(disp)}
	case Rcall:
		err = checkFields(KIND_RCALL, field{"k", disp, RELATIVE_MIN, RELATIVE_MAX})
		op.Inst = Rcall{K: int16(disp)}
	default:
		err = ErrInstructionInvalid
	}
	if err != nil {
		return
	}

	op.Codes, err = Encode(op.Inst)
	return
}

// targetOf parses an absolute program byte address, or a label.
func (asm *Assembler) targetOf(word string) (address uint32, label string, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		if !isLabel(word) {
			return
		}
		err = nil
		label = word
		return
	}
	if v64 < 0 || v64 > ADDRESS_MAX {
		err = ErrFieldRange{Kind: KIND_JMP, Field: "k", Value: int(v64), Min: 0, Max: ADDRESS_MAX}
		return
	}

	address = uint32(v64)
	return
}

// relativeOf parses a .+N / .-N byte displacement, or a label.
func (asm *Assembler) relativeOf(word string) (disp int16, label string, err error) {
	rel, ok := strings.CutPrefix(word, ".")
	if !ok {
		if !isLabel(word) {
			err = ErrParseNumber(word)
			return
		}
		label = word
		return
	}
	if rel == "" {
		return
	}

	v64, err := asm.valueOf(rel)
	if err != nil {
		return
	}
	if v64 < RELATIVE_MIN || v64 > RELATIVE_MAX {
		err = ErrFieldRange{Kind: KIND_RJMP, Field: "k", Value: int(v64), Min: RELATIVE_MIN, Max: RELATIVE_MAX}
		return
	}

	disp = int16(v64)
	return
}

var reLabel = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isLabel(word string) bool {
	return reLabel.MatchString(word)
}

// operandCount maps mnemonics to their operand count.
var operandCount = map[string]int{
	"jmp":   1,
	"call":  1,
	"rjmp":  1,
	"rcall": 1,
	"eor":   2,
	"add":   2,
	"adc":   2,
	"ldi":   2,
	"in":    2,
	"out":   2,
	"std":   2,
	"ldd":   2,
	"push":  1,
	"pop":   1,
	"clr":   1,
	"ret":   0,
	"cli":   0,
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint16
	var inst Instruction
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(codes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, Inst: inst, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	if mnemonic == ".dw" {
		if len(args) == 0 {
			err = ErrOpcodeMissing
			return
		}
		for _, arg := range args {
			var v64 int64
			v64, err = asm.valueOf(arg)
			if err != nil {
				return
			}
			if v64 < -0x8000 || v64 > 0xffff {
				err = ErrParseNumber(arg)
				return
			}
			codes = append(codes, uint16(v64))
		}
		return
	}

	need, ok := operandCount[mnemonic]
	if !ok {
		err = ErrInstructionInvalid
		return
	}
	if len(args) < need {
		err = ErrOpcodeMissing
		return
	}
	if len(args) > need {
		err = ErrOpcodeExtraArgs
		return
	}

	// Two register forms.
	pair := func() (rd, rr uint8, err error) {
		rd, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		rr, err = asm.registerOf(args[1])
		return
	}

	switch mnemonic {
	case "jmp", "call":
		var address uint32
		address, label, err = asm.targetOf(args[0])
		if err != nil {
			return
		}
		if mnemonic == "jmp" {
			inst = Jmp{Address: address}
		} else {
			inst = Call{Address: address}
		}
	case "rjmp", "rcall":
		var disp int16
		disp, label, err = asm.relativeOf(args[0])
		if err != nil {
			return
		}
		if mnemonic == "rjmp" {
			inst = Rjmp{K: disp}
		} else {
			inst = Rcall{K: disp}
		}
	case "eor", "add", "adc":
		var rd, rr uint8
		rd, rr, err = pair()
		if err != nil {
			return
		}
		switch mnemonic {
		case "eor":
			inst = Eor{Rd: rd, Rr: rr}
		case "add":
			inst = Add{Rd: rd, Rr: rr}
		case "adc":
			inst = Adc{Rd: rd, Rr: rr}
		}
	case "clr":
		var rd uint8
		rd, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		inst = Eor{Rd: rd, Rr: rd}
	case "ldi":
		var rd, k uint8
		rd, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		k, err = asm.byteOf(KIND_LDI, "K", args[1])
		if err != nil {
			return
		}
		inst = Ldi{Rd: rd, K: k}
	case "in":
		var rd, a uint8
		rd, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		a, err = asm.byteOf(KIND_IN, "A", args[1])
		if err != nil {
			return
		}
		inst = In{Rd: rd, A: a}
	case "out":
		var rr, a uint8
		a, err = asm.byteOf(KIND_OUT, "A", args[0])
		if err != nil {
			return
		}
		rr, err = asm.registerOf(args[1])
		if err != nil {
			return
		}
		inst = Out{A: a, Rr: rr}
	case "std":
		var q, rr uint8
		q, err = asm.displacementOf(args[0])
		if err != nil {
			return
		}
		rr, err = asm.registerOf(args[1])
		if err != nil {
			return
		}
		inst, err = NewStdY(q, rr)
		if err != nil {
			return
		}
	case "ldd":
		var rd, q uint8
		rd, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		q, err = asm.displacementOf(args[1])
		if err != nil {
			return
		}
		inst, err = NewLddY(rd, q)
		if err != nil {
			return
		}
	case "push":
		var rr uint8
		rr, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		inst = Push{Rr: rr}
	case "pop":
		var rd uint8
		rd, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		inst = Pop{Rd: rd}
	case "ret":
		inst = Ret{}
	case "cli":
		inst = Cli{}
	}

	codes, err = Encode(inst)
	return
}
