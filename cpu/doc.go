// Package cpu implements the core and assembler of an AVR instruction-set
// simulator.
//
// Program words are classified by an ordered table of opcode bit patterns
// (Match), and their operand fields extracted into a closed set of
// Instruction values (Decode). Disassemble decodes a whole word stream into a
// Listing, whose Flash indexes instructions by program byte address.
//
// The Cpu holds 32 general registers, the SREG flags, the SPH:SPL stack
// pointer, disjoint I/O, extended I/O and SRAM spaces, and a byte addressed
// program counter. Only JMP, EOR, OUT, LDI and CALL execute; the remaining
// decoded instructions fail with ErrUnimplemented.
//
// The assembler accepts the same mnemonics, with macros, labels, equates, and
// compile-time expression evaluation.
package cpu
