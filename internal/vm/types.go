// Package vm implements a bit-accurate interpreter for the LC-3
// instruction set architecture: a register file, a 65,536-word memory with
// memory-mapped device registers, and the fetch/decode/execute cycle that
// drives them.
package vm

// types.go defines the basic data types the CPU operates on.

import (
	"fmt"
	"strings"

	"github.com/cmars/lc3vm/internal/log"
)

// Word is the base data type on which the CPU operates. Registers, memory
// cells, and instructions are all 16-bit values.
type Word uint16

func (w Word) String() string {
	return fmt.Sprintf("%0#4x", uint16(w))
}

// Sext sign-extends the lower n bits of w in place, treating bits [n:16) as
// the sign to be replaced.
func (w *Word) Sext(n uint8) {
	// To sign extend the bottom n bits of a word, shift the n-th bit into
	// the sign position of a signed 16-bit integer, then shift back. The
	// left shift discards everything above bit n-1; the right shift, being
	// an arithmetic shift on a signed value, replicates the new sign bit
	// down across the vacated positions.
	s := 16 - n
	i := int16(*w)
	i <<= s
	i >>= s
	*w = Word(uint16(i))
}

// Zext zero-extends the lower n bits of w in place, clearing bits [n:16).
func (w *Word) Zext(n uint8) {
	var low Word = ^(0xffff << n)
	*w &= low
}

// Register holds one word of CPU state.
type Register Word

func (r Register) String() string {
	return Word(r).String()
}

// ProgramCounter points to the next instruction to fetch.
type ProgramCounter Register

func (p ProgramCounter) String() string {
	return Word(p).String()
}

// Condition represents the NZP status derived from the last value written to
// a general-purpose register.
type Condition uint8

// Condition flags. Exactly one is set at a time.
const (
	ConditionPositive Condition = 1 << iota // P
	ConditionZero                           // Z
	ConditionNegative                       // N
)

func (c Condition) String() string {
	return fmt.Sprintf("%0#1x (N:%t Z:%t P:%t)", uint8(c), c.Negative(), c.Zero(), c.Positive())
}

// Positive returns true if the P flag is set.
func (c Condition) Positive() bool { return c&ConditionPositive != 0 }

// Zero returns true if the Z flag is set.
func (c Condition) Zero() bool { return c&ConditionZero != 0 }

// Negative returns true if the N flag is set.
func (c Condition) Negative() bool { return c&ConditionNegative != 0 }

// Update sets the condition flag from the sign of reg: Zero if reg is zero,
// Negative if its top bit is set, Positive otherwise.
func (c *Condition) Update(reg Register) {
	switch {
	case reg == 0:
		*c = ConditionZero
	case int16(reg) < 0:
		*c = ConditionNegative
	default:
		*c = ConditionPositive
	}
}

// RegisterFile is the set of eight general-purpose registers.
type RegisterFile [NumGPR]Register

func (rf RegisterFile) String() string {
	b := strings.Builder{}
	for i := 0; i < len(rf)/2; i++ {
		fmt.Fprintf(&b, "R%d: %s\tR%d: %s\n", i, rf[i], i+len(rf)/2, rf[i+len(rf)/2])
	}

	return b.String()
}

// LogValue renders the register file as a structured log group.
func (rf RegisterFile) LogValue() log.Value {
	return log.GroupValue(
		log.String("R0", rf[R0].String()),
		log.String("R1", rf[R1].String()),
		log.String("R2", rf[R2].String()),
		log.String("R3", rf[R3].String()),
		log.String("R4", rf[R4].String()),
		log.String("R5", rf[R5].String()),
		log.String("R6", rf[R6].String()),
		log.String("R7", rf[R7].String()),
	)
}

// GPR identifies one of the eight general-purpose registers.
type GPR uint8

// General-purpose registers, as addressed by the 3-bit fields of an
// instruction.
const (
	R0 GPR = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7

	NumGPR // Count of general-purpose registers.

	RETP = R7 // ABI: the subroutine return address is conventionally kept in R7.
)

// ControlRegister is the machine control register (MCR). Bit 15 is the
// clock-enable bit; clearing it halts the fetch/execute loop.
type ControlRegister Register

// ControlRunning is the clock-enable bit of the control register.
const ControlRunning ControlRegister = 1 << 15

// Running returns true if the clock-enable bit is set.
func (cr ControlRegister) Running() bool {
	return cr&ControlRunning != 0
}

func (cr ControlRegister) String() string {
	run := "RUN"
	if !cr.Running() {
		run = "STOP"
	}

	return fmt.Sprintf("%s (%s)", Register(cr).String(), run)
}

// offset, literal, and vector distinguish the bit widths of the differently
// sign/zero-extended instruction fields, so a call site can't accidentally
// sign-extend a trap vector or zero-extend a branch offset.
type (
	offset  uint8
	literal uint8
	vector  uint8
)

// Field widths used across the instruction set.
const (
	OFFSET11 = offset(11)
	OFFSET9  = offset(9)
	OFFSET6  = offset(6)
	IMM5     = literal(5)
	VECTOR8  = vector(8)
)
