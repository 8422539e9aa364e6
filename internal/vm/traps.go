package vm

// traps.go implements the TRAP service routines as Go methods on *LC3,
// dispatched by vector number through a table built at construction time.
// The original architecture loads these routines as a ROM image at
// 0x0000-0x00FF and jumps into it; this machine calls them directly,
// since there is no assembler or loader for such an image and no
// privilege level to separate them from user code (§5, Non-goals).

import (
	"errors"
	"fmt"
)

// TrapVector identifies one of the TRAP service routines.
type TrapVector uint8

// Trap vectors (§5).
const (
	TrapGETC  TrapVector = 0x20 // Read one character, no echo, into R0.
	TrapOUT   TrapVector = 0x21 // Write the character in R0.
	TrapPUTS  TrapVector = 0x22 // Write the NUL-terminated string at R0, one character per word.
	TrapIN    TrapVector = 0x23 // Prompt, read one character with echo, into R0.
	TrapPUTSP TrapVector = 0x24 // Write the NUL-terminated string at R0, packed two characters per word.
	TrapHALT  TrapVector = 0x25 // Stop the clock.
)

func (v TrapVector) String() string {
	switch v {
	case TrapGETC:
		return "GETC"
	case TrapOUT:
		return "OUT"
	case TrapPUTS:
		return "PUTS"
	case TrapIN:
		return "IN"
	case TrapPUTSP:
		return "PUTSP"
	case TrapHALT:
		return "HALT"
	default:
		return fmt.Sprintf("TRAP(%#02x)", uint8(v))
	}
}

// ErrIllegalTrap is returned when TRAP names a vector with no registered
// routine.
var ErrIllegalTrap = errors.New("illegal trap vector")

// ErrIllegalOpcode is returned when the fetched instruction decodes to the
// reserved opcode.
var ErrIllegalOpcode = errors.New("illegal opcode")

// ErrNotImplemented is returned if RTI is ever executed. This machine has
// no interrupt controller and never enters an interrupt handler, so there
// is no state to return to (§3, Non-goals).
var ErrNotImplemented = errors.New("RTI: not implemented outside interrupt context")

// ErrNotASCII is returned by PUTS when a word in the string does not fit in
// the ASCII range expected by the console. PUTSP does not check its bytes.
var ErrNotASCII = errors.New("not ascii")

// trapTable builds the vector-to-routine dispatch table for cpu.
func trapTable() map[TrapVector]func(*LC3) error {
	return map[TrapVector]func(*LC3) error{
		TrapGETC:  (*LC3).trapGETC,
		TrapOUT:   (*LC3).trapOUT,
		TrapPUTS:  (*LC3).trapPUTS,
		TrapIN:    (*LC3).trapIN,
		TrapPUTSP: (*LC3).trapPUTSP,
		TrapHALT:  (*LC3).trapHALT,
	}
}

// trapGETC reads one byte from the console, blocking until one is
// available, and zero-extends it into R0. No echo.
func (cpu *LC3) trapGETC() error {
	var buf [1]byte

	if _, err := cpu.in.Read(buf[:]); err != nil {
		return fmt.Errorf("trap GETC: %w", err)
	}

	cpu.REG[R0] = Register(buf[0])

	return nil
}

// trapOUT writes the low byte of R0 to the console.
func (cpu *LC3) trapOUT() error {
	_, err := cpu.out.Write([]byte{byte(cpu.REG[R0] & 0x00ff)})
	if err != nil {
		return fmt.Errorf("trap OUT: %w", err)
	}

	return nil
}

// trapPUTS writes the NUL-terminated string starting at the address in R0,
// one character per memory word.
func (cpu *LC3) trapPUTS() error {
	addr := Word(cpu.REG[R0])

	for {
		w, err := cpu.Mem.load(addr)
		if err != nil {
			return fmt.Errorf("trap PUTS: %w", err)
		}

		if w == 0 {
			return nil
		}

		if w > 0x007f {
			return fmt.Errorf("trap PUTS: %w: %s", ErrNotASCII, Word(w))
		}

		if _, err := cpu.out.Write([]byte{byte(w)}); err != nil {
			return fmt.Errorf("trap PUTS: %w", err)
		}

		addr++
	}
}

// trapIN prompts, reads one byte from the console with echo, and
// zero-extends it into R0.
func (cpu *LC3) trapIN() error {
	if _, err := cpu.out.Write([]byte("Input a character> ")); err != nil {
		return fmt.Errorf("trap IN: %w", err)
	}

	var buf [1]byte

	if _, err := cpu.in.Read(buf[:]); err != nil {
		return fmt.Errorf("trap IN: %w", err)
	}

	if _, err := cpu.out.Write(buf[:]); err != nil {
		return fmt.Errorf("trap IN: %w", err)
	}

	cpu.REG[R0] = Register(buf[0])

	return nil
}

// trapPUTSP writes the NUL-terminated string starting at the address in
// R0, packed two characters per memory word: the low byte first, then the
// high byte, until a zero byte of either terminates the string.
func (cpu *LC3) trapPUTSP() error {
	addr := Word(cpu.REG[R0])

	for {
		w, err := cpu.Mem.load(addr)
		if err != nil {
			return fmt.Errorf("trap PUTSP: %w", err)
		}

		lo := byte(w & 0x00ff)
		hi := byte(w >> 8 & 0x00ff)

		if lo == 0 {
			return nil
		}

		if _, err := cpu.out.Write([]byte{lo}); err != nil {
			return fmt.Errorf("trap PUTSP: %w", err)
		}

		if hi == 0 {
			return nil
		}

		if _, err := cpu.out.Write([]byte{hi}); err != nil {
			return fmt.Errorf("trap PUTSP: %w", err)
		}

		addr++
	}
}

// trapHALT clears the clock-enable bit, stopping the fetch/execute loop
// after this instruction.
func (cpu *LC3) trapHALT() error {
	cpu.MCR &^= ControlRunning

	return nil
}
