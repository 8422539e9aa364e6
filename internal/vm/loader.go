package vm

// loader.go reads an LC-3 object file: a big-endian origin word followed
// by the words to be loaded starting at that address.

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrLoadOverflow is returned when an object file has more words than fit
// between its origin and 0xFFFF (§4.7, §7: fatal before run()).
var ErrLoadOverflow = errors.New("load: program overflows address space")

// Load reads an object file from r, stores its words into memory starting
// at the origin the file specifies, and sets PC to that origin so the
// machine is ready to run the freshly loaded program. It is fatal for the
// program to need an address past 0xFFFF.
func (cpu *LC3) Load(r io.Reader) error {
	var origin uint16

	if err := binary.Read(r, binary.BigEndian, &origin); err != nil {
		return fmt.Errorf("load: origin: %w", err)
	}

	addr := Word(origin)
	n := 0

	for {
		var word uint16

		err := binary.Read(r, binary.BigEndian, &word)
		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("load: %s: %w", addr, err)
		}

		if int(origin)+n > 0xffff {
			return fmt.Errorf("%w: origin %s, word %d", ErrLoadOverflow, Word(origin), n)
		}

		if err := cpu.Mem.store(addr, Word(word)); err != nil {
			return fmt.Errorf("load: %s: %w", addr, err)
		}

		addr++
		n++
	}

	cpu.PC = ProgramCounter(origin)

	return nil
}
