package vm

// kbd.go is the keyboard device: KBSR and KBDR.

import "fmt"

// Keyboard is the memory-mapped keyboard device. Reading KBSR polls the
// console input without blocking; reading KBDR returns the last byte
// latched by a KBSR poll.
type Keyboard struct {
	in   byteSource
	kbdr Register // Backing store for the last latched byte.
}

// NewKeyboard creates a keyboard device backed by in.
func NewKeyboard(in byteSource) *Keyboard {
	return &Keyboard{in: in}
}

// kbdReady is the ready bit returned by a successful KBSR poll.
const kbdReady = Word(0x8000)

// Read implements the KBSR/KBDR read side effects (§4.2).
func (k *Keyboard) Read(addr Word) (Word, error) {
	switch addr {
	case KBSRAddr:
		b, ok, err := k.in.Poll()
		if err != nil {
			return 0, fmt.Errorf("kbd: poll: %w", err)
		}

		if !ok {
			return 0, nil
		}

		k.kbdr = Register(b)

		return kbdReady, nil

	case KBDRAddr:
		return Word(k.kbdr), nil

	default:
		return 0, fmt.Errorf("%w: %s", ErrNoDevice, addr)
	}
}

// Write implements the KBSR/KBDR write side effects: both are no-ops.
func (k *Keyboard) Write(addr Word, _ Register) error {
	switch addr {
	case KBSRAddr, KBDRAddr:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrNoDevice, addr)
	}
}
