package vm

// mcr.go is the machine control register device: a single bit that halts
// the fetch/execute loop when cleared.

import "fmt"

// controlDevice maps the machine control register into the MMIO address
// space, backed directly by the CPU's own ControlRegister field.
type controlDevice struct {
	mcr *ControlRegister
}

func newControlDevice(mcr *ControlRegister) *controlDevice {
	return &controlDevice{mcr: mcr}
}

func (c *controlDevice) Read(addr Word) (Word, error) {
	if addr != MCRAddr {
		return 0, fmt.Errorf("%w: %s", ErrNoDevice, addr)
	}

	return Word(*c.mcr), nil
}

func (c *controlDevice) Write(addr Word, val Register) error {
	if addr != MCRAddr {
		return fmt.Errorf("%w: %s", ErrNoDevice, addr)
	}

	*c.mcr = ControlRegister(val)

	return nil
}
