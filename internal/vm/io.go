package vm

// io.go is the memory-mapped I/O dispatch table: the five device-register
// addresses and the drivers that back them.

import (
	"errors"
	"fmt"

	"github.com/cmars/lc3vm/internal/log"
)

// Addresses of the memory-mapped device registers (§6).
const (
	KBSRAddr Word = 0xfe00 // Keyboard status register.
	KBDRAddr Word = 0xfe02 // Keyboard data register.
	DSRAddr  Word = 0xfe04 // Display status register.
	DDRAddr  Word = 0xfe06 // Display data register.
	MCRAddr  Word = 0xfffe // Machine control register.
)

// deviceReader is implemented by a device that produces a value when its
// register is read.
type deviceReader interface {
	Read(addr Word) (Word, error)
}

// deviceWriter is implemented by a device that reacts to its register being
// written.
type deviceWriter interface {
	Write(addr Word, val Register) error
}

// MMIO is the memory-mapped I/O controller. It holds a table, indexed by
// logical address, of the devices that intercept reads and writes to the
// five device-register addresses.
type MMIO struct {
	devs map[Word]any
	log  *log.Logger
}

func newMMIO() MMIO {
	return MMIO{
		devs: make(map[Word]any),
		log:  log.DefaultLogger(),
	}
}

// ErrNoDevice is returned when reading or writing an address with no
// registered device.
var ErrNoDevice = errors.New("mmio: no device")

// mapped reports whether addr has a device registered.
func (mmio MMIO) mapped(addr Word) bool {
	_, ok := mmio.devs[addr]
	return ok
}

// Map registers devices by address. Devices must implement deviceReader,
// deviceWriter, or both.
func (mmio *MMIO) Map(devices map[Word]any) {
	for addr, dev := range devices {
		mmio.devs[addr] = dev
		mmio.log.Debug("mapped device", log.String("ADDR", addr.String()), log.Any("DEVICE", dev))
	}
}

// Load fetches a word from a memory-mapped address.
func (mmio MMIO) Load(addr Word) (Register, error) {
	dev, ok := mmio.devs[addr]
	if !ok {
		return 0, fmt.Errorf("%w: load: %s", ErrNoDevice, addr)
	}

	reader, ok := dev.(deviceReader)
	if !ok {
		return 0, fmt.Errorf("%w: load: %s: not readable", ErrNoDevice, addr)
	}

	val, err := reader.Read(addr)
	if err != nil {
		return 0, fmt.Errorf("mmio: load: %s: %w", addr, err)
	}

	mmio.log.Debug("loaded", log.String("ADDR", addr.String()), log.String("DATA", val.String()))

	return Register(val), nil
}

// Store writes a word to a memory-mapped address.
func (mmio MMIO) Store(addr Word, val Register) error {
	dev, ok := mmio.devs[addr]
	if !ok {
		return fmt.Errorf("%w: store: %s", ErrNoDevice, addr)
	}

	writer, ok := dev.(deviceWriter)
	if !ok {
		return fmt.Errorf("%w: store: %s: not writable", ErrNoDevice, addr)
	}

	if err := writer.Write(addr, val); err != nil {
		return fmt.Errorf("mmio: store: %s: %w", addr, err)
	}

	mmio.log.Debug("stored", log.String("ADDR", addr.String()), log.String("DATA", val.String()))

	return nil
}
