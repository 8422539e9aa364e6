package vm

// mem.go is the machine's memory controller: a 65,536-word address space
// with transparent redirection of the I/O page to device registers.

import (
	"errors"
	"fmt"

	"github.com/cmars/lc3vm/internal/log"
)

// AddrSpace is the size of the logical address space: 65,536 addressable
// words.
const AddrSpace = 1 << 16

// IOPageAddr is the first address of the memory-mapped I/O page
// (0xFE00-0xFFFF). Only the five addresses registered with a device in this
// range are special; every other address, in or out of the page, is
// ordinary storage.
const IOPageAddr Word = 0xfe00

// Memory mediates every read and write the CPU makes. Ordinary addresses are
// backed by an array of words; the five addresses with a device registered
// are redirected to that device's read/write side effects. Accesses made by
// the instruction cycle pass through the memory address and data registers
// (MAR/MDR), following the LC-3's own data path; the loader and the trap
// routines use load and store, which bypass them.
type Memory struct {
	MAR Register // Memory address register.
	MDR Register // Memory data register.

	cell    [AddrSpace]Word
	devices MMIO

	log *log.Logger
}

// NewMemory creates a zero-filled memory controller with no devices mapped.
func NewMemory() Memory {
	return Memory{
		devices: newMMIO(),
		log:     log.DefaultLogger(),
	}
}

// Fetch loads MDR from the address in MAR.
func (mem *Memory) Fetch() error {
	val, err := mem.load(Word(mem.MAR))
	if err != nil {
		return fmt.Errorf("%w: fetch: %w", ErrMemory, err)
	}

	mem.MDR = val

	return nil
}

// Store writes MDR to the address in MAR.
func (mem *Memory) Store() error {
	if err := mem.store(Word(mem.MAR), Word(mem.MDR)); err != nil {
		return fmt.Errorf("%w: store: %w", ErrMemory, err)
	}

	return nil
}

// load reads a word directly, bypassing MAR/MDR. Used by trap routines that
// walk memory without going through the instruction cycle's address
// register.
func (mem *Memory) load(addr Word) (Register, error) {
	if mem.devices.mapped(addr) {
		return mem.devices.Load(addr)
	}

	return Register(mem.cell[addr]), nil
}

// store writes a word directly, bypassing MAR/MDR. Used by the loader.
func (mem *Memory) store(addr Word, val Word) error {
	if mem.devices.mapped(addr) {
		return mem.devices.Store(addr, Register(val))
	}

	mem.cell[addr] = val

	return nil
}

// ErrMemory is wrapped by every memory access failure.
var ErrMemory = errors.New("memory error")
