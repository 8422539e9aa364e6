package vm

// cpu.go assembles the register file, memory, and memory-mapped devices
// into the complete machine and wires in caller-supplied configuration.

import (
	"io"
	"os"

	"github.com/cmars/lc3vm/internal/log"
)

// LC3 is the whole machine: the register file, program counter, condition
// codes, memory (with its mapped devices), and the trap dispatch table
// that backs the TRAP instruction.
type LC3 struct {
	PC   ProgramCounter
	IR   Instruction
	REG  RegisterFile
	COND Condition
	MCR  ControlRegister

	Mem Memory

	traps map[TrapVector]func(*LC3) error

	in  byteSource
	out io.Writer

	log *log.Logger
	err error
}

// New creates a machine with its memory-mapped devices and trap table
// wired in, ready to Load an object file and Run. The clock-enable bit
// starts set: a freshly constructed machine is running until it executes
// HALT or Step returns an error.
func New(opts ...OptionFn) *LC3 {
	cpu := &LC3{
		MCR: ControlRunning,
		Mem: NewMemory(),
		in:  NewBufferedSource(os.Stdin),
		out: os.Stdout,
		log: log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(cpu)
	}

	cpu.traps = trapTable()

	kbd := NewKeyboard(cpu.in)
	disp := NewDisplay(cpu.out)

	cpu.Mem.devices.Map(map[Word]any{
		KBSRAddr: kbd,
		KBDRAddr: kbd,
		DSRAddr:  disp,
		DDRAddr:  disp,
		MCRAddr:  newControlDevice(&cpu.MCR),
	})

	return cpu
}

// LogValue renders the machine's visible state as a structured log group,
// for use as a single slog attribute.
func (cpu *LC3) LogValue() log.Value {
	return log.GroupValue(
		log.String("PC", cpu.PC.String()),
		log.String("IR", cpu.IR.String()),
		log.Any("REG", cpu.REG),
		log.String("COND", cpu.COND.String()),
		log.String("MCR", cpu.MCR.String()),
	)
}

// OptionFn configures a machine at construction time.
type OptionFn func(*LC3)

// WithLogger sets the logger used by the machine and its memory subsystem.
func WithLogger(logger *log.Logger) OptionFn {
	return func(cpu *LC3) {
		cpu.log = logger
		cpu.Mem.log = logger
		cpu.Mem.devices.log = logger
	}
}

// WithInput sets the console input source used by the keyboard device and
// by the GETC/IN trap routines.
func WithInput(r io.Reader) OptionFn {
	return func(cpu *LC3) {
		if src, ok := r.(byteSource); ok {
			cpu.in = src
			return
		}

		cpu.in = NewBufferedSource(r)
	}
}

// WithOutput sets the console output sink used by the display device and
// by the OUT/PUTS/IN/PUTSP trap routines.
func WithOutput(w io.Writer) OptionFn {
	return func(cpu *LC3) {
		cpu.out = w
	}
}

// WithOrigin sets the initial program counter, for callers that construct
// machine state directly instead of going through Load.
func WithOrigin(origin Word) OptionFn {
	return func(cpu *LC3) {
		cpu.PC = ProgramCounter(origin)
	}
}
