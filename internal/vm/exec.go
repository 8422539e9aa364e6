package vm

// exec.go drives the fetch/decode/execute cycle. Each opcode is decoded
// into a small operation value that implements whichever stages it needs;
// stages that don't apply to an opcode are simply absent from its type, so
// Step only calls the ones that exist.

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmars/lc3vm/internal/log"
)

// operation is the common capability every decoded opcode has: none,
// actually, since even EvalAddress and Execute are optional. It exists so
// Decode has something to return.
type operation interface{}

// addressable operations compute a memory address before any load, using
// the instruction and the current PC/registers.
type addressable interface {
	EvalAddress(cpu *LC3)
}

// fetchable operations read from memory (or another operand source) before
// executing.
type fetchable interface {
	FetchOperands(cpu *LC3)
}

// executable operations perform their effect; those that write a
// general-purpose register also update the condition codes. Every decoded
// operation implements this, the stores with an empty body.
type executable interface {
	Execute(cpu *LC3)
}

// storable operations write a result back to a register or to memory.
type storable interface {
	Writeback(cpu *LC3)
}

// Decode selects the operation denoted by the instruction currently in IR.
func (cpu *LC3) Decode() operation {
	ir := cpu.IR

	switch ir.Opcode() {
	case BR:
		return &br{cond: ir.Cond()}

	case ADD:
		if ir.Imm() {
			return &addImm{dr: ir.DR(), sr1: ir.SR1(), imm: ir.Literal(IMM5)}
		}

		return &add{dr: ir.DR(), sr1: ir.SR1(), sr2: ir.SR2()}

	case AND:
		if ir.Imm() {
			return &andImm{dr: ir.DR(), sr1: ir.SR1(), imm: ir.Literal(IMM5)}
		}

		return &and{dr: ir.DR(), sr1: ir.SR1(), sr2: ir.SR2()}

	case NOT:
		return &not{dr: ir.DR(), sr: ir.SR1()}

	case LD:
		return &ld{dr: ir.DR()}

	case LDI:
		return &ldi{dr: ir.DR()}

	case LDR:
		return &ldr{dr: ir.DR(), base: ir.SR1()}

	case LEA:
		return &lea{dr: ir.DR()}

	case ST:
		return &st{sr: ir.SR()}

	case STI:
		return &sti{sr: ir.SR()}

	case STR:
		return &str{sr: ir.SR(), base: ir.SR1()}

	case JMP:
		return &jmp{base: ir.SR1()}

	case JSR:
		if ir.Relative() {
			return &jsr{}
		}

		return &jsrr{base: ir.SR1()}

	case TRAP:
		return &trap{vector: TrapVector(ir.Vector(VECTOR8))}

	case RTI:
		return &rti{}

	case RESV:
		return &resv{}

	default:
		cpu.fatal(fmt.Errorf("%w: %s", ErrIllegalOpcode, ir))
		return nil
	}
}

// Step runs one fetch/decode/execute cycle: fetch IR from mem[PC],
// increment PC, decode the instruction, and drive whichever stages the
// decoded operation implements. It returns the first fatal error
// encountered, or nil if the cycle completed (including a cycle that
// halted the clock).
func (cpu *LC3) Step() error {
	cpu.err = nil

	cpu.Mem.MAR = Register(cpu.PC)
	if err := cpu.Mem.Fetch(); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	cpu.IR = Instruction(cpu.Mem.MDR)
	cpu.PC++

	op := cpu.Decode()
	if cpu.err != nil {
		return cpu.err
	}

	if a, ok := op.(addressable); ok {
		a.EvalAddress(cpu)
	}

	if f, ok := op.(fetchable); ok {
		f.FetchOperands(cpu)

		if cpu.err != nil {
			return cpu.err
		}
	}

	if e, ok := op.(executable); ok {
		e.Execute(cpu)

		if cpu.err != nil {
			return cpu.err
		}
	}

	if s, ok := op.(storable); ok {
		s.Writeback(cpu)

		if cpu.err != nil {
			return cpu.err
		}
	}

	cpu.log.Debug("stepped", log.Any("IR", cpu.IR), log.Any("PC", cpu.PC))

	return nil
}

// fatal records the first non-nil error a stage encounters. Later stages of
// the same cycle check it and stop early; Step surfaces it to the caller.
func (cpu *LC3) fatal(err error) {
	if err == nil || cpu.err != nil {
		return
	}

	cpu.err = err
}

// ErrHalted is returned by Run when the clock-enable bit is cleared,
// distinguishing a normal HALT from a fatal error.
var ErrHalted = errors.New("machine halted")

// Run steps the machine until the control register's clock-enable bit is
// cleared, a Step returns a fatal error, or ctx is done. A clean halt is
// reported as ErrHalted so callers can tell it apart from a fatal error.
func (cpu *LC3) Run(ctx context.Context) error {
	for cpu.MCR.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := cpu.Step(); err != nil {
			return err
		}
	}

	return ErrHalted
}
