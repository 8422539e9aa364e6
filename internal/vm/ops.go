package vm

// ops.go implements one operation type per opcode. Each type implements
// whichever of the staged interfaces (addressable, fetchable, executable,
// storable) its opcode requires; Decode selects the concrete type and the
// instruction cycle drives it stage by stage.

import "fmt"

// br is BR: conditionally set PC to PC + SEXT(OFFSET9).
type br struct {
	cond Condition
	addr Word
}

func (o *br) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.PC) + cpu.IR.Offset(OFFSET9)
}

func (o *br) Execute(cpu *LC3) {
	if o.cond&cpu.COND != 0 {
		cpu.PC = ProgramCounter(o.addr)
	}
}

// add is ADD: DR = SR1 + SR2, register mode.
type add struct {
	dr       GPR
	sr1, sr2 GPR
	result   Register
}

func (o *add) FetchOperands(cpu *LC3) {
	o.result = cpu.REG[o.sr1] + cpu.REG[o.sr2]
}

func (o *add) Execute(cpu *LC3) {
	cpu.COND.Update(o.result)
}

func (o *add) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = o.result
}

// addImm is ADD: DR = SR1 + SEXT(IMM5), immediate mode.
type addImm struct {
	dr     GPR
	sr1    GPR
	imm    Word
	result Register
}

func (o *addImm) FetchOperands(cpu *LC3) {
	o.result = cpu.REG[o.sr1] + Register(o.imm)
}

func (o *addImm) Execute(cpu *LC3) {
	cpu.COND.Update(o.result)
}

func (o *addImm) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = o.result
}

// and is AND: DR = SR1 & SR2, register mode.
type and struct {
	dr       GPR
	sr1, sr2 GPR
	result   Register
}

func (o *and) FetchOperands(cpu *LC3) {
	o.result = cpu.REG[o.sr1] & cpu.REG[o.sr2]
}

func (o *and) Execute(cpu *LC3) {
	cpu.COND.Update(o.result)
}

func (o *and) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = o.result
}

// andImm is AND: DR = SR1 & SEXT(IMM5), immediate mode.
type andImm struct {
	dr     GPR
	sr1    GPR
	imm    Word
	result Register
}

func (o *andImm) FetchOperands(cpu *LC3) {
	o.result = cpu.REG[o.sr1] & Register(o.imm)
}

func (o *andImm) Execute(cpu *LC3) {
	cpu.COND.Update(o.result)
}

func (o *andImm) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = o.result
}

// not is NOT: DR = ~SR.
type not struct {
	dr, sr GPR
	result Register
}

func (o *not) FetchOperands(cpu *LC3) {
	o.result = ^cpu.REG[o.sr]
}

func (o *not) Execute(cpu *LC3) {
	cpu.COND.Update(o.result)
}

func (o *not) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = o.result
}

// ld is LD: DR = mem[PC + SEXT(OFFSET9)].
type ld struct {
	dr   GPR
	addr Word
	data Register
}

func (o *ld) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.PC) + cpu.IR.Offset(OFFSET9)
}

func (o *ld) FetchOperands(cpu *LC3) {
	cpu.Mem.MAR = Register(o.addr)
	cpu.fatal(cpu.Mem.Fetch())
	o.data = cpu.Mem.MDR
}

func (o *ld) Execute(cpu *LC3) {
	cpu.COND.Update(o.data)
}

func (o *ld) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = o.data
}

// ldi is LDI: DR = mem[mem[PC + SEXT(OFFSET9)]].
type ldi struct {
	dr   GPR
	addr Word
	ptr  Word
	data Register
}

func (o *ldi) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.PC) + cpu.IR.Offset(OFFSET9)
}

func (o *ldi) FetchOperands(cpu *LC3) {
	cpu.Mem.MAR = Register(o.addr)
	cpu.fatal(cpu.Mem.Fetch())
	o.ptr = Word(cpu.Mem.MDR)

	cpu.Mem.MAR = Register(o.ptr)
	cpu.fatal(cpu.Mem.Fetch())
	o.data = cpu.Mem.MDR
}

func (o *ldi) Execute(cpu *LC3) {
	cpu.COND.Update(o.data)
}

func (o *ldi) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = o.data
}

// ldr is LDR: DR = mem[BaseR + SEXT(OFFSET6)].
type ldr struct {
	dr   GPR
	base GPR
	addr Word
	data Register
}

func (o *ldr) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.REG[o.base]) + cpu.IR.Offset(OFFSET6)
}

func (o *ldr) FetchOperands(cpu *LC3) {
	cpu.Mem.MAR = Register(o.addr)
	cpu.fatal(cpu.Mem.Fetch())
	o.data = cpu.Mem.MDR
}

func (o *ldr) Execute(cpu *LC3) {
	cpu.COND.Update(o.data)
}

func (o *ldr) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = o.data
}

// lea is LEA: DR = PC + SEXT(OFFSET9). Condition codes are set from the
// computed address itself, not a memory load.
type lea struct {
	dr   GPR
	addr Word
}

func (o *lea) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.PC) + cpu.IR.Offset(OFFSET9)
}

func (o *lea) Execute(cpu *LC3) {
	cpu.COND.Update(Register(o.addr))
}

func (o *lea) Writeback(cpu *LC3) {
	cpu.REG[o.dr] = Register(o.addr)
}

// st is ST: mem[PC + SEXT(OFFSET9)] = SR.
type st struct {
	sr   GPR
	addr Word
}

func (o *st) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.PC) + cpu.IR.Offset(OFFSET9)
}

func (o *st) Execute(cpu *LC3) {}

func (o *st) Writeback(cpu *LC3) {
	cpu.Mem.MAR = Register(o.addr)
	cpu.Mem.MDR = cpu.REG[o.sr]
	cpu.fatal(cpu.Mem.Store())
}

// sti is STI: mem[mem[PC + SEXT(OFFSET9)]] = SR.
type sti struct {
	sr   GPR
	addr Word
	ptr  Word
}

func (o *sti) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.PC) + cpu.IR.Offset(OFFSET9)
}

func (o *sti) FetchOperands(cpu *LC3) {
	cpu.Mem.MAR = Register(o.addr)
	cpu.fatal(cpu.Mem.Fetch())
	o.ptr = Word(cpu.Mem.MDR)
}

func (o *sti) Execute(cpu *LC3) {}

func (o *sti) Writeback(cpu *LC3) {
	cpu.Mem.MAR = Register(o.ptr)
	cpu.Mem.MDR = cpu.REG[o.sr]
	cpu.fatal(cpu.Mem.Store())
}

// str is STR: mem[BaseR + SEXT(OFFSET6)] = SR.
type str struct {
	sr   GPR
	base GPR
	addr Word
}

func (o *str) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.REG[o.base]) + cpu.IR.Offset(OFFSET6)
}

func (o *str) Execute(cpu *LC3) {}

func (o *str) Writeback(cpu *LC3) {
	cpu.Mem.MAR = Register(o.addr)
	cpu.Mem.MDR = cpu.REG[o.sr]
	cpu.fatal(cpu.Mem.Store())
}

// jmp is JMP (and its special case RET, BaseR == R7): PC = BaseR.
type jmp struct {
	base GPR
}

func (o *jmp) Execute(cpu *LC3) {
	cpu.PC = ProgramCounter(cpu.REG[o.base])
}

// jsr is JSR: R7 = PC; PC = PC + SEXT(OFFSET11).
type jsr struct {
	addr Word
}

func (o *jsr) EvalAddress(cpu *LC3) {
	o.addr = Word(cpu.PC) + cpu.IR.Offset(OFFSET11)
}

func (o *jsr) Execute(cpu *LC3) {
	cpu.REG[RETP] = Register(cpu.PC)
	cpu.PC = ProgramCounter(o.addr)
}

// jsrr is JSRR: R7 = PC; PC = BaseR.
type jsrr struct {
	base GPR
}

func (o *jsrr) Execute(cpu *LC3) {
	target := cpu.REG[o.base]
	cpu.REG[RETP] = Register(cpu.PC)
	cpu.PC = ProgramCounter(target)
}

// trap is TRAP: R7 = PC; PC = mem[ZEXT(VECTOR8)]. In this machine, rather
// than jumping into a loaded service-routine image, the vector selects a
// Go function registered in the CPU's trap table (§5).
type trap struct {
	vector TrapVector
}

func (o *trap) Execute(cpu *LC3) {
	cpu.REG[RETP] = Register(cpu.PC)

	routine, ok := cpu.traps[o.vector]
	if !ok {
		cpu.fatal(fmt.Errorf("%w: %#02x", ErrIllegalTrap, uint8(o.vector)))
		return
	}

	cpu.fatal(routine(cpu))
}

// rti is RTI: return from interrupt. This machine never enters interrupt
// processing, so encountering RTI in ordinary control flow is always an
// error (§3, Non-goals).
type rti struct{}

func (o *rti) Execute(cpu *LC3) {
	cpu.fatal(ErrNotImplemented)
}

// resv is the reserved opcode 0b1101. Decoding it is not itself an error;
// executing it is (§3).
type resv struct{}

func (o *resv) Execute(cpu *LC3) {
	cpu.fatal(ErrIllegalOpcode)
}
