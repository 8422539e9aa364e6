package vm

import (
	"bytes"
	"strings"
	"testing"
)

func newTrapCPU(in string, out *bytes.Buffer) *LC3 {
	return New(WithInput(NewBufferedSource(strings.NewReader(in))), WithOutput(out))
}

func TestTrapHALTStopsClock(t *testing.T) {
	cpu := newTrapCPU("", &bytes.Buffer{})

	if err := cpu.trapHALT(); err != nil {
		t.Fatalf("trapHALT: %v", err)
	}

	if cpu.MCR.Running() {
		t.Error("MCR still running after HALT")
	}
}

func TestTrapOUT(t *testing.T) {
	var out bytes.Buffer

	cpu := newTrapCPU("", &out)
	cpu.REG[R0] = Register('Q')

	if err := cpu.trapOUT(); err != nil {
		t.Fatalf("trapOUT: %v", err)
	}

	if got := out.String(); got != "Q" {
		t.Errorf("output = %q, want %q", got, "Q")
	}
}

func TestTrapGETC(t *testing.T) {
	var out bytes.Buffer

	cpu := newTrapCPU("Z", &out)

	if err := cpu.trapGETC(); err != nil {
		t.Fatalf("trapGETC: %v", err)
	}

	if cpu.REG[R0] != Register('Z') {
		t.Errorf("R0 = %#04x, want %#04x", uint16(cpu.REG[R0]), uint16('Z'))
	}

	if out.Len() != 0 {
		t.Errorf("GETC must not echo, got %q", out.String())
	}
}

func TestTrapIN(t *testing.T) {
	var out bytes.Buffer

	cpu := newTrapCPU("Y", &out)

	if err := cpu.trapIN(); err != nil {
		t.Fatalf("trapIN: %v", err)
	}

	if cpu.REG[R0] != Register('Y') {
		t.Errorf("R0 = %#04x, want %#04x", uint16(cpu.REG[R0]), uint16('Y'))
	}

	if got := out.String(); !strings.HasSuffix(got, "Y") {
		t.Errorf("IN must echo, got %q", got)
	}
}

func TestTrapPUTS(t *testing.T) {
	var out bytes.Buffer

	cpu := newTrapCPU("", &out)

	msg := "HI"
	base := Word(0x4000)

	for i, c := range msg {
		cpu.Mem.store(base+Word(i), Word(c))
	}

	cpu.Mem.store(base+Word(len(msg)), 0)
	cpu.REG[R0] = Register(base)

	if err := cpu.trapPUTS(); err != nil {
		t.Fatalf("trapPUTS: %v", err)
	}

	if got := out.String(); got != msg {
		t.Errorf("output = %q, want %q", got, msg)
	}
}

func TestTrapPUTSRejectsNonASCII(t *testing.T) {
	cpu := newTrapCPU("", &bytes.Buffer{})

	base := Word(0x4000)
	cpu.Mem.store(base, 0x0141) // high byte set: not a packed-ASCII word
	cpu.REG[R0] = Register(base)

	if err := cpu.trapPUTS(); err == nil {
		t.Fatal("trapPUTS: expected error for non-ASCII word")
	}
}

func TestTrapPUTSPMultiWord(t *testing.T) {
	var out bytes.Buffer

	cpu := newTrapCPU("", &out)

	base := Word(0x4000)
	cpu.Mem.store(base, 0x6261)   // "ab"
	cpu.Mem.store(base+1, 0x0063) // "c\0"
	cpu.REG[R0] = Register(base)

	if err := cpu.trapPUTSP(); err != nil {
		t.Fatalf("trapPUTSP: %v", err)
	}

	if got := out.String(); got != "abc" {
		t.Errorf("output = %q, want %q", got, "abc")
	}
}

func TestTrapPUTSPOddLength(t *testing.T) {
	var out bytes.Buffer

	cpu := newTrapCPU("", &out)

	base := Word(0x4000)
	cpu.Mem.store(base, 0x0061) // "a\0": terminates after the low byte
	cpu.REG[R0] = Register(base)

	if err := cpu.trapPUTSP(); err != nil {
		t.Fatalf("trapPUTSP: %v", err)
	}

	if got := out.String(); got != "a" {
		t.Errorf("output = %q, want %q", got, "a")
	}
}

func TestTrapDispatchViaExecute(t *testing.T) {
	var out bytes.Buffer

	cpu := newTrapCPU("", &out)
	cpu.REG[R0] = Register('!')
	cpu.PC = 0x3000
	cpu.Mem.store(0x3000, NewInstruction(TRAP, uint16(TrapOUT)).Encode())

	if err := cpu.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if got := out.String(); got != "!" {
		t.Errorf("output = %q, want %q", got, "!")
	}

	if cpu.REG[RETP] != 0x3001 {
		t.Errorf("R7 = %s, want 0x3001", cpu.REG[RETP])
	}
}

func TestTrapIllegalVector(t *testing.T) {
	cpu := newTrapCPU("", &bytes.Buffer{})
	cpu.PC = 0x3000
	cpu.Mem.store(0x3000, NewInstruction(TRAP, 0x99).Encode())

	if err := cpu.Step(); err == nil {
		t.Fatal("Step: expected error for illegal trap vector")
	}
}
