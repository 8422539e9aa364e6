package vm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func objectFile(t *testing.T, origin uint16, words ...uint16) *bytes.Buffer {
	t.Helper()

	buf := &bytes.Buffer{}

	if err := binary.Write(buf, binary.BigEndian, origin); err != nil {
		t.Fatalf("write origin: %v", err)
	}

	for _, w := range words {
		if err := binary.Write(buf, binary.BigEndian, w); err != nil {
			t.Fatalf("write word: %v", err)
		}
	}

	return buf
}

func TestLoadSetsOriginAndPC(t *testing.T) {
	cpu := New(WithInput(NewBufferedSource(nil)))
	file := objectFile(t, 0x3000, 0x1234, 0x5678)

	if err := cpu.Load(file); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cpu.PC != 0x3000 {
		t.Errorf("PC = %s, want 0x3000", cpu.PC)
	}

	v0, err := cpu.Mem.load(0x3000)
	if err != nil || v0 != 0x1234 {
		t.Errorf("mem[0x3000] = %#04x, err %v, want 0x1234", uint16(v0), err)
	}

	v1, err := cpu.Mem.load(0x3001)
	if err != nil || v1 != 0x5678 {
		t.Errorf("mem[0x3001] = %#04x, err %v, want 0x5678", uint16(v1), err)
	}
}

func TestLoadEmptyProgram(t *testing.T) {
	cpu := New(WithInput(NewBufferedSource(nil)))
	file := objectFile(t, 0x4000)

	if err := cpu.Load(file); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cpu.PC != 0x4000 {
		t.Errorf("PC = %s, want 0x4000", cpu.PC)
	}
}

func TestLoadTruncatedFileIsError(t *testing.T) {
	cpu := New(WithInput(NewBufferedSource(nil)))

	buf := &bytes.Buffer{}
	buf.WriteByte(0x30) // half an origin word

	if err := cpu.Load(buf); err == nil {
		t.Fatal("Load: expected error for truncated file")
	}
}

func TestLoadOverflowPastFFFFIsFatal(t *testing.T) {
	cpu := New(WithInput(NewBufferedSource(nil)))

	// Origin 0xFFFF plus two words: the second would land at 0x0000,
	// wrapping past the top of the address space.
	file := objectFile(t, 0xffff, 0x1111, 0x2222)

	err := cpu.Load(file)
	if !errors.Is(err, ErrLoadOverflow) {
		t.Fatalf("Load: err = %v, want ErrLoadOverflow", err)
	}

	// The word that would have wrapped into low memory must not be
	// written there.
	v, loadErr := cpu.Mem.load(0x0000)
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}

	if v != 0 {
		t.Errorf("mem[0x0000] = %#04x, want untouched 0x0000", uint16(v))
	}
}
