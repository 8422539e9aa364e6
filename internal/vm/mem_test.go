package vm

import "testing"

func TestMemoryFetchStore(t *testing.T) {
	mem := NewMemory()

	mem.MAR = 0x3000
	mem.MDR = 0x1234

	if err := mem.Store(); err != nil {
		t.Fatalf("Store: %v", err)
	}

	mem.MAR = 0x3000
	mem.MDR = 0

	if err := mem.Fetch(); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if mem.MDR != 0x1234 {
		t.Errorf("MDR = %#04x, want 0x1234", uint16(mem.MDR))
	}
}

func TestMemoryUnmappedIOPageIsOrdinaryStorage(t *testing.T) {
	mem := NewMemory()

	// 0xfe08 is inside the conventional I/O page but has no device
	// registered; it must behave as plain storage (§3).
	addr := Word(0xfe08)

	if err := mem.store(addr, 0x5a5a); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := mem.load(addr)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got != 0x5a5a {
		t.Errorf("load(%s) = %#04x, want 0x5a5a", addr, uint16(got))
	}
}

func TestMemoryMappedAddressDispatchesToDevice(t *testing.T) {
	mem := NewMemory()
	mem.devices.Map(map[Word]any{MCRAddr: &stubDevice{word: 0x8000}})

	got, err := mem.load(MCRAddr)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got != 0x8000 {
		t.Errorf("load(MCRAddr) = %#04x, want 0x8000", uint16(got))
	}
}

type stubDevice struct {
	word Word
}

func (s *stubDevice) Read(Word) (Word, error) { return s.word, nil }
func (s *stubDevice) Write(_ Word, v Register) error {
	s.word = Word(v)
	return nil
}
