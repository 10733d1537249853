package cartridge

import (
	"testing"
)

func TestUxROMSaveLoad(t *testing.T) {
	u, _, _ := newTestBoard(t, 4, 0, 0)
	u.CPUWrite(0x8000, 3)
	u.PPUWrite(0x0123, 0x42)
	snap := u.Save()

	u.CPUWrite(0x8000, 9) // out of range
	u.CPURead(0x8000)
	u.PPUWrite(0x0123, 0x00)
	if u.Err() == nil {
		t.Fatal("Expected a fault before restoring")
	}

	if err := u.Load(snap); err != nil {
		t.Fatal(err)
	}
	if got := u.CPURead(0x8000); got != 0xA3 {
		t.Errorf("Expected bank 3 after restore, got $%02X", got)
	}
	if got := u.PPURead(0x0123); got != 0x42 {
		t.Errorf("Expected CHR-RAM restored, got $%02X", got)
	}
	if u.Err() != nil {
		t.Errorf("Expected restore to clear the fault, got %v", u.Err())
	}
}

func TestUxROMLoadMismatch(t *testing.T) {
	withRAM, _, _ := newTestBoard(t, 2, 0, 0)
	withROM, _, _ := newTestBoard(t, 2, 1, 0)

	if err := withROM.Load(withRAM.Save()); err == nil {
		t.Errorf("Expected CHR-RAM snapshot to be rejected by a CHR ROM board")
	}
	if err := withRAM.Load([]byte("garbage")); err == nil {
		t.Errorf("Expected a decode error")
	}
	if err := withRAM.Load(nil); err != nil {
		t.Errorf("Expected empty snapshot to be a no-op, got %v", err)
	}
}
