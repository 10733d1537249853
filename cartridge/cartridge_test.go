package cartridge

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/meadori/vibecart/mapper"
)

func TestParse(t *testing.T) {
	data := buildROM(2, 1, 0x01)

	rom, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	if rom.Image.PRGStart != 16 {
		t.Errorf("Expected PRG to start at 16, but got %d", rom.Image.PRGStart)
	}
	if rom.Image.PRGLen != 2*16384 {
		t.Errorf("Expected PRG length to be %d, but got %d", 2*16384, rom.Image.PRGLen)
	}
	if rom.Image.CHRStart != 16+2*16384 {
		t.Errorf("Expected CHR to start at %d, but got %d", 16+2*16384, rom.Image.CHRStart)
	}
	if rom.Image.CHRLen != 1*8192 {
		t.Errorf("Expected CHR length to be %d, but got %d", 1*8192, rom.Image.CHRLen)
	}
	if rom.MapperID != 2 {
		t.Errorf("Expected mapper to be 2, but got %d", rom.MapperID)
	}
	if rom.Mirroring() != mapper.Vertical {
		t.Errorf("Expected vertical mirroring, but got %v", rom.Mirroring())
	}
	if &rom.Image.Data[0] != &data[0] {
		t.Errorf("Expected image to alias the input buffer")
	}

	d, err := rom.Board()
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "UxROM" {
		t.Errorf("Expected UxROM board, but got %q", d.Name)
	}
}

func TestParseTrainer(t *testing.T) {
	data := buildROM(1, 0, 0x04)
	// Splice a 512-byte trainer between header and PRG.
	withTrainer := append(append(append([]byte{}, data[:16]...), make([]byte, 512)...), data[16:]...)

	rom, err := Parse(withTrainer)
	if err != nil {
		t.Fatal(err)
	}
	if !rom.Trainer {
		t.Errorf("Expected trainer flag")
	}
	if rom.Image.PRGStart != 16+512 {
		t.Errorf("Expected PRG to start after the trainer, got %d", rom.Image.PRGStart)
	}
	if rom.Image.Data[rom.Image.PRGStart] != 0xA0 {
		t.Errorf("Expected first PRG byte $A0, got $%02X", rom.Image.Data[rom.Image.PRGStart])
	}
}

func TestParseErrors(t *testing.T) {
	good := buildROM(2, 0, 0)

	noPRG := append([]byte{}, good...)
	noPRG[4] = 0

	badMagic := append([]byte{}, good...)
	badMagic[3] = 0

	tests := []struct {
		name     string
		data     []byte
		geometry bool
	}{
		{"short", good[:8], false},
		{"bad magic", badMagic, false},
		{"no prg", noPRG, true},
		{"truncated", good[:len(good)-1], true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.geometry && !errors.Is(err, mapper.ErrGeometry) {
				t.Errorf("Expected ErrGeometry, got %v", err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.nes")
	if err := os.WriteFile(path, buildROM(4, 0, 0x00), 0o644); err != nil {
		t.Fatal(err)
	}

	rom, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if rom.Image.PRGLen != 4*16384 {
		t.Errorf("Expected PRG length %d, got %d", 4*16384, rom.Image.PRGLen)
	}
	if got := rom.Image.Data[rom.Image.PRGStart+3*16384]; got != 0xA3 {
		t.Errorf("Expected last bank marker $A3, got $%02X", got)
	}
	if err := rom.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if rom.Image.Data != nil {
		t.Errorf("Expected Close to drop the image")
	}
	if err := rom.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(filepath.Join(dir, "missing.nes")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}

	tiny := filepath.Join(dir, "tiny.nes")
	if err := os.WriteFile(tiny, []byte("NES"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(tiny); err == nil {
		t.Errorf("Expected an error for a 3-byte file")
	}

	truncated := filepath.Join(dir, "truncated.nes")
	data := buildROM(2, 1, 0)
	if err := os.WriteFile(truncated, data[:len(data)-100], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(truncated); !errors.Is(err, mapper.ErrGeometry) {
		t.Errorf("Expected ErrGeometry, got %v", err)
	}
}
