package mapper

import (
	"errors"
	"testing"
)

func TestMirroringFromHeader(t *testing.T) {
	tests := []struct {
		flags6 byte
		want   Mirroring
	}{
		{0x00, Horizontal},
		{0x01, Vertical},
		{0x21, Vertical},   // mapper nibble ignored
		{0x02, Horizontal}, // battery bit ignored
		{0x04, Horizontal}, // trainer bit ignored
		{0x08, Mirroring(0x08)},
		{0x09, Mirroring(0x09)},
	}
	for _, tt := range tests {
		if got := MirroringFromHeader(tt.flags6); got != tt.want {
			t.Errorf("MirroringFromHeader($%02X) = %v, want %v", tt.flags6, got, tt.want)
		}
	}
}

func TestMirroringValidate(t *testing.T) {
	if err := Horizontal.Validate(); err != nil {
		t.Errorf("horizontal: %v", err)
	}
	if err := Vertical.Validate(); err != nil {
		t.Errorf("vertical: %v", err)
	}
	for _, m := range []Mirroring{0x08, 0x09, 0x02, 0xFF} {
		if err := m.Validate(); !errors.Is(err, ErrMirroring) {
			t.Errorf("%v: expected ErrMirroring, got %v", m, err)
		}
	}
}

func TestNametableOffset(t *testing.T) {
	tests := []struct {
		m    Mirroring
		addr uint16
		want int
	}{
		{Horizontal, 0x2000, 0x000},
		{Horizontal, 0x23FF, 0x3FF},
		{Horizontal, 0x2400, 0x000},
		{Horizontal, 0x27FF, 0x3FF},
		{Horizontal, 0x2800, 0x400},
		{Horizontal, 0x2C00, 0x400},
		{Horizontal, 0x2FFF, 0x7FF},
		{Horizontal, 0x3000, 0x000},
		{Horizontal, 0x3800, 0x400},
		{Horizontal, 0x3EFF, 0x6FF},
		{Vertical, 0x2000, 0x000},
		{Vertical, 0x2400, 0x400},
		{Vertical, 0x2800, 0x000},
		{Vertical, 0x2C00, 0x400},
		{Vertical, 0x2FFF, 0x7FF},
		{Vertical, 0x3000, 0x000},
		{Vertical, 0x3400, 0x400},
		{Vertical, 0x3EFF, 0x6FF},
	}
	for _, tt := range tests {
		if got := tt.m.NametableOffset(tt.addr); got != tt.want {
			t.Errorf("%v NametableOffset($%04X) = $%03X, want $%03X", tt.m, tt.addr, got, tt.want)
		}
	}
}

func TestNametableOffsetInRange(t *testing.T) {
	for _, m := range []Mirroring{Horizontal, Vertical} {
		for addr := uint16(0x2000); addr <= 0x3EFF; addr++ {
			if off := m.NametableOffset(addr); off < 0 || off >= VRAMSize {
				t.Fatalf("%v: $%04X decoded to $%X, outside VRAM", m, addr, off)
			}
		}
	}
}

func TestNametableOffsetUnsupportedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expected four-screen decode to panic")
		}
	}()
	Mirroring(0x08).NametableOffset(0x2000)
}

func TestMirroringString(t *testing.T) {
	if s := Horizontal.String(); s != "horizontal" {
		t.Errorf("got %q", s)
	}
	if s := Mirroring(0x09).String(); s != "four-screen" {
		t.Errorf("got %q", s)
	}
	if s := Mirroring(0x42).String(); s != "Mirroring(66)" {
		t.Errorf("got %q", s)
	}
}
