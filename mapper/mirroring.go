package mapper

import "fmt"

// Mirroring is the nametable arrangement a cartridge wires up.
type Mirroring byte

// Mirroring types
const (
	Horizontal Mirroring = 0
	Vertical   Mirroring = 1
)

// Flags6 bit 0 selects vertical mirroring and bit 3 asks for four-screen
// VRAM on the cartridge. Keeping bit 3 in the mask means four-screen
// images decode to a mode the console's 2KB cannot serve.
const headerMirrorMask = 0x09

// MirroringFromHeader decodes the mirroring bits of iNES header byte 6.
func MirroringFromHeader(flags6 byte) Mirroring {
	return Mirroring(flags6 & headerMirrorMask)
}

func (m Mirroring) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	case 0x08, 0x09:
		return "four-screen"
	}
	return fmt.Sprintf("Mirroring(%d)", byte(m))
}

// Validate reports whether the mode can be served from the console VRAM.
func (m Mirroring) Validate() error {
	switch m {
	case Horizontal, Vertical:
		return nil
	}
	return fmt.Errorf("%w: %v", ErrMirroring, m)
}

// NametableOffset maps a PPU address in $2000-$3EFF to an offset in VRAM.
// $3000-$3EFF mirrors $2000-$2EFF. Callers must have validated the mode;
// an unsupported one panics.
func (m Mirroring) NametableOffset(addr uint16) int {
	if addr >= 0x3000 {
		addr -= 0x1000
	}

	switch m {
	case Horizontal:
		// $2000/$2400 share the first table, $2800/$2C00 the second
		off := int(addr & 0x3FF)
		if addr >= 0x2800 {
			off += 0x400
		}
		return off
	case Vertical:
		return int(addr & 0x7FF)
	}
	panic(fmt.Sprintf("mapper: nametable decode with %v mirroring", m))
}
