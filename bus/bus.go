// Package bus connects the console's memories to an inserted cartridge.
package bus

import (
	"fmt"

	"github.com/meadori/vibecart/cartridge"
	"github.com/meadori/vibecart/mapper"
)

// Space selects the CPU or PPU address space.
type Space int

const (
	CPU Space = iota
	PPU
)

func (s Space) String() string {
	if s == PPU {
		return "ppu"
	}
	return "cpu"
}

// Bus represents the system bus. It owns work RAM, the nametable VRAM
// shared with the cartridge, and palette RAM.
type Bus struct {
	ram     [2048]byte
	VRAM    mapper.VRAM
	palette [32]byte

	rom    *cartridge.ROM
	mapper mapper.Mapper
	opts   []mapper.Option
}

// New creates a new Bus instance. opts are passed to every board inserted.
func New(opts ...mapper.Option) *Bus {
	return &Bus{opts: opts}
}

// Insert instantiates the board for rom over the bus VRAM. On error the
// bus is left without a cartridge.
func (b *Bus) Insert(rom *cartridge.ROM) error {
	b.Eject()

	d, err := rom.Board()
	if err != nil {
		return err
	}
	m, err := d.New(&rom.Image, &b.VRAM, b.opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	b.rom = rom
	b.mapper = m
	return nil
}

// Eject drops the board instance. The ROM itself is owned by the caller.
func (b *Bus) Eject() {
	b.rom = nil
	b.mapper = nil
}

// HasCartridge reports whether a board is inserted.
func (b *Bus) HasCartridge() bool {
	return b.mapper != nil
}

// Mapper returns the inserted board, or nil.
func (b *Bus) Mapper() mapper.Mapper {
	return b.mapper
}

// MapperInfo returns the board's register view when it exposes one.
func (b *Bus) MapperInfo() (mapper.Info, bool) {
	if in, ok := b.mapper.(mapper.Inspector); ok {
		return in.Info(), true
	}
	return mapper.Info{}, false
}

// Err returns the board's fault, if any. Emulation must stop once it is set.
func (b *Bus) Err() error {
	if f, ok := b.mapper.(mapper.Faulter); ok {
		return f.Err()
	}
	return nil
}

// Read reads a byte from the CPU bus.
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr <= 0x1FFF:
		return b.ram[addr&0x07FF]
	case addr < 0x4020:
		// PPU, APU and I/O registers are not emulated here.
		return 0
	}
	if b.mapper == nil {
		return 0
	}
	return b.mapper.CPURead(addr)
}

// Write writes a byte to the CPU bus.
func (b *Bus) Write(addr uint16, data byte) {
	switch {
	case addr <= 0x1FFF:
		b.ram[addr&0x07FF] = data
		return
	case addr < 0x4020:
		return
	}
	if b.mapper != nil {
		b.mapper.CPUWrite(addr, data)
	}
}

// PPURead reads a byte from the PPU bus.
func (b *Bus) PPURead(addr uint16) byte {
	addr &= 0x3FFF
	if addr >= 0x3F00 {
		return b.palette[paletteIndex(addr)]
	}
	if b.mapper == nil {
		return 0
	}
	return b.mapper.PPURead(addr)
}

// PPUWrite writes a byte to the PPU bus.
func (b *Bus) PPUWrite(addr uint16, data byte) {
	addr &= 0x3FFF
	if addr >= 0x3F00 {
		b.palette[paletteIndex(addr)] = data
		return
	}
	if b.mapper != nil {
		b.mapper.PPUWrite(addr, data)
	}
}

// paletteIndex folds palette RAM mirrors: 32 bytes repeat through
// $3F00-$3FFF and the sprite backdrop entries alias the background ones.
func paletteIndex(addr uint16) uint16 {
	addr &= 0x001F
	if addr == 0x0010 || addr == 0x0014 || addr == 0x0018 || addr == 0x001C {
		addr -= 0x10
	}
	return addr
}

// GetMemoryBlock reads size bytes starting at addr from the given space,
// wrapping at the top of the 16-bit address space.
func (b *Bus) GetMemoryBlock(space Space, addr uint16, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		a := addr + uint16(i)
		if space == PPU {
			data[i] = b.PPURead(a)
		} else {
			data[i] = b.Read(a)
		}
	}
	return data
}
