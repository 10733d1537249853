package cartridge

import (
	"fmt"

	"github.com/meadori/vibecart/mapper"
)

func init() {
	mapper.Register(mapper.Descriptor{
		Name: "UxROM",
		IDs:  []uint16{2},
		New:  NewUxROM,
	})
}

// uxrom represents Mapper 2 (UxROM).
// It features a switchable 16KB PRG ROM bank at $8000-$BFFF
// and a fixed 16KB PRG ROM bank at $C000-$FFFF (the last bank).
// Boards without CHR ROM get 8KB of unbanked CHR-RAM.
type uxrom struct {
	img    *mapper.Image
	vram   *mapper.VRAM
	mirror mapper.Mirroring
	chrRAM []byte // nil when the image has CHR ROM

	// Whatever was last written to $8000-$FFFF. It is deliberately not
	// masked to the bank count; reads check it against PRGLen instead.
	prgBankSelect uint32
	fault         error

	log   mapper.Logger
	trace mapper.Logger
}

// NewUxROM creates a UxROM board over img, using vram for nametables.
func NewUxROM(img *mapper.Image, vram *mapper.VRAM, opts ...mapper.Option) (mapper.Mapper, error) {
	if vram == nil {
		return nil, fmt.Errorf("uxrom: %w", mapper.ErrNoVRAM)
	}
	if img == nil {
		return nil, fmt.Errorf("uxrom: %w: no image", mapper.ErrGeometry)
	}
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("uxrom: %w", err)
	}
	mirror := img.Mirroring()
	if err := mirror.Validate(); err != nil {
		return nil, fmt.Errorf("uxrom: %w", err)
	}

	cfg := mapper.NewConfig(opts...)
	u := &uxrom{
		img:    img,
		vram:   vram,
		mirror: mirror,
		log:    cfg.Logger,
		trace:  cfg.Trace,
	}
	if img.CHRLen == 0 {
		u.chrRAM = make([]byte, mapper.CHRRAMSize)
	}
	return u, nil
}

// CPURead implements the Mapper interface for CPU reads.
func (u *uxrom) CPURead(addr uint16) byte {
	if u.trace != nil {
		u.trace.Printf("uxrom: CPU read $%04X", addr)
	}

	switch {
	case addr >= 0x8000 && addr <= 0xBFFF:
		// Switchable 16KB bank
		off := int(u.prgBankSelect)*mapper.PRGBankSize + int(addr-0x8000)
		if off >= u.img.PRGLen {
			u.bankFault(addr)
			return 0
		}
		return u.img.Data[u.img.PRGStart+off]
	case addr >= 0xC000:
		// Fixed last 16KB bank
		off := u.img.PRGLen - mapper.PRGBankSize + int(addr-0xC000)
		return u.img.Data[u.img.PRGStart+off]
	}

	u.log.Printf("uxrom: CPU address $%04X not mapped", addr)
	return 0
}

// CPUWrite implements the Mapper interface for CPU writes.
func (u *uxrom) CPUWrite(addr uint16, data byte) {
	if u.trace != nil {
		u.trace.Printf("uxrom: CPU write $%04X=$%02X", addr, data)
	}

	if addr >= 0x8000 {
		// Bank select written to any address in $8000-$FFFF
		u.prgBankSelect = uint32(data)
		return
	}

	u.log.Printf("uxrom: CPU address $%04X not mapped", addr)
}

// PPURead implements the Mapper interface for PPU reads.
func (u *uxrom) PPURead(addr uint16) byte {
	if u.trace != nil {
		u.trace.Printf("uxrom: PPU read $%04X", addr)
	}

	switch {
	case addr <= 0x1FFF:
		if u.chrRAM != nil {
			return u.chrRAM[addr]
		}
		return u.img.Data[u.img.CHRStart+int(addr)]
	case addr <= 0x3EFF:
		return u.vram[u.mirror.NametableOffset(addr)]
	}

	u.log.Printf("uxrom: PPU address $%04X not mapped", addr)
	return 0
}

// PPUWrite implements the Mapper interface for PPU writes.
func (u *uxrom) PPUWrite(addr uint16, data byte) {
	if u.trace != nil {
		u.trace.Printf("uxrom: PPU write $%04X=$%02X", addr, data)
	}

	switch {
	case addr <= 0x1FFF:
		if u.chrRAM == nil {
			u.log.Printf("uxrom: ignored write $%02X to CHR ROM at $%04X", data, addr)
			return
		}
		u.chrRAM[addr] = data
		return
	case addr <= 0x3EFF:
		u.vram[u.mirror.NametableOffset(addr)] = data
		return
	}

	u.log.Printf("uxrom: PPU address $%04X not mapped", addr)
}

// Err returns the first bank fault seen, if any. A faulted board keeps
// answering reads with 0; the console is expected to stop.
func (u *uxrom) Err() error {
	return u.fault
}

// Info implements mapper.Inspector.
func (u *uxrom) Info() mapper.Info {
	return mapper.Info{
		Name:      "UxROM",
		Mirroring: u.mirror,
		Bank:      int(u.prgBankSelect),
		Banks:     u.img.PRGBanks(),
		CHRRAM:    u.chrRAM != nil,
	}
}

func (u *uxrom) bankFault(addr uint16) {
	err := fmt.Errorf("%w: bank %d of %d selected, CPU read $%04X", mapper.ErrBankOutOfRange, u.prgBankSelect, u.img.PRGBanks(), addr)
	if u.fault == nil {
		u.fault = err
	}
	u.log.Printf("uxrom: %v", err)
}
