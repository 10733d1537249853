package mapper

import "fmt"

const (
	PRGBankSize = 0x4000 // 16KB
	CHRBankSize = 0x2000 // 8KB
	CHRRAMSize  = 0x2000
	VRAMSize    = 0x800
)

// VRAM is the console's 2KB of nametable memory. The console owns it and
// hands boards a pointer; boards only compute offsets into it.
type VRAM [VRAMSize]byte

// Image is a read-only cartridge image: PRG ROM followed by CHR ROM, with
// their locations inside Data.
type Image struct {
	Data []byte

	// Flags6 is byte 6 of the iNES header. Its low bits carry the
	// nametable mirroring.
	Flags6 byte

	PRGStart int
	PRGLen   int
	CHRStart int
	CHRLen   int // 0 means the board supplies CHR-RAM
}

// Mirroring returns the mirroring mode encoded in the header.
func (img *Image) Mirroring() Mirroring {
	return MirroringFromHeader(img.Flags6)
}

// PRGBanks returns the number of 16KB PRG banks.
func (img *Image) PRGBanks() int {
	return img.PRGLen / PRGBankSize
}

// Validate checks that the geometry is well formed and fits inside Data.
func (img *Image) Validate() error {
	switch {
	case img.PRGLen <= 0:
		return fmt.Errorf("%w: PRG ROM is empty", ErrGeometry)
	case img.PRGLen%PRGBankSize != 0:
		return fmt.Errorf("%w: PRG length $%X is not a multiple of 16KB", ErrGeometry, img.PRGLen)
	case img.CHRLen < 0 || img.CHRLen%CHRBankSize != 0:
		return fmt.Errorf("%w: CHR length $%X is not a multiple of 8KB", ErrGeometry, img.CHRLen)
	case img.PRGStart < 0 || img.PRGStart+img.PRGLen > len(img.Data):
		return fmt.Errorf("%w: PRG ROM [$%X,$%X) outside image of $%X bytes", ErrGeometry, img.PRGStart, img.PRGStart+img.PRGLen, len(img.Data))
	case img.CHRLen > 0 && (img.CHRStart < 0 || img.CHRStart+img.CHRLen > len(img.Data)):
		return fmt.Errorf("%w: CHR ROM [$%X,$%X) outside image of $%X bytes", ErrGeometry, img.CHRStart, img.CHRStart+img.CHRLen, len(img.Data))
	}
	return nil
}
