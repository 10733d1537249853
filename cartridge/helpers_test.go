package cartridge

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/meadori/vibecart/mapper"
)

// buildROM returns an iNES file for mapper 2 with pseudo-random PRG and CHR
// contents. The first byte of each PRG bank is $A0+bank so bank switches
// are easy to spot.
func buildROM(prgBanks, chrBanks int, flags6 byte) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, byte(prgBanks), byte(chrBanks), 0x20 | flags6, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	body := make([]byte, prgBanks*mapper.PRGBankSize+chrBanks*mapper.CHRBankSize)
	rand.New(rand.NewSource(int64(prgBanks*31 + chrBanks))).Read(body)
	for b := 0; b < prgBanks; b++ {
		body[b*mapper.PRGBankSize] = 0xA0 + byte(b)
	}
	return append(header, body...)
}

func newTestBoard(t *testing.T, prgBanks, chrBanks int, flags6 byte, opts ...mapper.Option) (*uxrom, *ROM, *mapper.VRAM) {
	t.Helper()
	rom, err := Parse(buildROM(prgBanks, chrBanks, flags6))
	if err != nil {
		t.Fatal(err)
	}
	vram := &mapper.VRAM{}
	opts = append([]mapper.Option{mapper.WithLogger(mapper.Discard)}, opts...)
	m, err := NewUxROM(&rom.Image, vram, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return m.(*uxrom), rom, vram
}

type recorder struct {
	lines []string
}

func (r *recorder) Printf(format string, v ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}
