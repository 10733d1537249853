package cartridge

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/meadori/vibecart/mapper"
)

const (
	headerSize  = 16
	trainerSize = 512
)

// ROM is a parsed iNES file. Image.Data aliases the bytes the ROM was
// parsed from; for ROMs returned by Open that is a read-only mapping.
type ROM struct {
	Image    mapper.Image
	MapperID uint16
	Trainer  bool
	Battery  bool

	file *os.File
	mm   mmap.MMap
}

// Parse reads the iNES header in data and locates PRG and CHR ROM inside it.
// data is not copied.
func Parse(data []byte) (*ROM, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("file is too small to be a valid NES ROM")
	}

	// Verify iNES header signature
	if data[0] != 'N' || data[1] != 'E' || data[2] != 'S' || data[3] != 0x1A {
		return nil, fmt.Errorf("invalid NES ROM format: missing iNES signature")
	}

	r := &ROM{
		MapperID: uint16(data[6]>>4) | uint16(data[7]&0xF0),
		Trainer:  data[6]&0x04 != 0,
		Battery:  data[6]&0x02 != 0,
	}

	offset := headerSize
	if r.Trainer {
		offset += trainerSize
	}

	prgLen := int(data[4]) * mapper.PRGBankSize
	chrLen := int(data[5]) * mapper.CHRBankSize
	r.Image = mapper.Image{
		Data:     data,
		Flags6:   data[6],
		PRGStart: offset,
		PRGLen:   prgLen,
		CHRStart: offset + prgLen,
		CHRLen:   chrLen,
	}

	if err := r.Image.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Open memory-maps the iNES file at path and parses it in place. The
// mapping stays valid until Close.
func Open(path string) (*ROM, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if fi.Size() < headerSize {
		file.Close()
		return nil, fmt.Errorf("%s: file is too small to be a valid NES ROM", path)
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r, err := Parse(m)
	if err != nil {
		m.Unmap()
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.file = file
	r.mm = m
	return r, nil
}

// Mirroring returns the nametable mirroring from the header.
func (r *ROM) Mirroring() mapper.Mirroring {
	return r.Image.Mirroring()
}

// Board returns the registered board for the ROM's mapper number.
func (r *ROM) Board() (mapper.Descriptor, error) {
	return mapper.ForID(r.MapperID)
}

// Close releases the file mapping. The ROM's image must not be used
// afterwards.
func (r *ROM) Close() error {
	var errs []error
	if r.mm != nil {
		errs = append(errs, r.mm.Unmap())
		r.mm = nil
	}
	if r.file != nil {
		errs = append(errs, r.file.Close())
		r.file = nil
	}
	r.Image.Data = nil
	return errors.Join(errs...)
}
