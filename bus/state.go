package bus

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	"github.com/meadori/vibecart/mapper"
)

type State struct {
	Ram     [2048]byte
	VRAM    mapper.VRAM
	Palette [32]byte
	Board   string
	Mapper  []byte
}

// SaveState saves the bus and board state to a file.
func (b *Bus) SaveState(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	s := State{
		Ram:     b.ram,
		VRAM:    b.VRAM,
		Palette: b.palette,
	}

	if info, ok := b.MapperInfo(); ok {
		s.Board = info.Name
	}
	if st, ok := b.mapper.(mapper.Stater); ok {
		s.Mapper = st.Save()
	}

	if err := gob.NewEncoder(file).Encode(s); err != nil {
		return err
	}
	return file.Close()
}

// LoadState loads the bus and board state from a file.
func (b *Bus) LoadState(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	var s State
	if err := gob.NewDecoder(file).Decode(&s); err != nil {
		return err
	}

	if len(s.Mapper) > 0 {
		st, ok := b.mapper.(mapper.Stater)
		if !ok {
			return errors.New("state has board data but the inserted cartridge can't restore it")
		}
		if info, ok := b.MapperInfo(); ok && s.Board != "" && info.Name != s.Board {
			return fmt.Errorf("state was saved from a %s board, inserted board is %s", s.Board, info.Name)
		}
		if err := st.Load(s.Mapper); err != nil {
			return err
		}
	}

	b.ram = s.Ram
	b.VRAM = s.VRAM
	b.palette = s.Palette
	return nil
}
