package cartridge

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// UxROMState is the gob-encoded snapshot of a UxROM board.
type UxROMState struct {
	PrgBankSelect uint32
	CHRRAM        []byte
}

// Save implements mapper.Stater.
func (u *uxrom) Save() []byte {
	var buf bytes.Buffer
	s := UxROMState{PrgBankSelect: u.prgBankSelect}
	if u.chrRAM != nil {
		s.CHRRAM = make([]byte, len(u.chrRAM))
		copy(s.CHRRAM, u.chrRAM)
	}
	gob.NewEncoder(&buf).Encode(s)
	return buf.Bytes()
}

// Load implements mapper.Stater. Restoring a snapshot clears any fault.
func (u *uxrom) Load(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	var s UxROMState
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&s); err != nil {
		return err
	}
	if len(s.CHRRAM) != len(u.chrRAM) {
		return fmt.Errorf("uxrom: snapshot has %d bytes of CHR-RAM, board has %d", len(s.CHRRAM), len(u.chrRAM))
	}

	u.prgBankSelect = s.PrgBankSelect
	copy(u.chrRAM, s.CHRRAM)
	u.fault = nil
	return nil
}
