// Package mapper defines the contract between the console and a cartridge
// board, plus the registry used to pick a board for a loaded image.
package mapper

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrGeometry       = errors.New("invalid ROM geometry")
	ErrMirroring      = errors.New("unsupported mirroring mode")
	ErrNoVRAM         = errors.New("no video RAM attached")
	ErrUnknownMapper  = errors.New("unknown mapper")
	ErrBankOutOfRange = errors.New("bank out of range")
)

// Mapper defines the interface every cartridge board implements.
// None of the methods fail; accesses outside a board's windows read 0,
// drop writes and are reported through the board's Logger.
type Mapper interface {
	CPURead(addr uint16) byte
	CPUWrite(addr uint16, data byte)
	PPURead(addr uint16) byte
	PPUWrite(addr uint16, data byte)
}

// Faulter is implemented by boards that can hit a fatal resolution fault,
// such as a bank register selecting past the end of PRG ROM.
type Faulter interface {
	Err() error
}

// Inspector is implemented by boards that expose their register state.
type Inspector interface {
	Info() Info
}

// Stater is implemented by boards whose state can be snapshotted.
type Stater interface {
	Save() []byte
	Load(b []byte) error
}

// Info is a read-only view of a board's state for debuggers.
type Info struct {
	Name      string
	Mirroring Mirroring
	Bank      int
	Banks     int
	CHRRAM    bool
}

// Factory creates a board instance over a validated image and the
// console's video RAM.
type Factory func(img *Image, vram *VRAM, opts ...Option) (Mapper, error)

// Descriptor describes a registered board.
type Descriptor struct {
	Name string
	IDs  []uint16 // iNES mapper numbers
	New  Factory
}

var (
	mu     sync.RWMutex
	byName = map[string]Descriptor{}
	byID   = map[uint16]Descriptor{}
)

// Register adds a board to the registry. It panics on duplicate names
// or iNES ids, so it is meant to be called from init functions.
func Register(d Descriptor) {
	mu.Lock()
	defer mu.Unlock()

	if d.Name == "" || d.New == nil {
		panic("mapper: Register called with incomplete descriptor")
	}
	if _, ok := byName[d.Name]; ok {
		panic(fmt.Sprintf("mapper: %q registered twice", d.Name))
	}
	for _, id := range d.IDs {
		if od, ok := byID[id]; ok {
			panic(fmt.Sprintf("mapper: can't register id %d for %q, it's used by %q", id, d.Name, od.Name))
		}
	}

	byName[d.Name] = d
	for _, id := range d.IDs {
		byID[id] = d
	}
}

// Lookup returns the board registered under name.
func Lookup(name string) (Descriptor, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownMapper, name)
	}
	return d, nil
}

// ForID returns the board registered for an iNES mapper number.
func ForID(id uint16) (Descriptor, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, ok := byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: id %d", ErrUnknownMapper, id)
	}
	return d, nil
}

// Names returns the registered board names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
