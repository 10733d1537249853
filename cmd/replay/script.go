package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/meadori/vibecart/bus"
	"github.com/meadori/vibecart/server"
)

// step is one script line: a write, or a read with its expected value.
type step struct {
	line   int
	write  bool
	space  bus.Space
	addr   uint16
	value  byte
	source string
}

// parseScript reads a replay script. Blank lines and lines starting
// with # are skipped.
func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: expected \"<op> <addr> <val>\", got %q", n, line)
		}

		s := step{line: n, source: line}
		switch parts[0] {
		case "w":
			s.write = true
		case "wp":
			s.write, s.space = true, bus.PPU
		case "r":
		case "rp":
			s.space = bus.PPU
		default:
			return nil, fmt.Errorf("line %d: unknown op %q", n, parts[0])
		}

		addr, err := parseHex(parts[1], 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad address: %w", n, err)
		}
		val, err := parseHex(parts[2], 8)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad value: %w", n, err)
		}
		s.addr, s.value = uint16(addr), byte(val)
		steps = append(steps, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func parseHex(s string, bits int) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "$")
	return strconv.ParseUint(s, 16, bits)
}

// target is the part of the inspector client a replay drives.
type target interface {
	StreamWrites(ctx context.Context, writes []server.Write) (int, error)
	ReadMemory(ctx context.Context, space bus.Space, addr uint16, size int) ([]byte, error)
}

// mismatch is a read that did not return the expected value.
type mismatch struct {
	step step
	got  byte
}

func (m mismatch) String() string {
	return fmt.Sprintf("line %d: %s: got $%02X", m.step.line, m.step.source, m.got)
}

// replay runs steps against t. Runs of writes go out over one stream;
// each read flushes the pending writes first so it observes them.
func replay(ctx context.Context, t target, steps []step) ([]mismatch, error) {
	var (
		pending    []server.Write
		mismatches []mismatch
	)
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		n, err := t.StreamWrites(ctx, pending)
		if err != nil {
			return fmt.Errorf("after %d of %d writes: %w", n, len(pending), err)
		}
		pending = pending[:0]
		return nil
	}

	for _, s := range steps {
		if s.write {
			pending = append(pending, server.Write{Space: s.space, Addr: s.addr, Value: s.value})
			continue
		}
		if err := flush(); err != nil {
			return mismatches, err
		}
		data, err := t.ReadMemory(ctx, s.space, s.addr, 1)
		if err != nil {
			return mismatches, fmt.Errorf("line %d: %w", s.line, err)
		}
		if data[0] != s.value {
			mismatches = append(mismatches, mismatch{step: s, got: data[0]})
		}
	}
	return mismatches, flush()
}
