package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/exp/slog"

	"github.com/moffa90/go-series25/config"
	"github.com/moffa90/go-series25/flash"
	"github.com/moffa90/go-series25/ihex"
	"github.com/moffa90/go-series25/protocol"
)

// session is the state one command runs against.
type session struct {
	flash  *flash.Flash
	geom   flash.Geometry
	out    io.Writer
	logger *slog.Logger
}

// readChunk bounds the data bytes of one read window. spidev refuses a
// message longer than its bufsiz, 4096 bytes by default, and the header
// counts against it.
const readChunk = 4096 - protocol.AddressedHeaderSize

// action runs a parsed command.
type action func(ctx context.Context, s *session) error

type command struct {
	summary string

	// parse checks the command line before any hardware is touched
	parse func(name string, args []string, stderr io.Writer) (action, error)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"id":            {"read the JEDEC identification", parseID},
		"status":        {"read the status register", parseStatus},
		"read":          {"read memory in windows of at most 4K: -addr A -n N [-o file]", parseRead},
		"write":         {"program a raw file at -addr, or an Intel HEX file with -hex", parseWrite},
		"erase-sectors": {"erase -n sectors from -addr", parseErase(eraseSectors, sectorSize)},
		"erase-blocks":  {"erase -n blocks from -addr", parseErase(eraseBlocks, blockSize)},
		"erase-chip":    {"erase the whole chip", parseEraseChip},
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// ---- id / status ----

func parseID(name string, args []string, stderr io.Writer) (action, error) {
	if err := newFlagSet(name, stderr).Parse(args); err != nil {
		return nil, err
	}

	return func(ctx context.Context, s *session) error {
		id, err := s.flash.ReadJEDECID()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "manufacturer:  0x%02X\n", id.MfrCode())
		fmt.Fprintf(s.out, "device:        % X\n", id.DeviceID())
		fmt.Fprintf(s.out, "continuations: %d\n", id.ContinuationCount())
		return nil
	}, nil
}

func parseStatus(name string, args []string, stderr io.Writer) (action, error) {
	if err := newFlagSet(name, stderr).Parse(args); err != nil {
		return nil, err
	}

	return func(ctx context.Context, s *session) error {
		status, err := s.flash.ReadStatus()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "0x%02X %s\n", status.Bits(), status)
		return nil
	}, nil
}

// ---- read ----

func parseRead(name string, args []string, stderr io.Writer) (action, error) {
	var addr, n config.Size
	fs := newFlagSet(name, stderr)
	fs.Var(&addr, "addr", "start `address`")
	fs.Var(&n, "n", "number of `bytes` to read")
	out := fs.String("o", "", "write raw bytes to `file` instead of a hex dump")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("read: -n is required")
	}

	return func(ctx context.Context, s *session) error {
		if err := s.checkRange(int64(addr), int64(n)); err != nil {
			return err
		}

		buf := make([]byte, n)
		if err := s.read(uint32(addr), buf); err != nil {
			return err
		}

		if *out != "" {
			return os.WriteFile(*out, buf, 0o644)
		}
		_, err := io.WriteString(s.out, hex.Dump(buf))
		return err
	}, nil
}

// ---- write ----

func parseWrite(name string, args []string, stderr io.Writer) (action, error) {
	var addr config.Size
	fs := newFlagSet(name, stderr)
	fs.Var(&addr, "addr", "start `address` of a raw file, or offset added to an Intel HEX image")
	isHex := fs.Bool("hex", false, "the file is Intel HEX")
	erase := fs.Bool("erase", false, "erase the sectors covered by the data first")
	verify := fs.Bool("verify", false, "read the data back and compare")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("write: expected exactly one file")
	}
	path := fs.Arg(0)

	return func(ctx context.Context, s *session) error {
		var segments []*ihex.Segment
		if *isHex {
			img, err := ihex.Parse(path)
			if err != nil {
				return err
			}
			for _, seg := range img.Segments {
				if len(seg.Data) == 0 {
					continue
				}
				segments = append(segments, &ihex.Segment{Address: seg.Address + uint32(addr), Data: seg.Data})
			}
		} else {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if len(data) > 0 {
				segments = []*ihex.Segment{{Address: uint32(addr), Data: data}}
			}
		}

		for _, seg := range segments {
			if err := s.checkRange(int64(seg.Address), int64(len(seg.Data))); err != nil {
				return err
			}
		}

		// Segments may share a sector, so every erase happens before the
		// first program.
		if *erase {
			if err := s.eraseSectorsCovering(ctx, segments); err != nil {
				return err
			}
		}

		for _, seg := range segments {
			if err := s.program(ctx, seg.Address, seg.Data); err != nil {
				return err
			}
			s.logger.Info("segment written", "addr", fmt.Sprintf("0x%06X", seg.Address), "bytes", len(seg.Data))
		}

		if *verify {
			for _, seg := range segments {
				if err := s.verify(seg.Address, seg.Data); err != nil {
					return err
				}
			}
		}

		return nil
	}, nil
}

// ---- erase ----

type eraseFunc func(f *flash.Flash, addr uint32, amount int) (*flash.Pending, error)

func eraseSectors(f *flash.Flash, addr uint32, amount int) (*flash.Pending, error) {
	return f.EraseSectors(addr, amount)
}

func eraseBlocks(f *flash.Flash, addr uint32, amount int) (*flash.Pending, error) {
	return f.EraseBlocks(addr, amount)
}

func sectorSize(g flash.Geometry) int { return g.SectorSize }

func blockSize(g flash.Geometry) int { return g.BlockSize }

func parseErase(erase eraseFunc, unitSize func(flash.Geometry) int) func(string, []string, io.Writer) (action, error) {
	return func(name string, args []string, stderr io.Writer) (action, error) {
		var addr config.Size
		fs := newFlagSet(name, stderr)
		fs.Var(&addr, "addr", "start `address`")
		n := fs.Int("n", 1, "number of units")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if *n <= 0 {
			return nil, fmt.Errorf("%s: -n must be positive", name)
		}

		return func(ctx context.Context, s *session) error {
			unit := unitSize(s.geom)
			if err := s.checkRange(int64(addr), int64(*n)*int64(unit)); err != nil {
				return err
			}

			// One unit per Pending: a NOR chip ignores commands while busy.
			for i := 0; i < *n; i++ {
				p, err := erase(s.flash, uint32(addr)+uint32(i*unit), 1)
				if err := s.settle(ctx, p, err); err != nil {
					return err
				}
			}
			return nil
		}, nil
	}
}

func parseEraseChip(name string, args []string, stderr io.Writer) (action, error) {
	if err := newFlagSet(name, stderr).Parse(args); err != nil {
		return nil, err
	}

	return func(ctx context.Context, s *session) error {
		p, err := s.flash.EraseAll()
		return s.settle(ctx, p, err)
	}, nil
}

// ---- helpers ----

// settle waits for the cycle behind p and takes the idle driver back.
func (s *session) settle(ctx context.Context, p *flash.Pending, err error) error {
	if err != nil {
		return err
	}
	f, err := p.Sync(ctx)
	if err != nil {
		return err
	}
	s.flash = f
	return nil
}

func (s *session) checkRange(addr, n int64) error {
	if addr < 0 || n < 0 || addr+n > int64(s.geom.ChipSize) {
		return fmt.Errorf("range 0x%X+%d exceeds chip size %d", addr, n, s.geom.ChipSize)
	}
	return nil
}

// program writes data one page at a time, splitting at page boundaries so
// no program command wraps inside its page.
func (s *session) program(ctx context.Context, addr uint32, data []byte) error {
	page := s.geom.PageSize
	for len(data) > 0 {
		n := page - int(addr)%page
		if n > len(data) {
			n = len(data)
		}

		p, err := s.flash.WriteBytes(addr, data[:n])
		if err := s.settle(ctx, p, err); err != nil {
			return err
		}

		addr += uint32(n)
		data = data[n:]
	}
	return nil
}

// eraseSectorsCovering erases, once each and in address order, every
// sector touched by a segment.
func (s *session) eraseSectorsCovering(ctx context.Context, segments []*ihex.Segment) error {
	sector := uint32(s.geom.SectorSize)
	indices := make(map[uint32]bool)
	for _, seg := range segments {
		if len(seg.Data) == 0 {
			continue
		}
		for i := seg.Address / sector; i <= (seg.End()-1)/sector; i++ {
			indices[i] = true
		}
	}

	sorted := make([]uint32, 0, len(indices))
	for i := range indices {
		sorted = append(sorted, i)
	}
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })

	for _, i := range sorted {
		p, err := s.flash.EraseSectors(i*sector, 1)
		if err := s.settle(ctx, p, err); err != nil {
			return err
		}
	}
	return nil
}

// read fills buf in windows of at most readChunk bytes.
func (s *session) read(addr uint32, buf []byte) error {
	for len(buf) > 0 {
		n := len(buf)
		if n > readChunk {
			n = readChunk
		}
		if err := s.flash.Read(addr, buf[:n]); err != nil {
			return err
		}
		addr += uint32(n)
		buf = buf[n:]
	}
	return nil
}

func (s *session) verify(addr uint32, want []byte) error {
	got := make([]byte, len(want))
	if err := s.read(addr, got); err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		for i := range want {
			if got[i] != want[i] {
				return fmt.Errorf("verify failed at 0x%06X: got 0x%02X, want 0x%02X", addr+uint32(i), got[i], want[i])
			}
		}
	}
	return nil
}
