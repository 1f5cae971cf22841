// Package flashtest provides a simulated 25-series flash chip for tests and
// dry runs.
//
// A Chip implements both halves of the transport the flash driver needs:
// Transfer for the bus and Assert/Deassert for chip select. It decodes each
// chip select window like a real part would, including the write enable
// latch, NOR program semantics and a busy period after every erase or
// program. Every window is logged so tests can assert exact bus traffic.
package flashtest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/moffa90/go-series25/protocol"
)

// Errors reported for misuse of the simulated bus.
var (
	ErrNotSelected     = errors.New("flashtest: transfer without chip select")
	ErrAlreadySelected = errors.New("flashtest: chip select asserted twice")
)

// Config describes the simulated part.
type Config struct {
	// Size is the array size in bytes
	Size int

	// PageSize is the program page; writes wrap inside it
	PageSize int

	// SectorSize and BlockSize are the erase units
	SectorSize int
	BlockSize  int

	// JEDECID is the raw identification response, continuation codes included
	JEDECID []byte

	// BusyPolls is the number of status reads reporting BUSY after each
	// erase or program command
	BusyPolls int
}

// DefaultConfig is a 1 MiB part with 256-byte pages, 4 KiB sectors and
// 64 KiB blocks answering with a Winbond-style ID.
func DefaultConfig() Config {
	return Config{
		Size:       1 << 20,
		PageSize:   256,
		SectorSize: 4 << 10,
		BlockSize:  64 << 10,
		JEDECID:    []byte{0xEF, 0x40, 0x14},
		BusyPolls:  2,
	}
}

// Transaction is one chip select window.
type Transaction struct {
	// Frames holds what the host clocked out, one entry per Transfer
	Frames [][]byte
}

// Bytes returns all frames of the window concatenated.
func (t Transaction) Bytes() []byte {
	return bytes.Join(t.Frames, nil)
}

// Opcode returns the first byte of the window, or 0 if nothing was sent.
func (t Transaction) Opcode() byte {
	b := t.Bytes()
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

// Address returns the 24-bit address of an addressed command.
func (t Transaction) Address() uint32 {
	b := t.Bytes()
	if len(b) < protocol.AddressedHeaderSize {
		return 0
	}
	return uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Chip is a simulated 25-series device. It is not safe for concurrent use,
// just like the bus it stands in for.
type Chip struct {
	cfg Config
	mem []byte

	wel  bool
	busy int
	prot byte

	selected bool
	window   []byte
	current  Transaction

	log []Transaction

	transfers     int
	transferErr   error
	transferAfter int
	assertErr     error
	deassertErr   error
}

// New returns a chip with every byte erased.
func New(cfg Config) *Chip {
	if cfg.Size <= 0 || cfg.PageSize <= 0 || cfg.SectorSize <= 0 || cfg.BlockSize <= 0 {
		panic(fmt.Sprintf("flashtest: invalid config %+v", cfg))
	}
	c := &Chip{cfg: cfg, mem: make([]byte, cfg.Size)}
	c.EraseAll()
	return c
}

// Assert implements chip select assertion.
func (c *Chip) Assert() error {
	if c.assertErr != nil {
		return c.assertErr
	}
	if c.selected {
		return ErrAlreadySelected
	}
	c.selected = true
	c.window = c.window[:0]
	c.current = Transaction{}
	return nil
}

// Deassert ends the window and executes whatever command it carried.
func (c *Chip) Deassert() error {
	if c.deassertErr != nil {
		return c.deassertErr
	}
	if !c.selected {
		return nil
	}
	c.selected = false
	c.log = append(c.log, c.current)
	c.execute()
	return nil
}

// Transfer exchanges buf in place, byte by byte, as the chip would.
func (c *Chip) Transfer(buf []byte) error {
	if c.transferErr != nil && c.transfers >= c.transferAfter {
		return c.transferErr
	}
	c.transfers++
	if !c.selected {
		return ErrNotSelected
	}

	c.current.Frames = append(c.current.Frames, append([]byte(nil), buf...))
	for i, b := range buf {
		buf[i] = c.respond(len(c.window))
		c.window = append(c.window, b)
	}
	return nil
}

// respond returns the byte clocked out at position n of the current window.
// c.window holds the bytes received before n.
func (c *Chip) respond(n int) byte {
	if n == 0 {
		return 0xFF
	}

	switch c.window[0] {
	case protocol.OpReadStatus:
		return c.status().Bits()
	case protocol.OpReadJEDECID:
		if c.busy > 0 {
			return 0xFF
		}
		if i := n - 1; i < len(c.cfg.JEDECID) {
			return c.cfg.JEDECID[i]
		}
		return 0x00
	case protocol.OpRead:
		if c.busy > 0 || n < protocol.AddressedHeaderSize {
			return 0xFF
		}
		addr := decodeAddress(c.window[1:4])
		return c.mem[(int(addr)+n-protocol.AddressedHeaderSize)%c.cfg.Size]
	default:
		return 0xFF
	}
}

func (c *Chip) status() protocol.Status {
	raw := c.prot
	if c.busy > 0 {
		raw |= byte(protocol.StatusBusy)
	}
	if c.wel {
		raw |= byte(protocol.StatusWEL)
	}
	return protocol.StatusFromBits(raw)
}

// execute applies the command received during the window that just closed.
func (c *Chip) execute() {
	w := c.window
	if len(w) == 0 {
		return
	}

	if w[0] == protocol.OpReadStatus {
		if len(w) > 1 && c.busy > 0 {
			c.busy--
		}
		return
	}
	if c.busy > 0 {
		return
	}

	switch w[0] {
	case protocol.OpWriteEnable:
		if len(w) == 1 {
			c.wel = true
		}
	case protocol.OpWriteDisable:
		if len(w) == 1 {
			c.wel = false
		}
	case protocol.OpSectorErase:
		if c.wel && len(w) == protocol.AddressedHeaderSize {
			c.eraseUnit(decodeAddress(w[1:4]), c.cfg.SectorSize)
		}
	case protocol.OpBlockErase:
		if c.wel && len(w) == protocol.AddressedHeaderSize {
			c.eraseUnit(decodeAddress(w[1:4]), c.cfg.BlockSize)
		}
	case protocol.OpChipErase:
		if c.wel && len(w) == 1 {
			c.EraseAll()
			c.startCycle()
		}
	case protocol.OpPageProgram:
		if c.wel && len(w) > protocol.AddressedHeaderSize {
			c.program(decodeAddress(w[1:4]), w[protocol.AddressedHeaderSize:])
		}
	}
}

func (c *Chip) eraseUnit(addr uint32, unit int) {
	start := (int(addr) % c.cfg.Size) / unit * unit
	end := start + unit
	if end > c.cfg.Size {
		end = c.cfg.Size
	}
	for i := start; i < end; i++ {
		c.mem[i] = 0xFF
	}
	c.startCycle()
}

// program ANDs data into the page holding addr, wrapping at the page end.
func (c *Chip) program(addr uint32, data []byte) {
	a := int(addr) % c.cfg.Size
	base := a / c.cfg.PageSize * c.cfg.PageSize
	off := a - base
	for i, b := range data {
		c.mem[base+(off+i)%c.cfg.PageSize] &= b
	}
	c.startCycle()
}

func (c *Chip) startCycle() {
	c.wel = false
	c.busy = c.cfg.BusyPolls
}

func decodeAddress(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}
