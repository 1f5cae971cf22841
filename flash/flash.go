package flash

import (
	"context"
	"fmt"
	"time"

	"github.com/moffa90/go-series25/protocol"
)

// Flash is an idle 25-series flash or EEPROM driver. No erase or program
// cycle is outstanding, so every operation may be issued.
//
// Erase and program methods consume the Flash: they hand the bus and chip
// select over to the returned Pending and every later call on the old
// value fails with ErrConsumed. Flash is not safe for concurrent use.
type Flash struct {
	dev *device
}

// New creates a driver for the chip behind bus and cs. Geometry is taken as
// given and never checked against the device.
//
// New blocks until the status register reports not-busy, so an erase or
// program cycle left running by a host reset completes first. The poll
// loop has no backoff; it stops early only when ctx is done.
//
// The driver owns bus and cs from here on. Callers must not use them
// elsewhere.
//
// Example:
//
//	f, err := flash.New(ctx, bus, cs, flash.Geometry{
//	    PageSize:   256,
//	    SectorSize: 4 << 10,
//	    BlockSize:  64 << 10,
//	    ChipSize:   16 << 20,
//	}, flash.WithLogger(logger))
func New(ctx context.Context, bus Bus, cs ChipSelect, geom Geometry, opts ...Option) (*Flash, error) {
	if bus == nil {
		panic("bus cannot be nil")
	}
	if cs == nil {
		panic("chip select cannot be nil")
	}
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &device{
		bus:    bus,
		cs:     cs,
		geom:   geom,
		config: cfg,
		page:   make([]byte, geom.PageSize),
	}

	polls := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("wait for idle chip: %w", err)
		}
		status, err := d.readStatus()
		if err != nil {
			d.logError("initial status read failed", "error", err)
			return nil, fmt.Errorf("wait for idle chip: %w", err)
		}
		polls++
		if !status.Busy() {
			break
		}
	}

	d.logDebug("chip ready", "polls", polls)

	return &Flash{dev: d}, nil
}

// take returns the device and invalidates f.
func (f *Flash) take(op string) (*device, error) {
	d, err := f.live(op)
	if err != nil {
		return nil, err
	}
	f.dev = nil
	return d, nil
}

func (f *Flash) live(op string) (*device, error) {
	if f == nil || f.dev == nil {
		return nil, &StateError{Operation: op, Err: ErrConsumed}
	}
	return f.dev, nil
}

// Geometry returns the geometry the driver was created with.
func (f *Flash) Geometry() Geometry {
	if f == nil || f.dev == nil {
		return Geometry{}
	}
	return f.dev.geom
}

// ReadJEDECID reads the JEDEC manufacturer and device identification.
func (f *Flash) ReadJEDECID() (protocol.Identification, error) {
	d, err := f.live("read jedec id")
	if err != nil {
		return protocol.Identification{}, err
	}

	frame, err := protocol.BuildReadJEDECIDCmd(d.config.JEDECFrameSize)
	if err != nil {
		return protocol.Identification{}, err
	}
	if err := d.transaction(frame); err != nil {
		return protocol.Identification{}, err
	}

	return protocol.ParseJEDECIDResponse(frame)
}

// ReadStatus reads the status register.
func (f *Flash) ReadStatus() (protocol.Status, error) {
	d, err := f.live("read status")
	if err != nil {
		return 0, err
	}

	return d.readStatus()
}

// Read fills buf with memory contents starting at addr.
//
// Only the low 24 bits of addr reach the device. Chips decode just the
// bits their size needs, so contents mirror at multiples of the chip size.
// An empty buf still sends the read header.
func (f *Flash) Read(addr uint32, buf []byte) error {
	d, err := f.live("read")
	if err != nil {
		return err
	}

	header := protocol.BuildAddressedCmd(protocol.OpRead, addr)
	return d.transaction(header, buf)
}

// EraseSectors erases amount sectors starting at addr. Each sector gets its
// own write enable and erase command; the chip may ignore the low bits of a
// non-aligned address. amount is not checked against the chip size.
//
// f is consumed. On a transport failure the Pending is still returned,
// since the chip may have accepted part of the batch.
func (f *Flash) EraseSectors(addr uint32, amount int) (*Pending, error) {
	return f.eraseUnits("erase sectors", protocol.OpSectorErase, addr, amount, func(g Geometry) int { return g.SectorSize })
}

// EraseBlocks erases amount blocks starting at addr. See EraseSectors.
func (f *Flash) EraseBlocks(addr uint32, amount int) (*Pending, error) {
	return f.eraseUnits("erase blocks", protocol.OpBlockErase, addr, amount, func(g Geometry) int { return g.BlockSize })
}

func (f *Flash) eraseUnits(name string, op byte, addr uint32, amount int, unit func(Geometry) int) (*Pending, error) {
	d, err := f.take(name)
	if err != nil {
		return nil, err
	}

	size := unit(d.geom)
	d.logDebug(name, "addr", fmt.Sprintf("0x%06X", addr&protocol.AddressMask), "units", amount, "unit_size", size)

	p := newPending(d, name)
	if err := d.eraseUnits(op, addr, amount, size); err != nil {
		d.logError(name+" failed", "error", err)
		return p, fmt.Errorf("%s: %w", name, err)
	}

	return p, nil
}

// WriteBytes programs data starting at addr, one page-sized chunk per
// program command. The last chunk may be short.
//
// The target range must already be erased; WriteBytes never erases.
// f is consumed. On a transport failure the Pending is still returned.
func (f *Flash) WriteBytes(addr uint32, data []byte) (*Pending, error) {
	const name = "write bytes"

	d, err := f.take(name)
	if err != nil {
		return nil, err
	}

	d.logDebug(name, "addr", fmt.Sprintf("0x%06X", addr&protocol.AddressMask), "bytes", len(data))

	p := newPending(d, name)
	if err := d.programPages(addr, data); err != nil {
		d.logError(name+" failed", "error", err)
		return p, fmt.Errorf("%s: %w", name, err)
	}

	return p, nil
}

// EraseAll erases the whole chip.
//
// Full erase can take a long time; check the datasheet.
// f is consumed. On a transport failure the Pending is still returned.
func (f *Flash) EraseAll() (*Pending, error) {
	const name = "erase all"

	d, err := f.take(name)
	if err != nil {
		return nil, err
	}

	d.logDebug(name)

	p := newPending(d, name)
	err = d.writeEnable()
	if err == nil {
		err = d.transaction(protocol.BuildChipEraseCmd())
	}
	if err != nil {
		d.logError(name+" failed", "error", err)
		return p, fmt.Errorf("%s: %w", name, err)
	}
	d.reportProgress(Progress{Operation: protocol.OpcodeName(protocol.OpChipErase), Unit: 1, TotalUnits: 1})

	return p, nil
}

func newPending(d *device, op string) *Pending {
	return &Pending{dev: d, op: op, started: time.Now()}
}
