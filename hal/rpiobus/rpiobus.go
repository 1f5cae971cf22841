// Package rpiobus connects the flash driver to a Raspberry Pi SPI
// controller through go-rpio, with chip select on a separate GPIO.
//
// The controller's own CE lines toggle around every exchange, which
// would split a command header from its data phase, so the flash chip's
// \CS must be wired to a free GPIO instead.
package rpiobus

import (
	"errors"
	"fmt"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

// ErrClosed is returned by Transfer after Close.
var ErrClosed = errors.New("rpiobus: device closed")

// pin is the part of rpio.Pin the device uses.
type pin interface {
	High()
	Low()
}

// Device is one SPI controller plus a chip select GPIO.
type Device struct {
	dev    rpio.SpiDev
	cs     pin
	closed bool

	// exchange and end are rpio.SpiExchange and the teardown, replaced in tests
	exchange func([]byte)
	end      func() error
}

// Open maps the GPIO registers, claims SPI controller dev at speed hz and
// configures BCM pin csPin as a high output.
//
// Example:
//
//	d, err := rpiobus.Open(rpio.Spi0, 25, 10_000_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
func Open(dev rpio.SpiDev, csPin uint8, hz int) (*Device, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpiobus: open gpio: %w", err)
	}
	if err := rpio.SpiBegin(dev); err != nil {
		_ = rpio.Close()
		return nil, fmt.Errorf("rpiobus: begin spi: %w", err)
	}
	rpio.SpiSpeed(hz)
	rpio.SpiMode(0, 0)

	cs := rpio.Pin(csPin)
	cs.Output()
	cs.High()

	return &Device{
		dev:      dev,
		cs:       cs,
		exchange: rpio.SpiExchange,
		end: func() error {
			rpio.SpiEnd(dev)
			return rpio.Close()
		},
	}, nil
}

// Transfer exchanges buf in place. go-rpio cannot report bus faults, so
// the only error is ErrClosed.
func (d *Device) Transfer(buf []byte) error {
	if d.closed {
		return ErrClosed
	}
	if len(buf) > 0 {
		d.exchange(buf)
	}
	return nil
}

// Assert drives chip select low.
func (d *Device) Assert() error {
	if d.closed {
		return ErrClosed
	}
	d.cs.Low()
	return nil
}

// Deassert drives chip select high.
func (d *Device) Deassert() error {
	if d.closed {
		return ErrClosed
	}
	d.cs.High()
	return nil
}

// Close releases the SPI controller and unmaps the GPIO registers.
// Chip select is left high.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.cs.High()
	d.closed = true
	if d.end == nil {
		return nil
	}
	return d.end()
}
