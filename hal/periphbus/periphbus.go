// Package periphbus connects the flash driver to hardware through
// periph.io.
//
// Chip select is driven as a plain GPIO so that the command header and
// the data phase of a read or program stay inside one selection window.
// The SPI port is opened with spi.NoCS.
package periphbus

import (
	"errors"
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

var hostInitialized atomic.Bool

// Device is an SPI connection plus a chip select pin.
type Device struct {
	conn spi.Conn
	cs   gpio.PinOut

	// port is nil when the caller supplied the connection
	port spi.PortCloser
}

// New wraps an already connected SPI conn and an output pin. The pin is
// driven high (deselected) before New returns.
func New(conn spi.Conn, cs gpio.PinOut) (*Device, error) {
	if conn == nil {
		return nil, errors.New("periphbus: conn cannot be nil")
	}
	if cs == nil {
		return nil, errors.New("periphbus: chip select pin cannot be nil")
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("periphbus: release chip select: %w", err)
	}

	return &Device{conn: conn, cs: cs}, nil
}

// Open initializes the periph host drivers, opens the SPI port by name
// ("SPI0.0", or "" for the first one), connects in mode 0 at freq and
// looks up csPin ("GPIO8") for chip select.
func Open(port, csPin string, freq physic.Frequency) (*Device, error) {
	if hostInitialized.CompareAndSwap(false, true) {
		if _, err := host.Init(); err != nil {
			hostInitialized.Store(false)
			return nil, fmt.Errorf("periphbus: host initialization failed: %w", err)
		}
	}

	pin := gpioreg.ByName(csPin)
	if pin == nil {
		return nil, fmt.Errorf("periphbus: pin %q not found", csPin)
	}

	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("periphbus: open %q: %w", port, err)
	}

	conn, err := p.Connect(freq, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("periphbus: connect %q: %w", port, err)
	}

	d, err := New(conn, pin)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	d.port = p

	return d, nil
}

// Transfer exchanges buf in place.
func (d *Device) Transfer(buf []byte) error {
	return d.conn.Tx(buf, buf)
}

// Assert drives chip select low.
func (d *Device) Assert() error {
	return d.cs.Out(gpio.Low)
}

// Deassert drives chip select high.
func (d *Device) Deassert() error {
	return d.cs.Out(gpio.High)
}

// Close releases the SPI port if Open created it.
func (d *Device) Close() error {
	if d.port == nil {
		return nil
	}
	return d.port.Close()
}

func (d *Device) String() string {
	return fmt.Sprintf("periphbus(%s, cs=%s)", d.conn, d.cs)
}
