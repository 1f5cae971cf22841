// Package spidev connects the flash driver to a Linux spidev character
// device such as /dev/spidev0.0.
//
// spidev only controls chip select per ioctl: it is asserted for the whole
// SPI_IOC_MESSAGE and released at its end. Device therefore queues every
// Transfer made between Assert and Deassert and sends them as one message
// when Deassert is called. The received bytes land in the caller's
// buffers when Deassert returns, not when Transfer does, which is all the
// flash driver needs: it only decodes responses after the window closes.
//
// The kernel refuses a message longer than the spidev bufsiz module
// parameter, 4096 bytes by default, with EMSGSIZE. That failure is reported
// by Deassert, so callers split long reads into several windows.
package spidev

import "errors"

var (
	// ErrNotSelected is returned by Transfer outside an Assert/Deassert window.
	ErrNotSelected = errors.New("spidev: transfer without chip select")

	// ErrAlreadySelected is returned by a second Assert.
	ErrAlreadySelected = errors.New("spidev: chip select asserted twice")
)

// Device queues transfers per chip select window.
type Device struct {
	// message sends the queued frames as one chip select window and
	// writes the received bytes back into them
	message func(frames [][]byte) error
	close   func() error

	selected bool
	frames   [][]byte
}

// Assert opens a chip select window. Nothing reaches the wire yet.
func (d *Device) Assert() error {
	if d.selected {
		return ErrAlreadySelected
	}
	d.selected = true
	d.frames = d.frames[:0]
	return nil
}

// Transfer queues buf for the current window.
func (d *Device) Transfer(buf []byte) error {
	if !d.selected {
		return ErrNotSelected
	}
	if len(buf) > 0 {
		d.frames = append(d.frames, buf)
	}
	return nil
}

// Deassert sends the queued frames and closes the window. A failed
// message still closes the window.
func (d *Device) Deassert() error {
	if !d.selected {
		return nil
	}
	d.selected = false
	if len(d.frames) == 0 {
		return nil
	}

	err := d.message(d.frames)
	for i := range d.frames {
		d.frames[i] = nil
	}
	d.frames = d.frames[:0]
	return err
}

// Close releases the device file.
func (d *Device) Close() error {
	if d.close == nil {
		return nil
	}
	return d.close()
}
