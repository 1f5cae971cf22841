// Package flash drives 25-series SPI NOR flash and EEPROM chips.
//
// # Overview
//
// The driver identifies the chip, reads its status register, reads memory,
// and erases or programs it by sector, block, page or whole chip. Geometry
// (page, sector, block and chip size) comes from the caller; nothing is
// detected from the device.
//
// # Idle and Pending
//
// Erase and program cycles run inside the chip long after the command
// has been clocked in, and the chip ignores new commands meanwhile. The
// driver encodes this in two types:
//
//   - *Flash is idle. Every operation is available.
//   - *Pending has an erase or program outstanding. It can only poll.
//
// Erase and program methods consume the *Flash and return a *Pending. The
// caller polls Wait until it reports ready, then calls Finish to get a new
// *Flash back:
//
//	p, err := f.EraseSectors(0x010000, 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    ready, err := p.Wait()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if ready {
//	        break
//	    }
//	    time.Sleep(time.Millisecond)
//	}
//	f = p.Finish()
//
// Or, blocking with a context:
//
//	f, err = p.Sync(ctx)
//
// Using a consumed handle returns ErrConsumed. Calling Finish before Wait
// reported ready panics.
//
// # Hardware Independence
//
// This package does NOT implement hardware communication. Users provide a
// Bus (full-duplex exchange in place) and a ChipSelect (assert low,
// deassert high). See the hal packages for periph.io, go-rpio and Linux
// spidev implementations, and package flashtest for a simulated chip.
//
// # Error Handling
//
// Transport failures come back as errors, never panics:
//   - BusError: the SPI exchange failed
//   - ChipSelectError: driving chip select failed
//   - StateError: the handle was already consumed
//   - GeometryError: a geometry size is zero or negative
//
// Chip select is released even when the exchange fails.
package flash
