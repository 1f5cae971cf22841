package flash

import "github.com/moffa90/go-series25/protocol"

// Bus is the SPI master the chip is attached to.
//
// Transfer clocks buf out and replaces its contents with the bytes clocked
// in. It must not toggle chip select; the driver does that through
// ChipSelect.
type Bus interface {
	Transfer(buf []byte) error
}

// ChipSelect drives the active-low \CS line of the chip.
type ChipSelect interface {
	// Assert drives the line low, selecting the chip
	Assert() error

	// Deassert drives the line high
	Deassert() error
}

// device is the state shared by the Idle and Pending handles. Exactly one
// handle owns it at a time.
type device struct {
	bus    Bus
	cs     ChipSelect
	geom   Geometry
	config Config

	// page is scratch space for program data so the caller's slice is
	// never overwritten by the full-duplex exchange
	page []byte
}

// transaction runs the frames back to back while chip select is held low.
// Chip select is released even if an exchange fails; the bus error wins.
// Empty frames are skipped.
func (d *device) transaction(frames ...[]byte) (err error) {
	op := frames[0][0]

	if err = d.cs.Assert(); err != nil {
		return &ChipSelectError{Opcode: op, Edge: EdgeAssert, Err: err}
	}
	defer func() {
		if csErr := d.cs.Deassert(); csErr != nil && err == nil {
			err = &ChipSelectError{Opcode: op, Edge: EdgeDeassert, Err: csErr}
		}
	}()

	for _, frame := range frames {
		if len(frame) == 0 {
			continue
		}
		if err = d.bus.Transfer(frame); err != nil {
			return &BusError{Opcode: op, Err: err}
		}
	}

	return nil
}

// readStatus issues Read Status and decodes the reply.
func (d *device) readStatus() (protocol.Status, error) {
	frame := protocol.BuildReadStatusCmd()
	if err := d.transaction(frame); err != nil {
		return 0, err
	}

	return protocol.ParseStatusResponse(frame)
}

// writeEnable sets the write enable latch ahead of one erase or program command.
func (d *device) writeEnable() error {
	return d.transaction(protocol.BuildWriteEnableCmd())
}

// eraseUnits issues amount write-enable + erase pairs, unit bytes apart.
func (d *device) eraseUnits(op byte, addr uint32, amount int, unit int) error {
	for i := 0; i < amount; i++ {
		current := addr + uint32(i)*uint32(unit)

		if err := d.writeEnable(); err != nil {
			return err
		}
		if err := d.transaction(protocol.BuildAddressedCmd(op, current)); err != nil {
			return err
		}

		d.reportProgress(Progress{
			Operation:  protocol.OpcodeName(op),
			Address:    current,
			Unit:       i + 1,
			TotalUnits: amount,
		})
	}

	return nil
}

// programPages splits data into page-sized chunks and programs each one.
func (d *device) programPages(addr uint32, data []byte) error {
	pageSize := d.geom.PageSize
	total := (len(data) + pageSize - 1) / pageSize
	written := 0

	for i := 0; i < total; i++ {
		end := (i + 1) * pageSize
		if end > len(data) {
			end = len(data)
		}
		chunk := d.page[:end-i*pageSize]
		copy(chunk, data[i*pageSize:end])
		current := addr + uint32(i)*uint32(pageSize)

		if err := d.writeEnable(); err != nil {
			return err
		}
		header := protocol.BuildAddressedCmd(protocol.OpPageProgram, current)
		if err := d.transaction(header, chunk); err != nil {
			return err
		}

		written += len(chunk)
		d.reportProgress(Progress{
			Operation:    protocol.OpcodeName(protocol.OpPageProgram),
			Address:      current,
			Unit:         i + 1,
			TotalUnits:   total,
			BytesWritten: written,
		})
	}

	return nil
}

// reportProgress calls the progress callback if configured.
func (d *device) reportProgress(progress Progress) {
	if d.config.ProgressCallback != nil {
		d.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (d *device) logDebug(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (d *device) logInfo(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (d *device) logError(msg string, keysAndValues ...interface{}) {
	if d.config.Logger != nil {
		d.config.Logger.Error(msg, keysAndValues...)
	}
}
