package flashtest

// EraseAll sets every byte to 0xFF without starting a busy cycle.
func (c *Chip) EraseAll() {
	for i := range c.mem {
		c.mem[i] = 0xFF
	}
}

// Load copies data into the array at addr, bypassing the protocol.
func (c *Chip) Load(addr int, data []byte) {
	copy(c.mem[addr:], data)
}

// Memory returns a copy of n bytes starting at addr.
func (c *Chip) Memory(addr, n int) []byte {
	out := make([]byte, n)
	copy(out, c.mem[addr:addr+n])
	return out
}

// Config returns the configuration the chip was built with.
func (c *Chip) Config() Config { return c.cfg }

// SetBusy makes the next n status reads report BUSY, as after a host reset
// in the middle of an erase.
func (c *Chip) SetBusy(n int) { c.busy = n }

// SetProtection sets the three block protection bits.
func (c *Chip) SetProtection(bits byte) { c.prot = (bits & 0b111) << 2 }

// Busy reports whether an erase or program cycle is running.
func (c *Chip) Busy() bool { return c.busy > 0 }

// WriteEnabled reports the write enable latch.
func (c *Chip) WriteEnabled() bool { return c.wel }

// Selected reports whether chip select is currently asserted.
func (c *Chip) Selected() bool { return c.selected }

// Log returns every completed chip select window since the last ResetLog.
func (c *Chip) Log() []Transaction {
	out := make([]Transaction, len(c.log))
	copy(out, c.log)
	return out
}

// ResetLog clears the transaction log.
func (c *Chip) ResetLog() { c.log = nil }

// Opcodes returns the opcode of every logged window, in order.
func (c *Chip) Opcodes() []byte {
	ops := make([]byte, 0, len(c.log))
	for _, t := range c.log {
		ops = append(ops, t.Opcode())
	}
	return ops
}

// InjectTransferError lets the next after transfers succeed, then fails
// every later Transfer with err until ClearFaults is called.
func (c *Chip) InjectTransferError(after int, err error) {
	c.transferErr = err
	c.transferAfter = c.transfers + after
}

// InjectAssertError makes Assert fail with err.
func (c *Chip) InjectAssertError(err error) { c.assertErr = err }

// InjectDeassertError makes Deassert fail with err. The window stays open.
func (c *Chip) InjectDeassertError(err error) { c.deassertErr = err }

// ClearFaults removes every injected error.
func (c *Chip) ClearFaults() {
	c.transferErr = nil
	c.assertErr = nil
	c.deassertErr = nil
}
