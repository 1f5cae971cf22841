// Package protocol implements the wire format of 25-series SPI flash and
// EEPROM chips.
//
// This package provides the opcode table, frame builders, and decoders for
// the status register and the JEDEC identification response. It performs
// no I/O; see package flash for the driver.
//
// # Protocol Overview
//
// Every transaction runs while chip select is held low. The host clocks out
// a frame and simultaneously clocks in a response of the same length:
//
//	Opcode only:    [OP]
//	Status read:    [OP][PAD]           -> [ECHO][STATUS]
//	Addressed:      [OP][A23-16][A15-8][A7-0] followed by a data phase
//	JEDEC ID read:  [OP][PAD x 11]      -> [ECHO][0x7F...][MFR][DEV_H][DEV_L]...
//
// Addresses are 24 bits, most significant byte first. Bits above the low
// 24 are never transmitted.
//
// # Frame Builders
//
// Use the Build* functions to create command frames:
//
//	frame := protocol.BuildAddressedCmd(protocol.OpSectorErase, 0x123456)
//	frame := protocol.BuildReadStatusCmd()
//	frame, err := protocol.BuildReadJEDECIDCmd(protocol.DefaultJEDECFrameSize)
//
// # Decoders
//
// After the exchange, decode the frame in place:
//
//	status, err := protocol.ParseStatusResponse(frame)
//	if status.Busy() {
//	    // erase or program still running
//	}
//
//	id, err := protocol.ParseJEDECIDResponse(frame)
//	fmt.Printf("mfr 0x%02X dev % X\n", id.MfrCode(), id.DeviceID())
//
// Status decoding drops reserved bits instead of rejecting them.
package protocol
