package protocol

import "fmt"

// EncodeAddress returns the low 24 bits of addr, most significant byte first.
func EncodeAddress(addr uint32) [AddressSize]byte {
	return [AddressSize]byte{
		byte(addr >> 16),
		byte(addr >> 8),
		byte(addr),
	}
}

// BuildAddressedCmd constructs an opcode followed by a 24-bit address.
// Used by Read, Page Program, Sector Erase and Block Erase.
//
// Frame structure:
//
//	[OP][ADDR_H][ADDR_M][ADDR_L]
//
// Bits above the low 24 of addr are not transmitted.
func BuildAddressedCmd(op byte, addr uint32) []byte {
	a := EncodeAddress(addr)
	return []byte{op, a[0], a[1], a[2]}
}

// BuildReadStatusCmd constructs a Read Status frame. The status byte is
// clocked back in the padding slot.
//
// Frame structure:
//
//	[OP][PAD]
func BuildReadStatusCmd() []byte {
	return []byte{OpReadStatus, PaddingByte}
}

// BuildReadJEDECIDCmd constructs a Read JEDEC ID frame of size bytes, the
// opcode followed by padding. The response is scanned for the ID, so the
// frame is sized optimistically even though most IDs are shorter.
//
// Frame structure:
//
//	[OP][PAD...]
func BuildReadJEDECIDCmd(size int) ([]byte, error) {
	if size < MinJEDECFrameSize {
		return nil, fmt.Errorf("JEDEC ID frame must be at least %d bytes, got %d", MinJEDECFrameSize, size)
	}

	frame := make([]byte, size)
	frame[0] = OpReadJEDECID
	return frame, nil
}

// BuildWriteEnableCmd constructs a Write Enable frame. It must precede every
// erase and program command or the device ignores that command.
//
// Frame structure:
//
//	[OP]
func BuildWriteEnableCmd() []byte {
	return []byte{OpWriteEnable}
}

// BuildWriteDisableCmd constructs a Write Disable frame.
func BuildWriteDisableCmd() []byte {
	return []byte{OpWriteDisable}
}

// BuildChipEraseCmd constructs a Chip Erase frame. No address, no data.
//
// Frame structure:
//
//	[OP]
func BuildChipEraseCmd() []byte {
	return []byte{OpChipErase}
}
