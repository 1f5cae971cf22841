package protocol

// Opcodes shared by the 25-series SPI flash and EEPROM family.
const (
	// OpReadDeviceID reads the 8-bit legacy device ID
	OpReadDeviceID = 0xAB

	// OpReadMfrDeviceID reads the 8-bit manufacturer and device IDs
	OpReadMfrDeviceID = 0x90

	// OpReadJEDECID reads the JEDEC manufacturer and device identification
	OpReadJEDECID = 0x9F

	// OpWriteEnable sets the write enable latch
	OpWriteEnable = 0x06

	// OpWriteDisable clears the write enable latch
	OpWriteDisable = 0x04

	// OpReadStatus reads the 8-bit status register
	OpReadStatus = 0x05

	// OpWriteStatus writes the 8-bit status register. Not all bits are writeable.
	OpWriteStatus = 0x01

	// OpRead reads memory contents starting at a 24-bit address
	OpRead = 0x03

	// OpPageProgram programs up to one page starting at a 24-bit address.
	// EEPROMs accept it as a direct write.
	OpPageProgram = 0x02

	// OpSectorErase erases the sector containing a 24-bit address
	OpSectorErase = 0x20

	// OpBlockErase erases the block containing a 24-bit address
	OpBlockErase = 0xD8

	// OpChipErase erases the whole array
	OpChipErase = 0xC7
)

// ContinuationCode precedes the real manufacturer code in a JEDEC ID
// response when the manufacturer lives in a later bank of JEP106.
const ContinuationCode = 0x7F

// Frame sizes in bytes.
const (
	// AddressSize is the number of address bytes sent after an opcode
	AddressSize = 3

	// AddressedHeaderSize is opcode(1) + address(3)
	AddressedHeaderSize = 1 + AddressSize

	// StatusFrameSize is opcode(1) + one padding byte clocking out the status
	StatusFrameSize = 2

	// IDSize is manufacturer code(1) + device ID(2)
	IDSize = 3

	// DefaultJEDECFrameSize is opcode(1) + 11 padding bytes.
	// Long enough for the longest continuation chains seen in practice.
	DefaultJEDECFrameSize = 12

	// MinJEDECFrameSize is opcode(1) + IDSize
	MinJEDECFrameSize = 1 + IDSize
)

// AddressMask selects the 24 address bits that are actually transmitted,
// which limits the family to 16 MiB.
const AddressMask = 0xFFFFFF

// PaddingByte is clocked out while the device is talking.
const PaddingByte = 0x00
