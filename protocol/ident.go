package protocol

import "fmt"

// Identification is a decoded JEDEC manufacturer and device ID.
type Identification struct {
	// bytes holds the manufacturer code followed by the two device ID bytes
	bytes [IDSize]byte

	// continuations is the number of ContinuationCode bytes that preceded
	// the manufacturer code
	continuations uint8
}

// DecodeJEDECID builds an Identification from raw JEDEC ID bytes, with the
// opcode echo already stripped. buf must hold at least IDSize bytes.
//
// Example response of a Cypress FM25V02A:
//
//	7F 7F 7F 7F 7F 7F C2 22 08
//
// Six continuation codes, manufacturer 0xC2, device 0x22 0x08.
//
// If every scanned byte is a continuation code the first byte is taken as
// the manufacturer code.
func DecodeJEDECID(buf []byte) Identification {
	start := 0
	for i := 0; i < len(buf)-2; i++ {
		if buf[i] != ContinuationCode {
			start = i
			break
		}
	}

	return Identification{
		bytes:         [IDSize]byte{buf[start], buf[start+1], buf[start+2]},
		continuations: uint8(start),
	}
}

// NewIdentification builds an Identification from already known parts.
func NewIdentification(mfr byte, device [2]byte, continuations uint8) Identification {
	return Identification{
		bytes:         [IDSize]byte{mfr, device[0], device[1]},
		continuations: continuations,
	}
}

// MfrCode returns the JEDEC manufacturer code.
func (id Identification) MfrCode() byte { return id.bytes[0] }

// DeviceID returns the manufacturer-specific device ID.
func (id Identification) DeviceID() []byte {
	out := make([]byte, IDSize-1)
	copy(out, id.bytes[1:])
	return out
}

// ContinuationCount returns the number of continuation codes in this ID.
//
// For example the ARM Ltd identifier is 7F 7F 7F 7F 3B, so the count is 4.
func (id Identification) ContinuationCount() uint8 { return id.continuations }

// Bytes returns manufacturer code and device ID as they appeared on the wire.
func (id Identification) Bytes() [IDSize]byte { return id.bytes }

func (id Identification) String() string {
	return fmt.Sprintf("Identification(% X, continuations=%d)", id.bytes[:], id.continuations)
}
