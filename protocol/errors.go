package protocol

import "fmt"

// ResponseError reports a response frame that is too short to decode.
type ResponseError struct {
	// Operation is the opcode of the command
	Operation byte

	// Got is the length of the frame that was handed in
	Got int

	// Want is the required length
	Want int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s response: got %d bytes, want %d", OpcodeName(e.Operation), e.Got, e.Want)
}

// IsResponseError returns true if the error is a ResponseError.
func IsResponseError(err error) bool {
	_, ok := err.(*ResponseError)
	return ok
}

// OpcodeName returns a human-readable name for an opcode.
func OpcodeName(op byte) string {
	switch op {
	case OpReadDeviceID:
		return "read device id"
	case OpReadMfrDeviceID:
		return "read manufacturer/device id"
	case OpReadJEDECID:
		return "read jedec id"
	case OpWriteEnable:
		return "write enable"
	case OpWriteDisable:
		return "write disable"
	case OpReadStatus:
		return "read status"
	case OpWriteStatus:
		return "write status"
	case OpRead:
		return "read"
	case OpPageProgram:
		return "page program"
	case OpSectorErase:
		return "sector erase"
	case OpBlockErase:
		return "block erase"
	case OpChipErase:
		return "chip erase"
	default:
		return fmt.Sprintf("opcode 0x%02X", op)
	}
}
