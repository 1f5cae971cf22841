package protocol

// ParseStatusResponse extracts the status register from a Read Status frame
// after the exchange.
//
// Response structure:
//
//	[ECHO][STATUS]
func ParseStatusResponse(frame []byte) (Status, error) {
	if len(frame) != StatusFrameSize {
		return 0, &ResponseError{Operation: OpReadStatus, Got: len(frame), Want: StatusFrameSize}
	}

	return StatusFromBits(frame[1]), nil
}

// ParseJEDECIDResponse decodes a Read JEDEC ID frame after the exchange.
// The first byte was clocked in while the opcode went out and is skipped.
//
// Response structure:
//
//	[ECHO][0x7F...][MFR][DEV_H][DEV_L][...]
func ParseJEDECIDResponse(frame []byte) (Identification, error) {
	if len(frame) < MinJEDECFrameSize {
		return Identification{}, &ResponseError{Operation: OpReadJEDECID, Got: len(frame), Want: MinJEDECFrameSize}
	}

	return DecodeJEDECID(frame[1:]), nil
}
