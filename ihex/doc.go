// Package ihex parses Intel HEX images for programming into flash.
//
// # Record Format
//
// Every line is a record of hex pairs after a ':' start code:
//
//	:[ByteCount(2)][Address(4)][Type(2)][Data(2*ByteCount)][Checksum(2)]
//
// The checksum is the two's complement of the sum of all preceding bytes.
//
// Supported record types:
//   - 00 data
//   - 01 end of file
//   - 02 extended segment address (base = value * 16)
//   - 03 start segment address
//   - 04 extended linear address (upper 16 address bits)
//   - 05 start linear address
//
// # Usage
//
//	img, err := ihex.Parse("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, seg := range img.Segments {
//	    fmt.Printf("0x%08X: %d bytes\n", seg.Address, len(seg.Data))
//	}
//
// Data records that continue each other are merged into one Segment.
//
// # Error Handling
//
// Parse reports the line number with every error: a missing start code,
// bad hex, a length or checksum mismatch, an unknown record type or a
// missing end of file record.
package ihex
