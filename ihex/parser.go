package ihex

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record types.
const (
	RecordData                = 0x00
	RecordEOF                 = 0x01
	RecordExtendedSegmentAddr = 0x02
	RecordStartSegmentAddr    = 0x03
	RecordExtendedLinearAddr  = 0x04
	RecordStartLinearAddr     = 0x05
)

const (
	// StartCode begins every record
	StartCode = ':'

	// RecordHeaderSize is byte count + address + type, in bytes
	RecordHeaderSize = 4

	// RecordChecksumSize is the size of the trailing checksum byte
	RecordChecksumSize = 1

	// MinimumRecordLength is the shortest record in hex characters,
	// start code excluded
	MinimumRecordLength = 2 * (RecordHeaderSize + RecordChecksumSize)
)

// Record is one decoded line.
type Record struct {
	Type     byte
	Address  uint16
	Data     []byte
	Checksum byte
}

// Parse parses an Intel HEX file from the given path.
//
// Example:
//
//	img, err := ihex.Parse("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d bytes in %d segments\n", img.Size(), len(img.Segments))
func Parse(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses an Intel HEX image from any io.Reader.
//
// Example:
//
//	img, err := ihex.ParseReader(strings.NewReader(":00000001FF\n"))
func ParseReader(r io.Reader) (*Image, error) {
	scanner := bufio.NewScanner(r)
	img := &Image{}

	var base uint32
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines
		if line == "" {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		switch rec.Type {
		case RecordData:
			img.add(base+uint32(rec.Address), rec.Data)
		case RecordEOF:
			return img, nil
		case RecordExtendedSegmentAddr:
			if len(rec.Data) != 2 {
				return nil, fmt.Errorf("line %d: extended segment address needs 2 bytes, got %d", lineNum, len(rec.Data))
			}
			base = (uint32(rec.Data[0])<<8 | uint32(rec.Data[1])) << 4
		case RecordExtendedLinearAddr:
			if len(rec.Data) != 2 {
				return nil, fmt.Errorf("line %d: extended linear address needs 2 bytes, got %d", lineNum, len(rec.Data))
			}
			base = (uint32(rec.Data[0])<<8 | uint32(rec.Data[1])) << 16
		case RecordStartSegmentAddr, RecordStartLinearAddr:
			if len(rec.Data) != 4 {
				return nil, fmt.Errorf("line %d: start address needs 4 bytes, got %d", lineNum, len(rec.Data))
			}
			img.Start = uint32(rec.Data[0])<<24 | uint32(rec.Data[1])<<16 |
				uint32(rec.Data[2])<<8 | uint32(rec.Data[3])
			img.HasStart = true
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return nil, fmt.Errorf("missing end of file record")
}

// ParseRecord decodes a single record line, start code included.
//
// Example: ":0300300002337A1E"
//
//	ByteCount: 0x03
//	Address: 0x0030 (big-endian)
//	Type: 0x00 (data)
//	Data: [0x02, 0x33, 0x7A]
//	Checksum: 0x1E
func ParseRecord(line string) (*Record, error) {
	if len(line) == 0 || line[0] != StartCode {
		return nil, fmt.Errorf("record must start with ':'")
	}
	line = line[1:]

	if len(line) < MinimumRecordLength {
		return nil, fmt.Errorf("record too short: got %d characters, minimum is %d", len(line), MinimumRecordLength)
	}

	data, err := hex.DecodeString(line)
	if err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}

	count := int(data[0])
	expectedLen := RecordHeaderSize + count + RecordChecksumSize
	if len(data) != expectedLen {
		return nil, fmt.Errorf("data length mismatch: got %d bytes, expected %d (header=%d + data=%d + checksum=%d)",
			len(data), expectedLen, RecordHeaderSize, count, RecordChecksumSize)
	}

	checksum := data[len(data)-1]
	calculated := calculateChecksum(data[:len(data)-1])
	if checksum != calculated {
		return nil, fmt.Errorf("checksum mismatch: got 0x%02X, expected 0x%02X", checksum, calculated)
	}

	rec := &Record{
		Address:  uint16(data[1])<<8 | uint16(data[2]),
		Type:     data[3],
		Data:     make([]byte, count),
		Checksum: checksum,
	}
	copy(rec.Data, data[RecordHeaderSize:RecordHeaderSize+count])

	if rec.Type > RecordStartLinearAddr {
		return nil, fmt.Errorf("unknown record type 0x%02X", rec.Type)
	}

	return rec, nil
}

// calculateChecksum returns the two's complement of the byte sum.
func calculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}
