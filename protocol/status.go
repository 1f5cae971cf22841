package protocol

import (
	"fmt"
	"strings"
)

// Status is a snapshot of the status register.
type Status uint8

// Status register bits.
const (
	// StatusBusy is set while an erase or program cycle is in progress
	StatusBusy Status = 1 << 0

	// StatusWEL mirrors the write enable latch
	StatusWEL Status = 1 << 1

	// StatusProt covers the three block protection bits
	StatusProt Status = 0b0001_1100

	// StatusSRWD is the status register write disable bit
	StatusSRWD Status = 1 << 7
)

// statusKnown is every bit with a defined meaning.
const statusKnown = StatusBusy | StatusWEL | StatusProt | StatusSRWD

const protShift = 2

// StatusFromBits decodes a raw register value. Reserved bits are dropped,
// never rejected, so newer parts with extra bits still decode.
func StatusFromBits(raw byte) Status {
	return Status(raw) & statusKnown
}

// Bits returns the raw value of the known bits.
func (s Status) Bits() byte { return byte(s) }

// Contains reports whether all bits in other are set.
func (s Status) Contains(other Status) bool { return s&other == other }

// Busy reports whether an erase or program cycle is in progress.
func (s Status) Busy() bool { return s.Contains(StatusBusy) }

// WriteEnabled reports whether the write enable latch is set.
func (s Status) WriteEnabled() bool { return s.Contains(StatusWEL) }

// Protection returns the 3-bit block protection field, shifted down.
func (s Status) Protection() uint8 { return uint8(s&StatusProt) >> protShift }

// WriteProtected reports whether the SRWD bit is set.
func (s Status) WriteProtected() bool { return s.Contains(StatusSRWD) }

func (s Status) String() string {
	var flags []string
	if s.Busy() {
		flags = append(flags, "BUSY")
	}
	if s.WriteEnabled() {
		flags = append(flags, "WEL")
	}
	if p := s.Protection(); p != 0 {
		flags = append(flags, fmt.Sprintf("PROT=%d", p))
	}
	if s.WriteProtected() {
		flags = append(flags, "SRWD")
	}
	if len(flags) == 0 {
		return "Status(0)"
	}
	return "Status(" + strings.Join(flags, "|") + ")"
}
