package flash

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-series25/protocol"
)

var (
	// ErrConsumed is returned when a handle is used after an erase, program
	// or Finish handed its device to a new handle.
	ErrConsumed = errors.New("driver handle already consumed")

	// ErrNotReady is the cause of the panic raised by Pending.Finish
	// before Wait reported completion.
	ErrNotReady = errors.New("operation completion not observed")
)

// Edge names a chip select transition.
type Edge string

// Chip select transitions.
const (
	EdgeAssert   Edge = "assert"
	EdgeDeassert Edge = "deassert"
)

// StateError indicates a handle was used in a state that does not allow
// the operation.
type StateError struct {
	Operation string
	Err       error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *StateError) Unwrap() error { return e.Err }

// BusError indicates the SPI exchange itself failed.
type BusError struct {
	// Opcode is the command whose transaction failed
	Opcode byte

	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bus transfer failed during %s: %v", protocol.OpcodeName(e.Opcode), e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// ChipSelectError indicates driving the chip select line failed.
type ChipSelectError struct {
	// Opcode is the command whose transaction failed
	Opcode byte

	// Edge is the transition that failed
	Edge Edge

	Err error
}

func (e *ChipSelectError) Error() string {
	return fmt.Sprintf("chip select %s failed during %s: %v", e.Edge, protocol.OpcodeName(e.Opcode), e.Err)
}

func (e *ChipSelectError) Unwrap() error { return e.Err }

// GeometryError indicates an unusable geometry value.
type GeometryError struct {
	Field string
	Value int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: %s must be positive, got %d", e.Field, e.Value)
}

// IsBusError reports whether err or anything it wraps is a BusError.
func IsBusError(err error) bool {
	var target *BusError
	return errors.As(err, &target)
}

// IsChipSelectError reports whether err or anything it wraps is a ChipSelectError.
func IsChipSelectError(err error) bool {
	var target *ChipSelectError
	return errors.As(err, &target)
}
