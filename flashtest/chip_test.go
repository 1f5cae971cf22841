package flashtest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-series25/protocol"
)

// tx runs one chip select window with the given frames.
func tx(t *testing.T, c *Chip, frames ...[]byte) {
	t.Helper()
	require.NoError(t, c.Assert())
	for _, f := range frames {
		require.NoError(t, c.Transfer(f))
	}
	require.NoError(t, c.Deassert())
}

func smallChip() *Chip {
	return New(Config{
		Size:       1024,
		PageSize:   16,
		SectorSize: 64,
		BlockSize:  256,
		JEDECID:    []byte{0x7F, 0x7F, 0xC2, 0x22, 0x08},
		BusyPolls:  1,
	})
}

func TestChipStartsErased(t *testing.T) {
	c := smallChip()
	for _, b := range c.Memory(0, 1024) {
		if b != 0xFF {
			t.Fatalf("byte = 0x%02X, want 0xFF", b)
		}
	}
}

func TestChipStatusAndBusy(t *testing.T) {
	c := smallChip()
	c.SetBusy(2)

	frame := protocol.BuildReadStatusCmd()
	tx(t, c, frame)
	assert.Equal(t, byte(protocol.StatusBusy), frame[1])

	frame = protocol.BuildReadStatusCmd()
	tx(t, c, frame)
	assert.Equal(t, byte(protocol.StatusBusy), frame[1])

	frame = protocol.BuildReadStatusCmd()
	tx(t, c, frame)
	assert.Equal(t, byte(0), frame[1])
	assert.False(t, c.Busy())
}

func TestChipJEDECID(t *testing.T) {
	c := smallChip()
	frame, err := protocol.BuildReadJEDECIDCmd(protocol.DefaultJEDECFrameSize)
	require.NoError(t, err)

	tx(t, c, frame)

	id, err := protocol.ParseJEDECIDResponse(frame)
	require.NoError(t, err)
	assert.Equal(t, byte(0xC2), id.MfrCode())
	assert.Equal(t, []byte{0x22, 0x08}, id.DeviceID())
	assert.Equal(t, uint8(2), id.ContinuationCount())
}

func TestChipProgramNeedsWriteEnable(t *testing.T) {
	c := smallChip()

	tx(t, c, protocol.BuildAddressedCmd(protocol.OpPageProgram, 0), []byte{0x00})
	assert.Equal(t, []byte{0xFF}, c.Memory(0, 1), "program without WREN must be ignored")

	tx(t, c, protocol.BuildWriteEnableCmd())
	assert.True(t, c.WriteEnabled())
	tx(t, c, protocol.BuildAddressedCmd(protocol.OpPageProgram, 0), []byte{0x12})
	assert.Equal(t, []byte{0x12}, c.Memory(0, 1))
	assert.False(t, c.WriteEnabled(), "program clears WEL")
	assert.True(t, c.Busy())
}

func TestChipProgramIsNOR(t *testing.T) {
	c := New(Config{Size: 64, PageSize: 16, SectorSize: 32, BlockSize: 64})
	c.Load(0, []byte{0xF0})

	tx(t, c, protocol.BuildWriteEnableCmd())
	tx(t, c, protocol.BuildAddressedCmd(protocol.OpPageProgram, 0), []byte{0x3C})

	assert.Equal(t, []byte{0x30}, c.Memory(0, 1))
}

func TestChipProgramWrapsInPage(t *testing.T) {
	c := New(Config{Size: 64, PageSize: 16, SectorSize: 32, BlockSize: 64})

	tx(t, c, protocol.BuildWriteEnableCmd())
	tx(t, c, protocol.BuildAddressedCmd(protocol.OpPageProgram, 14), []byte{1, 2, 3, 4})

	assert.Equal(t, []byte{3, 4}, c.Memory(0, 2))
	assert.Equal(t, []byte{1, 2}, c.Memory(14, 2))
	assert.Equal(t, []byte{0xFF}, c.Memory(16, 1))
}

func TestChipIgnoresCommandsWhileBusy(t *testing.T) {
	c := smallChip()
	c.SetBusy(5)

	tx(t, c, protocol.BuildWriteEnableCmd())
	assert.False(t, c.WriteEnabled())
}

func TestChipSectorErase(t *testing.T) {
	c := smallChip()
	c.Load(0, make([]byte, 1024))

	tx(t, c, protocol.BuildWriteEnableCmd())
	tx(t, c, protocol.BuildAddressedCmd(protocol.OpSectorErase, 70))

	assert.Equal(t, []byte{0x00}, c.Memory(63, 1))
	for _, b := range c.Memory(64, 64) {
		require.Equal(t, byte(0xFF), b)
	}
	assert.Equal(t, []byte{0x00}, c.Memory(128, 1))
}

func TestChipRead(t *testing.T) {
	c := smallChip()
	c.Load(0x100, []byte{0xDE, 0xAD, 0xBE, 0xEF})

	data := make([]byte, 4)
	tx(t, c, protocol.BuildAddressedCmd(protocol.OpRead, 0x100), data)

	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, data)
}

func TestChipLog(t *testing.T) {
	c := smallChip()

	tx(t, c, protocol.BuildWriteEnableCmd())
	tx(t, c, protocol.BuildAddressedCmd(protocol.OpRead, 0x123456), make([]byte, 2))

	log := c.Log()
	require.Len(t, log, 2)
	assert.Equal(t, []byte{protocol.OpWriteEnable, protocol.OpRead}, c.Opcodes())
	assert.Len(t, log[1].Frames, 2)
	assert.Equal(t, uint32(0x123456), log[1].Address())

	c.ResetLog()
	assert.Empty(t, c.Log())
}

func TestChipFaults(t *testing.T) {
	c := smallChip()
	boom := errors.New("boom")

	assert.ErrorIs(t, c.Transfer([]byte{0x05}), ErrNotSelected)

	c.InjectAssertError(boom)
	assert.ErrorIs(t, c.Assert(), boom)
	c.ClearFaults()

	c.InjectTransferError(1, boom)
	require.NoError(t, c.Assert())
	assert.NoError(t, c.Transfer([]byte{0x05}))
	assert.ErrorIs(t, c.Transfer([]byte{0x00}), boom)
	require.NoError(t, c.Deassert())

	// The fault sticks across windows until cleared.
	require.NoError(t, c.Assert())
	assert.ErrorIs(t, c.Transfer([]byte{0x05}), boom)
	require.NoError(t, c.Deassert())
	c.ClearFaults()

	require.NoError(t, c.Assert())
	assert.NoError(t, c.Transfer([]byte{0x05, 0x00}))
	require.NoError(t, c.Deassert())

	require.NoError(t, c.Assert())
	assert.ErrorIs(t, c.Assert(), ErrAlreadySelected)
	require.NoError(t, c.Deassert())
}
