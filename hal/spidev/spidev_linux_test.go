//go:build linux

package spidev

import (
	"encoding/binary"
	"testing"
)

func TestIocTransferSize(t *testing.T) {
	if got := binary.Size(iocTransfer{}); got != 32 {
		t.Errorf("binary.Size(iocTransfer{}) = %d, want 32", got)
	}
}

func TestIocMessage(t *testing.T) {
	tests := []struct {
		n    int
		want uint32
	}{
		{0, 0x40006b00},
		{1, 0x40206b00},
		{2, 0x40406b00},
		{-1, 0x40006b00},
		{1 << 10, 0x40006b00},
	}

	for _, tt := range tests {
		if got := iocMessage(tt.n); got != tt.want {
			t.Errorf("iocMessage(%d) = 0x%08X, want 0x%08X", tt.n, got, tt.want)
		}
	}
}
