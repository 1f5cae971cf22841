//go:build linux

package spidev

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// See Linux "include/uapi/linux/spi/spidev.h".
const (
	iocWrMode32      = 0x40046b05
	iocWrBitsPerWord = 0x40016b03
	iocWrMaxSpeedHz  = 0x40046b04
)

// iocTransfer mirrors struct spi_ioc_transfer.
type iocTransfer struct {
	TxBuf          uint64
	RxBuf          uint64
	Length         uint32
	SpeedHz        uint32
	DelayUsecs     uint16
	BitsPerWord    uint8
	CSChange       uint8
	TxNBits        uint8
	RxNBits        uint8
	WordDelayUsecs uint8
	Pad            uint8
}

// iocMessage is the SPI_IOC_MESSAGE(n) ioctl number.
func iocMessage(n int) uint32 {
	const (
		sizeBits  = 14
		sizeShift = 16
	)
	size := uint32(n * binary.Size(iocTransfer{}))
	if n < 0 || size > (1<<sizeBits) {
		return iocMessage(0)
	}
	return 0x40006b00 | (size << sizeShift)
}

// Open opens path in SPI mode 0, 8 bits per word, at hz.
//
// Example:
//
//	d, err := spidev.Open("/dev/spidev0.0", 10_000_000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
func Open(path string, hz uint32) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("spidev: %w", err)
	}

	mode := uint32(0)
	bits := uint8(8)
	settings := []struct {
		name string
		req  uintptr
		arg  unsafe.Pointer
	}{
		{"mode", iocWrMode32, unsafe.Pointer(&mode)},
		{"bits per word", iocWrBitsPerWord, unsafe.Pointer(&bits)},
		{"speed", iocWrMaxSpeedHz, unsafe.Pointer(&hz)},
	}
	for _, s := range settings {
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), s.req, uintptr(s.arg)); errno != 0 {
			_ = f.Close()
			return nil, fmt.Errorf("spidev: set %s: %w", s.name, errno)
		}
	}

	return &Device{
		message: func(frames [][]byte) error { return message(f, hz, frames) },
		close:   f.Close,
	}, nil
}

// message sends frames as one SPI_IOC_MESSAGE, chip select held across
// all of them, and copies the received bytes back.
func message(f *os.File, hz uint32, frames [][]byte) error {
	size := 0
	for _, fr := range frames {
		size += 2 * len(fr)
	}

	// Copy into unmanaged memory; the garbage collector may move Go buffers.
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("spidev: map buffer: %w", err)
	}
	defer func() { _ = unix.Munmap(buf) }()

	it := make([]iocTransfer, len(frames))
	off := 0
	for i, fr := range frames {
		copy(buf[off:], fr)
		it[i] = iocTransfer{
			TxBuf:       uint64(uintptr(unsafe.Pointer(&buf[off]))),
			RxBuf:       uint64(uintptr(unsafe.Pointer(&buf[off+len(fr)]))),
			Length:      uint32(len(fr)),
			SpeedHz:     hz,
			BitsPerWord: 8,
		}
		off += 2 * len(fr)
	}

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(),
		uintptr(iocMessage(len(it))),
		uintptr(unsafe.Pointer(&it[0]))); errno != 0 {
		return fmt.Errorf("spidev: transfer: %w", errno)
	}

	off = 0
	for _, fr := range frames {
		copy(fr, buf[off+len(fr):off+2*len(fr)])
		off += 2 * len(fr)
	}

	return nil
}
