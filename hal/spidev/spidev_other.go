//go:build !linux

package spidev

import "errors"

// Open is only supported on Linux.
func Open(path string, hz uint32) (*Device, error) {
	return nil, errors.New("spidev: only supported on linux")
}
