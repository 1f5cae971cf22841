// Package hal groups the transports that connect the flash driver to real
// hardware.
//
// Each subpackage provides a Device implementing both flash.Bus and
// flash.ChipSelect:
//
//   - periphbus: any SPI port and GPIO pin known to periph.io
//   - rpiobus: Raspberry Pi SPI controllers through go-rpio
//   - spidev: the Linux spidev character device
package hal
