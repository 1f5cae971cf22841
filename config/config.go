// Package config loads the YAML file used by the series25 command.
//
// Example:
//
//	geometry:
//	  page_size: 256
//	  sector_size: 4K
//	  block_size: 64K
//	  chip_size: 16M
//	bus:
//	  backend: periph
//	  port: SPI0.0
//	  cs_pin: GPIO8
//	  speed_hz: 10000000
//	poll:
//	  interval_ms: 1
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-series25/flash"
)

// Bus backends.
const (
	BackendPeriph = "periph"
	BackendRPIO   = "rpio"
	BackendSpidev = "spidev"
	BackendSim    = "sim"
)

type Config struct {
	Geometry GeometryConfig `yaml:"geometry"`
	Bus      BusConfig      `yaml:"bus"`
	Poll     PollConfig     `yaml:"poll"`

	// JEDECFrameSize is the Read JEDEC ID exchange length, opcode included
	JEDECFrameSize int `yaml:"jedec_frame_size"`
}

// ---- GEOMETRY ----

type GeometryConfig struct {
	PageSize   Size `yaml:"page_size"`
	SectorSize Size `yaml:"sector_size"`
	BlockSize  Size `yaml:"block_size"`
	ChipSize   Size `yaml:"chip_size"`
}

// ---- BUS ----

type BusConfig struct {
	Backend string `yaml:"backend"`

	// Port is "SPI0.0" for periph, "/dev/spidev0.0" for spidev and the
	// controller number ("0", "1") for rpio
	Port string `yaml:"port"`

	// CSPin is the GPIO driving chip select: "GPIO8" for periph, the BCM
	// number for rpio. spidev uses the kernel chip select.
	CSPin string `yaml:"cs_pin"`

	SpeedHz Size `yaml:"speed_hz"`

	Sim SimConfig `yaml:"sim"`
}

// SimConfig tunes the simulated chip of the sim backend.
type SimConfig struct {
	// JEDECID is the identification response in hex, e.g. "EF4018"
	JEDECID string `yaml:"jedec_id"`

	// BusyPolls is the number of status reads reporting BUSY after each
	// erase or program command
	BusyPolls *int `yaml:"busy_polls"`

	// Image is a file holding the array contents between runs. It is
	// created on first use.
	Image string `yaml:"image"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// Load reads and decodes the file at path. Unknown keys are rejected.
// Load does not validate; call Validate and then Normalize.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Decode(data)
}

// Decode decodes a YAML document.
func Decode(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}

// FlashGeometry converts the geometry section for flash.New.
func (c *Config) FlashGeometry() flash.Geometry {
	return flash.Geometry{
		PageSize:   int(c.Geometry.PageSize),
		SectorSize: int(c.Geometry.SectorSize),
		BlockSize:  int(c.Geometry.BlockSize),
		ChipSize:   int(c.Geometry.ChipSize),
	}
}

// PollInterval returns the configured delay between status reads.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMs) * time.Millisecond
}
