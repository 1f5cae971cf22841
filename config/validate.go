package config

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/moffa90/go-series25/protocol"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// GEOMETRY
	// ------------------------------------------------------------

	if err := cfg.FlashGeometry().Validate(); err != nil {
		return fmt.Errorf("geometry: %w", err)
	}

	g := cfg.Geometry
	if g.SectorSize%g.PageSize != 0 {
		return fmt.Errorf("geometry: sector_size %s is not a multiple of page_size %s", g.SectorSize, g.PageSize)
	}
	if g.BlockSize%g.SectorSize != 0 {
		return fmt.Errorf("geometry: block_size %s is not a multiple of sector_size %s", g.BlockSize, g.SectorSize)
	}
	if g.ChipSize%g.BlockSize != 0 {
		return fmt.Errorf("geometry: chip_size %s is not a multiple of block_size %s", g.ChipSize, g.BlockSize)
	}
	if g.ChipSize > protocol.AddressMask+1 {
		return fmt.Errorf("geometry: chip_size %s exceeds the 24-bit address space", g.ChipSize)
	}

	// ------------------------------------------------------------
	// BUS
	// ------------------------------------------------------------

	b := cfg.Bus
	switch b.Backend {
	case BackendPeriph:
		if b.Port == "" {
			return fmt.Errorf("bus: backend %q requires port", b.Backend)
		}
		if b.CSPin == "" {
			return fmt.Errorf("bus: backend %q requires cs_pin", b.Backend)
		}
	case BackendRPIO:
		if _, err := strconv.ParseUint(b.Port, 10, 8); err != nil {
			return fmt.Errorf("bus: backend %q requires a numeric port, got %q", b.Backend, b.Port)
		}
		if _, err := strconv.ParseUint(b.CSPin, 10, 8); err != nil {
			return fmt.Errorf("bus: backend %q requires a numeric cs_pin, got %q", b.Backend, b.CSPin)
		}
	case BackendSpidev:
		if b.Port == "" {
			return fmt.Errorf("bus: backend %q requires port", b.Backend)
		}
	case BackendSim:
		if b.Sim.JEDECID != "" {
			id, err := hex.DecodeString(b.Sim.JEDECID)
			if err != nil {
				return fmt.Errorf("bus: sim jedec_id: %w", err)
			}
			if len(id) < protocol.IDSize {
				return fmt.Errorf("bus: sim jedec_id needs at least %d bytes, got %d", protocol.IDSize, len(id))
			}
		}
		if b.Sim.BusyPolls != nil && *b.Sim.BusyPolls < 0 {
			return fmt.Errorf("bus: sim busy_polls must not be negative")
		}
	case "":
		return fmt.Errorf("bus: backend is required")
	default:
		return fmt.Errorf("bus: unknown backend %q", b.Backend)
	}

	// ------------------------------------------------------------
	// POLL / IDENTIFICATION
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll: interval_ms must not be negative")
	}
	if cfg.JEDECFrameSize != 0 && cfg.JEDECFrameSize < protocol.MinJEDECFrameSize {
		return fmt.Errorf("jedec_frame_size must be at least %d, got %d", protocol.MinJEDECFrameSize, cfg.JEDECFrameSize)
	}

	return nil
}
