package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	rpio "github.com/stianeikeland/go-rpio/v4"
	"periph.io/x/conn/v3/physic"

	"github.com/moffa90/go-series25/config"
	"github.com/moffa90/go-series25/flash"
	"github.com/moffa90/go-series25/flashtest"
	"github.com/moffa90/go-series25/hal/periphbus"
	"github.com/moffa90/go-series25/hal/rpiobus"
	"github.com/moffa90/go-series25/hal/spidev"
)

// transport is what every backend hands to flash.New.
type transport interface {
	flash.Bus
	flash.ChipSelect
	io.Closer
}

// openTransport builds the backend selected by cfg. cfg must be validated
// and normalized.
func openTransport(cfg *config.Config) (transport, error) {
	b := cfg.Bus

	var (
		t   transport
		err error
	)
	switch b.Backend {
	case config.BackendPeriph:
		var d *periphbus.Device
		d, err = periphbus.Open(b.Port, b.CSPin, physic.Frequency(b.SpeedHz)*physic.Hertz)
		t = d
	case config.BackendRPIO:
		port, _ := strconv.ParseUint(b.Port, 10, 8)
		pin, _ := strconv.ParseUint(b.CSPin, 10, 8)
		var d *rpiobus.Device
		d, err = rpiobus.Open(rpio.SpiDev(port), uint8(pin), int(b.SpeedHz))
		t = d
	case config.BackendSpidev:
		var d *spidev.Device
		d, err = spidev.Open(b.Port, uint32(b.SpeedHz))
		t = d
	case config.BackendSim:
		var d *simTransport
		d, err = openSim(cfg)
		t = d
	default:
		err = fmt.Errorf("unknown backend %q", b.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", b.Backend, err)
	}

	return t, nil
}

// simTransport is a simulated chip whose array optionally lives in a file
// between runs.
type simTransport struct {
	*flashtest.Chip
	image string
}

func openSim(cfg *config.Config) (*simTransport, error) {
	id, err := hex.DecodeString(cfg.Bus.Sim.JEDECID)
	if err != nil {
		return nil, fmt.Errorf("sim jedec_id: %w", err)
	}
	busy := 0
	if cfg.Bus.Sim.BusyPolls != nil {
		busy = *cfg.Bus.Sim.BusyPolls
	}

	geom := cfg.FlashGeometry()
	chip := flashtest.New(flashtest.Config{
		Size:       geom.ChipSize,
		PageSize:   geom.PageSize,
		SectorSize: geom.SectorSize,
		BlockSize:  geom.BlockSize,
		JEDECID:    id,
		BusyPolls:  busy,
	})

	s := &simTransport{Chip: chip, image: cfg.Bus.Sim.Image}
	if s.image == "" {
		return s, nil
	}

	data, err := os.ReadFile(s.image)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("sim image: %w", err)
	case len(data) != geom.ChipSize:
		return nil, fmt.Errorf("sim image %s: got %d bytes, want %d", s.image, len(data), geom.ChipSize)
	default:
		chip.Load(0, data)
	}

	return s, nil
}

// Close saves the array to the image file, if one is configured.
func (s *simTransport) Close() error {
	if s.image == "" {
		return nil
	}
	size := s.Config().Size
	return os.WriteFile(s.image, s.Memory(0, size), 0o644)
}
