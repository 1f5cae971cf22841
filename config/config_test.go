package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-series25/flash"
)

const periphYAML = `
geometry:
  page_size: 256
  sector_size: 4K
  block_size: 64K
  chip_size: 16M
bus:
  backend: periph
  port: SPI0.0
  cs_pin: GPIO8
  speed_hz: 10000000
poll:
  interval_ms: 2
`

// valid returns a configuration that passes Validate.
func valid() *Config {
	return &Config{
		Geometry: GeometryConfig{
			PageSize:   256,
			SectorSize: 4 << 10,
			BlockSize:  64 << 10,
			ChipSize:   1 << 20,
		},
		Bus: BusConfig{Backend: BackendSim},
	}
}

func TestDecode(t *testing.T) {
	cfg, err := Decode([]byte(periphYAML))
	require.NoError(t, err)

	assert.Equal(t, flash.Geometry{
		PageSize:   256,
		SectorSize: 4096,
		BlockSize:  65536,
		ChipSize:   16 << 20,
	}, cfg.FlashGeometry())
	assert.Equal(t, BackendPeriph, cfg.Bus.Backend)
	assert.Equal(t, "SPI0.0", cfg.Bus.Port)
	assert.Equal(t, "GPIO8", cfg.Bus.CSPin)
	assert.Equal(t, Size(10000000), cfg.Bus.SpeedHz)
	assert.Equal(t, 2*time.Millisecond, cfg.PollInterval())

	require.NoError(t, Validate(cfg))
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("geometry:\n  page_sise: 256\n"))
	assert.Error(t, err)
}

func TestDecodeRejectsBadSize(t *testing.T) {
	_, err := Decode([]byte("geometry:\n  page_size: 4X\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid size")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series25.yaml")
	require.NoError(t, os.WriteFile(path, []byte(periphYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Size(16<<20), cfg.Geometry.ChipSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    Size
		wantErr bool
	}{
		{in: "256", want: 256},
		{in: "4K", want: 4096},
		{in: "4k", want: 4096},
		{in: "16M", want: 16 << 20},
		{in: "1G", want: 1 << 30},
		{in: "0x100", want: 256},
		{in: " 64K ", want: 64 << 10},
		{in: "", wantErr: true},
		{in: "K", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "12Q", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSizeString(t *testing.T) {
	assert.Equal(t, "0", Size(0).String())
	assert.Equal(t, "256", Size(256).String())
	assert.Equal(t, "4K", Size(4096).String())
	assert.Equal(t, "16M", Size(16<<20).String())
	assert.Equal(t, "1G", Size(1<<30).String())
	assert.Equal(t, "1025", Size(1025).String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:   "zero page size",
			mutate: func(c *Config) { c.Geometry.PageSize = 0 },
			errMsg: "page size must be positive",
		},
		{
			name:   "sector not multiple of page",
			mutate: func(c *Config) { c.Geometry.SectorSize = 1000 },
			errMsg: "not a multiple of page_size",
		},
		{
			name:   "block not multiple of sector",
			mutate: func(c *Config) { c.Geometry.BlockSize = 6 << 10 },
			errMsg: "not a multiple of sector_size",
		},
		{
			name:   "chip not multiple of block",
			mutate: func(c *Config) { c.Geometry.ChipSize = 96 << 10 },
			errMsg: "not a multiple of block_size",
		},
		{
			name:   "chip beyond 24 bits",
			mutate: func(c *Config) { c.Geometry.ChipSize = 32 << 20 },
			errMsg: "24-bit address space",
		},
		{
			name:   "missing backend",
			mutate: func(c *Config) { c.Bus.Backend = "" },
			errMsg: "backend is required",
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Bus.Backend = "usb" },
			errMsg: `unknown backend "usb"`,
		},
		{
			name:   "periph without port",
			mutate: func(c *Config) { c.Bus = BusConfig{Backend: BackendPeriph, CSPin: "GPIO8"} },
			errMsg: "requires port",
		},
		{
			name:   "periph without cs pin",
			mutate: func(c *Config) { c.Bus = BusConfig{Backend: BackendPeriph, Port: "SPI0.0"} },
			errMsg: "requires cs_pin",
		},
		{
			name:   "rpio port not numeric",
			mutate: func(c *Config) { c.Bus = BusConfig{Backend: BackendRPIO, Port: "SPI0", CSPin: "8"} },
			errMsg: "numeric port",
		},
		{
			name:   "rpio cs pin not numeric",
			mutate: func(c *Config) { c.Bus = BusConfig{Backend: BackendRPIO, Port: "0", CSPin: "GPIO8"} },
			errMsg: "numeric cs_pin",
		},
		{
			name:   "rpio",
			mutate: func(c *Config) { c.Bus = BusConfig{Backend: BackendRPIO, Port: "0", CSPin: "8"} },
		},
		{
			name:   "spidev without port",
			mutate: func(c *Config) { c.Bus = BusConfig{Backend: BackendSpidev} },
			errMsg: "requires port",
		},
		{
			name:   "sim bad jedec id",
			mutate: func(c *Config) { c.Bus.Sim.JEDECID = "EFZZ" },
			errMsg: "sim jedec_id",
		},
		{
			name:   "sim short jedec id",
			mutate: func(c *Config) { c.Bus.Sim.JEDECID = "EF40" },
			errMsg: "at least 3 bytes",
		},
		{
			name: "sim negative busy polls",
			mutate: func(c *Config) {
				n := -1
				c.Bus.Sim.BusyPolls = &n
			},
			errMsg: "busy_polls",
		},
		{
			name:   "negative poll interval",
			mutate: func(c *Config) { c.Poll.IntervalMs = -1 },
			errMsg: "interval_ms",
		},
		{
			name:   "short jedec frame",
			mutate: func(c *Config) { c.JEDECFrameSize = 3 },
			errMsg: "jedec_frame_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	cfg := valid()
	before := *cfg

	require.NoError(t, Validate(cfg))
	assert.Equal(t, before, *cfg)
}

func TestNormalize(t *testing.T) {
	cfg := valid()
	require.NoError(t, Validate(cfg))

	Normalize(cfg)

	assert.Equal(t, Size(DefaultSpeedHz), cfg.Bus.SpeedHz)
	assert.Equal(t, 12, cfg.JEDECFrameSize)
	assert.Equal(t, DefaultSimJEDECID, cfg.Bus.Sim.JEDECID)
	require.NotNil(t, cfg.Bus.Sim.BusyPolls)
	assert.Equal(t, DefaultSimBusyPolls, *cfg.Bus.Sim.BusyPolls)

	// Explicit values survive.
	zero := 0
	cfg = valid()
	cfg.Bus.Sim.BusyPolls = &zero
	cfg.JEDECFrameSize = 5
	Normalize(cfg)
	assert.Equal(t, 0, *cfg.Bus.Sim.BusyPolls)
	assert.Equal(t, 5, cfg.JEDECFrameSize)

	// Sim defaults are only applied to the sim backend.
	cfg = valid()
	cfg.Bus = BusConfig{Backend: BackendSpidev, Port: "/dev/spidev0.0"}
	Normalize(cfg)
	assert.Empty(t, cfg.Bus.Sim.JEDECID)
	assert.Nil(t, cfg.Bus.Sim.BusyPolls)

	Normalize(nil)
}

func TestSizeFlag(t *testing.T) {
	var s Size
	require.NoError(t, s.Set("0x1000"))
	assert.Equal(t, Size(4096), s)

	require.NoError(t, s.Set("64K"))
	assert.Equal(t, Size(65536), s)

	assert.Error(t, s.Set("nope"))
	assert.Equal(t, Size(65536), s, "failed Set leaves the value alone")
}
