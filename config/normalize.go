package config

import "github.com/moffa90/go-series25/protocol"

// Defaults applied by Normalize.
const (
	DefaultSpeedHz      = 1000000
	DefaultSimJEDECID   = "EF4018"
	DefaultSimBusyPolls = 2
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Bus.SpeedHz == 0 {
		cfg.Bus.SpeedHz = DefaultSpeedHz
	}
	if cfg.JEDECFrameSize == 0 {
		cfg.JEDECFrameSize = protocol.DefaultJEDECFrameSize
	}

	if cfg.Bus.Backend != BackendSim {
		return
	}
	if cfg.Bus.Sim.JEDECID == "" {
		cfg.Bus.Sim.JEDECID = DefaultSimJEDECID
	}
	if cfg.Bus.Sim.BusyPolls == nil {
		n := DefaultSimBusyPolls
		cfg.Bus.Sim.BusyPolls = &n
	}
}
