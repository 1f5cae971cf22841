package flash

import (
	"time"

	"github.com/moffa90/go-series25/protocol"
)

// Config holds the driver configuration.
type Config struct {
	// ProgressCallback is called after every erase or program command (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// PollInterval is the delay between status reads in Pending.WaitContext.
	// Zero polls back to back.
	PollInterval time.Duration

	// JEDECFrameSize is the length of the Read JEDEC ID exchange, opcode included
	JEDECFrameSize int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		JEDECFrameSize: protocol.DefaultJEDECFrameSize,
	}
}

// Option is a functional option for configuring the driver.
type Option func(*Config)

// WithProgressCallback sets a callback invoked after each erase or program
// command is sent.
//
// Example:
//
//	f, err := flash.New(ctx, bus, cs, geom,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        fmt.Printf("%s %d/%d\n", p.Operation, p.Unit, p.TotalUnits)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for driver operations.
//
// Example:
//
//	f, err := flash.New(ctx, bus, cs, geom, flash.WithLogger(slog.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithPollInterval sets the delay between status reads in
// Pending.WaitContext and Pending.Sync. Negative values are ignored.
//
// Example:
//
//	f, err := flash.New(ctx, bus, cs, geom, flash.WithPollInterval(time.Millisecond))
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.PollInterval = interval
		}
	}
}

// WithJEDECFrameSize sets the length of the Read JEDEC ID exchange.
// Sizes below protocol.MinJEDECFrameSize are ignored.
// Default is 12 bytes, enough for long continuation chains.
func WithJEDECFrameSize(size int) Option {
	return func(c *Config) {
		if size >= protocol.MinJEDECFrameSize {
			c.JEDECFrameSize = size
		}
	}
}
