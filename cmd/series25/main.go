// Command series25 identifies, reads, erases and programs 25-series SPI
// flash and EEPROM chips.
//
// Usage:
//
//	series25 [-config file] [-v] <command> [flags] [args]
//
// Without -config an in-memory simulated chip is used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"

	"golang.org/x/exp/slog"

	"github.com/moffa90/go-series25/config"
	"github.com/moffa90/go-series25/flash"
	"github.com/moffa90/go-series25/flashtest"
)

// errUsage is returned after usage has been printed.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "series25: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("series25", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML configuration `file` (default: in-memory simulator)")
	verbose := fs.Bool("v", false, "log every driver operation")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		fs.Usage()
		return errUsage
	}

	act, err := cmd.parse(name, fs.Args()[1:], stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	t, err := openTransport(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := t.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s backend: %w", cfg.Bus.Backend, cerr)
		}
	}()

	f, err := flash.New(ctx, t, t, cfg.FlashGeometry(),
		flash.WithLogger(logger),
		flash.WithPollInterval(cfg.PollInterval()),
		flash.WithJEDECFrameSize(cfg.JEDECFrameSize),
	)
	if err != nil {
		return err
	}

	s := &session{flash: f, geom: cfg.FlashGeometry(), out: stdout, logger: logger}
	return act(ctx, s)
}

// loadConfig reads, validates and normalizes path, or builds the default
// simulator configuration when path is empty.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	if path == "" {
		d := flashtest.DefaultConfig()
		cfg = &config.Config{
			Geometry: config.GeometryConfig{
				PageSize:   config.Size(d.PageSize),
				SectorSize: config.Size(d.SectorSize),
				BlockSize:  config.Size(d.BlockSize),
				ChipSize:   config.Size(d.Size),
			},
			Bus: config.BusConfig{Backend: config.BackendSim},
		}
	} else {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	return cfg, nil
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "usage: series25 [-config file] [-v] <command> [flags] [args]\n\nflags:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\ncommands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].summary)
	}
}
