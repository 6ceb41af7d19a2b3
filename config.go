package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/retroenv/retrogolib/log"
)

// Config collects the emulator settings supplied on the command line.
type Config struct {
	ROM string

	Scale  int32  // window pixels per CHIP-8 pixel
	FG     uint32 // foreground color, RRGGBBAA
	BG     uint32 // background color, RRGGBBAA
	Border bool   // 1px gap between pixels

	IPS int // instructions per second

	Debug       bool
	Quiet       bool
	ShowVersion bool
}

// parseFlags reads the command line into a Config. The single optional
// positional argument is the ROM path.
func parseFlags() (Config, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: %s [options] [rom]\n\n", os.Args[0])
		flags.PrintDefaults()
	}

	cfg := Config{}
	scale := flags.Int("scale", 20, "window pixels per CHIP-8 pixel")
	fg := flags.String("fg", "0FEEEEFF", "foreground color as RRGGBBAA hex")
	bg := flags.String("bg", "020022FF", "background color as RRGGBBAA hex")
	flags.BoolVar(&cfg.Border, "border", false, "draw a 1px border around pixels")
	flags.IntVar(&cfg.IPS, "ips", 700, "instructions per second")
	flags.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&cfg.Quiet, "quiet", false, "perform operations quietly")
	flags.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return cfg, err
	}
	cfg.ROM = flags.Arg(0)

	if *scale < 1 {
		return cfg, fmt.Errorf("invalid scale factor %d", *scale)
	}
	cfg.Scale = int32(*scale)

	if cfg.IPS < 60 {
		return cfg, fmt.Errorf("invalid instruction rate %d, minimum 60", cfg.IPS)
	}

	var err error
	if cfg.FG, err = parseColor(*fg); err != nil {
		return cfg, fmt.Errorf("parsing foreground color: %w", err)
	}
	if cfg.BG, err = parseColor(*bg); err != nil {
		return cfg, fmt.Errorf("parsing background color: %w", err)
	}

	return cfg, nil
}

// parseColor parses an RRGGBBAA hex string, with or without a leading #.
func parseColor(s string) (uint32, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}

	c, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not an RRGGBBAA value: %w", s, err)
	}

	return uint32(c), nil
}

// createLogger creates a logger with the level derived from the flags.
func createLogger(cfg Config) *log.Logger {
	logCfg := log.DefaultConfig()
	if cfg.Debug {
		logCfg.Level = log.DebugLevel
	} else if cfg.Quiet {
		logCfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(logCfg)
}
