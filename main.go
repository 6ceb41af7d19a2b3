// Package main implements an SDL2 frontend for the CHIP-8 virtual machine.
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okonrad/chip8/chip8"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const framesPerSecond = 60

func init() {
	// SDL event handling must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	cfg, err := parseFlags()
	logger := createLogger(cfg)
	if err != nil {
		logger.Fatal(err.Error())
	}

	if cfg.ShowVersion {
		fmt.Printf("version: %s\n", buildinfo.Version(version, commit, date))
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("emulation failed", log.Err(err))
	}
}

func run(cfg Config, logger *log.Logger) error {
	ctx := app.Context()

	rom := cfg.ROM
	if rom == "" {
		var err error
		if rom, err = chooseROM(); err != nil {
			return fmt.Errorf("no rom selected: %w", err)
		}
	}

	vm, err := chip8.LoadFile(rom)
	if err != nil {
		return err
	}
	if cfg.Debug {
		vm.SetLogger(logger)
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_TIMER); err != nil {
		return fmt.Errorf("initializing SDL: %w", err)
	}
	defer sdl.Quit()

	screen, err := NewScreen(cfg)
	if err != nil {
		return err
	}
	defer screen.Close()

	beeper, err := NewBeeper()
	if err != nil {
		return err
	}
	defer beeper.Close()

	logger.Info("starting emulation",
		log.String("rom", rom),
		log.Int("ips", cfg.IPS))

	// instruction batch per 60 Hz frame
	ipf := cfg.IPS / framesPerSecond

	frame := time.NewTicker(time.Second / framesPerSecond)
	defer frame.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil

		case <-frame.C:
			if !processEvents(vm, beeper, logger) {
				return nil
			}

			if err := vm.RunFrame(ipf); err != nil {
				return err
			}

			if vm.DrawFlag() {
				screen.Render(vm.Display())
				vm.ClearDrawFlag()
			}

			beeper.Update(vm.SoundActive())
		}
	}
}
