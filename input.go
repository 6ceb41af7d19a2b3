package main

import (
	"errors"
	"os"

	"github.com/okonrad/chip8/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
)

// keyMap maps the left-hand block of a modern keyboard onto the 4x4
// hex keypad.
var keyMap = map[sdl.Scancode]byte{
	sdl.SCANCODE_X: 0x0,
	sdl.SCANCODE_1: 0x1,
	sdl.SCANCODE_2: 0x2,
	sdl.SCANCODE_3: 0x3,
	sdl.SCANCODE_Q: 0x4,
	sdl.SCANCODE_W: 0x5,
	sdl.SCANCODE_E: 0x6,
	sdl.SCANCODE_A: 0x7,
	sdl.SCANCODE_S: 0x8,
	sdl.SCANCODE_D: 0x9,
	sdl.SCANCODE_Z: 0xA,
	sdl.SCANCODE_C: 0xB,
	sdl.SCANCODE_4: 0xC,
	sdl.SCANCODE_R: 0xD,
	sdl.SCANCODE_F: 0xE,
	sdl.SCANCODE_V: 0xF,
}

// chooseROM opens a native file dialog for picking a ROM image.
func chooseROM() (string, error) {
	return dialog.File().Title("Open ROM").Load()
}

// processEvents drains the SDL event queue into the VM keypad and the
// emulator hotkeys. Returns false when the user quit.
func processEvents(vm *chip8.VM, beeper *Beeper, logger *log.Logger) bool {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			vm.Halt()
			return false

		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYUP {
				if key, ok := keyMap[ev.Keysym.Scancode]; ok {
					vm.ReleaseKey(key)
				}
				continue
			}

			if key, ok := keyMap[ev.Keysym.Scancode]; ok {
				vm.PressKey(key)
				continue
			}

			if !handleHotkey(ev.Keysym.Scancode, vm, beeper, logger) {
				return false
			}
		}
	}

	return true
}

// handleHotkey reacts to the emulator control keys. Returns false on
// quit.
func handleHotkey(code sdl.Scancode, vm *chip8.VM, beeper *Beeper, logger *log.Logger) bool {
	switch code {
	case sdl.SCANCODE_ESCAPE:
		vm.Halt()
		return false

	case sdl.SCANCODE_SPACE:
		switch vm.State() {
		case chip8.StateRunning:
			vm.Pause()
			logger.Info("paused")
		case chip8.StatePaused:
			vm.Resume()
			logger.Info("resumed")
		}

	case sdl.SCANCODE_BACKSPACE:
		vm.Reset()
		logger.Info("reset")

	case sdl.SCANCODE_F3:
		loadROMDialog(vm, logger)

	case sdl.SCANCODE_MINUS:
		beeper.VolumeDown()

	case sdl.SCANCODE_EQUALS:
		beeper.VolumeUp()
	}

	return true
}

// loadROMDialog swaps in a new ROM picked from a file dialog. The
// running program keeps going if the user cancels or the load fails.
func loadROMDialog(vm *chip8.VM, logger *log.Logger) {
	path, err := chooseROM()
	if err != nil {
		if !errors.Is(err, dialog.Cancelled) {
			logger.Error("rom dialog failed", log.Err(err))
		}
		return
	}

	rom, err := os.ReadFile(path)
	if err != nil {
		logger.Error("reading rom failed", log.Err(err))
		return
	}

	if err := vm.Load(rom); err != nil {
		logger.Error("loading rom failed", log.Err(err))
		return
	}

	logger.Info("loaded rom", log.String("rom", path))
}
