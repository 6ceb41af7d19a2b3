package main

import (
	"fmt"

	"github.com/okonrad/chip8/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

// Screen presents the VM display buffer in an SDL window, one filled
// rect per lit pixel.
type Screen struct {
	window   *sdl.Window
	renderer *sdl.Renderer

	scale  int32
	fg, bg uint32
	border bool
}

// NewScreen creates the emulator window and its renderer.
func NewScreen(cfg Config) (*Screen, error) {
	window, err := sdl.CreateWindow("CHIP-8",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		chip8.DisplayWidth*cfg.Scale, chip8.DisplayHeight*cfg.Scale,
		sdl.WINDOW_OPENGL)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	s := &Screen{
		window:   window,
		renderer: renderer,
		scale:    cfg.Scale,
		fg:       cfg.FG,
		bg:       cfg.BG,
		border:   cfg.Border,
	}

	// show the background before the first draw instruction lands
	s.clear()
	s.renderer.Present()

	return s, nil
}

// Render presents the pixel buffer. Called only when the buffer is
// dirty.
func (s *Screen) Render(pixels []bool) {
	s.clear()
	s.setColor(s.fg)

	rect := sdl.Rect{W: s.scale, H: s.scale}
	if s.border {
		rect.W -= 2
		rect.H -= 2
	}

	for i, on := range pixels {
		if !on {
			continue
		}

		rect.X = int32(i%chip8.DisplayWidth) * s.scale
		rect.Y = int32(i/chip8.DisplayWidth) * s.scale
		s.renderer.FillRect(&rect)
	}

	s.renderer.Present()
}

// Close destroys the renderer and window.
func (s *Screen) Close() {
	s.renderer.Destroy()
	s.window.Destroy()
}

func (s *Screen) clear() {
	s.setColor(s.bg)
	s.renderer.Clear()
}

// setColor splits an RRGGBBAA value into the renderer draw color.
func (s *Screen) setColor(c uint32) {
	s.renderer.SetDrawColor(uint8(c>>24), uint8(c>>16), uint8(c>>8), uint8(c))
}
