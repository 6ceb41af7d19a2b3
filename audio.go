package main

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	toneHz     = 440
	sampleRate = 44100

	// one frame worth of mono 16-bit samples
	samplesPerFrame = sampleRate / framesPerSecond

	// cap the device queue at ~3 frames so the tone stops promptly
	// when the sound timer runs out
	maxQueuedBytes = samplesPerFrame * 2 * 3

	maxVolume     = 10
	defaultVolume = 6
)

// Beeper generates the square-wave tone gated by the sound timer. The
// audio device drains its queue on its own thread at its own cadence
// while the frame loop adjusts the volume, so the volume lives in an
// atomic.
type Beeper struct {
	device sdl.AudioDeviceID
	phase  int // position within the current wave period
	volume atomic.Int32
}

// NewBeeper opens the default audio device and starts it unpaused; it
// plays whatever Update queues, which is silence until a ROM sets the
// sound timer.
func NewBeeper() (*Beeper, error) {
	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  512,
	}

	device, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	sdl.PauseAudioDevice(device, false)

	b := &Beeper{device: device}
	b.volume.Store(defaultVolume)

	return b, nil
}

// Update queues one frame of audio: a square wave while the tone is
// active, silence otherwise.
func (b *Beeper) Update(active bool) {
	if sdl.GetQueuedAudioSize(b.device) > maxQueuedBytes {
		return
	}

	buf := make([]byte, samplesPerFrame*2)

	if active {
		amp := int16(b.volume.Load()) * 1000
		period := sampleRate / toneHz

		for i := 0; i < samplesPerFrame; i++ {
			sample := amp
			if b.phase < period/2 {
				sample = -amp
			}
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))

			b.phase = (b.phase + 1) % period
		}
	} else {
		b.phase = 0
	}

	sdl.QueueAudio(b.device, buf)
}

// VolumeUp raises the tone gain one notch.
func (b *Beeper) VolumeUp() {
	if v := b.volume.Load(); v < maxVolume {
		b.volume.Store(v + 1)
	}
}

// VolumeDown lowers the tone gain one notch.
func (b *Beeper) VolumeDown() {
	if v := b.volume.Load(); v > 0 {
		b.volume.Store(v - 1)
	}
}

// Close stops and closes the audio device.
func (b *Beeper) Close() {
	sdl.CloseAudioDevice(b.device)
}
