//go:build !headless

package emu

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"ymsound/emu/log"
	"ymsound/hw/sound"
)

// AudioDevice plays the mixing buffer on the default audio device.
type AudioDevice struct {
	ctx    *oto.Context
	player *oto.Player
}

// OpenAudio opens the audio device. It can only be called once per
// process.
func OpenAudio(rate, bufferSize int) (*AudioDevice, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(bufferSize) * time.Second / time.Duration(rate),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	log.ModSound.InfoZ("audio device opened").
		Int("rate", rate).
		Int("buffer", bufferSize).
		End()
	return &AudioDevice{ctx: ctx}, nil
}

func (d *AudioDevice) Start(buf *sound.MixBuffer) error {
	d.player = d.ctx.NewPlayer(&bufferReader{buf: buf})
	d.player.Play()
	return nil
}

func (d *AudioDevice) Close() error {
	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	return err
}
