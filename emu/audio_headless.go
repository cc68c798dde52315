//go:build headless

package emu

import "ymsound/emu/log"

// AudioDevice drains the mixing buffer in real time, builds without audio
// support have no device to play it on.
type AudioDevice struct {
	DiscardOutput
}

func OpenAudio(rate, bufferSize int) (*AudioDevice, error) {
	log.ModSound.WarnZ("built without audio support").End()
	return &AudioDevice{DiscardOutput{Rate: rate}}, nil
}
