package emu

import (
	"fmt"
	"os"

	"ymsound/hw/snapshot"
	"ymsound/hw/sound"
)

// SaveState writes the sound state as JSON to path.
func SaveState(path string, snd *sound.Sound) error {
	buf, err := snd.State().MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// LoadState restores the sound state saved at path.
func LoadState(path string, snd *sound.Sound) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var state snapshot.Sound
	if err := state.UnmarshalJSON(buf); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return snd.SetState(&state)
}
