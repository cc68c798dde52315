package ym2149

import (
	"ymsound/hw/hwio"
	"ymsound/hw/snapshot"
)

func (c *Chip) State() *snapshot.YM2149 {
	var state snapshot.YM2149
	state.Regs = c.Registers()
	for i := range c.voices {
		state.Voices[i].Step = c.voices[i].step
		state.Voices[i].Pos = c.voices[i].pos
	}
	state.NoiseStep = c.noiseStep
	state.NoisePos = c.noisePos
	state.NoiseHigh = c.noiseHigh
	state.LFSR = c.lfsr
	state.EnvStep = c.envStep
	state.EnvPos = c.envPos
	state.EnvShape = c.envShape
	state.EnvMask = c.EnvMask()
	state.FixedVolumes = c.FixedVolumes()
	state.ShapeWritten = c.shapeWritten
	return &state
}

// SetState restores the chip state. Register values are stored without
// triggering their side effects, values are masked to their hardware width.
// The output filter restarts from a clean state.
func (c *Chip) SetState(state *snapshot.YM2149) {
	for i, r := range c.regs {
		r.Value = state.Regs[i] & r.Mask
	}

	mixer := c.Mixer.Value
	for i := range c.voices {
		v := &c.voices[i]
		shift := uint(i * voiceBits)

		v.period = uint16(c.regs[2*i+1].Value)<<8 | uint16(c.regs[2*i].Value)
		v.step = state.Voices[i].Step
		v.pos = state.Voices[i].Pos
		v.toneOff = hwio.GetBit8(mixer, uint(i))
		v.noiseOff = hwio.GetBit8(mixer, uint(i+3))
		v.envelope = hwio.Field16(state.EnvMask, shift, voiceBits) != 0
		v.volume = 0
		if !v.envelope {
			v.volume = uint8(hwio.Field16(state.FixedVolumes, shift, voiceBits))
		}
	}

	c.noiseStep = state.NoiseStep
	c.noisePos = state.NoisePos
	c.noiseHigh = state.NoiseHigh
	c.lfsr = state.LFSR & (1<<17 - 1)
	c.envStep = state.EnvStep
	c.envPos = loopEnvPos(state.EnvPos)
	c.envShape = state.EnvShape & 0x0F
	c.shapeWritten = state.ShapeWritten
	c.filter.Reset()
}

// loopEnvPos folds an envelope position past the end of the table into
// blocks 1 and 2, as the envelope loop does. Block 0 is only played once.
func loopEnvPos(pos uint32) uint32 {
	const (
		end   = envLen << envFracBits
		start = envBlockLen << envFracBits
		loop  = 2 * envBlockLen << envFracBits
	)
	if pos < end {
		return pos
	}
	return start + (pos-start)%loop
}
