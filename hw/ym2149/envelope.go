package ym2149

import "sync"

// Envelope blocks are made of one of 4 primitives, each 32 volumes long.
type envBlock uint8

const (
	envGoDown envBlock = iota // 31 -> 0
	envGoUp                   // 0 -> 31
	envDown                   // hold 0
	envUp                     // hold 31
)

const (
	envBlockLen = 32
	envLen      = 3 * envBlockLen
)

// Envelope shapes, R13 bits: CONT ATT ALT HOLD. Block 0 is played once after
// a write to R13, then blocks 1 and 2 loop forever.
var envShapes = [16][3]envBlock{
	{envGoDown, envDown, envDown},     // 0 \___
	{envGoDown, envDown, envDown},     // 1 \___
	{envGoDown, envDown, envDown},     // 2 \___
	{envGoDown, envDown, envDown},     // 3 \___
	{envGoUp, envDown, envDown},       // 4 /___
	{envGoUp, envDown, envDown},       // 5 /___
	{envGoUp, envDown, envDown},       // 6 /___
	{envGoUp, envDown, envDown},       // 7 /___
	{envGoDown, envGoDown, envGoDown}, // 8 \\\\
	{envGoDown, envDown, envDown},     // 9 \___
	{envGoDown, envGoUp, envGoDown},   // A \/\/
	{envGoDown, envUp, envUp},         // B \---
	{envGoUp, envGoUp, envGoUp},       // C ////
	{envGoUp, envUp, envUp},           // D /---
	{envGoUp, envGoDown, envGoUp},     // E /\/\
	{envGoUp, envDown, envDown},       // F /___
}

// Envelopes holds the 16 envelope waveforms. Each entry is a volume packed
// identically in the 3 voice fields.
type Envelopes [16][envLen]uint16

var envelopes = sync.OnceValue(buildEnvelopes)

func buildEnvelopes() *Envelopes {
	var envs Envelopes
	for shape, blocks := range envShapes {
		for b, blk := range blocks {
			var vol, inc int
			switch blk {
			case envGoDown:
				vol, inc = 31, -1
			case envGoUp:
				vol, inc = 0, 1
			case envDown:
				vol, inc = 0, 0
			case envUp:
				vol, inc = 31, 0
			}
			for i := range envBlockLen {
				v := uint16(vol)
				envs[shape][b*envBlockLen+i] = packVoices(v, v, v)
				vol += inc
			}
		}
	}
	return &envs
}

// EnvelopeLevels returns the 96 volume levels (0-31) of an envelope shape.
func EnvelopeLevels(shape uint8) [envLen]uint8 {
	var lvls [envLen]uint8
	for i, v := range envelopes()[shape&0x0F] {
		lvls[i] = uint8(v & voiceMask)
	}
	return lvls
}
