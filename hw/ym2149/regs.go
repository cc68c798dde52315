package ym2149

import (
	"ymsound/hw/hwdefs"
	"ymsound/hw/hwio"
)

// Fixed point widths of the phase accumulators. A tone accumulator wraps
// once per tone period and its sign bit is the square wave. Noise and
// envelope accumulators have an integer part above their fractional bits.
const (
	toneStepShift = 28 // 2^32 / 16, tone divider is 16

	noiseFracBits  = 16
	noiseFracMask  = 1<<noiseFracBits - 1
	noiseStepShift = noiseFracBits - 4 // noise divider is 16

	envFracBits = 24

	toneSentinel = 1 << 31 // output high
)

func toneStep(period uint16, rate uint32) uint32 {
	if period <= 5 {
		return 0
	}
	return uint32(uint64(hwdefs.YMClock) << toneStepShift / (uint64(period) * uint64(rate)))
}

func noiseStep(period uint8, rate uint32) uint32 {
	if period < 3 {
		return 0
	}
	return uint32(uint64(hwdefs.YMClock) << noiseStepShift / (uint64(period) * uint64(rate)))
}

// envStep returns the envelope step, the volume changes every 8*period
// cycles. Period 0 runs twice as fast as period 1.
func envStep(period uint16, rate uint32) uint32 {
	n := uint64(hwdefs.YMClock) << envFracBits
	if period == 0 {
		return uint32(n / (4 * uint64(rate)))
	}
	return uint32(n / (8 * uint64(period) * uint64(rate)))
}

// R0-R5
func (c *Chip) WriteToneA(_, _ uint8) { c.writeTone(0, c.ToneAFine.Value, c.ToneACoarse.Value) }
func (c *Chip) WriteToneB(_, _ uint8) { c.writeTone(1, c.ToneBFine.Value, c.ToneBCoarse.Value) }
func (c *Chip) WriteToneC(_, _ uint8) { c.writeTone(2, c.ToneCFine.Value, c.ToneCCoarse.Value) }

func (c *Chip) writeTone(i int, fine, coarse uint8) {
	v := &c.voices[i]
	v.period = uint16(coarse)<<8 | uint16(fine)
	v.step = toneStep(v.period, c.rate)
	if v.step == 0 {
		v.pos = toneSentinel
	}

	modYM.InfoZ("write tone period").
		Int("voice", i).
		Uint16("period", v.period).
		Hex32("step", v.step).
		End()
}

// R6
func (c *Chip) WriteNOISE(_, val uint8) {
	c.noiseStep = noiseStep(val, c.rate)
	if c.noiseStep == 0 {
		c.noisePos = 0
		c.noiseHigh = true
	}

	modYM.InfoZ("write noise period").
		Uint8("period", val).
		Hex32("step", c.noiseStep).
		End()
}

// R7
func (c *Chip) WriteMIXER(_, val uint8) {
	for i := range c.voices {
		c.voices[i].toneOff = hwio.GetBit8(val, uint(i))
		c.voices[i].noiseOff = hwio.GetBit8(val, uint(i+3))
	}

	modYM.InfoZ("write mixer").Hex8("val", val).End()
}

// R8-R10
func (c *Chip) WriteAMPA(_, val uint8) { c.writeAmplitude(0, val) }
func (c *Chip) WriteAMPB(_, val uint8) { c.writeAmplitude(1, val) }
func (c *Chip) WriteAMPC(_, val uint8) { c.writeAmplitude(2, val) }

func (c *Chip) writeAmplitude(i int, val uint8) {
	v := &c.voices[i]
	v.envelope = hwio.GetBit8(val, 4)
	v.volume = 0
	if !v.envelope {
		v.volume = volume4to5[val&0x0F]
	}

	modYM.InfoZ("write amplitude").
		Int("voice", i).
		Bool("env", v.envelope).
		Uint8("vol", v.volume).
		End()
}

// R11-R12
func (c *Chip) WriteEnvPeriod(_, _ uint8) {
	period := uint16(c.EnvCoarse.Value)<<8 | uint16(c.EnvFine.Value)
	c.envStep = envStep(period, c.rate)

	modYM.InfoZ("write envelope period").
		Uint16("period", period).
		Hex32("step", c.envStep).
		End()
}

// R13
func (c *Chip) WriteENVSHAPE(_, val uint8) {
	c.envShape = val
	c.envPos = 0
	c.shapeWritten = true

	modYM.InfoZ("write envelope shape").Hex8("shape", val).End()
}

// WriteRegister writes val into register reg (0-13). Only the significant
// bits of val are kept.
func (c *Chip) WriteRegister(reg, val uint8) {
	if int(reg) >= hwdefs.NumRegs {
		modYM.WarnZ("write to invalid register").
			Uint8("reg", reg).
			Hex8("val", val).
			End()
		return
	}
	c.regs[reg].Write8(val)
}

// Register returns the value of register reg, or 0xFF for registers that
// are not emulated.
func (c *Chip) Register(reg uint8) uint8 {
	if int(reg) >= hwdefs.NumRegs {
		return 0xFF
	}
	return c.regs[reg].Read8()
}

// Registers returns the values of all registers.
func (c *Chip) Registers() [hwdefs.NumRegs]uint8 {
	var regs [hwdefs.NumRegs]uint8
	for i, r := range c.regs {
		regs[i] = r.Value
	}
	return regs
}
