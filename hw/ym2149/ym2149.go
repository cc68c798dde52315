// Package ym2149 emulates the YM2149 PSG of the Atari ST: 3 square wave
// voices, a noise generator and an envelope generator, mixed through a
// model of the ST DAC.
package ym2149

import (
	"fmt"

	"ymsound/emu/log"
	"ymsound/hw/hwdefs"
	"ymsound/hw/hwio"
)

var modYM = log.NewModule("ym2149")

const (
	MinSampleRate = 22050 // below, tone steps overflow 32 bits
	MaxSampleRate = 96000
)

// Config holds the chip settings, fixed at creation.
type Config struct {
	SampleRate int
	DAC        DACConfig
	LowPass    bool
}

func (c Config) Check() error {
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("invalid sample rate %d (want %d-%d)", c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if err := c.DAC.Check(); err != nil {
		return fmt.Errorf("invalid volume table config: %w", err)
	}
	return nil
}

type voice struct {
	period uint16 // 12 bits
	step   uint32
	pos    uint32

	toneOff  bool
	noiseOff bool

	envelope bool  // volume follows the envelope
	volume   uint8 // 5-bit fixed volume, when envelope is false
}

// Chip is a YM2149. It's not safe for concurrent use, the host must
// serialize register writes and sample generation.
type Chip struct {
	ToneAFine   hwio.Reg8 `hwio:"offset=0,wcb=WriteToneA"`
	ToneACoarse hwio.Reg8 `hwio:"offset=1,mask=0x0F,wcb=WriteToneA"`
	ToneBFine   hwio.Reg8 `hwio:"offset=2,wcb=WriteToneB"`
	ToneBCoarse hwio.Reg8 `hwio:"offset=3,mask=0x0F,wcb=WriteToneB"`
	ToneCFine   hwio.Reg8 `hwio:"offset=4,wcb=WriteToneC"`
	ToneCCoarse hwio.Reg8 `hwio:"offset=5,mask=0x0F,wcb=WriteToneC"`
	Noise       hwio.Reg8 `hwio:"offset=6,mask=0x1F,wcb"`
	Mixer       hwio.Reg8 `hwio:"offset=7,mask=0x3F,wcb"`
	AmpA        hwio.Reg8 `hwio:"offset=8,mask=0x1F,wcb"`
	AmpB        hwio.Reg8 `hwio:"offset=9,mask=0x1F,wcb"`
	AmpC        hwio.Reg8 `hwio:"offset=10,mask=0x1F,wcb"`
	EnvFine     hwio.Reg8 `hwio:"offset=11,wcb=WriteEnvPeriod"`
	EnvCoarse   hwio.Reg8 `hwio:"offset=12,wcb=WriteEnvPeriod"`
	EnvShape    hwio.Reg8 `hwio:"offset=13,mask=0x0F,wcb"`

	regs [hwdefs.NumRegs]*hwio.Reg8

	rate   uint32
	voices [hwdefs.NumVoices]voice

	noiseStep uint32
	noisePos  uint32
	noiseHigh bool
	lfsr      uint32 // 17 bits

	envStep  uint32
	envPos   uint32
	envShape uint8

	shapeWritten bool

	waves   *Envelopes
	dac     *DACTable
	lowpass bool
	filter  Filter
}

// New returns a chip in its reset state.
func New(cfg Config) (*Chip, error) {
	c := &Chip{}
	hwio.MustInitRegs(c)

	regs, err := hwio.BankRegs(c, 0)
	if err != nil {
		return nil, err
	}
	if len(regs) != hwdefs.NumRegs {
		return nil, fmt.Errorf("found %d registers, want %d", len(regs), hwdefs.NumRegs)
	}
	for i, r := range regs {
		c.regs[i] = r.Reg.(*hwio.Reg8)
	}

	if err := c.Configure(cfg); err != nil {
		return nil, err
	}
	c.Reset()
	return c, nil
}

// Configure changes the chip settings. Derived steps are recomputed for the
// new sample rate, the current register values are kept.
func (c *Chip) Configure(cfg Config) error {
	if err := cfg.Check(); err != nil {
		return err
	}
	dac, err := DAC(cfg.DAC)
	if err != nil {
		return err
	}

	c.waves = envelopes()
	c.dac = dac
	c.lowpass = cfg.LowPass
	c.filter.Reset()

	if rate := uint32(cfg.SampleRate); rate != c.rate {
		c.rate = rate
		c.recomputeSteps()
	}

	modYM.InfoZ("configured").
		Int("rate", cfg.SampleRate).
		Stringer("mixing", cfg.DAC.Mode).
		Bool("lowpass", cfg.LowPass).
		End()
	return nil
}

func (c *Chip) recomputeSteps() {
	for i := range c.voices {
		c.voices[i].step = toneStep(c.voices[i].period, c.rate)
	}
	c.noiseStep = noiseStep(c.Noise.Value, c.rate)
	c.envStep = envStep(uint16(c.EnvCoarse.Value)<<8|uint16(c.EnvFine.Value), c.rate)
}

// Reset puts the chip in its power-on state: all registers cleared, tone
// and noise disabled on all voices.
func (c *Chip) Reset() {
	for i := range c.regs {
		c.WriteRegister(uint8(i), 0)
	}
	c.WriteRegister(7, 0xFF)

	c.noiseHigh = true
	c.lfsr = 1
	c.envShape = 0
	c.envPos = 0
	c.filter.Reset()
	c.shapeWritten = false
}

// ShapeWritten reports whether R13 has been written since the last call to
// ClearShapeWritten.
func (c *Chip) ShapeWritten() bool { return c.shapeWritten }

func (c *Chip) ClearShapeWritten() { c.shapeWritten = false }

// EnvMask returns the packed 3x5-bit mask of voices using the envelope.
func (c *Chip) EnvMask() uint16 {
	var m uint16
	for i, v := range c.voices {
		if v.envelope {
			m |= voiceMask << (i * voiceBits)
		}
	}
	return m
}

// FixedVolumes returns the packed 3x5-bit volumes of voices not using the
// envelope.
func (c *Chip) FixedVolumes() uint16 {
	var m uint16
	for i, v := range c.voices {
		if !v.envelope {
			m |= uint16(v.volume) << (i * voiceBits)
		}
	}
	return m
}

// clockNoise clocks the 17-bit LFSR and returns the bit shifted in.
func (c *Chip) clockNoise() uint32 {
	bit := (c.lfsr ^ c.lfsr>>2) & 1
	c.lfsr = c.lfsr>>1 | bit<<16
	return bit
}

// NextSample computes the next output sample and advances all generators
// by one sample period.
func (c *Chip) NextSample() int16 {
	if c.noisePos>>noiseFracBits != 0 {
		if c.clockNoise() == 0 {
			c.noiseHigh = !c.noiseHigh
		}
		c.noisePos &= noiseFracMask
	}

	env := c.waves[c.envShape][c.envPos>>envFracBits]

	var idx uint16
	for i := range c.voices {
		v := &c.voices[i]
		tone := v.pos>>31 != 0
		if !(tone || v.toneOff) || !(c.noiseHigh || v.noiseOff) {
			continue
		}
		shift := i * voiceBits
		if v.envelope {
			idx |= env & (voiceMask << shift)
		} else {
			idx |= uint16(v.volume) << shift
		}
	}
	sample := c.dac[idx]

	// All accumulators wrap modulo 2^32.
	for i := range c.voices {
		c.voices[i].pos += c.voices[i].step
	}
	c.noisePos += c.noiseStep
	c.envPos += c.envStep
	if c.envPos >= envLen<<envFracBits {
		// loop over blocks 1 and 2
		c.envPos -= 2 * envBlockLen << envFracBits
	}

	if c.lowpass {
		sample = c.filter.Process(sample)
	}
	return sample
}
