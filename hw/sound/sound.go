// Package sound paces the YM2149 against the emulated CPU clock and
// queues the produced samples into the mixing buffer.
package sound

import (
	"fmt"

	"ymsound/emu/log"
	"ymsound/hw/hwdefs"
	"ymsound/hw/snapshot"
	"ymsound/hw/ym2149"
)

type Config struct {
	Chip  ym2149.Config
	Video hwdefs.VideoMode

	// Host audio buffer size in frames, queued as silence on
	// ResetBufferIndex to absorb the output latency.
	BufferSize int
}

func (c Config) Check() error {
	if c.Video != hwdefs.PAL && c.Video != hwdefs.NTSC {
		return fmt.Errorf("invalid video mode %d", c.Video)
	}
	if c.BufferSize < 0 || c.BufferSize > MixBufferSize/2 {
		return fmt.Errorf("invalid buffer size %d (want 0-%d)", c.BufferSize, MixBufferSize/2)
	}
	return c.Chip.Check()
}

// A Sink receives a copy of every generated frame, in order.
type Sink interface {
	WriteFrames(frames [][2]int16) error
}

// Sound is the sound subsystem: the chip and its output buffer.
type Sound struct {
	Chip *ym2149.Chip
	Buf  *MixBuffer

	video      hwdefs.VideoMode
	rate       int
	spf        int64 // samples per frame
	cpf        int64 // cycles per frame
	bufferSize int

	// Elapsed cycles not yet converted to samples, in cycles*spf units so
	// that the division remainder is never lost.
	acc int64

	generated uint64
	dropped   uint64

	sink    Sink
	sinkErr error
	tap     [][2]int16
}

func New(cfg Config) (*Sound, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	chip, err := ym2149.New(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("ym2149: %w", err)
	}
	s := &Sound{
		Chip:       chip,
		Buf:        &MixBuffer{},
		video:      cfg.Video,
		bufferSize: cfg.BufferSize,
	}
	s.setRates(cfg.Chip.SampleRate)
	return s, nil
}

func (s *Sound) setRates(rate int) {
	s.rate = rate
	s.spf = SamplesPerFrame(rate, s.video)
	s.cpf = s.video.CyclesPerFrame()
}

// SamplesPerFrame returns the number of samples produced per video frame.
func SamplesPerFrame(rate int, video hwdefs.VideoMode) int64 {
	return int64(rate+35) / int64(video.RefreshRate())
}

func (s *Sound) SamplesPerFrame() int { return int(s.spf) }

func (s *Sound) SampleRate() int { return s.rate }

func (s *Sound) VideoMode() hwdefs.VideoMode { return s.video }

// Generated returns the total number of samples written to the buffer.
func (s *Sound) Generated() uint64 { return s.generated }

// Dropped returns the number of samples lost because the buffer was full.
func (s *Sound) Dropped() uint64 { return s.dropped }

// SetSink installs a sink receiving every generated frame. A nil sink
// removes it.
func (s *Sound) SetSink(sink Sink) {
	s.sink = sink
	s.sinkErr = nil
}

// SinkErr returns the first error returned by the sink, if any. The sink
// is no longer fed after an error.
func (s *Sound) SinkErr() error { return s.sinkErr }

// Update produces the samples matching elapsed CPU cycles since the last
// call, at most one frame worth. Samples that don't fit in the buffer are
// dropped but their cycles are consumed. It returns the number of samples
// written.
func (s *Sound) Update(elapsed int64) int {
	if elapsed > 0 {
		s.acc += elapsed * s.spf
	}
	n := min(s.acc/s.cpf, s.spf)
	s.acc -= n * s.cpf

	s.Buf.mu.Lock()
	start, count := s.Buf.fill(int(n), s.Chip.NextSample)
	if s.sink != nil && s.sinkErr == nil && count > 0 {
		s.tap = s.Buf.copyFrom(s.tap[:0], start, count)
	}
	s.Buf.mu.Unlock()

	s.generated += uint64(count)
	if lost := int(n) - count; lost > 0 {
		s.dropped += uint64(lost)
		log.ModSound.DebugZ("mix buffer full").Int("dropped", lost).End()
	}

	if s.sink != nil && s.sinkErr == nil && count > 0 {
		if err := s.sink.WriteFrames(s.tap); err != nil {
			s.sinkErr = err
			log.ModSound.WarnZ("sound sink failed").Error("err", err).End()
		}
	}
	return count
}

// UpdateVBL completes the samples of the frame and clears the R13 written
// flag, once the YM recorder had a chance to read it.
func (s *Sound) UpdateVBL(elapsed int64) int {
	n := s.Update(elapsed)
	s.Chip.ClearShapeWritten()
	return n
}

// ResetBufferIndex restarts generation ahead of the consumer, leaving
// room for the host buffer and one frame.
func (s *Sound) ResetBufferIndex() {
	s.Buf.reset(s.bufferSize + int(s.spf))
}

// Reset resets the chip and the pacing state.
func (s *Sound) Reset() {
	s.Chip.Reset()
	s.acc = 0
	s.ResetBufferIndex()
	log.ModSound.InfoZ("reset").
		Int("spf", int(s.spf)).
		Stringer("video", s.video).
		End()
}

func (s *Sound) State() *snapshot.Sound {
	return &snapshot.Sound{
		Version:    snapshot.Version,
		Chip:       s.Chip.State(),
		SampleRate: s.rate,
		VideoMode:  s.video.String(),
		CycleAcc:   s.acc,
	}
}

// SetState restores a state saved with the same sample rate and video
// mode. The mixing buffer is not part of the state, the write cursor is
// reset.
func (s *Sound) SetState(state *snapshot.Sound) error {
	switch {
	case state.Version != snapshot.Version:
		return fmt.Errorf("unsupported sound state version %d", state.Version)
	case state.Chip == nil:
		return fmt.Errorf("sound state without chip")
	case state.SampleRate != s.rate:
		return fmt.Errorf("sound state sample rate is %d, want %d", state.SampleRate, s.rate)
	case state.VideoMode != s.video.String():
		return fmt.Errorf("sound state video mode is %s, want %s", state.VideoMode, s.video)
	}

	s.Chip.SetState(state.Chip)
	s.acc = max(state.CycleAcc, 0)
	s.ResetBufferIndex()
	return nil
}
