package emu

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"ymsound/emu/log"
	"ymsound/hw/sound"
)

const wavBitDepth = 16

// WAVSink writes stereo frames to a 16-bit PCM WAV stream.
type WAVSink struct {
	enc *wav.Encoder
	buf audio.IntBuffer
}

func NewWAVSink(w io.WriteSeeker, rate int) *WAVSink {
	return &WAVSink{
		enc: wav.NewEncoder(w, rate, wavBitDepth, 2, 1),
		buf: audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
			SourceBitDepth: wavBitDepth,
		},
	}
}

// WriteFrames implements sound.Sink.
func (s *WAVSink) WriteFrames(frames [][2]int16) error {
	data := s.buf.Data[:0]
	for _, f := range frames {
		data = append(data, int(f[0]), int(f[1]))
	}
	s.buf.Data = data
	return s.enc.Write(&s.buf)
}

// Close completes the WAV header. The underlying writer is not closed.
func (s *WAVSink) Close() error {
	return s.enc.Close()
}

// Render plays the whole song, as fast as possible, and writes the samples
// as a WAV stream to w.
func (p *Player) Render(ctx context.Context, w io.WriteSeeker) error {
	sink := NewWAVSink(w, p.Sound.SampleRate())
	frames := make([][2]int16, sound.MixBufferSize)

	for n := 0; p.RunOneFrame(); n++ {
		if n%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		nf := p.Sound.Buf.Drain(frames[:p.Sound.Buf.Queued()])
		if err := sink.WriteFrames(frames[:nf]); err != nil {
			return fmt.Errorf("write wav: %w", err)
		}
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}

	log.ModEmu.InfoZ("song rendered").
		Int("frames", p.frame).
		Uint64("samples", p.Sound.Generated()).
		End()
	return nil
}

// RenderFile renders the song to a new WAV file at path.
func (p *Player) RenderFile(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Render(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RecordWAV records every generated sample to a WAV stream. The returned
// function completes the stream.
func (p *Player) RecordWAV(w io.WriteSeeker) (stop func() error) {
	sink := NewWAVSink(w, p.Sound.SampleRate())
	p.Sound.SetSink(sink)
	return func() error {
		err := p.Sound.SinkErr()
		p.Sound.SetSink(nil)
		if err != nil {
			return err
		}
		return sink.Close()
	}
}
