package emu

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"ymsound/emu/log"
	"ymsound/hw/hwdefs"
	"ymsound/hw/sound"
	"ymsound/hw/ym2149"
	"ymsound/ymfile"
)

// Output consumes the samples of the mixing buffer, at its own pace.
type Output interface {
	Start(buf *sound.MixBuffer) error
	Close() error
}

// Player replays a YM register dump: each video frame it writes the frame
// registers to the chip, then completes the frame samples.
type Player struct {
	Sound *sound.Sound

	song  *ymfile.Song
	port  *ym2149.Port
	rec   *ymfile.Recorder
	frame int
	loop  bool

	cpf    int64 // cycles per frame
	cycle  int64 // cycle within the current frame
	synced int64 // cycle up to which the sound was generated

	// These are accessed concurrently by the player loop and the UI.
	quit   atomic.Bool
	paused atomic.Bool
}

// NewPlayer creates the sound subsystem and prepares the replay of song.
func NewPlayer(song *ymfile.Song, scfg sound.Config) (*Player, error) {
	if len(song.Frames) == 0 {
		return nil, fmt.Errorf("empty song")
	}
	snd, err := sound.New(scfg)
	if err != nil {
		return nil, fmt.Errorf("sound setup failed: %w", err)
	}

	if rate := snd.VideoMode().RefreshRate(); int(song.FrameRate) != rate {
		log.ModEmu.WarnZ("song frame rate doesn't match video mode").
			Uint16("song", song.FrameRate).
			Int("video", rate).
			End()
	}
	if song.Clock != hwdefs.YMClock {
		log.ModEmu.WarnZ("song made for another clock, pitch will differ").
			Uint32("clock", song.Clock).
			End()
	}

	p := &Player{
		Sound: snd,
		song:  song,
		cpf:   snd.VideoMode().CyclesPerFrame(),
	}
	p.port = ym2149.NewPort(snd.Chip, p.catchUp)
	return p, nil
}

// SetLoop makes the song restart at its loop frame when it ends.
func (p *Player) SetLoop(loop bool) { p.loop = loop }

// Record starts capturing the chip registers at each frame.
func (p *Player) Record() *ymfile.Recorder {
	p.rec = ymfile.NewRecorder(p.Sound.Chip)
	return p.rec
}

// Frame returns the index of the next frame to play.
func (p *Player) Frame() int { return p.frame }

func (p *Player) Done() bool { return p.frame >= len(p.song.Frames) }

// catchUp generates the samples up to the current cycle, before a register
// write changes the chip state.
func (p *Player) catchUp() {
	if p.cycle > p.synced {
		p.Sound.Update(p.cycle - p.synced)
		p.synced = p.cycle
	}
}

func (p *Player) writeRegs(f *ymfile.Frame) {
	for reg := range uint8(hwdefs.NumRegs) {
		val := f[reg]
		if reg == 13 && val == ymfile.NoShapeWrite {
			continue
		}
		p.port.Bus.Write8(0, reg)
		p.port.Bus.Write8(2, val)
	}
}

// RunOneFrame plays the next frame. It returns false once the song is
// over.
func (p *Player) RunOneFrame() bool {
	if p.Done() {
		if !p.loop {
			return false
		}
		p.frame = int(p.song.LoopFrame)
		if p.Done() {
			p.frame = 0
		}
		log.ModEmu.InfoZ("song loops").Int("frame", p.frame).End()
	}

	p.cycle, p.synced = 0, 0
	p.writeRegs(&p.song.Frames[p.frame])
	p.frame++

	if p.rec != nil {
		p.rec.Capture()
	}
	p.cycle = p.cpf
	p.Sound.UpdateVBL(p.cycle - p.synced)
	p.synced = p.cycle
	return true
}

// Run plays the song in real time through out, until the song ends, Stop
// is called or ctx is done.
func (p *Player) Run(ctx context.Context, out Output) error {
	p.Sound.ResetBufferIndex()
	if err := out.Start(p.Sound.Buf); err != nil {
		return fmt.Errorf("audio output: %w", err)
	}
	defer out.Close()

	frameDur := time.Second / time.Duration(p.Sound.VideoMode().RefreshRate())
	// Keep the host buffer and 2 frames queued.
	ahead := p.Sound.Buf.Queued() + p.Sound.SamplesPerFrame()

	for !p.quit.Load() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.paused.Load() || p.Sound.Buf.Queued() > ahead {
			time.Sleep(frameDur / 4)
			continue
		}
		if !p.RunOneFrame() {
			break
		}
	}

	// Let the output play what's left.
	for p.Sound.Buf.Queued() > 0 && !p.quit.Load() && ctx.Err() == nil {
		time.Sleep(frameDur)
	}
	log.ModEmu.InfoZ("player loop exited").Int("frame", p.frame).End()
	return nil
}

// SetPause and Stop allows to control the player loop in a concurrent-safe
// way.

func (p *Player) SetPause(pause bool) { p.paused.CompareAndSwap(!pause, pause) }
func (p *Player) Stop()               { p.quit.Store(true) }
