package emu

import (
	"encoding/binary"
	"sync"
	"time"

	"ymsound/hw/sound"
)

// bufferReader streams the mixing buffer as interleaved signed 16-bit
// little-endian stereo samples.
type bufferReader struct {
	buf    *sound.MixBuffer
	frames [][2]int16
}

func (r *bufferReader) Read(p []byte) (int, error) {
	n := len(p) / 4
	if cap(r.frames) < n {
		r.frames = make([][2]int16, n)
	}
	frames := r.frames[:n]
	r.buf.Drain(frames)
	for i, f := range frames {
		binary.LittleEndian.PutUint16(p[4*i:], uint16(f[0]))
		binary.LittleEndian.PutUint16(p[4*i+2:], uint16(f[1]))
	}
	return 4 * n, nil
}

// DiscardOutput drains the mixing buffer in real time without playing
// anything, when audio is disabled.
type DiscardOutput struct {
	Rate int

	stop chan struct{}
	wg   sync.WaitGroup
}

func (d *DiscardOutput) Start(buf *sound.MixBuffer) error {
	const tick = 20 * time.Millisecond

	d.stop = make(chan struct{})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		frames := make([][2]int16, d.Rate*int(tick)/int(time.Second))
		t := time.NewTicker(tick)
		defer t.Stop()
		for {
			select {
			case <-d.stop:
				return
			case <-t.C:
				buf.Drain(frames)
			}
		}
	}()
	return nil
}

func (d *DiscardOutput) Close() error {
	if d.stop != nil {
		close(d.stop)
		d.wg.Wait()
		d.stop = nil
	}
	return nil
}
