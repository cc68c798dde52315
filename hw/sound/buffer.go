package sound

import "sync"

// MixBufferSize is the number of stereo frames of the mixing buffer.
const MixBufferSize = 8192

// MixBuffer is the circular stereo buffer shared between the emulation
// (producer) and the audio output (consumer).
type MixBuffer struct {
	mu sync.Mutex

	frames [MixBufferSize][2]int16
	read   int // next frame to drain
	write  int // next frame to generate
	queued int // generated frames not yet drained

	last [2]int16 // last drained frame
}

// Queued returns the number of frames generated and not yet drained.
func (b *MixBuffer) Queued() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queued
}

// Cursors returns the read and write positions.
func (b *MixBuffer) Cursors() (read, write int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read, b.write
}

// fill generates up to n mono samples into the buffer, clamped to the free
// space. It must be called with b.mu held.
func (b *MixBuffer) fill(n int, next func() int16) (start, count int) {
	n = min(n, MixBufferSize-b.queued)
	if n <= 0 {
		return b.write, 0
	}
	start = b.write
	for range n {
		s := next()
		b.frames[b.write] = [2]int16{s, s}
		b.write = (b.write + 1) % MixBufferSize
	}
	b.queued += n
	return start, n
}

// copyFrom appends n frames starting at idx to dst, following wraparound.
// It must be called with b.mu held.
func (b *MixBuffer) copyFrom(dst [][2]int16, idx, n int) [][2]int16 {
	if end := idx + n; end <= MixBufferSize {
		return append(dst, b.frames[idx:end]...)
	}
	dst = append(dst, b.frames[idx:]...)
	return append(dst, b.frames[:idx+n-MixBufferSize]...)
}

// Drain fills dst with queued frames and returns how many were actually
// available. On shortfall the rest of dst repeats the last frame, so that
// the output holds its level instead of clicking.
func (b *MixBuffer) Drain(dst [][2]int16) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := min(len(dst), b.queued)
	for i := range n {
		dst[i] = b.frames[(b.read+i)%MixBufferSize]
	}
	if n > 0 {
		b.last = dst[n-1]
	}
	for i := n; i < len(dst); i++ {
		dst[i] = b.last
	}
	b.read = (b.read + n) % MixBufferSize
	b.queued -= n
	return n
}

// reset moves the write cursor ahead of the read cursor, leaving prefill
// frames of silence to be drained first.
func (b *MixBuffer) reset(prefill int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	prefill = min(max(prefill, 0), MixBufferSize)
	for i := range prefill {
		b.frames[(b.read+i)%MixBufferSize] = [2]int16{}
	}
	b.queued = prefill
	b.write = (b.read + prefill) % MixBufferSize
}
