package ymfile

import "ymsound/hw/hwdefs"

// RegisterSource is the chip state seen by the recorder.
type RegisterSource interface {
	Registers() [hwdefs.NumRegs]uint8
	ShapeWritten() bool
}

// Recorder captures the chip registers once per video frame. It must be
// called before the shape written flag is cleared at the end of the frame.
type Recorder struct {
	src    RegisterSource
	frames []Frame
}

func NewRecorder(src RegisterSource) *Recorder {
	return &Recorder{src: src}
}

// Capture records the current register values as a new frame. R13 holds
// NoShapeWrite if the envelope shape was not written during the frame,
// so that replaying it doesn't restart the envelope.
func (r *Recorder) Capture() {
	var f Frame
	regs := r.src.Registers()
	copy(f[:], regs[:])
	if !r.src.ShapeWritten() {
		f[13] = NoShapeWrite
	}
	r.frames = append(r.frames, f)
}

// Len returns the number of captured frames.
func (r *Recorder) Len() int { return len(r.frames) }

// Song returns a YM3 song with the captured frames.
func (r *Recorder) Song(rate uint16) *Song {
	return &Song{
		Format:    YM3,
		Frames:    r.frames,
		Clock:     hwdefs.YMClock,
		FrameRate: rate,
	}
}
