// Package ymfile reads and writes YM files, dumps of the YM2149 registers
// taken once per video frame, as produced by ST-Sound and emulators.
package ymfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"ymsound/emu/log"
	"ymsound/hw/hwdefs"
)

var modYMFile = log.NewModule("ymfile")

// Format is a YM file revision, identified by its 4 bytes magic.
type Format uint8

const (
	YM2 Format = iota
	YM3
	YM3b
	YM5
	YM6
)

var magics = [...]string{
	YM2:  "YM2!",
	YM3:  "YM3!",
	YM3b: "YM3b",
	YM5:  "YM5!",
	YM6:  "YM6!",
}

func (f Format) String() string {
	if int(f) < len(magics) {
		return magics[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

const (
	leonard  = "LeOnArD!"
	endMagic = "End!"

	// NoShapeWrite in R13 means the envelope shape register was not
	// written during the frame.
	NoShapeWrite = 0xFF

	// Attribute bit of YM5/YM6 files: register data is stored register
	// by register instead of frame by frame.
	AttrInterleaved = 1 << 0
)

// ErrCompressed is returned for LHA compressed files, which must be
// unpacked first.
var ErrCompressed = errors.New("LHA compressed YM file")

// Frame holds the registers of one video frame. YM2 and YM3 files only
// store R0-R13, R14 and R15 carry special effects in YM5 and YM6.
type Frame [16]uint8

// Song is the content of a YM file.
type Song struct {
	Format     Format
	Frames     []Frame
	Clock      uint32 // YM2149 clock in Hz
	FrameRate  uint16 // frames per second
	LoopFrame  uint32
	Attributes uint32
	Digidrums  [][]byte

	Name    string
	Author  string
	Comment string
}

// Interleaved reports whether frames are stored register by register.
func (s *Song) Interleaved() bool {
	switch s.Format {
	case YM2, YM3, YM3b:
		return true
	}
	return s.Attributes&AttrInterleaved != 0
}

// Open loads a YM file.
func Open(path string) (*Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	song := new(Song)
	if _, err := song.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return song, nil
}

// ReadFrom implements io.ReaderFrom interface
func (s *Song) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := s.decode(buf); err != nil {
		return int64(len(buf)), err
	}
	return int64(len(buf)), nil
}

// isLHA reports whether p starts with an LHA level 0/1 header.
func isLHA(p []byte) bool {
	return len(p) >= 7 && p[2] == '-' && p[3] == 'l' && p[4] == 'h' && p[6] == '-'
}

func (s *Song) decode(p []byte) error {
	*s = Song{
		Clock:     hwdefs.YMClock,
		FrameRate: hwdefs.PALRefreshRate,
	}

	if isLHA(p) {
		return ErrCompressed
	}
	if len(p) < 4 {
		return fmt.Errorf("file too small")
	}

	switch string(p[:4]) {
	case "YM2!":
		s.Format = YM2
		return s.decodeYM3(p[4:])
	case "YM3!":
		s.Format = YM3
		return s.decodeYM3(p[4:])
	case "YM3b":
		s.Format = YM3b
		if len(p) < 8 {
			return fmt.Errorf("missing loop frame")
		}
		s.LoopFrame = binary.LittleEndian.Uint32(p[len(p)-4:])
		return s.decodeYM3(p[4 : len(p)-4])
	case "YM5!":
		s.Format = YM5
		return s.decodeYM5(p[4:])
	case "YM6!":
		s.Format = YM6
		return s.decodeYM5(p[4:])
	}
	return fmt.Errorf("unsupported format %q", p[:4])
}

func (s *Song) decodeYM3(p []byte) error {
	if len(p)%hwdefs.NumRegs != 0 {
		modYMFile.WarnZ("trailing bytes ignored").
			Int("count", len(p)%hwdefs.NumRegs).
			End()
	}
	nframes := len(p) / hwdefs.NumRegs
	s.Frames = make([]Frame, nframes)
	deinterleave(s.Frames, p, hwdefs.NumRegs)
	return nil
}

// deinterleave copies register data stored register by register.
func deinterleave(frames []Frame, p []byte, nregs int) {
	n := len(frames)
	for reg := range nregs {
		for i := range frames {
			frames[i][reg] = p[reg*n+i]
		}
	}
}

// reader is a bounds checked big-endian reader.
type reader struct {
	p   []byte
	off int
	err error
}

func (r *reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.p)-r.off < n {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := r.p[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u16() uint16 {
	if b := r.next(2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.next(4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

func (r *reader) cstring() string {
	if r.err != nil {
		return ""
	}
	i := bytes.IndexByte(r.p[r.off:], 0)
	if i < 0 {
		r.err = io.ErrUnexpectedEOF
		return ""
	}
	str := string(r.p[r.off : r.off+i])
	r.off += i + 1
	return str
}

func (s *Song) decodeYM5(p []byte) error {
	r := reader{p: p}
	if string(r.next(len(leonard))) != leonard {
		return fmt.Errorf("invalid signature")
	}

	nframes := r.u32()
	s.Attributes = r.u32()
	ndrums := r.u16()
	s.Clock = r.u32()
	s.FrameRate = r.u16()
	s.LoopFrame = r.u32()
	r.next(int(r.u16())) // future extensions

	if r.err != nil {
		return fmt.Errorf("incomplete header: %w", r.err)
	}

	for i := range int(ndrums) {
		size := r.u32()
		if uint64(size) > uint64(len(p)) {
			return fmt.Errorf("digidrum %d: invalid size %d", i, size)
		}
		drum := r.next(int(size))
		if r.err != nil {
			return fmt.Errorf("digidrum %d: %w", i, r.err)
		}
		s.Digidrums = append(s.Digidrums, drum)
	}

	s.Name = r.cstring()
	s.Author = r.cstring()
	s.Comment = r.cstring()
	if r.err != nil {
		return fmt.Errorf("incomplete song info: %w", r.err)
	}

	const nregs = len(Frame{})
	if uint64(nframes)*uint64(nregs) > uint64(len(p)) {
		return fmt.Errorf("incomplete frames: %d frames announced", nframes)
	}
	data := r.next(int(nframes) * nregs)
	if r.err != nil {
		return fmt.Errorf("incomplete frames: %w", r.err)
	}

	s.Frames = make([]Frame, nframes)
	if s.Attributes&AttrInterleaved != 0 {
		deinterleave(s.Frames, data, nregs)
	} else {
		for i := range s.Frames {
			copy(s.Frames[i][:], data[i*nregs:])
		}
	}

	if end := r.next(len(endMagic)); r.err != nil || string(end) != endMagic {
		modYMFile.WarnZ("missing end marker").Stringer("format", s.Format).End()
	}

	modYMFile.InfoZ("decoded song").
		Stringer("format", s.Format).
		Int("frames", len(s.Frames)).
		Uint32("clock", s.Clock).
		Uint16("rate", s.FrameRate).
		Uint32("loop", s.LoopFrame).
		Int("digidrums", len(s.Digidrums)).
		End()
	return nil
}

// WriteTo writes the song as an interleaved YM3 file, or YM3b if it
// loops. Only R0-R13 are written.
func (s *Song) WriteTo(w io.Writer) (int64, error) {
	magic := YM3.String()
	if s.LoopFrame != 0 {
		magic = YM3b.String()
	}

	n := len(s.Frames)
	buf := make([]byte, 0, 4+n*hwdefs.NumRegs+4)
	buf = append(buf, magic...)
	for reg := range hwdefs.NumRegs {
		for i := range s.Frames {
			buf = append(buf, s.Frames[i][reg])
		}
	}
	if s.LoopFrame != 0 {
		buf = binary.LittleEndian.AppendUint32(buf, s.LoopFrame)
	}

	nw, err := w.Write(buf)
	return int64(nw), err
}

// Create writes the song to a new file at path.
func (s *Song) Create(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Duration returns the song length in seconds.
func (s *Song) Duration() float64 {
	if s.FrameRate == 0 {
		return 0
	}
	return float64(len(s.Frames)) / float64(s.FrameRate)
}
