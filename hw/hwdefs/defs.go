package hwdefs

import "fmt"

// YM2149 clock on the Atari ST.
const YMClock = 2000000

const (
	NumVoices = 3  // A, B, C
	NumRegs   = 14 // R0-R13, I/O ports are not emulated
)

// VideoMode is the video standard, it sets the VBL cadence at which the
// sound is produced.
type VideoMode uint8

const (
	PAL VideoMode = iota
	NTSC
)

// Cycles per frame and refresh rates of the 8 MHz 68000.
const (
	PALCyclesPerFrame  = 160256
	NTSCCyclesPerFrame = 133604

	PALRefreshRate  = 50
	NTSCRefreshRate = 60
)

func (m VideoMode) CyclesPerFrame() int64 {
	if m == NTSC {
		return NTSCCyclesPerFrame
	}
	return PALCyclesPerFrame
}

func (m VideoMode) RefreshRate() int {
	if m == NTSC {
		return NTSCRefreshRate
	}
	return PALRefreshRate
}

func (m VideoMode) String() string {
	switch m {
	case PAL:
		return "pal"
	case NTSC:
		return "ntsc"
	}
	return fmt.Sprintf("VideoMode(%d)", uint8(m))
}

// ParseVideoMode parses a video mode name (pal or ntsc).
func ParseVideoMode(s string) (VideoMode, error) {
	switch s {
	case "pal", "PAL":
		return PAL, nil
	case "ntsc", "NTSC":
		return NTSC, nil
	}
	return 0, fmt.Errorf("unknown video mode %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *VideoMode) UnmarshalText(text []byte) error {
	v, err := ParseVideoMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m VideoMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
