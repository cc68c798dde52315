package ym2149

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"ymsound/hw/hwio"
)

// MixingMode selects how the 3 voice volumes are converted into a sample.
type MixingMode uint8

const (
	// LinearMixing averages 3 single voice DAC curves.
	LinearMixing MixingMode = iota
	// TableMixing interpolates a 16x16x16 table measured on real hardware.
	TableMixing
)

func (m MixingMode) String() string {
	switch m {
	case LinearMixing:
		return "linear"
	case TableMixing:
		return "table"
	}
	return fmt.Sprintf("MixingMode(%d)", uint8(m))
}

// ParseMixingMode parses a mixing mode name.
func ParseMixingMode(s string) (MixingMode, error) {
	switch s {
	case "linear":
		return LinearMixing, nil
	case "table", "measured":
		return TableMixing, nil
	}
	return 0, fmt.Errorf("unknown mixing mode %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MixingMode) UnmarshalText(text []byte) error {
	v, err := ParseMixingMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m MixingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

const (
	voiceBits = 5
	voiceMask = 1<<voiceBits - 1

	// TableSize is the number of entries of a 32x32x32 volume table.
	TableSize = 1 << (3 * voiceBits)
)

// packVoices packs 3 5-bit volumes into a volume table index.
func packVoices(c, b, a uint16) uint16 {
	var idx uint16
	hwio.SetField16(&idx, 0, voiceBits, a)
	hwio.SetField16(&idx, voiceBits, voiceBits, b)
	hwio.SetField16(&idx, 2*voiceBits, voiceBits, c)
	return idx
}

// 4-bit register volume to 5-bit volume.
var volume4to5 = [16]uint8{0, 2, 5, 7, 9, 11, 13, 15, 17, 19, 21, 23, 25, 27, 29, 31}

// Output level of a single voice for each 5-bit volume.
var singleVoiceDAC = [32]uint16{
	0, 369, 438, 521, 619, 735, 874, 1039,
	1234, 1467, 1744, 2072, 2463, 2927, 3479, 4135,
	4914, 5841, 6942, 8250, 9806, 11654, 13851, 16462,
	19565, 23253, 27636, 32845, 39037, 46395, 55141, 65535,
}

// MixTable is the unsigned DAC response for all 32x32x32 volume combinations,
// indexed by C<<10 | B<<5 | A.
type MixTable [TableSize]uint16

// DACTable converts a packed 3-voice volume into an output sample.
type DACTable [TableSize]int16

// Max returns the largest entry of the table.
func (t *MixTable) Max() uint16 {
	var max uint16
	for _, v := range t {
		if v > max {
			max = v
		}
	}
	return max
}

// BuildLinearTable combines the single voice DAC curve of the 3 voices.
func BuildLinearTable() *MixTable {
	var t MixTable
	for k := range 32 {
		for j := range 32 {
			for i := range 32 {
				sum := uint32(singleVoiceDAC[i]) + uint32(singleVoiceDAC[j]) + uint32(singleVoiceDAC[k])
				t[packVoices(uint16(k), uint16(j), uint16(i))] = uint16(sum / 3)
			}
		}
	}
	return &t
}

// BuildMixTable builds the unsigned table for the given mixing mode. measured
// is only used, and required, in TableMixing mode.
func BuildMixTable(mode MixingMode, measured *MeasuredTable) (*MixTable, error) {
	switch mode {
	case LinearMixing:
		return BuildLinearTable(), nil
	case TableMixing:
		if measured == nil {
			return nil, errors.New("table mixing requires a measured volume table")
		}
		return measured.Interpolate(), nil
	}
	return nil, fmt.Errorf("unknown mixing mode %d", mode)
}

// interpolate returns the value halfway between 2 measured points, with the
// 40/60 weights tuned for the exponential response of the DAC.
func interpolate(y1, y2 int) uint16 {
	v := (y1*4 + y2*6) / 10
	return uint16(min(max(v, 0), math.MaxUint16))
}

// Interpolate expands the measured table into a 32x32x32 table. Each measured
// point gives the 8 entries of its octant: the point itself and the 7 points
// halfway in the i, j, k, i+j, i+k, j+k and i+j+k directions.
func (mt *MeasuredTable) Interpolate() *MixTable {
	var t MixTable
	set := func(i, j, k int, v uint16) {
		t[packVoices(uint16(k), uint16(j), uint16(i))] = v
	}

	for i := range 16 {
		for j := range 16 {
			for k := range 16 {
				y1 := mt.at(i, j, k)
				set(i*2, j*2, k*2, uint16(y1))
				set(i*2+1, j*2, k*2, interpolate(y1, mt.at(i+1, j, k)))
				set(i*2, j*2+1, k*2, interpolate(y1, mt.at(i, j+1, k)))
				set(i*2, j*2, k*2+1, interpolate(y1, mt.at(i, j, k+1)))
				set(i*2+1, j*2+1, k*2, interpolate(y1, mt.at(i+1, j+1, k)))
				set(i*2+1, j*2, k*2+1, interpolate(y1, mt.at(i+1, j, k+1)))
				set(i*2, j*2+1, k*2+1, interpolate(y1, mt.at(i, j+1, k+1)))
				set(i*2+1, j*2+1, k*2+1, interpolate(y1, mt.at(i+1, j+1, k+1)))
			}
		}
	}
	return &t
}

// Normalize scales the table from [0, max] to [0, level], then centers it
// around zero if requested. Results are clamped to the int16 range.
func Normalize(in *MixTable, level uint16, centered bool) *DACTable {
	var out DACTable

	tmax := int64(in.Max())
	if tmax == 0 {
		return &out
	}
	center := int64(level >> 1)
	for i, v := range in {
		res := int64(v) * int64(level) / tmax
		if centered {
			res -= center
		}
		out[i] = int16(min(max(res, math.MinInt16), math.MaxInt16))
	}
	return &out
}

// Output level presets.
const (
	LevelUncentered = 0x7FFF // [0, 32767]
	LevelCentered   = 0xFFFF // [-32767, 32767]
)

// DACConfig describes a volume conversion table.
type DACConfig struct {
	Mode     MixingMode
	Level    uint16
	Centered bool

	// Measured is required in TableMixing mode.
	Measured *MeasuredTable
}

func (c DACConfig) Check() error {
	switch c.Mode {
	case LinearMixing:
	case TableMixing:
		if c.Measured == nil {
			return errors.New("table mixing requires a measured volume table")
		}
	default:
		return fmt.Errorf("unknown mixing mode %d", c.Mode)
	}
	if c.Level == 0 {
		return errors.New("output level must not be zero")
	}
	return nil
}

// dacKey identifies a table by the measured values rather than by the
// *MeasuredTable pointer, so that reloading the same file reuses the table.
type dacKey struct {
	mode     MixingMode
	level    uint16
	centered bool
	measured MeasuredTable
}

func (c DACConfig) key() dacKey {
	k := dacKey{mode: c.Mode, level: c.Level, centered: c.Centered}
	if c.Mode == TableMixing {
		k.measured = *c.Measured
	}
	return k
}

var dacCache = struct {
	sync.Mutex
	tables map[dacKey]*DACTable
}{
	tables: make(map[dacKey]*DACTable),
}

// DAC returns the volume conversion table for cfg. Tables are built once
// and shared, they must not be modified.
func DAC(cfg DACConfig) (*DACTable, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	dacCache.Lock()
	defer dacCache.Unlock()

	key := cfg.key()
	if t, ok := dacCache.tables[key]; ok {
		return t, nil
	}

	mt, err := BuildMixTable(cfg.Mode, cfg.Measured)
	if err != nil {
		return nil, err
	}
	t := Normalize(mt, cfg.Level, cfg.Centered)
	dacCache.tables[key] = t

	modYM.InfoZ("built volume table").
		Stringer("mode", cfg.Mode).
		Uint16("level", cfg.Level).
		Bool("centered", cfg.Centered).
		Uint16("max", mt.Max()).
		End()
	return t, nil
}
