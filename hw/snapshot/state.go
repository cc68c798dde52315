package snapshot

// Version of the snapshot format, bumped on incompatible changes.
const Version = 1

type Sound struct {
	Version int
	Chip    *YM2149

	SampleRate int
	VideoMode  string

	// Cycles not yet converted into samples, in cycles*samplesPerFrame units.
	CycleAcc int64
}

// YM2149 holds the chip state. Volume and envelope tables are not part of
// it, they are rebuilt from the configuration.
type YM2149 struct {
	Regs [14]uint8

	Voices [3]YMVoice

	NoiseStep uint32
	NoisePos  uint32
	NoiseHigh bool
	LFSR      uint32

	EnvStep  uint32
	EnvPos   uint32
	EnvShape uint8

	// 3x5-bit packed masks.
	EnvMask      uint16
	FixedVolumes uint16

	ShapeWritten bool
}

type YMVoice struct {
	Step uint32
	Pos  uint32
}
