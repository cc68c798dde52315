package snapshot

import (
	"fmt"
	"math"

	"github.com/go-faster/jx"
)

// MarshalJSON encodes the sound state.
func (s *Sound) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	s.Encode(&e)
	return e.Bytes(), nil
}

// UnmarshalJSON decodes the sound state. Unknown fields are ignored.
func (s *Sound) UnmarshalJSON(data []byte) error {
	return s.Decode(jx.DecodeBytes(data))
}

func (s *Sound) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.FieldStart("version")
		e.Int(s.Version)
		e.FieldStart("sample_rate")
		e.Int(s.SampleRate)
		e.FieldStart("video")
		e.Str(s.VideoMode)
		e.FieldStart("cycle_acc")
		e.Int64(s.CycleAcc)
		if s.Chip != nil {
			e.FieldStart("chip")
			s.Chip.Encode(e)
		}
	})
}

func (s *Sound) Decode(d *jx.Decoder) error {
	*s = Sound{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Int()
		case "sample_rate":
			s.SampleRate, err = d.Int()
		case "video":
			s.VideoMode, err = d.Str()
		case "cycle_acc":
			s.CycleAcc, err = d.Int64()
		case "chip":
			s.Chip = new(YM2149)
			err = s.Chip.Decode(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("decode sound state: %w", err)
	}
	if s.Version != Version {
		return fmt.Errorf("unsupported sound state version %d (want %d)", s.Version, Version)
	}
	if s.Chip == nil {
		return fmt.Errorf("sound state without chip")
	}
	return nil
}

func (ym *YM2149) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.FieldStart("regs")
		e.Arr(func(e *jx.Encoder) {
			for _, r := range ym.Regs {
				e.UInt8(r)
			}
		})
		e.FieldStart("voices")
		e.Arr(func(e *jx.Encoder) {
			for _, v := range ym.Voices {
				e.Obj(func(e *jx.Encoder) {
					e.FieldStart("step")
					e.UInt32(v.Step)
					e.FieldStart("pos")
					e.UInt32(v.Pos)
				})
			}
		})
		e.FieldStart("noise_step")
		e.UInt32(ym.NoiseStep)
		e.FieldStart("noise_pos")
		e.UInt32(ym.NoisePos)
		e.FieldStart("noise_high")
		e.Bool(ym.NoiseHigh)
		e.FieldStart("lfsr")
		e.UInt32(ym.LFSR)
		e.FieldStart("env_step")
		e.UInt32(ym.EnvStep)
		e.FieldStart("env_pos")
		e.UInt32(ym.EnvPos)
		e.FieldStart("env_shape")
		e.UInt8(ym.EnvShape)
		e.FieldStart("env_mask")
		e.UInt16(ym.EnvMask)
		e.FieldStart("fixed_volumes")
		e.UInt16(ym.FixedVolumes)
		e.FieldStart("shape_written")
		e.Bool(ym.ShapeWritten)
	})
}

func (ym *YM2149) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "regs":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(ym.Regs) {
					return fmt.Errorf("more than %d registers", len(ym.Regs))
				}
				v, err := decodeUint(d, 0xFF)
				ym.Regs[i] = uint8(v)
				i++
				return err
			})
		case "voices":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(ym.Voices) {
					return fmt.Errorf("more than %d voices", len(ym.Voices))
				}
				v := &ym.Voices[i]
				i++
				return d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "step":
						v.Step, err = decodeUint(d, math.MaxUint32)
					case "pos":
						v.Pos, err = decodeUint(d, math.MaxUint32)
					default:
						err = d.Skip()
					}
					return err
				})
			})
		case "noise_step":
			ym.NoiseStep, err = decodeUint(d, math.MaxUint32)
		case "noise_pos":
			ym.NoisePos, err = decodeUint(d, math.MaxUint32)
		case "noise_high":
			ym.NoiseHigh, err = d.Bool()
		case "lfsr":
			ym.LFSR, err = decodeUint(d, math.MaxUint32)
		case "env_step":
			ym.EnvStep, err = decodeUint(d, math.MaxUint32)
		case "env_pos":
			ym.EnvPos, err = decodeUint(d, math.MaxUint32)
		case "env_shape":
			var v uint32
			v, err = decodeUint(d, 0x0F)
			ym.EnvShape = uint8(v)
		case "env_mask":
			var v uint32
			v, err = decodeUint(d, 0x7FFF)
			ym.EnvMask = uint16(v)
		case "fixed_volumes":
			var v uint32
			v, err = decodeUint(d, 0x7FFF)
			ym.FixedVolumes = uint16(v)
		case "shape_written":
			ym.ShapeWritten, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

// decodeUint decodes an integer in [0, limit].
func decodeUint(d *jx.Decoder, limit uint32) (uint32, error) {
	v, err := d.Int64()
	if err != nil {
		return 0, err
	}
	if v < 0 || v > int64(limit) {
		return 0, fmt.Errorf("%d out of range [0, %d]", v, limit)
	}
	return uint32(v), nil
}
