package ym2149

import "testing"

func TestEnvelopeShapes(t *testing.T) {
	// first and last level of each of the 3 blocks.
	tests := []struct {
		shape uint8
		first [3]uint8
		last  [3]uint8
	}{
		{0x0, [3]uint8{31, 0, 0}, [3]uint8{0, 0, 0}},
		{0x1, [3]uint8{31, 0, 0}, [3]uint8{0, 0, 0}},
		{0x2, [3]uint8{31, 0, 0}, [3]uint8{0, 0, 0}},
		{0x3, [3]uint8{31, 0, 0}, [3]uint8{0, 0, 0}},
		{0x4, [3]uint8{0, 0, 0}, [3]uint8{31, 0, 0}},
		{0x5, [3]uint8{0, 0, 0}, [3]uint8{31, 0, 0}},
		{0x6, [3]uint8{0, 0, 0}, [3]uint8{31, 0, 0}},
		{0x7, [3]uint8{0, 0, 0}, [3]uint8{31, 0, 0}},
		{0x8, [3]uint8{31, 31, 31}, [3]uint8{0, 0, 0}},
		{0x9, [3]uint8{31, 0, 0}, [3]uint8{0, 0, 0}},
		{0xA, [3]uint8{31, 0, 31}, [3]uint8{0, 31, 0}},
		{0xB, [3]uint8{31, 31, 31}, [3]uint8{0, 31, 31}},
		{0xC, [3]uint8{0, 0, 0}, [3]uint8{31, 31, 31}},
		{0xD, [3]uint8{0, 31, 31}, [3]uint8{31, 31, 31}},
		{0xE, [3]uint8{0, 31, 0}, [3]uint8{31, 0, 31}},
		{0xF, [3]uint8{0, 0, 0}, [3]uint8{31, 0, 0}},
	}

	for _, tt := range tests {
		lvls := EnvelopeLevels(tt.shape)
		for b := range 3 {
			if got := lvls[b*envBlockLen]; got != tt.first[b] {
				t.Errorf("shape %X: level[%d] = %d, want %d", tt.shape, b*envBlockLen, got, tt.first[b])
			}
			if got := lvls[b*envBlockLen+envBlockLen-1]; got != tt.last[b] {
				t.Errorf("shape %X: level[%d] = %d, want %d", tt.shape, b*envBlockLen+envBlockLen-1, got, tt.last[b])
			}
		}
	}
}

func TestEnvelopeRamps(t *testing.T) {
	lvls := EnvelopeLevels(0xA)
	for i := range envBlockLen {
		if lvls[i] != uint8(31-i) {
			t.Fatalf("block 0: level[%d] = %d, want %d", i, lvls[i], 31-i)
		}
		if lvls[envBlockLen+i] != uint8(i) {
			t.Fatalf("block 1: level[%d] = %d, want %d", i, lvls[envBlockLen+i], i)
		}
	}
}

func TestEnvelopePacked(t *testing.T) {
	envs := envelopes()
	for shape := range envs {
		for i, v := range envs[shape] {
			l := v & voiceMask
			if v != packVoices(l, l, l) {
				t.Fatalf("shape %X entry %d = %04X, not the same level on all voices", shape, i, v)
			}
		}
	}
	if envelopes() != envs {
		t.Error("envelopes are rebuilt")
	}
}
