package ym2149

import "testing"

func TestVolume4to5(t *testing.T) {
	if volume4to5[0] != 0 || volume4to5[15] != 31 {
		t.Fatalf("volume4to5 bounds = %d, %d, want 0, 31", volume4to5[0], volume4to5[15])
	}
	for i := 1; i < len(volume4to5); i++ {
		if volume4to5[i] <= volume4to5[i-1] {
			t.Errorf("volume4to5 not increasing at %d", i)
		}
	}
}

// checkMonotonic checks that the table doesn't decrease along each
// dimension, the 2 others being 0.
func checkMonotonic(t *testing.T, tbl *MixTable) {
	t.Helper()

	for dim := range 3 {
		shift := dim * voiceBits
		for v := 1; v < 32; v++ {
			prev := tbl[uint16(v-1)<<shift]
			cur := tbl[uint16(v)<<shift]
			if cur < prev {
				t.Errorf("voice %d: table[%d] = %d < table[%d] = %d", dim, v, cur, v-1, prev)
			}
		}
	}
}

func TestLinearTable(t *testing.T) {
	tbl := BuildLinearTable()
	checkMonotonic(t, tbl)

	if tbl[0] != 0 {
		t.Errorf("table[0] = %d, want 0", tbl[0])
	}
	if got := tbl[packVoices(31, 31, 31)]; got != 65535 {
		t.Errorf("table[31,31,31] = %d, want 65535", got)
	}
	if got := tbl[packVoices(0, 0, 31)]; got != 21845 {
		t.Errorf("table[0,0,31] = %d, want 21845", got)
	}
	// Voices are interchangeable.
	if a, c := tbl[packVoices(0, 7, 19)], tbl[packVoices(19, 7, 0)]; a != c {
		t.Errorf("table not symmetric: %d != %d", a, c)
	}
}

// syntheticTable returns a monotonic measured table.
func syntheticTable() *MeasuredTable {
	var mt MeasuredTable
	for k := range 16 {
		for j := range 16 {
			for i := range 16 {
				mt[i+16*j+256*k] = uint16(1000*i + 1200*j + 1400*k)
			}
		}
	}
	return &mt
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		y1, y2 int
		want   uint16
	}{
		{0, 0, 0},
		{100, 200, 160},
		{200, 100, 140},
		{65535, 65535, 65535},
		{0, 65535, 39321},
	}
	for _, tt := range tests {
		if got := interpolate(tt.y1, tt.y2); got != tt.want {
			t.Errorf("interpolate(%d, %d) = %d, want %d", tt.y1, tt.y2, got, tt.want)
		}
	}
}

func TestMeasuredInterpolation(t *testing.T) {
	mt := syntheticTable()
	tbl := mt.Interpolate()
	checkMonotonic(t, tbl)

	at := func(i, j, k int) uint16 { return tbl[packVoices(uint16(k), uint16(j), uint16(i))] }

	// measured points are copied.
	if got := at(6, 4, 2); got != uint16(mt.at(3, 2, 1)) {
		t.Errorf("out(6,4,2) = %d, want %d", got, mt.at(3, 2, 1))
	}
	// i direction: (4*3000 + 6*4000)/10
	if got := at(7, 0, 0); got != 3600 {
		t.Errorf("out(7,0,0) = %d, want 3600", got)
	}
	// i+j+k direction from (1,1,1): (4*3600 + 6*7200)/10
	if got := at(3, 3, 3); got != 5760 {
		t.Errorf("out(3,3,3) = %d, want 5760", got)
	}
	// boundary reads index 15 again.
	if got := at(31, 0, 0); got != 15000 {
		t.Errorf("out(31,0,0) = %d, want 15000", got)
	}
}

func TestNormalize(t *testing.T) {
	tbl := BuildLinearTable()

	out := Normalize(tbl, LevelUncentered, false)
	if out[0] != 0 || out[TableSize-1] != 32767 {
		t.Errorf("uncentered bounds = %d, %d, want 0, 32767", out[0], out[TableSize-1])
	}
	if got := out[packVoices(0, 0, 31)]; got != 10922 {
		t.Errorf("uncentered out[0,0,31] = %d, want 10922", got)
	}

	out = Normalize(tbl, LevelCentered, true)
	if out[0] != -32767 || out[TableSize-1] != 32767 {
		t.Errorf("centered bounds = %d, %d, want -32767, 32767", out[0], out[TableSize-1])
	}
	if got := out[packVoices(0, 0, 31)]; got != -10922 {
		t.Errorf("centered out[0,0,31] = %d, want -10922", got)
	}
}

func TestDACConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DACConfig
		wantErr bool
	}{
		{"linear", DACConfig{Mode: LinearMixing, Level: LevelUncentered}, false},
		{"table", DACConfig{Mode: TableMixing, Level: LevelCentered, Centered: true, Measured: syntheticTable()}, false},
		{"table without measures", DACConfig{Mode: TableMixing, Level: LevelUncentered}, true},
		{"zero level", DACConfig{Mode: LinearMixing}, true},
		{"unknown mode", DACConfig{Mode: 7, Level: LevelUncentered}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DAC(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DAC() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestDACCache(t *testing.T) {
	cfg := DACConfig{Mode: LinearMixing, Level: 20000}
	t1, err := DAC(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t2, err := DAC(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Error("same config gave different tables")
	}

	cfg.Centered = true
	t3, err := DAC(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if t3 == t1 {
		t.Error("different configs share a table")
	}
}

func TestParseMixingMode(t *testing.T) {
	for _, s := range []string{"linear", "table"} {
		m, err := ParseMixingMode(s)
		if err != nil {
			t.Fatal(err)
		}
		if m.String() != s {
			t.Errorf("ParseMixingMode(%q).String() = %q", s, m.String())
		}
	}
	if _, err := ParseMixingMode("cubic"); err == nil {
		t.Error("ParseMixingMode should fail")
	}
}

func TestBuildMixTable(t *testing.T) {
	lin, err := BuildMixTable(LinearMixing, nil)
	if err != nil {
		t.Fatal(err)
	}
	if *lin != *BuildLinearTable() {
		t.Error("linear mixing table differs from BuildLinearTable")
	}

	mt := syntheticTable()
	tbl, err := BuildMixTable(TableMixing, mt)
	if err != nil {
		t.Fatal(err)
	}
	if *tbl != *mt.Interpolate() {
		t.Error("table mixing table differs from Interpolate")
	}

	if _, err := BuildMixTable(TableMixing, nil); err == nil {
		t.Error("table mixing without measured table should fail")
	}
	if _, err := BuildMixTable(MixingMode(7), nil); err == nil {
		t.Error("unknown mixing mode should fail")
	}
}

func TestPackVoices(t *testing.T) {
	if got := packVoices(31, 0, 0); got != 0x7C00 {
		t.Errorf("packVoices(31, 0, 0) = %04X, want 7C00", got)
	}
	if got := packVoices(1, 2, 3); got != 1<<10|2<<5|3 {
		t.Errorf("packVoices(1, 2, 3) = %04X, want %04X", got, 1<<10|2<<5|3)
	}
	if got := packVoices(0, 0x3F, 0); got != 0x1F<<5 {
		t.Errorf("packVoices(0, 3F, 0) = %04X, want %04X", got, 0x1F<<5)
	}
}

func TestDACCacheByContents(t *testing.T) {
	cfg := func(mt *MeasuredTable) DACConfig {
		return DACConfig{Mode: TableMixing, Level: 0x4321, Measured: mt}
	}

	t1, err := DAC(cfg(syntheticTable()))
	if err != nil {
		t.Fatal(err)
	}
	dacCache.Lock()
	n := len(dacCache.tables)
	dacCache.Unlock()

	// Same values loaded again, at another address.
	t2, err := DAC(cfg(syntheticTable()))
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Error("equal measured tables should share the DAC table")
	}
	dacCache.Lock()
	if got := len(dacCache.tables); got != n {
		t.Errorf("cache size = %d, want %d", got, n)
	}
	dacCache.Unlock()

	other := syntheticTable()
	other[0] = 500
	t3, err := DAC(cfg(other))
	if err != nil {
		t.Fatal(err)
	}
	if t3 == t1 {
		t.Error("different measured tables should not share the DAC table")
	}
}
