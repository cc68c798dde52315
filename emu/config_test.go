package emu

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"

	"ymsound/hw/hwdefs"
	"ymsound/hw/ym2149"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Check(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	const data = `
[audio]
mixing = "linear"
lowpass = true
sample_rate = 48000
centered = true
output_level = 65535
unknown_key = 1

[machine]
video = "ntsc"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	want := DefaultConfig()
	want.Audio.LowPass = true
	want.Audio.SampleRate = 48000
	want.Audio.Centered = true
	want.Audio.OutputLevel = 65535
	want.Machine.Video = hwdefs.NTSC
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"mixing", "[audio]\nmixing = \"cubic\"\n"},
		{"video", "[machine]\nvideo = \"secam\"\n"},
		{"syntax", "[audio\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("LoadConfig should fail")
			}
		})
	}
}

func TestWriteConfig(t *testing.T) {
	want := DefaultConfig()
	want.Audio.Mixing = ym2149.TableMixing
	want.Audio.VolumeTable = "/usr/share/ym/table.h"
	want.Audio.BufferSize = 2048
	want.Machine.Video = hwdefs.NTSC

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeConfig(t *testing.T) {
	want := DefaultConfig()
	want.Audio.Mixing = ym2149.TableMixing
	want.Audio.VolumeTable = "table.h"
	want.Machine.Video = hwdefs.NTSC

	var buf bytes.Buffer
	if err := EncodeConfig(&buf, want); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"[audio]", `mixing = "table"`, "[machine]", `video = "ntsc"`} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("encoded config lacks %q:\n%s", s, buf.String())
		}
	}

	got := DefaultConfig()
	if _, err := toml.Decode(buf.String(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigCheck(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"table without file", func(c *Config) { c.Audio.Mixing = ym2149.TableMixing }},
		{"sample rate", func(c *Config) { c.Audio.SampleRate = 200000 }},
		{"level", func(c *Config) { c.Audio.OutputLevel = 0 }},
		{"buffer", func(c *Config) { c.Audio.BufferSize = -5 }},
		{"video", func(c *Config) { c.Machine.Video = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			if err := cfg.Check(); err == nil {
				t.Fatal("Check should fail")
			}
		})
	}
}

func TestSoundConfigMeasured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audio.Mixing = ym2149.TableMixing
	cfg.Audio.VolumeTable = writeMeasuredTable(t)

	if err := cfg.Check(); err != nil {
		t.Fatal(err)
	}
	scfg, err := cfg.SoundConfig()
	if err != nil {
		t.Fatal(err)
	}
	if scfg.Chip.DAC.Measured == nil {
		t.Fatal("measured table not loaded")
	}
	if _, err := NewPlayer(testSong(1), scfg); err != nil {
		t.Fatal(err)
	}

	cfg.Audio.VolumeTable = filepath.Join(t.TempDir(), "missing.h")
	if _, err := cfg.SoundConfig(); err == nil {
		t.Error("SoundConfig should fail with a missing table")
	}
}
