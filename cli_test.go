package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"

	"ymsound/emu"
	"ymsound/emu/log"
	"ymsound/hw/hwdefs"
	"ymsound/hw/ym2149"
)

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(cli, kong.Name("ymsound"), vars)
	if err != nil {
		t.Fatal(err)
	}
	return parser
}

func tempFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("YM3!"), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestParseRender(t *testing.T) {
	paths := tempFiles(t, "a.ym", "b.ym")

	var cli CLI
	ctx, err := newParser(t, &cli).Parse([]string{
		"render", paths[0], paths[1],
		"--out-dir", "out", "--capture", "-j", "2", "--mixing", "linear", "--video", "ntsc",
	})
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Command() == "" {
		t.Fatal("no command")
	}

	want := Render{
		Paths:   paths,
		OutDir:  cli.Render.OutDir,
		Capture: true,
		Jobs:    2,
		AudioFlags: AudioFlags{
			Mixing: "linear",
			Video:  "ntsc",
		},
	}
	if diff := cmp.Diff(want, cli.Render); diff != "" {
		t.Errorf("render args mismatch (-want +got):\n%s", diff)
	}
	if filepath.Base(cli.Render.OutDir) != "out" {
		t.Errorf("out dir = %s", cli.Render.OutDir)
	}
}

func TestParseLogModules(t *testing.T) {
	defer log.DisableDebugModules(log.ModuleMaskAll)

	paths := tempFiles(t, "a.ym")

	var cli CLI
	if _, err := newParser(t, &cli).Parse([]string{"--log", "sound,ym2149", "info", paths[0]}); err != nil {
		t.Fatal(err)
	}
	if !log.ModSound.Enabled(log.DebugLevel) {
		t.Error("sound debug logs not enabled")
	}
	mod, _ := log.ModuleByName("ym2149")
	if !mod.Enabled(log.DebugLevel) {
		t.Error("ym2149 debug logs not enabled")
	}
	if log.ModEmu.Enabled(log.DebugLevel) {
		t.Error("emu debug logs enabled")
	}

	for _, bad := range []string{"nosuchmodule", "all,no", "no,sound"} {
		var cli CLI
		if _, err := newParser(t, &cli).Parse([]string{"--log", bad, "info", paths[0]}); err == nil {
			t.Errorf("--log %s should fail", bad)
		}
	}
}

func TestAudioFlagsApply(t *testing.T) {
	table := tempFiles(t, "table.h")[0]

	tests := []struct {
		name    string
		flags   AudioFlags
		want    func(*emu.Config)
		wantErr bool
	}{
		{
			name:  "none",
			flags: AudioFlags{},
			want:  func(*emu.Config) {},
		},
		{
			name:  "overrides",
			flags: AudioFlags{Rate: 48000, LowPass: true, Video: "ntsc"},
			want: func(c *emu.Config) {
				c.Audio.SampleRate = 48000
				c.Audio.LowPass = true
				c.Machine.Video = hwdefs.NTSC
			},
		},
		{
			name:  "table",
			flags: AudioFlags{Mixing: "table", VolumeTable: table},
			want: func(c *emu.Config) {
				c.Audio.Mixing = ym2149.TableMixing
				c.Audio.VolumeTable = table
			},
		},
		{name: "table without file", flags: AudioFlags{Mixing: "table"}, wantErr: true},
		{name: "bad rate", flags: AudioFlags{Rate: 8000}, wantErr: true},
		{name: "bad video", flags: AudioFlags{Video: "secam"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := emu.DefaultConfig()
			err := tt.flags.apply(&got)
			if tt.wantErr {
				if err == nil {
					t.Fatal("apply should fail")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			want := emu.DefaultConfig()
			tt.want(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePlayState(t *testing.T) {
	paths := tempFiles(t, "a.ym", "a.state.json")

	var cli CLI
	ctx, err := newParser(t, &cli).Parse([]string{"play", paths[0], "--state", paths[1], "--loop"})
	if err != nil {
		t.Fatal(err)
	}
	if cmd, _, _ := strings.Cut(ctx.Command(), " "); cmd != "play" {
		t.Errorf("command = %q, want play", ctx.Command())
	}
	want := Play{Path: paths[0], State: paths[1], Loop: true}
	if diff := cmp.Diff(want, cli.Play); diff != "" {
		t.Errorf("play args mismatch (-want +got):\n%s", diff)
	}

	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, err := newParser(t, &CLI{}).Parse([]string{"play", paths[0], "--state", missing}); err == nil {
		t.Error("--state with a missing file should fail")
	}
}

func TestParseConfigCommand(t *testing.T) {
	var cli CLI
	ctx, err := newParser(t, &cli).Parse([]string{"config", "--save", "--rate", "48000"})
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Command() != "config" {
		t.Errorf("command = %q, want config", ctx.Command())
	}
	want := Cfg{Save: true, AudioFlags: AudioFlags{Rate: 48000}}
	if diff := cmp.Diff(want, cli.Cfg); diff != "" {
		t.Errorf("config args mismatch (-want +got):\n%s", diff)
	}
}
