package emu

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ymsound/emu/log"
	"ymsound/hw/sound"
	"ymsound/ymfile"
)

func init() {
	log.Disable()
}

// testSong returns a song playing a 1 kHz square on A, with the envelope
// shape written on the first frame only.
func testSong(nframes int) *ymfile.Song {
	song := &ymfile.Song{
		Format:    ymfile.YM3,
		Frames:    make([]ymfile.Frame, nframes),
		Clock:     2000000,
		FrameRate: 50,
	}
	for i := range song.Frames {
		f := &song.Frames[i]
		f[0] = 125           // 2 MHz / (16*125) = 1 kHz
		f[6] = uint8(i % 32) // noise period
		f[7] = 0x3E          // tone A only
		f[8] = 0x10          // envelope on A
		f[11] = 0x40
		f[13] = ymfile.NoShapeWrite
	}
	song.Frames[0][13] = 0x0C
	return song
}

func testSoundConfig(t testing.TB) sound.Config {
	t.Helper()
	cfg := DefaultConfig()
	scfg, err := cfg.SoundConfig()
	if err != nil {
		t.Fatalf("SoundConfig: %v", err)
	}
	return scfg
}

func newTestPlayer(t testing.TB, song *ymfile.Song) *Player {
	t.Helper()
	p, err := NewPlayer(song, testSoundConfig(t))
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	return p
}

// writeMeasuredTable writes a valid measured volume table as a C header.
func writeMeasuredTable(t *testing.T) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("/* measured */\nstatic const unsigned short table[16*16*16] = {\n")
	for i := range 16 {
		for j := range 16 {
			for k := range 16 {
				fmt.Fprintf(&sb, "%d, ", 1000*i+1200*j+1400*k)
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("};\n")

	path := filepath.Join(t.TempDir(), "table.h")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
