package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"ymsound/emu"
	"ymsound/emu/log"
	"ymsound/hw/ym2149"
	"ymsound/ymfile"
)

// playMain plays a YM file in real time.
func playMain(args Play, cfg emu.Config) {
	checkf(args.apply(&cfg), "invalid configuration")

	song, err := ymfile.Open(args.Path)
	checkf(err, "failed to open YM file")

	scfg, err := cfg.SoundConfig()
	checkf(err, "invalid sound configuration")

	player, err := emu.NewPlayer(song, scfg)
	checkf(err, "failed to start player")
	player.SetLoop(args.Loop)
	if args.State != "" {
		checkf(emu.LoadState(args.State, player.Sound), "failed to restore sound state")
	}

	var out emu.Output
	if cfg.Audio.DisableAudio {
		log.ModEmu.WarnZ("Audio disabled").End()
		out = &emu.DiscardOutput{Rate: cfg.Audio.SampleRate}
	} else {
		dev, err := emu.OpenAudio(cfg.Audio.SampleRate, cfg.Audio.BufferSize)
		checkf(err, "failed to open audio")
		out = dev
	}

	if args.WAV != "" {
		f, err := os.Create(args.WAV)
		checkf(err, "failed to create WAV file")
		defer f.Close()
		stop := player.RecordWAV(f)
		defer func() {
			checkf(stop(), "failed to write WAV file")
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fmt.Printf("Playing %s (%s, %d frames)\n", filepath.Base(args.Path), song.Format, len(song.Frames))
	if err := player.Run(ctx, out); err != nil && ctx.Err() == nil {
		checkf(err, "playback failed")
	}
}

// renderMain renders YM files to WAV, concurrently.
func renderMain(args Render, cfg emu.Config) {
	checkf(args.apply(&cfg), "invalid configuration")

	scfg, err := cfg.SoundConfig()
	checkf(err, "invalid sound configuration")

	if args.OutDir != "" {
		checkf(os.MkdirAll(args.OutDir, 0755), "failed to create output directory")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(args.Jobs, 1))
	for _, path := range args.Paths {
		g.Go(func() error {
			song, err := ymfile.Open(path)
			if err != nil {
				return err
			}
			player, err := emu.NewPlayer(song, scfg)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			dir := args.OutDir
			if dir == "" {
				dir = filepath.Dir(path)
			}
			out := filepath.Join(dir, base)

			var rec *ymfile.Recorder
			if args.Capture {
				rec = player.Record()
			}
			if err := player.RenderFile(ctx, out+".wav"); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if rec != nil {
				if err := rec.Song(song.FrameRate).Create(out + ".capture.ym"); err != nil {
					return err
				}
			}
			if args.State {
				if err := emu.SaveState(out+".state.json", player.Sound); err != nil {
					return err
				}
			}
			fmt.Printf("%s -> %s.wav\n", path, out)
			return nil
		})
	}
	checkf(g.Wait(), "render failed")
}

// infoMain prints the YM file metadata.
func infoMain(args Info) {
	song, err := ymfile.Open(args.Path)
	checkf(err, "failed to open YM file")

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
	fmt.Fprintf(w, "Format:\t%s\n", song.Format)
	fmt.Fprintf(w, "Name:\t%s\n", song.Name)
	fmt.Fprintf(w, "Author:\t%s\n", song.Author)
	fmt.Fprintf(w, "Comment:\t%s\n", song.Comment)
	fmt.Fprintf(w, "Frames:\t%d\n", len(song.Frames))
	fmt.Fprintf(w, "Duration:\t%.1fs\n", song.Duration())
	fmt.Fprintf(w, "Frame rate:\t%d Hz\n", song.FrameRate)
	fmt.Fprintf(w, "Clock:\t%d Hz\n", song.Clock)
	fmt.Fprintf(w, "Loop frame:\t%d\n", song.LoopFrame)
	fmt.Fprintf(w, "Interleaved:\t%t\n", song.Interleaved())
	fmt.Fprintf(w, "Digidrums:\t%d\n", len(song.Digidrums))
	w.Flush()
}

// tablesMain prints the volume conversion table levels.
func tablesMain(args Tables, cfg emu.Config) {
	if args.Centered {
		cfg.Audio.Centered = true
		cfg.Audio.OutputLevel = ym2149.LevelCentered
	}
	checkf(args.apply(&cfg), "invalid configuration")

	scfg, err := cfg.SoundConfig()
	checkf(err, "invalid sound configuration")

	dac, err := ym2149.DAC(scfg.Chip.DAC)
	checkf(err, "failed to build volume table")

	lo, hi := dac[0], dac[0]
	for _, v := range dac {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	fmt.Printf("Mixing: %s, range [%d, %d]\n\n", cfg.Audio.Mixing, lo, hi)
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "volume\tA\tA+B+C\t\n")
	for v := range 32 {
		fmt.Fprintf(w, "%d\t%d\t%d\t\n", v, dac[v], dac[v|v<<5|v<<10])
	}
	w.Flush()
}

// configMain prints the configuration in effect, and saves it if requested.
func configMain(args Cfg, cfg emu.Config) {
	checkf(args.apply(&cfg), "invalid configuration")
	checkf(emu.EncodeConfig(os.Stdout, cfg), "failed to print configuration")
	if args.Save {
		checkf(emu.SaveConfig(cfg), "failed to save configuration")
		fmt.Fprintf(os.Stderr, "Configuration saved to %s\n", emu.ConfigPath())
	}
}
