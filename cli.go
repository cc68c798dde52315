package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"ymsound/emu"
	"ymsound/emu/log"
	"ymsound/hw/hwdefs"
	"ymsound/hw/ym2149"
)

type mode byte

const (
	playMode    mode = iota // Play a YM file
	renderMode              // Render YM files to WAV
	infoMode                // Show YM file infos
	tablesMode              // Show volume table
	configMode              // Show or save configuration
	versionMode             // Show version
)

type (
	CLI struct {
		Play    Play    `cmd:"" help:"Play a YM file on the audio device."`
		Render  Render  `cmd:"" help:"Render YM files to WAV files."`
		Info    Info    `cmd:"" help:"Show YM file infos."`
		Tables  Tables  `cmd:"" help:"Show the volume conversion table."`
		Cfg     Cfg     `cmd:"" name:"config" help:"Show the configuration in effect, or save it."`
		Version Version `cmd:"" help:"Show ymsound version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `name:"config" help:"${config_help}" type:"existingfile" placeholder:"FILE"`

		mode mode
	}

	// AudioFlags override the configuration file.
	AudioFlags struct {
		Mixing      string `name:"mixing" help:"Volume mixing mode." enum:",linear,table" default:""`
		VolumeTable string `name:"volume-table" help:"Measured volume table, for table mixing." type:"existingfile"`
		Rate        int    `name:"rate" help:"Output sample rate in Hz."`
		LowPass     bool   `name:"lowpass" help:"Enable the low-pass filter."`
		Video       string `name:"video" help:"Video mode, sets the frame rate." enum:",pal,ntsc" default:""`
	}

	Play struct {
		Path string `arg:"" name:"/path/to/file.ym" help:"YM file to play." type:"existingfile"`

		AudioFlags `embed:""`

		Loop  bool   `name:"loop" help:"Loop the song."`
		WAV   string `name:"wav" help:"Also record the played samples to a WAV file." type:"path" placeholder:"FILE"`
		State string `name:"state" help:"Restore a sound state saved by render --state before playing." type:"existingfile" placeholder:"FILE"`
	}

	Render struct {
		Paths []string `arg:"" name:"/path/to/file.ym" help:"YM files to render." type:"existingfile"`

		AudioFlags `embed:""`

		OutDir  string `name:"out-dir" help:"Output directory. (default: next to the YM file)" type:"path"`
		Capture bool   `name:"capture" help:"Also record the register stream to a YM3 file."`
		State   bool   `name:"state" help:"Also save the final sound state as JSON."`
		Jobs    int    `name:"jobs" short:"j" help:"Number of files rendered concurrently." default:"4"`
	}

	Info struct {
		Path string `arg:"" name:"/path/to/file.ym" type:"existingfile"`
	}

	Tables struct {
		AudioFlags `embed:""`

		Centered bool `name:"centered" help:"Center the output around 0."`
	}

	Cfg struct {
		AudioFlags `embed:""`

		Save bool `name:"save" help:"Save the configuration to the user config directory."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"log_help":    "Enable logging for specified modules.",
	"config_help": "Configuration file. (default: config.toml in the user config directory)",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("ymsound"),
		kong.Description("YM2149 sound chip emulator, plays and renders YM files."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cmd, _, _ := strings.Cut(ctx.Command(), " ")
	switch cmd {
	case "render":
		cfg.mode = renderMode
	case "info":
		cfg.mode = infoMode
	case "tables":
		cfg.mode = tablesMode
	case "config":
		cfg.mode = configMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = playMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if ctx.Command() == "" {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

// apply overrides cfg with the flags set on the command line.
func (f AudioFlags) apply(cfg *emu.Config) error {
	if f.Mixing != "" {
		m, err := ym2149.ParseMixingMode(f.Mixing)
		if err != nil {
			return err
		}
		cfg.Audio.Mixing = m
	}
	if f.VolumeTable != "" {
		cfg.Audio.VolumeTable = f.VolumeTable
	}
	if f.Rate != 0 {
		cfg.Audio.SampleRate = f.Rate
	}
	if f.LowPass {
		cfg.Audio.LowPass = true
	}
	if f.Video != "" {
		v, err := hwdefs.ParseVideoMode(f.Video)
		if err != nil {
			return err
		}
		cfg.Machine.Video = v
	}
	return cfg.Check()
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
