package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"ymsound/emu/log"
	"ymsound/hw/hwdefs"
	"ymsound/hw/sound"
	"ymsound/hw/ym2149"
)

type Config struct {
	Audio   AudioConfig   `toml:"audio"`
	Machine MachineConfig `toml:"machine"`
}

type AudioConfig struct {
	Mixing      ym2149.MixingMode `toml:"mixing"`
	VolumeTable string            `toml:"volume_table"` // measured table, required by table mixing
	LowPass     bool              `toml:"lowpass"`
	SampleRate  int               `toml:"sample_rate"`
	OutputLevel uint16            `toml:"output_level"`
	Centered    bool              `toml:"centered"`
	BufferSize  int               `toml:"buffer_size"` // host buffer, in frames

	DisableAudio bool `toml:"disable_audio"`
}

type MachineConfig struct {
	Video hwdefs.VideoMode `toml:"video"`
}

// DefaultConfig returns the default settings: linear mixing at 44.1 kHz on
// a PAL machine.
func DefaultConfig() Config {
	return Config{
		Audio: AudioConfig{
			Mixing:      ym2149.LinearMixing,
			SampleRate:  44100,
			OutputLevel: ym2149.LevelUncentered,
			BufferSize:  1024,
		},
		Machine: MachineConfig{
			Video: hwdefs.PAL,
		},
	}
}

func (cfg *Config) Check() error {
	if cfg.Audio.Mixing == ym2149.TableMixing && cfg.Audio.VolumeTable == "" {
		return errors.New("audio: table mixing requires volume_table")
	}
	if _, err := cfg.soundConfig(nil); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return nil
}

func (cfg *Config) soundConfig(mt *ym2149.MeasuredTable) (sound.Config, error) {
	scfg := sound.Config{
		Chip: ym2149.Config{
			SampleRate: cfg.Audio.SampleRate,
			LowPass:    cfg.Audio.LowPass,
			DAC: ym2149.DACConfig{
				Mode:     cfg.Audio.Mixing,
				Level:    cfg.Audio.OutputLevel,
				Centered: cfg.Audio.Centered,
				Measured: mt,
			},
		},
		Video:      cfg.Machine.Video,
		BufferSize: cfg.Audio.BufferSize,
	}
	if mt == nil && cfg.Audio.Mixing == ym2149.TableMixing {
		// Validate the rest, the table is loaded later.
		check := scfg
		check.Chip.DAC.Mode = ym2149.LinearMixing
		return scfg, check.Check()
	}
	return scfg, scfg.Check()
}

// SoundConfig returns the sound subsystem configuration, loading the
// measured volume table if needed.
func (cfg *Config) SoundConfig() (sound.Config, error) {
	var mt *ym2149.MeasuredTable
	if cfg.Audio.Mixing == ym2149.TableMixing {
		var err error
		if mt, err = ym2149.LoadMeasuredTableFile(cfg.Audio.VolumeTable); err != nil {
			return sound.Config{}, err
		}
	}
	return cfg.soundConfig(mt)
}

var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("ymsound")
	if err := configdir.MakePath(dir); err != nil {
		log.ModConfig.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfig loads the configuration at path. Missing settings keep their
// default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return DefaultConfig(), err
	}
	for _, key := range md.Undecoded() {
		log.ModConfig.WarnZ("unknown config key").Stringer("key", key).End()
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the ymsound config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	path := ConfigPath()
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModConfig.WarnZ("invalid config, using defaults").
				String("path", path).
				Error("err", err).
				End()
		}
		return DefaultConfig()
	}
	return cfg
}

// ConfigPath returns the path of the default configuration file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// SaveConfig into the ymsound config directory.
func SaveConfig(cfg Config) error {
	return WriteConfig(ConfigPath(), cfg)
}

func WriteConfig(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeConfig(f, cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeConfig writes cfg to w in TOML.
func EncodeConfig(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
