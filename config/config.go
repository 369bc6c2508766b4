// Package config holds the player settings read from a JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/user-none/emvgm/chip"
)

// PSG models.
const (
	PSGBlit     = "blit"
	PSGDiscrete = "discrete"
)

// Regions for the NES APU. Auto follows the header clock.
const (
	RegionAuto = "auto"
	RegionNTSC = "ntsc"
	RegionPAL  = "pal"
)

// Config holds all player configuration
type Config struct {
	Audio    AudioConfig    `json:"audio"`
	Playback PlaybackConfig `json:"playback"`
	Chips    ChipsConfig    `json:"chips"`
}

// AudioConfig contains output format settings
type AudioConfig struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Volume     float64 `json:"volume"`
}

// PlaybackConfig contains stream playback settings
type PlaybackConfig struct {
	Loops int `json:"loops"` // -1 loops forever
}

// ChipsConfig selects chip models
type ChipsConfig struct {
	PSGModel string   `json:"psg_model"`
	Region   string   `json:"region"`
	Disable  []string `json:"disable"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: 44100,
			Channels:   2,
			Volume:     1.0,
		},
		Playback: PlaybackConfig{
			Loops: 0,
		},
		Chips: ChipsConfig{
			PSGModel: PSGBlit,
			Region:   RegionAuto,
		},
	}
}

// Load reads a JSON file over the defaults. A missing file is not an
// error; the defaults are returned.
func Load(fsys afero.Fs, path string) (*Config, error) {
	c := Default()

	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// Save writes c as indented JSON, creating the parent directory.
func (c *Config) Save(fsys afero.Fs, path string) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d out of range 8000-192000", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("volume %.2f out of range 0-1", c.Audio.Volume)
	}
	if c.Playback.Loops < -1 {
		return fmt.Errorf("loops must be -1 or more, got %d", c.Playback.Loops)
	}

	switch c.Chips.PSGModel {
	case PSGBlit, PSGDiscrete:
	default:
		return fmt.Errorf("unknown psg model %q (use %s or %s)", c.Chips.PSGModel, PSGBlit, PSGDiscrete)
	}
	switch c.Chips.Region {
	case RegionAuto, RegionNTSC, RegionPAL:
	default:
		return fmt.Errorf("unknown region %q (use auto, ntsc, or pal)", c.Chips.Region)
	}
	for _, name := range c.Chips.Disable {
		if _, err := chip.ParseID(name); err != nil {
			return err
		}
	}
	return nil
}

// Disabled reports whether the slot id is listed in chips.disable.
func (c *Config) Disabled(id chip.ID) bool {
	for _, name := range c.Chips.Disable {
		if name == id.String() {
			return true
		}
	}
	return false
}
