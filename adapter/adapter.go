// Package adapter binds the chip models to a VGM stream according to the
// header clocks and the player configuration.
package adapter

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/user-none/emvgm/apu"
	"github.com/user-none/emvgm/chip"
	"github.com/user-none/emvgm/config"
	"github.com/user-none/emvgm/fm"
	"github.com/user-none/emvgm/psg"
	"github.com/user-none/emvgm/vgm"
)

// Factory creates chip banks and players for VGM files.
type Factory struct {
	Config *config.Config

	// Trace is passed to every player's decoder.
	Trace func(vgm.Event)
}

// NewFactory returns a factory for cfg. A nil cfg uses the defaults.
func NewFactory(cfg *config.Config) *Factory {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Factory{Config: cfg}
}

// Region resolves the configured NES region against the header.
func (f *Factory) Region(h vgm.Header) apu.Region {
	switch f.Config.Chips.Region {
	case config.RegionPAL:
		return apu.PAL
	case config.RegionNTSC:
		return apu.NTSC
	}
	if h.PAL() {
		return apu.PAL
	}
	return apu.NTSC
}

// NewBank builds one chip per slot the header declares a clock for,
// skipping slots listed in chips.disable and slots with no model.
func (f *Factory) NewBank(h vgm.Header) *chip.Bank {
	rate := f.Config.Audio.SampleRate
	bank := &chip.Bank{}

	if clk := int(h.Clock(chip.PSG)); clk != 0 && !f.Config.Disabled(chip.PSG) {
		if f.Config.Chips.PSGModel == config.PSGDiscrete {
			bank.Set(chip.PSG, psg.NewDiscrete(clk, rate, h.SN76489Feedback, h.SN76489Width))
		} else {
			bank.Set(chip.PSG, psg.New(clk, rate, h.SN76489Feedback, h.SN76489Width))
		}
	}
	if h.Clock(chip.NESAPU) != 0 && !f.Config.Disabled(chip.NESAPU) {
		bank.Set(chip.NESAPU, apu.New(f.Region(h), rate))
	}
	if clk := int(h.Clock(chip.FM)); clk != 0 && !f.Config.Disabled(chip.FM) {
		bank.Set(chip.FM, fm.New(clk, rate))
	}
	return bank
}

// Unsupported lists the chips the header declares but no model exists
// for. Their writes are decoded and dropped.
func Unsupported(h vgm.Header) []chip.ID {
	var ids []chip.ID
	for _, id := range []chip.ID{chip.OPL, chip.DMG, chip.POKEY} {
		if h.Clock(id) != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// NewPlayer builds the bank for h and a player reading from c.
func (f *Factory) NewPlayer(c *vgm.Cursor, h vgm.Header) *vgm.Player {
	return vgm.NewPlayer(c, h, f.NewBank(h), vgm.Options{
		SampleRate: f.Config.Audio.SampleRate,
		Channels:   f.Config.Audio.Channels,
		Loops:      f.Config.Playback.Loops,
		Trace:      f.Trace,
	})
}

// Open loads path from fsys and returns a player for it.
func (f *Factory) Open(fsys afero.Fs, path string) (*vgm.Player, error) {
	c, h, err := vgm.Open(fsys, path)
	if err != nil {
		return nil, err
	}
	p := f.NewPlayer(c, h)
	if len(p.Bank().Occupied()) == 0 {
		return nil, fmt.Errorf("%s: no supported chips", path)
	}
	return p, nil
}
