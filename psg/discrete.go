package psg

import (
	"github.com/user-none/emvgm/sound"
	"github.com/user-none/go-chip-sn76489"
)

const (
	discreteChunk = 1024
	discreteGain  = 0x7000 / 4
)

// Discrete wraps the cycle-stepped go-chip-sn76489 core behind the same
// chip contract as PSG. It renders the chip's raw square outputs without
// band limiting.
type Discrete struct {
	chip      *sn76489.SN76489
	perSample float64 // chip clocks per output sample
	carry     float64
	last      float32
}

// VariantConfig picks the chip variant matching a header's noise
// feedback and shift register width. Zero values select Sega.
func VariantConfig(feedback uint16, width uint8) sn76489.Config {
	switch {
	case feedback == 0 && width == 0:
		return sn76489.Sega
	case feedback == sn76489.TI.WhiteNoiseTaps && int(width) == sn76489.TI.LFSRBits:
		return sn76489.TI
	case feedback == sn76489.Sega.WhiteNoiseTaps && int(width) == sn76489.Sega.LFSRBits:
		return sn76489.Sega
	}
	cfg := sn76489.Sega
	if feedback != 0 {
		cfg.WhiteNoiseTaps = feedback
	}
	if width != 0 && width <= 16 {
		cfg.LFSRBits = int(width)
	}
	return cfg
}

// NewDiscrete creates a discrete PSG clocked at clock Hz.
func NewDiscrete(clock, sampleRate int, feedback uint16, width uint8) *Discrete {
	c := sn76489.New(clock, sampleRate, discreteChunk+16, VariantConfig(feedback, width))
	c.SetGain(discreteGain)
	return &Discrete{
		chip:      c,
		perSample: float64(clock) / float64(sampleRate),
	}
}

// Write forwards one byte to the chip's data port.
func (d *Discrete) Write(port, reg, data uint8) {
	d.chip.Write(data)
}

// Render runs the chip for len(out) samples worth of clocks and adds the
// result into out. Short chip buffers are padded with the last sample.
func (d *Discrete) Render(out []int16) {
	for len(out) > 0 {
		n := len(out)
		if n > discreteChunk {
			n = discreteChunk
		}

		d.carry += float64(n) * d.perSample
		clocks := int(d.carry)
		d.carry -= float64(clocks)

		d.chip.ResetBuffer()
		d.chip.Run(clocks)
		buf, count := d.chip.GetBuffer()

		for i := 0; i < n; i++ {
			if i < count {
				d.last = buf[i]
			}
			out[i] = sound.Saturate(int32(out[i]) + int32(d.last))
		}
		out = out[n:]
	}
}

// Silence sets the three tone attenuators to off.
func (d *Discrete) Silence() {
	d.chip.Write(0x9F)
	d.chip.Write(0xBF)
	d.chip.Write(0xDF)
}

// Volume returns the 4-bit attenuation of channel ch (0-3).
func (d *Discrete) Volume(ch int) uint8 {
	return d.chip.GetVolume(ch)
}
